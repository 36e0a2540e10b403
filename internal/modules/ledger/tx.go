package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tx is the set of writes a reconciliation may perform inside one database transaction.
// Lock* methods take row locks that are held until the transaction ends.
type Tx interface {
	// LockStore returns the store's receivable state, or apperr.ErrStoreNotFound.
	LockStore(ctx context.Context, storeID uuid.UUID) (*StoreAccount, error)
	SetOutstanding(ctx context.Context, storeID uuid.UUID, amount int64) error
	TouchLastPayment(ctx context.Context, storeID uuid.UUID, at time.Time) error
	InsertTransaction(ctx context.Context, t *Transaction) error

	// LockOption returns the option, or apperr.ErrOptionNotFound.
	LockOption(ctx context.Context, optionID uuid.UUID) (*OptionStock, error)
	// MatchOption finds the active option for a prescription; nil when none matches.
	MatchOption(ctx context.Context, productID uuid.UUID, sph, cyl string) (*OptionStock, error)
	SetStock(ctx context.Context, optionID uuid.UUID, stock float64) error
	InsertInventoryTransaction(ctx context.Context, it *InventoryTransaction) error
	OrderMovements(ctx context.Context, orderID uuid.UUID) ([]*InventoryTransaction, error)

	InsertWorkLog(ctx context.Context, w *WorkLog) error
}
