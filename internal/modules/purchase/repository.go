package purchase

import (
	"context"

	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/google/uuid"
)

// Tx is the unit of work for placing, receiving or cancelling a purchase.
type Tx interface {
	ledger.Tx

	NextSequence(ctx context.Context, key string) (int, error)
	InsertPurchase(ctx context.Context, p *Purchase) error

	// LockPurchase loads the purchase with its items under a row lock.
	LockPurchase(ctx context.Context, id uuid.UUID) (*Purchase, error)
	UpdateStatus(ctx context.Context, p *Purchase) error
}

// Repository defines supplier and purchase storage.
type Repository interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	CreateSupplier(ctx context.Context, s *Supplier) error
	UpdateSupplier(ctx context.Context, s *Supplier) error
	GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error)
	ListSuppliers(ctx context.Context, activeOnly bool) ([]*Supplier, error)

	GetPurchase(ctx context.Context, id uuid.UUID) (*Purchase, error)
	ListPurchases(ctx context.Context, f ListFilter) ([]*Purchase, error)
}
