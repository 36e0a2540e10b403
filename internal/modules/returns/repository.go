package returns

import (
	"context"

	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/georgemunganga/lensworks-backend/internal/modules/order"
	"github.com/google/uuid"
)

// Tx is the unit of work for one return operation.
type Tx interface {
	ledger.Tx

	NextSequence(ctx context.Context, key string) (int, error)

	// LockOrder loads the referenced order with its items under a row lock.
	LockOrder(ctx context.Context, id uuid.UUID) (*order.Order, error)

	// ReturnedQuantities sums, per order item, what non-rejected returns already claim.
	ReturnedQuantities(ctx context.Context, orderID uuid.UUID) (map[uuid.UUID]float64, error)

	InsertReturn(ctx context.Context, r *Return) error
	LockReturn(ctx context.Context, id uuid.UUID) (*Return, error)
	UpdateStatus(ctx context.Context, r *Return) error
}

// Repository defines return storage.
type Repository interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	Get(ctx context.Context, id uuid.UUID) (*Return, error)
	List(ctx context.Context, f ListFilter) ([]*Return, error)
}
