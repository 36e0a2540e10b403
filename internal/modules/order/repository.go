package order

import (
	"context"

	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/google/uuid"
)

// Tx is the unit of work for one order creation or transition.
type Tx interface {
	ledger.Tx

	// NextSequence atomically increments the named counter.
	NextSequence(ctx context.Context, key string) (int, error)

	// InsertOrder persists the order and its items.
	InsertOrder(ctx context.Context, o *Order) error

	// LockOrder loads the order and its items, holding a row lock; apperr.ErrOrderNotFound if absent.
	LockOrder(ctx context.Context, id uuid.UUID) (*Order, error)

	// UpdateStatus writes the order's status and transition timestamps.
	UpdateStatus(ctx context.Context, o *Order) error

	// HasOpenReturns reports whether any non-rejected return references the order.
	HasOpenReturns(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// Repository defines data access for orders.
type Repository interface {
	// WithinTx runs fn in one database transaction, committing only when fn succeeds.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetByNumber retrieves an order by period ("YYYY-MM") and number.
	GetByNumber(ctx context.Context, period, orderNo string) (*Order, error)

	// List returns orders newest first, without items.
	List(ctx context.Context, f ListFilter) ([]*Order, error)
}
