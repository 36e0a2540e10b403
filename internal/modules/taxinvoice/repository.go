package taxinvoice

import (
	"context"

	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/google/uuid"
)

// Tx is the unit of work for issuing or updating an invoice.
type Tx interface {
	ledger.Tx

	NextSequence(ctx context.Context, key string) (int, error)

	// Buyer returns the store's invoice identity, or apperr.ErrStoreNotFound.
	Buyer(ctx context.Context, storeID uuid.UUID) (*Party, error)

	// FindByIdempotencyKey returns nil when no invoice carries key.
	FindByIdempotencyKey(ctx context.Context, key string) (*TaxInvoice, error)
	InsertInvoice(ctx context.Context, t *TaxInvoice) error

	// LockInvoice loads the invoice with its items under a row lock.
	LockInvoice(ctx context.Context, id uuid.UUID) (*TaxInvoice, error)
	UpdateStatus(ctx context.Context, t *TaxInvoice) error
}

// Repository defines tax invoice storage.
type Repository interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	GetInvoice(ctx context.Context, id uuid.UUID) (*TaxInvoice, error)

	// ListInvoices returns matching invoices newest issue date first, without items.
	ListInvoices(ctx context.Context, f ListFilter) ([]*TaxInvoice, error)

	// Summarize counts invoices matching f, ignoring its status and limit.
	Summarize(ctx context.Context, f ListFilter) (Summary, error)
}
