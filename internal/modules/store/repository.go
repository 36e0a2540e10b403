package store

import (
	"context"

	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/google/uuid"
)

// Repository defines data access for stores.
type Repository interface {
	// WithinTx runs fn in one database transaction for balance changes.
	WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error

	// Create inserts a store; a taken code yields apperr.ErrDuplicate.
	Create(ctx context.Context, s *Store) error

	// Update writes the profile columns only.
	Update(ctx context.Context, s *Store) error

	GetByID(ctx context.Context, id uuid.UUID) (*Store, error)
	List(ctx context.Context, f ListFilter) ([]*Store, error)

	// Receivables lists active stores owing money, largest balance first.
	Receivables(ctx context.Context) ([]*Store, error)
}
