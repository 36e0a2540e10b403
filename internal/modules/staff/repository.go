package staff

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines staff account storage.
type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetByEmail(ctx context.Context, email string) (*Staff, error)
	List(ctx context.Context) ([]*Staff, error)
}
