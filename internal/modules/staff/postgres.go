package staff

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/database"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type postgresRepo struct{ db *sqlx.DB }

// NewPostgresRepository creates a new staff repository.
func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, s *Staff) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO staff (id, name, email, password_hash, role, is_active, created_at, updated_at)
		VALUES (:id, :name, :email, :password_hash, :role, :is_active, :created_at, :updated_at)`, s)
	if database.IsUniqueViolation(err) {
		return apperr.ErrDuplicate.Wrap(err, "email "+s.Email)
	}
	return errors.Wrap(err, "insert staff")
}

func (r *postgresRepo) get(ctx context.Context, where string, arg interface{}) (*Staff, error) {
	var s Staff
	err := r.db.GetContext(ctx, &s, `SELECT * FROM staff WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrStaffNotFound.New()
	}
	if err != nil {
		return nil, errors.Wrap(err, "get staff")
	}
	return &s, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*Staff, error) {
	return r.get(ctx, "lower(email) = lower($1)", email)
}

func (r *postgresRepo) List(ctx context.Context) ([]*Staff, error) {
	var out []*Staff
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM staff ORDER BY name`)
	return out, errors.Wrap(err, "list staff")
}
