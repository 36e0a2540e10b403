package store

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/database"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type postgresRepo struct{ db *sqlx.DB }

func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

const storeColumns = `id, code, name, owner_name, phone, address, is_active, outstanding_amount,
	credit_limit, payment_terms_days, discount_rate, last_payment_at, created_at, updated_at`

func (r *postgresRepo) WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	return database.WithinTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(ledger.NewPostgresTx(tx))
	})
}

func (r *postgresRepo) Create(ctx context.Context, s *Store) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO stores
		  (id, code, name, owner_name, phone, address, is_active, credit_limit,
		   payment_terms_days, discount_rate, created_at, updated_at)
		VALUES
		  (:id, :code, :name, :owner_name, :phone, :address, :is_active, :credit_limit,
		   :payment_terms_days, :discount_rate, :created_at, :updated_at)`, s)
	if database.IsUniqueViolation(err) {
		return apperr.ErrDuplicate.Wrap(err, "store code "+s.Code)
	}
	return errors.Wrap(err, "insert store")
}

func (r *postgresRepo) Update(ctx context.Context, s *Store) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE stores SET code = :code, name = :name, owner_name = :owner_name, phone = :phone,
		       address = :address, is_active = :is_active, credit_limit = :credit_limit,
		       payment_terms_days = :payment_terms_days, discount_rate = :discount_rate,
		       updated_at = :updated_at
		WHERE id = :id`, s)
	if database.IsUniqueViolation(err) {
		return apperr.ErrDuplicate.Wrap(err, "store code "+s.Code)
	}
	if err != nil {
		return errors.Wrap(err, "update store")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrStoreNotFound.New()
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Store, error) {
	var s Store
	err := r.db.GetContext(ctx, &s, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrStoreNotFound.New()
	}
	if err != nil {
		return nil, errors.Wrap(err, "get store")
	}
	return &s, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]*Store, error) {
	w := &database.Where{}
	if f.Query != "" {
		w.Add("(name ILIKE ? OR code ILIKE ?)", "%"+f.Query+"%")
	}
	if f.ActiveOnly {
		w.Add("is_active = ?", true)
	}
	var stores []*Store
	err := r.db.SelectContext(ctx, &stores,
		`SELECT `+storeColumns+` FROM stores`+w.String()+` ORDER BY name`+database.Limit(f.Limit), w.Args()...)
	return stores, errors.Wrap(err, "list stores")
}

func (r *postgresRepo) Receivables(ctx context.Context) ([]*Store, error) {
	var stores []*Store
	err := r.db.SelectContext(ctx, &stores, `
		SELECT `+storeColumns+` FROM stores
		WHERE is_active AND outstanding_amount > 0
		ORDER BY outstanding_amount DESC, name`)
	return stores, errors.Wrap(err, "list receivables")
}
