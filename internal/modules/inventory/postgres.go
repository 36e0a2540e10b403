package inventory

import (
	"context"

	"github.com/georgemunganga/lensworks-backend/internal/database"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type postgresRepo struct{ db *sqlx.DB }

func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	return database.WithinTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(ledger.NewPostgresTx(tx))
	})
}

func (r *postgresRepo) LowStock(ctx context.Context, threshold float64, limit int) ([]*LowStockItem, error) {
	var out []*LowStockItem
	err := r.db.SelectContext(ctx, &out, `
		SELECT o.id, o.product_id, p.name AS product_name, b.name AS brand_name,
		       o.sph, o.cyl, o.stock, o.location
		FROM product_options o
		JOIN products p ON p.id = o.product_id
		JOIN brands b ON b.id = p.brand_id
		WHERE o.is_active AND p.is_active AND o.stock < $1
		ORDER BY o.stock, b.name, p.name, o.sph, o.cyl`+database.Limit(limit), threshold)
	return out, errors.Wrap(err, "low stock")
}
