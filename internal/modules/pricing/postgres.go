package pricing

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type postgresRepo struct{ db *sqlx.DB }

func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Product(ctx context.Context, productID uuid.UUID) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p,
		`SELECT id, brand_id, name, selling_price, is_active FROM products WHERE id = $1`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrProductNotFound.New(productID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get product price")
	}
	return &p, nil
}

func (r *postgresRepo) StoreRate(ctx context.Context, storeID uuid.UUID) (float64, error) {
	var rate float64
	err := r.db.GetContext(ctx, &rate, `SELECT discount_rate FROM stores WHERE id = $1`, storeID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.ErrStoreNotFound.New()
	}
	return rate, errors.Wrap(err, "get store rate")
}

func (r *postgresRepo) BrandExists(ctx context.Context, brandID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `SELECT EXISTS (SELECT 1 FROM brands WHERE id = $1)`, brandID)
	return ok, errors.Wrap(err, "brand exists")
}

func (r *postgresRepo) Overrides(ctx context.Context, storeID, productID, brandID uuid.UUID) (Overrides, error) {
	var row struct {
		StoreRate    float64         `db:"store_rate"`
		SpecialPrice sql.NullInt64   `db:"special_price"`
		BrandRate    sql.NullFloat64 `db:"brand_rate"`
		ProductRate  sql.NullFloat64 `db:"product_rate"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT s.discount_rate AS store_rate,
		       (SELECT special_price FROM store_product_prices WHERE store_id = s.id AND product_id = $2) AS special_price,
		       (SELECT discount_rate FROM store_brand_discounts WHERE store_id = s.id AND brand_id = $3) AS brand_rate,
		       (SELECT discount_rate FROM store_product_discounts WHERE store_id = s.id AND product_id = $2) AS product_rate
		FROM stores s WHERE s.id = $1`, storeID, productID, brandID)
	if errors.Is(err, sql.ErrNoRows) {
		return Overrides{}, apperr.ErrStoreNotFound.New()
	}
	if err != nil {
		return Overrides{}, errors.Wrap(err, "load overrides")
	}
	o := Overrides{StoreRate: row.StoreRate}
	if row.SpecialPrice.Valid {
		o.SpecialPrice = &row.SpecialPrice.Int64
	}
	if row.BrandRate.Valid {
		o.BrandRate = &row.BrandRate.Float64
	}
	if row.ProductRate.Valid {
		o.ProductRate = &row.ProductRate.Float64
	}
	return o, nil
}

func (r *postgresRepo) ListRules(ctx context.Context, storeID uuid.UUID) (*Rules, error) {
	rules := &Rules{StoreID: storeID}
	var err error
	if rules.BaseRate, err = r.StoreRate(ctx, storeID); err != nil {
		return nil, err
	}
	if err = r.db.SelectContext(ctx, &rules.BrandDiscounts,
		`SELECT brand_id, discount_rate FROM store_brand_discounts WHERE store_id = $1 ORDER BY brand_id`, storeID); err != nil {
		return nil, errors.Wrap(err, "list brand discounts")
	}
	if err = r.db.SelectContext(ctx, &rules.ProductDiscounts,
		`SELECT product_id, discount_rate FROM store_product_discounts WHERE store_id = $1 ORDER BY product_id`, storeID); err != nil {
		return nil, errors.Wrap(err, "list product discounts")
	}
	if err = r.db.SelectContext(ctx, &rules.SpecialPrices,
		`SELECT product_id, special_price FROM store_product_prices WHERE store_id = $1 ORDER BY product_id`, storeID); err != nil {
		return nil, errors.Wrap(err, "list special prices")
	}
	return rules, nil
}

func (r *postgresRepo) UpsertBrandDiscount(ctx context.Context, storeID, brandID uuid.UUID, rate float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO store_brand_discounts (store_id, brand_id, discount_rate) VALUES ($1, $2, $3)
		ON CONFLICT (store_id, brand_id) DO UPDATE SET discount_rate = EXCLUDED.discount_rate`,
		storeID, brandID, rate)
	return errors.Wrap(err, "upsert brand discount")
}

func (r *postgresRepo) DeleteBrandDiscount(ctx context.Context, storeID, brandID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM store_brand_discounts WHERE store_id = $1 AND brand_id = $2`, storeID, brandID)
	return errors.Wrap(err, "delete brand discount")
}

func (r *postgresRepo) UpsertProductDiscount(ctx context.Context, storeID, productID uuid.UUID, rate float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO store_product_discounts (store_id, product_id, discount_rate) VALUES ($1, $2, $3)
		ON CONFLICT (store_id, product_id) DO UPDATE SET discount_rate = EXCLUDED.discount_rate`,
		storeID, productID, rate)
	return errors.Wrap(err, "upsert product discount")
}

func (r *postgresRepo) DeleteProductDiscount(ctx context.Context, storeID, productID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM store_product_discounts WHERE store_id = $1 AND product_id = $2`, storeID, productID)
	return errors.Wrap(err, "delete product discount")
}

func (r *postgresRepo) UpsertSpecialPrice(ctx context.Context, storeID, productID uuid.UUID, price int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO store_product_prices (store_id, product_id, special_price) VALUES ($1, $2, $3)
		ON CONFLICT (store_id, product_id) DO UPDATE SET special_price = EXCLUDED.special_price`,
		storeID, productID, price)
	return errors.Wrap(err, "upsert special price")
}

func (r *postgresRepo) DeleteSpecialPrice(ctx context.Context, storeID, productID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM store_product_prices WHERE store_id = $1 AND product_id = $2`, storeID, productID)
	return errors.Wrap(err, "delete special price")
}
