package catalog

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

func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

// ── brands ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateBrand(ctx context.Context, b *Brand) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO brands (id, name, is_active, created_at, updated_at)
		VALUES (:id, :name, :is_active, :created_at, :updated_at)`, b)
	if database.IsUniqueViolation(err) {
		return apperr.ErrDuplicate.Wrap(err, "brand "+b.Name)
	}
	return errors.Wrap(err, "insert brand")
}

func (r *postgresRepo) UpdateBrand(ctx context.Context, b *Brand) error {
	res, err := r.db.NamedExecContext(ctx,
		`UPDATE brands SET name = :name, is_active = :is_active, updated_at = :updated_at WHERE id = :id`, b)
	if database.IsUniqueViolation(err) {
		return apperr.ErrDuplicate.Wrap(err, "brand "+b.Name)
	}
	if err != nil {
		return errors.Wrap(err, "update brand")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrBrandNotFound.New()
	}
	return nil
}

func (r *postgresRepo) GetBrand(ctx context.Context, id uuid.UUID) (*Brand, error) {
	var b Brand
	err := r.db.GetContext(ctx, &b, `SELECT * FROM brands WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrBrandNotFound.New()
	}
	if err != nil {
		return nil, errors.Wrap(err, "get brand")
	}
	return &b, nil
}

func (r *postgresRepo) ListBrands(ctx context.Context, activeOnly bool) ([]*Brand, error) {
	q := `SELECT * FROM brands`
	if activeOnly {
		q += ` WHERE is_active`
	}
	var out []*Brand
	err := r.db.SelectContext(ctx, &out, q+` ORDER BY name`)
	return out, errors.Wrap(err, "list brands")
}

// ── products ────────────────────────────────────────────────────────────────

const productColumns = `p.id, p.brand_id, b.name AS brand_name, p.name, p.lens_type, p.refractive_index,
	p.selling_price, p.purchase_price, p.is_active, p.created_at, p.updated_at`

func (r *postgresRepo) CreateProduct(ctx context.Context, p *Product) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO products (id, brand_id, name, lens_type, refractive_index,
		                      selling_price, purchase_price, is_active, created_at, updated_at)
		VALUES (:id, :brand_id, :name, :lens_type, :refractive_index,
		        :selling_price, :purchase_price, :is_active, :created_at, :updated_at)`, p)
	return errors.Wrap(err, "insert product")
}

func (r *postgresRepo) UpdateProduct(ctx context.Context, p *Product) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE products SET brand_id = :brand_id, name = :name, lens_type = :lens_type,
		       refractive_index = :refractive_index, selling_price = :selling_price,
		       purchase_price = :purchase_price, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`, p)
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrProductNotFound.New(p.ID)
	}
	return nil
}

func (r *postgresRepo) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productColumns+`
		FROM products p JOIN brands b ON b.id = p.brand_id WHERE p.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrProductNotFound.New(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	return &p, nil
}

func (r *postgresRepo) ListProducts(ctx context.Context, f ProductFilter) ([]*Product, error) {
	w := &database.Where{}
	if f.BrandID != nil {
		w.Add("p.brand_id = ?", *f.BrandID)
	}
	if f.Query != "" {
		w.Add("p.name ILIKE ?", "%"+f.Query+"%")
	}
	if f.ActiveOnly {
		w.Add("p.is_active = ?", true)
	}
	var out []*Product
	err := r.db.SelectContext(ctx, &out, `SELECT `+productColumns+`
		FROM products p JOIN brands b ON b.id = p.brand_id`+w.String()+
		` ORDER BY b.name, p.name`+database.Limit(f.Limit), w.Args()...)
	return out, errors.Wrap(err, "list products")
}

// ── options ─────────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateOption(ctx context.Context, o *ProductOption) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO product_options (id, product_id, sph, cyl, stock, barcode, location, is_active, created_at, updated_at)
		VALUES (:id, :product_id, :sph, :cyl, :stock, :barcode, :location, :is_active, :created_at, :updated_at)`, o)
	if database.IsUniqueViolation(err) {
		return apperr.ErrDuplicate.Wrap(err, "option "+o.Sph+"/"+o.Cyl)
	}
	return errors.Wrap(err, "insert option")
}

func (r *postgresRepo) UpdateOption(ctx context.Context, o *ProductOption) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE product_options SET sph = :sph, cyl = :cyl, barcode = :barcode, location = :location,
		       is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`, o)
	if database.IsUniqueViolation(err) {
		return apperr.ErrDuplicate.Wrap(err, "option "+o.Sph+"/"+o.Cyl)
	}
	if err != nil {
		return errors.Wrap(err, "update option")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrOptionNotFound.New(o.ID)
	}
	return nil
}

func (r *postgresRepo) GetOption(ctx context.Context, id uuid.UUID) (*ProductOption, error) {
	var o ProductOption
	err := r.db.GetContext(ctx, &o, `SELECT * FROM product_options WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrOptionNotFound.New(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get option")
	}
	return &o, nil
}

func (r *postgresRepo) OptionByBarcode(ctx context.Context, barcode string) (*ProductOption, error) {
	var o ProductOption
	err := r.db.GetContext(ctx, &o, `SELECT * FROM product_options WHERE barcode = $1`, barcode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrOptionNotFound.New(barcode)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get option by barcode")
	}
	return &o, nil
}

func (r *postgresRepo) ListOptions(ctx context.Context, productID uuid.UUID) ([]*ProductOption, error) {
	var out []*ProductOption
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM product_options WHERE product_id = $1 ORDER BY sph, cyl`, productID)
	return out, errors.Wrap(err, "list options")
}
