package purchase

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

func (r *postgresRepo) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	return database.WithinTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&pgTx{Tx: ledger.NewPostgresTx(tx), tx: tx})
	})
}

// ── suppliers ───────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateSupplier(ctx context.Context, s *Supplier) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO suppliers (id, name, contact_name, phone, email, is_active, created_at, updated_at)
		VALUES (:id, :name, :contact_name, :phone, :email, :is_active, :created_at, :updated_at)`, s)
	if database.IsUniqueViolation(err) {
		return apperr.ErrDuplicate.Wrap(err, "supplier "+s.Name)
	}
	return errors.Wrap(err, "insert supplier")
}

func (r *postgresRepo) UpdateSupplier(ctx context.Context, s *Supplier) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE suppliers SET name = :name, contact_name = :contact_name, phone = :phone,
		       email = :email, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`, s)
	if database.IsUniqueViolation(err) {
		return apperr.ErrDuplicate.Wrap(err, "supplier "+s.Name)
	}
	if err != nil {
		return errors.Wrap(err, "update supplier")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrSupplierNotFound.New()
	}
	return nil
}

func (r *postgresRepo) GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	var s Supplier
	err := r.db.GetContext(ctx, &s, `SELECT * FROM suppliers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrSupplierNotFound.New()
	}
	if err != nil {
		return nil, errors.Wrap(err, "get supplier")
	}
	return &s, nil
}

func (r *postgresRepo) ListSuppliers(ctx context.Context, activeOnly bool) ([]*Supplier, error) {
	q := `SELECT * FROM suppliers`
	if activeOnly {
		q += ` WHERE is_active`
	}
	var out []*Supplier
	err := r.db.SelectContext(ctx, &out, q+` ORDER BY name`)
	return out, errors.Wrap(err, "list suppliers")
}

// ── purchases ───────────────────────────────────────────────────────────────

const purchaseColumns = `p.id, p.purchase_no, p.supplier_id, s.name AS supplier_name, p.status,
	p.total_amount, p.memo, p.created_by, p.ordered_at, p.received_at, p.cancelled_at`

const purchaseFrom = ` FROM purchases p JOIN suppliers s ON s.id = p.supplier_id`

func getPurchase(ctx context.Context, q sqlx.QueryerContext, query string, id uuid.UUID) (*Purchase, error) {
	var p Purchase
	err := sqlx.GetContext(ctx, q, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrPurchaseNotFound.New(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get purchase")
	}
	err = sqlx.SelectContext(ctx, q, &p.Items,
		`SELECT * FROM purchase_items WHERE purchase_id = $1 ORDER BY position`, p.ID)
	if err != nil {
		return nil, errors.Wrap(err, "list purchase items")
	}
	return &p, nil
}

func (r *postgresRepo) GetPurchase(ctx context.Context, id uuid.UUID) (*Purchase, error) {
	return getPurchase(ctx, r.db, `SELECT `+purchaseColumns+purchaseFrom+` WHERE p.id = $1`, id)
}

func (r *postgresRepo) ListPurchases(ctx context.Context, f ListFilter) ([]*Purchase, error) {
	w := &database.Where{}
	if f.SupplierID != nil {
		w.Add("p.supplier_id = ?", *f.SupplierID)
	}
	if f.Status != "" {
		w.Add("p.status = ?", f.Status)
	}
	if f.From != nil {
		w.Add("p.ordered_at >= ?", *f.From)
	}
	if f.To != nil {
		w.Add("p.ordered_at < ?", *f.To)
	}
	var out []*Purchase
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+purchaseColumns+purchaseFrom+w.String()+` ORDER BY p.ordered_at DESC`+database.Limit(f.Limit),
		w.Args()...)
	return out, errors.Wrap(err, "list purchases")
}

// ── transaction ──────────────────────────────────────────────────────────────

type pgTx struct {
	ledger.Tx
	tx *sqlx.Tx
}

func (p *pgTx) NextSequence(ctx context.Context, key string) (int, error) {
	return database.NextSequence(ctx, p.tx, key)
}

func (p *pgTx) InsertPurchase(ctx context.Context, pu *Purchase) error {
	_, err := p.tx.NamedExecContext(ctx, `
		INSERT INTO purchases (id, purchase_no, supplier_id, status, total_amount, memo, created_by, ordered_at)
		VALUES (:id, :purchase_no, :supplier_id, :status, :total_amount, :memo, :created_by, :ordered_at)`, pu)
	if database.IsUniqueViolation(err) {
		return apperr.ErrDuplicate.Wrap(err, "purchase number "+pu.PurchaseNo)
	}
	if err != nil {
		return errors.Wrap(err, "insert purchase")
	}
	for _, it := range pu.Items {
		_, err = p.tx.NamedExecContext(ctx, `
			INSERT INTO purchase_items (id, purchase_id, product_option_id, product_id, quantity, unit_cost, total_cost, position)
			VALUES (:id, :purchase_id, :product_option_id, :product_id, :quantity, :unit_cost, :total_cost, :position)`, it)
		if err != nil {
			return errors.Wrap(err, "insert purchase item")
		}
	}
	return nil
}

func (p *pgTx) LockPurchase(ctx context.Context, id uuid.UUID) (*Purchase, error) {
	return getPurchase(ctx, p.tx, `SELECT `+purchaseColumns+purchaseFrom+` WHERE p.id = $1 FOR UPDATE OF p`, id)
}

func (p *pgTx) UpdateStatus(ctx context.Context, pu *Purchase) error {
	_, err := p.tx.NamedExecContext(ctx, `
		UPDATE purchases SET status = :status, received_at = :received_at, cancelled_at = :cancelled_at,
		       updated_at = NOW()
		WHERE id = :id`, pu)
	return errors.Wrap(err, "update purchase status")
}
