package taxinvoice

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

const invoiceColumns = `id, invoice_no, store_id,
	supplier_biz_no, supplier_name, supplier_ceo_name, supplier_address, supplier_biz_type, supplier_biz_item,
	buyer_biz_no, buyer_name, buyer_ceo_name, buyer_address,
	supply_amount, tax_amount, total_amount, issue_date, supply_date, status, memo,
	idempotency_key, created_by, sent_at, cancelled_at`

func getInvoice(ctx context.Context, q sqlx.QueryerContext, query string, arg interface{}) (*TaxInvoice, error) {
	var t TaxInvoice
	err := sqlx.GetContext(ctx, q, &t, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrTaxInvoiceNotFound.New(arg)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get tax invoice")
	}
	err = sqlx.SelectContext(ctx, q, &t.Items,
		`SELECT * FROM tax_invoice_items WHERE tax_invoice_id = $1 ORDER BY seq`, t.ID)
	if err != nil {
		return nil, errors.Wrap(err, "list tax invoice items")
	}
	return &t, nil
}

func (r *postgresRepo) GetInvoice(ctx context.Context, id uuid.UUID) (*TaxInvoice, error) {
	return getInvoice(ctx, r.db, `SELECT `+invoiceColumns+` FROM tax_invoices WHERE id = $1`, id)
}

func where(f ListFilter, withStatus bool) *database.Where {
	w := &database.Where{}
	if f.StoreID != nil {
		w.Add("store_id = ?", *f.StoreID)
	}
	if withStatus && f.Status != "" {
		w.Add("status = ?", f.Status)
	}
	if f.From != nil {
		w.Add("issue_date >= ?", *f.From)
	}
	if f.To != nil {
		w.Add("issue_date < ?", *f.To)
	}
	return w
}

func (r *postgresRepo) ListInvoices(ctx context.Context, f ListFilter) ([]*TaxInvoice, error) {
	w := where(f, true)
	var out []*TaxInvoice
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+invoiceColumns+` FROM tax_invoices`+w.String()+` ORDER BY issue_date DESC`+database.Limit(f.Limit),
		w.Args()...)
	return out, errors.Wrap(err, "list tax invoices")
}

func (r *postgresRepo) Summarize(ctx context.Context, f ListFilter) (Summary, error) {
	w := where(f, false)
	var s Summary
	err := r.db.GetContext(ctx, &s, `
		SELECT COUNT(*) FILTER (WHERE status = 'issued')    AS issued,
		       COUNT(*) FILTER (WHERE status = 'sent')      AS sent,
		       COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
		       COALESCE(SUM(total_amount) FILTER (WHERE status <> 'cancelled'), 0) AS total_amount
		FROM tax_invoices`+w.String(), w.Args()...)
	return s, errors.Wrap(err, "summarize tax invoices")
}

// ── transaction ──────────────────────────────────────────────────────────────

type pgTx struct {
	ledger.Tx
	tx *sqlx.Tx
}

func (p *pgTx) NextSequence(ctx context.Context, key string) (int, error) {
	return database.NextSequence(ctx, p.tx, key)
}

func (p *pgTx) Buyer(ctx context.Context, storeID uuid.UUID) (*Party, error) {
	var b Party
	err := p.tx.QueryRowxContext(ctx,
		`SELECT name, owner_name, address FROM stores WHERE id = $1`, storeID).Scan(&b.Name, &b.CEOName, &b.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrStoreNotFound.New()
	}
	if err != nil {
		return nil, errors.Wrap(err, "get buyer")
	}
	return &b, nil
}

func (p *pgTx) FindByIdempotencyKey(ctx context.Context, key string) (*TaxInvoice, error) {
	t, err := getInvoice(ctx, p.tx, `SELECT `+invoiceColumns+` FROM tax_invoices WHERE idempotency_key = $1`, key)
	if apperr.Is(err, apperr.ErrTaxInvoiceNotFound) {
		return nil, nil
	}
	return t, err
}

func (p *pgTx) InsertInvoice(ctx context.Context, t *TaxInvoice) error {
	_, err := p.tx.NamedExecContext(ctx, `
		INSERT INTO tax_invoices (`+invoiceColumns+`)
		VALUES (:id, :invoice_no, :store_id,
		        :supplier_biz_no, :supplier_name, :supplier_ceo_name, :supplier_address, :supplier_biz_type, :supplier_biz_item,
		        :buyer_biz_no, :buyer_name, :buyer_ceo_name, :buyer_address,
		        :supply_amount, :tax_amount, :total_amount, :issue_date, :supply_date, :status, :memo,
		        :idempotency_key, :created_by, :sent_at, :cancelled_at)`, t)
	if database.IsUniqueViolation(err) {
		return apperr.ErrDuplicate.Wrap(err, "tax invoice "+t.InvoiceNo)
	}
	if err != nil {
		return errors.Wrap(err, "insert tax invoice")
	}
	for _, it := range t.Items {
		_, err = p.tx.NamedExecContext(ctx, `
			INSERT INTO tax_invoice_items (id, tax_invoice_id, seq, item_date, item_name, specification,
			                               quantity, unit_price, supply_amount, tax_amount, memo)
			VALUES (:id, :tax_invoice_id, :seq, :item_date, :item_name, :specification,
			        :quantity, :unit_price, :supply_amount, :tax_amount, :memo)`, it)
		if err != nil {
			return errors.Wrap(err, "insert tax invoice item")
		}
	}
	return nil
}

func (p *pgTx) LockInvoice(ctx context.Context, id uuid.UUID) (*TaxInvoice, error) {
	return getInvoice(ctx, p.tx, `SELECT `+invoiceColumns+` FROM tax_invoices WHERE id = $1 FOR UPDATE`, id)
}

func (p *pgTx) UpdateStatus(ctx context.Context, t *TaxInvoice) error {
	_, err := p.tx.NamedExecContext(ctx, `
		UPDATE tax_invoices SET status = :status, sent_at = :sent_at, cancelled_at = :cancelled_at,
		       updated_at = NOW()
		WHERE id = :id`, t)
	return errors.Wrap(err, "update tax invoice status")
}
