package order

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

const orderColumns = `o.id, o.order_no, o.period, o.store_id, s.name AS store_name, o.order_type,
	o.status, o.total_amount, o.memo, o.created_by, o.ordered_at, o.confirmed_at, o.shipped_at,
	o.delivered_at, o.cancelled_at`

const orderFrom = ` FROM orders o JOIN stores s ON s.id = o.store_id`

const itemQuery = `
	SELECT i.id, i.order_id, i.product_id, p.name AS product_name, i.quantity, i.unit_price,
	       i.original_price, i.discount_type, i.discount_rate, i.total_price, i.sph, i.cyl,
	       i.axis, i.bc, i.dia, i.memo, i.position
	FROM order_items i JOIN products p ON p.id = i.product_id
	WHERE i.order_id = $1 ORDER BY i.position`

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return getOrder(ctx, r.db, `SELECT `+orderColumns+orderFrom+` WHERE o.id = $1`, id)
}

func (r *postgresRepo) GetByNumber(ctx context.Context, period, orderNo string) (*Order, error) {
	return getOrder(ctx, r.db,
		`SELECT `+orderColumns+orderFrom+` WHERE o.period = $1 AND o.order_no = $2`, period, orderNo)
}

func getOrder(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*Order, error) {
	var o Order
	err := sqlx.GetContext(ctx, q, &o, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrOrderNotFound.New(args[len(args)-1])
	}
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	if err := sqlx.SelectContext(ctx, q, &o.Items, itemQuery, o.ID); err != nil {
		return nil, errors.Wrap(err, "list order items")
	}
	return &o, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]*Order, error) {
	w := &database.Where{}
	if f.StoreID != nil {
		w.Add("o.store_id = ?", *f.StoreID)
	}
	if f.Status != "" {
		w.Add("o.status = ?", f.Status)
	}
	if f.Type != "" {
		w.Add("o.order_type = ?", f.Type)
	}
	if f.From != nil {
		w.Add("o.ordered_at >= ?", *f.From)
	}
	if f.To != nil {
		w.Add("o.ordered_at < ?", *f.To)
	}
	var orders []*Order
	err := r.db.SelectContext(ctx, &orders,
		`SELECT `+orderColumns+orderFrom+w.String()+` ORDER BY o.ordered_at DESC, o.id`+database.Limit(f.Limit),
		w.Args()...)
	return orders, errors.Wrap(err, "list orders")
}

// ── transaction ──────────────────────────────────────────────────────────────

type pgTx struct {
	ledger.Tx
	tx *sqlx.Tx
}

func (p *pgTx) NextSequence(ctx context.Context, key string) (int, error) {
	return database.NextSequence(ctx, p.tx, key)
}

func (p *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	_, err := p.tx.NamedExecContext(ctx, `
		INSERT INTO orders
		  (id, order_no, period, store_id, order_type, status, total_amount, memo, created_by, ordered_at)
		VALUES
		  (:id, :order_no, :period, :store_id, :order_type, :status, :total_amount, :memo, :created_by, :ordered_at)`, o)
	if database.IsUniqueViolation(err) {
		return apperr.ErrDuplicate.Wrap(err, "order number "+o.OrderNo)
	}
	if err != nil {
		return errors.Wrap(err, "insert order")
	}
	for _, it := range o.Items {
		_, err = p.tx.NamedExecContext(ctx, `
			INSERT INTO order_items
			  (id, order_id, product_id, quantity, unit_price, original_price, discount_type,
			   discount_rate, total_price, sph, cyl, axis, bc, dia, memo, position)
			VALUES
			  (:id, :order_id, :product_id, :quantity, :unit_price, :original_price, :discount_type,
			   :discount_rate, :total_price, :sph, :cyl, :axis, :bc, :dia, :memo, :position)`, it)
		if err != nil {
			return errors.Wrap(err, "insert order item")
		}
	}
	return nil
}

func (p *pgTx) LockOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return LockOrder(ctx, p.tx, id)
}

// LockOrder loads an order with its items, holding the order row lock for the rest of tx.
func LockOrder(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Order, error) {
	return getOrder(ctx, tx, `SELECT `+orderColumns+orderFrom+` WHERE o.id = $1 FOR UPDATE OF o`, id)
}

func (p *pgTx) UpdateStatus(ctx context.Context, o *Order) error {
	_, err := p.tx.NamedExecContext(ctx, `
		UPDATE orders SET status = :status, confirmed_at = :confirmed_at, shipped_at = :shipped_at,
		       delivered_at = :delivered_at, cancelled_at = :cancelled_at, updated_at = NOW()
		WHERE id = :id`, o)
	return errors.Wrap(err, "update order status")
}

func (p *pgTx) HasOpenReturns(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var ok bool
	err := p.tx.GetContext(ctx, &ok,
		`SELECT EXISTS (SELECT 1 FROM returns WHERE order_id = $1 AND status <> 'rejected')`, orderID)
	return ok, errors.Wrap(err, "check returns")
}
