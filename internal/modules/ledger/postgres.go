package ledger

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/database"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type pgTx struct{ tx *sqlx.Tx }

// NewPostgresTx adapts an open sqlx transaction to Tx.
func NewPostgresTx(tx *sqlx.Tx) Tx { return &pgTx{tx: tx} }

func (p *pgTx) LockStore(ctx context.Context, storeID uuid.UUID) (*StoreAccount, error) {
	var a StoreAccount
	err := p.tx.GetContext(ctx, &a, `
		SELECT id, code, name, is_active, outstanding_amount, credit_limit
		FROM stores WHERE id = $1 FOR UPDATE`, storeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrStoreNotFound.New()
	}
	if err != nil {
		return nil, errors.Wrap(err, "lock store")
	}
	return &a, nil
}

func (p *pgTx) SetOutstanding(ctx context.Context, storeID uuid.UUID, amount int64) error {
	_, err := p.tx.ExecContext(ctx,
		`UPDATE stores SET outstanding_amount = $2, updated_at = NOW() WHERE id = $1`, storeID, amount)
	return err
}

func (p *pgTx) TouchLastPayment(ctx context.Context, storeID uuid.UUID, at time.Time) error {
	_, err := p.tx.ExecContext(ctx, `UPDATE stores SET last_payment_at = $2 WHERE id = $1`, storeID, at)
	return err
}

func (p *pgTx) InsertTransaction(ctx context.Context, t *Transaction) error {
	_, err := p.tx.NamedExecContext(ctx, `
		INSERT INTO transactions
		  (id, store_id, type, amount, balance_after, order_id, order_no, return_id,
		   payment_method, depositor, bank_name, memo, processed_by, processed_at)
		VALUES
		  (:id, :store_id, :type, :amount, :balance_after, :order_id, :order_no, :return_id,
		   :payment_method, :depositor, :bank_name, :memo, :processed_by, :processed_at)`, t)
	return err
}

const optionColumns = `id, product_id, sph, cyl, stock, is_active`

func (p *pgTx) LockOption(ctx context.Context, optionID uuid.UUID) (*OptionStock, error) {
	var o OptionStock
	err := p.tx.GetContext(ctx, &o,
		`SELECT `+optionColumns+` FROM product_options WHERE id = $1 FOR UPDATE`, optionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrOptionNotFound.New(optionID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "lock option")
	}
	return &o, nil
}

func (p *pgTx) MatchOption(ctx context.Context, productID uuid.UUID, sph, cyl string) (*OptionStock, error) {
	var o OptionStock
	err := p.tx.GetContext(ctx, &o, `
		SELECT `+optionColumns+` FROM product_options
		WHERE product_id = $1 AND sph = $2 AND cyl = $3 AND is_active
		FOR UPDATE`, productID, sph, cyl)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "match option")
	}
	return &o, nil
}

func (p *pgTx) SetStock(ctx context.Context, optionID uuid.UUID, stock float64) error {
	_, err := p.tx.ExecContext(ctx,
		`UPDATE product_options SET stock = $2, updated_at = NOW() WHERE id = $1`, optionID, stock)
	return err
}

func (p *pgTx) InsertInventoryTransaction(ctx context.Context, it *InventoryTransaction) error {
	_, err := p.tx.NamedExecContext(ctx, `
		INSERT INTO inventory_transactions
		  (id, product_id, product_option_id, type, reason, quantity, before_stock, after_stock,
		   order_id, order_no, purchase_id, return_id, unit_price, total_price, memo,
		   processed_by, created_at)
		VALUES
		  (:id, :product_id, :product_option_id, :type, :reason, :quantity, :before_stock, :after_stock,
		   :order_id, :order_no, :purchase_id, :return_id, :unit_price, :total_price, :memo,
		   :processed_by, :created_at)`, it)
	return err
}

const movementColumns = `id, product_id, product_option_id, type, reason, quantity, before_stock,
	after_stock, order_id, order_no, purchase_id, return_id, unit_price, total_price, memo,
	processed_by, created_at`

func (p *pgTx) OrderMovements(ctx context.Context, orderID uuid.UUID) ([]*InventoryTransaction, error) {
	var rows []*InventoryTransaction
	err := p.tx.SelectContext(ctx, &rows, `
		SELECT `+movementColumns+` FROM inventory_transactions
		WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	return rows, err
}

func (p *pgTx) InsertWorkLog(ctx context.Context, w *WorkLog) error {
	var details interface{}
	if len(w.Details) > 0 {
		details = string(w.Details)
	}
	_, err := p.tx.ExecContext(ctx, `
		INSERT INTO work_logs
		  (id, work_type, target_type, target_id, target_no, description, details, user_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9)`,
		w.ID, w.WorkType, w.TargetType, w.TargetID, w.TargetNo, w.Description, details, w.UserName, w.CreatedAt)
	return err
}

// ── read side ────────────────────────────────────────────────────────────────

type postgresRepo struct{ db *sqlx.DB }

// NewPostgresRepository returns the read-side ledger repository.
func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

const transactionColumns = `id, store_id, type, amount, balance_after, order_id, order_no, return_id,
	payment_method, depositor, bank_name, memo, processed_by, processed_at`

func (r *postgresRepo) ListTransactions(ctx context.Context, f TransactionFilter) ([]*Transaction, error) {
	w := &database.Where{}
	if f.StoreID != nil {
		w.Add("store_id = ?", *f.StoreID)
	}
	if f.Type != "" {
		w.Add("type = ?", f.Type)
	}
	if f.From != nil {
		w.Add("processed_at >= ?", *f.From)
	}
	if f.To != nil {
		w.Add("processed_at < ?", *f.To)
	}
	var rows []*Transaction
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+transactionColumns+` FROM transactions`+w.String()+
			` ORDER BY processed_at, id`+database.Limit(f.Limit), w.Args()...)
	return rows, errors.Wrap(err, "list transactions")
}

func (r *postgresRepo) BalanceBefore(ctx context.Context, storeID uuid.UUID, at time.Time) (int64, error) {
	var bal int64
	err := r.db.GetContext(ctx, &bal, `
		SELECT balance_after FROM transactions
		WHERE store_id = $1 AND processed_at < $2
		ORDER BY processed_at DESC, id DESC LIMIT 1`, storeID, at)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return bal, errors.Wrap(err, "balance before")
}

func (r *postgresRepo) ListMovements(ctx context.Context, f MovementFilter) ([]*InventoryTransaction, error) {
	w := &database.Where{}
	if f.OptionID != nil {
		w.Add("product_option_id = ?", *f.OptionID)
	}
	if f.ProductID != nil {
		w.Add("product_id = ?", *f.ProductID)
	}
	if f.OrderID != nil {
		w.Add("order_id = ?", *f.OrderID)
	}
	if f.PurchaseID != nil {
		w.Add("purchase_id = ?", *f.PurchaseID)
	}
	if f.Type != "" {
		w.Add("type = ?", f.Type)
	}
	if f.From != nil {
		w.Add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.Add("created_at < ?", *f.To)
	}
	var rows []*InventoryTransaction
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+movementColumns+` FROM inventory_transactions`+w.String()+
			` ORDER BY created_at DESC, id`+database.Limit(f.Limit), w.Args()...)
	return rows, errors.Wrap(err, "list movements")
}

func (r *postgresRepo) ListWorkLogs(ctx context.Context, f WorkLogFilter) ([]*WorkLog, error) {
	w := &database.Where{}
	if f.TargetType != "" {
		w.Add("target_type = ?", f.TargetType)
	}
	if f.TargetID != nil {
		w.Add("target_id = ?", *f.TargetID)
	}
	if f.WorkType != "" {
		w.Add("work_type = ?", f.WorkType)
	}
	var rows []*WorkLog
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, work_type, target_type, target_id, target_no, description, details, user_name, created_at
		FROM work_logs`+w.String()+` ORDER BY created_at DESC, id`+database.Limit(f.Limit), w.Args()...)
	return rows, errors.Wrap(err, "list work logs")
}

// ── reports ─────────────────────────────────────────────────────────────────

// salesRows are the transactions that move booked revenue.
const salesRows = `(type IN ('sale', 'return') OR (type = 'adjustment' AND order_id IS NOT NULL))`

func salesWhere(f SalesFilter, alias string) *database.Where {
	w := &database.Where{}
	w.Add(alias+"processed_at >= ?", f.From)
	w.Add(alias+"processed_at < ?", f.To)
	if f.StoreID != nil {
		w.Add(alias+"store_id = ?", *f.StoreID)
	}
	return w
}

func (r *postgresRepo) DailySales(ctx context.Context, f SalesFilter, tz string) ([]*PeriodSales, error) {
	w := salesWhere(f, "")
	args := append(w.Args(), tz)
	var rows []*PeriodSales
	err := r.db.SelectContext(ctx, &rows, `
		SELECT to_char(processed_at AT TIME ZONE $`+strconv.Itoa(len(args))+`, 'YYYY-MM-DD') AS period,
		       COUNT(*) FILTER (WHERE type = 'sale') AS orders,
		       COALESCE(SUM(amount) FILTER (WHERE type = 'sale'), 0)::BIGINT AS sales,
		       COALESCE(-SUM(amount) FILTER (WHERE type = 'adjustment'), 0)::BIGINT AS cancelled,
		       COALESCE(-SUM(amount) FILTER (WHERE type = 'return'), 0)::BIGINT AS returned
		FROM transactions`+w.String()+` AND `+salesRows+`
		GROUP BY 1 ORDER BY 1`, args...)
	return rows, errors.Wrap(err, "daily sales")
}

func (r *postgresRepo) ProductSales(ctx context.Context, f SalesFilter) ([]*ProductSales, error) {
	w := salesWhere(f, "t.")
	var rows []*ProductSales
	err := r.db.SelectContext(ctx, &rows, `
		SELECT oi.product_id, p.name AS product_name,
		       SUM(oi.quantity * SIGN(t.amount)) AS quantity,
		       SUM(oi.total_price * SIGN(t.amount))::BIGINT AS amount,
		       COUNT(DISTINCT t.order_id) FILTER (WHERE t.type = 'sale') AS orders
		FROM transactions t
		JOIN order_items oi ON oi.order_id = t.order_id
		JOIN products p ON p.id = oi.product_id`+w.String()+`
		  AND t.order_id IS NOT NULL AND t.type IN ('sale', 'adjustment')
		GROUP BY oi.product_id, p.name
		ORDER BY amount DESC, p.name`, w.Args()...)
	return rows, errors.Wrap(err, "product sales")
}
