package returns

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/database"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/georgemunganga/lensworks-backend/internal/modules/order"
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

const returnColumns = `r.id, r.return_no, r.order_id, r.order_no, r.store_id, s.name AS store_name, r.type,
	r.status, r.total_quantity, r.total_amount, r.reason, r.memo, r.processed_by, r.requested_at,
	r.approved_at, r.received_at, r.rejected_at`

const returnFrom = ` FROM returns r JOIN stores s ON s.id = r.store_id`

func getReturn(ctx context.Context, q sqlx.QueryerContext, query string, id uuid.UUID) (*Return, error) {
	var ret Return
	err := sqlx.GetContext(ctx, q, &ret, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrReturnNotFound.New(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get return")
	}
	err = sqlx.SelectContext(ctx, q, &ret.Items,
		`SELECT * FROM return_items WHERE return_id = $1 ORDER BY position`, ret.ID)
	if err != nil {
		return nil, errors.Wrap(err, "list return items")
	}
	return &ret, nil
}

func (r *postgresRepo) Get(ctx context.Context, id uuid.UUID) (*Return, error) {
	return getReturn(ctx, r.db, `SELECT `+returnColumns+returnFrom+` WHERE r.id = $1`, id)
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]*Return, error) {
	w := &database.Where{}
	if f.StoreID != nil {
		w.Add("r.store_id = ?", *f.StoreID)
	}
	if f.OrderID != nil {
		w.Add("r.order_id = ?", *f.OrderID)
	}
	if f.Status != "" {
		w.Add("r.status = ?", f.Status)
	}
	var out []*Return
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+returnColumns+returnFrom+w.String()+` ORDER BY r.requested_at DESC`+database.Limit(f.Limit),
		w.Args()...)
	return out, errors.Wrap(err, "list returns")
}

// ── transaction ──────────────────────────────────────────────────────────────

type pgTx struct {
	ledger.Tx
	tx *sqlx.Tx
}

func (p *pgTx) NextSequence(ctx context.Context, key string) (int, error) {
	return database.NextSequence(ctx, p.tx, key)
}

func (p *pgTx) LockOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return order.LockOrder(ctx, p.tx, id)
}

func (p *pgTx) ReturnedQuantities(ctx context.Context, orderID uuid.UUID) (map[uuid.UUID]float64, error) {
	var rows []struct {
		OrderItemID uuid.UUID `db:"order_item_id"`
		Quantity    float64   `db:"quantity"`
	}
	err := p.tx.SelectContext(ctx, &rows, `
		SELECT i.order_item_id, SUM(i.quantity) AS quantity
		FROM return_items i JOIN returns r ON r.id = i.return_id
		WHERE r.order_id = $1 AND r.status <> 'rejected'
		GROUP BY i.order_item_id`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "returned quantities")
	}
	out := make(map[uuid.UUID]float64, len(rows))
	for _, row := range rows {
		out[row.OrderItemID] = row.Quantity
	}
	return out, nil
}

func (p *pgTx) InsertReturn(ctx context.Context, ret *Return) error {
	_, err := p.tx.NamedExecContext(ctx, `
		INSERT INTO returns (id, return_no, order_id, order_no, store_id, type, status, total_quantity,
		                     total_amount, reason, memo, processed_by, requested_at)
		VALUES (:id, :return_no, :order_id, :order_no, :store_id, :type, :status, :total_quantity,
		        :total_amount, :reason, :memo, :processed_by, :requested_at)`, ret)
	if database.IsUniqueViolation(err) {
		return apperr.ErrDuplicate.Wrap(err, "return number "+ret.ReturnNo)
	}
	if err != nil {
		return errors.Wrap(err, "insert return")
	}
	for _, it := range ret.Items {
		_, err = p.tx.NamedExecContext(ctx, `
			INSERT INTO return_items (id, return_id, order_item_id, product_id, sph, cyl, quantity,
			                          unit_price, total_price, reason, condition, position)
			VALUES (:id, :return_id, :order_item_id, :product_id, :sph, :cyl, :quantity,
			        :unit_price, :total_price, :reason, :condition, :position)`, it)
		if err != nil {
			return errors.Wrap(err, "insert return item")
		}
	}
	return nil
}

func (p *pgTx) LockReturn(ctx context.Context, id uuid.UUID) (*Return, error) {
	return getReturn(ctx, p.tx, `SELECT `+returnColumns+returnFrom+` WHERE r.id = $1 FOR UPDATE OF r`, id)
}

func (p *pgTx) UpdateStatus(ctx context.Context, ret *Return) error {
	_, err := p.tx.NamedExecContext(ctx, `
		UPDATE returns SET status = :status, memo = :memo, processed_by = :processed_by,
		       approved_at = :approved_at, received_at = :received_at, rejected_at = :rejected_at,
		       updated_at = NOW()
		WHERE id = :id`, ret)
	return errors.Wrap(err, "update return status")
}
