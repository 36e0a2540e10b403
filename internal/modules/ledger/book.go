package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
)

// BalanceEntry describes one change to a store's outstanding amount.
// Amount is signed: positive increases what the store owes.
type BalanceEntry struct {
	StoreID       uuid.UUID
	Type          TransactionType
	Amount        int64
	OrderID       *uuid.UUID
	OrderNo       string
	ReturnID      *uuid.UUID
	PaymentMethod string
	Depositor     string
	BankName      string
	Memo          string
	Actor         string
	At            time.Time
}

// PostBalance applies e to the store and appends the matching Transaction row.
// It is the only code path that changes outstanding_amount.
func PostBalance(ctx context.Context, tx Tx, e BalanceEntry) (*Transaction, error) {
	acct, err := tx.LockStore(ctx, e.StoreID)
	if err != nil {
		return nil, err
	}
	next, err := AddAmount(acct.OutstandingAmount, e.Amount)
	if err != nil {
		return nil, err
	}
	if err := tx.SetOutstanding(ctx, e.StoreID, next); err != nil {
		return nil, errors.Wrap(err, "set outstanding")
	}
	if e.Type == TxDeposit {
		if err := tx.TouchLastPayment(ctx, e.StoreID, e.At); err != nil {
			return nil, errors.Wrap(err, "touch last payment")
		}
	}

	t := &Transaction{
		ID:            uuid.New(),
		StoreID:       e.StoreID,
		Type:          e.Type,
		Amount:        e.Amount,
		BalanceAfter:  next,
		OrderID:       e.OrderID,
		OrderNo:       e.OrderNo,
		ReturnID:      e.ReturnID,
		PaymentMethod: e.PaymentMethod,
		Depositor:     e.Depositor,
		BankName:      e.BankName,
		Memo:          e.Memo,
		ProcessedBy:   e.Actor,
		ProcessedAt:   e.At,
	}
	if err := tx.InsertTransaction(ctx, t); err != nil {
		return nil, errors.Wrap(err, "insert transaction")
	}
	return t, nil
}

// StockOutcome reports what MoveStock did for one line.
type StockOutcome string

const (
	StockAdjusted        StockOutcome = "adjusted"
	StockClamped         StockOutcome = "clamped"
	StockSkippedNoOption StockOutcome = "skipped_no_option"
)

// StockMove describes one change to an option's stock. Quantity is signed:
// negative removes stock. When OptionID is nil the option is matched by
// ProductID, Sph and Cyl.
type StockMove struct {
	OptionID   *uuid.UUID
	ProductID  uuid.UUID
	Sph        string
	Cyl        string
	Quantity   float64
	Type       MovementType
	Reason     string
	OrderID    *uuid.UUID
	OrderNo    string
	PurchaseID *uuid.UUID
	ReturnID   *uuid.UUID
	UnitPrice  int64
	Memo       string
	Actor      string
	At         time.Time
}

// StockResult is the per-line outcome of MoveStock.
type StockResult struct {
	Outcome   StockOutcome `json:"outcome"`
	ProductID uuid.UUID    `json:"product_id"`
	OptionID  *uuid.UUID   `json:"product_option_id,omitempty"`
	Sph       string       `json:"sph,omitempty"`
	Cyl       string       `json:"cyl,omitempty"`
	Requested float64      `json:"requested"`
	Applied   float64      `json:"applied"`
	Before    float64      `json:"before_stock"`
	After     float64      `json:"after_stock"`
}

// MoveStock applies m to the option and appends the matching InventoryTransaction.
// Removals never drive stock below zero; the row records the delta actually applied.
// It is the only code path that changes product_options.stock.
func MoveStock(ctx context.Context, tx Tx, m StockMove) (StockResult, error) {
	res := StockResult{ProductID: m.ProductID, Sph: m.Sph, Cyl: m.Cyl, Requested: m.Quantity}

	var opt *OptionStock
	var err error
	if m.OptionID != nil {
		opt, err = tx.LockOption(ctx, *m.OptionID)
	} else {
		opt, err = tx.MatchOption(ctx, m.ProductID, m.Sph, m.Cyl)
	}
	if err != nil {
		return res, err
	}
	if opt == nil {
		res.Outcome = StockSkippedNoOption
		return res, nil
	}

	before := opt.Stock
	after := before + m.Quantity
	res.Outcome = StockAdjusted
	if after < 0 {
		after = 0
		res.Outcome = StockClamped
	}
	applied := after - before

	if err := tx.SetStock(ctx, opt.ID, after); err != nil {
		return res, errors.Wrap(err, "set stock")
	}
	qty := applied
	if qty < 0 {
		qty = -qty
	}
	it := &InventoryTransaction{
		ID:              uuid.New(),
		ProductID:       opt.ProductID,
		ProductOptionID: opt.ID,
		Type:            m.Type,
		Reason:          m.Reason,
		Quantity:        applied,
		BeforeStock:     before,
		AfterStock:      after,
		OrderID:         m.OrderID,
		OrderNo:         m.OrderNo,
		PurchaseID:      m.PurchaseID,
		ReturnID:        m.ReturnID,
		UnitPrice:       m.UnitPrice,
		TotalPrice:      roundMoney(qty * float64(m.UnitPrice)),
		Memo:            m.Memo,
		ProcessedBy:     m.Actor,
		CreatedAt:       m.At,
	}
	if err := tx.InsertInventoryTransaction(ctx, it); err != nil {
		return res, errors.Wrap(err, "insert inventory transaction")
	}

	id := opt.ID
	res.OptionID = &id
	res.ProductID = opt.ProductID
	res.Applied = applied
	res.Before = before
	res.After = after
	return res, nil
}

// RemovedByOrder sums, per option, the stock an order's "out" movements actually took.
// The result is positive and is exactly what a reversal must put back.
func RemovedByOrder(ctx context.Context, tx Tx, orderID uuid.UUID) ([]Removal, error) {
	rows, err := tx.OrderMovements(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "order movements")
	}
	var out []Removal
	idx := map[uuid.UUID]int{}
	for _, it := range rows {
		if it.Type != MoveOut {
			continue
		}
		i, ok := idx[it.ProductOptionID]
		if !ok {
			i = len(out)
			idx[it.ProductOptionID] = i
			out = append(out, Removal{OptionID: it.ProductOptionID, ProductID: it.ProductID, UnitPrice: it.UnitPrice})
		}
		out[i].Quantity -= it.Quantity
	}
	return out, nil
}

// Removal is the net quantity an order took from one option.
type Removal struct {
	OptionID  uuid.UUID
	ProductID uuid.UUID
	Quantity  float64
	UnitPrice int64
}

// WorkEntry describes one audit record.
type WorkEntry struct {
	WorkType    string
	TargetType  string
	TargetID    uuid.UUID
	TargetNo    string
	Description string
	Details     interface{}
	Actor       string
	At          time.Time
}

// AppendWorkLog writes an audit record inside the caller's transaction.
func AppendWorkLog(ctx context.Context, tx Tx, e WorkEntry) error {
	w := &WorkLog{
		ID:          uuid.New(),
		WorkType:    e.WorkType,
		TargetType:  e.TargetType,
		TargetID:    e.TargetID,
		TargetNo:    e.TargetNo,
		Description: e.Description,
		UserName:    e.Actor,
		CreatedAt:   e.At,
	}
	if e.Details != nil {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return errors.Wrap(err, "marshal work log details")
		}
		w.Details = types.JSONText(raw)
	}
	return errors.Wrap(tx.InsertWorkLog(ctx, w), "insert work log")
}

func roundMoney(v float64) int64 {
	if v < 0 {
		return -int64(-v + 0.5)
	}
	return int64(v + 0.5)
}
