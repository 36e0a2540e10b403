// Package ledgertest provides an in-memory ledger.Tx for service tests.
package ledgertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/google/uuid"
)

// State is a snapshot of every ledger-owned row.
type State struct {
	Stores       map[uuid.UUID]*ledger.StoreAccount
	LastPayment  map[uuid.UUID]time.Time
	Options      map[uuid.UUID]*ledger.OptionStock
	Transactions []*ledger.Transaction
	Movements    []*ledger.InventoryTransaction
	WorkLogs     []*ledger.WorkLog

	// OrderLines stands in for order_items in sales reports.
	OrderLines map[uuid.UUID][]OrderLine

	// FailOn makes the named Tx method return ErrInjected, to exercise rollback.
	FailOn string
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		Stores:      map[uuid.UUID]*ledger.StoreAccount{},
		LastPayment: map[uuid.UUID]time.Time{},
		Options:     map[uuid.UUID]*ledger.OptionStock{},
		OrderLines:  map[uuid.UUID][]OrderLine{},
	}
}

// Clone deep-copies the mutable rows. Appended ledger rows are immutable and shared.
func (s *State) Clone() *State {
	c := NewState()
	for id, a := range s.Stores {
		cp := *a
		c.Stores[id] = &cp
	}
	for id, t := range s.LastPayment {
		c.LastPayment[id] = t
	}
	for id, o := range s.Options {
		cp := *o
		c.Options[id] = &cp
	}
	c.Transactions = append([]*ledger.Transaction(nil), s.Transactions...)
	c.Movements = append([]*ledger.InventoryTransaction(nil), s.Movements...)
	c.WorkLogs = append([]*ledger.WorkLog(nil), s.WorkLogs...)
	for id, lines := range s.OrderLines {
		c.OrderLines[id] = lines
	}
	c.FailOn = s.FailOn
	return c
}

// AddStore seeds an active store.
func (s *State) AddStore(outstanding, creditLimit int64) uuid.UUID {
	id := uuid.New()
	s.Stores[id] = &ledger.StoreAccount{
		ID:                id,
		Code:              id.String()[:8],
		Name:              "store " + id.String()[:4],
		IsActive:          true,
		OutstandingAmount: outstanding,
		CreditLimit:       creditLimit,
	}
	return id
}

// AddOption seeds an active option with stock.
func (s *State) AddOption(productID uuid.UUID, sph, cyl string, stock float64) uuid.UUID {
	id := uuid.New()
	s.Options[id] = &ledger.OptionStock{ID: id, ProductID: productID, Sph: sph, Cyl: cyl, Stock: stock, IsActive: true}
	return id
}

// OrderLine is one order line as seen by the sales report.
type OrderLine struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    float64
	TotalPrice  int64
}

// AddOrderLine records a line of orderID for ProductSales.
func (s *State) AddOrderLine(orderID uuid.UUID, line OrderLine) {
	s.OrderLines[orderID] = append(s.OrderLines[orderID], line)
}

// Outstanding returns the store's current outstanding amount.
func (s *State) Outstanding(storeID uuid.UUID) int64 { return s.Stores[storeID].OutstandingAmount }

// Stock returns the option's current stock.
func (s *State) Stock(optionID uuid.UUID) float64 { return s.Options[optionID].Stock }

// StoreTransactions returns the store's rows in insertion order.
func (s *State) StoreTransactions(storeID uuid.UUID) []*ledger.Transaction {
	var out []*ledger.Transaction
	for _, t := range s.Transactions {
		if t.StoreID == storeID {
			out = append(out, t)
		}
	}
	return out
}

// SumTransactions is the running sum of the store's Transaction amounts.
func (s *State) SumTransactions(storeID uuid.UUID) int64 {
	var sum int64
	for _, t := range s.StoreTransactions(storeID) {
		sum += t.Amount
	}
	return sum
}

// OptionMovements returns the option's rows in insertion order.
func (s *State) OptionMovements(optionID uuid.UUID) []*ledger.InventoryTransaction {
	var out []*ledger.InventoryTransaction
	for _, m := range s.Movements {
		if m.ProductOptionID == optionID {
			out = append(out, m)
		}
	}
	return out
}

// Tx returns a ledger.Tx writing into s.
func (s *State) Tx() ledger.Tx { return &memTx{s: s} }

type injected string

func (e injected) Error() string { return "injected failure in " + string(e) }

// ErrInjected is returned by the method named in State.FailOn.
var ErrInjected error = injected("ledgertest")

type memTx struct{ s *State }

func (m *memTx) fail(op string) error {
	if m.s.FailOn == op {
		return ErrInjected
	}
	return nil
}

func (m *memTx) LockStore(_ context.Context, storeID uuid.UUID) (*ledger.StoreAccount, error) {
	a, ok := m.s.Stores[storeID]
	if !ok {
		return nil, apperr.ErrStoreNotFound.New()
	}
	cp := *a
	return &cp, nil
}

func (m *memTx) SetOutstanding(_ context.Context, storeID uuid.UUID, amount int64) error {
	if err := m.fail("SetOutstanding"); err != nil {
		return err
	}
	m.s.Stores[storeID].OutstandingAmount = amount
	return nil
}

func (m *memTx) TouchLastPayment(_ context.Context, storeID uuid.UUID, at time.Time) error {
	m.s.LastPayment[storeID] = at
	return nil
}

func (m *memTx) InsertTransaction(_ context.Context, t *ledger.Transaction) error {
	if err := m.fail("InsertTransaction"); err != nil {
		return err
	}
	m.s.Transactions = append(m.s.Transactions, t)
	return nil
}

func (m *memTx) LockOption(_ context.Context, optionID uuid.UUID) (*ledger.OptionStock, error) {
	o, ok := m.s.Options[optionID]
	if !ok {
		return nil, apperr.ErrOptionNotFound.New(optionID)
	}
	cp := *o
	return &cp, nil
}

func (m *memTx) MatchOption(_ context.Context, productID uuid.UUID, sph, cyl string) (*ledger.OptionStock, error) {
	for _, o := range m.s.Options {
		if o.IsActive && o.ProductID == productID && o.Sph == sph && o.Cyl == cyl {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memTx) SetStock(_ context.Context, optionID uuid.UUID, stock float64) error {
	if err := m.fail("SetStock"); err != nil {
		return err
	}
	m.s.Options[optionID].Stock = stock
	return nil
}

func (m *memTx) InsertInventoryTransaction(_ context.Context, it *ledger.InventoryTransaction) error {
	if err := m.fail("InsertInventoryTransaction"); err != nil {
		return err
	}
	m.s.Movements = append(m.s.Movements, it)
	return nil
}

func (m *memTx) OrderMovements(_ context.Context, orderID uuid.UUID) ([]*ledger.InventoryTransaction, error) {
	var out []*ledger.InventoryTransaction
	for _, it := range m.s.Movements {
		if it.OrderID != nil && *it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memTx) InsertWorkLog(_ context.Context, w *ledger.WorkLog) error {
	if err := m.fail("InsertWorkLog"); err != nil {
		return err
	}
	m.s.WorkLogs = append(m.s.WorkLogs, w)
	return nil
}

// Store is a transactional holder for a State: Run applies fn to a clone and
// keeps the clone only when fn succeeds.
type Store struct {
	mu    sync.Mutex
	state *State
}

// NewStore wraps s.
func NewStore(s *State) *Store { return &Store{state: s} }

// State returns the committed snapshot.
func (st *Store) State() *State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// Run executes fn against a working copy and commits it on success.
func (st *Store) Run(fn func(s *State) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	work := st.state.Clone()
	if err := fn(work); err != nil {
		return err
	}
	st.state = work
	return nil
}

// Repository is a ledger.Repository over a Store.
type Repository struct{ Store *Store }

func (r Repository) ListTransactions(_ context.Context, f ledger.TransactionFilter) ([]*ledger.Transaction, error) {
	var out []*ledger.Transaction
	for _, t := range r.Store.State().Transactions {
		if f.StoreID != nil && t.StoreID != *f.StoreID {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.From != nil && t.ProcessedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !t.ProcessedAt.Before(*f.To) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProcessedAt.Before(out[j].ProcessedAt) })
	return out, nil
}

func (r Repository) BalanceBefore(_ context.Context, storeID uuid.UUID, at time.Time) (int64, error) {
	var bal int64
	var last time.Time
	for _, t := range r.Store.State().Transactions {
		if t.StoreID == storeID && t.ProcessedAt.Before(at) && !t.ProcessedAt.Before(last) {
			bal, last = t.BalanceAfter, t.ProcessedAt
		}
	}
	return bal, nil
}

func (r Repository) ListMovements(_ context.Context, f ledger.MovementFilter) ([]*ledger.InventoryTransaction, error) {
	var out []*ledger.InventoryTransaction
	for _, it := range r.Store.State().Movements {
		if f.OptionID != nil && it.ProductOptionID != *f.OptionID {
			continue
		}
		if f.OrderID != nil && (it.OrderID == nil || *it.OrderID != *f.OrderID) {
			continue
		}
		if f.PurchaseID != nil && (it.PurchaseID == nil || *it.PurchaseID != *f.PurchaseID) {
			continue
		}
		if f.Type != "" && it.Type != f.Type {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (r Repository) ListWorkLogs(_ context.Context, f ledger.WorkLogFilter) ([]*ledger.WorkLog, error) {
	var out []*ledger.WorkLog
	for _, w := range r.Store.State().WorkLogs {
		if f.TargetType != "" && w.TargetType != f.TargetType {
			continue
		}
		if f.TargetID != nil && w.TargetID != *f.TargetID {
			continue
		}
		if f.WorkType != "" && w.WorkType != f.WorkType {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func salesRow(t *ledger.Transaction, f ledger.SalesFilter) bool {
	if t.ProcessedAt.Before(f.From) || !t.ProcessedAt.Before(f.To) {
		return false
	}
	if f.StoreID != nil && t.StoreID != *f.StoreID {
		return false
	}
	switch t.Type {
	case ledger.TxSale, ledger.TxReturn:
		return true
	case ledger.TxAdjustment:
		return t.OrderID != nil
	}
	return false
}

func (r Repository) DailySales(_ context.Context, f ledger.SalesFilter, tz string) ([]*ledger.PeriodSales, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	byDay := map[string]*ledger.PeriodSales{}
	for _, t := range r.Store.State().Transactions {
		if !salesRow(t, f) {
			continue
		}
		day := t.ProcessedAt.In(loc).Format("2006-01-02")
		p, ok := byDay[day]
		if !ok {
			p = &ledger.PeriodSales{Period: day}
			byDay[day] = p
		}
		switch t.Type {
		case ledger.TxSale:
			p.Orders++
			p.Sales += t.Amount
		case ledger.TxAdjustment:
			p.Cancelled -= t.Amount
		case ledger.TxReturn:
			p.Returned -= t.Amount
		}
	}
	out := make([]*ledger.PeriodSales, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

func (r Repository) ProductSales(_ context.Context, f ledger.SalesFilter) ([]*ledger.ProductSales, error) {
	st := r.Store.State()
	byProduct := map[uuid.UUID]*ledger.ProductSales{}
	orders := map[uuid.UUID]map[uuid.UUID]bool{}
	for _, t := range st.Transactions {
		if t.OrderID == nil || t.Type == ledger.TxReturn || !salesRow(t, f) {
			continue
		}
		sign := int64(1)
		if t.Amount < 0 {
			sign = -1
		}
		for _, l := range st.OrderLines[*t.OrderID] {
			p, ok := byProduct[l.ProductID]
			if !ok {
				p = &ledger.ProductSales{ProductID: l.ProductID, ProductName: l.ProductName}
				byProduct[l.ProductID] = p
				orders[l.ProductID] = map[uuid.UUID]bool{}
			}
			p.Quantity += l.Quantity * float64(sign)
			p.Amount += l.TotalPrice * sign
			if t.Type == ledger.TxSale {
				orders[l.ProductID][*t.OrderID] = true
			}
		}
	}
	out := make([]*ledger.ProductSales, 0, len(byProduct))
	for id, p := range byProduct {
		p.Orders = len(orders[id])
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].ProductName < out[j].ProductName
	})
	return out, nil
}
