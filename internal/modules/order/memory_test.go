package order

import (
	"context"
	"sync"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger/ledgertest"
	"github.com/georgemunganga/lensworks-backend/internal/modules/pricing"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// memRepo is an order Repository whose transactions commit or roll back as a whole.
type memRepo struct {
	mu          sync.Mutex
	ledger      *ledgertest.Store
	orders      map[uuid.UUID]*Order
	seq         map[string]int
	openReturns map[uuid.UUID]bool
}

func newMemRepo(s *ledgertest.State) *memRepo {
	return &memRepo{
		ledger:      ledgertest.NewStore(s),
		orders:      map[uuid.UUID]*Order{},
		seq:         map[string]int{},
		openReturns: map[uuid.UUID]bool{},
	}
}

func (m *memRepo) WithinTx(_ context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := make(map[uuid.UUID]*Order, len(m.orders))
	for id, o := range m.orders {
		cp := *o
		orders[id] = &cp
	}
	seq := make(map[string]int, len(m.seq))
	for k, v := range m.seq {
		seq[k] = v
	}
	return m.ledger.Run(func(s *ledgertest.State) error {
		if err := fn(&memTx{Tx: s.Tx(), orders: orders, seq: seq, openReturns: m.openReturns}); err != nil {
			return err
		}
		m.orders, m.seq = orders, seq
		return nil
	})
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, apperr.ErrOrderNotFound.New(id)
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) GetByNumber(_ context.Context, period, orderNo string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.Period == period && o.OrderNo == orderNo {
			cp := *o
			return &cp, nil
		}
	}
	return nil, apperr.ErrOrderNotFound.New(orderNo)
}

func (m *memRepo) List(_ context.Context, f ListFilter) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Order
	for _, o := range m.orders {
		if f.StoreID != nil && o.StoreID != *f.StoreID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Type != "" && o.OrderType != f.Type {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *memRepo) order(id uuid.UUID) *Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

type memTx struct {
	ledger.Tx
	orders      map[uuid.UUID]*Order
	seq         map[string]int
	openReturns map[uuid.UUID]bool
}

func (t *memTx) NextSequence(_ context.Context, key string) (int, error) {
	t.seq[key]++
	return t.seq[key], nil
}

func (t *memTx) InsertOrder(_ context.Context, o *Order) error {
	for _, existing := range t.orders {
		if existing.Period == o.Period && existing.OrderNo == o.OrderNo {
			return apperr.ErrDuplicate.New("order number " + o.OrderNo)
		}
	}
	cp := *o
	t.orders[o.ID] = &cp
	return nil
}

func (t *memTx) LockOrder(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := t.orders[id]
	if !ok {
		return nil, apperr.ErrOrderNotFound.New(id)
	}
	cp := *o
	return &cp, nil
}

func (t *memTx) UpdateStatus(_ context.Context, o *Order) error {
	cur := t.orders[o.ID]
	cur.Status = o.Status
	cur.ConfirmedAt, cur.ShippedAt, cur.DeliveredAt, cur.CancelledAt = o.ConfirmedAt, o.ShippedAt, o.DeliveredAt, o.CancelledAt
	return nil
}

func (t *memTx) HasOpenReturns(_ context.Context, orderID uuid.UUID) (bool, error) {
	return t.openReturns[orderID], nil
}

// stubPricer resolves prices from a fixed catalog through the real discount chain.
type stubPricer struct {
	products  map[uuid.UUID]*pricing.Product
	overrides map[uuid.UUID]pricing.Overrides
}

func (p *stubPricer) Quote(_ context.Context, storeID, productID uuid.UUID) (*pricing.Quote, error) {
	prod, ok := p.products[productID]
	if !ok {
		return nil, apperr.ErrProductNotFound.New(productID)
	}
	q := pricing.Resolve(prod, p.overrides[storeID])
	return &q, nil
}

type fixture struct {
	svc     Service
	repo    *memRepo
	pricer  *stubPricer
	hook    *test.Hook
	now     time.Time
	storeID uuid.UUID
}

func newFixture(outstanding, creditLimit int64) *fixture {
	state := ledgertest.NewState()
	f := &fixture{
		repo:   newMemRepo(state),
		pricer: &stubPricer{products: map[uuid.UUID]*pricing.Product{}, overrides: map[uuid.UUID]pricing.Overrides{}},
		now:    time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
	}
	f.storeID = state.AddStore(outstanding, creditLimit)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	f.hook = hook
	f.svc = NewService(f.repo, f.pricer, logger, Options{Location: time.UTC, Now: func() time.Time { return f.now }})
	return f
}

func (f *fixture) state() *ledgertest.State { return f.repo.ledger.State() }

func (f *fixture) product(price int64) uuid.UUID {
	id := uuid.New()
	f.pricer.products[id] = &pricing.Product{ID: id, BrandID: uuid.New(), Name: "lens", SellingPrice: price, IsActive: true}
	return id
}

// option seeds stock directly into the committed ledger state.
func (f *fixture) option(productID uuid.UUID, sph, cyl string, stock float64) uuid.UUID {
	return f.state().AddOption(productID, sph, cyl, stock)
}
