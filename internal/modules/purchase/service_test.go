package purchase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/actor"
	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/events"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger/ledgertest"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu        sync.Mutex
	ledger    *ledgertest.Store
	suppliers map[uuid.UUID]*Supplier
	purchases map[uuid.UUID]*Purchase
	seq       map[string]int
}

func newMemRepo(s *ledgertest.State) *memRepo {
	return &memRepo{
		ledger:    ledgertest.NewStore(s),
		suppliers: map[uuid.UUID]*Supplier{},
		purchases: map[uuid.UUID]*Purchase{},
		seq:       map[string]int{},
	}
}

type memTx struct {
	ledger.Tx
	purchases map[uuid.UUID]*Purchase
	seq       map[string]int
}

func (m *memTx) NextSequence(_ context.Context, key string) (int, error) {
	m.seq[key]++
	return m.seq[key], nil
}

func (m *memTx) InsertPurchase(_ context.Context, p *Purchase) error {
	cp := *p
	m.purchases[p.ID] = &cp
	return nil
}

func (m *memTx) LockPurchase(_ context.Context, id uuid.UUID) (*Purchase, error) {
	p, ok := m.purchases[id]
	if !ok {
		return nil, apperr.ErrPurchaseNotFound.New(id)
	}
	cp := *p
	return &cp, nil
}

func (m *memTx) UpdateStatus(_ context.Context, p *Purchase) error {
	cp := *p
	m.purchases[p.ID] = &cp
	return nil
}

func (m *memRepo) WithinTx(_ context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	purchases := make(map[uuid.UUID]*Purchase, len(m.purchases))
	for id, p := range m.purchases {
		purchases[id] = p
	}
	seq := make(map[string]int, len(m.seq))
	for k, v := range m.seq {
		seq[k] = v
	}
	return m.ledger.Run(func(s *ledgertest.State) error {
		if err := fn(&memTx{Tx: s.Tx(), purchases: purchases, seq: seq}); err != nil {
			return err
		}
		m.purchases, m.seq = purchases, seq
		return nil
	})
}

func (m *memRepo) CreateSupplier(_ context.Context, s *Supplier) error {
	for _, x := range m.suppliers {
		if x.Name == s.Name {
			return apperr.ErrDuplicate.New("supplier " + s.Name)
		}
	}
	cp := *s
	m.suppliers[s.ID] = &cp
	return nil
}

func (m *memRepo) UpdateSupplier(_ context.Context, s *Supplier) error {
	cp := *s
	m.suppliers[s.ID] = &cp
	return nil
}

func (m *memRepo) GetSupplier(_ context.Context, id uuid.UUID) (*Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return nil, apperr.ErrSupplierNotFound.New()
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) ListSuppliers(_ context.Context, activeOnly bool) ([]*Supplier, error) {
	var out []*Supplier
	for _, s := range m.suppliers {
		if !activeOnly || s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memRepo) GetPurchase(_ context.Context, id uuid.UUID) (*Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.purchases[id]
	if !ok {
		return nil, apperr.ErrPurchaseNotFound.New(id)
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) ListPurchases(_ context.Context, f ListFilter) ([]*Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Purchase
	for _, p := range m.purchases {
		if f.Status == "" || p.Status == f.Status {
			out = append(out, p)
		}
	}
	return out, nil
}

type capture struct{ got []events.Envelope }

func (c *capture) Publish(_ context.Context, e events.Envelope) error {
	c.got = append(c.got, e)
	return nil
}

type fixture struct {
	svc      Service
	repo     *memRepo
	pub      *capture
	supplier *Supplier
	optA     uuid.UUID
	optB     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	state := ledgertest.NewState()
	product := uuid.New()
	f := &fixture{repo: newMemRepo(state), pub: &capture{}}
	f.optA = state.AddOption(product, "-1.00", "0.00", 2)
	f.optB = state.AddOption(product, "-1.25", "0.00", 0)

	logger, _ := test.NewNullLogger()
	f.svc = NewService(f.repo, logger, Options{
		Publisher: f.pub,
		Location:  time.UTC,
		Now:       func() time.Time { return time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC) },
	})
	sp, err := f.svc.CreateSupplier(context.Background(), SupplierRequest{Name: "Hoya Korea"})
	require.NoError(t, err)
	f.supplier = sp
	return f
}

func (f *fixture) place(t *testing.T) *Purchase {
	t.Helper()
	p, err := f.svc.Create(actor.WithName(context.Background(), "lee"), PurchaseRequest{
		SupplierID: f.supplier.ID,
		Items: []PurchaseLine{
			{OptionID: f.optA, Quantity: 10, UnitCost: 8000},
			{OptionID: f.optB, Quantity: 4.5, UnitCost: 8000},
		},
	})
	require.NoError(t, err)
	return p
}

func TestCreatePurchase(t *testing.T) {
	f := newFixture(t)
	p := f.place(t)
	assert.Equal(t, "PO-202602-0001", p.PurchaseNo)
	assert.Equal(t, StatusOrdered, p.Status)
	assert.Equal(t, int64(116000), p.TotalAmount)
	assert.Equal(t, "lee", p.CreatedBy)
	require.Len(t, p.Items, 2)

	assert.Equal(t, "PO-202602-0002", f.place(t).PurchaseNo)

	state := f.repo.ledger.State()
	assert.Equal(t, 2.0, state.Stock(f.optA), "placing an order does not move stock")
	assert.Empty(t, state.Movements)
}

func TestCreatePurchaseValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, PurchaseRequest{SupplierID: f.supplier.ID})
	assert.True(t, apperr.Is(err, apperr.ErrItemsRequired))

	_, err = f.svc.Create(ctx, PurchaseRequest{SupplierID: uuid.New(), Items: []PurchaseLine{{OptionID: f.optA, Quantity: 1}}})
	assert.True(t, apperr.Is(err, apperr.ErrSupplierNotFound))

	_, err = f.svc.Create(ctx, PurchaseRequest{SupplierID: f.supplier.ID, Items: []PurchaseLine{{OptionID: uuid.New(), Quantity: 1}}})
	assert.True(t, apperr.Is(err, apperr.ErrOptionNotFound))

	_, err = f.svc.Create(ctx, PurchaseRequest{SupplierID: f.supplier.ID, Items: []PurchaseLine{{OptionID: f.optA, Quantity: 0}}})
	assert.True(t, apperr.Is(err, apperr.ErrQuantityInvalid))

	_, err = f.svc.Create(ctx, PurchaseRequest{SupplierID: f.supplier.ID, Items: []PurchaseLine{{OptionID: f.optA, Quantity: 1e8, UnitCost: 8000}}})
	assert.True(t, apperr.Is(err, apperr.ErrQuantityTooLarge))

	_, err = f.svc.Create(ctx, PurchaseRequest{SupplierID: f.supplier.ID, Items: []PurchaseLine{{OptionID: f.optA, Quantity: 1, UnitCost: 1e11}}})
	assert.True(t, apperr.Is(err, apperr.ErrPriceTooLarge))
}

func TestReceivePurchase(t *testing.T) {
	f := newFixture(t)
	p := f.place(t)

	got, err := f.svc.Receive(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, got.Status)
	require.NotNil(t, got.ReceivedAt)

	state := f.repo.ledger.State()
	assert.Equal(t, 12.0, state.Stock(f.optA))
	assert.Equal(t, 4.5, state.Stock(f.optB))
	moves := state.OptionMovements(f.optB)
	require.Len(t, moves, 1)
	assert.Equal(t, ledger.MoveIn, moves[0].Type)
	require.NotNil(t, moves[0].PurchaseID)
	assert.Equal(t, p.ID, *moves[0].PurchaseID)
	assert.Equal(t, int64(36000), moves[0].TotalPrice)

	require.Len(t, f.pub.got, 1)
	assert.Equal(t, events.PurchaseReceived, f.pub.got[0].Name)

	_, err = f.svc.Receive(context.Background(), p.ID)
	assert.True(t, apperr.Is(err, apperr.ErrPurchaseNotOpen))
	assert.Equal(t, 12.0, f.repo.ledger.State().Stock(f.optA), "second receipt is rejected")
}

func TestCancelPurchase(t *testing.T) {
	f := newFixture(t)
	p := f.place(t)

	got, err := f.svc.Cancel(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	_, err = f.svc.Receive(context.Background(), p.ID)
	assert.True(t, apperr.Is(err, apperr.ErrPurchaseNotOpen))
	assert.Empty(t, f.repo.ledger.State().Movements)

	_, err = f.svc.Cancel(context.Background(), uuid.New())
	assert.True(t, apperr.Is(err, apperr.ErrPurchaseNotFound))
}

func TestReceiveRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	p := f.place(t)
	f.repo.ledger.State().FailOn = "InsertWorkLog"

	_, err := f.svc.Receive(context.Background(), p.ID)
	require.ErrorIs(t, err, ledgertest.ErrInjected)

	state := f.repo.ledger.State()
	assert.Equal(t, 2.0, state.Stock(f.optA))
	got, err := f.svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOrdered, got.Status)
	assert.Empty(t, f.pub.got)
}
