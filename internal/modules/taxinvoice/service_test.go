package taxinvoice

import (
	"context"
	"sort"
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
	mu       sync.Mutex
	ledger   *ledgertest.Store
	invoices map[uuid.UUID]*TaxInvoice
	seq      map[string]int
}

type memTx struct {
	ledger.Tx
	state    *ledgertest.State
	invoices map[uuid.UUID]*TaxInvoice
	seq      map[string]int
}

func (m *memTx) NextSequence(_ context.Context, key string) (int, error) {
	m.seq[key]++
	return m.seq[key], nil
}

func (m *memTx) Buyer(_ context.Context, storeID uuid.UUID) (*Party, error) {
	a, ok := m.state.Stores[storeID]
	if !ok {
		return nil, apperr.ErrStoreNotFound.New()
	}
	return &Party{Name: a.Name, CEOName: "kim", Address: "Seoul"}, nil
}

func (m *memTx) FindByIdempotencyKey(_ context.Context, key string) (*TaxInvoice, error) {
	for _, t := range m.invoices {
		if t.IdempotencyKey == key {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memTx) InsertInvoice(_ context.Context, t *TaxInvoice) error {
	cp := *t
	m.invoices[t.ID] = &cp
	return nil
}

func (m *memTx) LockInvoice(_ context.Context, id uuid.UUID) (*TaxInvoice, error) {
	t, ok := m.invoices[id]
	if !ok {
		return nil, apperr.ErrTaxInvoiceNotFound.New(id)
	}
	cp := *t
	return &cp, nil
}

func (m *memTx) UpdateStatus(_ context.Context, t *TaxInvoice) error {
	cp := *t
	m.invoices[t.ID] = &cp
	return nil
}

func (m *memRepo) WithinTx(_ context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	invoices := make(map[uuid.UUID]*TaxInvoice, len(m.invoices))
	for id, t := range m.invoices {
		invoices[id] = t
	}
	seq := make(map[string]int, len(m.seq))
	for k, v := range m.seq {
		seq[k] = v
	}
	return m.ledger.Run(func(s *ledgertest.State) error {
		if err := fn(&memTx{Tx: s.Tx(), state: s, invoices: invoices, seq: seq}); err != nil {
			return err
		}
		m.invoices, m.seq = invoices, seq
		return nil
	})
}

func (m *memRepo) GetInvoice(_ context.Context, id uuid.UUID) (*TaxInvoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.invoices[id]
	if !ok {
		return nil, apperr.ErrTaxInvoiceNotFound.New(id)
	}
	cp := *t
	return &cp, nil
}

func matches(t *TaxInvoice, f ListFilter) bool {
	if f.StoreID != nil && t.StoreID != *f.StoreID {
		return false
	}
	if f.From != nil && t.IssueDate.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.IssueDate.Before(*f.To) {
		return false
	}
	return true
}

func (m *memRepo) ListInvoices(_ context.Context, f ListFilter) ([]*TaxInvoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*TaxInvoice
	for _, t := range m.invoices {
		if matches(t, f) && (f.Status == "" || t.Status == f.Status) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNo > out[j].InvoiceNo })
	return out, nil
}

func (m *memRepo) Summarize(_ context.Context, f ListFilter) (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s Summary
	for _, t := range m.invoices {
		if !matches(t, f) {
			continue
		}
		switch t.Status {
		case StatusIssued:
			s.Issued++
		case StatusSent:
			s.Sent++
		case StatusCancelled:
			s.Cancelled++
			continue
		}
		s.TotalAmount += t.TotalAmount
	}
	return s, nil
}

type capture struct{ got []events.Envelope }

func (c *capture) Publish(_ context.Context, e events.Envelope) error {
	c.got = append(c.got, e)
	return nil
}

type fixture struct {
	svc   Service
	repo  *memRepo
	pub   *capture
	store uuid.UUID
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	state := ledgertest.NewState()
	f := &fixture{
		pub:   &capture{},
		store: state.AddStore(0, 0),
		now:   time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC),
	}
	f.repo = &memRepo{
		ledger:   ledgertest.NewStore(state),
		invoices: map[uuid.UUID]*TaxInvoice{},
		seq:      map[string]int{},
	}
	logger, _ := test.NewNullLogger()
	f.svc = NewService(f.repo, logger, Options{
		Supplier:  Party{BizNo: "123-45-67890", Name: "Lensworks", BizType: "wholesale", BizItem: "lenses"},
		Publisher: f.pub,
		Location:  time.UTC,
		Now:       func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) issue(t *testing.T, key string) *TaxInvoice {
	t.Helper()
	manual := int64(12345)
	inv, err := f.svc.Issue(actor.WithName(context.Background(), "park"), IssueRequest{
		StoreID:    f.store,
		BuyerBizNo: "987-65-43210",
		Items: []ItemRequest{
			{ItemName: "single vision 1.60", Quantity: 2, UnitPrice: 15000},
			{ItemName: "progressive", Quantity: 1, SupplyAmount: &manual},
		},
		IdempotencyKey: key,
	})
	require.NoError(t, err)
	return inv
}

func TestVAT(t *testing.T) {
	assert.Equal(t, int64(3000), VAT(30000))
	assert.Equal(t, int64(1235), VAT(12345), "half rounds up")
	assert.Equal(t, int64(1234), VAT(12344))
	assert.Equal(t, int64(0), VAT(4))
	assert.Equal(t, int64(-1235), VAT(-12345))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusIssued, StatusSent, true},
		{StatusIssued, StatusCancelled, true},
		{StatusSent, StatusCancelled, true},
		{StatusSent, StatusIssued, false},
		{StatusSent, StatusSent, false},
		{StatusCancelled, StatusSent, false},
		{StatusCancelled, StatusIssued, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestIssue(t *testing.T) {
	f := newFixture(t)
	inv := f.issue(t, "")

	assert.Equal(t, "TX202602-00001", inv.InvoiceNo)
	assert.Equal(t, StatusIssued, inv.Status)
	assert.Equal(t, int64(42345), inv.SupplyAmount)
	assert.Equal(t, int64(4235), inv.TaxAmount)
	assert.Equal(t, inv.SupplyAmount+inv.TaxAmount, inv.TotalAmount)
	assert.Equal(t, "123-45-67890", inv.SupplierBizNo)
	assert.Equal(t, "Lensworks", inv.SupplierName)
	assert.Equal(t, "987-65-43210", inv.BuyerBizNo)
	assert.Equal(t, "kim", inv.BuyerCEOName)
	assert.Equal(t, "park", inv.CreatedBy)
	assert.True(t, inv.SupplyDate.Equal(f.now), "supply date defaults to the issue date")

	require.Len(t, inv.Items, 2)
	assert.Equal(t, 1, inv.Items[0].Seq)
	assert.Equal(t, int64(30000), inv.Items[0].SupplyAmount)
	assert.Equal(t, int64(3000), inv.Items[0].TaxAmount)
	assert.Equal(t, int64(12345), inv.Items[1].SupplyAmount)
	assert.Equal(t, inv.ID, inv.Items[1].InvoiceID)

	logs := f.repo.ledger.State().WorkLogs
	require.Len(t, logs, 1)
	assert.Equal(t, ledger.WorkTaxInvoiceCreate, logs[0].WorkType)
	assert.Equal(t, "TX202602-00001", logs[0].TargetNo)
	require.Len(t, f.pub.got, 1)
	assert.Equal(t, events.TaxInvoiceIssued, f.pub.got[0].Name)

	assert.Equal(t, "TX202602-00002", f.issue(t, "").InvoiceNo)
}

func TestIssueNumbersFollowBusinessMonth(t *testing.T) {
	f := newFixture(t)
	kst := time.FixedZone("KST", 9*60*60)
	logger, _ := test.NewNullLogger()
	f.now = time.Date(2026, 2, 28, 16, 0, 0, 0, time.UTC)
	f.svc = NewService(f.repo, logger, Options{Location: kst, Now: func() time.Time { return f.now }})

	inv := f.issue(t, "")
	assert.Equal(t, "TX202603-00001", inv.InvoiceNo)
	assert.Equal(t, kst, inv.IssueDate.Location())
	assert.Equal(t, 1, f.repo.seq["taxinvoice:2026-03"])
}

func TestIssueValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	line := ItemRequest{ItemName: "lens", Quantity: 1, UnitPrice: 1000}
	negative := int64(-1)

	tests := []struct {
		name string
		req  IssueRequest
		want apperr.Def
	}{
		{"no store", IssueRequest{Items: []ItemRequest{line}}, apperr.ErrStoreRequired},
		{"no items", IssueRequest{StoreID: f.store}, apperr.ErrRequired},
		{"no item name", IssueRequest{StoreID: f.store, Items: []ItemRequest{{Quantity: 1}}}, apperr.ErrRequired},
		{"zero quantity", IssueRequest{StoreID: f.store, Items: []ItemRequest{{ItemName: "lens"}}}, apperr.ErrQuantityInvalid},
		{"price too large", IssueRequest{StoreID: f.store, Items: []ItemRequest{{ItemName: "lens", Quantity: 1, UnitPrice: 1e11}}}, apperr.ErrPriceTooLarge},
		{"negative supply", IssueRequest{StoreID: f.store, Items: []ItemRequest{{ItemName: "lens", Quantity: 1, SupplyAmount: &negative}}}, apperr.ErrAmountInvalid},
		{"bad supply date", IssueRequest{StoreID: f.store, SupplyDate: "14/02/2026", Items: []ItemRequest{line}}, apperr.ErrInvalidID},
		{"unknown store", IssueRequest{StoreID: uuid.New(), Items: []ItemRequest{line}}, apperr.ErrStoreNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Issue(ctx, tt.req)
			assert.True(t, apperr.Is(err, tt.want), "got %v", err)
		})
	}
	assert.Empty(t, f.repo.invoices)
	assert.Empty(t, f.repo.ledger.State().WorkLogs)
}

func TestIssueSupplyDate(t *testing.T) {
	f := newFixture(t)
	inv, err := f.svc.Issue(context.Background(), IssueRequest{
		StoreID:    f.store,
		SupplyDate: "2026-02-10",
		Items:      []ItemRequest{{ItemName: "lens", Quantity: 1, UnitPrice: 1000}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-10", inv.SupplyDate.Format("2006-01-02"))
	assert.Equal(t, "2026-02-10", inv.Items[0].ItemDate.Format("2006-01-02"))
	assert.True(t, inv.IssueDate.Equal(f.now))
}

func TestIssueIsIdempotent(t *testing.T) {
	f := newFixture(t)
	first := f.issue(t, "req-1")
	again := f.issue(t, "req-1")

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.InvoiceNo, again.InvoiceNo)
	assert.Len(t, f.repo.invoices, 1)
	assert.Len(t, f.repo.ledger.State().WorkLogs, 1)
	assert.Len(t, f.pub.got, 1)

	other := f.issue(t, "req-2")
	assert.Equal(t, "TX202602-00002", other.InvoiceNo, "replays do not consume numbers")
}

func TestIssueRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.ledger.State().FailOn = "InsertWorkLog"

	_, err := f.svc.Issue(context.Background(), IssueRequest{
		StoreID: f.store,
		Items:   []ItemRequest{{ItemName: "lens", Quantity: 1, UnitPrice: 1000}},
	})
	require.ErrorIs(t, err, ledgertest.ErrInjected)
	assert.Empty(t, f.repo.invoices)
	assert.Zero(t, f.repo.seq["taxinvoice:2026-02"])
	assert.Empty(t, f.pub.got)

	f.repo.ledger.State().FailOn = ""
	assert.Equal(t, "TX202602-00001", f.issue(t, "").InvoiceNo)
}

func TestSendAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.issue(t, "")

	sent, err := f.svc.Send(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)

	_, err = f.svc.Send(ctx, inv.ID)
	assert.True(t, apperr.Is(err, apperr.ErrTaxInvoiceTransition))

	cancelled, err := f.svc.Cancel(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	_, err = f.svc.Cancel(ctx, inv.ID)
	assert.True(t, apperr.Is(err, apperr.ErrTaxInvoiceTransition))
	_, err = f.svc.Send(ctx, inv.ID)
	assert.True(t, apperr.Is(err, apperr.ErrTaxInvoiceTransition))

	_, err = f.svc.Cancel(ctx, uuid.New())
	assert.True(t, apperr.Is(err, apperr.ErrTaxInvoiceNotFound))

	var types []string
	for _, w := range f.repo.ledger.State().WorkLogs {
		types = append(types, w.WorkType)
	}
	assert.Equal(t, []string{ledger.WorkTaxInvoiceCreate, ledger.WorkTaxInvoiceSend, ledger.WorkTaxInvoiceCancel}, types)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.issue(t, "")
	b := f.issue(t, "")
	_, err := f.svc.Cancel(ctx, b.ID)
	require.NoError(t, err)

	other := f.repo.ledger.State().AddStore(0, 0)
	_, err = f.svc.Issue(ctx, IssueRequest{StoreID: other, Items: []ItemRequest{{ItemName: "lens", Quantity: 1, UnitPrice: 1000}}})
	require.NoError(t, err)

	got, err := f.svc.List(ctx, ListFilter{StoreID: &f.store})
	require.NoError(t, err)
	assert.Len(t, got.Invoices, 2)
	assert.Equal(t, Summary{Issued: 1, Cancelled: 1, TotalAmount: a.TotalAmount}, got.Summary)

	got, err = f.svc.List(ctx, ListFilter{StoreID: &f.store, Status: StatusIssued})
	require.NoError(t, err)
	require.Len(t, got.Invoices, 1)
	assert.Equal(t, a.ID, got.Invoices[0].ID)
	assert.Equal(t, 1, got.Summary.Cancelled, "summary ignores the status filter")

	from := f.now.Add(time.Hour)
	got, err = f.svc.List(ctx, ListFilter{From: &from})
	require.NoError(t, err)
	assert.NotNil(t, got.Invoices)
	assert.Empty(t, got.Invoices)
}
