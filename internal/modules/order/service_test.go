package order

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/actor"
	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger/ledgertest"
	"github.com/georgemunganga/lensworks-backend/internal/modules/pricing"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQuantity(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0.1, 0.5}, {1.1, 1.5}, {1.6, 2.0}, {-0.3, -0.5},
		{0.5, 0.5}, {1, 1}, {2.5, 2.5}, {0, 0}, {-1.5, -1.5}, {-1.6, -2.0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeQuantity(c.in), "normalize(%v)", c.in)
	}
}

func TestParseOrderType(t *testing.T) {
	for raw, want := range map[string]OrderType{
		"": TypeStock, "stock": TypeStock, "여벌": TypeStock, "착색": TypeStock, "기타": TypeStock, "RX": TypeRx, "rx": TypeRx,
	} {
		got, err := ParseOrderType(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseOrderType("wholesale")
	assert.True(t, apperr.Is(err, apperr.ErrOrderTypeInvalid))
}

func (f *fixture) create(t *testing.T, req CreateOrderRequest) *Order {
	t.Helper()
	if req.StoreID == "" {
		req.StoreID = f.storeID.String()
	}
	o, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	return o
}

func (f *fixture) move(t *testing.T, id uuid.UUID, status OrderStatus) TransitionResult {
	t.Helper()
	batch, err := f.svc.Transition(context.Background(), TransitionRequest{OrderIDs: []string{id.String()}, Status: string(status)})
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	return batch.Results[0]
}

func countType(rows []*ledger.Transaction, typ ledger.TransactionType) int {
	n := 0
	for _, r := range rows {
		if r.Type == typ {
			n++
		}
	}
	return n
}

func TestScenario_CreateConfirmCancel(t *testing.T) {
	f := newFixture(0, 100000)
	productID := f.product(50000)
	optionID := f.option(productID, "", "", 5)

	o := f.create(t, CreateOrderRequest{Items: []ItemRequest{{ProductID: productID.String(), Quantity: 1}}})
	assert.Equal(t, int64(50000), o.TotalAmount)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "021", o.OrderNo)
	assert.Equal(t, int64(0), f.state().Outstanding(f.storeID), "creation books nothing")
	assert.Empty(t, f.state().Transactions)
	assert.Equal(t, 5.0, f.state().Stock(optionID))
	require.Len(t, f.state().WorkLogs, 1)

	res := f.move(t, o.ID, StatusConfirmed)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	require.NotNil(t, res.BalanceAfter)
	assert.Equal(t, int64(50000), *res.BalanceAfter)
	assert.Equal(t, int64(50000), f.state().Outstanding(f.storeID))
	rows := f.state().StoreTransactions(f.storeID)
	require.Len(t, rows, 1)
	assert.Equal(t, ledger.TxSale, rows[0].Type)
	assert.Equal(t, int64(50000), rows[0].BalanceAfter)
	assert.Equal(t, 4.0, f.state().Stock(optionID))

	again := f.move(t, o.ID, StatusConfirmed)
	assert.Equal(t, OutcomeUnchanged, again.Outcome)
	assert.Len(t, f.state().Transactions, 1)
	assert.Len(t, f.state().Movements, 1)
	assert.Equal(t, int64(50000), f.state().Outstanding(f.storeID))

	cancel := f.move(t, o.ID, StatusCancelled)
	assert.Equal(t, OutcomeApplied, cancel.Outcome)
	assert.Equal(t, int64(0), f.state().Outstanding(f.storeID))
	rows = f.state().StoreTransactions(f.storeID)
	require.Len(t, rows, 2)
	assert.Equal(t, ledger.TxAdjustment, rows[1].Type)
	assert.Equal(t, int64(-50000), rows[1].Amount)
	assert.Equal(t, 5.0, f.state().Stock(optionID))
	assert.Equal(t, f.state().Outstanding(f.storeID), f.state().SumTransactions(f.storeID))
	assert.Equal(t, StatusCancelled, f.repo.order(o.ID).Status)
	assert.NotNil(t, f.repo.order(o.ID).CancelledAt)
}

func TestCreate_PricingAndLines(t *testing.T) {
	f := newFixture(0, 0)
	a := f.product(20000)
	b := f.product(10000)
	f.pricer.overrides[f.storeID] = pricing.Overrides{StoreRate: 10}
	manual := int64(7777)

	o := f.create(t, CreateOrderRequest{OrderType: "착색", Items: []ItemRequest{
		{ProductID: a.String(), Quantity: 1.1, Sph: "-1", Cyl: "-0.5"},
		{ProductID: b.String(), Quantity: 2, UnitPrice: &manual},
	}})

	require.Len(t, o.Items, 2)
	first := o.Items[0]
	assert.Equal(t, 1.5, first.Quantity)
	assert.Equal(t, int64(18000), first.UnitPrice)
	assert.Equal(t, int64(20000), first.OriginalPrice)
	assert.Equal(t, pricing.DiscountStore, first.DiscountType)
	assert.Equal(t, int64(27000), first.TotalPrice)
	assert.Equal(t, "-1.00", first.Sph)
	assert.Equal(t, "-0.50", first.Cyl)

	second := o.Items[1]
	assert.Equal(t, pricing.DiscountManual, second.DiscountType)
	assert.Equal(t, int64(15554), second.TotalPrice)

	assert.Equal(t, first.TotalPrice+second.TotalPrice, o.TotalAmount)
	assert.Equal(t, TypeStock, o.OrderType)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(0, 0)
	productID := f.product(1000)
	ctx := context.Background()
	item := []ItemRequest{{ProductID: productID.String(), Quantity: 1}}

	_, err := f.svc.Create(ctx, CreateOrderRequest{Items: item})
	assert.True(t, apperr.Is(err, apperr.ErrStoreRequired))

	_, err = f.svc.Create(ctx, CreateOrderRequest{StoreID: f.storeID.String()})
	assert.True(t, apperr.Is(err, apperr.ErrItemsRequired))

	_, err = f.svc.Create(ctx, CreateOrderRequest{StoreID: f.storeID.String(), OrderType: "bulk", Items: item})
	assert.True(t, apperr.Is(err, apperr.ErrOrderTypeInvalid))

	_, err = f.svc.Create(ctx, CreateOrderRequest{StoreID: f.storeID.String(), Items: []ItemRequest{{ProductID: productID.String()}}})
	assert.True(t, apperr.Is(err, apperr.ErrQuantityInvalid))

	_, err = f.svc.Create(ctx, CreateOrderRequest{StoreID: f.storeID.String(), Items: []ItemRequest{{ProductID: uuid.NewString(), Quantity: 1}}})
	assert.True(t, apperr.Is(err, apperr.ErrProductNotFound))

	_, err = f.svc.Create(ctx, CreateOrderRequest{StoreID: uuid.NewString(), Items: item})
	assert.True(t, apperr.Is(err, apperr.ErrStoreNotFound))

	f.state().Stores[f.storeID].IsActive = false
	_, err = f.svc.Create(ctx, CreateOrderRequest{StoreID: f.storeID.String(), Items: item})
	assert.True(t, apperr.Is(err, apperr.ErrStoreInactive))
}

func TestCreate_RejectsOutOfRangeLines(t *testing.T) {
	f := newFixture(0, 100000)
	productID := f.product(1000)
	ctx := context.Background()
	huge := int64(1e11)
	ceiling := int64(ledger.MaxUnitPrice)

	_, err := f.svc.Create(ctx, CreateOrderRequest{StoreID: f.storeID.String(), Items: []ItemRequest{
		{ProductID: productID.String(), Quantity: 1e8, UnitPrice: &huge},
	}})
	assert.True(t, apperr.Is(err, apperr.ErrQuantityTooLarge))

	_, err = f.svc.Create(ctx, CreateOrderRequest{StoreID: f.storeID.String(), Items: []ItemRequest{
		{ProductID: productID.String(), Quantity: 1, UnitPrice: &huge},
	}})
	assert.True(t, apperr.Is(err, apperr.ErrPriceTooLarge))

	var lines []ItemRequest
	for i := 0; i < 11; i++ {
		lines = append(lines, ItemRequest{ProductID: productID.String(), Quantity: ledger.MaxQuantity, UnitPrice: &ceiling})
	}
	_, err = f.svc.Create(ctx, CreateOrderRequest{StoreID: f.storeID.String(), SkipCreditCheck: true, Items: lines})
	assert.True(t, apperr.Is(err, apperr.ErrAmountTooLarge))

	assert.Empty(t, f.repo.orders)
	assert.Equal(t, int64(0), f.state().Outstanding(f.storeID))
}

func TestCreate_CreditCheck(t *testing.T) {
	f := newFixture(90000, 100000)
	productID := f.product(20000)
	req := CreateOrderRequest{StoreID: f.storeID.String(), Items: []ItemRequest{{ProductID: productID.String(), Quantity: 1}}}

	_, err := f.svc.Create(context.Background(), req)
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "credit_limit_exceeded", e.Code)
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus())
	assert.Equal(t, CreditDetails{CurrentOutstanding: 90000, OrderAmount: 20000, CreditLimit: 100000, WouldExceedBy: 10000}, e.Details)
	assert.Empty(t, f.repo.orders)
	assert.Empty(t, f.state().WorkLogs)

	req.SkipCreditCheck = true
	o := f.create(t, req)
	assert.Equal(t, "021", o.OrderNo, "the rejected attempt consumed no sequence number")
}

func TestCreate_NoCreditLimitMeansUnlimited(t *testing.T) {
	f := newFixture(10_000_000, 0)
	productID := f.product(20000)
	f.create(t, CreateOrderRequest{Items: []ItemRequest{{ProductID: productID.String(), Quantity: 10}}})
}

func TestCreate_MonthlySequence(t *testing.T) {
	f := newFixture(0, 0)
	productID := f.product(1000)
	req := CreateOrderRequest{Items: []ItemRequest{{ProductID: productID.String(), Quantity: 1}}}

	assert.Equal(t, "021", f.create(t, req).OrderNo)
	assert.Equal(t, "022", f.create(t, req).OrderNo)

	f.now = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	march := f.create(t, req)
	assert.Equal(t, "031", march.OrderNo)
	assert.Equal(t, "2026-03", march.Period)

	f.now = time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "101", f.create(t, req).OrderNo)

	got, err := f.svc.GetByNumber(context.Background(), "2026-02", "022")
	require.NoError(t, err)
	assert.Equal(t, "2026-02", got.Period)
}

func TestCreate_RecordsActor(t *testing.T) {
	f := newFixture(0, 0)
	productID := f.product(1000)
	ctx := actor.WithName(context.Background(), "kim")

	o, err := f.svc.Create(ctx, CreateOrderRequest{StoreID: f.storeID.String(), Items: []ItemRequest{{ProductID: productID.String(), Quantity: 1}}})
	require.NoError(t, err)
	assert.Equal(t, "kim", o.CreatedBy)

	_, err = f.svc.TransitionOne(ctx, o.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, "kim", f.state().Transactions[0].ProcessedBy)
	assert.Equal(t, "kim", f.state().WorkLogs[1].UserName)
}

func TestTransition_StateTable(t *testing.T) {
	tests := []struct {
		name    string
		path    []OrderStatus
		target  OrderStatus
		outcome Outcome
		code    string
	}{
		{"confirm pending", nil, StatusConfirmed, OutcomeApplied, ""},
		{"confirm shipped", []OrderStatus{StatusShipped}, StatusConfirmed, OutcomeUnchanged, ""},
		{"confirm cancelled", []OrderStatus{StatusCancelled}, StatusConfirmed, OutcomeRejected, "not_confirmable"},
		{"ship confirmed", []OrderStatus{StatusConfirmed}, StatusShipped, OutcomeApplied, ""},
		{"ship delivered", []OrderStatus{StatusConfirmed, StatusDelivered}, StatusShipped, OutcomeUnchanged, ""},
		{"ship cancelled", []OrderStatus{StatusCancelled}, StatusShipped, OutcomeRejected, "not_shippable"},
		{"deliver pending", nil, StatusDelivered, OutcomeRejected, "not_deliverable"},
		{"deliver shipped", []OrderStatus{StatusShipped}, StatusDelivered, OutcomeApplied, ""},
		{"deliver delivered", []OrderStatus{StatusShipped, StatusDelivered}, StatusDelivered, OutcomeUnchanged, ""},
		{"cancel pending", nil, StatusCancelled, OutcomeApplied, ""},
		{"cancel shipped", []OrderStatus{StatusShipped}, StatusCancelled, OutcomeApplied, ""},
		{"cancel cancelled", []OrderStatus{StatusCancelled}, StatusCancelled, OutcomeUnchanged, ""},
		{"cancel delivered", []OrderStatus{StatusShipped, StatusDelivered}, StatusCancelled, OutcomeRejected, "not_cancellable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(0, 0)
			productID := f.product(1000)
			o := f.create(t, CreateOrderRequest{Items: []ItemRequest{{ProductID: productID.String(), Quantity: 1}}})
			for _, step := range tt.path {
				require.Equal(t, OutcomeApplied, f.move(t, o.ID, step).Outcome)
			}
			before := len(f.state().Transactions)

			res := f.move(t, o.ID, tt.target)
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Equal(t, tt.code, res.Code)
			if tt.outcome != OutcomeApplied {
				assert.Len(t, f.state().Transactions, before, "no ledger rows for %s", tt.outcome)
			}
			assert.Equal(t, f.state().Outstanding(f.storeID), f.state().SumTransactions(f.storeID))
		})
	}
}

func TestTransition_ShipBooksOnce(t *testing.T) {
	f := newFixture(0, 0)
	productID := f.product(3000)
	optionID := f.option(productID, "", "", 10)
	o := f.create(t, CreateOrderRequest{Items: []ItemRequest{{ProductID: productID.String(), Quantity: 2}}})

	f.move(t, o.ID, StatusShipped)
	f.move(t, o.ID, StatusConfirmed)
	f.move(t, o.ID, StatusShipped)
	f.move(t, o.ID, StatusDelivered)

	assert.Equal(t, 1, countType(f.state().Transactions, ledger.TxSale))
	assert.Equal(t, int64(6000), f.state().Outstanding(f.storeID))
	assert.Equal(t, 8.0, f.state().Stock(optionID))
	stored := f.repo.order(o.ID)
	assert.NotNil(t, stored.ConfirmedAt)
	assert.NotNil(t, stored.ShippedAt)
	assert.NotNil(t, stored.DeliveredAt)
}

func TestTransition_StockDecrementsEqualQuantities(t *testing.T) {
	f := newFixture(0, 0)
	p1, p2 := f.product(1000), f.product(2000)
	o1 := f.option(p1, "-1.00", "", 10)
	o2 := f.option(p2, "-2.00", "-0.50", 10)
	o := f.create(t, CreateOrderRequest{Items: []ItemRequest{
		{ProductID: p1.String(), Quantity: 1.1, Sph: "-1"},
		{ProductID: p2.String(), Quantity: 0.5, Sph: "-2.0", Cyl: "-0.5"},
		{ProductID: p1.String(), Quantity: 2, Sph: "-1.00"},
	}})

	res := f.move(t, o.ID, StatusConfirmed)
	require.Len(t, res.Stock, 3)
	var decrement float64
	for _, sr := range res.Stock {
		assert.Equal(t, ledger.StockAdjusted, sr.Outcome)
		decrement -= sr.Applied
	}
	assert.Equal(t, o.TotalQuantity(), decrement)
	assert.Equal(t, 6.5, f.state().Stock(o1))
	assert.Equal(t, 9.5, f.state().Stock(o2))
}

func TestTransition_RxSkipsStock(t *testing.T) {
	f := newFixture(0, 0)
	productID := f.product(40000)
	optionID := f.option(productID, "", "", 3)
	o := f.create(t, CreateOrderRequest{OrderType: "RX", Items: []ItemRequest{{ProductID: productID.String(), Quantity: 1}}})

	res := f.move(t, o.ID, StatusConfirmed)
	assert.Empty(t, res.Stock)
	assert.Empty(t, f.state().Movements)
	assert.Equal(t, 3.0, f.state().Stock(optionID))
	assert.Equal(t, int64(40000), f.state().Outstanding(f.storeID))

	f.move(t, o.ID, StatusCancelled)
	assert.Empty(t, f.state().Movements)
	assert.Equal(t, int64(0), f.state().Outstanding(f.storeID))
}

func TestTransition_MissingOptionIsReported(t *testing.T) {
	f := newFixture(0, 0)
	productID := f.product(1000)
	f.option(productID, "-1.00", "", 3)
	o := f.create(t, CreateOrderRequest{Items: []ItemRequest{{ProductID: productID.String(), Quantity: 1, Sph: "-4.00"}}})

	res := f.move(t, o.ID, StatusConfirmed)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	require.Len(t, res.Stock, 1)
	assert.Equal(t, ledger.StockSkippedNoOption, res.Stock[0].Outcome)
	assert.Empty(t, f.state().Movements)
	assert.Equal(t, int64(1000), f.state().Outstanding(f.storeID), "the sale is still booked")

	var warned bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == log.WarnLevel && e.Data["outcome"] == ledger.StockSkippedNoOption {
			warned = true
		}
	}
	assert.True(t, warned, "skipped adjustment must be logged at WARN")
}

func TestTransition_RolledBackStockIsNotLogged(t *testing.T) {
	f := newFixture(0, 0)
	productID := f.product(1000)
	o := f.create(t, CreateOrderRequest{Items: []ItemRequest{{ProductID: productID.String(), Quantity: 1, Sph: "-4.00"}}})
	f.state().FailOn = "InsertWorkLog"
	f.hook.Reset()

	_, err := f.svc.TransitionOne(context.Background(), o.ID, "confirmed")
	require.ErrorIs(t, err, ledgertest.ErrInjected)
	for _, e := range f.hook.AllEntries() {
		assert.NotEqual(t, ledger.StockSkippedNoOption, e.Data["outcome"], "no stock outcome is reported for a rolled back transition")
	}

	f.state().FailOn = ""
	f.move(t, o.ID, StatusConfirmed)
	var warned int
	for _, e := range f.hook.AllEntries() {
		if e.Level == log.WarnLevel && e.Data["outcome"] == ledger.StockSkippedNoOption {
			warned++
		}
	}
	assert.Equal(t, 1, warned)
}

func TestTransition_ClampedStockReversesExactly(t *testing.T) {
	f := newFixture(0, 0)
	productID := f.product(1000)
	optionID := f.option(productID, "", "", 1)
	o := f.create(t, CreateOrderRequest{Items: []ItemRequest{{ProductID: productID.String(), Quantity: 3}}})

	res := f.move(t, o.ID, StatusConfirmed)
	assert.Equal(t, ledger.StockClamped, res.Stock[0].Outcome)
	assert.Equal(t, 0.0, f.state().Stock(optionID))

	f.move(t, o.ID, StatusCancelled)
	assert.Equal(t, 1.0, f.state().Stock(optionID))
	for _, m := range f.state().Movements {
		assert.Equal(t, m.BeforeStock+m.Quantity, m.AfterStock)
	}
}

func TestTransition_RollbackOnFailure(t *testing.T) {
	f := newFixture(0, 0)
	productID := f.product(1000)
	optionID := f.option(productID, "", "", 5)
	o := f.create(t, CreateOrderRequest{Items: []ItemRequest{{ProductID: productID.String(), Quantity: 1}}})
	f.state().FailOn = "InsertInventoryTransaction"

	_, err := f.svc.TransitionOne(context.Background(), o.ID, "confirmed")
	require.ErrorIs(t, err, ledgertest.ErrInjected)
	assert.Equal(t, int64(0), f.state().Outstanding(f.storeID))
	assert.Empty(t, f.state().Transactions)
	assert.Equal(t, 5.0, f.state().Stock(optionID))
	assert.Equal(t, StatusPending, f.repo.order(o.ID).Status)

	batch, err := f.svc.Transition(context.Background(), TransitionRequest{OrderIDs: []string{o.ID.String()}, Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, batch.Results[0].Outcome)
	assert.Nil(t, batch.Results[0].BalanceAfter)
}

func TestTransition_BatchIsolatesOrders(t *testing.T) {
	f := newFixture(0, 0)
	productID := f.product(1000)
	a := f.create(t, CreateOrderRequest{Items: []ItemRequest{{ProductID: productID.String(), Quantity: 1}}})
	b := f.create(t, CreateOrderRequest{Items: []ItemRequest{{ProductID: productID.String(), Quantity: 2}}})
	f.move(t, b.ID, StatusCancelled)
	missing := uuid.New()

	batch, err := f.svc.Transition(context.Background(), TransitionRequest{
		OrderIDs: []string{a.ID.String(), b.ID.String(), missing.String(), a.ID.String()},
		Status:   "CONFIRMED",
	})
	require.NoError(t, err)
	require.Len(t, batch.Results, 4)
	assert.Equal(t, OutcomeApplied, batch.Results[0].Outcome)
	assert.Equal(t, OutcomeRejected, batch.Results[1].Outcome)
	assert.Equal(t, OutcomeNotFound, batch.Results[2].Outcome)
	assert.Equal(t, OutcomeUnchanged, batch.Results[3].Outcome)
	assert.Equal(t, map[Outcome]int{OutcomeApplied: 1, OutcomeRejected: 1, OutcomeNotFound: 1, OutcomeUnchanged: 1}, batch.Counts)
	assert.Equal(t, int64(1000), f.state().Outstanding(f.storeID))
}

func TestTransition_RequestValidation(t *testing.T) {
	f := newFixture(0, 0)
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, TransitionRequest{OrderIDs: []string{uuid.NewString()}, Status: "pending"})
	assert.True(t, apperr.Is(err, apperr.ErrStatusInvalid))

	_, err = f.svc.Transition(ctx, TransitionRequest{Status: "confirmed"})
	assert.True(t, apperr.Is(err, apperr.ErrOrderIDsRequired))

	_, err = f.svc.Transition(ctx, TransitionRequest{OrderIDs: []string{"nope"}, Status: "confirmed"})
	assert.True(t, apperr.Is(err, apperr.ErrInvalidID))

	_, err = f.svc.TransitionOne(ctx, uuid.New(), "confirmed")
	assert.True(t, apperr.Is(err, apperr.ErrOrderNotFound))
}

func TestTransition_CancelWithOpenReturnIsRejected(t *testing.T) {
	f := newFixture(0, 0)
	productID := f.product(1000)
	o := f.create(t, CreateOrderRequest{Items: []ItemRequest{{ProductID: productID.String(), Quantity: 1}}})
	f.move(t, o.ID, StatusConfirmed)
	f.repo.openReturns[o.ID] = true

	_, err := f.svc.TransitionOne(context.Background(), o.ID, "cancelled")
	assert.True(t, apperr.Is(err, apperr.ErrOrderHasReturns))
	assert.Equal(t, int64(1000), f.state().Outstanding(f.storeID))
}
