package ledger

import (
	"context"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/google/uuid"
)

// Service exposes ledger history and statements.
type Service interface {
	Transactions(ctx context.Context, f TransactionFilter) ([]*Transaction, error)
	Movements(ctx context.Context, f MovementFilter) ([]*InventoryTransaction, error)
	WorkLogs(ctx context.Context, f WorkLogFilter) ([]*WorkLog, error)

	// Statement summarises a store's ledger for period "YYYY-MM" in loc.
	Statement(ctx context.Context, storeID uuid.UUID, period string) (*Statement, error)

	// Sales reports booked revenue per day or month and per product.
	Sales(ctx context.Context, q SalesQuery) (*SalesReport, error)
}

// SalesQuery selects a sales report. Dates are YYYY-MM-DD in the business timezone
// and both ends are inclusive. To defaults to today and From to the first of To's month.
type SalesQuery struct {
	StoreID *uuid.UUID
	From    string
	To      string
	GroupBy string
}

type service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService creates the ledger read service. Statement periods are calendar months in loc.
func NewService(repo Repository, loc *time.Location) Service {
	if loc == nil {
		loc = time.Local
	}
	return &service{repo: repo, loc: loc, now: time.Now}
}

func (s *service) Transactions(ctx context.Context, f TransactionFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, f)
}

func (s *service) Movements(ctx context.Context, f MovementFilter) ([]*InventoryTransaction, error) {
	return s.repo.ListMovements(ctx, f)
}

func (s *service) WorkLogs(ctx context.Context, f WorkLogFilter) ([]*WorkLog, error) {
	return s.repo.ListWorkLogs(ctx, f)
}

func (s *service) Statement(ctx context.Context, storeID uuid.UUID, period string) (*Statement, error) {
	start, err := time.ParseInLocation("2006-01", period, s.loc)
	if err != nil {
		return nil, apperr.ErrInvalidID.New("period", period)
	}
	end := start.AddDate(0, 1, 0)

	opening, err := s.repo.BalanceBefore(ctx, storeID, start)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListTransactions(ctx, TransactionFilter{StoreID: &storeID, From: &start, To: &end, Limit: 1000})
	if err != nil {
		return nil, err
	}

	st := &Statement{
		StoreID:        storeID,
		Period:         period,
		OpeningBalance: opening,
		ClosingBalance: opening,
		Totals:         map[TransactionType]int64{},
		Transactions:   rows,
	}
	for _, t := range rows {
		st.Totals[t.Type] += t.Amount
		st.ClosingBalance += t.Amount
	}
	if st.Transactions == nil {
		st.Transactions = []*Transaction{}
	}
	return st, nil
}

func (s *service) date(field, raw string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", raw, s.loc)
	if err != nil {
		return d, apperr.ErrInvalidID.New(field, raw)
	}
	return d, nil
}

func (s *service) Sales(ctx context.Context, q SalesQuery) (*SalesReport, error) {
	group := q.GroupBy
	if group == "" {
		group = GroupDay
	}
	if group != GroupDay && group != GroupMonth {
		return nil, apperr.ErrInvalidID.New("group_by", q.GroupBy)
	}

	today := s.now().In(s.loc)
	to := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, s.loc)
	var err error
	if q.To != "" {
		if to, err = s.date("to", q.To); err != nil {
			return nil, err
		}
	}
	from := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, s.loc)
	if q.From != "" {
		if from, err = s.date("from", q.From); err != nil {
			return nil, err
		}
	}
	if to.Before(from) {
		return nil, apperr.ErrInvalidID.New("to", to.Format("2006-01-02"))
	}

	f := SalesFilter{StoreID: q.StoreID, From: from, To: to.AddDate(0, 0, 1)}
	days, err := s.repo.DailySales(ctx, f, s.loc.String())
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ProductSales(ctx, f)
	if err != nil {
		return nil, err
	}

	rep := &SalesReport{
		From:     from.Format("2006-01-02"),
		To:       to.Format("2006-01-02"),
		GroupBy:  group,
		Periods:  []*PeriodSales{},
		Products: products,
	}
	if rep.Products == nil {
		rep.Products = []*ProductSales{}
	}
	var last *PeriodSales
	for _, d := range days {
		key := d.Period
		if group == GroupMonth {
			key = key[:7]
		}
		if last == nil || last.Period != key {
			last = &PeriodSales{Period: key}
			rep.Periods = append(rep.Periods, last)
		}
		last.add(d)
		rep.Totals.add(d)
	}
	return rep, nil
}
