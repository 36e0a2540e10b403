package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/actor"
	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/georgemunganga/lensworks-backend/internal/modules/order"
	log "github.com/sirupsen/logrus"
)

// DefaultLowStockThreshold applies when the caller gives none.
const DefaultLowStockThreshold = 1

// Service defines stock-taking and receipts outside the order flow.
type Service interface {
	// Adjust sets each option to its counted stock. Lines already at the count are skipped.
	Adjust(ctx context.Context, req AdjustRequest) (*Result, error)

	// Receive adds stock with "in" movements.
	Receive(ctx context.Context, req ReceiveRequest) (*Result, error)

	LowStock(ctx context.Context, threshold float64, limit int) ([]*LowStockItem, error)
}

type service struct {
	repo   Repository
	logger log.FieldLogger
	now    func() time.Time
}

// NewService creates a new inventory service.
func NewService(repo Repository, logger log.FieldLogger) Service {
	return &service{repo: repo, logger: logger, now: time.Now}
}

func (s *service) Adjust(ctx context.Context, req AdjustRequest) (*Result, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperr.ErrReasonRequired.New()
	}
	if len(req.Items) == 0 {
		return nil, apperr.ErrAdjustmentsRequired.New()
	}
	for _, line := range req.Items {
		if line.Stock < 0 {
			return nil, apperr.ErrQuantityInvalid.New()
		}
		if line.Stock > ledger.MaxQuantity {
			return nil, apperr.ErrQuantityTooLarge.New(ledger.MaxQuantity)
		}
	}

	who, at := actor.FromContext(ctx), s.now()
	var res *Result
	err := s.repo.WithinTx(ctx, func(tx ledger.Tx) error {
		res = &Result{}
		for _, line := range req.Items {
			opt, err := tx.LockOption(ctx, line.OptionID)
			if err != nil {
				return err
			}
			target := order.NormalizeQuantity(line.Stock)
			if target == opt.Stock {
				res.Unchanged++
				res.Lines = append(res.Lines, LineResult{OptionID: line.OptionID, Unchanged: true})
				continue
			}
			id := line.OptionID
			sr, err := ledger.MoveStock(ctx, tx, ledger.StockMove{
				OptionID: &id,
				Quantity: target - opt.Stock,
				Type:     ledger.MoveAdjust,
				Reason:   reason,
				Memo:     req.Memo,
				Actor:    who,
				At:       at,
			})
			if err != nil {
				return err
			}
			res.Changed++
			res.Lines = append(res.Lines, LineResult{OptionID: line.OptionID, Stock: &sr})
		}
		if res.Changed == 0 {
			return nil
		}
		return ledger.AppendWorkLog(ctx, tx, ledger.WorkEntry{
			WorkType:    ledger.WorkStockAdjust,
			TargetType:  "inventory",
			Description: fmt.Sprintf("stock adjusted on %d option(s): %s", res.Changed, reason),
			Details:     res.Lines,
			Actor:       who,
			At:          at,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(log.Fields{"changed": res.Changed, "unchanged": res.Unchanged, "reason": reason}).Info("stock adjusted")
	return res, nil
}

func (s *service) Receive(ctx context.Context, req ReceiveRequest) (*Result, error) {
	if len(req.Items) == 0 {
		return nil, apperr.ErrItemsRequired.New()
	}
	for _, line := range req.Items {
		if err := ledger.CheckLine(line.Quantity, line.UnitPrice); err != nil {
			return nil, err
		}
	}

	who, at := actor.FromContext(ctx), s.now()
	var res *Result
	err := s.repo.WithinTx(ctx, func(tx ledger.Tx) error {
		res = &Result{}
		for _, line := range req.Items {
			id := line.OptionID
			sr, err := ledger.MoveStock(ctx, tx, ledger.StockMove{
				OptionID:  &id,
				Quantity:  order.NormalizeQuantity(line.Quantity),
				Type:      ledger.MoveIn,
				Reason:    "receive",
				UnitPrice: line.UnitPrice,
				Memo:      req.Memo,
				Actor:     who,
				At:        at,
			})
			if err != nil {
				return err
			}
			res.Changed++
			res.Lines = append(res.Lines, LineResult{OptionID: id, Stock: &sr})
		}
		return ledger.AppendWorkLog(ctx, tx, ledger.WorkEntry{
			WorkType:    ledger.WorkStockIn,
			TargetType:  "inventory",
			Description: fmt.Sprintf("stock received on %d option(s)", res.Changed),
			Details:     res.Lines,
			Actor:       who,
			At:          at,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithField("changed", res.Changed).Info("stock received")
	return res, nil
}

func (s *service) LowStock(ctx context.Context, threshold float64, limit int) ([]*LowStockItem, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	items, err := s.repo.LowStock(ctx, threshold, limit)
	if items == nil && err == nil {
		items = []*LowStockItem{}
	}
	return items, err
}
