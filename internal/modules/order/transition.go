package order

import (
	"context"
	"fmt"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/actor"
	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/events"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type action int

const (
	actReject action = iota
	actUnchanged
	actStatusOnly
	actBook
	actReverse
)

// transitions maps target → current status → action. Missing entries reject.
var transitions = map[OrderStatus]map[OrderStatus]action{
	StatusConfirmed: {
		StatusPending:   actBook,
		StatusConfirmed: actUnchanged,
		StatusShipped:   actUnchanged,
		StatusDelivered: actUnchanged,
	},
	StatusShipped: {
		StatusPending:   actBook,
		StatusConfirmed: actStatusOnly,
		StatusShipped:   actUnchanged,
		StatusDelivered: actUnchanged,
	},
	StatusDelivered: {
		StatusConfirmed: actStatusOnly,
		StatusShipped:   actStatusOnly,
		StatusDelivered: actUnchanged,
	},
	StatusCancelled: {
		StatusPending:   actStatusOnly,
		StatusConfirmed: actReverse,
		StatusShipped:   actReverse,
		StatusCancelled: actUnchanged,
	},
}

var rejections = map[OrderStatus]apperr.Def{
	StatusConfirmed: apperr.ErrNotConfirmable,
	StatusShipped:   apperr.ErrNotShippable,
	StatusDelivered: apperr.ErrNotDeliverable,
	StatusCancelled: apperr.ErrNotCancellable,
}

var workTypes = map[OrderStatus]string{
	StatusConfirmed: ledger.WorkOrderConfirm,
	StatusShipped:   ledger.WorkOrderShip,
	StatusDelivered: ledger.WorkOrderDeliver,
	StatusCancelled: ledger.WorkOrderCancel,
}

func (s *service) Transition(ctx context.Context, req TransitionRequest) (*BatchResult, error) {
	target, err := ParseTarget(req.Status)
	if err != nil {
		return nil, err
	}
	if len(req.OrderIDs) == 0 {
		return nil, apperr.ErrOrderIDsRequired.New()
	}
	ids := make([]uuid.UUID, len(req.OrderIDs))
	for i, raw := range req.OrderIDs {
		if ids[i], err = uuid.Parse(raw); err != nil {
			return nil, apperr.ErrInvalidID.New("order_id", raw)
		}
	}

	batch := &BatchResult{Status: target, Counts: map[Outcome]int{}}
	for _, id := range ids {
		res, err := s.transition(ctx, id, target)
		if err != nil {
			res.Error = err.Error()
			if e, ok := apperr.As(err); ok {
				res.Code = e.Code
			}
			switch apperr.KindOf(err) {
			case apperr.KindNotFound:
				res.Outcome = OutcomeNotFound
			case apperr.KindBusinessRule:
				res.Outcome = OutcomeRejected
			default:
				res.Outcome = OutcomeFailed
				s.logger.WithError(err).WithField("order_id", id).Error("order transition failed")
			}
		}
		batch.Counts[res.Outcome]++
		batch.Results = append(batch.Results, res)
	}
	return batch, nil
}

func (s *service) TransitionOne(ctx context.Context, id uuid.UUID, status string) (*TransitionResult, error) {
	target, err := ParseTarget(status)
	if err != nil {
		return nil, err
	}
	res, err := s.transition(ctx, id, target)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// transition runs one order's state change in its own transaction.
func (s *service) transition(ctx context.Context, id uuid.UUID, target OrderStatus) (TransitionResult, error) {
	res := TransitionResult{OrderID: id.String(), To: target}
	who := actor.FromContext(ctx)
	now := s.now()
	var booked *Order

	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		res.Stock = nil
		o, err := tx.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		res.OrderNo, res.From = o.OrderNo, o.Status

		act, ok := transitions[target][o.Status]
		if !ok || act == actReject {
			return rejections[target].New(o.OrderNo, o.Status)
		}
		if act == actUnchanged {
			res.Outcome = OutcomeUnchanged
			return nil
		}

		switch act {
		case actBook:
			if err := s.book(ctx, tx, o, &res, who, now); err != nil {
				return err
			}
		case actReverse:
			if err := s.reverse(ctx, tx, o, &res, who, now); err != nil {
				return err
			}
		}

		stamp(o, target, now)
		if err := tx.UpdateStatus(ctx, o); err != nil {
			return err
		}
		res.Outcome = OutcomeApplied
		booked = o
		return ledger.AppendWorkLog(ctx, tx, ledger.WorkEntry{
			WorkType:    workTypes[target],
			TargetType:  "order",
			TargetID:    o.ID,
			TargetNo:    o.OrderNo,
			Description: fmt.Sprintf("order %s %s → %s", o.OrderNo, res.From, target),
			Details:     map[string]interface{}{"from": res.From, "to": target, "total_amount": o.TotalAmount, "stock": res.Stock},
			Actor:       who,
			At:          now,
		})
	})
	if err != nil {
		res.Outcome, res.BalanceAfter, res.Stock = "", nil, nil
		return res, err
	}

	if booked != nil {
		s.logger.WithFields(log.Fields{
			"order_id": booked.ID,
			"order_no": booked.OrderNo,
			"store_id": booked.StoreID,
			"from":     res.From,
			"to":       target,
			"outcome":  res.Outcome,
		}).Info("order transitioned")
		for _, sr := range res.Stock {
			s.logStock(booked, sr)
		}
		events.Emit(ctx, s.publisher, s.logger, events.Envelope{
			Name: events.OrderTransitioned, Key: booked.ID.String(), Actor: who, OccurredAt: now, Payload: res,
		})
	}
	return res, nil
}

// book charges the order to the store and, for stock orders, takes each line out of stock.
func (s *service) book(ctx context.Context, tx Tx, o *Order, res *TransitionResult, who string, now time.Time) error {
	t, err := ledger.PostBalance(ctx, tx, ledger.BalanceEntry{
		StoreID: o.StoreID,
		Type:    ledger.TxSale,
		Amount:  o.TotalAmount,
		OrderID: &o.ID,
		OrderNo: o.OrderNo,
		Memo:    "order " + o.OrderNo,
		Actor:   who,
		At:      now,
	})
	if err != nil {
		return err
	}
	res.BalanceAfter = &t.BalanceAfter

	if o.OrderType != TypeStock {
		return nil
	}
	for _, it := range o.Items {
		sr, err := ledger.MoveStock(ctx, tx, ledger.StockMove{
			ProductID: it.ProductID,
			Sph:       it.Sph,
			Cyl:       it.Cyl,
			Quantity:  -it.Quantity,
			Type:      ledger.MoveOut,
			Reason:    "sale",
			OrderID:   &o.ID,
			OrderNo:   o.OrderNo,
			UnitPrice: it.UnitPrice,
			Actor:     who,
			At:        now,
		})
		if err != nil {
			return err
		}
		res.Stock = append(res.Stock, sr)
	}
	return nil
}

// reverse credits the order back and restores exactly the stock its booking removed.
func (s *service) reverse(ctx context.Context, tx Tx, o *Order, res *TransitionResult, who string, now time.Time) error {
	open, err := tx.HasOpenReturns(ctx, o.ID)
	if err != nil {
		return err
	}
	if open {
		return apperr.ErrOrderHasReturns.New(o.OrderNo)
	}

	t, err := ledger.PostBalance(ctx, tx, ledger.BalanceEntry{
		StoreID: o.StoreID,
		Type:    ledger.TxAdjustment,
		Amount:  -o.TotalAmount,
		OrderID: &o.ID,
		OrderNo: o.OrderNo,
		Memo:    "cancel order " + o.OrderNo,
		Actor:   who,
		At:      now,
	})
	if err != nil {
		return err
	}
	res.BalanceAfter = &t.BalanceAfter

	if o.OrderType != TypeStock {
		return nil
	}
	removed, err := ledger.RemovedByOrder(ctx, tx, o.ID)
	if err != nil {
		return err
	}
	for _, rm := range removed {
		if rm.Quantity == 0 {
			continue
		}
		optionID := rm.OptionID
		sr, err := ledger.MoveStock(ctx, tx, ledger.StockMove{
			OptionID:  &optionID,
			ProductID: rm.ProductID,
			Quantity:  rm.Quantity,
			Type:      ledger.MoveIn,
			Reason:    "cancel",
			OrderID:   &o.ID,
			OrderNo:   o.OrderNo,
			UnitPrice: rm.UnitPrice,
			Actor:     who,
			At:        now,
		})
		if err != nil {
			return err
		}
		res.Stock = append(res.Stock, sr)
	}
	return nil
}

// logStock reports one committed stock movement.
func (s *service) logStock(o *Order, sr ledger.StockResult) {
	entry := s.logger.WithFields(log.Fields{
		"order_id":   o.ID,
		"order_no":   o.OrderNo,
		"product_id": sr.ProductID,
		"sph":        sr.Sph,
		"cyl":        sr.Cyl,
		"quantity":   sr.Requested,
		"outcome":    sr.Outcome,
	})
	switch sr.Outcome {
	case ledger.StockSkippedNoOption:
		entry.Warn("no product option matched; stock not adjusted")
	case ledger.StockClamped:
		entry.WithField("applied", sr.Applied).Warn("stock clamped at zero")
	default:
		entry.Debug("stock adjusted")
	}
}

func stamp(o *Order, target OrderStatus, now time.Time) {
	o.Status = target
	switch target {
	case StatusConfirmed:
		o.ConfirmedAt = &now
	case StatusShipped:
		if o.ConfirmedAt == nil {
			o.ConfirmedAt = &now
		}
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
}
