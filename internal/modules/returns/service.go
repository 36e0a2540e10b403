package returns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/actor"
	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/events"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/georgemunganga/lensworks-backend/internal/modules/order"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Service defines the return and exchange workflow.
type Service interface {
	// Create opens a return against a booked order.
	Create(ctx context.Context, req CreateRequest) (*Return, error)

	// Act approves, rejects or receives a return. Receiving restocks and credits the store.
	Act(ctx context.Context, id uuid.UUID, req ActionRequest) (*ActionResult, error)

	Get(ctx context.Context, id uuid.UUID) (*Return, error)
	List(ctx context.Context, f ListFilter) ([]*Return, error)
}

// ActionResult is the return after an action, plus the ledger effects of a receipt.
type ActionResult struct {
	*Return
	BalanceAfter *int64               `json:"balance_after,omitempty"`
	Stock        []ledger.StockResult `json:"stock,omitempty"`
}

// Options tunes the service; zero values are valid.
type Options struct {
	Publisher events.Publisher
	Location  *time.Location
	Now       func() time.Time
}

type service struct {
	repo      Repository
	publisher events.Publisher
	logger    log.FieldLogger
	loc       *time.Location
	now       func() time.Time
}

// NewService creates a new returns service.
func NewService(repo Repository, logger log.FieldLogger, opts Options) Service {
	s := &service{repo: repo, publisher: opts.Publisher, logger: logger, loc: opts.Location, now: opts.Now}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func booked(st order.OrderStatus) bool {
	return st == order.StatusConfirmed || st == order.StatusShipped || st == order.StatusDelivered
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Return, error) {
	if req.OrderID == uuid.Nil {
		return nil, apperr.ErrRequired.New("order_id")
	}
	if len(req.Items) == 0 {
		return nil, apperr.ErrItemsRequired.New()
	}
	typ, err := ParseType(req.Type)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	ret := &Return{
		ID:          uuid.New(),
		OrderID:     req.OrderID,
		Type:        typ,
		Status:      StatusRequested,
		Reason:      req.Reason,
		Memo:        req.Memo,
		ProcessedBy: actor.FromContext(ctx),
		RequestedAt: now,
	}
	err = s.repo.WithinTx(ctx, func(tx Tx) error {
		o, err := tx.LockOrder(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if !booked(o.Status) {
			return apperr.ErrReturnOrderNotBooked.New(o.OrderNo, o.Status)
		}
		claimed, err := tx.ReturnedQuantities(ctx, o.ID)
		if err != nil {
			return err
		}
		lines := make(map[uuid.UUID]*order.OrderItem, len(o.Items))
		for _, it := range o.Items {
			lines[it.ID] = it
		}

		ret.OrderNo, ret.StoreID, ret.StoreName = o.OrderNo, o.StoreID, o.StoreName
		ret.Items, ret.TotalQuantity, ret.TotalAmount = nil, 0, 0
		for i, lr := range req.Items {
			it, ok := lines[lr.OrderItemID]
			if !ok {
				return apperr.ErrReturnItemInvalid.New(lr.OrderItemID)
			}
			qty := order.NormalizeQuantity(lr.Quantity)
			if qty <= 0 {
				return apperr.ErrQuantityInvalid.New()
			}
			if claimed[it.ID]+qty > it.Quantity {
				return apperr.ErrReturnQtyExceeds.New(claimed[it.ID]+qty, it.Quantity)
			}
			claimed[it.ID] += qty

			condition := strings.TrimSpace(lr.Condition)
			if condition == "" {
				condition = "good"
			}
			item := &ReturnItem{
				ID:          uuid.New(),
				ReturnID:    ret.ID,
				OrderItemID: it.ID,
				ProductID:   it.ProductID,
				Sph:         it.Sph,
				Cyl:         it.Cyl,
				Quantity:    qty,
				UnitPrice:   it.UnitPrice,
				TotalPrice:  order.LineTotal(qty, it.UnitPrice),
				Reason:      lr.Reason,
				Condition:   condition,
				Position:    i + 1,
			}
			ret.TotalQuantity += qty
			ret.TotalAmount += item.TotalPrice
			ret.Items = append(ret.Items, item)
		}

		day := now.Format("20060102")
		seq, err := tx.NextSequence(ctx, "return:"+day)
		if err != nil {
			return err
		}
		ret.ReturnNo = fmt.Sprintf("RTN-%s-%03d", day, seq)
		if err := tx.InsertReturn(ctx, ret); err != nil {
			return err
		}
		return ledger.AppendWorkLog(ctx, tx, ledger.WorkEntry{
			WorkType:    ledger.WorkReturnCreate,
			TargetType:  "return",
			TargetID:    ret.ID,
			TargetNo:    ret.ReturnNo,
			Description: fmt.Sprintf("%s %s requested for order %s: %.1f pcs, %d", ret.Type, ret.ReturnNo, ret.OrderNo, ret.TotalQuantity, ret.TotalAmount),
			Actor:       ret.ProcessedBy,
			At:          now,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(log.Fields{
		"return_id": ret.ID, "return_no": ret.ReturnNo, "order_no": ret.OrderNo, "total": ret.TotalAmount,
	}).Info("return requested")
	return ret, nil
}

func (s *service) Act(ctx context.Context, id uuid.UUID, req ActionRequest) (*ActionResult, error) {
	action, err := ParseAction(req.Action)
	if err != nil {
		return nil, err
	}
	who, at := actor.FromContext(ctx), s.now().In(s.loc)
	var res *ActionResult
	err = s.repo.WithinTx(ctx, func(tx Tx) error {
		ret, err := tx.LockReturn(ctx, id)
		if err != nil {
			return err
		}
		res = &ActionResult{Return: ret}
		var workType string
		switch action {
		case ActionApprove:
			if ret.Status != StatusRequested {
				return apperr.ErrReturnNotRequested.New(ret.Status)
			}
			ret.Status, ret.ApprovedAt, workType = StatusApproved, &at, ledger.WorkReturnApprove
		case ActionReject:
			if ret.Status != StatusRequested {
				return apperr.ErrReturnNotRequested.New(ret.Status)
			}
			ret.Status, ret.RejectedAt, workType = StatusRejected, &at, ledger.WorkReturnReject
		case ActionReceive:
			if ret.Status != StatusApproved {
				return apperr.ErrReturnNotApproved.New(ret.Status)
			}
			if err := s.receive(ctx, tx, res, who, at); err != nil {
				return err
			}
			ret.Status, ret.ReceivedAt, workType = StatusReceived, &at, ledger.WorkReturnReceive
		}
		if m := strings.TrimSpace(req.Memo); m != "" {
			ret.Memo = m
		}
		ret.ProcessedBy = who
		if err := tx.UpdateStatus(ctx, ret); err != nil {
			return err
		}
		return ledger.AppendWorkLog(ctx, tx, ledger.WorkEntry{
			WorkType:    workType,
			TargetType:  "return",
			TargetID:    ret.ID,
			TargetNo:    ret.ReturnNo,
			Description: fmt.Sprintf("return %s %s", ret.ReturnNo, ret.Status),
			Details:     res,
			Actor:       who,
			At:          at,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(log.Fields{"return_id": res.ID, "return_no": res.ReturnNo, "status": res.Status}).Info("return updated")
	if res.Status == StatusReceived {
		events.Emit(ctx, s.publisher, s.logger, events.Envelope{
			Name: events.ReturnReceived, Key: res.ID.String(), Actor: who, OccurredAt: at, Payload: res,
		})
	}
	return res, nil
}

// receive restocks stock-order lines and credits the store for the returned amount.
func (s *service) receive(ctx context.Context, tx Tx, res *ActionResult, who string, at time.Time) error {
	ret := res.Return
	o, err := tx.LockOrder(ctx, ret.OrderID)
	if err != nil {
		return err
	}
	retID, orderID := ret.ID, ret.OrderID
	if o.OrderType == order.TypeStock {
		for _, it := range ret.Items {
			sr, err := ledger.MoveStock(ctx, tx, ledger.StockMove{
				ProductID: it.ProductID,
				Sph:       it.Sph,
				Cyl:       it.Cyl,
				Quantity:  it.Quantity,
				Type:      ledger.MoveIn,
				Reason:    "return",
				OrderID:   &orderID,
				OrderNo:   ret.OrderNo,
				ReturnID:  &retID,
				UnitPrice: it.UnitPrice,
				Memo:      ret.ReturnNo,
				Actor:     who,
				At:        at,
			})
			if err != nil {
				return err
			}
			if sr.Outcome == ledger.StockSkippedNoOption {
				s.logger.WithFields(log.Fields{
					"return_no":  ret.ReturnNo,
					"product_id": sr.ProductID,
					"sph":        sr.Sph,
					"cyl":        sr.Cyl,
					"outcome":    sr.Outcome,
				}).Warn("no product option matched; returned stock not restocked")
			}
			res.Stock = append(res.Stock, sr)
		}
	}
	t, err := ledger.PostBalance(ctx, tx, ledger.BalanceEntry{
		StoreID:  ret.StoreID,
		Type:     ledger.TxReturn,
		Amount:   -ret.TotalAmount,
		OrderID:  &orderID,
		OrderNo:  ret.OrderNo,
		ReturnID: &retID,
		Memo:     ret.ReturnNo,
		Actor:    who,
		At:       at,
	})
	if err != nil {
		return err
	}
	res.BalanceAfter = &t.BalanceAfter
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Return, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) List(ctx context.Context, f ListFilter) ([]*Return, error) {
	out, err := s.repo.List(ctx, f)
	if out == nil && err == nil {
		out = []*Return{}
	}
	return out, err
}
