package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/actor"
	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/events"
	"github.com/georgemunganga/lensworks-backend/internal/modules/catalog"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/georgemunganga/lensworks-backend/internal/modules/pricing"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Service defines the order management business logic.
type Service interface {
	// Create prices and persists a pending order. No stock or balance changes until it is booked.
	Create(ctx context.Context, req CreateOrderRequest) (*Order, error)

	// Transition moves each order to the target status in its own transaction.
	Transition(ctx context.Context, req TransitionRequest) (*BatchResult, error)

	// TransitionOne moves a single order and reports rejection as an error.
	TransitionOne(ctx context.Context, id uuid.UUID, status string) (*TransitionResult, error)

	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByNumber(ctx context.Context, period, orderNo string) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]*Order, error)
}

// Pricer resolves the unit price a store pays for a product.
type Pricer interface {
	Quote(ctx context.Context, storeID, productID uuid.UUID) (*pricing.Quote, error)
}

// Options tunes the service; zero values are valid.
type Options struct {
	Publisher events.Publisher
	Location  *time.Location
	Now       func() time.Time
}

type service struct {
	repo      Repository
	pricer    Pricer
	publisher events.Publisher
	logger    log.FieldLogger
	loc       *time.Location
	now       func() time.Time
}

// NewService creates a new order service.
func NewService(repo Repository, pricer Pricer, logger log.FieldLogger, opts Options) Service {
	s := &service{repo: repo, pricer: pricer, publisher: opts.Publisher, logger: logger, loc: opts.Location, now: opts.Now}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if strings.TrimSpace(req.StoreID) == "" {
		return nil, apperr.ErrStoreRequired.New()
	}
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, apperr.ErrInvalidID.New("store_id", req.StoreID)
	}
	if len(req.Items) == 0 {
		return nil, apperr.ErrItemsRequired.New()
	}
	orderType, err := ParseOrderType(req.OrderType)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	o := &Order{
		ID:        uuid.New(),
		Period:    now.Format("2006-01"),
		StoreID:   storeID,
		OrderType: orderType,
		Status:    StatusPending,
		Memo:      req.Memo,
		CreatedBy: actor.FromContext(ctx),
		OrderedAt: now,
	}

	// ── price lines ──────────────────────────────────────────────────────────
	for i, ir := range req.Items {
		productID, err := uuid.Parse(ir.ProductID)
		if err != nil {
			return nil, apperr.ErrInvalidID.New("product_id", ir.ProductID)
		}
		qty := NormalizeQuantity(ir.Quantity)
		if qty <= 0 {
			return nil, apperr.ErrQuantityInvalid.New()
		}
		q, err := s.pricer.Quote(ctx, storeID, productID)
		if err != nil {
			return nil, err
		}
		item := &OrderItem{
			ID:            uuid.New(),
			OrderID:       o.ID,
			ProductID:     productID,
			ProductName:   q.ProductName,
			Quantity:      qty,
			UnitPrice:     q.UnitPrice,
			OriginalPrice: q.OriginalPrice,
			DiscountType:  q.DiscountType,
			DiscountRate:  q.DiscountRate,
			Sph:           catalog.NormalizeDiopter(ir.Sph),
			Cyl:           catalog.NormalizeDiopter(ir.Cyl),
			Axis:          strings.TrimSpace(ir.Axis),
			BC:            strings.TrimSpace(ir.BC),
			Dia:           strings.TrimSpace(ir.Dia),
			Memo:          ir.Memo,
			Position:      i + 1,
		}
		if ir.UnitPrice != nil {
			item.UnitPrice = *ir.UnitPrice
			item.DiscountType = pricing.DiscountManual
			item.DiscountRate = 0
		}
		if err := ledger.CheckLine(qty, item.UnitPrice); err != nil {
			return nil, err
		}
		item.TotalPrice = LineTotal(qty, item.UnitPrice)
		if o.TotalAmount, err = ledger.AddAmount(o.TotalAmount, item.TotalPrice); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}

	// ── persist ──────────────────────────────────────────────────────────────
	err = s.repo.WithinTx(ctx, func(tx Tx) error {
		acct, err := tx.LockStore(ctx, storeID)
		if err != nil {
			return err
		}
		if !acct.IsActive {
			return apperr.ErrStoreInactive.New()
		}
		o.StoreName = acct.Name
		if !req.SkipCreditCheck && acct.CreditLimit > 0 && acct.OutstandingAmount+o.TotalAmount > acct.CreditLimit {
			return apperr.ErrCreditLimitExceeded.New().WithDetails(CreditDetails{
				CurrentOutstanding: acct.OutstandingAmount,
				OrderAmount:        o.TotalAmount,
				CreditLimit:        acct.CreditLimit,
				WouldExceedBy:      acct.OutstandingAmount + o.TotalAmount - acct.CreditLimit,
			})
		}

		seq, err := tx.NextSequence(ctx, "order:"+o.Period)
		if err != nil {
			return err
		}
		o.OrderNo = fmt.Sprintf("%02d%d", int(now.Month()), seq)

		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		return ledger.AppendWorkLog(ctx, tx, ledger.WorkEntry{
			WorkType:    ledger.WorkOrderCreate,
			TargetType:  "order",
			TargetID:    o.ID,
			TargetNo:    o.OrderNo,
			Description: fmt.Sprintf("order %s created for %s (%d items, %d)", o.OrderNo, acct.Name, len(o.Items), o.TotalAmount),
			Details:     map[string]interface{}{"order_type": o.OrderType, "total_amount": o.TotalAmount, "skip_credit_check": req.SkipCreditCheck},
			Actor:       o.CreatedBy,
			At:          now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(log.Fields{
		"order_id": o.ID, "order_no": o.OrderNo, "store_id": o.StoreID, "total_amount": o.TotalAmount,
	}).Info("order created")
	events.Emit(ctx, s.publisher, s.logger, events.Envelope{
		Name: events.OrderCreated, Key: o.ID.String(), Actor: o.CreatedBy, OccurredAt: now, Payload: o,
	})
	return o, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByNumber(ctx context.Context, period, orderNo string) (*Order, error) {
	if period == "" {
		period = s.now().In(s.loc).Format("2006-01")
	}
	return s.repo.GetByNumber(ctx, period, orderNo)
}

func (s *service) List(ctx context.Context, f ListFilter) ([]*Order, error) {
	orders, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*Order{}
	}
	return orders, nil
}
