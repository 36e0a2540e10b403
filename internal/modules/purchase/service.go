package purchase

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

// Service defines supplier management and purchasing.
type Service interface {
	CreateSupplier(ctx context.Context, req SupplierRequest) (*Supplier, error)
	UpdateSupplier(ctx context.Context, id uuid.UUID, req SupplierRequest) (*Supplier, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error)
	ListSuppliers(ctx context.Context, activeOnly bool) ([]*Supplier, error)

	// Create places an order with a supplier. Stock is untouched until it is received.
	Create(ctx context.Context, req PurchaseRequest) (*Purchase, error)

	// Receive books every line into stock with "in" movements.
	Receive(ctx context.Context, id uuid.UUID) (*Purchase, error)

	Cancel(ctx context.Context, id uuid.UUID) (*Purchase, error)
	Get(ctx context.Context, id uuid.UUID) (*Purchase, error)
	List(ctx context.Context, f ListFilter) ([]*Purchase, error)
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

// NewService creates a new purchase service.
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

// ── suppliers ───────────────────────────────────────────────────────────────

func applySupplier(sp *Supplier, req SupplierRequest) {
	sp.Name = strings.TrimSpace(req.Name)
	sp.ContactName = req.ContactName
	sp.Phone = req.Phone
	sp.Email = req.Email
	if req.IsActive != nil {
		sp.IsActive = *req.IsActive
	}
}

func (s *service) CreateSupplier(ctx context.Context, req SupplierRequest) (*Supplier, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.ErrRequired.New("name")
	}
	now := s.now()
	sp := &Supplier{ID: uuid.New(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	applySupplier(sp, req)
	if err := s.repo.CreateSupplier(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *service) UpdateSupplier(ctx context.Context, id uuid.UUID, req SupplierRequest) (*Supplier, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.ErrRequired.New("name")
	}
	sp, err := s.repo.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	applySupplier(sp, req)
	sp.UpdatedAt = s.now()
	if err := s.repo.UpdateSupplier(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *service) GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

func (s *service) ListSuppliers(ctx context.Context, activeOnly bool) ([]*Supplier, error) {
	out, err := s.repo.ListSuppliers(ctx, activeOnly)
	if out == nil && err == nil {
		out = []*Supplier{}
	}
	return out, err
}

// ── purchases ───────────────────────────────────────────────────────────────

func (s *service) Create(ctx context.Context, req PurchaseRequest) (*Purchase, error) {
	if req.SupplierID == uuid.Nil {
		return nil, apperr.ErrRequired.New("supplier_id")
	}
	if len(req.Items) == 0 {
		return nil, apperr.ErrItemsRequired.New()
	}
	for _, line := range req.Items {
		if err := ledger.CheckLine(order.NormalizeQuantity(line.Quantity), line.UnitCost); err != nil {
			return nil, err
		}
	}
	sp, err := s.repo.GetSupplier(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	p := &Purchase{
		ID:           uuid.New(),
		SupplierID:   sp.ID,
		SupplierName: sp.Name,
		Status:       StatusOrdered,
		Memo:         req.Memo,
		CreatedBy:    actor.FromContext(ctx),
		OrderedAt:    now,
	}
	err = s.repo.WithinTx(ctx, func(tx Tx) error {
		p.Items, p.TotalAmount = nil, 0
		for i, line := range req.Items {
			opt, err := tx.LockOption(ctx, line.OptionID)
			if err != nil {
				return err
			}
			qty := order.NormalizeQuantity(line.Quantity)
			item := &PurchaseItem{
				ID:         uuid.New(),
				PurchaseID: p.ID,
				OptionID:   opt.ID,
				ProductID:  opt.ProductID,
				Quantity:   qty,
				UnitCost:   line.UnitCost,
				TotalCost:  order.LineTotal(qty, line.UnitCost),
				Position:   i + 1,
			}
			if p.TotalAmount, err = ledger.AddAmount(p.TotalAmount, item.TotalCost); err != nil {
				return err
			}
			p.Items = append(p.Items, item)
		}
		seq, err := tx.NextSequence(ctx, "purchase:"+now.Format("200601"))
		if err != nil {
			return err
		}
		p.PurchaseNo = fmt.Sprintf("PO-%s-%04d", now.Format("200601"), seq)
		if err := tx.InsertPurchase(ctx, p); err != nil {
			return err
		}
		return ledger.AppendWorkLog(ctx, tx, ledger.WorkEntry{
			WorkType:    ledger.WorkPurchaseCreate,
			TargetType:  "purchase",
			TargetID:    p.ID,
			TargetNo:    p.PurchaseNo,
			Description: fmt.Sprintf("purchase %s placed with %s: %d line(s), %d", p.PurchaseNo, sp.Name, len(p.Items), p.TotalAmount),
			Actor:       p.CreatedBy,
			At:          now,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(log.Fields{"purchase_id": p.ID, "purchase_no": p.PurchaseNo, "total": p.TotalAmount}).Info("purchase created")
	return p, nil
}

func (s *service) Receive(ctx context.Context, id uuid.UUID) (*Purchase, error) {
	who, at := actor.FromContext(ctx), s.now().In(s.loc)
	var p *Purchase
	var moved []ledger.StockResult
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		var err error
		if p, err = tx.LockPurchase(ctx, id); err != nil {
			return err
		}
		if p.Status != StatusOrdered {
			return apperr.ErrPurchaseNotOpen.New(p.PurchaseNo, p.Status)
		}
		moved = moved[:0]
		for _, it := range p.Items {
			optID, purchaseID := it.OptionID, p.ID
			sr, err := ledger.MoveStock(ctx, tx, ledger.StockMove{
				OptionID:   &optID,
				ProductID:  it.ProductID,
				Quantity:   it.Quantity,
				Type:       ledger.MoveIn,
				Reason:     "purchase",
				PurchaseID: &purchaseID,
				UnitPrice:  it.UnitCost,
				Memo:       p.PurchaseNo,
				Actor:      who,
				At:         at,
			})
			if err != nil {
				return err
			}
			moved = append(moved, sr)
		}
		p.Status = StatusReceived
		p.ReceivedAt = &at
		if err := tx.UpdateStatus(ctx, p); err != nil {
			return err
		}
		return ledger.AppendWorkLog(ctx, tx, ledger.WorkEntry{
			WorkType:    ledger.WorkPurchaseReceive,
			TargetType:  "purchase",
			TargetID:    p.ID,
			TargetNo:    p.PurchaseNo,
			Description: fmt.Sprintf("purchase %s received", p.PurchaseNo),
			Details:     moved,
			Actor:       who,
			At:          at,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(log.Fields{"purchase_id": p.ID, "purchase_no": p.PurchaseNo, "lines": len(moved)}).Info("purchase received")
	events.Emit(ctx, s.publisher, s.logger, events.Envelope{
		Name: events.PurchaseReceived, Key: p.ID.String(), Actor: who, OccurredAt: at, Payload: p,
	})
	return p, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*Purchase, error) {
	who, at := actor.FromContext(ctx), s.now().In(s.loc)
	var p *Purchase
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		var err error
		if p, err = tx.LockPurchase(ctx, id); err != nil {
			return err
		}
		if p.Status != StatusOrdered {
			return apperr.ErrPurchaseNotOpen.New(p.PurchaseNo, p.Status)
		}
		p.Status = StatusCancelled
		p.CancelledAt = &at
		if err := tx.UpdateStatus(ctx, p); err != nil {
			return err
		}
		return ledger.AppendWorkLog(ctx, tx, ledger.WorkEntry{
			WorkType:    ledger.WorkPurchaseCancel,
			TargetType:  "purchase",
			TargetID:    p.ID,
			TargetNo:    p.PurchaseNo,
			Description: fmt.Sprintf("purchase %s cancelled", p.PurchaseNo),
			Actor:       who,
			At:          at,
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Purchase, error) {
	return s.repo.GetPurchase(ctx, id)
}

func (s *service) List(ctx context.Context, f ListFilter) ([]*Purchase, error) {
	out, err := s.repo.ListPurchases(ctx, f)
	if out == nil && err == nil {
		out = []*Purchase{}
	}
	return out, err
}
