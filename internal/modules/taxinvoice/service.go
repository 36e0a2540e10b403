package taxinvoice

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

// Service defines tax invoice issuing.
type Service interface {
	// Issue creates an invoice in status issued. A repeated idempotency key
	// returns the invoice first issued under it.
	Issue(ctx context.Context, req IssueRequest) (*TaxInvoice, error)

	Send(ctx context.Context, id uuid.UUID) (*TaxInvoice, error)
	Cancel(ctx context.Context, id uuid.UUID) (*TaxInvoice, error)
	Get(ctx context.Context, id uuid.UUID) (*TaxInvoice, error)
	List(ctx context.Context, f ListFilter) (*List, error)
}

// Options tunes the service; zero values are valid.
type Options struct {
	Supplier  Party
	Publisher events.Publisher
	Location  *time.Location
	Now       func() time.Time
}

type service struct {
	repo      Repository
	supplier  Party
	publisher events.Publisher
	logger    log.FieldLogger
	loc       *time.Location
	now       func() time.Time
}

// NewService creates a new tax invoice service.
func NewService(repo Repository, logger log.FieldLogger, opts Options) Service {
	s := &service{repo: repo, supplier: opts.Supplier, publisher: opts.Publisher, logger: logger, loc: opts.Location, now: opts.Now}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// buildItems validates the lines and returns them with their supply total.
func buildItems(reqs []ItemRequest, on time.Time) ([]*Item, int64, error) {
	if len(reqs) == 0 {
		return nil, 0, apperr.ErrRequired.New("items")
	}
	items := make([]*Item, 0, len(reqs))
	var supply int64
	for i, line := range reqs {
		if strings.TrimSpace(line.ItemName) == "" {
			return nil, 0, apperr.ErrRequired.New("item_name")
		}
		if err := ledger.CheckLine(line.Quantity, line.UnitPrice); err != nil {
			return nil, 0, err
		}
		amount := order.LineTotal(line.Quantity, line.UnitPrice)
		if line.SupplyAmount != nil {
			amount = *line.SupplyAmount
		}
		if amount < 0 {
			return nil, 0, apperr.ErrAmountInvalid.New()
		}
		var err error
		if supply, err = ledger.AddAmount(supply, amount); err != nil {
			return nil, 0, err
		}
		items = append(items, &Item{
			ID:            uuid.New(),
			Seq:           i + 1,
			ItemDate:      on,
			ItemName:      strings.TrimSpace(line.ItemName),
			Specification: line.Specification,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			SupplyAmount:  amount,
			TaxAmount:     VAT(amount),
			Memo:          line.Memo,
		})
	}
	return items, supply, nil
}

func (s *service) Issue(ctx context.Context, req IssueRequest) (*TaxInvoice, error) {
	if req.StoreID == uuid.Nil {
		return nil, apperr.ErrStoreRequired.New()
	}
	now := s.now().In(s.loc)
	supplyDate := now
	if raw := strings.TrimSpace(req.SupplyDate); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, s.loc)
		if err != nil {
			return nil, apperr.ErrInvalidID.New("supply_date", raw)
		}
		supplyDate = d
	}
	items, supply, err := buildItems(req.Items, supplyDate)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	inv := &TaxInvoice{
		ID:             uuid.New(),
		StoreID:        req.StoreID,
		SupplyAmount:   supply,
		TaxAmount:      VAT(supply),
		IssueDate:      now,
		SupplyDate:     supplyDate,
		Status:         StatusIssued,
		Memo:           req.Memo,
		IdempotencyKey: key,
		CreatedBy:      actor.FromContext(ctx),
		Items:          items,
	}
	inv.TotalAmount = inv.SupplyAmount + inv.TaxAmount
	inv.setSupplier(s.supplier)
	for _, it := range items {
		it.InvoiceID = inv.ID
	}

	var replayed *TaxInvoice
	err = s.repo.WithinTx(ctx, func(tx Tx) error {
		if key != "" {
			existing, err := tx.FindByIdempotencyKey(ctx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				replayed = existing
				return nil
			}
		}
		buyer, err := tx.Buyer(ctx, req.StoreID)
		if err != nil {
			return err
		}
		buyer.BizNo = strings.TrimSpace(req.BuyerBizNo)
		inv.setBuyer(*buyer)

		seq, err := tx.NextSequence(ctx, "taxinvoice:"+now.Format("2006-01"))
		if err != nil {
			return err
		}
		inv.InvoiceNo = fmt.Sprintf("TX%s-%05d", now.Format("200601"), seq)
		if err := tx.InsertInvoice(ctx, inv); err != nil {
			return err
		}
		return ledger.AppendWorkLog(ctx, tx, ledger.WorkEntry{
			WorkType:    ledger.WorkTaxInvoiceCreate,
			TargetType:  "tax_invoice",
			TargetID:    inv.ID,
			TargetNo:    inv.InvoiceNo,
			Description: fmt.Sprintf("tax invoice %s issued to %s: %d", inv.InvoiceNo, inv.BuyerName, inv.TotalAmount),
			Actor:       inv.CreatedBy,
			At:          now,
		})
	})
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		s.logger.WithFields(log.Fields{"tax_invoice_id": replayed.ID, "idempotency_key": key}).Info("tax invoice replayed")
		return replayed, nil
	}
	s.logger.WithFields(log.Fields{"tax_invoice_id": inv.ID, "invoice_no": inv.InvoiceNo, "total": inv.TotalAmount}).Info("tax invoice issued")
	events.Emit(ctx, s.publisher, s.logger, events.Envelope{
		Name: events.TaxInvoiceIssued, Key: inv.ID.String(), Actor: inv.CreatedBy, OccurredAt: now, Payload: inv,
	})
	return inv, nil
}

func (s *service) Send(ctx context.Context, id uuid.UUID) (*TaxInvoice, error) {
	return s.transition(ctx, id, StatusSent)
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*TaxInvoice, error) {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, next Status) (*TaxInvoice, error) {
	who, at := actor.FromContext(ctx), s.now().In(s.loc)
	var inv *TaxInvoice
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		var err error
		if inv, err = tx.LockInvoice(ctx, id); err != nil {
			return err
		}
		if !CanTransition(inv.Status, next) {
			return apperr.ErrTaxInvoiceTransition.New(inv.InvoiceNo, inv.Status, next)
		}
		inv.Status = next
		workType := ledger.WorkTaxInvoiceSend
		if next == StatusSent {
			inv.SentAt = &at
		} else {
			inv.CancelledAt = &at
			workType = ledger.WorkTaxInvoiceCancel
		}
		if err := tx.UpdateStatus(ctx, inv); err != nil {
			return err
		}
		return ledger.AppendWorkLog(ctx, tx, ledger.WorkEntry{
			WorkType:    workType,
			TargetType:  "tax_invoice",
			TargetID:    inv.ID,
			TargetNo:    inv.InvoiceNo,
			Description: fmt.Sprintf("tax invoice %s %s", inv.InvoiceNo, next),
			Actor:       who,
			At:          at,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(log.Fields{"tax_invoice_id": inv.ID, "invoice_no": inv.InvoiceNo, "status": inv.Status}).Info("tax invoice updated")
	return inv, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TaxInvoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *service) List(ctx context.Context, f ListFilter) (*List, error) {
	invoices, err := s.repo.ListInvoices(ctx, f)
	if err != nil {
		return nil, err
	}
	sum, err := s.repo.Summarize(ctx, f)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []*TaxInvoice{}
	}
	return &List{Invoices: invoices, Summary: sum}, nil
}
