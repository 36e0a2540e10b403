package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/actor"
	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/events"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/georgemunganga/lensworks-backend/internal/modules/pricing"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Service defines store account and receivable management.
type Service interface {
	Create(ctx context.Context, req StoreRequest) (*Store, error)
	Update(ctx context.Context, id uuid.UUID, req StoreRequest) (*Store, error)
	Get(ctx context.Context, id uuid.UUID) (*Store, error)
	List(ctx context.Context, f ListFilter) ([]*Store, error)

	// Deposit records a payment and lowers the outstanding amount.
	Deposit(ctx context.Context, id uuid.UUID, req DepositRequest) (*ledger.Transaction, error)

	// Adjust corrects the outstanding amount by a signed, non-zero amount.
	Adjust(ctx context.Context, id uuid.UUID, req AdjustmentRequest) (*ledger.Transaction, error)

	// Receivables lists active stores that owe money, largest first.
	Receivables(ctx context.Context) ([]*Store, error)
}

type service struct {
	repo      Repository
	publisher events.Publisher
	logger    log.FieldLogger
	now       func() time.Time
}

// NewService creates a new store service.
func NewService(repo Repository, publisher events.Publisher, logger log.FieldLogger) Service {
	return &service{repo: repo, publisher: publisher, logger: logger, now: time.Now}
}

func validate(req StoreRequest) error {
	if strings.TrimSpace(req.Code) == "" {
		return apperr.ErrRequired.New("code")
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperr.ErrRequired.New("name")
	}
	if req.CreditLimit < 0 {
		return apperr.ErrAmountInvalid.New()
	}
	if !pricing.ValidRate(req.DiscountRate) {
		return apperr.ErrRateInvalid.New()
	}
	return nil
}

func apply(s *Store, req StoreRequest) {
	s.Code = strings.TrimSpace(req.Code)
	s.Name = strings.TrimSpace(req.Name)
	s.OwnerName = req.OwnerName
	s.Phone = req.Phone
	s.Address = req.Address
	s.CreditLimit = req.CreditLimit
	s.DiscountRate = req.DiscountRate
	if req.PaymentTermsDays != nil {
		s.PaymentTermsDays = *req.PaymentTermsDays
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
}

func (s *service) Create(ctx context.Context, req StoreRequest) (*Store, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	now := s.now()
	st := &Store{ID: uuid.New(), IsActive: true, PaymentTermsDays: 30, CreatedAt: now, UpdatedAt: now}
	apply(st, req)
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	s.logger.WithFields(log.Fields{"store_id": st.ID, "code": st.Code}).Info("store created")
	return st, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req StoreRequest) (*Store, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(st, req)
	st.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Store, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, f ListFilter) ([]*Store, error) {
	stores, err := s.repo.List(ctx, f)
	if stores == nil && err == nil {
		stores = []*Store{}
	}
	return stores, err
}

func (s *service) Receivables(ctx context.Context) ([]*Store, error) {
	stores, err := s.repo.Receivables(ctx)
	if stores == nil && err == nil {
		stores = []*Store{}
	}
	return stores, err
}

func (s *service) Deposit(ctx context.Context, id uuid.UUID, req DepositRequest) (*ledger.Transaction, error) {
	if req.Amount <= 0 {
		return nil, apperr.ErrAmountInvalid.New()
	}
	method := req.PaymentMethod
	if method == "" {
		method = "bank_transfer"
	}
	t, err := s.post(ctx, id, ledger.BalanceEntry{
		StoreID:       id,
		Type:          ledger.TxDeposit,
		Amount:        -req.Amount,
		PaymentMethod: method,
		Depositor:     req.Depositor,
		BankName:      req.BankName,
		Memo:          req.Memo,
	}, ledger.WorkPayment, fmt.Sprintf("deposit %d (%s)", req.Amount, method))
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.publisher, s.logger, events.Envelope{
		Name: events.DepositRecorded, Key: id.String(), Actor: t.ProcessedBy, OccurredAt: t.ProcessedAt, Payload: t,
	})
	return t, nil
}

func (s *service) Adjust(ctx context.Context, id uuid.UUID, req AdjustmentRequest) (*ledger.Transaction, error) {
	if req.Amount == 0 {
		return nil, apperr.ErrAdjustmentZero.New()
	}
	if strings.TrimSpace(req.Memo) == "" {
		return nil, apperr.ErrRequired.New("memo")
	}
	return s.post(ctx, id, ledger.BalanceEntry{
		StoreID: id,
		Type:    ledger.TxAdjustment,
		Amount:  req.Amount,
		Memo:    req.Memo,
	}, ledger.WorkBalanceAdjust, fmt.Sprintf("balance adjusted by %+d: %s", req.Amount, req.Memo))
}

func (s *service) post(ctx context.Context, id uuid.UUID, e ledger.BalanceEntry, workType, desc string) (*ledger.Transaction, error) {
	e.Actor = actor.FromContext(ctx)
	e.At = s.now()
	var t *ledger.Transaction
	err := s.repo.WithinTx(ctx, func(tx ledger.Tx) error {
		var err error
		if t, err = ledger.PostBalance(ctx, tx, e); err != nil {
			return err
		}
		return ledger.AppendWorkLog(ctx, tx, ledger.WorkEntry{
			WorkType:    workType,
			TargetType:  "store",
			TargetID:    id,
			Description: desc,
			Details:     map[string]interface{}{"amount": e.Amount, "balance_after": t.BalanceAfter},
			Actor:       e.Actor,
			At:          e.At,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(log.Fields{
		"store_id": id, "type": e.Type, "amount": e.Amount, "balance_after": t.BalanceAfter,
	}).Info("store balance posted")
	return t, nil
}
