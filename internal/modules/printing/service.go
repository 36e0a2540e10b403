package printing

import (
	"context"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/modules/order"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Orders loads the order a slip is printed for.
type Orders interface {
	Get(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

// Service renders and prints shipping slips.
type Service interface {
	// Slip renders the slip without printing it.
	Slip(ctx context.Context, orderID uuid.UUID) (*Job, error)

	// PrintOrder renders the slip and sends it to the print server.
	PrintOrder(ctx context.Context, orderID uuid.UUID) (*Job, error)
}

type service struct {
	orders  Orders
	printer Printer
	logger  log.FieldLogger
	now     func() time.Time
}

func NewService(orders Orders, printer Printer, logger log.FieldLogger) Service {
	return &service{orders: orders, printer: printer, logger: logger, now: time.Now}
}

func (s *service) Slip(ctx context.Context, orderID uuid.UUID) (*Job, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &Job{Type: "text", Content: FormatSlip(o, s.now()), OrderNo: o.OrderNo}, nil
}

func (s *service) PrintOrder(ctx context.Context, orderID uuid.UUID) (*Job, error) {
	job, err := s.Slip(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.printer.Print(ctx, *job); err != nil {
		s.logger.WithError(err).WithField("order_no", job.OrderNo).Warn("slip not printed")
		return nil, err
	}
	s.logger.WithField("order_no", job.OrderNo).Info("slip printed")
	return job, nil
}
