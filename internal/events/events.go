// Package events publishes domain events after the owning transaction commits.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// Event names.
const (
	OrderCreated      = "order.created"
	OrderTransitioned = "order.transitioned"
	DepositRecorded   = "store.deposit_recorded"
	ReturnReceived    = "return.received"
	PurchaseReceived  = "purchase.received"
	TaxInvoiceIssued  = "tax_invoice.issued"
)

// Envelope is the wire shape of every event.
type Envelope struct {
	Name       string      `json:"name"`
	Key        string      `json:"key"`
	Actor      string      `json:"actor"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Envelope) error
}

// Emit publishes e and logs, rather than returns, delivery failures.
// Callers invoke it after commit so the business write never depends on the broker.
func Emit(ctx context.Context, p Publisher, logger log.FieldLogger, e Envelope) {
	if p == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.WithError(err).WithFields(log.Fields{"event": e.Name, "key": e.Key}).Warn("event not delivered")
	}
}

// KafkaPublisher writes events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher writes events to topic, keyed so one entity's events stay ordered.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}}
}

func (k *KafkaPublisher) Publish(ctx context.Context, e Envelope) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(e.Name)},
		},
	})
}

func (k *KafkaPublisher) Close() error { return k.writer.Close() }

// LogPublisher records events in the log when no broker is configured.
type LogPublisher struct {
	Logger log.FieldLogger
}

func (l LogPublisher) Publish(_ context.Context, e Envelope) error {
	l.Logger.WithFields(log.Fields{"event": e.Name, "key": e.Key, "actor": e.Actor}).Debug("event")
	return nil
}
