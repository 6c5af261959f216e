package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicOrderDeleted       = "order.deleted"
)

// MessageWriter is the subset of *kafka.Writer the event bus needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter returns a writer that picks the topic per message.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

// Event is the JSON envelope published for every lifecycle change.
type Event struct {
	Type       string        `json:"type"`
	TenantID   string        `json:"tenant_id"`
	OrderID    string        `json:"order_id"`
	OccurredAt time.Time     `json:"occurred_at"`
	Order      *domain.Order `json:"order,omitempty"`
	From       domain.Status `json:"from,omitempty"`
	To         domain.Status `json:"to,omitempty"`
}

// EventBus publishes order lifecycle events to Kafka. Messages are keyed by
// tenant and order so one order's events stay on one partition.
type EventBus struct {
	writer MessageWriter
	now    func() time.Time
}

func NewEventBus(writer MessageWriter) *EventBus {
	return &EventBus{writer: writer, now: time.Now}
}

func (b *EventBus) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	return b.publish(ctx, TopicOrderCreated, Event{
		TenantID: order.TenantID,
		OrderID:  order.ID,
		Order:    &order,
	})
}

func (b *EventBus) PublishStatusChanged(ctx context.Context, tenantID, orderID string, from, to domain.Status) error {
	return b.publish(ctx, TopicOrderStatusChanged, Event{
		TenantID: tenantID,
		OrderID:  orderID,
		From:     from,
		To:       to,
	})
}

func (b *EventBus) PublishOrderDeleted(ctx context.Context, tenantID, orderID string) error {
	return b.publish(ctx, TopicOrderDeleted, Event{
		TenantID: tenantID,
		OrderID:  orderID,
	})
}

func (b *EventBus) publish(ctx context.Context, topic string, event Event) error {
	event.Type = topic
	event.OccurredAt = b.now().UTC()

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}

	msg := kafka.Message{
		Topic:   topic,
		Key:     []byte(event.TenantID + "/" + event.OrderID),
		Value:   value,
		Headers: injectTraceHeaders(ctx, nil),
	}

	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (b *EventBus) Close() error {
	return b.writer.Close()
}

func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}
