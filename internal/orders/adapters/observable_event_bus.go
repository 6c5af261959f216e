package adapters

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dejobratic/orderwatch/internal/kafka"
	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/ports"
	"github.com/dejobratic/orderwatch/internal/telemetry"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	return e.observe(ctx, kafka.TopicOrderCreated, order.TenantID, order.ID, func(ctx context.Context) error {
		return e.bus.PublishOrderCreated(ctx, order)
	})
}

func (e *ObservableEventBus) PublishStatusChanged(ctx context.Context, tenantID, orderID string, from, to domain.Status) error {
	return e.observe(ctx, kafka.TopicOrderStatusChanged, tenantID, orderID, func(ctx context.Context) error {
		return e.bus.PublishStatusChanged(ctx, tenantID, orderID, from, to)
	},
		attribute.String("order.from_status", string(from)),
		attribute.String("order.to_status", string(to)),
	)
}

func (e *ObservableEventBus) PublishOrderDeleted(ctx context.Context, tenantID, orderID string) error {
	return e.observe(ctx, kafka.TopicOrderDeleted, tenantID, orderID, func(ctx context.Context) error {
		return e.bus.PublishOrderDeleted(ctx, tenantID, orderID)
	})
}

func (e *ObservableEventBus) observe(ctx context.Context, topic, tenantID, orderID string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.Publish "+topic)
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("tenant.id", tenantID),
		attribute.String("order.id", orderID),
		attribute.String("topic", topic),
	)
	telemetry.AddSpanAttributes(span, attrs...)

	start := time.Now()
	err := fn(ctx)
	e.metrics.RecordPublish(ctx, topic, time.Since(start).Seconds(), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
