// Package metrics holds the order console's business instruments.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
)

type Metrics struct {
	ordersCreatedTotal    metric.Int64Counter
	orderCreationDuration metric.Float64Histogram
	statusChangesTotal    metric.Int64Counter
	snapshotsTotal        metric.Int64Counter
	snapshotSize          metric.Int64Histogram
	notificationsTotal    metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersCreatedTotal, err = meter.Int64Counter(
		"orders_created_total",
		metric.WithDescription("Total number of orders created"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_created_total counter: %w", err)
	}

	m.orderCreationDuration, err = meter.Float64Histogram(
		"order_creation_duration_seconds",
		metric.WithDescription("Duration of order creation operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_creation_duration histogram: %w", err)
	}

	m.statusChangesTotal, err = meter.Int64Counter(
		"order_status_changes_total",
		metric.WithDescription("Status changes requested from the console"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_status_changes_total counter: %w", err)
	}

	m.snapshotsTotal, err = meter.Int64Counter(
		"order_snapshots_total",
		metric.WithDescription("Snapshots received from the live order store"),
		metric.WithUnit("{snapshot}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_snapshots_total counter: %w", err)
	}

	m.snapshotSize, err = meter.Int64Histogram(
		"order_snapshot_size",
		metric.WithDescription("Number of orders carried by each snapshot"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_snapshot_size histogram: %w", err)
	}

	m.notificationsTotal, err = meter.Int64Counter(
		"order_notifications_total",
		metric.WithDescription("Lifecycle events forwarded to the notification sink"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_notifications_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderCreated(ctx context.Context, success bool) {
	m.ordersCreatedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", outcome(success)),
	))
}

func (m *Metrics) RecordOrderCreationDuration(ctx context.Context, durationSeconds float64) {
	m.orderCreationDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordStatusChange(ctx context.Context, to domain.Status, success bool) {
	m.statusChangesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("to", string(to)),
		attribute.String("status", outcome(success)),
	))
}

func (m *Metrics) RecordSnapshot(ctx context.Context, size int) {
	m.snapshotsTotal.Add(ctx, 1)
	m.snapshotSize.Record(ctx, int64(size))
}

func (m *Metrics) RecordNotification(ctx context.Context, kind domain.EventKind) {
	m.notificationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
	))
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
