package metrics

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}
	return metrics, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Failed to collect metrics: %v", err)
	}

	byName := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func TestInitializeMetrics(t *testing.T) {
	t.Run("initializes all metric instruments successfully", func(t *testing.T) {
		metrics, _ := newTestMetrics(t)

		if metrics.ordersCreatedTotal == nil {
			t.Error("ordersCreatedTotal is nil")
		}
		if metrics.orderCreationDuration == nil {
			t.Error("orderCreationDuration is nil")
		}
		if metrics.statusChangesTotal == nil {
			t.Error("statusChangesTotal is nil")
		}
		if metrics.snapshotsTotal == nil || metrics.snapshotSize == nil {
			t.Error("snapshot instruments are nil")
		}
		if metrics.notificationsTotal == nil {
			t.Error("notificationsTotal is nil")
		}
	})
}

func TestRecordOrderCreated(t *testing.T) {
	t.Run("records order creation count with success status", func(t *testing.T) {
		metrics, reader := newTestMetrics(t)
		ctx := context.Background()

		metrics.RecordOrderCreated(ctx, true)
		metrics.RecordOrderCreated(ctx, false)
		metrics.RecordOrderCreationDuration(ctx, 0.02)

		got := collect(t, reader)

		sum, ok := got["orders_created_total"].Data.(metricdata.Sum[int64])
		if !ok {
			t.Fatal("orders_created_total not recorded as Sum[int64]")
		}
		if len(sum.DataPoints) != 2 {
			t.Errorf("Expected 2 data points, got %d", len(sum.DataPoints))
		}

		histogram, ok := got["order_creation_duration_seconds"].Data.(metricdata.Histogram[float64])
		if !ok {
			t.Fatal("order_creation_duration_seconds not recorded as Histogram[float64]")
		}
		if histogram.DataPoints[0].Count != 1 {
			t.Errorf("Expected count 1, got %d", histogram.DataPoints[0].Count)
		}
	})
}

func TestRecordStatusChange(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	ctx := context.Background()

	metrics.RecordStatusChange(ctx, domain.StatusPreparing, true)
	metrics.RecordStatusChange(ctx, domain.StatusPreparing, true)
	metrics.RecordStatusChange(ctx, domain.StatusReady, false)

	sum, ok := collect(t, reader)["order_status_changes_total"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("order_status_changes_total not recorded as Sum[int64]")
	}
	if len(sum.DataPoints) != 2 {
		t.Fatalf("Expected 2 data points, got %d", len(sum.DataPoints))
	}

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 3 {
		t.Errorf("Expected 3 status changes, got %d", total)
	}
}

func TestRecordSnapshotAndNotification(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	ctx := context.Background()

	metrics.RecordSnapshot(ctx, 0)
	metrics.RecordSnapshot(ctx, 4)
	metrics.RecordNotification(ctx, domain.EventNewOrder)
	metrics.RecordNotification(ctx, domain.EventOrderReady)

	got := collect(t, reader)

	snapshots, ok := got["order_snapshots_total"].Data.(metricdata.Sum[int64])
	if !ok || len(snapshots.DataPoints) != 1 || snapshots.DataPoints[0].Value != 2 {
		t.Errorf("Expected 2 snapshots, got %+v", got["order_snapshots_total"].Data)
	}

	size, ok := got["order_snapshot_size"].Data.(metricdata.Histogram[int64])
	if !ok || size.DataPoints[0].Sum != 4 {
		t.Errorf("Expected snapshot size sum 4, got %+v", got["order_snapshot_size"].Data)
	}

	notifications, ok := got["order_notifications_total"].Data.(metricdata.Sum[int64])
	if !ok || len(notifications.DataPoints) != 2 {
		t.Errorf("Expected 2 notification data points, got %+v", got["order_notifications_total"].Data)
	}
}
