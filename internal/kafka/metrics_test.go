package kafka

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordPublish(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	ctx := context.Background()
	metrics.RecordPublish(ctx, TopicOrderCreated, 0.01, nil)
	metrics.RecordPublish(ctx, TopicOrderCreated, 0.02, nil)
	metrics.RecordPublish(ctx, TopicOrderStatusChanged, 0.5, errors.New("timeout"))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Failed to collect metrics: %v", err)
	}

	var sawLatency, sawCount bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "kafka_producer_latency_seconds":
				sawLatency = true
				histogram, ok := m.Data.(metricdata.Histogram[float64])
				if !ok {
					t.Fatal("Expected Histogram[float64] data type")
				}
				if len(histogram.DataPoints) != 2 {
					t.Errorf("Expected 2 attribute sets, got %d", len(histogram.DataPoints))
				}
			case "kafka_events_published_total":
				sawCount = true
				sum, ok := m.Data.(metricdata.Sum[int64])
				if !ok {
					t.Fatal("Expected Sum[int64] data type")
				}
				var total int64
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
				if total != 3 {
					t.Errorf("Expected 3 published events, got %d", total)
				}
			}
		}
	}

	if !sawLatency {
		t.Error("kafka_producer_latency_seconds metric not found")
	}
	if !sawCount {
		t.Error("kafka_events_published_total metric not found")
	}
}
