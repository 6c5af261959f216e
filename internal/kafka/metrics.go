package kafka

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	publishLatency metric.Float64Histogram
	publishedTotal metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.publishLatency, err = meter.Float64Histogram(
		"kafka_producer_latency_seconds",
		metric.WithDescription("Time spent writing lifecycle events to Kafka"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka_producer_latency histogram: %w", err)
	}

	m.publishedTotal, err = meter.Int64Counter(
		"kafka_events_published_total",
		metric.WithDescription("Lifecycle events handed to Kafka"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka_events_published counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordPublish(ctx context.Context, topic string, durationSeconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("status", status),
	)
	m.publishLatency.Record(ctx, durationSeconds, attrs)
	m.publishedTotal.Add(ctx, 1, attrs)
}
