package database

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records storage round-trips made on behalf of the order store.
type Metrics struct {
	queryDuration metric.Float64Histogram
	queryErrors   metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.queryDuration, err = meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create db_query_duration histogram: %w", err)
	}

	m.queryErrors, err = meter.Int64Counter(
		"db_query_errors_total",
		metric.WithDescription("Database queries that returned an error"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create db_query_errors counter: %w", err)
	}

	return m, nil
}

// RecordQuery records the duration of operation and counts it as an error when err is set.
func (m *Metrics) RecordQuery(ctx context.Context, operation string, durationSeconds float64, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		m.queryErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
		))
	}
	m.queryDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}
