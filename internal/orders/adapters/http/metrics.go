package http

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics tracks console API traffic by route pattern.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestsTotal    metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.requestDuration, err = meter.Float64Histogram(
		"console_http_request_duration_seconds",
		metric.WithDescription("Console API request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create console_http_request_duration histogram: %w", err)
	}

	m.requestsTotal, err = meter.Int64Counter(
		"console_http_requests_total",
		metric.WithDescription("Console API requests by route and status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create console_http_requests_total counter: %w", err)
	}

	m.requestsInFlight, err = meter.Int64UpDownCounter(
		"console_http_requests_in_flight",
		metric.WithDescription("Console API requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create console_http_requests_in_flight counter: %w", err)
	}

	return m, nil
}

// Started marks a request as in flight. Call the returned func when it ends.
func (m *Metrics) Started(ctx context.Context) func() {
	m.requestsInFlight.Add(ctx, 1)
	return func() { m.requestsInFlight.Add(ctx, -1) }
}

func (m *Metrics) RecordRequest(ctx context.Context, method, route string, statusCode int, durationSeconds float64) {
	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status_code", statusCode),
		attribute.String("status_class", statusClass(statusCode)),
	))
	m.requestDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
