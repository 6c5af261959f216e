package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/metrics"
	"github.com/dejobratic/orderwatch/internal/orders/ports"
)

type mockStore struct {
	subscribeFn func(ctx context.Context, tenantID string) (ports.Subscription, error)
	updateFn    func(ctx context.Context, tenantID, id string, status domain.Status, eta *time.Time) error
	deleteFn    func(ctx context.Context, tenantID, id string) error
	createFn    func(ctx context.Context, order domain.Order) error
}

func (m *mockStore) Subscribe(ctx context.Context, tenantID string) (ports.Subscription, error) {
	if m.subscribeFn != nil {
		return m.subscribeFn(ctx, tenantID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockStore) CreateOrder(ctx context.Context, order domain.Order) error {
	if m.createFn != nil {
		return m.createFn(ctx, order)
	}
	return nil
}

func (m *mockStore) UpdateStatus(ctx context.Context, tenantID, id string, status domain.Status, eta *time.Time) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, tenantID, id, status, eta)
	}
	return nil
}

func (m *mockStore) DeleteOrder(ctx context.Context, tenantID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tenantID, id)
	}
	return nil
}

type statusChange struct {
	orderID  string
	from, to domain.Status
}

type mockEventBus struct {
	created []string
	changed []statusChange
	deleted []string
	err     error
}

func (m *mockEventBus) PublishOrderCreated(_ context.Context, order domain.Order) error {
	m.created = append(m.created, order.ID)
	return m.err
}

func (m *mockEventBus) PublishStatusChanged(_ context.Context, _, orderID string, from, to domain.Status) error {
	m.changed = append(m.changed, statusChange{orderID, from, to})
	return m.err
}

func (m *mockEventBus) PublishOrderDeleted(_ context.Context, _, orderID string) error {
	m.deleted = append(m.deleted, orderID)
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noopMetrics(t *testing.T) *metrics.Metrics {
	t.Helper()

	m, err := metrics.NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}
	return m
}
