package adapters

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dejobratic/orderwatch/internal/database"
	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/ports"
	"github.com/dejobratic/orderwatch/internal/telemetry"
)

// ObservableRepository traces and times every call to the wrapped repository.
type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) List(ctx context.Context, tenantID string) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.observe(ctx, "OrderRepository.List", "list_orders", func(ctx context.Context, span trace.Span) error {
		telemetry.AddSpanAttributes(span, attribute.String("tenant.id", tenantID))

		var err error
		orders, err = r.repo.List(ctx, tenantID)
		if err == nil {
			telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
		}
		return err
	})
	return orders, err
}

func (r *ObservableRepository) Create(ctx context.Context, order domain.Order) error {
	return r.observe(ctx, "OrderRepository.Create", "insert_order", func(ctx context.Context, span trace.Span) error {
		telemetry.AddSpanAttributes(span,
			attribute.String("tenant.id", order.TenantID),
			attribute.String("order.id", order.ID),
		)
		return r.repo.Create(ctx, order)
	})
}

func (r *ObservableRepository) UpdateStatus(ctx context.Context, tenantID, id string, status domain.Status, estimatedReadyAt *time.Time, updatedAt time.Time) error {
	return r.observe(ctx, "OrderRepository.UpdateStatus", "update_order_status", func(ctx context.Context, span trace.Span) error {
		telemetry.AddSpanAttributes(span,
			attribute.String("tenant.id", tenantID),
			attribute.String("order.id", id),
			attribute.String("order.new_status", string(status)),
		)
		return r.repo.UpdateStatus(ctx, tenantID, id, status, estimatedReadyAt, updatedAt)
	})
}

func (r *ObservableRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.observe(ctx, "OrderRepository.Delete", "delete_order", func(ctx context.Context, span trace.Span) error {
		telemetry.AddSpanAttributes(span,
			attribute.String("tenant.id", tenantID),
			attribute.String("order.id", id),
		)
		return r.repo.Delete(ctx, tenantID, id)
	})
}

func (r *ObservableRepository) observe(ctx context.Context, spanName, operation string, fn func(context.Context, trace.Span) error) error {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("operation", operation))

	start := time.Now()
	err := fn(ctx, span)
	r.metrics.RecordQuery(ctx, operation, time.Since(start).Seconds(), err)

	if err != nil {
		telemetry.AddSpanAttributes(span, attribute.String("error.kind", ports.KindOf(err)))
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
