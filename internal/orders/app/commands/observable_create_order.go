package commands

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/metrics"
	"github.com/dejobratic/orderwatch/internal/telemetry"
)

type ObservableCommandHandler struct {
	handler CommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCommandHandler(handler CommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCommandHandler {
	return &ObservableCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "CreateOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		o.metrics.RecordOrderCreationDuration(ctx, time.Since(start).Seconds())
		o.metrics.RecordOrderCreated(ctx, success)
	}()

	telemetry.AddSpanAttributes(span,
		attribute.String("tenant.id", cmd.TenantID),
		attribute.Int("order.item_count", len(cmd.Items)),
	)

	order, err := o.handler.Handle(ctx, cmd)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		if order == nil {
			o.logger.ErrorContext(ctx, "failed to create order",
				"error", err,
				"tenant_id", cmd.TenantID,
			)
			return nil, err
		}
		// The order is committed; only the downstream event was lost.
		o.logger.WarnContext(ctx, "order created without lifecycle event",
			"error", err,
			"order_id", order.ID,
			"tenant_id", order.TenantID,
		)
		success = true
		return order, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.Int64("order.total_cents", order.TotalCents),
		attribute.String("order.status", string(order.Status)),
	)

	o.logger.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"tenant_id", order.TenantID,
		"total_cents", order.TotalCents,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, nil
}
