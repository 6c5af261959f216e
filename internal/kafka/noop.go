package kafka

import (
	"context"
	"log/slog"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
)

// NoopEventBus logs lifecycle events instead of sending them, for consoles
// running without a broker.
type NoopEventBus struct {
	logger *slog.Logger
}

func NewNoopEventBus(logger *slog.Logger) *NoopEventBus {
	return &NoopEventBus{logger: logger}
}

func (n *NoopEventBus) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	n.logger.DebugContext(ctx, "event::order_created", "order_id", order.ID, "tenant_id", order.TenantID)
	return nil
}

func (n *NoopEventBus) PublishStatusChanged(ctx context.Context, tenantID, orderID string, from, to domain.Status) error {
	n.logger.DebugContext(ctx, "event::order_status_changed", "order_id", orderID, "tenant_id", tenantID, "from", from, "to", to)
	return nil
}

func (n *NoopEventBus) PublishOrderDeleted(ctx context.Context, tenantID, orderID string) error {
	n.logger.DebugContext(ctx, "event::order_deleted", "order_id", orderID, "tenant_id", tenantID)
	return nil
}
