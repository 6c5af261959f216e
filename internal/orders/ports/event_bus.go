package ports

import (
	"context"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
)

// EventBus defines the contract for publishing order lifecycle events to
// downstream consumers such as kitchen displays and analytics.
type EventBus interface {
	PublishOrderCreated(ctx context.Context, order domain.Order) error
	PublishStatusChanged(ctx context.Context, tenantID, orderID string, from, to domain.Status) error
	PublishOrderDeleted(ctx context.Context, tenantID, orderID string) error
}
