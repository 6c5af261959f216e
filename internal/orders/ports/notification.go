package ports

import (
	"context"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
)

// NotificationSink turns lifecycle events into alerts for staff. Delivery is
// best-effort: implementations log their own failures.
type NotificationSink interface {
	NotifyNewOrder(ctx context.Context, order domain.Order)
	NotifyOrderReady(ctx context.Context, order domain.Order)
}
