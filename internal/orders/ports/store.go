package ports

import (
	"context"
	"time"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
)

// OrderStore is the live, authoritative source of a tenant's orders.
// Mutations are fire-and-confirm: their effect is only observed through the
// next snapshot delivered to subscribers.
type OrderStore interface {
	Subscribe(ctx context.Context, tenantID string) (Subscription, error)
	CreateOrder(ctx context.Context, order domain.Order) error
	UpdateStatus(ctx context.Context, tenantID, id string, status domain.Status, estimatedReadyAt *time.Time) error
	DeleteOrder(ctx context.Context, tenantID, id string) error
}

// Subscription is a cancellable push stream of snapshots.
type Subscription interface {
	// Snapshots delivers snapshots in commit order. It is closed when the
	// stream ends, after which Err reports why.
	Snapshots() <-chan domain.Snapshot
	// Err returns nil for a clean end and a typed error otherwise.
	Err() error
	// Unsubscribe stops delivery. It is safe to call more than once and
	// returns only after no further snapshot can be sent.
	Unsubscribe()
}
