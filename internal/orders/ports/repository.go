package ports

import (
	"context"
	"time"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
)

// OrderRepository exposes the persistence operations backing the live store.
type OrderRepository interface {
	// List returns every order of the tenant, most recent first.
	List(ctx context.Context, tenantID string) ([]domain.Order, error)
	Create(ctx context.Context, order domain.Order) error
	UpdateStatus(ctx context.Context, tenantID, id string, status domain.Status, estimatedReadyAt *time.Time, updatedAt time.Time) error
	Delete(ctx context.Context, tenantID, id string) error
}

// Change describes a committed mutation of a tenant's orders.
type Change struct {
	TenantID string    `json:"tenant_id"`
	OrderID  string    `json:"order_id"`
	Op       string    `json:"op"`
	At       time.Time `json:"at"`
}

// ChangeFeed signals subscribers that a tenant's order set changed.
type ChangeFeed interface {
	Subscribe(ctx context.Context, tenantID string) (FeedSubscription, error)
	Publish(ctx context.Context, change Change) error
}

// FeedSubscription receives change signals for one tenant. Signals carry no
// payload and may be coalesced; receivers reload the full set on each one.
// The channel is closed if the feed breaks or after Close.
type FeedSubscription interface {
	Changes() <-chan struct{}
	Close() error
}
