package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/ports"
)

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu      sync.RWMutex
	tenants map[string]map[string]domain.Order
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{tenants: make(map[string]map[string]domain.Order)}
}

// Seed stores orders as-is, bypassing validation.
func (r *Repository) Seed(orders ...domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range orders {
		r.tenant(order.TenantID)[order.ID] = order
	}
}

// Create stores a new order instance.
func (r *Repository) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders := r.tenant(order.TenantID)
	if _, exists := orders[order.ID]; exists {
		return fmt.Errorf("%w: order %s already exists", ports.ErrTransport, order.ID)
	}
	orders[order.ID] = order
	return nil
}

// List returns the tenant's orders, most recent first.
func (r *Repository) List(_ context.Context, tenantID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.tenants[tenantID]))
	for _, order := range r.tenants[tenantID] {
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// UpdateStatus sets the status, estimated ready time and updatedAt timestamp.
func (r *Repository) UpdateStatus(_ context.Context, tenantID, id string, status domain.Status, estimatedReadyAt *time.Time, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.tenants[tenantID][id]
	if !ok {
		return ports.ErrNotFound
	}

	order.Status = status
	if estimatedReadyAt != nil {
		eta := *estimatedReadyAt
		order.EstimatedReadyAt = &eta
	}
	if updatedAt.After(order.UpdatedAt) {
		order.UpdatedAt = updatedAt
	}
	r.tenants[tenantID][id] = order
	return nil
}

// Delete removes an order.
func (r *Repository) Delete(_ context.Context, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tenants[tenantID][id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.tenants[tenantID], id)
	return nil
}

func (r *Repository) tenant(tenantID string) map[string]domain.Order {
	orders, ok := r.tenants[tenantID]
	if !ok {
		orders = make(map[string]domain.Order)
		r.tenants[tenantID] = orders
	}
	return orders
}
