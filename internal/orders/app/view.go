package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/metrics"
	"github.com/dejobratic/orderwatch/internal/orders/ports"
)

// Partitions groups a snapshot's orders by status, keeping snapshot order
// within each group.
type Partitions struct {
	Pending   []domain.Order `json:"pending"`
	Preparing []domain.Order `json:"preparing"`
	Ready     []domain.Order `json:"ready"`
	Completed []domain.Order `json:"completed"`
	Rejected  []domain.Order `json:"rejected"`
}

// Stats summarises the current snapshot for the console header.
type Stats struct {
	Total        int                   `json:"total"`
	ByStatus     map[domain.Status]int `json:"by_status"`
	Today        int                   `json:"today"`
	RevenueCents int64                 `json:"revenue_cents"`
}

// LifecycleView keeps the latest snapshot of one tenant and gates status
// changes on the transition table before they reach the store.
type LifecycleView struct {
	tenantID string
	store    ports.OrderStore
	events   ports.EventBus
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	mu       sync.RWMutex
	snapshot domain.Snapshot
}

func NewLifecycleView(
	tenantID string,
	store ports.OrderStore,
	events ports.EventBus,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	now func() time.Time,
) *LifecycleView {
	if now == nil {
		now = time.Now
	}
	return &LifecycleView{
		tenantID: tenantID,
		store:    store,
		events:   events,
		logger:   logger,
		metrics:  metrics,
		now:      now,
	}
}

func (v *LifecycleView) TenantID() string {
	return v.tenantID
}

// Apply replaces the held snapshot.
func (v *LifecycleView) Apply(snapshot domain.Snapshot) {
	v.mu.Lock()
	v.snapshot = snapshot
	v.mu.Unlock()
}

func (v *LifecycleView) Snapshot() domain.Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshot
}

func (v *LifecycleView) Partition() Partitions {
	var p Partitions
	v.Snapshot().Each(func(o domain.Order) {
		switch o.Status {
		case domain.StatusPending:
			p.Pending = append(p.Pending, o)
		case domain.StatusPreparing:
			p.Preparing = append(p.Preparing, o)
		case domain.StatusReady:
			p.Ready = append(p.Ready, o)
		case domain.StatusCompleted:
			p.Completed = append(p.Completed, o)
		case domain.StatusRejected:
			p.Rejected = append(p.Rejected, o)
		}
	})
	return p
}

// Stats counts orders per status and totals today's orders by the local
// calendar day. Revenue sums every order in the snapshot.
func (v *LifecycleView) Stats() Stats {
	now := v.now()
	year, month, day := now.Date()
	loc := now.Location()

	stats := Stats{ByStatus: make(map[domain.Status]int, len(domain.Statuses))}
	for _, s := range domain.Statuses {
		stats.ByStatus[s] = 0
	}

	v.Snapshot().Each(func(o domain.Order) {
		stats.Total++
		stats.ByStatus[o.Status]++

		y, m, d := o.CreatedAt.In(loc).Date()
		if y == year && m == month && d == day {
			stats.Today++
		}
		stats.RevenueCents += o.TotalCents
	})
	return stats
}

// AllowedTransitions lists the statuses the order may move to next.
func (v *LifecycleView) AllowedTransitions(id string) ([]domain.Status, error) {
	order, ok := v.Snapshot().Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, id)
	}
	return order.Status.Next(), nil
}

// ChangeStatus asks the store to move an order to status. Illegal moves are
// rejected with a *domain.TransitionError and never reach the store. The held
// snapshot is not touched; the change shows up with the next delivery.
func (v *LifecycleView) ChangeStatus(ctx context.Context, id string, status domain.Status, estimatedReadyAt *time.Time) error {
	order, ok := v.Snapshot().Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrNotFound, id)
	}

	if err := domain.CheckTransition(id, order.Status, status); err != nil {
		return err
	}

	if err := v.store.UpdateStatus(ctx, v.tenantID, id, status, estimatedReadyAt); err != nil {
		v.metrics.RecordStatusChange(ctx, status, false)
		return fmt.Errorf("update status of order %s: %w", id, err)
	}
	v.metrics.RecordStatusChange(ctx, status, true)

	if err := v.events.PublishStatusChanged(ctx, v.tenantID, id, order.Status, status); err != nil {
		v.logger.WarnContext(ctx, "status changed but failed to publish event",
			"order_id", id,
			"tenant_id", v.tenantID,
			"error", err,
		)
	}

	v.logger.InfoContext(ctx, "order status changed",
		"order_id", id,
		"tenant_id", v.tenantID,
		"from", order.Status,
		"to", status,
	)
	return nil
}
