package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/metrics"
	"github.com/dejobratic/orderwatch/internal/orders/ports"
)

// Watcher feeds one tenant's live snapshots into the lifecycle view and the
// notification sink. Snapshots are handled one at a time, in delivery order.
type Watcher struct {
	store      ports.OrderStore
	view       *LifecycleView
	sink       ports.NotificationSink
	logger     *slog.Logger
	metrics    *metrics.Metrics
	retryDelay time.Duration
}

func NewWatcher(
	store ports.OrderStore,
	view *LifecycleView,
	sink ports.NotificationSink,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	retryDelay time.Duration,
) *Watcher {
	return &Watcher{
		store:      store,
		view:       view,
		sink:       sink,
		logger:     logger,
		metrics:    metrics,
		retryDelay: retryDelay,
	}
}

// Run consumes a single subscription until it ends. It returns nil when the
// stream ends cleanly and the stream's error otherwise.
func (w *Watcher) Run(ctx context.Context) error {
	tenantID := w.view.TenantID()

	sub, err := w.store.Subscribe(ctx, tenantID)
	if err != nil {
		return err
	}

	notifier := NewNotifier()
	defer notifier.Reset()
	defer sub.Unsubscribe()

	w.logger.InfoContext(ctx, "order stream subscribed", "tenant_id", tenantID)

	snapshots := sub.Snapshots()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snapshot, ok := <-snapshots:
			if !ok {
				return sub.Err()
			}
			w.handle(ctx, notifier, snapshot)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, notifier *Notifier, snapshot domain.Snapshot) {
	w.view.Apply(snapshot)
	w.metrics.RecordSnapshot(ctx, snapshot.Len())

	events := notifier.Observe(snapshot)
	for _, e := range events {
		w.logger.InfoContext(ctx, "order event",
			"kind", e.Kind(),
			"order_id", e.Subject().ID,
			"tenant_id", e.Subject().TenantID,
		)
		w.metrics.RecordNotification(ctx, e.Kind())
	}
	Dispatch(ctx, w.sink, w.logger, events)
}

// Watch keeps the tenant's stream running, subscribing again after failures.
// It stops when ctx is cancelled, when a stream ends cleanly, or when the
// backend denies access.
func (w *Watcher) Watch(ctx context.Context) error {
	for {
		err := w.Run(ctx)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			w.logger.InfoContext(ctx, "order stream ended", "tenant_id", w.view.TenantID())
			return nil
		}
		if errors.Is(err, ports.ErrPermissionDenied) {
			return err
		}

		w.logger.ErrorContext(ctx, "order stream failed, resubscribing",
			"tenant_id", w.view.TenantID(),
			"kind", ports.KindOf(err),
			"retry_in", w.retryDelay,
			"error", err,
		)

		timer := time.NewTimer(w.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
