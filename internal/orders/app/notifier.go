package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/ports"
)

// Notifier diffs consecutive snapshots of one subscription and reports the
// arrivals and pickups worth announcing. It is not safe for concurrent use;
// a single consumer owns it for the lifetime of a subscription.
type Notifier struct {
	previous map[string]domain.Status
}

func NewNotifier() *Notifier {
	return &Notifier{previous: map[string]domain.Status{}}
}

// Observe compares current against the last observed snapshot and returns
// the resulting events in snapshot order. The baseline is replaced by
// current on every call, whether or not anything was emitted.
func (n *Notifier) Observe(current domain.Snapshot) []domain.Event {
	var events []domain.Event
	next := make(map[string]domain.Status, current.Len())

	current.Each(func(o domain.Order) {
		next[o.ID] = o.Status

		before, seen := n.previous[o.ID]
		switch {
		case !seen:
			if o.Status == domain.StatusPending {
				events = append(events, domain.NewOrder{Order: o})
			}
		case before != o.Status:
			if o.Status == domain.StatusReady {
				events = append(events, domain.OrderReady{Order: o})
			}
		}
	})

	n.previous = next
	return events
}

// Reset drops the baseline so the next snapshot is treated as the first.
func (n *Notifier) Reset() {
	n.previous = map[string]domain.Status{}
}

// Dispatch forwards events to sink in order.
func Dispatch(ctx context.Context, sink ports.NotificationSink, logger *slog.Logger, events []domain.Event) {
	for _, event := range events {
		switch e := event.(type) {
		case domain.NewOrder:
			sink.NotifyNewOrder(ctx, e.Order)
		case domain.OrderReady:
			sink.NotifyOrderReady(ctx, e.Order)
		default:
			logger.ErrorContext(ctx, "unhandled order event", "type", fmt.Sprintf("%T", event))
		}
	}
}
