package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/orderwatch/internal/orders/ports"
)

// Feed is an in-process change feed. Each subscriber holds at most one
// pending signal; further changes before it is consumed are coalesced.
type Feed struct {
	mu   sync.Mutex
	subs map[string]map[*feedSubscription]struct{}
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[string]map[*feedSubscription]struct{})}
}

func (f *Feed) Subscribe(_ context.Context, tenantID string) (ports.FeedSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := &feedSubscription{feed: f, tenantID: tenantID, ch: make(chan struct{}, 1)}
	if f.subs[tenantID] == nil {
		f.subs[tenantID] = make(map[*feedSubscription]struct{})
	}
	f.subs[tenantID][sub] = struct{}{}
	return sub, nil
}

func (f *Feed) Publish(_ context.Context, change ports.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.subs[change.TenantID] {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Disconnect closes every subscription of the tenant, as a broken channel would.
func (f *Feed) Disconnect(tenantID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.subs[tenantID] {
		f.removeLocked(sub)
	}
}

// Subscribers reports how many subscriptions are open for the tenant.
func (f *Feed) Subscribers(tenantID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[tenantID])
}

func (f *Feed) removeLocked(sub *feedSubscription) {
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.ch)
	delete(f.subs[sub.tenantID], sub)
}

type feedSubscription struct {
	feed     *Feed
	tenantID string
	ch       chan struct{}
	closed   bool
}

func (s *feedSubscription) Changes() <-chan struct{} {
	return s.ch
}

func (s *feedSubscription) Close() error {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	s.feed.removeLocked(s)
	return nil
}
