package live

import (
	"context"
	"sync"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
)

type subscription struct {
	out      chan domain.Snapshot
	done     chan struct{}
	finished chan struct{}
	stopOnce sync.Once

	mu  sync.Mutex
	err error
}

func newSubscription() *subscription {
	return &subscription{
		out:      make(chan domain.Snapshot),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

func (s *subscription) Snapshots() <-chan domain.Snapshot {
	return s.out
}

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) Unsubscribe() {
	s.stopOnce.Do(func() { close(s.done) })
	<-s.finished
}

// send blocks until the consumer takes snap or the stream is stopped.
func (s *subscription) send(ctx context.Context, snap domain.Snapshot) bool {
	select {
	case s.out <- snap:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (s *subscription) stopped(ctx context.Context) bool {
	select {
	case <-s.done:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (s *subscription) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// finish must be called exactly once by the producing goroutine.
func (s *subscription) finish() {
	close(s.out)
	close(s.finished)
}
