// Package live turns a repository plus a change feed into a push stream of
// order snapshots per tenant.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/ports"
)

// FallbackLoader builds the synthetic snapshot served to the demo tenant.
type FallbackLoader func(tenantID string, now time.Time) (domain.Snapshot, error)

// Store implements ports.OrderStore.
type Store struct {
	repo   ports.OrderRepository
	feed   ports.ChangeFeed
	logger *slog.Logger
	now    func() time.Time

	demoTenantID string
	fallback     FallbackLoader
}

type Option func(*Store)

// WithDemoFallback serves fallback to demoTenantID, and only to it, when its
// live channel fails. An empty demoTenantID disables the fallback.
func WithDemoFallback(demoTenantID string, fallback FallbackLoader) Option {
	return func(s *Store) {
		s.demoTenantID = demoTenantID
		s.fallback = fallback
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(repo ports.OrderRepository, feed ports.ChangeFeed, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		feed:   feed,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe opens the change feed, then delivers an initial snapshot and a
// fresh snapshot after every change signal.
func (s *Store) Subscribe(ctx context.Context, tenantID string) (ports.Subscription, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ports.ErrSetup)
	}

	feedSub, err := s.feed.Subscribe(ctx, tenantID)
	if err != nil {
		err = classify(ports.ErrSetup, err)
		if s.isDemoTenant(tenantID) {
			return s.serveFallback(ctx, tenantID, err), nil
		}
		return nil, err
	}

	sub := newSubscription()
	go s.stream(ctx, tenantID, feedSub, sub)
	return sub, nil
}

func (s *Store) stream(ctx context.Context, tenantID string, feedSub ports.FeedSubscription, sub *subscription) {
	defer sub.finish()
	defer func() {
		if err := feedSub.Close(); err != nil {
			s.logger.WarnContext(ctx, "failed to close change feed", "tenant_id", tenantID, "error", err)
		}
	}()

	if !s.deliver(ctx, tenantID, sub) {
		return
	}

	changes := feedSub.Changes()
	for {
		select {
		case <-sub.done:
			return
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				if sub.stopped(ctx) {
					return
				}
				s.terminate(ctx, tenantID, sub, fmt.Errorf("%w: change feed closed", ports.ErrSubscription))
				return
			}
			if !s.deliver(ctx, tenantID, sub) {
				return
			}
		}
	}
}

// deliver loads the current set and sends it. It reports whether the stream
// should keep running.
func (s *Store) deliver(ctx context.Context, tenantID string, sub *subscription) bool {
	orders, err := s.repo.List(ctx, tenantID)
	if err != nil {
		if sub.stopped(ctx) {
			return false
		}
		s.terminate(ctx, tenantID, sub, classify(ports.ErrSubscription, err))
		return false
	}
	return sub.send(ctx, domain.NewSnapshot(orders))
}

// terminate ends the stream with err, or with the fallback snapshot for the
// demo tenant.
func (s *Store) terminate(ctx context.Context, tenantID string, sub *subscription, err error) {
	if s.isDemoTenant(tenantID) {
		s.sendFallback(ctx, tenantID, sub, err)
		return
	}
	s.logger.ErrorContext(ctx, "order stream failed", "tenant_id", tenantID, "kind", ports.KindOf(err), "error", err)
	sub.fail(err)
}

func (s *Store) serveFallback(ctx context.Context, tenantID string, cause error) *subscription {
	sub := newSubscription()
	go func() {
		defer sub.finish()
		s.sendFallback(ctx, tenantID, sub, cause)
	}()
	return sub
}

func (s *Store) sendFallback(ctx context.Context, tenantID string, sub *subscription, cause error) {
	s.logger.WarnContext(ctx, "DEMO FALLBACK: live order channel unavailable, serving fixed demo orders",
		"tenant_id", tenantID,
		"cause", cause,
	)

	snap, err := s.fallback(tenantID, s.now())
	if err != nil {
		sub.fail(fmt.Errorf("%w: load demo orders: %w", ports.ErrSubscription, errors.Join(err, cause)))
		return
	}
	sub.send(ctx, snap)
}

func (s *Store) isDemoTenant(tenantID string) bool {
	return s.fallback != nil && s.demoTenantID != "" && tenantID == s.demoTenantID
}

// CreateOrder persists a new order and signals subscribers.
func (s *Store) CreateOrder(ctx context.Context, order domain.Order) error {
	if err := s.repo.Create(ctx, order); err != nil {
		return err
	}
	s.publish(ctx, order.TenantID, order.ID, "created")
	return nil
}

// UpdateStatus persists a status change and signals subscribers.
func (s *Store) UpdateStatus(ctx context.Context, tenantID, id string, status domain.Status, estimatedReadyAt *time.Time) error {
	if err := s.repo.UpdateStatus(ctx, tenantID, id, status, estimatedReadyAt, s.now().UTC()); err != nil {
		return err
	}
	s.publish(ctx, tenantID, id, "status_changed")
	return nil
}

// DeleteOrder removes an order and signals subscribers.
func (s *Store) DeleteOrder(ctx context.Context, tenantID, id string) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.publish(ctx, tenantID, id, "deleted")
	return nil
}

// publish failures leave the write committed; live views catch up on the next signal.
func (s *Store) publish(ctx context.Context, tenantID, orderID, op string) {
	change := ports.Change{TenantID: tenantID, OrderID: orderID, Op: op, At: s.now().UTC()}
	if err := s.feed.Publish(ctx, change); err != nil {
		s.logger.WarnContext(ctx, "failed to publish order change",
			"tenant_id", tenantID,
			"order_id", orderID,
			"op", op,
			"error", err,
		)
	}
}

// classify keeps an existing permission or not-found kind and otherwise tags
// err with kind.
func classify(kind, err error) error {
	if errors.Is(err, ports.ErrPermissionDenied) || errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
