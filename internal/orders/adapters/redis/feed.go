// Package redis carries order change signals between console instances over
// Redis pub/sub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dejobratic/orderwatch/internal/orders/ports"
	goredis "github.com/redis/go-redis/v9"
)

const channelPrefix = "orders:changed:"

// ChannelName returns the pub/sub channel used for a tenant.
func ChannelName(tenantID string) string {
	return channelPrefix + tenantID
}

// Feed implements ports.ChangeFeed.
type Feed struct {
	client *goredis.Client
	logger *slog.Logger
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return client, nil
}

func NewFeed(client *goredis.Client, logger *slog.Logger) *Feed {
	return &Feed{client: client, logger: logger}
}

// Publish announces a committed change to every subscriber of the tenant.
func (f *Feed) Publish(ctx context.Context, change ports.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	if err := f.client.Publish(ctx, ChannelName(change.TenantID), payload).Err(); err != nil {
		return fmt.Errorf("%w: publish change: %w", ports.ErrTransport, err)
	}

	return nil
}

// Subscribe waits for Redis to confirm the subscription before returning, so
// no change published afterwards can be missed.
func (f *Feed) Subscribe(ctx context.Context, tenantID string) (ports.FeedSubscription, error) {
	pubsub := f.client.Subscribe(ctx, ChannelName(tenantID))

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("confirm subscription: %w", err)
	}

	sub := &subscription{
		pubsub: pubsub,
		out:    make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go sub.forward(f.logger, tenantID, pubsub.ChannelWithSubscriptions(goredis.WithChannelHealthCheckInterval(30*time.Second)))

	return sub, nil
}

type subscription struct {
	pubsub    *goredis.PubSub
	out       chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func (s *subscription) Changes() <-chan struct{} {
	return s.out
}

func (s *subscription) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.closeErr = s.pubsub.Close()
	})
	return s.closeErr
}

// forward turns messages into change signals. go-redis reconnects a dropped
// connection behind the channel and confirms the new subscription with a
// *Subscription; changes published during the outage are lost, so the
// confirmation is signalled as a change too.
func (s *subscription) forward(logger *slog.Logger, tenantID string, messages <-chan interface{}) {
	defer close(s.out)

	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			switch m := msg.(type) {
			case *goredis.Message:
				logger.Debug("order change received", "tenant_id", tenantID, "channel", m.Channel)
			case *goredis.Subscription:
				if m.Kind != "subscribe" {
					continue
				}
				logger.Warn("order change feed resubscribed, forcing reload", "tenant_id", tenantID, "channel", m.Channel)
			default:
				continue
			}
			select {
			case s.out <- struct{}{}:
			default:
			}
		}
	}
}
