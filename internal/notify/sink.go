// Package notify turns order lifecycle events into sounds and tray alerts.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
)

const queueSize = 16

// State is what the console shows next to its "enable notifications" control.
type State struct {
	AudioReady           bool `json:"audio_ready"`
	NotificationsGranted bool `json:"notifications_granted"`
}

type pattern struct {
	name  string
	tones []Tone
}

// Sink plays alert patterns and shows tray alerts. Both channels are
// best-effort: failures are logged and never returned to callers. Patterns
// play one at a time on a background player in the order they were queued.
type Sink struct {
	audio  AudioEngine
	tray   Tray
	logger *slog.Logger
	pause  func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	requested bool
	closed    bool

	queue   chan pattern
	stopped chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

type Option func(*Sink)

// WithPause replaces the wait used for gaps between tones.
func WithPause(pause func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Sink) {
		s.pause = pause
	}
}

func NewSink(audio AudioEngine, tray Tray, logger *slog.Logger, opts ...Option) *Sink {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Sink{
		audio:   audio,
		tray:    tray,
		logger:  logger,
		pause:   sleep,
		queue:   make(chan pattern, queueSize),
		stopped: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// Enable resumes audio and asks for notification permission. Permission is
// requested at most once per process and never after a denial.
func (s *Sink) Enable(ctx context.Context) State {
	if !s.audio.Ready() {
		if err := s.audio.Resume(ctx); err != nil {
			s.logger.WarnContext(ctx, "audio engine could not be resumed", "error", err)
		}
	}

	if s.shouldRequestPermission() {
		permission, err := s.tray.RequestPermission(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "notification permission request failed", "error", err)
		} else {
			s.logger.InfoContext(ctx, "notification permission answered", "permission", permission)
		}
	}

	return s.State()
}

func (s *Sink) shouldRequestPermission() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.requested || s.tray.Permission() != PermissionDefault {
		return false
	}
	s.requested = true
	return true
}

// State reports readiness without side effects.
func (s *Sink) State() State {
	return State{
		AudioReady:           s.audio.Ready(),
		NotificationsGranted: s.tray.Permission() == PermissionGranted,
	}
}

func (s *Sink) NotifyNewOrder(ctx context.Context, order domain.Order) {
	s.play(ctx, pattern{name: "new_order", tones: newOrderPattern})
	s.show(ctx, Alert{
		Title:              "New order",
		Body:               fmt.Sprintf("%s · %s", order.CustomerName, domain.FormatCents(order.TotalCents)),
		RequireInteraction: true,
	})
}

func (s *Sink) NotifyOrderReady(ctx context.Context, order domain.Order) {
	s.play(ctx, pattern{name: "order_ready", tones: orderReadyPattern})
	s.show(ctx, Alert{
		Title: "Order ready",
		Body:  fmt.Sprintf("%s · %s", order.CustomerName, order.ShortRef()),
	})
}

// Test plays the reference tone and shows a transient alert. It may resume
// audio but never prompts for notification permission.
func (s *Sink) Test(ctx context.Context) State {
	if !s.audio.Ready() {
		if err := s.audio.Resume(ctx); err != nil {
			s.logger.WarnContext(ctx, "audio engine could not be resumed", "error", err)
		}
	}
	s.play(ctx, pattern{name: "test", tones: testPattern})
	s.show(ctx, Alert{
		Title: "Notifications are working",
		Body:  "You will hear this when orders arrive or are ready.",
	})
	return s.State()
}

func (s *Sink) play(ctx context.Context, p pattern) {
	if !s.audio.Ready() {
		s.logger.DebugContext(ctx, "audio not ready, skipping pattern", "pattern", p.name)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.queue <- p:
	default:
		s.logger.WarnContext(ctx, "audio queue full, dropping pattern", "pattern", p.name)
	}
}

func (s *Sink) show(ctx context.Context, alert Alert) {
	if s.tray.Permission() != PermissionGranted {
		s.logger.DebugContext(ctx, "notifications not permitted, skipping alert", "title", alert.Title)
		return
	}
	if err := s.tray.Show(ctx, alert); err != nil {
		s.logger.WarnContext(ctx, "failed to show notification", "title", alert.Title, "error", err)
	}
}

func (s *Sink) run() {
	defer close(s.stopped)

	for p := range s.queue {
		s.playPattern(p)
	}
}

func (s *Sink) playPattern(p pattern) {
	for _, tone := range p.tones {
		if err := s.audio.PlayTone(s.ctx, tone); err != nil {
			s.logger.WarnContext(s.ctx, "failed to play tone",
				"pattern", p.name,
				"frequency_hz", tone.FrequencyHz,
				"error", err,
			)
			return
		}
		if tone.Gap > 0 {
			if err := s.pause(s.ctx, tone.Gap); err != nil {
				return
			}
		}
	}
}

// Close stops accepting patterns and waits for queued ones to finish, or
// abandons them when ctx ends first.
func (s *Sink) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.stopped
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	defer s.cancel()

	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		s.cancel()
		<-s.stopped
		return ctx.Err()
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
