// Package headless stands in for audio and tray on hosts without a desktop.
// Tones and alerts are written to the log.
package headless

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dejobratic/orderwatch/internal/notify"
)

type Audio struct {
	logger *slog.Logger

	mu    sync.RWMutex
	ready bool
}

func NewAudio(logger *slog.Logger) *Audio {
	return &Audio{logger: logger}
}

func (a *Audio) Ready() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ready
}

func (a *Audio) Resume(context.Context) error {
	a.mu.Lock()
	a.ready = true
	a.mu.Unlock()
	return nil
}

func (a *Audio) PlayTone(ctx context.Context, tone notify.Tone) error {
	a.logger.DebugContext(ctx, "tone",
		"frequency_hz", tone.FrequencyHz,
		"duration", tone.Duration,
	)
	return nil
}

// Tray logs alerts. Its permission starts at the configured value and a
// request from the default state is answered with grant.
type Tray struct {
	logger *slog.Logger

	mu         sync.RWMutex
	permission notify.Permission
}

func NewTray(logger *slog.Logger, initial notify.Permission) *Tray {
	return &Tray{logger: logger, permission: initial}
}

func (t *Tray) Permission() notify.Permission {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.permission
}

func (t *Tray) RequestPermission(context.Context) (notify.Permission, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.permission == notify.PermissionDefault {
		t.permission = notify.PermissionGranted
	}
	return t.permission, nil
}

func (t *Tray) Show(ctx context.Context, alert notify.Alert) error {
	t.logger.InfoContext(ctx, "notification",
		"title", alert.Title,
		"body", alert.Body,
		"require_interaction", alert.RequireInteraction,
	)
	return nil
}
