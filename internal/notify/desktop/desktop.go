// Package desktop plays tones and shows alerts through the host desktop.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/dejobratic/orderwatch/internal/notify"
)

var errSuspended = errors.New("audio suspended")

// Audio drives the system speaker. It starts suspended so tones only play
// after staff have enabled notifications.
type Audio struct {
	mu    sync.RWMutex
	ready bool
	beep  func(freq float64, durationMs int) error
}

func NewAudio() *Audio {
	return &Audio{beep: beeep.Beep}
}

func (a *Audio) Ready() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ready
}

func (a *Audio) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	a.ready = true
	a.mu.Unlock()
	return nil
}

func (a *Audio) PlayTone(ctx context.Context, tone notify.Tone) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !a.Ready() {
		return errSuspended
	}
	if err := a.beep(tone.FrequencyHz, int(tone.Duration.Milliseconds())); err != nil {
		return fmt.Errorf("beep %.0fHz: %w", tone.FrequencyHz, err)
	}
	return nil
}

// Tray shows desktop notifications. Desktops grant permission on request.
// Alerts that require interaction go out as beeep alerts, which also sound
// the system alert; how long either stays up is the notification daemon's call.
type Tray struct {
	mu         sync.RWMutex
	permission notify.Permission
	notify     func(title, message string) error
	alert      func(title, message string) error
}

func NewTray() *Tray {
	return &Tray{
		permission: notify.PermissionDefault,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		alert: func(title, message string) error {
			return beeep.Alert(title, message, "")
		},
	}
}

func (t *Tray) Permission() notify.Permission {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.permission
}

func (t *Tray) RequestPermission(ctx context.Context) (notify.Permission, error) {
	if err := ctx.Err(); err != nil {
		return t.Permission(), err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.permission == notify.PermissionDefault {
		t.permission = notify.PermissionGranted
	}
	return t.permission, nil
}

func (t *Tray) Show(ctx context.Context, alert notify.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	show := t.notify
	if alert.RequireInteraction {
		show = t.alert
	}
	if err := show(alert.Title, alert.Body); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}
