package notify

import (
	"context"
	"time"
)

// Permission is the tri-state answer of the platform's notification tray.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission accepts "default", "granted" or "denied".
func ParsePermission(value string) (Permission, bool) {
	switch p := Permission(value); p {
	case PermissionDefault, PermissionGranted, PermissionDenied:
		return p, true
	}
	return "", false
}

// Tone is a single synthesized note followed by an optional silence.
type Tone struct {
	FrequencyHz float64
	Duration    time.Duration
	Gap         time.Duration
}

// Alert is a titled message for the notification tray. RequireInteraction
// asks the tray to keep it visible until acknowledged.
type Alert struct {
	Title              string
	Body               string
	RequireInteraction bool
}

// AudioEngine synthesizes tones. It may start suspended until resumed from
// a user action.
type AudioEngine interface {
	Ready() bool
	Resume(ctx context.Context) error
	PlayTone(ctx context.Context, tone Tone) error
}

// Tray shows visible alerts once the user has granted permission.
type Tray interface {
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Show(ctx context.Context, alert Alert) error
}
