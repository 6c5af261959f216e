package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dejobratic/orderwatch/internal/notify"
	"github.com/dejobratic/orderwatch/internal/orders/domain"
)

type fakeAudio struct {
	mu        sync.Mutex
	ready     bool
	resumeErr error
	playErr   error
	resumes   int
	tones     []float64
}

func (a *fakeAudio) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

func (a *fakeAudio) Resume(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resumes++
	if a.resumeErr != nil {
		return a.resumeErr
	}
	a.ready = true
	return nil
}

func (a *fakeAudio) PlayTone(_ context.Context, tone notify.Tone) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.playErr != nil {
		return a.playErr
	}
	a.tones = append(a.tones, tone.FrequencyHz)
	return nil
}

func (a *fakeAudio) played() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]float64(nil), a.tones...)
}

type fakeTray struct {
	mu         sync.Mutex
	permission notify.Permission
	answer     notify.Permission
	requests   int
	showErr    error
	alerts     []notify.Alert
}

func (t *fakeTray) Permission() notify.Permission {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.permission
}

func (t *fakeTray) RequestPermission(context.Context) (notify.Permission, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests++
	t.permission = t.answer
	return t.permission, nil
}

func (t *fakeTray) Show(_ context.Context, alert notify.Alert) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alerts = append(t.alerts, alert)
	return t.showErr
}

func noPause(context.Context, time.Duration) error { return nil }

func newSink(t *testing.T, audio *fakeAudio, tray *fakeTray) *notify.Sink {
	t.Helper()

	sink := notify.NewSink(audio, tray, slog.New(slog.NewTextHandler(io.Discard, nil)), notify.WithPause(noPause))
	t.Cleanup(func() { _ = sink.Close(context.Background()) })
	return sink
}

func drain(t *testing.T, sink *notify.Sink) {
	t.Helper()
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
}

var order = domain.Order{
	ID:           "3f2a9c1e-7b4d-4e2a-9c1e-7b4d4e2a9c1e",
	CustomerName: "Ana",
	TotalCents:   1250,
}

func TestSinkEnable(t *testing.T) {
	t.Run("resumes audio and requests permission once", func(t *testing.T) {
		audio := &fakeAudio{}
		tray := &fakeTray{permission: notify.PermissionDefault, answer: notify.PermissionGranted}
		sink := newSink(t, audio, tray)

		if got := sink.State(); got.AudioReady || got.NotificationsGranted {
			t.Fatalf("expected nothing enabled initially, got %+v", got)
		}

		state := sink.Enable(context.Background())
		if !state.AudioReady || !state.NotificationsGranted {
			t.Errorf("expected both channels enabled, got %+v", state)
		}

		sink.Enable(context.Background())
		if tray.requests != 1 {
			t.Errorf("expected one permission request, got %d", tray.requests)
		}
	})

	t.Run("never prompts after a denial", func(t *testing.T) {
		tray := &fakeTray{permission: notify.PermissionDenied, answer: notify.PermissionGranted}
		sink := newSink(t, &fakeAudio{}, tray)

		state := sink.Enable(context.Background())
		if tray.requests != 0 {
			t.Errorf("expected no prompt, got %d", tray.requests)
		}
		if state.NotificationsGranted {
			t.Error("expected notifications to stay denied")
		}
	})

	t.Run("does not ask again after the user dismissed the prompt", func(t *testing.T) {
		tray := &fakeTray{permission: notify.PermissionDefault, answer: notify.PermissionDefault}
		sink := newSink(t, &fakeAudio{}, tray)

		sink.Enable(context.Background())
		sink.Enable(context.Background())
		if tray.requests != 1 {
			t.Errorf("expected a single prompt, got %d", tray.requests)
		}
	})

	t.Run("audio failure does not block permission", func(t *testing.T) {
		audio := &fakeAudio{resumeErr: errors.New("no output device")}
		tray := &fakeTray{permission: notify.PermissionDefault, answer: notify.PermissionGranted}
		sink := newSink(t, audio, tray)

		state := sink.Enable(context.Background())
		if state.AudioReady || !state.NotificationsGranted {
			t.Errorf("expected only notifications enabled, got %+v", state)
		}
	})
}

func TestSinkNotify(t *testing.T) {
	t.Run("new order plays two rising tones and a persistent alert", func(t *testing.T) {
		audio := &fakeAudio{ready: true}
		tray := &fakeTray{permission: notify.PermissionGranted}
		sink := newSink(t, audio, tray)

		sink.NotifyNewOrder(context.Background(), order)
		drain(t, sink)

		tones := audio.played()
		if len(tones) != 2 || tones[0] >= tones[1] {
			t.Errorf("expected two ascending tones, got %v", tones)
		}
		if len(tray.alerts) != 1 {
			t.Fatalf("expected one alert, got %d", len(tray.alerts))
		}
		alert := tray.alerts[0]
		if !alert.RequireInteraction || alert.Body != "Ana · $12.50" {
			t.Errorf("unexpected alert %+v", alert)
		}
	})

	t.Run("ready plays three rising tones and a transient alert", func(t *testing.T) {
		audio := &fakeAudio{ready: true}
		tray := &fakeTray{permission: notify.PermissionGranted}
		sink := newSink(t, audio, tray)

		sink.NotifyOrderReady(context.Background(), order)
		drain(t, sink)

		tones := audio.played()
		if len(tones) != 3 || tones[0] >= tones[1] || tones[1] >= tones[2] {
			t.Errorf("expected three ascending tones, got %v", tones)
		}
		alert := tray.alerts[0]
		if alert.RequireInteraction || alert.Body != "Ana · #2A9C1E" {
			t.Errorf("unexpected alert %+v", alert)
		}
	})

	t.Run("patterns play in the order they were queued", func(t *testing.T) {
		audio := &fakeAudio{ready: true}
		sink := newSink(t, audio, &fakeTray{permission: notify.PermissionDenied})

		sink.NotifyOrderReady(context.Background(), order)
		sink.NotifyNewOrder(context.Background(), order)
		drain(t, sink)

		tones := audio.played()
		if len(tones) != 5 || tones[0] != 523.25 || tones[3] != 660 {
			t.Errorf("unexpected playback order %v", tones)
		}
	})

	t.Run("audio failure does not suppress the alert", func(t *testing.T) {
		audio := &fakeAudio{ready: true, playErr: errors.New("device busy")}
		tray := &fakeTray{permission: notify.PermissionGranted}
		sink := newSink(t, audio, tray)

		sink.NotifyNewOrder(context.Background(), order)
		drain(t, sink)

		if len(tray.alerts) != 1 {
			t.Errorf("expected alert despite audio failure, got %d", len(tray.alerts))
		}
	})

	t.Run("alert failure does not suppress audio", func(t *testing.T) {
		audio := &fakeAudio{ready: true}
		tray := &fakeTray{permission: notify.PermissionGranted, showErr: errors.New("daemon gone")}
		sink := newSink(t, audio, tray)

		sink.NotifyOrderReady(context.Background(), order)
		drain(t, sink)

		if len(audio.played()) != 3 {
			t.Errorf("expected tones despite alert failure, got %v", audio.played())
		}
	})

	t.Run("stays silent until enabled", func(t *testing.T) {
		audio := &fakeAudio{}
		tray := &fakeTray{permission: notify.PermissionDefault}
		sink := newSink(t, audio, tray)

		sink.NotifyNewOrder(context.Background(), order)
		drain(t, sink)

		if len(audio.played()) != 0 || len(tray.alerts) != 0 {
			t.Errorf("expected nothing before enable, got %v / %v", audio.played(), tray.alerts)
		}
	})

	t.Run("ignores events after close", func(t *testing.T) {
		audio := &fakeAudio{ready: true}
		sink := newSink(t, audio, &fakeTray{permission: notify.PermissionDenied})

		drain(t, sink)
		sink.NotifyNewOrder(context.Background(), order)

		if len(audio.played()) != 0 {
			t.Errorf("expected no playback after close, got %v", audio.played())
		}
	})
}

func TestSinkTest(t *testing.T) {
	audio := &fakeAudio{}
	tray := &fakeTray{permission: notify.PermissionDefault, answer: notify.PermissionGranted}
	sink := newSink(t, audio, tray)

	state := sink.Test(context.Background())
	drain(t, sink)

	if !state.AudioReady {
		t.Error("expected test to resume audio")
	}
	if tray.requests != 0 {
		t.Errorf("test must not prompt for permission, got %d prompts", tray.requests)
	}
	if tones := audio.played(); len(tones) != 1 || tones[0] != 880 {
		t.Errorf("expected a single reference tone, got %v", tones)
	}
}

func TestParsePermission(t *testing.T) {
	for _, value := range []string{"default", "granted", "denied"} {
		if _, ok := notify.ParsePermission(value); !ok {
			t.Errorf("expected %q to parse", value)
		}
	}
	if _, ok := notify.ParsePermission("maybe"); ok {
		t.Error("expected unknown permission to be rejected")
	}
}
