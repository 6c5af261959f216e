package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHealth(t *testing.T) {
	t.Run("live always answers ok", func(t *testing.T) {
		h := NewHealth(time.Second)
		h.Add("database", func(context.Context) error { return errors.New("down") })

		rec := httptest.NewRecorder()
		h.Live(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("ready reports failing checks", func(t *testing.T) {
		h := NewHealth(time.Second)
		h.Add("database", func(context.Context) error { return nil })
		h.Add("redis", func(context.Context) error { return errors.New("connection refused") })

		rec := httptest.NewRecorder()
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "connection refused") {
			t.Errorf("expected failure detail in body, got %s", rec.Body.String())
		}
	})

	t.Run("ready with no checks", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealth(time.Second).Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})
}
