package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// WithMetrics records every request against its route pattern so order ids
// do not end up as metric labels.
func WithMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			done := metrics.Started(r.Context())
			defer done()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			metrics.RecordRequest(r.Context(), r.Method, route, rw.statusCode, time.Since(start).Seconds())
		})
	}
}

// NewRouter assembles the API, probes and request metrics.
func NewRouter(handler *Handler, health *Health, metrics *Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(WithMetrics(metrics))
	r.Get("/healthz", health.Live)
	r.Get("/readyz", health.Ready)
	r.Mount("/", handler.Routes())
	return r
}
