package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dejobratic/orderwatch/internal/notify"
	"github.com/dejobratic/orderwatch/internal/orders/app"
	"github.com/dejobratic/orderwatch/internal/orders/app/commands"
	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/ports"
)

// Notifications is the console's control surface over the notification sink.
type Notifications interface {
	State() notify.State
	Enable(ctx context.Context) notify.State
	Test(ctx context.Context) notify.State
}

// Handler exposes the console's HTTP endpoints.
type Handler struct {
	service       *app.Service
	notifications Notifications
	logger        *slog.Logger
}

func NewHandler(service *app.Service, notifications Notifications, logger *slog.Logger) *Handler {
	return &Handler{
		service:       service,
		notifications: notifications,
		logger:        logger,
	}
}

// Routes mounts the /v1 API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/v1/orders", func(r chi.Router) {
		r.Get("/", h.board)
		r.Post("/", h.createOrder)
		r.Get("/stats", h.stats)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/transitions", h.transitions)
			r.Post("/status", h.changeStatus)
			r.Delete("/", h.deleteOrder)
		})
	})

	r.Route("/v1/notifications", func(r chi.Router) {
		r.Get("/", h.notificationState)
		r.Post("/enable", h.enableNotifications)
		r.Post("/test", h.testNotifications)
	})

	return r
}

func (h *Handler) board(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tenant_id": h.service.TenantID(),
		"orders":    h.service.Board(),
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Stats())
}

func (h *Handler) transitions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	allowed, err := h.service.AllowedTransitions(id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if allowed == nil {
		allowed = []domain.Status{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"order_id": id, "allowed": allowed})
}

type changeStatusRequest struct {
	Status           string     `json:"status"`
	EstimatedReadyAt *time.Time `json:"estimated_ready_at"`
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.service.ChangeStatus(r.Context(), id, status, req.EstimatedReadyAt); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// The board catches up when the store delivers the next snapshot.
	writeJSON(w, http.StatusAccepted, map[string]any{"order_id": id, "status": status})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey == "" {
		writeError(w, http.StatusBadRequest, "Idempotency-Key header required")
		return
	}

	stored, err := h.service.GetIdempotentResponse(ctx, idemKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if stored != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(stored.StatusCode)
		_, _ = w.Write(stored.Body)
		return
	}

	var payload app.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.CreateOrder(ctx, payload)
	if order == nil {
		h.writeServiceError(w, r, err)
		return
	}

	body, err := json.Marshal(map[string]any{"order": order})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := ports.StoredResponse{
		StatusCode: http.StatusCreated,
		Body:       body,
		OrderID:    order.ID,
	}
	if err := h.service.SaveIdempotentResponse(ctx, idemKey, response); err != nil {
		h.logger.WarnContext(ctx, "failed to store idempotent response",
			"order_id", order.ID,
			"error", err,
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (h *Handler) notificationState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.notifications.State())
}

func (h *Handler) enableNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.notifications.Enable(r.Context()))
}

func (h *Handler) testNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.notifications.Test(r.Context()))
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"kind", ports.KindOf(err),
			"error", err,
		)
	}
	writeJSON(w, status, map[string]any{"error": err.Error(), "kind": ports.KindOf(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, commands.ErrInvalidCommand),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrUnknownStatus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ports.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ports.ErrTransport),
		errors.Is(err, ports.ErrSubscription),
		errors.Is(err, ports.ErrSetup):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
