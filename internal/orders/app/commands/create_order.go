package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/ports"
)

// ErrInvalidCommand marks input rejected before anything is written.
var ErrInvalidCommand = errors.New("invalid command")

type CreateOrderCommand struct {
	TenantID      string
	CustomerName  string
	CustomerPhone string
	Items         []domain.LineItem
	Notes         string
}

func (c CreateOrderCommand) Validate() error {
	if strings.TrimSpace(c.TenantID) == "" {
		return fmt.Errorf("%w: tenant_id is required", ErrInvalidCommand)
	}
	if strings.TrimSpace(c.CustomerName) == "" {
		return fmt.Errorf("%w: customer_name is required", ErrInvalidCommand)
	}
	if len(c.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidCommand)
	}
	return nil
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
}

type CreateOrderCommandHandler struct {
	store  ports.OrderStore
	events ports.EventBus
	now    func() time.Time
}

func NewCreateOrderCommandHandler(
	store ports.OrderStore,
	events ports.EventBus,
	now func() time.Time,
) *CreateOrderCommandHandler {
	if now == nil {
		now = time.Now
	}
	return &CreateOrderCommandHandler{
		store:  store,
		events: events,
		now:    now,
	}
}

// Handle writes a new pending order. The returned order is what was written;
// consoles see it through their next snapshot.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.now().UTC()
	order := domain.Order{
		ID:            uuid.NewString(),
		TenantID:      cmd.TenantID,
		CustomerName:  strings.TrimSpace(cmd.CustomerName),
		CustomerPhone: strings.TrimSpace(cmd.CustomerPhone),
		Items:         cmd.Items,
		Notes:         cmd.Notes,
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	order.TotalCents = order.ComputeTotal()

	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	if err := h.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	if err := h.events.PublishOrderCreated(ctx, order); err != nil {
		return &order, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return &order, nil
}
