package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dejobratic/orderwatch/internal/orders/app/commands"
	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/metrics"
	"github.com/dejobratic/orderwatch/internal/orders/ports"
)

// Service bundles the console's use cases for one tenant.
type Service struct {
	store              ports.OrderStore
	events             ports.EventBus
	idemStore          ports.IdempotencyStore
	view               *LifecycleView
	logger             *slog.Logger
	createOrderHandler commands.CommandHandler
}

// NewService wires required dependencies.
func NewService(
	store ports.OrderStore,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	view *LifecycleView,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	coreHandler := commands.NewCreateOrderCommandHandler(store, events, time.Now)
	observableHandler := commands.NewObservableCommandHandler(coreHandler, logger, metrics)

	return &Service{
		store:              store,
		events:             events,
		idemStore:          idem,
		view:               view,
		logger:             logger,
		createOrderHandler: observableHandler,
	}
}

func (s *Service) TenantID() string {
	return s.view.TenantID()
}

// CreateOrderInput captures payload for creating an order.
type CreateOrderInput struct {
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	Items         []domain.LineItem `json:"items"`
	Notes         string            `json:"notes"`
}

// CreateOrder places a new pending order for the service's tenant.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	cmd := commands.CreateOrderCommand{
		TenantID:      s.TenantID(),
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		Items:         input.Items,
		Notes:         input.Notes,
	}
	return s.createOrderHandler.Handle(ctx, cmd)
}

// ChangeStatus moves an order along its lifecycle.
func (s *Service) ChangeStatus(ctx context.Context, id string, status domain.Status, estimatedReadyAt *time.Time) error {
	return s.view.ChangeStatus(ctx, id, status, estimatedReadyAt)
}

// DeleteOrder removes an order from the tenant's board.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	if err := s.store.DeleteOrder(ctx, s.TenantID(), id); err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	if err := s.events.PublishOrderDeleted(ctx, s.TenantID(), id); err != nil {
		s.logger.WarnContext(ctx, "order deleted but failed to publish event",
			"order_id", id,
			"tenant_id", s.TenantID(),
			"error", err,
		)
	}
	return nil
}

func (s *Service) Board() Partitions {
	return s.view.Partition()
}

func (s *Service) Stats() Stats {
	return s.view.Stats()
}

func (s *Service) AllowedTransitions(id string) ([]domain.Status, error) {
	return s.view.AllowedTransitions(id)
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, s.TenantID(), key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, s.TenantID(), key)
}
