package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// LineItem is a single menu entry on an order.
type LineItem struct {
	Name           string `json:"name" yaml:"name" validate:"required,max=100"`
	UnitPriceCents int64  `json:"unit_price_cents" yaml:"unit_price_cents" validate:"gte=0"`
	Quantity       int    `json:"quantity" yaml:"quantity" validate:"gte=1,lte=99"`
	Notes          string `json:"notes,omitempty" yaml:"notes" validate:"max=500"`
}

// Order represents a customer order placed with a restaurant tenant.
type Order struct {
	ID               string     `json:"id" validate:"required"`
	TenantID         string     `json:"tenant_id" validate:"required"`
	CustomerName     string     `json:"customer_name" validate:"required,max=100"`
	CustomerPhone    string     `json:"customer_phone,omitempty" validate:"max=32"`
	Items            []LineItem `json:"items" validate:"required,min=1,dive"`
	TotalCents       int64      `json:"total_cents" validate:"gte=0"`
	Notes            string     `json:"notes,omitempty" validate:"max=1000"`
	Status           Status     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	EstimatedReadyAt *time.Time `json:"estimated_ready_at,omitempty"`
}

var validate = validator.New()

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid order: %w", err)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, string(o.Status))
	}
	if o.UpdatedAt.Before(o.CreatedAt) {
		return errors.New("updated_at must not precede created_at")
	}
	return nil
}

// ComputeTotal sums unit price times quantity across the line items.
func (o Order) ComputeTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.UnitPriceCents * int64(item.Quantity)
	}
	return total
}

// IsTerminal indicates whether the order is in a terminal state.
func (o Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// ShortRef is the compact reference read out to staff and customers.
func (o Order) ShortRef() string {
	id := strings.ReplaceAll(o.ID, "-", "")
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return "#" + strings.ToUpper(id)
}

// FormatCents renders an amount such as 1250 as "$12.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
