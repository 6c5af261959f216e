// Package demo holds the fixed order set served to the demo tenant when its
// live channel cannot be used.
package demo

import (
	_ "embed"
	"fmt"
	"sort"
	"time"

	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"gopkg.in/yaml.v3"
)

//go:embed orders.yaml
var dataset []byte

type entry struct {
	ID            string            `yaml:"id"`
	CustomerName  string            `yaml:"customer_name"`
	CustomerPhone string            `yaml:"customer_phone"`
	Status        string            `yaml:"status"`
	Age           string            `yaml:"age"`
	ReadyIn       string            `yaml:"ready_in"`
	Notes         string            `yaml:"notes"`
	Items         []domain.LineItem `yaml:"items"`
}

// Orders decodes the demo dataset for tenantID, anchoring timestamps at now.
// Orders come back most recent first.
func Orders(tenantID string, now time.Time) ([]domain.Order, error) {
	var entries []entry
	if err := yaml.Unmarshal(dataset, &entries); err != nil {
		return nil, fmt.Errorf("decode demo dataset: %w", err)
	}

	orders := make([]domain.Order, 0, len(entries))
	for _, e := range entries {
		order, err := e.toOrder(tenantID, now)
		if err != nil {
			return nil, fmt.Errorf("demo order %s: %w", e.ID, err)
		}
		orders = append(orders, order)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

// Snapshot returns the demo dataset as a snapshot.
func Snapshot(tenantID string, now time.Time) (domain.Snapshot, error) {
	orders, err := Orders(tenantID, now)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.NewSnapshot(orders), nil
}

func (e entry) toOrder(tenantID string, now time.Time) (domain.Order, error) {
	status, err := domain.ParseStatus(e.Status)
	if err != nil {
		return domain.Order{}, err
	}

	age, err := time.ParseDuration(e.Age)
	if err != nil {
		return domain.Order{}, fmt.Errorf("parse age: %w", err)
	}

	createdAt := now.Add(-age)
	order := domain.Order{
		ID:            e.ID,
		TenantID:      tenantID,
		CustomerName:  e.CustomerName,
		CustomerPhone: e.CustomerPhone,
		Items:         e.Items,
		Notes:         e.Notes,
		Status:        status,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	order.TotalCents = order.ComputeTotal()

	if e.ReadyIn != "" {
		readyIn, err := time.ParseDuration(e.ReadyIn)
		if err != nil {
			return domain.Order{}, fmt.Errorf("parse ready_in: %w", err)
		}
		eta := now.Add(readyIn)
		order.EstimatedReadyAt = &eta
	}

	return order, order.Validate()
}
