package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dejobratic/orderwatch/internal/orders/domain"
	"github.com/dejobratic/orderwatch/internal/orders/ports"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insufficientPrivilege = "42501"

var orderColumns = []string{
	"id", "tenant_id", "customer_name", "customer_phone", "items", "total_cents",
	"notes", "status", "created_at", "updated_at", "estimated_ready_at",
}

type Repository struct {
	pool *pgxpool.Pool
	sq   sq.StatementBuilderType
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
		sq:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *Repository) Create(ctx context.Context, order domain.Order) error {
	query, args, err := r.sq.Insert("orders").
		Columns(orderColumns...).
		Values(
			order.ID,
			order.TenantID,
			order.CustomerName,
			order.CustomerPhone,
			order.Items,
			order.TotalCents,
			order.Notes,
			order.Status,
			order.CreatedAt,
			order.UpdatedAt,
			order.EstimatedReadyAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert order: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return classify("insert order", err)
	}

	return nil
}

func (r *Repository) List(ctx context.Context, tenantID string) ([]domain.Order, error) {
	query, args, err := r.sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select orders: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("query orders", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.TenantID,
			&order.CustomerName,
			&order.CustomerPhone,
			&order.Items,
			&order.TotalCents,
			&order.Notes,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.EstimatedReadyAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, classify("iterate orders", err)
	}

	return orders, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, tenantID, id string, status domain.Status, estimatedReadyAt *time.Time, updatedAt time.Time) error {
	update := r.sq.Update("orders").
		Set("status", status).
		Set("updated_at", sq.Expr("GREATEST(updated_at, ?)", updatedAt)).
		Where(sq.Eq{"id": id, "tenant_id": tenantID})
	if estimatedReadyAt != nil {
		update = update.Set("estimated_ready_at", *estimatedReadyAt)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build update order status: %w", err)
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return classify("update order status", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, id string) error {
	query, args, err := r.sq.Delete("orders").
		Where(sq.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete order: %w", err)
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return classify("delete order", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == insufficientPrivilege {
		return fmt.Errorf("%w: %s: %w", ports.ErrPermissionDenied, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ports.ErrTransport, op, err)
}
