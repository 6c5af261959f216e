package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dejobratic/orderwatch/internal/orders/ports"
)

// Store persists replayable intake responses in the idempotency_keys table.
type Store struct {
	pool *pgxpool.Pool
	sq   sq.StatementBuilderType
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		sq:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *Store) Get(ctx context.Context, tenantID, key string) (*ports.StoredResponse, error) {
	query, args, err := s.sq.Select("status_code", "body", "order_id").
		From("idempotency_keys").
		Where(sq.Eq{"tenant_id": tenantID, "key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select idempotency key: %w", err)
	}

	var resp ports.StoredResponse
	err = s.pool.QueryRow(ctx, query, args...).Scan(
		&resp.StatusCode,
		&resp.Body,
		&resp.OrderID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select idempotency key: %w", err)
	}

	return &resp, nil
}

// Save keeps the first response stored for a key.
func (s *Store) Save(ctx context.Context, tenantID, key string, response ports.StoredResponse) error {
	query, args, err := s.sq.Insert("idempotency_keys").
		Columns("tenant_id", "key", "status_code", "body", "order_id").
		Values(tenantID, key, response.StatusCode, response.Body, response.OrderID).
		Suffix("ON CONFLICT (tenant_id, key) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert idempotency key: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert idempotency key: %w", err)
	}

	return nil
}
