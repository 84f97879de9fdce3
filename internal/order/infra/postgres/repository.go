// Package postgres implements the OrderRepository on a pgx pool.
//
// The aggregate is stored whole as a jsonb payload; the columns duplicated
// out of it (user_id, status, created_at) exist only so listing queries can
// filter and sort without unpacking JSON.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecomkit/order-service/internal/order/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

var _ domain.OrderRepository = (*OrderRepository)(nil)

// EnsureSchema creates the orders table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS orders (
  id           text PRIMARY KEY,
  order_number text NOT NULL UNIQUE,
  user_id      text NOT NULL,
  status       text NOT NULL,
  created_at   timestamptz NOT NULL,
  payload      jsonb NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
`)
	return err
}

// Save inserts the order or replaces the stored aggregate by ID. Status and
// payload change across the order's life; the other columns are immutable.
func (r *OrderRepository) Save(ctx context.Context, o *domain.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order %s: %w", o.ID, err)
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO orders(id, order_number, user_id, status, created_at, payload)
VALUES($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, payload = EXCLUDED.payload`,
		o.ID, o.OrderNumber, o.UserID, string(o.Status), o.CreatedAt, payload)
	if err != nil {
		return fmt.Errorf("upsert order %s: %w", o.ID, err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT payload FROM orders WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order %s: %w", id, err)
	}

	var o domain.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order %s: %w", id, err)
	}
	return &o, nil
}

func (r *OrderRepository) List(ctx context.Context, f domain.OrderFilter, limit, offset int) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT payload FROM orders
WHERE ($1 = '' OR user_id = $1)
  AND ($2 = '' OR status = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`,
		f.UserID, string(f.Status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *OrderRepository) Count(ctx context.Context, f domain.OrderFilter) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
SELECT count(*) FROM orders
WHERE ($1 = '' OR user_id = $1)
  AND ($2 = '' OR status = $2)`,
		f.UserID, string(f.Status)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return total, nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT payload FROM orders
WHERE user_id = $1
ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		var o domain.Order
		if err := json.Unmarshal(raw, &o); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
