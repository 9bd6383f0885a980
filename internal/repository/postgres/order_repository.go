package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/repository"
)

const (
	OrderResource = "order"

	earthRadiusKm = 6371.0
)

// OrderRepository provides database operations for orders
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository instance
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{
		pool: pool,
	}
}

// CreateOrder creates a new order in the database
func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	doc, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", order.ID, err)
	}

	const query = `INSERT INTO orders (id, user_id, status, appointment_date, longitude, latitude, document, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		string(order.Status),
		order.Appointment.Date.Time,
		order.Appointment.Location.Longitude(),
		order.Appointment.Location.Latitude(),
		doc,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetOrderByID retrieves an order owned by userID
func (r *OrderRepository) GetOrderByID(ctx context.Context, userID, id uuid.UUID) (*domain.Order, error) {
	return getDocument[domain.Order](ctx, r.pool, OrderResource, id,
		"SELECT document FROM orders WHERE id = $1 AND user_id = $2", id, userID,
	)
}

// ListOrders returns the user's orders ordered by appointment date
func (r *OrderRepository) ListOrders(ctx context.Context, userID uuid.UUID, filter repository.OrderFilter) ([]*domain.Order, error) {
	conditions := []string{"user_id = $1"}
	args := []any{userID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conditions = append(conditions, fmt.Sprintf("appointment_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conditions = append(conditions, fmt.Sprintf("appointment_date <= $%d", len(args)))
	}

	query := "SELECT document FROM orders WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY appointment_date, created_at"

	return listDocuments[domain.Order](ctx, r.pool, OrderResource, query, args...)
}

// ListOrdersNear returns the user's orders whose appointment location lies within radiusKm
// of (lng, lat), nearest first.
func (r *OrderRepository) ListOrdersNear(ctx context.Context, userID uuid.UUID, lng, lat, radiusKm float64) ([]*domain.Order, error) {
	const query = `
SELECT document FROM (
  SELECT document,
         $5 * acos(greatest(-1.0, least(1.0,
           cos(radians($3)) * cos(radians(latitude)) * cos(radians(longitude) - radians($2)) +
           sin(radians($3)) * sin(radians(latitude))
         ))) AS distance_km
  FROM orders
  WHERE user_id = $1
) nearby
WHERE distance_km <= $4
ORDER BY distance_km`

	return listDocuments[domain.Order](ctx, r.pool, OrderResource, query, userID, lng, lat, radiusKm, earthRadiusKm)
}

// UpdateOrder replaces the stored order document
func (r *OrderRepository) UpdateOrder(ctx context.Context, order *domain.Order) error {
	doc, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", order.ID, err)
	}

	const query = `UPDATE orders
SET status = $3, appointment_date = $4, longitude = $5, latitude = $6, document = $7, updated_at = $8
WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		string(order.Status),
		order.Appointment.Date.Time,
		order.Appointment.Location.Longitude(),
		order.Appointment.Location.Latitude(),
		doc,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", order.ID, err)
	}

	return expectAffected(tag, OrderResource, order.ID)
}

// DeleteOrder removes an order owned by userID
func (r *OrderRepository) DeleteOrder(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM orders WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}

	return expectAffected(tag, OrderResource, id)
}
