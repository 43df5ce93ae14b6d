package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"theater-booking-platform/internal/models"
)

// OrderRepository persists snapshots of placed orders. The booking state
// itself lives in memory per session; only the final order outcome is
// written through here for the payment step and ops lookup.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create stores one placed order snapshot.
func (r *OrderRepository) Create(sessionID string, order *models.PlacedOrder) error {
	lineItems, err := json.Marshal(order.LineItems)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO orders (order_number, session_id, show_id, currency, total_cents, line_items, placed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.OrderNumber, sessionID, order.ShowID, order.Currency, order.TotalCents, string(lineItems), order.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store order %s: %w", order.OrderNumber, err)
	}
	return nil
}

// GetByOrderNumber loads one snapshot.
func (r *OrderRepository) GetByOrderNumber(orderNumber string) (*models.PlacedOrder, error) {
	row := r.db.QueryRow(`
		SELECT order_number, show_id, currency, total_cents, line_items, placed_at
		FROM orders WHERE order_number = ?`, orderNumber)

	var order models.PlacedOrder
	var lineItems string
	err := row.Scan(&order.OrderNumber, &order.ShowID, &order.Currency, &order.TotalCents, &lineItems, &order.PlacedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(lineItems), &order.LineItems); err != nil {
		return nil, fmt.Errorf("failed to decode line items of %s: %w", orderNumber, err)
	}
	return &order, nil
}

// GetBySession lists the session's placed orders, newest first.
func (r *OrderRepository) GetBySession(sessionID string) ([]*models.PlacedOrder, error) {
	rows, err := r.db.Query(`
		SELECT order_number, show_id, currency, total_cents, line_items, placed_at
		FROM orders WHERE session_id = ? ORDER BY placed_at DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.PlacedOrder
	for rows.Next() {
		var order models.PlacedOrder
		var lineItems string
		if err := rows.Scan(&order.OrderNumber, &order.ShowID, &order.Currency, &order.TotalCents, &lineItems, &order.PlacedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(lineItems), &order.LineItems); err != nil {
			return nil, err
		}
		orders = append(orders, &order)
	}
	return orders, rows.Err()
}
