package store

import (
	"context"
	"fmt"
	"time"

	"pizza-desk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// postgresStore implements the Store interface using PostgreSQL.
type postgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresStore creates a new PostgreSQL-backed order store.
func NewPostgresStore(pool *pgxpool.Pool, logger zerolog.Logger) Store {
	return &postgresStore{
		pool:   pool,
		logger: logger.With().Str("store", "postgres").Logger(),
	}
}

// FetchOrders retrieves all orders sorted by created_at descending.
func (s *postgresStore) FetchOrders(ctx context.Context) ([]model.Order, error) {
	query := `
		SELECT id, order_number, customer_name, customer_email, customer_phone, company,
		       delivery_street, delivery_city, delivery_state, delivery_country,
		       delivery_postal_code, delivery_landmark,
		       subtotal, tax_amount, delivery_fee, total_amount,
		       order_status, payment_status, order_notes,
		       created_at, updated_at, estimated_delivery_time
		FROM orders
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.Company,
			&o.Address.Street, &o.Address.City, &o.Address.State, &o.Address.Country,
			&o.Address.PostalCode, &o.Address.Landmark,
			&o.Subtotal, &o.TaxAmount, &o.DeliveryFee, &o.TotalAmount,
			&o.OrderStatus, &o.PaymentStatus, &o.OrderNotes,
			&o.CreatedAt, &o.UpdatedAt, &o.EstimatedDeliveryTime,
		)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	s.logger.Debug().Int("count", len(orders)).Msg("orders fetched")

	return orders, nil
}

// FetchItems retrieves the line items of a single order.
func (s *postgresStore) FetchItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, item_type, item_id, item_name, description,
		       quantity, unit_price, total_price, customizations
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := s.pool.Query(ctx, query, orderID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ItemType, &item.ItemID, &item.ItemName,
			&item.Description, &item.Quantity, &item.UnitPrice, &item.TotalPrice,
			&item.Customizations,
		)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// UpdateOrderStatus persists a new status and updated_at timestamp.
func (s *postgresStore) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, updatedAt time.Time) error {
	query := `
		UPDATE orders
		SET order_status = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, orderID, status, updatedAt)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		s.logger.Warn().Str("order_id", orderID.String()).Msg("order not found for status update")
		return model.ErrOrderNotFound
	}

	s.logger.Debug().
		Str("order_id", orderID.String()).
		Str("status", string(status)).
		Msg("order status updated")

	return nil
}

// InsertStatusHistory appends one audit record for a status transition.
func (s *postgresStore) InsertStatusHistory(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, note, createdBy string) error {
	query := `
		INSERT INTO order_status_history (id, order_id, status, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var notePtr *string
	if note != "" {
		notePtr = &note
	}

	_, err := s.pool.Exec(ctx, query, uuid.New(), orderID, status, notePtr, createdBy, time.Now())
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("status", string(status)).
			Msg("failed to insert status history")
		return fmt.Errorf("failed to insert status history: %w", err)
	}

	return nil
}
