// Package store is the boundary to the hosted order database: CRUD on
// orders, line items and the status-history audit table, plus the
// change feed used to detect stale snapshots.
package store

import (
	"context"
	"time"

	"pizza-desk/internal/model"

	"github.com/google/uuid"
)

// Store defines the data access operations the dashboard needs. The
// dashboard never creates or deletes orders; it reads snapshots and
// advances statuses.
type Store interface {
	// FetchOrders retrieves all orders, newest first, without items.
	FetchOrders(ctx context.Context) ([]model.Order, error)

	// FetchItems retrieves the line items of a single order.
	FetchItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)

	// UpdateOrderStatus persists a new status and updated_at for an
	// order. Returns model.ErrOrderNotFound for an unknown id.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, updatedAt time.Time) error

	// InsertStatusHistory appends one audit record for a transition.
	InsertStatusHistory(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, note, createdBy string) error
}

// ChangeFeed delivers opaque "something in this table changed" events.
// Events carry no payload: the only correct reaction is to treat local
// state as stale and reload.
type ChangeFeed interface {
	// Subscribe registers onChange for any row change in the table.
	// The callback may be invoked from a background goroutine.
	Subscribe(ctx context.Context, table string, onChange func()) (Subscription, error)
}

// Subscription is a live change-feed registration.
type Subscription interface {
	// Unsubscribe tears down the registration and releases its
	// connection. Safe to call more than once.
	Unsubscribe()
}
