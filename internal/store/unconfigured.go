package store

import (
	"context"
	"time"

	"pizza-desk/internal/model"

	"github.com/google/uuid"
)

// unconfiguredStore is the degraded-mode store used when the database
// environment variables are absent. Missing credentials are a valid
// runtime state: the dashboard starts and shows a setup notice instead
// of failing hard.
type unconfiguredStore struct{}

// NewUnconfigured returns a store whose every operation reports
// model.ErrStoreUnavailable.
func NewUnconfigured() Store {
	return unconfiguredStore{}
}

func (unconfiguredStore) FetchOrders(ctx context.Context) ([]model.Order, error) {
	return nil, model.ErrStoreUnavailable
}

func (unconfiguredStore) FetchItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	return nil, model.ErrStoreUnavailable
}

func (unconfiguredStore) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, updatedAt time.Time) error {
	return model.ErrStoreUnavailable
}

func (unconfiguredStore) InsertStatusHistory(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, note, createdBy string) error {
	return model.ErrStoreUnavailable
}
