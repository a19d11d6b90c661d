// Package session coordinates the order workflow and projection
// against the external store: it owns the in-memory snapshot, the
// transient urgent and notification state, and the change-feed
// subscription.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pizza-desk/internal/metrics"
	"pizza-desk/internal/model"
	"pizza-desk/internal/store"
	"pizza-desk/internal/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// maxNotifications caps the retained notification history.
const maxNotifications = 50

// createdBy tag written to every status-history record.
const createdBy = "dashboard"

// Session is the order session controller. The snapshot is only ever
// replaced whole, never mutated partially, so readers always see a
// consistent view.
type Session struct {
	store  store.Store
	feed   store.ChangeFeed
	logger zerolog.Logger

	mu            sync.RWMutex
	snapshot      []model.Order
	urgent        map[uuid.UUID]struct{}
	inflight      map[uuid.UUID]struct{}
	notifications []model.Notification
	listeners     map[int]chan struct{}
	nextListener  int
	fetchSeq      uint64

	sub store.Subscription
}

// New creates a session controller. feed may be nil when no change
// feed is configured; the session then only refreshes on demand.
func New(st store.Store, feed store.ChangeFeed, logger zerolog.Logger) *Session {
	return &Session{
		store:     st,
		feed:      feed,
		logger:    logger.With().Str("component", "session").Logger(),
		urgent:    make(map[uuid.UUID]struct{}),
		inflight:  make(map[uuid.UUID]struct{}),
		listeners: make(map[int]chan struct{}),
	}
}

// Start performs the initial load and subscribes to the change feed.
// A failed initial load is recoverable and does not abort startup.
func (s *Session) Start(ctx context.Context) error {
	if err := s.LoadOrders(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("initial order load failed")
	}

	if s.feed == nil {
		return nil
	}

	sub, err := s.feed.Subscribe(ctx, "orders", func() {
		// Any change means the snapshot may be stale; reconcile by
		// full reload rather than patching deltas.
		if err := s.LoadOrders(ctx); err != nil {
			s.logger.Error().Err(err).Msg("feed-triggered reload failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to change feed: %w", err)
	}
	s.sub = sub

	return nil
}

// Close unsubscribes from the change feed.
func (s *Session) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
}

// LoadOrders fetches all orders and their items and atomically
// replaces the snapshot. Item fetches for distinct orders run in
// parallel; any failure aborts the whole refresh and keeps the
// previous snapshot. A result is dropped when a newer fetch has
// already started, so a slow stale fetch can never overwrite a newer
// snapshot.
func (s *Session) LoadOrders(ctx context.Context) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	orders, err := s.fetch(ctx)
	if err != nil {
		metrics.RecordOrderOperation("load", false)
		if errors.Is(err, model.ErrStoreUnavailable) {
			return model.ErrStoreUnavailable
		}
		s.logger.Error().Err(err).Msg("failed to load orders")
		s.notify("error", "Failed to load orders")
		return model.ErrFetchFailed
	}

	s.mu.Lock()
	stale := seq != s.fetchSeq
	if !stale {
		s.snapshot = orders
	}
	s.mu.Unlock()

	if stale {
		s.logger.Debug().Uint64("seq", seq).Msg("stale fetch result dropped")
		return nil
	}

	metrics.RecordOrderOperation("load", true)
	s.logger.Debug().Int("count", len(orders)).Msg("snapshot replaced")
	s.broadcast()

	return nil
}

// fetch retrieves orders and merges in their items, all-or-nothing.
func (s *Session) fetch(ctx context.Context) ([]model.Order, error) {
	orders, err := s.store.FetchOrders(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range orders {
		g.Go(func() error {
			items, err := s.store.FetchItems(gctx, orders[i].ID)
			if err != nil {
				return err
			}
			orders[i].Items = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return orders, nil
}

// AdvanceStatus moves an order one step along the pipeline: persist
// the new status and timestamp, append a history record, then patch
// exactly order_status and updated_at on the snapshot copy. A failed
// write leaves the snapshot showing the pre-attempt status. At most
// one advance per order may be in flight.
func (s *Session) AdvanceStatus(ctx context.Context, orderID uuid.UUID) (model.OrderStatus, error) {
	s.mu.Lock()
	order, ok := s.find(orderID)
	if !ok {
		s.mu.Unlock()
		return "", model.ErrOrderNotFound
	}
	if _, busy := s.inflight[orderID]; busy {
		s.mu.Unlock()
		return "", model.ErrAdvanceInFlight
	}
	next, ok := workflow.NextStatus(order.OrderStatus)
	if !ok {
		s.mu.Unlock()
		return "", model.ErrTerminalStatus
	}
	s.inflight[orderID] = struct{}{}
	orderNumber := order.OrderNumber
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, orderID)
		s.mu.Unlock()
	}()

	updatedAt := time.Now()
	if err := s.store.UpdateOrderStatus(ctx, orderID, next, updatedAt); err != nil {
		metrics.RecordOrderOperation("advance", false)
		if errors.Is(err, model.ErrStoreUnavailable) {
			return "", model.ErrStoreUnavailable
		}
		if errors.Is(err, model.ErrOrderNotFound) {
			return "", model.ErrOrderNotFound
		}
		s.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("status", string(next)).
			Msg("status transition failed")
		s.notify("error", fmt.Sprintf("Failed to update order %s", orderNumber))
		return "", model.ErrTransitionFailed
	}

	// The transition itself is already durable; a lost audit record is
	// logged but does not revert the advance.
	if err := s.store.InsertStatusHistory(ctx, orderID, next, "", createdBy); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to record status history")
	}

	s.mu.Lock()
	if order, ok := s.find(orderID); ok {
		order.OrderStatus = next
		order.UpdatedAt = updatedAt
	}
	s.mu.Unlock()

	metrics.RecordOrderOperation("advance", true)
	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("order_number", orderNumber).
		Str("status", string(next)).
		Msg("order advanced")
	s.notify("success", fmt.Sprintf("Order %s is now %s", orderNumber, workflow.Label(next)))
	s.broadcast()

	return next, nil
}

// ToggleUrgent flips the session-local urgent flag for an order and
// reports the new state. Never persisted; lost when the session ends.
func (s *Session) ToggleUrgent(orderID uuid.UUID) bool {
	s.mu.Lock()
	_, flagged := s.urgent[orderID]
	if flagged {
		delete(s.urgent, orderID)
	} else {
		s.urgent[orderID] = struct{}{}
	}
	s.mu.Unlock()

	s.broadcast()
	return !flagged
}

// find returns a pointer into the snapshot; callers must hold mu.
func (s *Session) find(orderID uuid.UUID) (*model.Order, bool) {
	for i := range s.snapshot {
		if s.snapshot[i].ID == orderID {
			return &s.snapshot[i], true
		}
	}
	return nil, false
}
