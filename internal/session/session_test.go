package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"pizza-desk/internal/model"
	"pizza-desk/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of store.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) FetchOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockStore) FetchItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderItem), args.Error(1)
}

func (m *MockStore) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, updatedAt time.Time) error {
	args := m.Called(ctx, orderID, status, updatedAt)
	return args.Error(0)
}

func (m *MockStore) InsertStatusHistory(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, note, createdBy string) error {
	args := m.Called(ctx, orderID, status, note, createdBy)
	return args.Error(0)
}

// MockFeed is a mock implementation of store.ChangeFeed.
type MockFeed struct {
	mock.Mock
	onChange func()
}

func (m *MockFeed) Subscribe(ctx context.Context, table string, onChange func()) (store.Subscription, error) {
	m.onChange = onChange
	args := m.Called(ctx, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(store.Subscription), args.Error(1)
}

// MockSubscription is a mock implementation of store.Subscription.
type MockSubscription struct {
	mock.Mock
}

func (m *MockSubscription) Unsubscribe() {
	m.Called()
}

func testOrder(number string, status model.OrderStatus) model.Order {
	now := time.Now()
	return model.Order{
		ID:            uuid.New(),
		OrderNumber:   number,
		CustomerName:  "Test Customer",
		CustomerPhone: "+15550100",
		OrderStatus:   status,
		PaymentStatus: model.PaymentPending,
		TotalAmount:   25.00,
		CreatedAt:     now.Add(-10 * time.Minute),
		UpdatedAt:     now.Add(-10 * time.Minute),
	}
}

func TestSession_LoadOrders_MergesItems(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	orderA := testOrder("ORD-1001", model.StatusPending)
	orderB := testOrder("ORD-1002", model.StatusPreparing)
	itemsA := []model.OrderItem{{ID: uuid.New(), OrderID: orderA.ID, ItemName: "Margherita", Quantity: 2}}
	itemsB := []model.OrderItem{{ID: uuid.New(), OrderID: orderB.ID, ItemName: "Pepperoni", Quantity: 1}}

	mockStore := new(MockStore)
	mockStore.On("FetchOrders", ctx).Return([]model.Order{orderA, orderB}, nil)
	mockStore.On("FetchItems", mock.Anything, orderA.ID).Return(itemsA, nil)
	mockStore.On("FetchItems", mock.Anything, orderB.ID).Return(itemsB, nil)

	sess := New(mockStore, nil, logger)

	err := sess.LoadOrders(ctx)

	require.NoError(t, err)
	snapshot := sess.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, itemsA, snapshot[0].Items)
	assert.Equal(t, itemsB, snapshot[1].Items)
	mockStore.AssertExpectations(t)
}

func TestSession_LoadOrders_FetchFailure_KeepsSnapshot(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	order := testOrder("ORD-1001", model.StatusPending)

	mockStore := new(MockStore)
	mockStore.On("FetchOrders", ctx).Return([]model.Order{order}, nil).Once()
	mockStore.On("FetchItems", mock.Anything, order.ID).Return([]model.OrderItem{}, nil).Once()

	sess := New(mockStore, nil, logger)
	require.NoError(t, sess.LoadOrders(ctx))
	require.Len(t, sess.Snapshot(), 1)

	// Next refresh fails; the previous snapshot must survive.
	mockStore.On("FetchOrders", ctx).Return(nil, errors.New("network error")).Once()

	err := sess.LoadOrders(ctx)

	assert.Equal(t, model.ErrFetchFailed, err)
	assert.Len(t, sess.Snapshot(), 1)

	notes := sess.Notifications()
	require.NotEmpty(t, notes)
	assert.Equal(t, "error", notes[len(notes)-1].Level)
}

func TestSession_LoadOrders_PartialItemFailure_AbortsWholeRefresh(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	orderA := testOrder("ORD-1001", model.StatusPending)
	orderB := testOrder("ORD-1002", model.StatusReady)

	mockStore := new(MockStore)
	mockStore.On("FetchOrders", ctx).Return([]model.Order{orderA, orderB}, nil)
	mockStore.On("FetchItems", mock.Anything, orderA.ID).Return([]model.OrderItem{}, nil).Maybe()
	mockStore.On("FetchItems", mock.Anything, orderB.ID).Return(nil, errors.New("timeout"))

	sess := New(mockStore, nil, logger)

	err := sess.LoadOrders(ctx)

	assert.Equal(t, model.ErrFetchFailed, err)
	assert.Empty(t, sess.Snapshot())
}

func TestSession_LoadOrders_StoreUnavailable(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	sess := New(store.NewUnconfigured(), nil, logger)

	err := sess.LoadOrders(ctx)

	assert.Equal(t, model.ErrStoreUnavailable, err)
	// A missing store is a persistent setup notice, not a toast.
	assert.Empty(t, sess.Notifications())
}

func TestSession_LoadOrders_StaleResultDropped(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	oldOrder := testOrder("ORD-OLD", model.StatusPending)
	newOrder := testOrder("ORD-NEW", model.StatusPending)

	release := make(chan struct{})

	mockStore := new(MockStore)
	// First fetch stalls until released, simulating a slow request
	// overtaken by a newer one.
	mockStore.On("FetchOrders", ctx).Run(func(mock.Arguments) {
		<-release
	}).Return([]model.Order{oldOrder}, nil).Once()
	mockStore.On("FetchOrders", ctx).Return([]model.Order{newOrder}, nil).Once()
	mockStore.On("FetchItems", mock.Anything, mock.Anything).Return([]model.OrderItem{}, nil)

	sess := New(mockStore, nil, logger)

	done := make(chan error, 1)
	go func() { done <- sess.LoadOrders(ctx) }()
	time.Sleep(50 * time.Millisecond) // let the slow fetch claim its sequence

	require.NoError(t, sess.LoadOrders(ctx))
	close(release)
	require.NoError(t, <-done)

	// The slow fetch finished last but must not overwrite the newer
	// snapshot.
	snapshot := sess.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "ORD-NEW", snapshot[0].OrderNumber)
}

func TestSession_AdvanceStatus_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	order := testOrder("ORD-1001", model.StatusPreparing)
	before := order.UpdatedAt

	mockStore := new(MockStore)
	mockStore.On("FetchOrders", ctx).Return([]model.Order{order}, nil)
	mockStore.On("FetchItems", mock.Anything, order.ID).Return([]model.OrderItem{}, nil)
	mockStore.On("UpdateOrderStatus", ctx, order.ID, model.StatusReady, mock.AnythingOfType("time.Time")).Return(nil)
	mockStore.On("InsertStatusHistory", ctx, order.ID, model.StatusReady, "", "dashboard").Return(nil)

	sess := New(mockStore, nil, logger)
	require.NoError(t, sess.LoadOrders(ctx))

	next, err := sess.AdvanceStatus(ctx, order.ID)

	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, next)

	snapshot := sess.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, model.StatusReady, snapshot[0].OrderStatus)
	assert.True(t, snapshot[0].UpdatedAt.After(before))
	// Only order_status and updated_at change on the local patch.
	assert.Equal(t, order.OrderNumber, snapshot[0].OrderNumber)
	assert.Equal(t, order.TotalAmount, snapshot[0].TotalAmount)
	assert.Equal(t, order.CreatedAt, snapshot[0].CreatedAt)

	mockStore.AssertExpectations(t)
	mockStore.AssertNumberOfCalls(t, "InsertStatusHistory", 1)
}

func TestSession_AdvanceStatus_TerminalOrder_NoStoreWrite(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	for _, status := range []model.OrderStatus{model.StatusDelivered, model.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			order := testOrder("ORD-1001", status)

			mockStore := new(MockStore)
			mockStore.On("FetchOrders", ctx).Return([]model.Order{order}, nil)
			mockStore.On("FetchItems", mock.Anything, order.ID).Return([]model.OrderItem{}, nil)

			sess := New(mockStore, nil, logger)
			require.NoError(t, sess.LoadOrders(ctx))

			_, err := sess.AdvanceStatus(ctx, order.ID)

			assert.Equal(t, model.ErrTerminalStatus, err)
			mockStore.AssertNotCalled(t, "UpdateOrderStatus")
			mockStore.AssertNotCalled(t, "InsertStatusHistory")
		})
	}
}

func TestSession_AdvanceStatus_UnknownOrder(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockStore := new(MockStore)
	mockStore.On("FetchOrders", ctx).Return([]model.Order{}, nil)

	sess := New(mockStore, nil, logger)
	require.NoError(t, sess.LoadOrders(ctx))

	_, err := sess.AdvanceStatus(ctx, uuid.New())

	assert.Equal(t, model.ErrOrderNotFound, err)
	mockStore.AssertNotCalled(t, "UpdateOrderStatus")
}

func TestSession_AdvanceStatus_WriteFailure_KeepsPreAttemptStatus(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	order := testOrder("ORD-1001", model.StatusConfirmed)

	mockStore := new(MockStore)
	mockStore.On("FetchOrders", ctx).Return([]model.Order{order}, nil)
	mockStore.On("FetchItems", mock.Anything, order.ID).Return([]model.OrderItem{}, nil)
	mockStore.On("UpdateOrderStatus", ctx, order.ID, model.StatusPreparing, mock.AnythingOfType("time.Time")).
		Return(errors.New("write rejected")).Once()

	sess := New(mockStore, nil, logger)
	require.NoError(t, sess.LoadOrders(ctx))

	_, err := sess.AdvanceStatus(ctx, order.ID)

	assert.Equal(t, model.ErrTransitionFailed, err)

	// The failed transition is never applied optimistically.
	snapshot := sess.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, model.StatusConfirmed, snapshot[0].OrderStatus)
	assert.Equal(t, order.UpdatedAt, snapshot[0].UpdatedAt)

	mockStore.AssertNotCalled(t, "InsertStatusHistory")

	// A failed advance clears the in-flight flag so retry is possible.
	mockStore.On("UpdateOrderStatus", ctx, order.ID, model.StatusPreparing, mock.AnythingOfType("time.Time")).Return(nil)
	mockStore.On("InsertStatusHistory", ctx, order.ID, model.StatusPreparing, "", "dashboard").Return(nil)

	next, err := sess.AdvanceStatus(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPreparing, next)
}

func TestSession_AdvanceStatus_SingleInFlightPerOrder(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	order := testOrder("ORD-1001", model.StatusPending)
	release := make(chan struct{})

	mockStore := new(MockStore)
	mockStore.On("FetchOrders", ctx).Return([]model.Order{order}, nil)
	mockStore.On("FetchItems", mock.Anything, order.ID).Return([]model.OrderItem{}, nil)
	mockStore.On("UpdateOrderStatus", ctx, order.ID, model.StatusConfirmed, mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) { <-release }).Return(nil)
	mockStore.On("InsertStatusHistory", ctx, order.ID, model.StatusConfirmed, "", "dashboard").Return(nil)

	sess := New(mockStore, nil, logger)
	require.NoError(t, sess.LoadOrders(ctx))

	done := make(chan error, 1)
	go func() {
		_, err := sess.AdvanceStatus(ctx, order.ID)
		done <- err
	}()
	time.Sleep(50 * time.Millisecond) // let the first advance reach the store

	_, err := sess.AdvanceStatus(ctx, order.ID)
	assert.Equal(t, model.ErrAdvanceInFlight, err)

	close(release)
	require.NoError(t, <-done)
}

func TestSession_ToggleUrgent(t *testing.T) {
	logger := zerolog.Nop()
	sess := New(new(MockStore), nil, logger)

	id := uuid.New()

	assert.True(t, sess.ToggleUrgent(id))
	_, flagged := sess.Urgent()[id]
	assert.True(t, flagged)

	assert.False(t, sess.ToggleUrgent(id))
	_, flagged = sess.Urgent()[id]
	assert.False(t, flagged)
}

func TestSession_Start_SubscribesAndReloadsOnChange(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	order := testOrder("ORD-1001", model.StatusPending)

	mockStore := new(MockStore)
	mockStore.On("FetchOrders", ctx).Return([]model.Order{order}, nil)
	mockStore.On("FetchItems", mock.Anything, order.ID).Return([]model.OrderItem{}, nil)

	mockSub := new(MockSubscription)
	mockSub.On("Unsubscribe").Return()

	mockFeed := new(MockFeed)
	mockFeed.On("Subscribe", ctx, "orders").Return(mockSub, nil)

	sess := New(mockStore, mockFeed, logger)

	require.NoError(t, sess.Start(ctx))
	mockStore.AssertNumberOfCalls(t, "FetchOrders", 1)

	// A change event means the snapshot may be stale: full reload.
	require.NotNil(t, mockFeed.onChange)
	mockFeed.onChange()
	mockStore.AssertNumberOfCalls(t, "FetchOrders", 2)

	sess.Close()
	mockSub.AssertCalled(t, "Unsubscribe")
}

func TestSession_Notifications_ReadFlags(t *testing.T) {
	logger := zerolog.Nop()
	sess := New(new(MockStore), nil, logger)

	sess.notify("info", "first")
	sess.notify("error", "second")

	notes := sess.Notifications()
	require.Len(t, notes, 2)
	assert.False(t, notes[0].Read)
	assert.False(t, notes[1].Read)

	sess.MarkNotificationsRead()

	for _, n := range sess.Notifications() {
		assert.True(t, n.Read)
	}
}
