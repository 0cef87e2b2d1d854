package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
)

type BackendMock struct {
	mu        sync.Mutex
	orders    []domain.Order
	listErr   error
	updateErr error
	updates   []domain.OrderStatus
	lists     int
	// block, when set, holds UpdateOrderStatus until closed
	block   chan struct{}
	entered chan struct{}
}

func (m *BackendMock) ListOrders(_ context.Context, _ string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	return m.orders, m.listErr
}

func (m *BackendMock) UpdateOrderStatus(_ context.Context, _ string, id domain.ID, status domain.OrderStatus) error {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, status)
	if m.updateErr != nil {
		return m.updateErr
	}
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Status = status
		}
	}
	return nil
}

type PublisherMock struct {
	events []events.Event
}

func (m *PublisherMock) Publish(_ context.Context, e events.Event) error {
	m.events = append(m.events, e)
	return nil
}

func TestUpdateStatus_RefetchesAfterUpdate(t *testing.T) {
	backend := &BackendMock{orders: []domain.Order{{ID: "o1", Status: domain.OrderStatusPending}}}
	publisher := &PublisherMock{}
	svc := NewService(backend, publisher, nil)

	orders, err := svc.UpdateStatus(context.Background(), "t", true, "o1", domain.OrderStatusShipped)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusShipped, orders[0].Status)
	assert.Equal(t, 1, backend.lists)
	assert.False(t, svc.Updating("o1"))
	require.Len(t, publisher.events, 1)
	assert.Equal(t, events.TypeOrderStatusChanged, publisher.events[0].Type)
}

func TestUpdateStatus_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		isAdmin bool
		status  domain.OrderStatus
		want    error
	}{
		{"not admin", false, domain.OrderStatusShipped, ErrForbidden},
		{"unknown status", true, "refunded", ErrInvalidStatus},
		{"empty status", true, "", ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &BackendMock{}
			svc := NewService(backend, nil, nil)

			_, err := svc.UpdateStatus(context.Background(), "t", tt.isAdmin, "o1", tt.status)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, backend.updates)
		})
	}
}

func TestUpdateStatus_BackendError(t *testing.T) {
	backend := &BackendMock{updateErr: errors.New("Failed to update status")}
	svc := NewService(backend, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "t", true, "o1", domain.OrderStatusDelivered)
	assert.Error(t, err)
	assert.Equal(t, 0, backend.lists)
	assert.False(t, svc.Updating("o1"))
}

func TestUpdateStatus_SameOrderGuard(t *testing.T) {
	backend := &BackendMock{
		orders:  []domain.Order{{ID: "o1"}, {ID: "o2"}},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 2),
	}
	svc := NewService(backend, nil, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.UpdateStatus(ctx, "t", true, "o1", domain.OrderStatusShipped)
		done <- err
	}()
	<-backend.entered
	assert.True(t, svc.Updating("o1"))

	_, err := svc.UpdateStatus(ctx, "t", true, "o1", domain.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrUpdateInProgress)

	// a different order is not blocked
	other := make(chan error, 1)
	go func() {
		_, err := svc.UpdateStatus(ctx, "t", true, "o2", domain.OrderStatusProcessing)
		other <- err
	}()
	<-backend.entered

	close(backend.block)
	require.NoError(t, <-done)
	require.NoError(t, <-other)
	assert.False(t, svc.Updating("o1"))
	assert.ElementsMatch(t, []domain.OrderStatus{domain.OrderStatusShipped, domain.OrderStatusProcessing}, backend.updates)
}
