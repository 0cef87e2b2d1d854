package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/session"
)

func seedOrders(fake *fakeBackend) {
	fake.orders = []map[string]any{
		{"_id": "o1", "status": "pending", "pricing": map[string]any{"total": 5446}},
		{"_id": "o2"},
	}
}

func TestListOrders_UserCannotManage(t *testing.T) {
	fake := newFakeBackend()
	seedOrders(fake)
	app := newTestApp(t, fake)
	id := app.login(t, "user@x.com")

	rec, _ := app.do(t, id, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	view := decode[OrdersViewDTO](t, rec)
	assert.False(t, view.CanManage)
	assert.Empty(t, view.Statuses)
	require.Len(t, view.Orders, 2)
	assert.Equal(t, domain.OrderStatusPending, view.Orders[1].Status)
	assert.Equal(t, int64(0), view.Orders[1].Pricing.Total)
}

func TestUpdateStatus_Admin(t *testing.T) {
	fake := newFakeBackend()
	seedOrders(fake)
	app := newTestApp(t, fake)
	id := app.login(t, "admin@admin.com")

	rec, _ := app.do(t, id, http.MethodPut, "/orders/o1/status", UpdateStatusRequestDTO{Status: domain.OrderStatusShipped})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	view := decode[OrdersViewDTO](t, rec)
	assert.True(t, view.CanManage)
	assert.Equal(t, domain.OrderStatuses, view.Statuses)
	assert.Equal(t, domain.OrderStatusShipped, view.Orders[0].Status)

	calls := fake.calls()
	assert.Equal(t, []string{"PUT /orders/o1/status", "GET /orders"}, calls[len(calls)-2:])
}

func TestUpdateStatus_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		email  string
		status domain.OrderStatus
		code   int
	}{
		{"non admin", "user@x.com", domain.OrderStatusShipped, http.StatusForbidden},
		{"invalid status", "admin@admin.com", "refunded", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeBackend()
			seedOrders(fake)
			app := newTestApp(t, fake)
			id := app.login(t, tt.email)

			rec, _ := app.do(t, id, http.MethodPut, "/orders/o1/status", UpdateStatusRequestDTO{Status: tt.status})

			assert.Equal(t, tt.code, rec.Code)
			assert.NotContains(t, fake.calls(), "PUT /orders/o1/status")
		})
	}
}

func TestListOrders_ExpiredToken(t *testing.T) {
	fake := newFakeBackend()
	app := newTestApp(t, fake)
	id := app.login(t, "user@x.com")
	fake.mu.Lock()
	fake.userToken = "rotated"
	fake.mu.Unlock()

	rec, _ := app.do(t, id, http.MethodGet, "/orders", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Your session has expired. Please login again.", resp.Error)
	assert.Equal(t, LoginPath, resp.Redirect)
}

// slowOrders holds UpdateOrderStatus until release is closed.
type slowOrders struct {
	entered chan struct{}
	release chan struct{}
}

func (b *slowOrders) ListOrders(_ context.Context, _ string) ([]domain.Order, error) {
	return []domain.Order{{ID: "o1"}, {ID: "o2"}}, nil
}

func (b *slowOrders) UpdateOrderStatus(_ context.Context, _ string, _ domain.ID, _ domain.OrderStatus) error {
	close(b.entered)
	<-b.release
	return nil
}

func TestOrdersView_MarksInFlightUpdates(t *testing.T) {
	backend := &slowOrders{entered: make(chan struct{}), release: make(chan struct{})}
	svc := orders.NewService(backend, nil, nil)
	store := session.NewMemoryStore(time.Hour)
	t.Cleanup(func() { store.Close() })
	h := NewOrdersHandler(svc, store, time.Second, nil)

	sess := session.New()
	sess.Login(makeToken("admin"), "Admin", "admin")
	list, err := svc.List(context.Background(), sess.Token)
	require.NoError(t, err)

	assert.Empty(t, h.ordersView(sess, list).Updating)

	done := make(chan error, 1)
	go func() {
		_, err := svc.UpdateStatus(context.Background(), sess.Token, true, "o1", domain.OrderStatusShipped)
		done <- err
	}()
	<-backend.entered

	view := h.ordersView(sess, list)
	assert.Equal(t, map[domain.ID]bool{"o1": true}, view.Updating)

	close(backend.release)
	require.NoError(t, <-done)
	assert.Empty(t, h.ordersView(sess, list).Updating)
}
