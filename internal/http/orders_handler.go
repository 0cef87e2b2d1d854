package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/session"
)

type OrdersHandler struct {
	base
	orders *orders.Service
}

func NewOrdersHandler(svc *orders.Service, store session.Store, timeout time.Duration, log *slog.Logger) *OrdersHandler {
	return &OrdersHandler{base: newBase(store, timeout, log), orders: svc}
}

// OrdersViewDTO is the order history. CanManage only decides whether status
// controls are shown; the backend still enforces permissions. Updating marks
// the orders whose status change is still in flight.
type OrdersViewDTO struct {
	Orders    []domain.Order       `json:"orders"`
	CanManage bool                 `json:"can_manage"`
	Statuses  []domain.OrderStatus `json:"statuses,omitempty"`
	Updating  map[domain.ID]bool   `json:"updating,omitempty"`
}

type UpdateStatusRequestDTO struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *OrdersHandler) ordersView(s *session.Session, list []domain.Order) OrdersViewDTO {
	view := OrdersViewDTO{Orders: list, CanManage: s.IsAdmin()}
	if view.CanManage {
		view.Statuses = domain.OrderStatuses
	}
	for _, o := range list {
		if h.orders.Updating(o.ID) {
			if view.Updating == nil {
				view.Updating = map[domain.ID]bool{}
			}
			view.Updating[o.ID] = true
		}
	}
	return view
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	if !sess.LoggedIn() {
		h.loginRequired(w, r)
		return
	}

	list, err := h.orders.List(ctx, sess.Token)
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch orders")
		return
	}
	respondJSON(w, http.StatusOK, h.ordersView(sess, list))
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	if !sess.LoggedIn() {
		h.loginRequired(w, r)
		return
	}

	id := domain.ID(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id is required")
		return
	}

	var req UpdateStatusRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	list, err := h.orders.UpdateStatus(ctx, sess.Token, sess.IsAdmin(), id, req.Status)
	if err != nil {
		h.handleError(w, r, err, "Failed to update status")
		return
	}
	respondJSON(w, http.StatusOK, h.ordersView(sess, list))
}
