package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/session"
)

type CartHandler struct {
	base
	cart *cart.Service
}

func NewCartHandler(svc *cart.Service, store session.Store, timeout time.Duration, log *slog.Logger) *CartHandler {
	return &CartHandler{base: newBase(store, timeout, log), cart: svc}
}

type CartViewDTO struct {
	Items    []domain.CartItem `json:"items"`
	Pricing  domain.Pricing    `json:"pricing"`
	Checkout checkout.State    `json:"checkout"`
}

func cartView(s *session.Session) CartViewDTO {
	return CartViewDTO{
		Items:    s.Cart,
		Pricing:  cart.ComputePricing(s.Cart),
		Checkout: s.Checkout.Current(),
	}
}

type cartMutation func(ctx context.Context, token string, items []domain.CartItem, id domain.ID) ([]domain.CartItem, error)

// GetCart re-fetches the cart from the backend; pricing is recomputed on
// every view.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
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

	items, err := h.cart.Refresh(ctx, sess.Token)
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch cart")
		return
	}
	sess.Cart = items
	if !h.saveOrFail(ctx, w, sess) {
		return
	}
	respondJSON(w, http.StatusOK, cartView(sess))
}

func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cart.Increment, "Failed to update cart")
}

func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cart.Decrement, "Failed to update cart")
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cart.Remove, "Failed to remove item")
}

// mutate runs one cart change and replaces the session's cart with the
// server's answer. On failure the local cart is left as it was.
func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, op cartMutation, fallback string) {
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
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id is required")
		return
	}

	items, err := op(ctx, sess.Token, sess.Cart, id)
	if err != nil {
		h.handleError(w, r, err, fallback)
		return
	}
	sess.Cart = items
	if !h.saveOrFail(ctx, w, sess) {
		return
	}
	respondJSON(w, http.StatusOK, cartView(sess))
}
