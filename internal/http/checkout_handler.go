package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/session"
)

type CheckoutHandler struct {
	base
	checkout *checkout.Service
	cart     *cart.Service
}

func NewCheckoutHandler(svc *checkout.Service, carts *cart.Service, store session.Store, timeout time.Duration, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{base: newBase(store, timeout, log), checkout: svc, cart: carts}
}

// CheckoutViewDTO is the opened modal with its form defaults.
type CheckoutViewDTO struct {
	Checkout       checkout.State         `json:"checkout"`
	Pricing        domain.Pricing         `json:"pricing"`
	PaymentMethods []domain.PaymentMethod `json:"payment_methods"`
	Country        string                 `json:"country"`
	SameAsShipping bool                   `json:"same_as_shipping"`
	PaymentMethod  domain.PaymentMethod   `json:"payment_method"`
}

type PlaceOrderResponseDTO struct {
	checkout.Result
	Message string `json:"message"`
}

// Open re-fetches the cart and shows the checkout modal for it, so the
// order is always built from the server's cart.
func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
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
	if err := h.checkout.Open(&sess.Checkout, sess.Cart); err != nil {
		if !h.saveOrFail(ctx, w, sess) {
			return
		}
		h.handleError(w, r, err, "Failed to open checkout")
		return
	}
	if !h.saveOrFail(ctx, w, sess) {
		return
	}
	respondJSON(w, http.StatusOK, CheckoutViewDTO{
		Checkout:       sess.Checkout.Current(),
		Pricing:        cartView(sess).Pricing,
		PaymentMethods: []domain.PaymentMethod{domain.PaymentCOD, domain.PaymentCard, domain.PaymentUPI},
		Country:        domain.DefaultCountry,
		SameAsShipping: true,
		PaymentMethod:  domain.PaymentCOD,
	})
}

func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := h.checkout.Cancel(&sess.Checkout); err != nil {
		h.handleError(w, r, err, "Failed to close checkout")
		return
	}
	if !h.saveOrFail(ctx, w, sess) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"checkout": sess.Checkout.Current()})
}

// PlaceOrder submits the modal. The Submitting state is saved before the
// backend call so a repeated submit is refused while one is in flight.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
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

	var form checkout.Form
	if err := decodeJSON(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.checkout.Prepare(&sess.Checkout, sess.Cart, form)
	if err != nil {
		h.handleError(w, r, err, "Failed to place order")
		return
	}
	if !h.saveOrFail(ctx, w, sess) {
		return
	}

	res, err := h.checkout.Place(ctx, sess.Token, &sess.Checkout, order)
	if err == nil {
		sess.Cart = []domain.CartItem{}
	}

	// the request context may have expired with the backend call
	saveCtx, cancelSave := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancelSave()
	if !h.saveOrFail(saveCtx, w, sess) {
		return
	}

	if err != nil {
		h.handleError(w, r, err, "Failed to place order")
		return
	}
	respondJSON(w, http.StatusCreated, PlaceOrderResponseDTO{
		Result:  *res,
		Message: fmt.Sprintf("Order placed successfully! Order ID: %s", res.OrderID),
	})
}
