package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/admin"
	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/circuitbreaker"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/session"
)

const LoginPath = "/login"

type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// base carries what every handler needs.
type base struct {
	store   session.Store
	timeout time.Duration
	log     *slog.Logger
}

func newBase(store session.Store, timeout time.Duration, log *slog.Logger) base {
	if log == nil {
		log = slog.Default()
	}
	return base{store: store, timeout: timeout, log: log}
}

func (b base) context(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), b.timeout)
}

func (b base) save(ctx context.Context, s *session.Session) error {
	if err := b.store.Save(ctx, s); err != nil {
		b.log.ErrorContext(ctx, "failed to save session", "session_id", s.ID, "error", err)
		return err
	}
	return nil
}

// saveOrFail saves the session and writes a 500 when that fails.
func (b base) saveOrFail(ctx context.Context, w http.ResponseWriter, s *session.Session) bool {
	if err := b.save(ctx, s); err != nil {
		respondError(w, http.StatusInternalServerError, "session_error", "failed to save session")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps service errors to HTTP. fallback is the user-facing
// message when the backend gave none.
func (b base) handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	ctx := r.Context()

	var fieldErr *domain.FieldError
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, domain.ErrLoginRequired) || backend.IsAuthError(err):
		b.loginRequired(w, r)
		return
	case errors.As(err, &fieldErr):
		b.log.InfoContext(ctx, "request rejected", "path", r.URL.Path, "error", err)
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   fieldErr.Error(),
			Code:    "invalid_form",
			Details: fieldErr.Field,
		})
		return
	}

	var status int
	var code, message string

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		status, code, message = http.StatusBadRequest, "empty_cart", "Your cart is empty!"
	case errors.Is(err, checkout.ErrInvalidPaymentMethod):
		status, code, message = http.StatusBadRequest, "invalid_payment_method", checkout.ErrInvalidPaymentMethod.Error()
	case errors.Is(err, checkout.ErrIllegalTransition):
		status, code, message = http.StatusConflict, "invalid_checkout_state", checkout.ErrIllegalTransition.Error()
	case errors.Is(err, cart.ErrItemNotInCart):
		status, code, message = http.StatusNotFound, "not_in_cart", cart.ErrItemNotInCart.Error()
	case errors.Is(err, catalog.ErrNoProducts):
		status, code, message = http.StatusNotFound, "no_products", "No products found in database"
	case errors.Is(err, orders.ErrInvalidStatus):
		status, code, message = http.StatusBadRequest, "invalid_status", orders.ErrInvalidStatus.Error()
	case errors.Is(err, orders.ErrForbidden):
		status, code, message = http.StatusForbidden, "forbidden", orders.ErrForbidden.Error()
	case errors.Is(err, admin.ErrForbidden):
		status, code, message = http.StatusForbidden, "forbidden", admin.ErrForbidden.Error()
	case errors.Is(err, orders.ErrUpdateInProgress):
		status, code, message = http.StatusConflict, "update_in_progress", orders.ErrUpdateInProgress.Error()
	case errors.Is(err, circuitbreaker.ErrOpen):
		status, code, message = http.StatusServiceUnavailable, "service_unavailable", fallback
	case errors.Is(err, context.DeadlineExceeded):
		status, code, message = http.StatusGatewayTimeout, "timeout", fallback
	case errors.As(err, &apiErr):
		message = backend.MessageOr(err, fallback)
		if apiErr.StatusCode >= http.StatusInternalServerError {
			status, code = http.StatusBadGateway, "backend_error"
		} else {
			status, code = apiErr.StatusCode, "backend_rejected"
		}
	case errors.Is(err, backend.ErrTransport), errors.Is(err, backend.ErrDecode):
		status, code, message = http.StatusBadGateway, "backend_unavailable", fallback
	default:
		status, code, message = http.StatusInternalServerError, "internal_error", fallback
	}

	if status >= http.StatusInternalServerError {
		b.log.ErrorContext(ctx, "request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		b.log.InfoContext(ctx, "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	respondError(w, status, code, message)
}

// loginRequired sends the user to the login page. A GET view remembers
// itself so login can return there.
func (b base) loginRequired(w http.ResponseWriter, r *http.Request) {
	message := "Please login to continue"
	if s := session.FromContext(r.Context()); s != nil {
		if s.LoggedIn() {
			message = "Your session has expired. Please login again."
		}
		if r.Method == http.MethodGet {
			s.RedirectAfterLogin = r.URL.Path
			_ = b.save(r.Context(), s)
		}
	}
	respondJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:    message,
		Code:     "login_required",
		Redirect: LoginPath,
	})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
