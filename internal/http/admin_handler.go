package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/storefront/internal/admin"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/session"
)

type AdminHandler struct {
	base
	admin *admin.Service
}

func NewAdminHandler(svc *admin.Service, store session.Store, timeout time.Duration, log *slog.Logger) *AdminHandler {
	return &AdminHandler{base: newBase(store, timeout, log), admin: svc}
}

func (h *AdminHandler) View(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, h.admin.View(ctx, sess.Token))
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
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

	var form domain.ProductForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	products, err := h.admin.UpdateProduct(ctx, sess.Token, sess.IsAdmin(), domain.ID(chi.URLParam(r, "id")), form)
	if err != nil {
		h.handleError(w, r, err, "Failed to update product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
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

	products, err := h.admin.DeleteProduct(ctx, sess.Token, sess.IsAdmin(), domain.ID(chi.URLParam(r, "id")))
	if err != nil {
		h.handleError(w, r, err, "Failed to delete product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}
