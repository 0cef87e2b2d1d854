package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/session"
)

type CatalogHandler struct {
	base
	catalog *catalog.Service
}

func NewCatalogHandler(svc *catalog.Service, store session.Store, timeout time.Duration, log *slog.Logger) *CatalogHandler {
	return &CatalogHandler{base: newBase(store, timeout, log), catalog: svc}
}

type PendingResponseDTO struct {
	ProductID domain.ID `json:"product_id"`
	Pending   int       `json:"pending"`
	Message   string    `json:"message,omitempty"`
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	entries, err := h.catalog.List(ctx, sess.Pending)
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch products")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": entries})
}

func (h *CatalogHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, 1)
}

func (h *CatalogHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, -1)
}

func (h *CatalogHandler) adjust(w http.ResponseWriter, r *http.Request, delta int) {
	ctx, cancel := h.context(r)
	defer cancel()

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id := domain.ID(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id is required")
		return
	}

	n := sess.Pending.Adjust(id, delta)
	if !h.saveOrFail(ctx, w, sess) {
		return
	}
	respondJSON(w, http.StatusOK, PendingResponseDTO{ProductID: id, Pending: n})
}

func (h *CatalogHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id := domain.ID(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id is required")
		return
	}

	n, err := h.catalog.AddToCart(ctx, sess.Token, sess.Pending, id)
	if err != nil {
		h.handleError(w, r, err, "Failed to add to cart")
		return
	}
	if !h.saveOrFail(ctx, w, sess) {
		return
	}
	respondJSON(w, http.StatusCreated, PendingResponseDTO{ProductID: id, Pending: n, Message: "Added to cart!"})
}
