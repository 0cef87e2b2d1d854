package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fjod/storefront/internal/session"
)

type Handlers struct {
	Auth     *AuthHandler
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Admin    *AdminHandler
}

type RouterConfig struct {
	RequestTimeout     time.Duration
	Cookie             CookieConfig
	MaxRequestBodySize int64
}

func NewRouter(h Handlers, store session.Store, cfg RouterConfig, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(store, cfg.Cookie, log))

		r.Post("/login", h.Auth.Login)
		r.Post("/register", h.Auth.Register)
		r.Post("/logout", h.Auth.Logout)
		r.Get("/me", h.Auth.Me)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Catalog.List)
			r.Post("/{id}/increment", h.Catalog.Increment)
			r.Post("/{id}/decrement", h.Catalog.Decrement)
			r.Post("/{id}/cart", h.Catalog.AddToCart)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Post("/{id}/increment", h.Cart.Increment)
			r.Post("/{id}/decrement", h.Cart.Decrement)
			r.Delete("/{id}", h.Cart.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.Checkout.Open)
			r.Delete("/", h.Checkout.Cancel)
			r.Post("/order", h.Checkout.PlaceOrder)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.ListOrders)
			r.Put("/{id}/status", h.Orders.UpdateStatus)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/", h.Admin.View)
			r.Put("/products/{id}", h.Admin.UpdateProduct)
			r.Delete("/products/{id}", h.Admin.DeleteProduct)
		})
	})

	return r
}
