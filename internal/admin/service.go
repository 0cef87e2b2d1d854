package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/domain"
)

var ErrForbidden = errors.New("admin access required")

type Backend interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, token string, id domain.ID, form domain.ProductForm) error
	DeleteProduct(ctx context.Context, token string, id domain.ID) error
}

type OrderLister interface {
	List(ctx context.Context, token string) ([]domain.Order, error)
}

// View is the admin panel: every product and every order. A section that
// failed to load is empty and carries the message to show in its place.
type View struct {
	Products      []domain.Product     `json:"products"`
	Orders        []domain.Order       `json:"orders"`
	Statuses      []domain.OrderStatus `json:"statuses"`
	ProductsError string               `json:"products_error,omitempty"`
	OrdersError   string               `json:"orders_error,omitempty"`
}

type Service struct {
	backend Backend
	orders  OrderLister
	log     *slog.Logger
}

func NewService(backend Backend, orders OrderLister, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{backend: backend, orders: orders, log: log}
}

// View loads products and orders independently, so one failing list does
// not hide the other. Without a token the order list is empty and no order
// request is made.
func (s *Service) View(ctx context.Context, token string) *View {
	view := &View{
		Products: []domain.Product{},
		Orders:   []domain.Order{},
		Statuses: domain.OrderStatuses,
	}

	if products, err := s.products(ctx); err != nil {
		s.log.ErrorContext(ctx, "admin products unavailable", "error", err)
		view.ProductsError = backend.MessageOr(err, "Failed to fetch products")
	} else {
		view.Products = products
	}

	if token == "" {
		return view
	}
	orders, err := s.orders.List(ctx, token)
	if err != nil {
		s.log.ErrorContext(ctx, "admin orders unavailable", "error", err)
		view.OrdersError = backend.MessageOr(err, "Failed to fetch orders")
		return view
	}
	if orders != nil {
		view.Orders = orders
	}
	return view
}

// UpdateProduct saves the form and returns the re-fetched product list.
func (s *Service) UpdateProduct(ctx context.Context, token string, isAdmin bool, id domain.ID, form domain.ProductForm) ([]domain.Product, error) {
	if !isAdmin {
		return nil, ErrForbidden
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if err := s.backend.UpdateProduct(ctx, token, id, form); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.log.InfoContext(ctx, "product updated", "product_id", id)
	return s.products(ctx)
}

// DeleteProduct removes the product and returns the re-fetched product list.
func (s *Service) DeleteProduct(ctx context.Context, token string, isAdmin bool, id domain.ID) ([]domain.Product, error) {
	if !isAdmin {
		return nil, ErrForbidden
	}
	if err := s.backend.DeleteProduct(ctx, token, id); err != nil {
		return nil, fmt.Errorf("delete product: %w", err)
	}
	s.log.InfoContext(ctx, "product deleted", "product_id", id)
	return s.products(ctx)
}

func (s *Service) products(ctx context.Context) ([]domain.Product, error) {
	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}
