package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/domain"
)

var ErrNoProducts = errors.New("no products found in database")

type Backend interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	AddToCart(ctx context.Context, token string, productID domain.ID, quantity int) error
}

// Pending holds per-product counters shown next to each catalog entry. They
// are view state only and never go to the backend.
type Pending map[domain.ID]int

// Adjust changes the counter by delta without going below zero.
func (p Pending) Adjust(id domain.ID, delta int) int {
	n := p[id] + delta
	if n <= 0 {
		delete(p, id)
		return 0
	}
	p[id] = n
	return n
}

// Entry is a product as shown in the catalog.
type Entry struct {
	domain.Product
	Pending int `json:"pending"`
}

type Service struct {
	backend Backend
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// List returns the catalog with the session's pending counters.
func (s *Service) List(ctx context.Context, pending Pending) ([]Entry, error) {
	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return nil, ErrNoProducts
	}

	entries := make([]Entry, 0, len(products))
	for _, p := range products {
		entries = append(entries, Entry{Product: p, Pending: pending[p.ID]})
	}
	return entries, nil
}

// AddToCart adds one unit of the product to the server cart and bumps its
// pending counter. A missing or rejected token means the user must log in.
func (s *Service) AddToCart(ctx context.Context, token string, pending Pending, id domain.ID) (int, error) {
	if token == "" {
		return 0, domain.ErrLoginRequired
	}
	if err := s.backend.AddToCart(ctx, token, id, 1); err != nil {
		if backend.IsAuthError(err) {
			return 0, fmt.Errorf("%w: %w", domain.ErrLoginRequired, err)
		}
		return 0, fmt.Errorf("add to cart: %w", err)
	}
	return pending.Adjust(id, 1), nil
}
