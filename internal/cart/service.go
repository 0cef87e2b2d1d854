package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
)

var ErrItemNotInCart = errors.New("item is not in the cart")

// Backend is the part of the REST client the cart needs.
type Backend interface {
	GetCart(ctx context.Context, token string) (json.RawMessage, error)
	UpdateCartItem(ctx context.Context, token string, id domain.ID, quantity int) (json.RawMessage, error)
	RemoveCartItem(ctx context.Context, token string, id domain.ID) (json.RawMessage, error)
}

// Service reconciles the local cart copy with the backend. Every operation
// returns the server's cart, normalized; callers replace their copy with it.
type Service struct {
	backend Backend
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

func (s *Service) Refresh(ctx context.Context, token string) ([]domain.CartItem, error) {
	raw, err := s.backend.GetCart(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	return Normalize(raw), nil
}

func (s *Service) Increment(ctx context.Context, token string, items []domain.CartItem, id domain.ID) ([]domain.CartItem, error) {
	item, ok := find(items, id)
	if !ok {
		return nil, ErrItemNotInCart
	}
	return s.setQuantity(ctx, token, id, item.Quantity+1)
}

// Decrement lowers the quantity by one, removing the item when it is at 1.
func (s *Service) Decrement(ctx context.Context, token string, items []domain.CartItem, id domain.ID) ([]domain.CartItem, error) {
	item, ok := find(items, id)
	if !ok {
		return nil, ErrItemNotInCart
	}
	if item.Quantity > 1 {
		return s.setQuantity(ctx, token, id, item.Quantity-1)
	}
	return s.Remove(ctx, token, items, id)
}

func (s *Service) Remove(ctx context.Context, token string, items []domain.CartItem, id domain.ID) ([]domain.CartItem, error) {
	if _, ok := find(items, id); !ok {
		return nil, ErrItemNotInCart
	}
	raw, err := s.backend.RemoveCartItem(ctx, token, id)
	if err != nil {
		return nil, fmt.Errorf("remove cart item: %w", err)
	}
	return Normalize(raw), nil
}

func (s *Service) setQuantity(ctx context.Context, token string, id domain.ID, quantity int) ([]domain.CartItem, error) {
	raw, err := s.backend.UpdateCartItem(ctx, token, id, quantity)
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return Normalize(raw), nil
}

func find(items []domain.CartItem, id domain.ID) (domain.CartItem, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.CartItem{}, false
}
