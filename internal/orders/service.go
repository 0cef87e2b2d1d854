package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
)

var (
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrForbidden        = errors.New("only admins can change order status")
	ErrUpdateInProgress = errors.New("a status update for this order is already in progress")
)

type Backend interface {
	ListOrders(ctx context.Context, token string) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, token string, id domain.ID, status domain.OrderStatus) error
}

type Service struct {
	backend   Backend
	publisher events.Publisher
	log       *slog.Logger

	mu       sync.Mutex
	updating map[domain.ID]struct{}
}

func NewService(backend Backend, publisher events.Publisher, log *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		backend:   backend,
		publisher: publisher,
		log:       log,
		updating:  make(map[domain.ID]struct{}),
	}
}

// List fetches the order history. Admin tokens see every order.
func (s *Service) List(ctx context.Context, token string) ([]domain.Order, error) {
	orders, err := s.backend.ListOrders(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus changes one order's status and returns the re-fetched list.
// The admin check is advisory; the backend enforces permissions. A second
// update of the same order is rejected while the first is in flight; other
// orders are not blocked.
func (s *Service) UpdateStatus(ctx context.Context, token string, isAdmin bool, id domain.ID, status domain.OrderStatus) ([]domain.Order, error) {
	if !isAdmin {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if !s.begin(id) {
		return nil, ErrUpdateInProgress
	}
	defer s.end(id)

	if err := s.backend.UpdateOrderStatus(ctx, token, id, status); err != nil {
		s.log.ErrorContext(ctx, "failed to update order status", "order_id", id, "status", status, "error", err)
		return nil, fmt.Errorf("update order status: %w", err)
	}
	s.log.InfoContext(ctx, "order status updated", "order_id", id, "status", status)

	if err := s.publisher.Publish(ctx, events.OrderStatusChanged(id, status)); err != nil {
		s.log.WarnContext(ctx, "failed to publish status event", "order_id", id, "error", err)
	}

	return s.List(ctx, token)
}

// Updating reports whether a status update for id is in flight.
func (s *Service) Updating(id domain.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.updating[id]
	return ok
}

func (s *Service) begin(id domain.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.updating[id]; busy {
		return false
	}
	s.updating[id] = struct{}{}
	return true
}

func (s *Service) end(id domain.ID) {
	s.mu.Lock()
	delete(s.updating, id)
	s.mu.Unlock()
}
