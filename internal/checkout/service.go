package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
)

var (
	ErrEmptyCart            = errors.New("your cart is empty")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// OrdersPath is where the storefront goes after a placed order.
const OrdersPath = "/orders"

type Backend interface {
	CreateOrder(ctx context.Context, token string, order domain.OrderRequest) (domain.ID, error)
}

// Form is what the checkout modal submits.
type Form struct {
	Shipping domain.Address `json:"shippingAddress"`
	Billing  domain.Address `json:"billingAddress"`
	// SameAsShipping defaults to true when omitted.
	SameAsShipping *bool                `json:"sameAsShipping,omitempty"`
	PaymentMethod  domain.PaymentMethod `json:"paymentMethod"`
}

func (f Form) sameAsShipping() bool {
	return f.SameAsShipping == nil || *f.SameAsShipping
}

type Result struct {
	OrderID  domain.ID      `json:"order_id"`
	Pricing  domain.Pricing `json:"pricing"`
	Redirect string         `json:"redirect"`
}

type Service struct {
	backend   Backend
	publisher events.Publisher
	log       *slog.Logger
}

func NewService(backend Backend, publisher events.Publisher, log *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{backend: backend, publisher: publisher, log: log}
}

// Open shows the checkout modal. It is refused for an empty cart.
func (s *Service) Open(flow *Flow, items []domain.CartItem) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	if flow.current() == StateModalOpen {
		return nil
	}
	return flow.transition(StateModalOpen)
}

// Cancel closes the modal without submitting.
func (s *Service) Cancel(flow *Flow) error {
	if flow.current() == StateIdle {
		return nil
	}
	return flow.transition(StateIdle)
}

// Prepare validates the form, builds the order body and moves the flow to
// Submitting. On a validation error the modal stays open.
func (s *Service) Prepare(flow *Flow, items []domain.CartItem, form Form) (domain.OrderRequest, error) {
	if flow.current() != StateModalOpen {
		return domain.OrderRequest{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, flow.current(), StateSubmitting)
	}
	if len(items) == 0 {
		return domain.OrderRequest{}, ErrEmptyCart
	}

	req, err := BuildOrder(items, form)
	if err != nil {
		return domain.OrderRequest{}, err
	}
	if err := flow.transition(StateSubmitting); err != nil {
		return domain.OrderRequest{}, err
	}
	return req, nil
}

// Place submits a prepared order exactly once. Success closes the modal;
// failure reopens it. Callers clear their cart copy on success.
func (s *Service) Place(ctx context.Context, token string, flow *Flow, req domain.OrderRequest) (*Result, error) {
	if flow.current() != StateSubmitting {
		return nil, fmt.Errorf("%w: order was not prepared", ErrIllegalTransition)
	}

	id, err := s.backend.CreateOrder(ctx, token, req)
	if err != nil {
		_ = flow.transition(StateModalOpen)
		s.log.ErrorContext(ctx, "failed to place order", "error", err)
		return nil, fmt.Errorf("place order: %w", err)
	}
	_ = flow.transition(StateIdle)

	s.log.InfoContext(ctx, "order placed", "order_id", id, "total", req.Pricing.Total)
	if err := s.publisher.Publish(ctx, events.OrderPlaced(id, req)); err != nil {
		s.log.WarnContext(ctx, "failed to publish order event", "order_id", id, "error", err)
	}

	return &Result{OrderID: id, Pricing: req.Pricing, Redirect: OrdersPath}, nil
}

// BuildOrder turns the cart and the modal form into the order body. Lines
// carry only product id and quantity; pricing is computed from the cart.
func BuildOrder(items []domain.CartItem, form Form) (domain.OrderRequest, error) {
	shipping := form.Shipping.WithDefaults()
	if err := shipping.Validate(); err != nil {
		return domain.OrderRequest{}, fmt.Errorf("shipping address: %w", err)
	}

	billing := shipping
	if !form.sameAsShipping() {
		billing = form.Billing.WithDefaults()
		if err := billing.Validate(); err != nil {
			return domain.OrderRequest{}, fmt.Errorf("billing address: %w", err)
		}
	}

	method := form.PaymentMethod
	if method == "" {
		method = domain.PaymentCOD
	}
	if !method.Valid() {
		return domain.OrderRequest{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}

	lines := make([]domain.OrderItemRequest, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.OrderItemRequest{Product: it.ID, Quantity: it.Quantity})
	}

	return domain.OrderRequest{
		Products:        lines,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		Pricing:         cart.ComputePricing(items),
		PaymentMethod:   method,
	}, nil
}
