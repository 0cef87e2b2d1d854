package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fjod/storefront/internal/domain"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	OrderID    domain.ID `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// Publisher delivers storefront events. Publishing is best effort; callers
// log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func newEvent(eventType string, orderID domain.ID, payload any) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

func OrderPlaced(orderID domain.ID, order domain.OrderRequest) Event {
	return newEvent(TypeOrderPlaced, orderID, map[string]any{
		"items":          order.Products,
		"pricing":        order.Pricing,
		"payment_method": order.PaymentMethod,
	})
}

func OrderStatusChanged(orderID domain.ID, status domain.OrderStatus) Event {
	return newEvent(TypeOrderStatusChanged, orderID, map[string]any{
		"status": status,
	})
}
