package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status an admin may pick, in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// OrderLine references a product either by id alone or with its details
// populated by the backend. Price is the unit price recorded for the line,
// falling back to the populated product's price.
type OrderLine struct {
	ProductID ID       `json:"productId"`
	Product   *Product `json:"product,omitempty"`
	Quantity  int      `json:"quantity"`
	Price     Price    `json:"price"`
}

// LineTotal is price times quantity.
func (l OrderLine) LineTotal() int64 {
	return int64(l.Price) * int64(l.Quantity)
}

func (l *OrderLine) UnmarshalJSON(data []byte) error {
	var w struct {
		Product  json.RawMessage `json:"product"`
		Quantity Price           `json:"quantity"`
		Price    Price           `json:"price"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*l = OrderLine{Quantity: int(w.Quantity), Price: w.Price}

	raw := bytes.TrimSpace(w.Product)
	if len(raw) > 0 && raw[0] == '{' {
		var p Product
		if err := json.Unmarshal(raw, &p); err == nil {
			l.Product = &p
			l.ProductID = p.ID
			if l.Price == 0 {
				l.Price = p.Price
			}
		}
		return nil
	}
	var id ID
	if err := json.Unmarshal(raw, &id); err == nil {
		l.ProductID = id
	}
	return nil
}

type Order struct {
	ID              ID            `json:"_id"`
	Products        []OrderLine   `json:"products"`
	ShippingAddress *Address      `json:"shippingAddress,omitempty"`
	BillingAddress  *Address      `json:"billingAddress,omitempty"`
	Pricing         *Pricing      `json:"pricing"`
	PaymentMethod   PaymentMethod `json:"paymentMethod,omitempty"`
	Status          OrderStatus   `json:"status"`
	CreatedAt       *time.Time    `json:"createdAt,omitempty"`
}

// orderTimeLayouts are the createdAt formats the backend is known to send.
var orderTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON tolerates createdAt values in any known layout; an
// unreadable date is left nil instead of failing the order.
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	var w struct {
		plain
		CreatedAt json.RawMessage `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*o = Order(w.plain)
	o.CreatedAt = parseOrderTime(w.CreatedAt)
	return nil
}

func parseOrderTime(raw json.RawMessage) *time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return nil
	}
	for _, layout := range orderTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Sanitize fills the fields views rely on when the backend omitted them.
func (o *Order) Sanitize() {
	if o.Products == nil {
		o.Products = []OrderLine{}
	}
	if o.Pricing == nil {
		o.Pricing = &Pricing{}
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
}

// OrderItemRequest is a line of a new order: product id and quantity only.
type OrderItemRequest struct {
	Product  ID  `json:"product"`
	Quantity int `json:"quantity"`
}

// OrderRequest is the body of a new order submission.
type OrderRequest struct {
	Products        []OrderItemRequest `json:"products"`
	ShippingAddress Address            `json:"shippingAddress"`
	BillingAddress  Address            `json:"billingAddress"`
	Pricing         Pricing            `json:"pricing"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod"`
}
