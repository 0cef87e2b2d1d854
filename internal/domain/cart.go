package domain

import "encoding/json"

// CartItem is one line of the normalized cart. Quantity is always at least 1.
type CartItem struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Price       Price  `json:"price"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Quantity    int    `json:"quantity"`
}

// LineTotal is price times quantity.
func (i CartItem) LineTotal() int64 {
	return int64(i.Price) * int64(i.Quantity)
}

// Pricing is the summary shown next to the cart and sent with an order.
type Pricing struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

// UnmarshalJSON reads each amount leniently, like Price: numeric strings and
// fractions are accepted and anything unreadable is zero.
func (p *Pricing) UnmarshalJSON(data []byte) error {
	var w struct {
		Subtotal Price `json:"subtotal"`
		Shipping Price `json:"shipping"`
		Discount Price `json:"discount"`
		Total    Price `json:"total"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = Pricing{
		Subtotal: int64(w.Subtotal),
		Shipping: int64(w.Shipping),
		Discount: int64(w.Discount),
		Total:    int64(w.Total),
	}
	return nil
}
