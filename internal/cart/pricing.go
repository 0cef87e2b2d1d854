package cart

import "github.com/fjod/storefront/internal/domain"

const (
	ShippingFee  int64 = 49
	FlatDiscount int64 = 100
)

// ComputePricing derives the cart summary. Shipping applies only to a
// non-empty cart; the discount always applies and the total is not floored.
func ComputePricing(items []domain.CartItem) domain.Pricing {
	var subtotal int64
	for _, it := range items {
		subtotal += it.LineTotal()
	}

	var shipping int64
	if len(items) > 0 {
		shipping = ShippingFee
	}

	return domain.Pricing{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: FlatDiscount,
		Total:    subtotal + shipping - FlatDiscount,
	}
}
