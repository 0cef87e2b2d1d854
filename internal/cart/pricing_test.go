package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fjod/storefront/internal/domain"
)

func TestComputePricing(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.CartItem
		want  domain.Pricing
	}{
		{
			name: "two lines",
			items: []domain.CartItem{
				{ID: "p1", Price: 2499, Quantity: 1},
				{ID: "p3", Price: 1499, Quantity: 2},
			},
			want: domain.Pricing{Subtotal: 5497, Shipping: 49, Discount: 100, Total: 5446},
		},
		{
			name:  "empty cart goes negative",
			items: nil,
			want:  domain.Pricing{Subtotal: 0, Shipping: 0, Discount: 100, Total: -100},
		},
		{
			name:  "cheap cart below discount",
			items: []domain.CartItem{{ID: "p1", Price: 20, Quantity: 1}},
			want:  domain.Pricing{Subtotal: 20, Shipping: 49, Discount: 100, Total: -31},
		},
		{
			name:  "unparseable price counts as zero",
			items: []domain.CartItem{{ID: "p1", Price: domain.ParsePrice("abc"), Quantity: 3}},
			want:  domain.Pricing{Subtotal: 0, Shipping: 49, Discount: 100, Total: -51},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePricing(tt.items)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Subtotal+got.Shipping-got.Discount, got.Total)
		})
	}
}
