package order_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/pedido-service/internal/order"
)

func item(price string, qty int) order.OrderedItem {
	return order.OrderedItem{
		Quantity:     qty,
		UnitaryPrice: decimal.RequireFromString(price),
	}
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name        string
		items       []order.OrderedItem
		discount    int
		shippingFee string
		expected    string
	}{
		{
			name:        "no_discount_no_shipping_is_raw_sum",
			items:       []order.OrderedItem{item("10.00", 2), item("3.50", 4)},
			discount:    0,
			shippingFee: "0",
			expected:    "34",
		},
		{
			name:        "discount_and_shipping",
			items:       []order.OrderedItem{item("50.00", 3)},
			discount:    10,
			shippingFee: "5.00",
			expected:    "140",
		},
		{
			name:        "odd_discount_percentage",
			items:       []order.OrderedItem{item("100.00", 1)},
			discount:    7,
			shippingFee: "0",
			expected:    "93",
		},
		{
			name:        "full_discount",
			items:       []order.OrderedItem{item("19.90", 2)},
			discount:    100,
			shippingFee: "12.00",
			expected:    "12",
		},
		{
			name:        "empty_items_is_shipping_only",
			items:       nil,
			discount:    25,
			shippingFee: "7.30",
			expected:    "7.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := order.ComputeTotal(tt.items, tt.discount, decimal.RequireFromString(tt.shippingFee))
			assert.True(t, total.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, total)
		})
	}
}

func TestComputeTotal_OrderIndependent(t *testing.T) {
	items := []order.OrderedItem{item("12.34", 3), item("0.99", 7), item("250.00", 1)}
	reversed := []order.OrderedItem{items[2], items[1], items[0]}

	a := order.ComputeTotal(items, 15, decimal.RequireFromString("9.99"))
	b := order.ComputeTotal(reversed, 15, decimal.RequireFromString("9.99"))

	assert.True(t, a.Equal(b), "totals differ: %s vs %s", a, b)
}
