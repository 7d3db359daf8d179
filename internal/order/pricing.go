package order

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// ComputeTotal derives an order's total price from its items, a discount
// percentage and a shipping fee. The discount fraction is rounded to two
// decimal places (half up) before it is applied; no further rounding is
// done on the result.
func ComputeTotal(items []OrderedItem, discount int, shippingFee decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitaryPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	discountFraction := decimal.NewFromInt(int64(discount)).DivRound(oneHundred, 2)
	total = total.Sub(total.Mul(discountFraction))

	return total.Add(shippingFee)
}
