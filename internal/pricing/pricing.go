// Package pricing turns cart totals and the session's discounts into the
// amount the customer actually pays.
package pricing

import (
	"github.com/mateovidal/spinmart-backend/internal/cart"
	"github.com/shopspring/decimal"
)

// Quote is the full price breakdown shown at checkout. Every component is
// echoed back so the UI can render each line without recomputing.
type Quote struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	FlatDiscountTotal decimal.Decimal `json:"flat_discount_total"`
	ShippingCharge    decimal.Decimal `json:"shipping_charge"`
	SpinDiscount      decimal.Decimal `json:"spin_discount"`
	LoyaltyDiscount   decimal.Decimal `json:"loyalty_discount"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
}

// Compute applies the discount stack in a fixed order, flooring at zero
// after each subtraction. A discount larger than the running balance zeroes
// that step only; it never produces a negative that would eat into the
// shipping charge or a later component.
func Compute(totals cart.Totals, shipping, spinDiscount, loyaltyDiscount decimal.Decimal) Quote {
	subtotal := sanitize(totals.Subtotal)
	flat := sanitize(totals.FlatDiscountTotal)
	shipping = sanitize(shipping)
	spinDiscount = sanitize(spinDiscount)
	loyaltyDiscount = sanitize(loyaltyDiscount)

	grand := floorZero(subtotal.Sub(flat))
	grand = grand.Add(shipping)
	grand = floorZero(grand.Sub(spinDiscount))
	grand = floorZero(grand.Sub(loyaltyDiscount))

	return Quote{
		Subtotal:          subtotal,
		FlatDiscountTotal: flat,
		ShippingCharge:    shipping,
		SpinDiscount:      spinDiscount,
		LoyaltyDiscount:   loyaltyDiscount,
		GrandTotal:        grand,
	}
}

// sanitize coerces negative amounts to zero so a corrupted stored value can
// never inflate the total or flip a discount into a surcharge.
func sanitize(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
