package cart

import (
	"github.com/shopspring/decimal"
)

// Item is one cart line. UnitPrice is the post-flat-discount price the
// shopper pays per unit; OriginalUnitPrice minus FlatDiscountPerUnit always
// equals UnitPrice.
type Item struct {
	ProductID              int64           `json:"product_id"`
	Name                   string          `json:"name"`
	Quantity               int             `json:"quantity"`
	UnitPrice              decimal.Decimal `json:"unit_price"`
	OriginalUnitPrice      decimal.Decimal `json:"original_unit_price"`
	FlatDiscountPerUnit    decimal.Decimal `json:"flat_discount_per_unit"`
	LoyaltyDiscountPerUnit decimal.Decimal `json:"loyalty_discount_per_unit"`
	CategoryName           string          `json:"category_name"`
	PhotoURL               string          `json:"photo_url"`
}

// Cart holds the session's lines in insertion order, which is also display
// order.
type Cart struct {
	Items []Item `json:"items"`
}

// Totals are derived on demand and never stored independently.
type Totals struct {
	Subtotal             decimal.Decimal `json:"subtotal"`
	FlatDiscountTotal    decimal.Decimal `json:"flat_discount_total"`
	LoyaltyDiscountTotal decimal.Decimal `json:"loyalty_discount_total"`
	ItemCount            int             `json:"item_count"`
}

/// Totals sums the ledger: subtotal over original unit prices, plus the two
// per-unit discount pools.
func (c Cart) Totals() Totals {
	totals := Totals{
		Subtotal:             decimal.Zero,
		FlatDiscountTotal:    decimal.Zero,
		LoyaltyDiscountTotal: decimal.Zero,
	}
	for _, item := range c.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		totals.Subtotal = totals.Subtotal.Add(item.OriginalUnitPrice.Mul(qty))
		totals.FlatDiscountTotal = totals.FlatDiscountTotal.Add(item.FlatDiscountPerUnit.Mul(qty))
		totals.LoyaltyDiscountTotal = totals.LoyaltyDiscountTotal.Add(item.LoyaltyDiscountPerUnit.Mul(qty))
		totals.ItemCount += item.Quantity
	}
	return totals
}

func (c Cart) indexOf(productID int64) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
