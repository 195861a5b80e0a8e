// Package pricing derives the monetary breakdown of a cart.
//
// Compute is a pure function of the entries passed in. Tax is rounded to
// cents half away from zero.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront-cart/internal/shop/core/domain/entity"
)

var (
	TaxRate               = decimal.RequireFromString("0.15")
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShipping          = decimal.NewFromInt(10)
)

// Breakdown is the derived subtotal/tax/shipping/total for a cart.
type Breakdown struct {
	ItemsPrice    decimal.Decimal
	TaxPrice      decimal.Decimal
	ShippingPrice decimal.Decimal
	TotalPrice    decimal.Decimal
}

// Compute recomputes the breakdown for items.
//
// Shipping is free only when itemsPrice is strictly above the threshold, so an
// empty cart still shows the flat charge.
func Compute(items []entity.CartEntry) Breakdown {
	itemsPrice := decimal.Zero
	for _, it := range items {
		itemsPrice = itemsPrice.Add(it.LineTotal())
	}

	tax := itemsPrice.Mul(TaxRate).Round(2)

	shipping := FlatShipping
	if itemsPrice.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Breakdown{
		ItemsPrice:    itemsPrice,
		TaxPrice:      tax,
		ShippingPrice: shipping,
		TotalPrice:    itemsPrice.Add(tax).Add(shipping),
	}
}
