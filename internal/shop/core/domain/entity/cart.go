package entity

import "github.com/shopspring/decimal"

// CartEntry is one product line held in the shopper's cart.
type CartEntry struct {
	ProductID  string
	Name       string
	ImageRef   string
	UnitPrice  decimal.Decimal
	StockLimit int
	Quantity   int
}

// LineTotal is unitPrice × quantity.
func (e CartEntry) LineTotal() decimal.Decimal {
	return e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Product is the current catalog data returned by a product lookup.
type Product struct {
	ID         string
	Name       string
	ImageRef   string
	Price      decimal.Decimal
	StockLimit int
}
