package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jcmexdev/storefront-cart/internal/shop/core/domain/entity"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/pricing"
)

func entry(id, price string, qty int) entity.CartEntry {
	return entity.CartEntry{
		ProductID:  id,
		Name:       id,
		UnitPrice:  decimal.RequireFromString(price),
		StockLimit: 100,
		Quantity:   qty,
	}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestCompute(t *testing.T) {
	t.Run("Over free shipping threshold", func(t *testing.T) {
		b := pricing.Compute([]entity.CartEntry{entry("p1", "60.00", 2)})

		assertMoney(t, "120.00", b.ItemsPrice)
		assertMoney(t, "18.00", b.TaxPrice)
		assertMoney(t, "0", b.ShippingPrice)
		assertMoney(t, "138.00", b.TotalPrice)
	})

	t.Run("Under free shipping threshold", func(t *testing.T) {
		b := pricing.Compute([]entity.CartEntry{entry("p1", "10.00", 1)})

		assertMoney(t, "10.00", b.ItemsPrice)
		assertMoney(t, "1.50", b.TaxPrice)
		assertMoney(t, "10", b.ShippingPrice)
		assertMoney(t, "21.50", b.TotalPrice)
	})

	t.Run("Exactly at threshold still pays shipping", func(t *testing.T) {
		b := pricing.Compute([]entity.CartEntry{entry("p1", "25.00", 4)})

		assertMoney(t, "100.00", b.ItemsPrice)
		assertMoney(t, "10", b.ShippingPrice)
		assertMoney(t, "125.00", b.TotalPrice)
	})

	t.Run("Empty cart keeps flat shipping", func(t *testing.T) {
		b := pricing.Compute(nil)

		assertMoney(t, "0", b.ItemsPrice)
		assertMoney(t, "0", b.TaxPrice)
		assertMoney(t, "10", b.ShippingPrice)
		assertMoney(t, "10", b.TotalPrice)
	})

	t.Run("Tax rounds half away from zero", func(t *testing.T) {
		// 0.15 * 0.10 = 0.015 -> 0.02
		b := pricing.Compute([]entity.CartEntry{entry("p1", "0.10", 1)})
		assertMoney(t, "0.02", b.TaxPrice)

		// 0.15 * 3.30 = 0.495 -> 0.50
		b = pricing.Compute([]entity.CartEntry{entry("p1", "1.10", 3)})
		assertMoney(t, "0.50", b.TaxPrice)
	})
}

func TestComputeSumsAreExact(t *testing.T) {
	items := []entity.CartEntry{
		entry("p1", "19.99", 3),
		entry("p2", "0.01", 7),
		entry("p3", "45.50", 1),
	}

	b := pricing.Compute(items)

	want := decimal.Zero
	for _, it := range items {
		want = want.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	assertMoney(t, want.String(), b.ItemsPrice)
	assertMoney(t, b.ItemsPrice.Add(b.TaxPrice).Add(b.ShippingPrice).String(), b.TotalPrice)
	assertMoney(t, "0", b.ShippingPrice)
}
