package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront-cart/internal/storefront-api/catalog"
)

func setup(t *testing.T) *catalog.Catalog {
	t.Helper()
	return catalog.New(
		catalog.Product{ID: "p1", Name: "Keyboard", Price: decimal.NewFromInt(60), CountInStock: 5},
		catalog.Product{ID: "p2", Name: "Mouse", Price: decimal.NewFromInt(10), CountInStock: 1},
	)
}

func stock(t *testing.T, c *catalog.Catalog, id string) int {
	t.Helper()
	p, err := c.Product(id)
	require.NoError(t, err)
	return p.CountInStock
}

func TestProduct(t *testing.T) {
	c := setup(t)

	p, err := c.Product("p1")
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", p.Name)

	_, err = c.Product("nope")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestReserve(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := setup(t)

		require.NoError(t, c.Reserve("o1", []catalog.Line{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}))

		assert.Equal(t, 3, stock(t, c, "p1"))
		assert.Equal(t, 0, stock(t, c, "p2"))
	})

	t.Run("All or nothing", func(t *testing.T) {
		c := setup(t)

		err := c.Reserve("o1", []catalog.Line{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 2}})

		assert.ErrorIs(t, err, catalog.ErrInsufficientStock)
		assert.Contains(t, err.Error(), "Mouse is out of stock")
		assert.Equal(t, 5, stock(t, c, "p1"))
		assert.Equal(t, 1, stock(t, c, "p2"))
	})

	t.Run("Duplicate lines are summed", func(t *testing.T) {
		c := setup(t)

		err := c.Reserve("o1", []catalog.Line{{ProductID: "p2", Quantity: 1}, {ProductID: "p2", Quantity: 1}})
		assert.ErrorIs(t, err, catalog.ErrInsufficientStock)
	})

	t.Run("Unknown product", func(t *testing.T) {
		c := setup(t)

		err := c.Reserve("o1", []catalog.Line{{ProductID: "ghost", Quantity: 1}})
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	})
}

func TestRelease(t *testing.T) {
	c := setup(t)
	require.NoError(t, c.Reserve("o1", []catalog.Line{{ProductID: "p1", Quantity: 4}}))

	c.Release("o1")
	assert.Equal(t, 5, stock(t, c, "p1"))

	c.Release("o1")
	assert.Equal(t, 5, stock(t, c, "p1"), "second release is a no-op")
}
