package payments_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront-cart/internal/storefront-api/payments"
)

func TestProcessor(t *testing.T) {
	p := payments.NewProcessor(decimal.NewFromInt(500))

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, p.Charge("o1", "PayPal", decimal.RequireFromString("138.00")))

		got, ok := p.Charged("o1")
		require.True(t, ok)
		assert.True(t, decimal.NewFromInt(138).Equal(got))
	})

	t.Run("Declined above limit", func(t *testing.T) {
		err := p.Charge("o2", "Stripe", decimal.RequireFromString("500.01"))

		assert.ErrorIs(t, err, payments.ErrDeclined)
		_, ok := p.Charged("o2")
		assert.False(t, ok)
	})

	t.Run("Unsupported method", func(t *testing.T) {
		assert.ErrorIs(t, p.Charge("o3", "Cash", decimal.NewFromInt(1)), payments.ErrUnsupportedMethod)
	})

	t.Run("Refund", func(t *testing.T) {
		p.Refund("o1")
		_, ok := p.Charged("o1")
		assert.False(t, ok)

		p.Refund("o1")
	})
}
