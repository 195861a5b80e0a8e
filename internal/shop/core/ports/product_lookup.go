package ports

import (
	"context"
	"errors"

	"github.com/jcmexdev/storefront-cart/internal/shop/core/domain/entity"
)

// ErrProductNotFound is returned by a ProductLookup when the catalog has no such product.
var ErrProductNotFound = errors.New("product not found")

type ProductLookup interface {
	GetProduct(ctx context.Context, productID string) (*entity.Product, error)
}
