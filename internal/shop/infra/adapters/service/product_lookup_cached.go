package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jcmexdev/storefront-cart/internal/pkg/cache"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/domain/entity"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/ports"
)

var _ ports.ProductLookup = (*CachedProductLookup)(nil)

// CachedProductLookup is a read-through cache in front of another lookup.
// Only found products are cached. A failing cache is bypassed.
type CachedProductLookup struct {
	next  ports.ProductLookup
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedProductLookup(next ports.ProductLookup, c cache.Cache, ttl time.Duration) *CachedProductLookup {
	return &CachedProductLookup{next: next, cache: c, ttl: ttl}
}

func (l *CachedProductLookup) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	key := l.cache.GenerateKey("product", id)

	b, err := l.cache.Get(ctx, key)
	switch {
	case err == nil:
		var dto productDTO
		if jerr := json.Unmarshal(b, &dto); jerr == nil {
			slog.DebugContext(ctx, "product cache hit", "product_id", id)
			return productFromDTO(dto), nil
		}
		slog.WarnContext(ctx, "discarding unreadable cached product", "product_id", id)
	case !errors.Is(err, cache.ErrMiss):
		slog.WarnContext(ctx, "product cache unavailable", "product_id", id, "error", err)
	}

	product, err := l.next.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(productToDTO(product)); err == nil {
		if err := l.cache.Set(ctx, key, b, l.ttl); err != nil {
			slog.WarnContext(ctx, "failed to cache product", "product_id", id, "error", err)
		}
	}
	return product, nil
}
