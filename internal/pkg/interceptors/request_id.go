// Package interceptors carries the request id and the idempotency key across
// HTTP hops: a client RoundTripper writes them as headers and a server
// middleware reads them back into the request context.
package interceptors

import (
	"context"

	"github.com/jcmexdev/storefront-cart/internal/pkg/interceptors/constants"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyRequestID, id)
}

func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyIdempotencyKey, key)
}

// RequestIDFromContext returns "" when ctx carries no request id.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(constants.ContextKeyRequestID).(string)
	return id
}

// IdempotencyKeyFromContext returns "" when ctx carries no idempotency key.
func IdempotencyKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(constants.ContextKeyIdempotencyKey).(string)
	return key
}
