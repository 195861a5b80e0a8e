package interceptors

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jcmexdev/storefront-cart/internal/pkg/interceptors/constants"
)

// Transport stamps outgoing requests with a request id (the one in the
// context, or a fresh one), the context's idempotency key and, when Token
// is set, a Bearer authorization header.
type Transport struct {
	Base  http.RoundTripper
	Token string
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	r := req.Clone(ctx)

	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	r.Header.Set(constants.HeaderXRequestId, requestID)

	if key := IdempotencyKeyFromContext(ctx); key != "" {
		r.Header.Set(constants.HeaderXIdempotencyKey, key)
	}
	if t.Token != "" {
		r.Header.Set(constants.HeaderAuthorization, "Bearer "+t.Token)
	}

	slog.DebugContext(ctx, "outgoing request", "method", r.Method, "url", r.URL.String(), "request_id", requestID)
	return t.base().RoundTrip(r)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RequestContext copies the request id and idempotency key headers into the
// request context. A request without an id gets a generated one, echoed back
// in the response.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(constants.HeaderXRequestId)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := WithRequestID(r.Context(), requestID)
		if key := r.Header.Get(constants.HeaderXIdempotencyKey); key != "" {
			ctx = WithIdempotencyKey(ctx, key)
		}
		w.Header().Set(constants.HeaderXRequestId, requestID)

		slog.InfoContext(ctx, "incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestID,
			"idempotency_key", IdempotencyKeyFromContext(ctx),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
