// Package service holds the HTTP clients for the storefront backend: the
// product lookup, its Redis read-through cache and the order submission.
package service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/storefront-cart/internal/pkg/interceptors"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// NewHTTPClient returns a traced client that sends the request id, the
// idempotency key and, when token is set, a Bearer token.
func NewHTTPClient(timeout time.Duration, token string) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(&interceptors.Transport{
			Base:  http.DefaultTransport,
			Token: token,
		}),
	}
}

// errorMessage extracts the backend's "message" field, falling back to the
// raw body or the status text.
func errorMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var e errorDTO
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

func unexpectedStatus(op string, resp *http.Response) error {
	return fmt.Errorf("service: %s: unexpected status %d: %s", op, resp.StatusCode, errorMessage(resp))
}
