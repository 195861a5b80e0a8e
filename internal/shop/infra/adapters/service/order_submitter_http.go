package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jcmexdev/storefront-cart/internal/pkg/interceptors"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/domain/entity"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/ports"
)

var _ ports.OrderSubmitter = (*HTTPOrderSubmitter)(nil)

// HTTPOrderSubmitter places orders with POST {base}/api/orders.
type HTTPOrderSubmitter struct {
	baseURL string
	client  *http.Client
}

func NewHTTPOrderSubmitter(baseURL string, client *http.Client) *HTTPOrderSubmitter {
	return &HTTPOrderSubmitter{baseURL: baseURL, client: client}
}

// SubmitOrder returns a *ports.SubmissionError carrying the backend's message
// when the order is rejected.
func (s *HTTPOrderSubmitter) SubmitOrder(ctx context.Context, order *entity.OrderRequest) (string, error) {
	endpoint, err := url.JoinPath(s.baseURL, "api", "orders")
	if err != nil {
		return "", fmt.Errorf("service: orders url: %w", err)
	}
	body, err := json.Marshal(orderToDTO(order))
	if err != nil {
		return "", fmt.Errorf("service: encode order: %w", err)
	}

	if order.IdempotencyKey != "" {
		ctx = interceptors.WithIdempotencyKey(ctx, order.IdempotencyKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("service: build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("service: submit order: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ports.SubmissionError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}

	var out createOrderResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("service: decode order response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("service: order response without id")
	}
	return out.ID, nil
}
