package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jcmexdev/storefront-cart/internal/shop/core/domain/entity"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/ports"
)

var _ ports.ProductLookup = (*HTTPProductLookup)(nil)

// HTTPProductLookup resolves products with GET {base}/api/products/{id}.
type HTTPProductLookup struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProductLookup(baseURL string, client *http.Client) *HTTPProductLookup {
	return &HTTPProductLookup{baseURL: baseURL, client: client}
}

func (l *HTTPProductLookup) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	endpoint, err := url.JoinPath(l.baseURL, "api", "products", id)
	if err != nil {
		return nil, fmt.Errorf("service: product url for %q: %w", id, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("service: build product request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("service: get product %q: %w", id, err)
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("service: product %q: %w", id, ports.ErrProductNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, unexpectedStatus(fmt.Sprintf("get product %q", id), resp)
	}

	var dto productDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("service: decode product %q: %w", id, err)
	}
	if dto.ID == "" {
		dto.ID = id
	}
	return productFromDTO(dto), nil
}
