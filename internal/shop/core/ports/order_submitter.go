package ports

import (
	"context"
	"fmt"

	"github.com/jcmexdev/storefront-cart/internal/shop/core/domain/entity"
)

type OrderSubmitter interface {
	// SubmitOrder places the order and returns the identifier assigned by the backend.
	SubmitOrder(ctx context.Context, req *entity.OrderRequest) (string, error)
}

// SubmissionError is a rejection reported by the order backend.
// Message is the human-readable reason suitable for showing to the shopper.
type SubmissionError struct {
	Status  int
	Message string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order rejected (status %d): %s", e.Status, e.Message)
}
