// Package orders accepts orders for the development backend. Placing an order
// reserves stock and charges the payment as one saga; a repeated idempotency
// key returns the order created the first time.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/storefront-cart/internal/coordinator"
	"github.com/jcmexdev/storefront-cart/internal/pkg/interceptors"
	"github.com/jcmexdev/storefront-cart/internal/storefront-api/catalog"
)

var (
	ErrNoOrderItems  = errors.New("no order items")
	ErrInvalidOrder  = errors.New("invalid order")
	ErrOrderNotFound = errors.New("order not found")
)

type Service struct {
	inventory coordinator.Inventory
	payments  coordinator.Payments
	now       func() time.Time

	mu     sync.Mutex
	orders map[string]*Order
	byKey  map[string]string
}

func NewService(inv coordinator.Inventory, pay coordinator.Payments) *Service {
	return &Service{
		inventory: inv,
		payments:  pay,
		now:       time.Now,
		orders:    make(map[string]*Order),
		byKey:     make(map[string]string),
	}
}

// Create places req. The idempotency key and request id are read from ctx.
// replayed is true when the key was already used and the stored order is returned.
func (s *Service) Create(ctx context.Context, req CreateOrder) (order *Order, replayed bool, err error) {
	if err := validate(req); err != nil {
		return nil, false, err
	}

	key := interceptors.IdempotencyKeyFromContext(ctx)

	// Held across the saga so two submissions with one key cannot both run it.
	s.mu.Lock()
	defer s.mu.Unlock()

	if key != "" {
		if id, ok := s.byKey[key]; ok {
			slog.InfoContext(ctx, "replaying order for idempotency key", "order_id", id, "idempotency_key", key)
			return clone(s.orders[id]), true, nil
		}
	}

	o := &Order{
		ID:              uuid.NewString(),
		Items:           append([]Item(nil), req.Items...),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalPrice:      req.TotalPrice,
		IdempotencyKey:  key,
		RequestID:       interceptors.RequestIDFromContext(ctx),
		CreatedAt:       s.now().UTC(),
	}

	lines := make([]catalog.Line, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, catalog.Line{ProductID: it.ProductID, Quantity: it.Qty})
	}
	saga := coordinator.NewOrchestrator(o.ID, []coordinator.Step{
		coordinator.NewReserveStockStep(s.inventory, o.ID, lines),
		coordinator.NewChargePaymentStep(s.payments, o.ID, o.PaymentMethod, o.TotalPrice),
	})
	if err := saga.Start(ctx); err != nil {
		var sagaErr *coordinator.Error
		if errors.As(err, &sagaErr) {
			level := slog.LevelWarn
			if len(sagaErr.CompensationErrs) > 0 {
				level = slog.LevelError
			}
			slog.Log(ctx, level, "order saga rolled back",
				"order_id", o.ID, "failed_step", sagaErr.Step, "compensated", sagaErr.Compensated, "error", err)
		}
		return nil, false, err
	}

	o.Status = StatusPaid
	s.orders[o.ID] = o
	if key != "" {
		s.byKey[key] = o.ID
	}
	slog.InfoContext(ctx, "order created", "order_id", o.ID, "request_id", o.RequestID, "total", o.TotalPrice.StringFixed(2))
	return clone(o), false, nil
}

func (s *Service) Get(_ context.Context, id string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("orders: %q: %w", id, ErrOrderNotFound)
	}
	return clone(o), nil
}

func validate(req CreateOrder) error {
	if len(req.Items) == 0 {
		return ErrNoOrderItems
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Qty < 1 || it.Price.IsNegative() {
			return fmt.Errorf("orders: item %q needs a product, a positive qty and a price: %w", it.ProductID, ErrInvalidOrder)
		}
	}
	if !req.ShippingAddress.complete() {
		return fmt.Errorf("orders: shipping address is incomplete: %w", ErrInvalidOrder)
	}
	if req.TotalPrice.IsNegative() {
		return fmt.Errorf("orders: negative total: %w", ErrInvalidOrder)
	}
	return nil
}

func clone(o *Order) *Order {
	c := *o
	c.Items = append([]Item(nil), o.Items...)
	return &c
}
