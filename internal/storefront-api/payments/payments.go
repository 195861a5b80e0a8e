// Package payments is the fake payment processor of the development backend.
package payments

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrDeclined          = errors.New("payment declined")
	ErrUnsupportedMethod = errors.New("unsupported payment method")
)

// DefaultLimit is the largest amount the processor approves.
var DefaultLimit = decimal.NewFromInt(5000)

type Processor struct {
	limit decimal.Decimal

	mu       sync.Mutex
	payments map[string]decimal.Decimal
}

func NewProcessor(limit decimal.Decimal) *Processor {
	return &Processor{
		limit:    limit,
		payments: make(map[string]decimal.Decimal),
	}
}

// Charge records a payment for orderID. Amounts above the limit are declined.
func (p *Processor) Charge(orderID, method string, amount decimal.Decimal) error {
	if method != "PayPal" && method != "Stripe" {
		return fmt.Errorf("payments: %q: %w", method, ErrUnsupportedMethod)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if amount.GreaterThan(p.limit) {
		slog.Warn("payment declined", "order_id", orderID, "amount", amount.StringFixed(2), "limit", p.limit.StringFixed(2))
		return fmt.Errorf("payments: %s exceeds the %s limit: %w", amount.StringFixed(2), p.limit.StringFixed(2), ErrDeclined)
	}
	p.payments[orderID] = amount
	slog.Info("payment charged", "order_id", orderID, "method", method, "amount", amount.StringFixed(2))
	return nil
}

// Refund reverses the payment of orderID. Refunding an unknown order succeeds.
func (p *Processor) Refund(orderID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	amount, ok := p.payments[orderID]
	if !ok {
		slog.Warn("no payment to refund", "order_id", orderID)
		return
	}
	delete(p.payments, orderID)
	slog.Info("payment refunded", "order_id", orderID, "amount", amount.StringFixed(2))
}

// Charged reports the amount recorded for orderID.
func (p *Processor) Charged(orderID string) (decimal.Decimal, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.payments[orderID]
	return a, ok
}
