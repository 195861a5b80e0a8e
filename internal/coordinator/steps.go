package coordinator

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront-cart/internal/storefront-api/catalog"
)

// Inventory is the stock side of an order.
type Inventory interface {
	Reserve(orderID string, lines []catalog.Line) error
	Release(orderID string)
}

// Payments is the payment side of an order.
type Payments interface {
	Charge(orderID, method string, amount decimal.Decimal) error
	Refund(orderID string)
}

// --- ReserveStockStep ---

type ReserveStockStep struct {
	inventory Inventory
	orderID   string
	lines     []catalog.Line
}

func NewReserveStockStep(inv Inventory, orderID string, lines []catalog.Line) *ReserveStockStep {
	return &ReserveStockStep{inventory: inv, orderID: orderID, lines: lines}
}

func (s *ReserveStockStep) Name() string { return "Reserve_Stock_Step" }

func (s *ReserveStockStep) Execute(_ context.Context) error {
	return s.inventory.Reserve(s.orderID, s.lines)
}

func (s *ReserveStockStep) Compensate(_ context.Context) error {
	s.inventory.Release(s.orderID)
	return nil
}

// --- ChargePaymentStep ---

type ChargePaymentStep struct {
	payments Payments
	orderID  string
	method   string
	amount   decimal.Decimal
}

func NewChargePaymentStep(p Payments, orderID, method string, amount decimal.Decimal) *ChargePaymentStep {
	return &ChargePaymentStep{payments: p, orderID: orderID, method: method, amount: amount}
}

func (s *ChargePaymentStep) Name() string { return "Payment_Charge_Step" }

func (s *ChargePaymentStep) Execute(_ context.Context) error {
	return s.payments.Charge(s.orderID, s.method, s.amount)
}

func (s *ChargePaymentStep) Compensate(_ context.Context) error {
	s.payments.Refund(s.orderID)
	return nil
}
