package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              string
	Items           []Item
	ShippingAddress Address
	PaymentMethod   string
	TotalPrice      decimal.Decimal
	Status          Status
	IdempotencyKey  string
	RequestID       string
	CreatedAt       time.Time
}

type Item struct {
	ProductID string
	Name      string
	Image     string
	Qty       int
	Price     decimal.Decimal
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

type Address struct {
	Address    string
	City       string
	PostalCode string
	Country    string
}

func (a Address) complete() bool {
	for _, v := range []string{a.Address, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

type Status string

const StatusPaid Status = "PAID"

// CreateOrder is an order as submitted by a client.
type CreateOrder struct {
	Items           []Item
	ShippingAddress Address
	PaymentMethod   string
	TotalPrice      decimal.Decimal
}
