package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentPayPal PaymentMethod = "PayPal"
	PaymentStripe PaymentMethod = "Stripe"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentPayPal || m == PaymentStripe
}

type ShippingAddress struct {
	Street     string
	City       string
	PostalCode string
	Country    string
}

// Complete reports whether all four fields carry a non-blank value.
func (a ShippingAddress) Complete() bool {
	for _, v := range []string{a.Street, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	ImageRef  string
	UnitPrice decimal.Decimal
}

// OrderRequest is the outbound snapshot handed to the order submission client.
type OrderRequest struct {
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	TotalPrice      decimal.Decimal
	IdempotencyKey  string
}
