package cart

import (
	"fmt"
	"strings"
)

// StockPolicy decides what the store does with quantities above the last known stock.
type StockPolicy int

const (
	// StockStrict rejects over-limit quantities with ErrStockExceeded.
	StockStrict StockPolicy = iota
	// StockAdvisory accepts them and logs a warning; the order backend stays the authority.
	StockAdvisory
)

func (p StockPolicy) String() string {
	switch p {
	case StockStrict:
		return "strict"
	case StockAdvisory:
		return "advisory"
	default:
		return "unknown"
	}
}

// ParseStockPolicy maps a configuration value to a policy.
func ParseStockPolicy(s string) (StockPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return StockStrict, nil
	case "advisory":
		return StockAdvisory, nil
	default:
		return 0, fmt.Errorf("cart: unknown stock policy %q", s)
	}
}

type Option func(*Store)

func WithStockPolicy(p StockPolicy) Option {
	return func(s *Store) { s.policy = p }
}
