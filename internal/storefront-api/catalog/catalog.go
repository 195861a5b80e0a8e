// Package catalog is the in-memory product catalog of the development
// backend. It owns stock and the per-order reservations taken against it.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Product struct {
	ID           string
	Name         string
	Image        string
	Price        decimal.Decimal
	CountInStock int
}

// Line is a quantity of one product inside a reservation.
type Line struct {
	ProductID string
	Quantity  int
}

type Catalog struct {
	mu           sync.Mutex
	products     map[string]*Product
	reservations map[string][]Line
}

func New(products ...Product) *Catalog {
	c := &Catalog{
		products:     make(map[string]*Product, len(products)),
		reservations: make(map[string][]Line),
	}
	for _, p := range products {
		c.products[p.ID] = &p
	}
	return c
}

// Seed is the catalog the development backend starts with.
func Seed() []Product {
	return []Product{
		{ID: "p1", Name: "Wireless Keyboard", Image: "/images/keyboard.jpg", Price: decimal.RequireFromString("60.00"), CountInStock: 10},
		{ID: "p2", Name: "Optical Mouse", Image: "/images/mouse.jpg", Price: decimal.RequireFromString("10.00"), CountInStock: 25},
		{ID: "p3", Name: "27in Monitor", Image: "/images/monitor.jpg", Price: decimal.RequireFromString("249.99"), CountInStock: 4},
		{ID: "p4", Name: "USB-C Cable", Image: "/images/cable.jpg", Price: decimal.RequireFromString("8.49"), CountInStock: 100},
		{ID: "p5", Name: "Webcam", Image: "/images/webcam.jpg", Price: decimal.RequireFromString("45.50"), CountInStock: 0},
	}
}

// Product returns a copy of the product with its current stock.
func (c *Catalog) Product(id string) (Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return Product{}, fmt.Errorf("catalog: %q: %w", id, ErrProductNotFound)
	}
	return *p, nil
}

// Reserve takes stock for every line of orderID, or none of them.
func (c *Catalog) Reserve(orderID string, lines []Line) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	need := make(map[string]int, len(lines))
	for _, l := range lines {
		need[l.ProductID] += l.Quantity
	}
	for id, qty := range need {
		p, ok := c.products[id]
		if !ok {
			return fmt.Errorf("catalog: %q: %w", id, ErrProductNotFound)
		}
		if p.CountInStock < qty {
			slog.Warn("insufficient stock", "order_id", orderID, "product_id", id, "available", p.CountInStock, "requested", qty)
			return fmt.Errorf("catalog: %s is out of stock (%d left): %w", p.Name, p.CountInStock, ErrInsufficientStock)
		}
	}

	for id, qty := range need {
		c.products[id].CountInStock -= qty
	}
	c.reservations[orderID] = append([]Line(nil), lines...)
	slog.Info("stock reserved", "order_id", orderID, "lines", len(lines))
	return nil
}

// Release returns the stock reserved for orderID. Unknown orders are ignored.
func (c *Catalog) Release(orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines, ok := c.reservations[orderID]
	if !ok {
		slog.Warn("no reservation to release", "order_id", orderID)
		return
	}
	for _, l := range lines {
		if p, ok := c.products[l.ProductID]; ok {
			p.CountInStock += l.Quantity
		}
	}
	delete(c.reservations, orderID)
	slog.Info("stock released", "order_id", orderID)
}
