// Package memory is an in-process ports.CartStorage. Nothing survives the
// process; it backs ephemeral sessions and tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/jcmexdev/storefront-cart/internal/shop/core/ports"
)

var _ ports.CartStorage = (*Storage)(nil)

type Storage struct {
	mu      sync.Mutex
	payload []byte
	saves   int
	err     error
}

func New() *Storage {
	return &Storage{}
}

// NewWithPayload returns a storage pre-seeded with payload, as if a previous session wrote it.
func NewWithPayload(payload []byte) *Storage {
	return &Storage{payload: slices.Clone(payload)}
}

func (s *Storage) Load(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.payload), nil
}

func (s *Storage) Save(_ context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.payload = slices.Clone(payload)
	s.saves++
	return nil
}

// FailWith makes every following Load and Save return err. Pass nil to recover.
func (s *Storage) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Payload returns the last saved payload.
func (s *Storage) Payload() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.payload)
}

// Saves counts successful Save calls.
func (s *Storage) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
