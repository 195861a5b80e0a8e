// Package cart owns the shopper's cart: the entries, their persistence to
// durable client storage, and change notification for whatever renders them.
//
// Every synchronous section runs under one mutex. The lock is never held
// across the product lookup, and concurrent adds of the same unknown product
// share one in-flight lookup, then merge by incrementing.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/jcmexdev/storefront-cart/internal/shop/core/domain/entity"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/ports"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/pricing"
)

var tracer = otel.Tracer("github.com/jcmexdev/storefront-cart/internal/shop/core/cart")

// Snapshot is a consistent view of the cart: Breakdown is always computed
// from exactly Items. Version increases by one on every committed mutation.
type Snapshot struct {
	Items     []entity.CartEntry
	Breakdown pricing.Breakdown
	Version   uint64
}

// Observer receives a snapshot after each committed mutation. Deliveries from
// concurrent mutations may arrive out of order; compare Version to drop stale ones.
type Observer func(Snapshot)

type Store struct {
	storage ports.CartStorage
	lookup  ports.ProductLookup
	policy  StockPolicy

	mu      sync.Mutex
	entries []entity.CartEntry
	version uint64

	inflight singleflight.Group

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObsID int
}

// Open builds a store and rehydrates it from storage. A missing, unreadable
// or malformed record leaves the cart empty; it never fails startup.
func Open(ctx context.Context, storage ports.CartStorage, lookup ports.ProductLookup, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		lookup:    lookup,
		policy:    StockStrict,
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.entries = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []entity.CartEntry {
	payload, err := s.storage.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "cart storage unreadable, starting empty", "record", RecordName, "error", err)
		return nil
	}
	if len(payload) == 0 {
		return nil
	}

	entries, dropped, err := decodeEntries(payload)
	if err != nil {
		slog.WarnContext(ctx, "stored cart is malformed, starting empty", "record", RecordName, "error", err)
		return nil
	}
	if dropped > 0 {
		slog.WarnContext(ctx, "dropped invalid stored cart entries", "record", RecordName, "dropped", dropped)
	}
	return entries
}

// AddItem adds quantity units of productID. A product already in the cart is
// incremented without a lookup; otherwise the product is fetched first and the
// cart is left untouched if that fails.
func (s *Store) AddItem(ctx context.Context, productID string, quantity int) error {
	ctx, span := tracer.Start(ctx, "cart.AddItem", trace.WithAttributes(
		attribute.String("product.id", productID),
		attribute.Int("quantity", quantity),
	))
	defer span.End()

	if productID == "" {
		return ErrProductIDEmpty
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	found, err := s.increment(ctx, productID, quantity)
	if found || err != nil {
		return err
	}

	product, err := s.fetchProduct(ctx, productID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "product lookup failed")
		slog.WarnContext(ctx, "add to cart failed", "product_id", productID, "error", err)
		return fmt.Errorf("cart: add %q: %w", productID, err)
	}

	return s.insert(ctx, product, quantity)
}

// increment bumps an existing entry. found is false when productID is not in the cart.
func (s *Store) increment(ctx context.Context, productID string, quantity int) (found bool, err error) {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}

	next := slices.Clone(s.entries)
	next[i].Quantity += quantity
	snap, err := s.commitLocked(ctx, next, next[i])
	s.mu.Unlock()
	if err != nil {
		return true, err
	}

	slog.InfoContext(ctx, "cart updated", "product_id", productID, "quantity", next[i].Quantity)
	s.notify(snap)
	return true, nil
}

// insert creates the entry for a freshly fetched product. Another add may have
// created it while the lookup was in flight, in which case it is incremented.
func (s *Store) insert(ctx context.Context, product *entity.Product, quantity int) error {
	s.mu.Lock()
	next := slices.Clone(s.entries)
	var changed entity.CartEntry
	if i := s.indexOf(product.ID); i >= 0 {
		next[i].Quantity += quantity
		changed = next[i]
	} else {
		changed = entity.CartEntry{
			ProductID:  product.ID,
			Name:       product.Name,
			ImageRef:   product.ImageRef,
			UnitPrice:  product.Price,
			StockLimit: product.StockLimit,
			Quantity:   quantity,
		}
		next = append(next, changed)
	}
	snap, err := s.commitLocked(ctx, next, changed)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "item added to cart", "product_id", product.ID, "quantity", changed.Quantity)
	s.notify(snap)
	return nil
}

// fetchProduct joins or starts the in-flight lookup for productID. The shared
// call is detached from any single caller's cancellation; each caller stops
// waiting when its own context ends.
func (s *Store) fetchProduct(ctx context.Context, productID string) (*entity.Product, error) {
	ch := s.inflight.DoChan(productID, func() (any, error) {
		return s.lookup.GetProduct(context.WithoutCancel(ctx), productID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		product, _ := res.Val.(*entity.Product)
		if product == nil {
			return nil, ports.ErrProductNotFound
		}
		if product.ID == "" {
			p := *product
			p.ID = productID
			product = &p
		}
		return product, nil
	}
}

// UpdateQuantity replaces the quantity of an entry already in the cart.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("cart: update %q: %w", productID, ErrItemNotInCart)
	}
	next := slices.Clone(s.entries)
	next[i].Quantity = quantity
	snap, err := s.commitLocked(ctx, next, next[i])
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(snap)
	return nil
}

// RemoveItem deletes productID from the cart. Removing an absent product is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	next := slices.Delete(slices.Clone(s.entries), i, i+1)
	snap, err := s.commitLocked(ctx, next, entity.CartEntry{})
	s.mu.Unlock()
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "item removed from cart", "product_id", productID)
	s.notify(snap)
	return nil
}

// Clear empties the cart unconditionally. The in-memory cart is emptied even
// when persisting the empty record fails; that failure is returned.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	snap, err := s.clearLocked(ctx)
	s.mu.Unlock()

	s.notify(snap)
	return err
}

// ClearOrdered takes a placed order out of the cart. ordered is the snapshot
// the order was built from. When nothing changed since then the cart is emptied
// as by Clear. Otherwise only the ordered quantities are taken off their lines,
// so items added or raised while the order was in flight stay in the cart.
func (s *Store) ClearOrdered(ctx context.Context, ordered Snapshot) error {
	s.mu.Lock()
	if s.version == ordered.Version {
		snap, err := s.clearLocked(ctx)
		s.mu.Unlock()
		s.notify(snap)
		return err
	}

	next := slices.Clone(s.entries)
	for _, o := range ordered.Items {
		i := slices.IndexFunc(next, func(e entity.CartEntry) bool { return e.ProductID == o.ProductID })
		if i < 0 {
			continue
		}
		next[i].Quantity -= o.Quantity
	}
	next = slices.DeleteFunc(next, func(e entity.CartEntry) bool { return e.Quantity < 1 })

	slog.WarnContext(ctx, "cart changed while the order was submitted, keeping unordered items",
		"ordered_version", ordered.Version, "version", s.version, "remaining", len(next))

	snap, err := s.commitLocked(ctx, next, entity.CartEntry{})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(snap)
	return nil
}

func (s *Store) clearLocked(ctx context.Context) (Snapshot, error) {
	s.entries = nil
	s.version++
	snap := s.snapshotLocked()
	payload, err := encodeEntries(nil)
	if err == nil {
		err = s.storage.Save(ctx, payload)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to persist cleared cart", "record", RecordName, "error", err)
		return snap, fmt.Errorf("cart: persist cleared cart: %w", err)
	}
	return snap, nil
}

// Items returns a copy of the current entries.
func (s *Store) Items() []entity.CartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Breakdown recomputes pricing from the current entries.
func (s *Store) Breakdown() pricing.Breakdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Compute(s.entries)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for change notifications and returns a function that
// removes it. Observers are called synchronously after the mutation commits,
// without the store lock held.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

func (s *Store) notify(snap Snapshot) {
	s.obsMu.Lock()
	fns := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// commitLocked persists next and only then swaps it in. changed is the entry
// whose quantity moved, checked against its stock limit; pass the zero value to skip.
func (s *Store) commitLocked(ctx context.Context, next []entity.CartEntry, changed entity.CartEntry) (Snapshot, error) {
	if changed.ProductID != "" {
		if err := s.checkStock(ctx, changed); err != nil {
			return Snapshot{}, err
		}
	}

	payload, err := encodeEntries(next)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.storage.Save(ctx, payload); err != nil {
		slog.ErrorContext(ctx, "failed to persist cart", "record", RecordName, "error", err)
		return Snapshot{}, fmt.Errorf("cart: persist: %w", err)
	}

	s.entries = next
	s.version++
	return s.snapshotLocked(), nil
}

func (s *Store) checkStock(ctx context.Context, e entity.CartEntry) error {
	if e.Quantity <= e.StockLimit {
		return nil
	}
	if s.policy == StockAdvisory {
		slog.WarnContext(ctx, "cart quantity above last known stock",
			"product_id", e.ProductID, "quantity", e.Quantity, "stock", e.StockLimit)
		return nil
	}
	return fmt.Errorf("cart: %q wants %d, %d in stock: %w", e.ProductID, e.Quantity, e.StockLimit, ErrStockExceeded)
}

func (s *Store) snapshotLocked() Snapshot {
	items := slices.Clone(s.entries)
	return Snapshot{
		Items:     items,
		Breakdown: pricing.Compute(items),
		Version:   s.version,
	}
}

func (s *Store) indexOf(productID string) int {
	return slices.IndexFunc(s.entries, func(e entity.CartEntry) bool {
		return e.ProductID == productID
	})
}
