package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront-cart/internal/shop/core/domain/entity"
)

// RecordName is the name of the single storage record holding the cart.
const RecordName = "cartItems"

// storedEntry is one element of the persisted record. The field names are the
// ones the storefront has always written to local storage.
type storedEntry struct {
	ID           string      `json:"_id"`
	Name         string      `json:"name"`
	Image        string      `json:"image"`
	Price        storedPrice `json:"price"`
	CountInStock int         `json:"countInStock"`
	Qty          int         `json:"qty"`
}

// storedPrice is written as a JSON number. Reading accepts a number or a
// quoted decimal string.
type storedPrice struct {
	decimal.Decimal
}

func (p storedPrice) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

func encodeEntries(entries []entity.CartEntry) ([]byte, error) {
	out := make([]storedEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, storedEntry{
			ID:           e.ProductID,
			Name:         e.Name,
			Image:        e.ImageRef,
			Price:        storedPrice{e.UnitPrice},
			CountInStock: e.StockLimit,
			Qty:          e.Quantity,
		})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("cart: encode entries: %w", err)
	}
	return b, nil
}

// decodeEntries parses a stored payload. Anything that is not a JSON array of
// entries is an error; the caller decides to start empty.
//
// Entries with a blank id, a quantity below 1 or a negative price or stock are
// dropped. Repeated ids are merged into the first occurrence.
func decodeEntries(payload []byte) (entries []entity.CartEntry, dropped int, err error) {
	var raw []storedEntry
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, 0, fmt.Errorf("cart: decode entries: %w", err)
	}
	if raw == nil {
		// literal "null"
		return nil, 0, fmt.Errorf("cart: decode entries: payload is not a collection")
	}

	index := make(map[string]int, len(raw))
	entries = make([]entity.CartEntry, 0, len(raw))
	for _, r := range raw {
		if r.ID == "" || r.Qty < 1 || r.Price.IsNegative() || r.CountInStock < 0 {
			dropped++
			continue
		}
		if i, ok := index[r.ID]; ok {
			entries[i].Quantity += r.Qty
			dropped++
			continue
		}
		index[r.ID] = len(entries)
		entries = append(entries, entity.CartEntry{
			ProductID:  r.ID,
			Name:       r.Name,
			ImageRef:   r.Image,
			UnitPrice:  r.Price.Decimal,
			StockLimit: r.CountInStock,
			Quantity:   r.Qty,
		})
	}
	return entries, dropped, nil
}
