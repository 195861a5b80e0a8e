package ports

import "context"

// CartStorage is the durable client-side record holding the serialised cart.
type CartStorage interface {
	// Load returns the stored payload, or nil with no error when nothing has been saved yet.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored payload. It must not return before the write is durable.
	Save(ctx context.Context, payload []byte) error
}
