package journal

import "context"

// Repository persists journal entries. The table is append-only: each call adds a row.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
}
