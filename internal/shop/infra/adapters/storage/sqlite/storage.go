// Package sqlite implements ports.CartStorage as one named record in a
// local SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jcmexdev/storefront-cart/internal/pkg/sqlitedb"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS storage_records (
    name        TEXT PRIMARY KEY,
    payload     BLOB NOT NULL,
    updated_at  TEXT NOT NULL
);
`

var _ ports.CartStorage = (*Storage)(nil)

type Storage struct {
	db   *sql.DB
	name string
}

// New applies the schema and returns a storage bound to the record name.
func New(db *sql.DB, name string) (*Storage, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: apply storage schema: %w", err)
	}
	return &Storage{db: db, name: name}, nil
}

// Load returns the stored payload, or nil when the record does not exist yet.
func (s *Storage) Load(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM storage_records WHERE name = ?`, s.name,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load record %q: %w", s.name, err)
	}
	return payload, nil
}

// Save replaces the record with payload.
func (s *Storage) Save(ctx context.Context, payload []byte) error {
	const q = `
		INSERT INTO storage_records (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload    = excluded.payload,
			updated_at = excluded.updated_at`

	if payload == nil {
		payload = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, q, s.name, payload, sqlitedb.FormatTime(time.Now().UTC())); err != nil {
		return fmt.Errorf("sqlite: save record %q: %w", s.name, err)
	}
	return nil
}
