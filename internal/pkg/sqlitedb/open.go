// Package sqlitedb opens the local SQLite database shared by the cart record
// and the checkout journal.
//
// WAL mode is enabled so a reader never blocks the single writer.
package sqlitedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// pure-Go driver, registered as "sqlite"
	_ "modernc.org/sqlite"
)

// Open opens (or creates) the database file at path, creating its parent directory.
//
//	db, err := sqlitedb.Open("./data/shop.db")
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir for %q: %w", path, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// one writer connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %q: %w", path, err)
	}
	return db, nil
}
