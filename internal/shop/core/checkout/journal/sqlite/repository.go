// Package sqlite stores the checkout journal in the local SQLite database.
//
// The repository shares the *sql.DB opened by sqlitedb.Open with the cart
// storage, so it inherits WAL mode and the single writer connection. Rows
// are only ever inserted; a session's state is its most recent row.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/storefront-cart/internal/pkg/sqlitedb"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/checkout/journal"
)

// ErrSessionNotFound is returned by GetLatest for a session with no entries.
var ErrSessionNotFound = errors.New("checkout session not found")

// schema is applied by New on every start.
// The table is append-only; the latest row per session_id is its current state.
const schema = `
CREATE TABLE IF NOT EXISTS checkout_journal (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Checkout session id, also the X-Idempotency-Key of the order.
    -- Not UNIQUE: one row per transition.
    session_id      TEXT        NOT NULL,

    -- STARTED, STAGE_CHANGED, SUBMITTING, PLACED or FAILED.
    event           TEXT        NOT NULL,

    -- Stage the session is in after the event (Shipping, Payment, Review).
    stage           TEXT        NOT NULL DEFAULT '',

    -- Order request JSON on SUBMITTING, order id on PLACED, NULL otherwise.
    payload         TEXT,

    -- JSON array of failure messages, '[]' when the event succeeded.
    error_messages  TEXT        NOT NULL DEFAULT '[]',

    -- W3C trace and span ids active when the row was written.
    trace_id        TEXT        NOT NULL DEFAULT '',
    span_id         TEXT        NOT NULL DEFAULT '',

    -- Fixed-width UTC RFC3339 with nanoseconds, so text order is time order.
    recorded_at     TEXT        NOT NULL
);

-- "every event of session X in order"
CREATE INDEX IF NOT EXISTS idx_checkout_journal_session ON checkout_journal(session_id, recorded_at);

-- "which session belongs to trace Y"
CREATE INDEX IF NOT EXISTS idx_checkout_journal_trace ON checkout_journal(trace_id);
`

var _ journal.Repository = (*Repository)(nil)

type Repository struct {
	db *sql.DB
}

// New applies the schema to db and returns the repository. Idempotent.
func New(db *sql.DB) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: apply journal schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Save appends entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *journal.Entry) error {
	const q = `
		INSERT INTO checkout_journal
			(session_id, event, stage, payload, error_messages, trace_id, span_id, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SessionID,
		string(entry.Event),
		entry.Stage,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		sqlitedb.FormatTime(entry.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save journal entry for %q: %w", entry.SessionID, err)
	}
	return nil
}

// GetLatest returns the most recent entry of a session. The shop CLI reads it
// before retrying a session, refusing one that already reached PLACED.
// Rows written within the same nanosecond are ordered by id.
func (r *Repository) GetLatest(ctx context.Context, sessionID string) (*journal.Entry, error) {
	const q = `
		SELECT session_id, event, stage, COALESCE(payload,''), error_messages,
		       trace_id, span_id, recorded_at
		FROM   checkout_journal
		WHERE  session_id = ?
		ORDER  BY recorded_at DESC, id DESC
		LIMIT  1`

	var entry journal.Entry
	var recordedAt string
	err := r.db.QueryRowContext(ctx, q, sessionID).Scan(
		&entry.SessionID,
		&entry.Event,
		&entry.Stage,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&recordedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: session %q: %w", sessionID, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", sessionID, err)
	}

	entry.RecordedAt, err = sqlitedb.ParseTime(recordedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// History returns every entry of a session, oldest first.
func (r *Repository) History(ctx context.Context, sessionID string) ([]*journal.Entry, error) {
	const q = `
		SELECT session_id, event, stage, COALESCE(payload,''), error_messages,
		       trace_id, span_id, recorded_at
		FROM   checkout_journal
		WHERE  session_id = ?
		ORDER  BY recorded_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", sessionID, err)
	}
	defer rows.Close()

	var out []*journal.Entry
	for rows.Next() {
		var entry journal.Entry
		var recordedAt string
		if err := rows.Scan(
			&entry.SessionID,
			&entry.Event,
			&entry.Stage,
			&entry.Payload,
			&entry.ErrorMessages,
			&entry.TraceID,
			&entry.SpanID,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan history for %q: %w", sessionID, err)
		}
		if entry.RecordedAt, err = sqlitedb.ParseTime(recordedAt); err != nil {
			return nil, err
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}

// nullableString stores NULL instead of an empty payload.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
