// Package journal defines the audit trail of a checkout session.
//
// Every stage transition and the order submission outcome is appended as one
// entry. The flow itself never reads the journal back. A host may consult a
// session's latest entry before retrying it under the same id, which is the
// idempotency key the backend deduplicates on. Each entry carries the trace
// and span ids that were active when it was written so a row can be joined
// with its trace.
package journal

import "time"

// Event is what happened to the session at the time of the entry.
type Event string

const (
	EventStarted      Event = "STARTED"
	EventStageChanged Event = "STAGE_CHANGED"
	EventSubmitting   Event = "SUBMITTING"
	EventPlaced       Event = "PLACED"
	EventFailed       Event = "FAILED"
)

// Entry is a single row of the checkout journal.
type Entry struct {
	// SessionID is the checkout session id, also sent as the idempotency key.
	SessionID string

	Event Event

	// Stage is the stage the session is in after the event.
	Stage string

	// Payload is the JSON order request on SUBMITTING and the order id on PLACED.
	Payload string

	// ErrorMessages is a JSON array of failure details.
	ErrorMessages string

	TraceID string
	SpanID  string

	RecordedAt time.Time
}
