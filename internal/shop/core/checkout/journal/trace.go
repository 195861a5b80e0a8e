package journal

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers found in a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo returns the hex trace and span ids of the span active in
// ctx, or empty strings when there is none.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an entry stamped with the trace info of ctx.
//
//	entry := journal.NewEntry(ctx, sessionID, journal.EventStageChanged, "Payment", "", nil)
//	_ = repo.Save(ctx, entry)
func NewEntry(ctx context.Context, sessionID string, event Event, stage, payload string, errs []string) *Entry {
	ti := ExtractTraceInfo(ctx)

	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	return &Entry{
		SessionID:     sessionID,
		Event:         event,
		Stage:         stage,
		Payload:       payload,
		ErrorMessages: errJSON,
		TraceID:       ti.TraceID,
		SpanID:        ti.SpanID,
		RecordedAt:    time.Now().UTC(),
	}
}
