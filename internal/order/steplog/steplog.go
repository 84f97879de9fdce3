// Package steplog defines the domain types for the best-effort step audit.
//
// Once an order is durably saved, the workflow still has downstream work to
// do — stock decrements, compensating restorations, event publishes — none
// of which may fail the committed order. Each such step is recorded here as
// an append-only row so that:
//
//  1. Operations can find and reconcile drifted stock counts (the system
//     deliberately accepts drift rather than lose orders).
//
//  2. A failed step can be correlated with the full distributed trace via
//     the trace_id column.
package steplog

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Outcome is the result of one best-effort downstream step.
type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeFailed Outcome = "failed"
)

// Step names recorded by the workflow.
const (
	StepStockSubtract = "stock_subtract"
	StepStockRestore  = "stock_restore"
	StepPublish       = "publish_event"
)

// Entry is a single row in the step_logs table: one downstream step executed
// for one order, after the order was committed.
type Entry struct {
	// OrderID joins the row with business data.
	OrderID string

	// Step is one of the Step* constants.
	Step string

	// Outcome is ok or failed.
	Outcome Outcome

	// Detail is step-specific context, JSON-encoded: the product and
	// quantity for stock steps, the event type for publishes, plus the
	// error string on failure.
	Detail string

	// TraceID / SpanID come from the OpenTelemetry span active when the
	// step ran. Empty when no span is in the context (unit tests).
	TraceID string
	SpanID  string

	// RecordedAt is the wall-clock time of the step.
	RecordedAt time.Time
}

// Repository is the port for persisting entries. The workflow depends on
// this abstraction, not on SQLite directly; recording is itself best-effort
// and a nil Repository disables auditing entirely.
type Repository interface {
	// Save appends a row; the table is an audit log, never an upsert.
	Save(ctx context.Context, e *Entry) error
}

// NewEntry builds an Entry with trace identifiers extracted from ctx and the
// detail map JSON-encoded.
func NewEntry(ctx context.Context, orderID, step string, outcome Outcome, detail map[string]any) *Entry {
	e := &Entry{
		OrderID:    orderID,
		Step:       step,
		Outcome:    outcome,
		RecordedAt: time.Now().UTC(),
	}

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}

	if len(detail) > 0 {
		if b, err := json.Marshal(detail); err == nil {
			e.Detail = string(b)
		}
	}
	return e
}
