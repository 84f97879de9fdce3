// Package sqlite provides a SQLite-backed implementation of
// steplog.Repository.
//
// WAL mode is enabled on Open so that readers never block the writer — the
// workflow goroutines write while an operator (or a reconciliation job) may
// be querying the audit trail.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ecomkit/order-service/internal/order/steplog"

	// Pure-Go SQLite driver: no CGO, builds cleanly in Alpine images.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. The table is append-only:
// each row is an immutable record of one downstream step.
const schema = `
CREATE TABLE IF NOT EXISTS step_logs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Order the step belongs to. Not UNIQUE: one order produces one row
    -- per item-level stock call plus one per publish attempt.
    order_id    TEXT NOT NULL,

    -- Step name, e.g. "stock_subtract", "stock_restore", "publish_event".
    step        TEXT NOT NULL,

    -- "ok" or "failed".
    outcome     TEXT NOT NULL,

    -- JSON blob with step-specific context (product, quantity, error).
    detail      TEXT NOT NULL DEFAULT '',

    -- W3C trace/span IDs from the active OTel span, for jumping from an
    -- audit row to the distributed trace.
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',

    -- RFC3339 stored as TEXT, SQLite idiom.
    recorded_at TEXT NOT NULL
);

-- The reconciliation query: all failed steps for an order, in order.
CREATE INDEX IF NOT EXISTS idx_step_logs_order_id ON step_logs(order_id, recorded_at);

-- The drift query: every failed stock step since a point in time.
CREATE INDEX IF NOT EXISTS idx_step_logs_outcome ON step_logs(outcome, step);
`

// Repository is the SQLite implementation of steplog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends one audit row. Safe for concurrent use.
func (r *Repository) Save(ctx context.Context, e *steplog.Entry) error {
	const q = `
		INSERT INTO step_logs
			(order_id, step, outcome, detail, trace_id, span_id, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		e.OrderID,
		e.Step,
		string(e.Outcome),
		e.Detail,
		e.TraceID,
		e.SpanID,
		e.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save step log for %q: %w", e.OrderID, err)
	}
	return nil
}

// ListByOrder returns every audit row for an order, oldest first. Used by
// reconciliation tooling and tests.
func (r *Repository) ListByOrder(ctx context.Context, orderID string) ([]steplog.Entry, error) {
	const q = `
		SELECT order_id, step, outcome, detail, trace_id, span_id, recorded_at
		FROM   step_logs
		WHERE  order_id = ?
		ORDER  BY recorded_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list step logs for %q: %w", orderID, err)
	}
	defer rows.Close()

	var out []steplog.Entry
	for rows.Next() {
		var e steplog.Entry
		var recordedAt string
		if err := rows.Scan(&e.OrderID, &e.Step, (*string)(&e.Outcome), &e.Detail, &e.TraceID, &e.SpanID, &recordedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan step log: %w", err)
		}
		e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse time %q: %w", recordedAt, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
