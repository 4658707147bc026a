// Package observability records domain-level business events to SQLite.
//
// Persistence is best-effort: a failing observability write is logged via
// slog but never propagates, so event recording can never change an API
// response.
package observability

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/hazyhaar/sitekb/idgen"
)

// Schema contains the DDL for the event log table.
const Schema = `
CREATE TABLE IF NOT EXISTS business_event_logs (
    event_id    TEXT PRIMARY KEY,
    event_type  TEXT NOT NULL,
    entity_type TEXT NOT NULL DEFAULT '',
    entity_id   TEXT NOT NULL DEFAULT '',
    details     TEXT NOT NULL DEFAULT '',
    success     INTEGER NOT NULL DEFAULT 1,
    created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_type_time
    ON business_event_logs(event_type, created_at DESC);
`

// Event represents a domain-level event to record.
type Event struct {
	Type       string // e.g. "publish", "lead_created", "gist_generated"
	EntityType string
	EntityID   string
	Details    string // optional JSON
	Success    bool
}

// EventLogger writes business events.
type EventLogger struct {
	db    *sql.DB
	newID idgen.Generator
}

// Option configures an EventLogger.
type Option func(*EventLogger)

// WithIDGenerator sets a custom ID generator for event IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(l *EventLogger) { l.newID = gen }
}

// NewEventLogger creates a logger writing to db and applies the schema.
func NewEventLogger(db *sql.DB, opts ...Option) (*EventLogger, error) {
	l := &EventLogger{
		db:    db,
		newID: idgen.Prefixed("evt_", idgen.Default),
	}
	for _, o := range opts {
		o(l)
	}
	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}
	return l, nil
}

// Log records a business event. Errors are logged, never returned.
func (l *EventLogger) Log(ctx context.Context, e Event) {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO business_event_logs
			(event_id, event_type, entity_type, entity_id, details, success, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		l.newID(), e.Type, e.EntityType, e.EntityID, e.Details, e.Success, time.Now().Unix())
	if err != nil {
		slog.Error("event log failed", "error", err, "event_type", e.Type)
	}
}

// Recent returns the most recent events of the given type, newest first.
// An empty eventType matches all events.
func (l *EventLogger) Recent(ctx context.Context, eventType string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT event_type, entity_type, entity_id, details, success
		FROM business_event_logs
		WHERE (? = '' OR event_type = ?)
		ORDER BY created_at DESC, event_id DESC LIMIT ?`,
		eventType, eventType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Type, &e.EntityType, &e.EntityID, &e.Details, &e.Success); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
