package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite driver

	"github.com/smoketrack/smoketrack/internal/domain"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// timeLayout is how event timestamps are persisted. Always UTC.
const timeLayout = time.RFC3339Nano

// ErrNotFound is returned when an operation targets an event id that does
// not exist.
var ErrNotFound = errors.New("event not found")

// SQLiteStore is the durable persistence layer for smoking events and their
// trigger tags. It is an append-only log: rows are only ever inserted or
// deleted, never updated.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file and fails fast if it
// is unusable.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// WAL + busy timeout to avoid "database is locked" when pooled
	// connections race. The modernc driver only honors _pragma-style
	// query parameters.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (s *SQLiteStore) EnsureSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}

// Ping is used by the readiness endpoint to validate DB connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close shuts down the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LogEvent inserts one event stamped with the current UTC time plus one tag
// row per provided label. Duplicate labels in the input are not deduplicated;
// each produces its own row and therefore its own unit of trigger frequency.
//
// The event insert and the tag inserts run in a single transaction: either
// the event and all of its tags persist, or nothing does.
func (s *SQLiteStore) LogEvent(ctx context.Context, triggers []string) (int64, error) {
	return s.LogEventAt(ctx, time.Now().UTC(), triggers)
}

// LogEventAt is LogEvent with an explicit timestamp, used for backfills and
// reproducible fixtures.
func (s *SQLiteStore) LogEventAt(ctx context.Context, ts time.Time, triggers []string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO events(timestamp) VALUES(?)`,
		ts.UTC().Format(timeLayout),
	)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to read event id: %w", err)
	}

	for _, label := range triggers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO trigger_tags(event_id, trigger) VALUES(?, ?)`,
			id, label,
		); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to insert trigger tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// ListEvents returns every event in insertion order.
func (s *SQLiteStore) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp FROM events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan events: %w", err)
	}
	return events, nil
}

// ListTriggerTags returns every trigger tag in insertion order. Insertion
// order is what fixes the documented "first label to reach the max wins"
// tie-break in the ranking code.
func (s *SQLiteStore) ListTriggerTags(ctx context.Context) ([]domain.TriggerTag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, trigger FROM trigger_tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trigger tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.TriggerTag
	for rows.Next() {
		var t domain.TriggerTag
		if err := rows.Scan(&t.ID, &t.EventID, &t.Label); err != nil {
			return nil, fmt.Errorf("failed to scan trigger tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan trigger tags: %w", err)
	}
	return tags, nil
}

// ListEventsWithTriggers joins events to their tags and groups by event id.
// An event with zero tags yields an empty trigger slice, never a missing
// entry.
func (s *SQLiteStore) ListEventsWithTriggers(ctx context.Context) ([]domain.EventWithTriggers, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.timestamp, t.trigger
		FROM events e
		LEFT JOIN trigger_tags t ON t.event_id = e.id
		ORDER BY e.id, t.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events with triggers: %w", err)
	}
	defer rows.Close()

	var (
		out  []domain.EventWithTriggers
		last int64 = -1
	)
	for rows.Next() {
		var (
			id      int64
			rawTS   string
			trigger sql.NullString
		)
		if err := rows.Scan(&id, &rawTS, &trigger); err != nil {
			return nil, fmt.Errorf("failed to scan joined row: %w", err)
		}
		if id != last {
			ts, err := parseTimestamp(rawTS)
			if err != nil {
				return nil, err
			}
			out = append(out, domain.EventWithTriggers{
				Event:    domain.Event{ID: id, Timestamp: ts},
				Triggers: []string{},
			})
			last = id
		}
		if trigger.Valid {
			cur := &out[len(out)-1]
			cur.Triggers = append(cur.Triggers, trigger.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan joined rows: %w", err)
	}
	return out, nil
}

// DeleteEvent removes an event and its trigger tags. Tags go first so the
// events → trigger_tags reference never dangles, even though SQLite is not
// enforcing the foreign key here. Returns ErrNotFound when no such event
// exists.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM trigger_tags WHERE event_id = ?`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete trigger tags: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		_ = tx.Rollback()
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanEvent(rows *sql.Rows) (domain.Event, error) {
	var (
		ev    domain.Event
		rawTS string
	)
	if err := rows.Scan(&ev.ID, &rawTS); err != nil {
		return domain.Event{}, fmt.Errorf("failed to scan event: %w", err)
	}
	ts, err := parseTimestamp(rawTS)
	if err != nil {
		return domain.Event{}, err
	}
	ev.Timestamp = ts
	return ev, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	ts, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed event timestamp %q: %w", raw, err)
	}
	return ts.UTC(), nil
}
