// Package sqlstore appends analytics events to a single SQL table. The
// postgres and sqlite publishers are thin dialect wrappers around it.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/papercomputeco/leadline/pkg/analytics"
)

// TableName is the append-only events table.
const TableName = "conversation_events"

var columns = []string{
	"event_id",
	"schema_version",
	"event_type",
	"emitted_at",
	"user_id",
	"thread_id",
	"role",
	"message",
	"conversation_stage",
	"language",
	"model",
	"snippet_count",
	"error",
	"classification_latency",
	"retrieval_latency",
	"generation_latency",
	"total_latency",
}

// Dialect holds the SQL that differs between databases.
type Dialect struct {
	Name        string
	Placeholder func(n int) string
	CreateTable string
}

// Postgres uses $n placeholders and native timestamp types.
var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	CreateTable: `CREATE TABLE IF NOT EXISTS ` + TableName + ` (
	event_id               TEXT PRIMARY KEY,
	schema_version         INTEGER NOT NULL,
	event_type             TEXT NOT NULL,
	emitted_at             TIMESTAMPTZ NOT NULL,
	user_id                TEXT NOT NULL,
	thread_id              TEXT NOT NULL,
	role                   TEXT,
	message                TEXT,
	conversation_stage     TEXT,
	language               TEXT,
	model                  TEXT,
	snippet_count          INTEGER,
	error                  TEXT,
	classification_latency DOUBLE PRECISION,
	retrieval_latency      DOUBLE PRECISION,
	generation_latency     DOUBLE PRECISION,
	total_latency          DOUBLE PRECISION
)`,
}

// SQLite uses ? placeholders.
var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
	CreateTable: `CREATE TABLE IF NOT EXISTS ` + TableName + ` (
	event_id               TEXT PRIMARY KEY,
	schema_version         INTEGER NOT NULL,
	event_type             TEXT NOT NULL,
	emitted_at             TIMESTAMP NOT NULL,
	user_id                TEXT NOT NULL,
	thread_id              TEXT NOT NULL,
	role                   TEXT,
	message                TEXT,
	conversation_stage     TEXT,
	language               TEXT,
	model                  TEXT,
	snippet_count          INTEGER,
	error                  TEXT,
	classification_latency REAL,
	retrieval_latency      REAL,
	generation_latency     REAL,
	total_latency          REAL
)`,
}

// Store is an analytics.Publisher over a *sql.DB.
type Store struct {
	db     *sql.DB
	insert string
}

// Open verifies db is reachable and creates the events table.
func Open(ctx context.Context, db *sql.DB, d Dialect) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping %s database: %w", d.Name, err)
	}

	if _, err := db.ExecContext(ctx, d.CreateTable); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", TableName, err)
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = d.Placeholder(i + 1)
	}

	return &Store{
		db: db,
		insert: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			TableName, strings.Join(columns, ", "), strings.Join(placeholders, ", ")),
	}, nil
}

// Publish inserts one row.
func (s *Store) Publish(ctx context.Context, e *analytics.Event) error {
	if e == nil {
		return analytics.ErrNilEvent
	}

	_, err := s.db.ExecContext(ctx, s.insert,
		e.EventID,
		e.SchemaVersion,
		e.EventType,
		e.EmittedAt,
		e.UserID,
		e.ThreadID,
		e.Role,
		e.Message,
		e.Stage,
		e.Language,
		e.Model,
		e.SnippetCount,
		e.Error,
		e.Latency.Classification,
		e.Latency.Retrieval,
		e.Latency.Generation,
		e.Latency.Total,
	)
	if err != nil {
		return fmt.Errorf("inserting %s event: %w", e.EventType, err)
	}
	return nil
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ analytics.Publisher = (*Store)(nil)
