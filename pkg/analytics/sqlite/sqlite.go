// Package sqlite publishes analytics events to a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/leadline/pkg/analytics/sqlstore"
)

// Publisher implements analytics.Publisher on SQLite.
type Publisher struct {
	*sqlstore.Store
}

// NewPublisher opens dbPath, which can be a file path or ":memory:", and
// creates the events table.
func NewPublisher(ctx context.Context, dbPath string) (*Publisher, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Workers share one connection; SQLite serializes writers anyway and
	// ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)

	store, err := sqlstore.Open(ctx, db, sqlstore.SQLite)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Publisher{Store: store}, nil
}
