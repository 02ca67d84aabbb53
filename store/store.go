// Package store persists users and their transactions in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/etnz/finagle/logger"
)

// ErrNotFound is returned when a user or a transaction does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	date TEXT NOT NULL,
	time TEXT NOT NULL,
	action TEXT NOT NULL CHECK (action IN ('buy', 'sell')),
	ticker TEXT NOT NULL,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	price TEXT NOT NULL,
	value TEXT NOT NULL,
	fee TEXT NOT NULL,
	contract_note TEXT
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date, time);
CREATE INDEX IF NOT EXISTS idx_transactions_user_ticker ON transactions(user_id, ticker);
`

// Store is a SQLite database of users and transactions. It is safe for
// concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens, or creates, the database at path and makes sure its schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	// SQLite serializes writers, a single connection avoids "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema in %s: %w", path, err)
	}
	logger.FromContext(ctx).Debug("Database initialized", "path", path)
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
