// Package postgres implements store.Driver on lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// DB implements store.Driver.
type DB struct {
	db *sql.DB
}

// NewDriver opens a PostgreSQL connection with the given DSN.
func NewDriver(dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres connection")
	}
	return &DB{db: db}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            SERIAL PRIMARY KEY,
			uid           TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_ts    BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
		)`,
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id         TEXT PRIMARY KEY,
			user_id    INTEGER NOT NULL,
			title      TEXT NOT NULL DEFAULT 'New Chat',
			thread_id  TEXT,
			created_ts BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id         BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_sessions_user ON chat_sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id)`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrate postgres schema")
		}
	}
	return nil
}

// placeholder returns the n-th positional parameter, $1-based.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
