// Package mysql implements store.Driver on go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// DB implements store.Driver.
type DB struct {
	db *sql.DB
}

// NewDriver opens a MySQL connection with the given DSN
// (user:pass@tcp(host:port)/dbname).
func NewDriver(dsn string) (*DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open mysql connection")
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
			id            INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			uid           VARCHAR(256) NOT NULL UNIQUE,
			email         VARCHAR(256) NOT NULL UNIQUE,
			password_hash VARCHAR(256) NOT NULL,
			created_ts    BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id         VARCHAR(64) NOT NULL PRIMARY KEY,
			user_id    INT NOT NULL,
			title      TEXT NOT NULL,
			thread_id  VARCHAR(256),
			created_ts BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id         BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			session_id VARCHAR(64) NOT NULL,
			role       VARCHAR(32) NOT NULL,
			content    TEXT NOT NULL,
			created_ts BIGINT NOT NULL,
			CONSTRAINT fk_chat_messages_session FOREIGN KEY (session_id) REFERENCES chat_sessions(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX idx_chat_sessions_user ON chat_sessions(user_id)`,
		`CREATE INDEX idx_chat_messages_session ON chat_messages(session_id)`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			// MySQL has no CREATE INDEX IF NOT EXISTS; re-running the migration
			// hits a duplicate key name error that is safe to ignore.
			if isDuplicateKeyNameError(err) {
				continue
			}
			return errors.Wrap(err, "migrate mysql schema")
		}
	}
	return nil
}

func isDuplicateKeyNameError(err error) bool {
	var mysqlErr *mysql.MySQLError
	// Error 1061: duplicate key name.
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1061
}
