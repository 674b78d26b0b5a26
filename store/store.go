// Package store is the persistence facade: typed operations over a
// dialect-specific Driver.
package store

import (
	"context"
	"database/sql"
)

// Driver is the contract a database dialect implements.
type Driver interface {
	GetDB() *sql.DB
	Migrate(ctx context.Context) error
	Close() error

	// user
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)

	// chat
	UpsertChatSession(ctx context.Context, upsert *UpsertChatSession) error
	ListChatSessions(ctx context.Context, find *FindChatSession) ([]*ChatSession, error)
	ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error)
	DeleteChatSession(ctx context.Context, sessionID string) error
}

// Store wraps a Driver with the application-facing API.
type Store struct {
	driver Driver
}

// New creates a store backed by the given driver.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

// Migrate creates or upgrades the schema.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

// GetDB exposes the underlying connection, mainly for tests.
func (s *Store) GetDB() *sql.DB {
	return s.driver.GetDB()
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.driver.Close()
}
