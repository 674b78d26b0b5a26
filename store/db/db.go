// Package db instantiates the dialect driver selected by the profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/server/profile"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store/db/mysql"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store/db/postgres"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store/db/sqlite"
)

// NewDriver opens the database driver named by the profile.
func NewDriver(p *profile.Profile) (store.Driver, error) {
	switch p.Driver {
	case "sqlite":
		return sqlite.NewDriver(p.DSN)
	case "mysql":
		return mysql.NewDriver(p.DSN)
	case "postgres":
		return postgres.NewDriver(p.DSN)
	default:
		return nil, errors.Errorf("unknown database driver %q", p.Driver)
	}
}
