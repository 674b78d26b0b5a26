// Package profile holds the server's runtime configuration.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Profile is the validated runtime configuration of the chat server.
type Profile struct {
	// Mode is "prod" or "dev".
	Mode string `mapstructure:"mode"`
	// Addr is the bind address, empty for all interfaces.
	Addr string `mapstructure:"addr"`
	// Port is the HTTP port.
	Port int `mapstructure:"port"`
	// Data is the directory holding local state (the sqlite database).
	Data string `mapstructure:"data"`
	// Driver is the database driver: sqlite (default), mysql or postgres.
	Driver string `mapstructure:"driver"`
	// DSN is the database connection string. Defaults to a sqlite file
	// under Data.
	DSN string `mapstructure:"dsn"`
	// AssistantURL is the base URL of the conversation provider.
	AssistantURL string `mapstructure:"assistant-url"`
	// AssistantKey authenticates against the conversation provider.
	AssistantKey string `mapstructure:"assistant-key"`
	// AssistantName selects the managed assistant to converse with.
	AssistantName string `mapstructure:"assistant-name"`
	// Secret signs access tokens.
	Secret string `mapstructure:"secret"`
	// Locale is the default UI locale ("en" or "th") applied to new users.
	Locale string `mapstructure:"locale"`
	// Version is the build version, set by the entrypoint.
	Version string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Validate normalizes the profile and fills derived defaults.
func (p *Profile) Validate() error {
	if p.Mode != "prod" && p.Mode != "dev" {
		p.Mode = "dev"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	switch p.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		if err := os.MkdirAll(p.Data, 0o750); err != nil {
			return errors.Wrapf(err, "create data directory %s", p.Data)
		}
		p.DSN = filepath.Join(p.Data, fmt.Sprintf("unai_%s.db", p.Mode))
	}
	if p.Driver != "sqlite" && p.DSN == "" {
		return errors.Errorf("dsn is required for driver %q", p.Driver)
	}
	if p.AssistantURL == "" {
		return errors.New("assistant-url is required")
	}
	if p.AssistantName == "" {
		p.AssistantName = "unai-chatbot"
	}
	if p.Secret == "" {
		if p.Mode == "prod" {
			return errors.New("secret is required in prod mode")
		}
		p.Secret = "unai-chat-dev"
	}
	if p.Locale != "th" {
		p.Locale = "en"
	}
	return nil
}

// GetProfile builds the profile from viper-bound flags and UNAI_* environment
// variables.
func GetProfile(version string) (*Profile, error) {
	p := &Profile{}
	if err := viper.Unmarshal(p); err != nil {
		return nil, errors.Wrap(err, "unmarshal profile")
	}
	p.Version = version
	p.Data = strings.TrimRight(p.Data, string(os.PathSeparator))
	if p.Data == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "resolve home directory")
		}
		p.Data = filepath.Join(home, ".unai-chat")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
