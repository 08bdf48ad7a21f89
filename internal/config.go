package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Sync   SyncConfig        `yaml:"sync"`
	Assets AssetsConfig      `yaml:"assets"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	return c.Assets.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds session and SSO configuration.
//
// JWTSecret signs session tokens (HS256). SessionTTL defaults to 24h
// when unset. The Lark block is optional; when ClientID is empty the
// /auth/lark routes respond 404.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	Lark       LarkConfig    `yaml:"lark"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.SessionTTL == 0 {
		c.SessionTTL = 24 * time.Hour
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.JWTSecret, validation.Required, validation.Length(16, 0)),
	); err != nil {
		return err
	}
	return c.Lark.Validate()
}

// LarkConfig holds the Lark SSO OAuth client settings.
type LarkConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Enabled reports whether Lark SSO is configured.
func (c *LarkConfig) Enabled() bool { return c.ClientID != "" }

// Validate validates the Lark configuration.
func (c *LarkConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.ClientSecret, validation.Required),
		validation.Field(&c.RedirectURL, validation.Required),
	)
}

// SyncConfig holds the department directory sync settings. Path points
// at an exported HR directory file (JSON); when Watch is true the file
// is re-synced on change.
type SyncConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Enabled reports whether directory sync is configured.
func (c *SyncConfig) Enabled() bool { return c.Path != "" }

// Validate validates the sync configuration.
func (c *SyncConfig) Validate() error {
	return nil
}

// AssetsConfig holds the uploaded-asset store settings (QR code images).
type AssetsConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the assets configuration.
func (c *AssetsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./linkhub.db",
		},
		Auth: AuthConfig{
			SessionTTL: 24 * time.Hour,
		},
		Assets: AssetsConfig{
			Dir: "./assets",
		},
	}
}
