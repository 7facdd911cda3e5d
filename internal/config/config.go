// Package config handles client configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for the client.
type Config struct {
	// Server settings
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Cache settings
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Events settings
	Events EventsConfig `yaml:"events" mapstructure:"events"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// ServerConfig identifies the realm and account.
type ServerConfig struct {
	// URL is the realm base URL, e.g. https://chat.example.com.
	URL string `yaml:"url" mapstructure:"url"`

	// Email is the account email address.
	Email string `yaml:"email" mapstructure:"email"`

	// APIKeyFile points at a file holding the API key. When empty the
	// credentials file in the config dir is used.
	APIKeyFile string `yaml:"api_key_file" mapstructure:"api_key_file"`
}

// GlobalConfig contains directory settings.
type GlobalConfig struct {
	// DataDir is where the client stores its data.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config and credential files are stored.
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// CacheConfig contains local cache settings.
type CacheConfig struct {
	// Path is the SQLite cache file path. Defaults to DataDir/cache.db.
	Path string `yaml:"path" mapstructure:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`
}

// EventsConfig contains event-queue settings.
type EventsConfig struct {
	// LongPollTimeout is the client-side cap on one event poll.
	LongPollTimeout time.Duration `yaml:"long_poll_timeout" mapstructure:"long_poll_timeout"`

	// RetryBackoff is the initial wait after a failed poll.
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`

	// MaxRetryBackoff caps the exponential backoff.
	MaxRetryBackoff time.Duration `yaml:"max_retry_backoff" mapstructure:"max_retry_backoff"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// RefreshInterval is how often the dashboard re-reads session state.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Server: ServerConfig{},
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "zulip-mobile"),
			ConfigDir: filepath.Join(homeDir, ".config", "zulip-mobile"),
		},
		Cache: CacheConfig{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Events: EventsConfig{
			LongPollTimeout: 100 * time.Second,
			RetryBackoff:    time.Second,
			MaxRetryBackoff: 30 * time.Second,
		},
		TUI: TUIConfig{
			RefreshInterval: 500 * time.Millisecond,
			Theme:           "default",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Events.LongPollTimeout < time.Second {
		return fmt.Errorf("events.long_poll_timeout must be at least 1s")
	}
	if c.Events.RetryBackoff < 10*time.Millisecond {
		return fmt.Errorf("events.retry_backoff must be at least 10ms")
	}
	if c.TUI.RefreshInterval < 100*time.Millisecond {
		return fmt.Errorf("tui.refresh_interval must be at least 100ms")
	}
	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// CachePath returns the full cache database path.
func (c *Config) CachePath() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return filepath.Join(c.Global.DataDir, "cache.db")
}

// CredentialsPath returns the credentials file path.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Global.ConfigDir, "credentials.yaml")
}
