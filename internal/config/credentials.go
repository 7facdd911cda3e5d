package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoCredentials is returned when no credentials file exists.
var ErrNoCredentials = errors.New("no stored credentials, run login first")

// Credentials is the stored login for one account, written by the login
// command and read at session start.
type Credentials struct {
	// Server is the realm base URL.
	Server string `yaml:"server"`
	// Email is the account email address.
	Email string `yaml:"email"`
	// APIKey is the account API key.
	APIKey string `yaml:"api_key"`
	// UpdatedAt is when the credentials were last written.
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// IsComplete reports whether all fields needed to authenticate are set.
func (c *Credentials) IsComplete() bool {
	return c.Server != "" && c.Email != "" && c.APIKey != ""
}

// LoadCredentials reads the credentials file at path.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if !creds.IsComplete() {
		return nil, fmt.Errorf("credentials file %s is incomplete", path)
	}
	return &creds, nil
}

// SaveCredentials writes the credentials file with owner-only permissions.
func SaveCredentials(path string, creds *Credentials) error {
	if creds == nil || !creds.IsComplete() {
		return fmt.Errorf("refusing to save incomplete credentials")
	}
	creds.UpdatedAt = time.Now().UTC()

	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// DeleteCredentials removes the credentials file, used on logout.
func DeleteCredentials(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}
