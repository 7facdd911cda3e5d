package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Events.LongPollTimeout != 100*time.Second {
		t.Errorf("default long poll timeout = %v", cfg.Events.LongPollTimeout)
	}
	if cfg.CachePath() == "" {
		t.Error("cache path should default under data dir")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  url: https://chat.example.com
  email: bot@example.com
logging:
  level: debug
tui:
  refresh_interval: 250ms
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Server.URL != "https://chat.example.com" {
		t.Errorf("server url = %q", cfg.Server.URL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.TUI.RefreshInterval != 250*time.Millisecond {
		t.Errorf("refresh interval = %v", cfg.TUI.RefreshInterval)
	}
	// Untouched sections keep their defaults.
	if cfg.Events.RetryBackoff != time.Second {
		t.Errorf("retry backoff = %v, want 1s", cfg.Events.RetryBackoff)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("tui:\n  refresh_interval: 1ms\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected validation error for 1ms refresh interval")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ZULIP_SERVER_URL", "https://env.example.com")
	t.Setenv("ZULIP_LOGGING_LEVEL", "warn")

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if cfg.Server.URL != "https://env.example.com" {
		t.Errorf("env server url not applied: %q", cfg.Server.URL)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env log level not applied: %q", cfg.Logging.Level)
	}
}

func TestExpandTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	if got := expandTilde("~/x"); got != filepath.Join(home, "x") {
		t.Errorf("expandTilde(~/x) = %q", got)
	}
	if got := expandTilde("/abs/path"); got != "/abs/path" {
		t.Errorf("expandTilde(/abs/path) = %q", got)
	}
	if got := expandTilde(""); got != "" {
		t.Errorf("expandTilde(empty) = %q", got)
	}
}
