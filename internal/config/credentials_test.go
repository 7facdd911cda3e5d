package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCredentialsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "credentials.yaml")

	creds := &Credentials{
		Server: "https://chat.example.com",
		Email:  "bot@example.com",
		APIKey: "abcdefghijklmnopqrstuvwxyz123456",
	}
	if err := SaveCredentials(path, creds); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("credentials file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if loaded.Server != creds.Server || loaded.Email != creds.Email || loaded.APIKey != creds.APIKey {
		t.Fatalf("round trip lost data: %+v", loaded)
	}
	if loaded.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt not stamped")
	}
}

func TestLoadCredentialsMissing(t *testing.T) {
	_, err := LoadCredentials(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestSaveCredentialsRejectsIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	if err := SaveCredentials(path, &Credentials{Server: "https://x"}); err == nil {
		t.Fatal("expected error for incomplete credentials")
	}
}

func TestDeleteCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	creds := &Credentials{Server: "s", Email: "e", APIKey: "k"}
	if err := SaveCredentials(path, creds); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}

	if err := DeleteCredentials(path); err != nil {
		t.Fatalf("DeleteCredentials: %v", err)
	}
	// Deleting again is fine.
	if err := DeleteCredentials(path); err != nil {
		t.Fatalf("second DeleteCredentials: %v", err)
	}
}
