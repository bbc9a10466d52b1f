package core

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	return configPath
}

func TestLoadConfig_Success(t *testing.T) {
	configPath := writeConfig(t, `port: 8080
database:
  type: sqlite
  connectionString: "test.db"
storage:
  root: /srv/codex
thumbnail:
  maxWidth: 256
redis:
  address: localhost:6379
logLevel: debug
logFormat: json`)

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Port != 8080 {
		t.Errorf("Expected port to be 8080, got %d", config.Port)
	}
	if config.Database.ConnectionString != "test.db" {
		t.Errorf("Expected connectionString to be 'test.db', got '%s'", config.Database.ConnectionString)
	}
	if config.Storage.Root != "/srv/codex" {
		t.Errorf("Expected storage root '/srv/codex', got '%s'", config.Storage.Root)
	}
	if config.Thumbnail.MaxWidth != 256 {
		t.Errorf("Expected thumbnail maxWidth 256, got %d", config.Thumbnail.MaxWidth)
	}
	if config.Redis.Address != "localhost:6379" {
		t.Errorf("Expected redis address, got '%s'", config.Redis.Address)
	}
	if config.Redis.Channel != "codex.entries" {
		t.Errorf("Expected default redis channel, got '%s'", config.Redis.Channel)
	}
	if config.SlogLevel() != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v", config.SlogLevel())
	}
	if config.NewLogger() == nil {
		t.Error("Expected logger to be non-nil")
	}
}

func TestLoadConfig_DefaultsForMissingKeys(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "port: 7000\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	defaults := DefaultConfig()
	if config.Database != defaults.Database {
		t.Errorf("Expected default database %+v, got %+v", defaults.Database, config.Database)
	}
	if config.Thumbnail.MaxWidth != defaults.Thumbnail.MaxWidth {
		t.Errorf("Expected default thumbnail width, got %d", config.Thumbnail.MaxWidth)
	}
	if config.Port != 7000 {
		t.Errorf("Expected port 7000, got %d", config.Port)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	nonExistentPath := "/path/that/does/not/exist/config.yaml"

	config, err := LoadConfig(nonExistentPath)

	if err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist in chain, got %v", err)
	}
	if config != nil {
		t.Error("Expected config to be nil when file doesn't exist")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"malformed yaml":   "port: [",
		"port range":       "port: 70000",
		"database type":    "database:\n  type: postgres",
		"empty connection": "database:\n  connectionString: ' '",
		"thumbnail width":  "thumbnail:\n  maxWidth: 0",
		"thumbnail huge":   "thumbnail:\n  maxWidth: 100000",
		"log level":        "logLevel: loud",
		"log format":       "logFormat: xml",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, content)); err == nil {
				t.Fatalf("Expected error for %s", name)
			}
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}
