package core

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jo-hoe/codex/internal/backend/assets"
)

type Database struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}

type Storage struct {
	// Root is the directory holding index/images.
	Root string `yaml:"root"`
}

type Thumbnail struct {
	MaxWidth int `yaml:"maxWidth"`
}

type Redis struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type ServiceConfig struct {
	Port      int       `yaml:"port"`
	Database  Database  `yaml:"database"`
	Storage   Storage   `yaml:"storage"`
	Thumbnail Thumbnail `yaml:"thumbnail"`
	Redis     Redis     `yaml:"redis"`
	LogLevel  string    `yaml:"logLevel"`
	LogFormat string    `yaml:"logFormat"`
}

// DefaultConfig returns the configuration used for values absent from the
// config file.
func DefaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Port: 9999,
		Database: Database{
			Type:             "sqlite",
			ConnectionString: "cars.db",
		},
		Storage:   Storage{Root: "."},
		Thumbnail: Thumbnail{MaxWidth: 1024},
		Redis:     Redis{Channel: "codex.entries"},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// LoadConfig loads configuration from the specified YAML file
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Parse YAML on top of the defaults
	config := DefaultConfig()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return config, nil
}

// Validate ensures all configuration values are usable
func (c *ServiceConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Database.Type != "sqlite" {
		return fmt.Errorf("unsupported database type: %q", c.Database.Type)
	}
	if strings.TrimSpace(c.Database.ConnectionString) == "" {
		return fmt.Errorf("database connectionString must not be empty")
	}
	if c.Thumbnail.MaxWidth <= 0 || c.Thumbnail.MaxWidth > assets.MaxThumbnailSide {
		return fmt.Errorf("thumbnail maxWidth must be between 1 and %d, got %d",
			assets.MaxThumbnailSide, c.Thumbnail.MaxWidth)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %q", c.LogFormat)
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *ServiceConfig) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unsupported log level: %q", s)
	}
	return level, nil
}

// NewLogger builds the process logger from the logging settings.
func (c *ServiceConfig) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
