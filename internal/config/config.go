// Package config loads server configuration from command-line flags,
// environment variables and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreBadger = "badger"
	StoreSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Data   DataConfig
	Store  StoreConfig
	Server ServerConfig
	Auth   AuthConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ENV" envDefault:"development"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// DataConfig locates on-disk state: the database and the signing key.
type DataConfig struct {
	// Defaults to ~/Bookshelf/data.
	BasePath string `env:"DATA_PATH"`
}

// StoreConfig selects the persistence engine.
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"badger"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"3001"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	// StaticDir, when set, is served at / with index.html as the fallback page.
	StaticDir string `env:"STATIC_DIR"`
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	TokenFormat string        `env:"TOKEN_FORMAT" envDefault:"paseto"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"2h"`
	// SigningKey is a hex-encoded 32-byte secret. When empty a key is
	// generated once and kept in the data directory.
	SigningKey string `env:"SIGNING_KEY"`
}

// Load builds the configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fset := flag.NewFlagSet("bookshelf", flag.ContinueOnError)
	fset.SetOutput(io.Discard)

	envFile := fset.String("env-file", ".env", "Path to .env file")
	environment := fset.String("env", "", "Environment (development, staging, production)")
	logLevel := fset.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fset.String("data-path", "", "Directory for the database and signing key")
	storeDriver := fset.String("store", "", "Store driver (badger, sqlite)")
	port := fset.String("port", "", "Server port (default: 3001)")
	staticDir := fset.String("static-dir", "", "Directory of client assets to serve")
	tokenFormat := fset.String("token-format", "", "Session token format (paseto, jwt)")

	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Values already in the environment win over the file.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	override(&cfg.App.Environment, *environment)
	override(&cfg.Logger.Level, *logLevel)
	override(&cfg.Data.BasePath, *dataPath)
	override(&cfg.Store.Driver, *storeDriver)
	override(&cfg.Server.Port, *port)
	override(&cfg.Server.StaticDir, *staticDir)
	override(&cfg.Auth.TokenFormat, *tokenFormat)

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if !slices.Contains([]string{"development", "staging", "production"}, c.App.Environment) {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Logger.Level)) {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty")
	}

	if c.Store.Driver != StoreBadger && c.Store.Driver != StoreSQLite {
		return fmt.Errorf("invalid store driver: %q (must be %s or %s)", c.Store.Driver, StoreBadger, StoreSQLite)
	}

	if c.Server.Port == "" {
		return errors.New("PORT is required")
	}

	if c.Auth.TokenFormat != "paseto" && c.Auth.TokenFormat != "jwt" {
		return fmt.Errorf("invalid token format: %q (must be paseto or jwt)", c.Auth.TokenFormat)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.SigningKey != "" && len(c.Auth.SigningKey) != 64 {
		return errors.New("SIGNING_KEY must be 64 hex characters")
	}

	return nil
}

// DatabasePath returns the on-disk location for the configured store driver.
func (c *Config) DatabasePath() string {
	if c.Store.Driver == StoreSQLite {
		return filepath.Join(c.Data.BasePath, "bookshelf.db")
	}
	return filepath.Join(c.Data.BasePath, "db")
}

func (c *Config) expandPaths() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	c.Data.BasePath, err = expandPath(c.Data.BasePath, filepath.Join(home, "Bookshelf", "data"))
	if err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}

	if c.Server.StaticDir != "" {
		c.Server.StaticDir, err = expandPath(c.Server.StaticDir, "")
		if err != nil {
			return fmt.Errorf("invalid static dir: %w", err)
		}
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return filepath.Clean(abs), nil
}

func override(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}
