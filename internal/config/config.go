// Package config provides configuration management for the budget tracker.
//
// Settings come from, lowest precedence first: built-in defaults, a YAML
// config file, a .env file in the working directory, and the process
// environment. The deployment variable names (BUDGET_TABLE, BUDGET_ID_INDEX,
// IMAGES_S3_BUCKET, SIGNED_URL_EXPIRATION) are honoured as-is.
//
// Config file locations (priority order):
//  1. $BUDGET_CONFIG
//  2. ./budget.yaml
//  3. $XDG_CONFIG_HOME/budget/config.yaml
//  4. ~/.config/budget/config.yaml
//  5. /etc/budget/config.yaml
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads .env, finds and loads the config file (or defaults if none is
// found), applies environment overrides and validates the result
func Load() (*Config, string, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, "", err
	}

	path := FindConfigPath()

	var (
		cfg *Config
		err error
	)
	if path == "" {
		cfg = DefaultConfig()
	} else if cfg, _, err = LoadFromPath(path); err != nil {
		return nil, path, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}

// LoadDotEnv loads variables from path without overriding ones already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes YAML config and fills unset values with defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes c to path as YAML, creating parent directories. The file may
// hold the JWT secret, so it is private to the owner.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// WriteDefaultConfig saves DefaultConfig to path, or to DefaultConfigPath
// when path is empty, and reports where it went. An existing file is never
// replaced.
func WriteDefaultConfig(path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return path, fmt.Errorf("stat config: %w", err)
	}
	return path, DefaultConfig().Save(path)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Store.Driver == "" {
		c.Store.Driver = DriverSQLite
	}
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = "./budget.db"
	}
	if c.Store.DynamoDB.Table == "" {
		c.Store.DynamoDB.Table = "Budget"
	}
	if c.Store.DynamoDB.IDIndex == "" {
		c.Store.DynamoDB.IDIndex = "BudgetIdIndex"
	}

	if c.Auth.UserClaim == "" {
		c.Auth.UserClaim = "sub"
	}

	if c.Attachments.URLExpiration == 0 {
		c.Attachments.URLExpiration = Duration(300 * time.Second)
	}

	if c.CORS.AllowedOrigins == nil {
		c.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate reports settings the server cannot start with
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverSQLite, DriverMemory:
	case DriverDynamoDB:
		if c.Store.DynamoDB.Table == "" || c.Store.DynamoDB.IDIndex == "" {
			errs = append(errs, errors.New("store.dynamodb: table and id_index are required"))
		}
	case DriverPostgres:
		if c.Store.Postgres.DSN == "" {
			errs = append(errs, errors.New("store.postgres: dsn is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required (or set JWT_SECRET)"))
	}

	if c.Attachments.URLExpiration.Duration() <= 0 {
		errs = append(errs, errors.New("attachments.url_expiration must be positive"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	attachments := "disabled"
	if c.Attachments.Enabled() {
		attachments = fmt.Sprintf("s3://%s (urls valid %s)", c.Attachments.Bucket, c.Attachments.URLExpiration.Duration())
	}
	return fmt.Sprintf("Addr: %s, Store: %s, Log: %s, Attachments: %s",
		c.Server.Addr, c.Store.Driver, c.Log.Level, attachments)
}
