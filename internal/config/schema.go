package config

import (
	"time"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverDynamoDB = "dynamodb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the root configuration structure
type Config struct {
	Version     int               `yaml:"version"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Store       StoreConfig       `yaml:"store"`
	Auth        AuthConfig        `yaml:"auth"`
	Attachments AttachmentsConfig `yaml:"attachments"`
	CORS        CORSConfig        `yaml:"cors"`
}

// ServerConfig holds HTTP listener settings. A zero write timeout keeps
// event streams open.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	IdleTimeout     Duration `yaml:"idle_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// LogConfig holds logger settings. Level is reloadable.
type LogConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// StoreConfig selects and configures the persistence gateway
type StoreConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds database settings
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// DynamoDBConfig names the budget table and its id index
type DynamoDBConfig struct {
	Table       string `yaml:"table"`
	IDIndex     string `yaml:"id_index"`
	Region      string `yaml:"region,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"` // e.g. DynamoDB Local
	CreateTable bool   `yaml:"create_table,omitempty"`
}

// PostgresConfig holds the connection string
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	UserClaim string `yaml:"user_claim"`
}

// AttachmentsConfig enables pre-signed attachment uploads when Bucket is set
type AttachmentsConfig struct {
	Bucket        string   `yaml:"bucket"`
	Region        string   `yaml:"region,omitempty"`
	URLExpiration Duration `yaml:"url_expiration"`
}

// Enabled reports whether attachment uploads are configured
func (a AttachmentsConfig) Enabled() bool {
	return a.Bucket != ""
}

// CORSConfig lists origins allowed to call the API. "*" allows any. Reloadable.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
