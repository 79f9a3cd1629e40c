package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Environment variables that override the config file
const (
	EnvTable         = "BUDGET_TABLE"
	EnvIDIndex       = "BUDGET_ID_INDEX"
	EnvBucket        = "IMAGES_S3_BUCKET"
	EnvURLExpiration = "SIGNED_URL_EXPIRATION" // seconds
	EnvJWTSecret     = "JWT_SECRET"
	EnvStore         = "BUDGET_STORE"
	EnvAddr          = "BUDGET_ADDR"
	EnvLogLevel      = "BUDGET_LOG_LEVEL"
	EnvPostgresDSN   = "BUDGET_PG_DSN"
)

// LookupFunc matches os.LookupEnv
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(EnvTable, &c.Store.DynamoDB.Table)
	set(EnvIDIndex, &c.Store.DynamoDB.IDIndex)
	set(EnvBucket, &c.Attachments.Bucket)
	set(EnvJWTSecret, &c.Auth.JWTSecret)
	set(EnvStore, &c.Store.Driver)
	set(EnvAddr, &c.Server.Addr)
	set(EnvLogLevel, &c.Log.Level)
	set(EnvPostgresDSN, &c.Store.Postgres.DSN)

	if v, ok := lookup(EnvURLExpiration); ok && strings.TrimSpace(v) != "" {
		seconds, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || seconds <= 0 {
			return fmt.Errorf("%s: expected a positive number of seconds, got %q", EnvURLExpiration, v)
		}
		c.Attachments.URLExpiration = Duration(time.Duration(seconds) * time.Second)
	}

	return nil
}
