package dbpool

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by LoadConfig.
const (
	EnvUser           = "DB_USER"
	EnvPassword       = "DB_PASSWORD"
	EnvDSN            = "DB_DSN"
	EnvCredentialDir  = "DB_CREDENTIAL_DIR"
	EnvMinConnections = "DB_MIN_CONNECTIONS"
	EnvMaxConnections = "DB_MAX_CONNECTIONS"
	EnvConnectTimeout = "DB_CONNECT_TIMEOUT"
	EnvDebug          = "DB_DEBUG"
)

const (
	defaultUser           = "admin"
	defaultDSN            = "localhost:5432/app"
	defaultMinConns       = 2
	defaultMaxConns       = 5
	defaultConnectTimeout = 60 * time.Second
)

// Config controls the behavior of the managed connection pool.
//
// User, Password, DSN, and CredentialDir must be non-empty; Validate
// enforces this before any pool or network activity.
type Config struct {
	// User is the database role. LoadConfig defaults it to "admin".
	User string

	// Password is required and has no default.
	Password string

	// DSN identifies the target endpoint, either "host[:port]/database"
	// or a full postgres:// URL used as-is.
	DSN string

	// CredentialDir holds client TLS material (root.crt, postgresql.crt,
	// postgresql.key). LoadConfig defaults it to ~/.postgresql.
	CredentialDir string

	// MinConns defaults to 2.
	MinConns int32

	// MaxConns defaults to 5. The pool grows one connection at a time.
	MaxConns int32

	// ConnectTimeout bounds both the dial of a new connection and the
	// wait for a free one in WithConn. Defaults to 60s.
	ConnectTimeout time.Duration

	// Debug enables status lines on pool creation and close.
	Debug bool

	// HealthChecksDisabled disables idle-connection health checks.
	HealthChecksDisabled bool

	// HealthCheckPeriod defaults to 30s when health checks are enabled.
	HealthCheckPeriod time.Duration

	// MaxConnLifetime defaults to 30m.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime defaults to 5m.
	MaxConnIdleTime time.Duration
}

// LoadConfig builds a Config from the environment and validates it.
//
// Missing or malformed required values fail here, before any pool exists.
func LoadConfig() (Config, error) {
	cfg := Config{
		User:          envOr(EnvUser, defaultUser),
		Password:      os.Getenv(EnvPassword),
		DSN:           envOr(EnvDSN, defaultDSN),
		CredentialDir: envOr(EnvCredentialDir, defaultCredentialDir()),
	}

	minConns, err := envInt32(EnvMinConnections, defaultMinConns)
	if err != nil {
		return Config{}, err
	}
	cfg.MinConns = minConns

	maxConns, err := envInt32(EnvMaxConnections, defaultMaxConns)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxConns = maxConns

	timeoutSecs, err := envInt32(EnvConnectTimeout, int32(defaultConnectTimeout/time.Second))
	if err != nil {
		return Config{}, err
	}
	cfg.ConnectTimeout = time.Duration(timeoutSecs) * time.Second

	cfg.Debug = strings.EqualFold(os.Getenv(EnvDebug), "true")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first missing required field as a *ConfigError.
// Values are never echoed back, only variable names.
func (c Config) Validate() error {
	for _, field := range []struct {
		name  string
		value string
	}{
		{EnvUser, c.User},
		{EnvPassword, c.Password},
		{EnvDSN, c.DSN},
		{EnvCredentialDir, c.CredentialDir},
	} {
		if field.value == "" {
			return &ConfigError{msg: fmt.Sprintf("dbpool: %s is required", field.name)}
		}
	}

	if c.MinConns < 0 {
		return &ConfigError{msg: fmt.Sprintf("dbpool: %s must not be negative", EnvMinConnections)}
	}
	if c.MaxConns < 0 {
		return &ConfigError{msg: fmt.Sprintf("dbpool: %s must not be negative", EnvMaxConnections)}
	}
	if c.MaxConns > 0 && c.MinConns > c.MaxConns {
		return &ConfigError{msg: fmt.Sprintf("dbpool: %s exceeds %s", EnvMinConnections, EnvMaxConnections)}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt32(key string, fallback int32) (int32, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, &ConfigError{msg: fmt.Sprintf("dbpool: %s must be an integer", key)}
	}
	return int32(n), nil
}

// defaultCredentialDir is the standard per-user location for Postgres
// client TLS material.
func defaultCredentialDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".postgresql")
}
