// Package config provides unified configuration for the geleit service.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (GELEIT_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the geleit service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 30s

	// SecureCookies marks session cookies HTTPS-only. Leave off only
	// for plain-HTTP development setups.
	SecureCookies bool `yaml:"secure_cookies"`

	// LogLevel sets the slog level (ERROR, WARN, INFO, DEBUG).
	// GELEIT_LOG_LEVEL overrides. Empty means INFO.
	LogLevel string `yaml:"log_level"`

	// Debug enables category-gated debug logging, comma-separated
	// (see pkg/debug). GELEIT_DEBUG overrides.
	Debug string `yaml:"debug"`
}

// AuthConfig holds credential and session-token settings.
//
// PasswordKey and TokenKey are independent base64url-encoded (unpadded)
// secrets; cmd/genkey produces suitable 64-byte keys. The decoded forms
// are available through PasswordKeyBytes/TokenKeyBytes after Validate.
type AuthConfig struct {
	PasswordKey     string `yaml:"password_key"`
	PasswordKeyFile string `yaml:"password_key_file"` // _file variant for password_key
	TokenKey        string `yaml:"token_key"`
	TokenKeyFile    string `yaml:"token_key_file"` // _file variant for token_key

	// TokenDuration is the session token lifetime in seconds.
	// Fractional values are honored (default: 1800).
	TokenDuration float64 `yaml:"token_duration"`

	// ServiceKey signs first-party service bearer tokens. Optional;
	// the bearer surface is disabled when empty.
	ServiceKey     string `yaml:"service_key"`
	ServiceKeyFile string `yaml:"service_key_file"` // _file variant for service_key

	// HashWorkers bounds concurrent password hashing. HashQueue is the
	// backlog beyond which logins are answered as busy.
	HashWorkers int `yaml:"hash_workers"` // default: 4
	HashQueue   int `yaml:"hash_queue"`   // default: 64

	Limiter   LimiterConfig   `yaml:"limiter"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`

	passwordKey []byte
	tokenKey    []byte
	serviceKey  []byte
}

// LimiterConfig holds login throttling settings.
type LimiterConfig struct {
	Type     string        `yaml:"type"`     // "none", "memory", or "redis", default: "memory"
	Attempts int           `yaml:"attempts"` // per window, default: 10
	Window   time.Duration `yaml:"window"`   // default: 1m
	Redis    RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis connection settings for the distributed limiter.
type RedisConfig struct {
	Addr         string `yaml:"addr"`
	Password     string `yaml:"password"`
	PasswordFile string `yaml:"password_file"` // _file variant for password
	DB           int    `yaml:"db"`
}

// BootstrapConfig optionally creates an initial user at startup.
// Creation is skipped when the username already exists.
type BootstrapConfig struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordFile string `yaml:"password_file"` // _file variant for password
}

// StorageConfig holds user store settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			TokenDuration: 1800,
			HashWorkers:   4,
			HashQueue:     64,
			Limiter: LimiterConfig{
				Type:     "memory",
				Attempts: 10,
				Window:   time.Minute,
			},
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// PasswordKeyBytes returns the decoded password key. Valid after Validate.
func (a *AuthConfig) PasswordKeyBytes() []byte { return a.passwordKey }

// TokenKeyBytes returns the decoded token key. Valid after Validate.
func (a *AuthConfig) TokenKeyBytes() []byte { return a.tokenKey }

// ServiceKeyBytes returns the decoded service key, or nil when the
// bearer surface is disabled. Valid after Validate.
func (a *AuthConfig) ServiceKeyBytes() []byte { return a.serviceKey }

// TokenLifetime returns TokenDuration as a time.Duration.
func (a *AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(a.TokenDuration * float64(time.Second))
}
