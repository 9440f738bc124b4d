package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, GELEIT_CONFIG env, ./config.yaml, /etc/geleit/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. GELEIT_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/geleit/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check GELEIT_CONFIG env var.
	if envPath := os.Getenv("GELEIT_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/geleit/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps GELEIT_* environment variables to config fields.
// Env values win over the YAML file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GELEIT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GELEIT_PWD_KEY"); v != "" {
		cfg.Auth.PasswordKey = v
	}
	if v := os.Getenv("GELEIT_TOKEN_KEY"); v != "" {
		cfg.Auth.TokenKey = v
	}
	if v := os.Getenv("GELEIT_TOKEN_DURATION"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Auth.TokenDuration = secs
		}
	}
	if v := os.Getenv("GELEIT_SERVICE_KEY"); v != "" {
		cfg.Auth.ServiceKey = v
	}
	if v := os.Getenv("GELEIT_LIMITER"); v != "" {
		cfg.Auth.Limiter.Type = v
	}
	if v := os.Getenv("GELEIT_REDIS_ADDR"); v != "" {
		cfg.Auth.Limiter.Redis.Addr = v
	}
	if v := os.Getenv("GELEIT_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("GELEIT_POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	refs := []struct {
		name  string
		file  string
		value *string
	}{
		{"auth.password_key_file", cfg.Auth.PasswordKeyFile, &cfg.Auth.PasswordKey},
		{"auth.token_key_file", cfg.Auth.TokenKeyFile, &cfg.Auth.TokenKey},
		{"auth.service_key_file", cfg.Auth.ServiceKeyFile, &cfg.Auth.ServiceKey},
		{"auth.limiter.redis.password_file", cfg.Auth.Limiter.Redis.PasswordFile, &cfg.Auth.Limiter.Redis.Password},
		{"auth.bootstrap.password_file", cfg.Auth.Bootstrap.PasswordFile, &cfg.Auth.Bootstrap.Password},
		{"storage.postgres.dsn_file", cfg.Storage.Postgres.DSNFile, &cfg.Storage.Postgres.DSN},
	}

	for _, ref := range refs {
		if ref.file == "" || *ref.value != "" {
			continue
		}
		val, err := readSecretFile(ref.file)
		if err != nil {
			return fmt.Errorf("%s: %w", ref.name, err)
		}
		*ref.value = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
