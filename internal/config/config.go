// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultMaxUploadBytes caps a single upload request body (120 MB, matching
// the original deployment's video-heavy pages).
const DefaultMaxUploadBytes = 120 << 20

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Storage paths
	DataDir    string // holds the flat record store
	UploadsDir string // per-entity upload folders

	// Upload limit in bytes for a single request.
	MaxUploadBytes int64

	// Admin access: shared password and the secret login URL path.
	AdminPassword  string
	AdminLoginPath string

	// Valkey (Redis-compatible session store) — optional. When host is
	// empty, sessions fall back to the in-process store.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DataDir:    envOrDefault("DATA_DIR", "/var/data"),
		UploadsDir: envOrDefault("UPLOADS_DIR", "/var/data/uploads"),

		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		AdminLoginPath: envOrDefault("ADMIN_LOGIN_PATH", "/karna1203-admin-login"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
	}

	cfg.MaxUploadBytes = DefaultMaxUploadBytes
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer, got %q", v)
		}
		cfg.MaxUploadBytes = n
	}

	if cfg.Env == "production" {
		if cfg.AdminPassword == "" {
			return nil, fmt.Errorf("ADMIN_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address, or "" when Valkey is not configured.
func (c *Config) ValkeyAddr() string {
	if c.ValkeyHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
