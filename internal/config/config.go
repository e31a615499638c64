// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the server's runtime configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"ADDR" envDefault:":4000"`

	// ClientOrigin restricts websocket upgrades to one Origin. Empty
	// admits any origin.
	ClientOrigin string `env:"CLIENT_ORIGIN"`

	// StorageType selects the profile store backend: memory, redis or
	// sqlite.
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`

	// RedisURL is required when StorageType is redis.
	RedisURL string `env:"REDIS_URL"`

	// SQLitePath is the database file used when StorageType is sqlite.
	SQLitePath string `env:"SQLITE_PATH" envDefault:"dicematch.db"`

	// UploadDir is where avatar images are stored.
	UploadDir string `env:"UPLOAD_DIR" envDefault:"uploads"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
