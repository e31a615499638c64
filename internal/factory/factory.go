// Package factory wires the application components together.
package factory

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/dicematch/server/internal/dependencies/clock"
	"github.com/dicematch/server/internal/dependencies/random"
	"github.com/dicematch/server/internal/engine"
	"github.com/dicematch/server/internal/storage"
	"github.com/dicematch/server/internal/storage/memory"
	redisstorage "github.com/dicematch/server/internal/storage/redis"
	sqlitestorage "github.com/dicematch/server/internal/storage/sqlite"
	"github.com/dicematch/server/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Game components
	Engine      *engine.Engine
	Hub         *ws.Hub
	GameHandler *ws.GameHandler
	WSHandler   *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// AllowedOrigin restricts websocket upgrades; empty admits any origin
	AllowedOrigin string
	// UploadDir is created if missing so avatar writes never fail on a
	// fresh deployment
	UploadDir string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	var store storage.Storage
	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeSQLite:
		sqliteStore, err := sqlitestorage.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	if cfg.UploadDir != "" {
		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			return nil, err
		}
	}

	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg.AllowedOrigin, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, allowedOrigin string, logger *slog.Logger) *App {
	eng := engine.New(store, clk, rnd, logger)
	hub := ws.NewHub(logger)
	gameHandler := ws.NewGameHandler(eng, hub, logger)
	hub.SetHandler(gameHandler)
	wsHandler := ws.NewHandler(hub, allowedOrigin, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Engine:      eng,
		Hub:         hub,
		GameHandler: gameHandler,
		WSHandler:   wsHandler,
	}
}

// Close releases the storage backend if it holds external resources.
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
