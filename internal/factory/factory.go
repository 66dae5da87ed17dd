package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/seabattle/internal/api"
	"github.com/mcoot/seabattle/internal/broadcast"
	"github.com/mcoot/seabattle/internal/dependencies/clock"
	"github.com/mcoot/seabattle/internal/dependencies/random"
	"github.com/mcoot/seabattle/internal/dispatch"
	"github.com/mcoot/seabattle/internal/services/bot"
	"github.com/mcoot/seabattle/internal/services/directory"
	"github.com/mcoot/seabattle/internal/services/game"
	"github.com/mcoot/seabattle/internal/services/room"
	"github.com/mcoot/seabattle/internal/services/session"
	"github.com/mcoot/seabattle/internal/storage"
	"github.com/mcoot/seabattle/internal/storage/memory"
	pgstorage "github.com/mcoot/seabattle/internal/storage/postgres"
	redisstorage "github.com/mcoot/seabattle/internal/storage/redis"
	"github.com/mcoot/seabattle/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Directory   *directory.Service
	Sessions    *session.Registry
	Engine      *game.Engine
	Matchmaker  *room.Matchmaker
	Broadcaster *broadcast.Broadcaster
	Dispatcher  *dispatch.Dispatcher

	// Transport
	Hub *ws.Hub

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// DirectoryConfig holds configuration for the player directory (optional)
	// If zero value, defaults to directory.DefaultConfig()
	DirectoryConfig directory.Config
	// HubOptions holds websocket timing and buffer settings (optional)
	// If zero value, defaults to ws.DefaultOptions()
	HubOptions ws.Options
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds PostgreSQL settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

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
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		pgStore, err := pgstorage.New(ctx, *cfg.PostgresConfig, logger)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	dirCfg := cfg.DirectoryConfig
	if dirCfg.HashCost == 0 {
		dirCfg = directory.DefaultConfig()
	}

	opts := cfg.HubOptions
	if opts == (ws.Options{}) {
		opts = ws.DefaultOptions()
	}

	return newWithDependencies(store, clk, rnd, dirCfg, opts, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, dirCfg directory.Config, opts ws.Options, logger *slog.Logger) *App {
	directoryService := directory.New(store, clk, logger, dirCfg)
	sessions := session.NewRegistry(logger)
	engine := game.NewEngine(directoryService, bot.NewRandomStrategy(rnd), clk, logger)
	matchmaker := room.NewMatchmaker(engine, clk, logger)
	broadcaster := broadcast.NewBroadcaster(sessions, logger)
	dispatcher := dispatch.New(directoryService, sessions, matchmaker, engine, broadcaster, logger)
	hub := ws.NewHub(dispatcher, logger, opts)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Directory:   directoryService,
		Sessions:    sessions,
		Engine:      engine,
		Matchmaker:  matchmaker,
		Broadcaster: broadcaster,
		Dispatcher:  dispatcher,
		Hub:         hub,
		Logger:      logger,
	}
}

// Router builds the HTTP handler serving the websocket endpoint and status API
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:     a.Logger,
		Hub:        a.Hub,
		Directory:  a.Directory,
		Matchmaker: a.Matchmaker,
		Engine:     a.Engine,
		Sessions:   a.Sessions,
	})
}

// Close releases storage resources
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
