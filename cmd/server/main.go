package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/seabattle/internal/api"
	"github.com/mcoot/seabattle/internal/config"
	"github.com/mcoot/seabattle/internal/factory"
	"github.com/mcoot/seabattle/internal/services/directory"
	pgstorage "github.com/mcoot/seabattle/internal/storage/postgres"
	redisstorage "github.com/mcoot/seabattle/internal/storage/redis"
	"github.com/mcoot/seabattle/internal/ws"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seabattle-server",
		Short: "Sea battle WebSocket game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return run(cfg)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file (env: SEABATTLE_CONFIG)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	// Build factory config
	factoryCfg := factory.Config{
		Logger:          logger,
		StorageType:     cfg.Storage.Type,
		DirectoryConfig: directory.Config{HashCost: cfg.Auth.HashCost},
		HubOptions: ws.Options{
			WriteWait:      cfg.WebSocket.WriteWait,
			PongWait:       cfg.WebSocket.PongWait,
			PingPeriod:     cfg.WebSocket.PingPeriod,
			MaxMessageSize: cfg.WebSocket.MaxMessageSize,
			SendBuffer:     cfg.WebSocket.SendBuffer,
		},
	}

	// Configure Redis if storage type is redis
	if cfg.Storage.Type == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Redis.URL
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.PlayerTTL = cfg.Redis.PlayerTTL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Configure PostgreSQL if storage type is postgres
	if cfg.Storage.Type == config.StoragePostgres {
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.DSN = cfg.Postgres.DSN
		pgCfg.MaxConns = cfg.Postgres.MaxConns
		pgCfg.MinConns = cfg.Postgres.MinConns
		pgCfg.MaxConnLifetime = cfg.Postgres.MaxConnLifetime
		pgCfg.Migrate = cfg.Postgres.Migrate
		factoryCfg.PostgresConfig = &pgCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("storage close failed", slog.String("error", err.Error()))
		}
	}()

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	serverConfig.ReadTimeout = cfg.Server.ReadTimeout
	serverConfig.WriteTimeout = cfg.Server.WriteTimeout
	serverConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	server := api.NewServer(app.Router(), app.Hub, serverConfig, logger)
	if err := server.Listen(); err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		return err
	}

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Type),
	)

	if err := server.Serve(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}
