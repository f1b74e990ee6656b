package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/sudokuduo/internal/api"
	"github.com/mcoot/sudokuduo/internal/factory"
	"github.com/mcoot/sudokuduo/internal/services/janitor"
	"github.com/mcoot/sudokuduo/internal/services/matchmaking"
	redisstorage "github.com/mcoot/sudokuduo/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// A missing .env is fine; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not load .env", slog.String("error", err.Error()))
	}

	// Build factory config from environment
	cfg := factory.Config{
		Logger:            logger,
		StorageType:       os.Getenv("STORAGE_TYPE"),
		MatchmakingConfig: matchmaking.DefaultConfig(),
		JanitorConfig:     janitor.DefaultConfig(),
	}
	if d, ok := envDuration(logger, "MATCHMAKING_WAIT"); ok {
		cfg.MatchmakingConfig.WaitTimeout = d
	}
	// The sweeper is opt-in; expiry is enforced lazily on read regardless
	janitorInterval, runJanitor := envDuration(logger, "JANITOR_INTERVAL")
	if runJanitor {
		cfg.JanitorConfig.Interval = janitorInterval
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close error", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		ProfileService:     app.ProfileService,
		LobbyService:       app.LobbyService,
		MatchmakingService: app.MatchmakingService,
		SettlementService:  app.SettlementService,
		GameController:     app.GameController,
	})

	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("port", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if runJanitor {
		if err := app.Janitor.Start(ctx); err != nil {
			logger.Error("failed to start janitor", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func envDuration(logger *slog.Logger, key string) (time.Duration, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("ignoring invalid duration", slog.String("key", key), slog.String("value", raw))
		return 0, false
	}
	return d, true
}
