// Package main is the entry point for the storefront inventory server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/storefront/internal/config"
	"github.com/vyrodovalexey/storefront/internal/lock"
	"github.com/vyrodovalexey/storefront/internal/server"
	"github.com/vyrodovalexey/storefront/internal/store"
)

const backendConnectTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to initialize logger", zap.Error(err))
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("store_backend", cfg.StoreBackend),
		zap.String("lock_backend", cfg.LockBackend),
	)

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), backendConnectTimeout)
	deps, closeBackends, err := buildDependencies(connectCtx, cfg, logger)
	cancelConnect()
	if err != nil {
		logger.Error("failed to initialize backends", zap.Error(err))
		closeBackends(context.Background())
		return 1
	}

	srv, err := server.New(cfg, logger, deps)
	if err != nil {
		logger.Error("failed to create server", zap.Error(err))
		closeBackends(context.Background())
		return 1
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	code := 0
	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		code = 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			code = 1
		}
	}

	closeCtx, cancelClose := context.WithTimeout(context.Background(), backendConnectTimeout)
	defer cancelClose()
	closeBackends(closeCtx)

	logger.Info("server stopped")
	return code
}

// buildDependencies opens the configured store and lock backends. The
// returned func releases every connection that was opened, also on error.
func buildDependencies(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
) (server.Dependencies, func(context.Context), error) {
	var closers []func(context.Context) error
	closeAll := func(ctx context.Context) {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](ctx); err != nil {
				logger.Warn("failed to close backend", zap.Error(err))
			}
		}
	}

	deps := server.Dependencies{Checks: make(map[string]store.Pinger)}

	switch cfg.StoreBackend {
	case "mongo":
		ms, err := store.NewMongoStore(ctx, store.MongoOptions{
			URI:         cfg.MongoURI,
			Database:    cfg.MongoDatabase,
			MaxPoolSize: uint64(cfg.MongoMaxPoolSize),
		})
		if err != nil {
			return server.Dependencies{}, closeAll, fmt.Errorf("opening mongo store: %w", err)
		}
		closers = append(closers, ms.Close)
		deps.Items = ms.Items()
		deps.Cart = ms.Cart()
		deps.Checks["store"] = ms
		logger.Info("using mongo store", zap.String("database", cfg.MongoDatabase))
	case "memory", "":
		items := store.NewMemoryItemStore()
		deps.Items = items
		deps.Cart = store.NewMemoryCartStore()
		deps.Checks["store"] = items
		logger.Info("using in-memory store")
	default:
		return server.Dependencies{}, closeAll, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}

	if cfg.UsesRedisLock() {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		closers = append(closers, func(context.Context) error { return client.Close() })

		locker := lock.NewRedisLocker(client, cfg.LockTTL)
		if err := locker.Ping(ctx); err != nil {
			return server.Dependencies{}, closeAll, fmt.Errorf("connecting to redis: %w", err)
		}
		deps.Locker = locker
		deps.Checks["lock"] = locker
		logger.Info("using redis lock", zap.String("addr", cfg.RedisAddr))
	}

	return deps, closeAll, nil
}

// initLogger initializes a zap logger with the specified log level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}
