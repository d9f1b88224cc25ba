// Package app bootstraps the VidTube backend: configuration, store
// connections, dependency wiring and graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/httpserver"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/store"
)

// Run bootstraps the VidTube backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve or indexes")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "indexes":
		return ensureIndexes(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	slog.SetDefault(logger)

	mongoStore, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoStore.Close(closeCtx); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()

	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	sessions := sessionStore(ctx, cfg, logger)
	manager := auth.NewManager([]byte(cfg.JWTSecret), cfg.AccessTTL, cfg.RefreshTTL, sessions)

	var storage media.Storage
	var cleaner *media.Cleaner
	if cfg.ObjectStore.Bucket != "" {
		s3, err := media.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return err
		}
		storage = s3
		cleaner = media.NewCleaner(s3, media.CleanerConfig{
			QueueSize: cfg.Cleaner.QueueSize,
			Workers:   cfg.Cleaner.Workers,
		}, logger)
	} else {
		logger.Warn("object storage not configured, uploads disabled")
	}

	deps := buildDependencies(mongoStore, manager, storage, cleaner, cfg)

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	handler := middleware.RequestLogger(logger)(middleware.Authenticate(manager)(mux))

	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server", "port", cfg.AppPort)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	// Stop accepting requests before draining the cleaner so in-flight
	// handlers can still enqueue deletions.
	err = srv.Shutdown(shutdownCtx)

	if cleaner != nil {
		if cerr := cleaner.Shutdown(shutdownCtx); cerr != nil {
			logger.Warn("asset cleaner shutdown", "error", cerr)
		}
	}

	return err
}

func ensureIndexes(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	mongoStore, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoStore.Close(closeCtx)
	}()

	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	fmt.Println("indexes ensured")
	return nil
}

// sessionStore prefers Redis when configured so refresh tokens survive
// restarts; otherwise sessions live in process memory.
func sessionStore(ctx context.Context, cfg config.Config, logger *slog.Logger) auth.SessionStore {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory session store")
		return auth.NewInMemorySessionStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, falling back to in-memory sessions", "addr", cfg.RedisAddr, "error", err)
		return auth.NewInMemorySessionStore()
	}

	logger.Info("using redis session store", "addr", cfg.RedisAddr)
	return auth.NewRedisSessionStore(client)
}
