package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/todo-tracker/internal/config"
	"github.com/yukikurage/todo-tracker/internal/database"
	"github.com/yukikurage/todo-tracker/internal/handlers"
	"github.com/yukikurage/todo-tracker/internal/repository"
	"github.com/yukikurage/todo-tracker/internal/services"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

// run returns instead of exiting so deferred cleanup always runs.
func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := log.New()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithError(err).Warn("unknown LOG_LEVEL, using info")
	}
	if cfg.GinMode == gin.ReleaseMode {
		logger.SetFormatter(&log.JSONFormatter{})
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, cleanup, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to configure storage: %w", err)
	}
	defer cleanup()

	if rc := database.NewRedisClient(cfg); rc != nil {
		defer rc.Close()
		repo = repository.NewCachedTodoRepository(repo, rc, cfg.CacheTTL.Duration, logger)
		logger.WithField("ttl", cfg.CacheTTL.Duration).Info("list cache enabled")
	}

	// Initialize services and handlers
	todoService := services.NewTodoService(repo)
	suggestionService := services.NewSuggestionService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if suggestionService == nil {
		logger.Info("OPENAI_API_KEY not set, suggestions disabled")
	}

	router := handlers.NewRouter(
		handlers.NewTodoHandler(todoService, logger),
		handlers.NewSuggestionHandler(suggestionService, logger),
		logger,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, logger)
}

// serve runs srv until ctx is cancelled or the listener fails.
func serve(ctx context.Context, srv *http.Server, logger log.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openRepository builds the configured storage backend. Failing to reach the
// store is logged and the server keeps running; requests then fail with 500
// until the store comes back.
func openRepository(ctx context.Context, cfg *config.Config, logger *log.Logger) (repository.TodoRepository, func(), error) {
	entry := logger.WithField("driver", cfg.StorageDriver)

	if cfg.StorageDriver == config.DriverMongo {
		client, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, startupTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			entry.WithError(err).Error("failed to connect to storage")
		} else {
			entry.Info("connected to storage")
		}
		coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		cleanup := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				entry.WithError(err).Warn("mongo disconnect failed")
			}
		}
		return repository.NewMongoTodoRepository(coll), cleanup, nil
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db, logger); err != nil {
		entry.WithError(err).Error("failed to connect to storage")
	} else {
		entry.Info("connected to storage")
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return repository.NewTodoRepository(db), cleanup, nil
}
