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

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/simonbalanoff/SigEpRush-API/config"
	"github.com/simonbalanoff/SigEpRush-API/internal/api/handler"
	"github.com/simonbalanoff/SigEpRush-API/internal/api/router"
	"github.com/simonbalanoff/SigEpRush-API/internal/repository"
	"github.com/simonbalanoff/SigEpRush-API/internal/service"
	"github.com/simonbalanoff/SigEpRush-API/pkg/database"
	"github.com/simonbalanoff/SigEpRush-API/pkg/jwt"
	applogger "github.com/simonbalanoff/SigEpRush-API/pkg/logger"
	"github.com/simonbalanoff/SigEpRush-API/pkg/redis"
	"github.com/simonbalanoff/SigEpRush-API/pkg/storage"
)

func main() {
	// 1. config
	cfg, err := config.Load(os.Getenv("RUSH_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. error reporting (optional)
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			logger.Warn("sentry init failed, continuing without error reporting", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// 4. database
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	// 5. redis (optional: token revocation and rate limiting are disabled without it)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token blacklist and rate limiting disabled", zap.Error(err))
		rdb = nil
	}

	// 6. photo storage (optional)
	var store service.ObjectStore
	s3Store, err := storage.NewS3Store(&cfg.Storage)
	switch {
	case err == nil:
		store = s3Store
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Warn("storage bucket not configured, photo uploads disabled")
	default:
		logger.Fatal("init storage", zap.Error(err))
	}

	// 7. wiring: repository → service → handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, store, logger)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.User.EnsureAdmin(seedCtx, &cfg.Seed); err != nil {
		logger.Fatal("seed admin", zap.Error(err))
	}
	cancelSeed()

	h := handler.NewHandler(svc)
	engine := router.Setup(cfg, h, svc.Membership, jwtMgr, rdb, logger)

	// 8. http server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	sqlDB.Close()
	rdb.Close()

	logger.Info("server stopped")
}
