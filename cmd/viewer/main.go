package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dartview/internal/app"
	"dartview/internal/config"
	"dartview/internal/controllers"
	"dartview/internal/logging"
	"dartview/internal/routes"
	"dartview/internal/tasks"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	if cfg.LogFormat == "json" {
		gin.SetMode(gin.ReleaseMode)
	}

	src, closeSource, err := app.OpenSource(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open report source", zap.Error(err))
	}
	defer closeSource()

	ctx := context.Background()
	renderCache, closeCache := app.OpenCache(ctx, cfg, logger)
	defer closeCache()

	var enqueuer controllers.Enqueuer
	if cfg.RedisURL != "" {
		redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			logger.Warn("Failed to parse Redis URL, prefetching disabled", zap.Error(err))
		} else {
			asynqClient := asynq.NewClient(redisOpt)
			defer asynqClient.Close()
			enqueuer = asynqClient
		}
	}

	router := routes.SetupRouter(cfg, routes.Deps{
		Source: src,
		Renderer: &tasks.Renderer{
			Source: src,
			Cache:  renderCache,
			TTL:    cfg.RenderCacheTTL,
			Logger: logger,
		},
		Enqueuer: enqueuer,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting viewer", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logger.Info("Shutdown signal received, shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Viewer shut down complete.")
}
