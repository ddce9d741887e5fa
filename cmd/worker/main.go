package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dartview/internal/app"
	"dartview/internal/config"
	"dartview/internal/logging"
	"dartview/internal/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	if cfg.RedisURL == "" {
		logger.Fatal("REDIS_URL is required by the worker")
	}

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to parse Redis URL", zap.Error(err))
	}

	src, closeSource, err := app.OpenSource(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open report source", zap.Error(err))
	}
	defer closeSource()

	renderCache, closeCache := app.OpenCache(context.Background(), cfg, logger)
	defer closeCache()

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Queues: map[string]int{
				"default": 3,
			},
			Concurrency: 4,
			Logger:      logger.Named("asynq").Sugar(),
		},
	)

	taskProcessor := tasks.NewTaskProcessor(&tasks.Renderer{
		Source: src,
		Cache:  renderCache,
		TTL:    cfg.RenderCacheTTL,
		Logger: logger,
	}, logger)

	mux := asynq.NewServeMux()
	mux.HandleFunc(
		tasks.TypeTaskRenderRawReport,
		taskProcessor.HandleRenderRawReportTask,
	)

	logger.Info("Starting Asynq worker server...")
	if err := srv.Start(mux); err != nil {
		logger.Fatal("Could not run Asynq worker server", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logger.Info("Shutdown signal received, shutting down gracefully...")

	srv.Shutdown()
	logger.Info("Asynq worker server shut down.")

	logger.Info("Worker process shut down complete.")
}
