package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/chronflow/chronflow/internal/pkg/config"
	"github.com/chronflow/chronflow/internal/pkg/logger"
	pkgredis "github.com/chronflow/chronflow/internal/pkg/redis"
	"github.com/chronflow/chronflow/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init(cfg.App.Environment, cfg.App.Debug)

	log.Info().
		Str("app", cfg.App.Name).
		Str("service", "worker").
		Msg("Starting delivery worker")

	// Connect to Redis
	redisClient, err := pkgredis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	w := worker.New(cfg, redisClient, 10)

	if err := w.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start worker")
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Received shutdown signal")

	w.Shutdown()

	log.Info().Msg("Worker stopped")
}
