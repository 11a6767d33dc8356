package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/chronflow/chronflow/internal/actions"
	"github.com/chronflow/chronflow/internal/domain/repositories"
	"github.com/chronflow/chronflow/internal/pkg/config"
	"github.com/chronflow/chronflow/internal/pkg/database"
	"github.com/chronflow/chronflow/internal/pkg/logger"
	"github.com/chronflow/chronflow/internal/pkg/queue"
	pkgredis "github.com/chronflow/chronflow/internal/pkg/redis"
	"github.com/chronflow/chronflow/internal/scheduler"
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
		Str("service", "scheduler").
		Msg("Starting scheduler service")

	// Connect to database
	db, err := database.NewGormDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Connect to Redis
	redisClient, err := pkgredis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	// Initialize queue client
	queueClient := queue.NewClient(&cfg.Redis)
	defer queueClient.Close()

	// Wire action handlers
	taskRepo := repositories.NewTaskRecordRepository(db)
	registry := actions.NewDefaultRegistry(taskRepo, queueClient, redisClient)

	schedulerCfg := &scheduler.Config{
		PollInterval:     cfg.Scheduler.PollInterval,
		BatchSize:        cfg.Scheduler.BatchSize,
		MaxConcurrent:    cfg.Scheduler.MaxConcurrent,
		FiringsPerSecond: cfg.Scheduler.FiringsPerSecond,
		StaleThreshold:   cfg.Scheduler.StaleThreshold,
		RetentionDays:    cfg.Scheduler.RetentionDays,
		ShutdownTimeout:  cfg.Scheduler.ShutdownTimeout,
	}

	s := scheduler.New(schedulerCfg, &scheduler.Dependencies{
		DB:      db,
		Invoker: registry,
	})

	if err := s.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Health and metrics surface for the daemon
	healthAddr := fmt.Sprintf(":%d", cfg.Scheduler.HealthPort)
	go func() {
		log.Info().Str("addr", healthAddr).Msg("Starting scheduler health server")
		if err := http.ListenAndServe(healthAddr, s.Handler()); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Scheduler health server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Received shutdown signal")

	if err := s.Stop(); err != nil {
		log.Error().Err(err).Msg("Error stopping scheduler")
	}

	log.Info().Msg("Scheduler stopped")
}
