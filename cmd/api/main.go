package main

import (
	"github.com/rs/zerolog/log"

	"github.com/chronflow/chronflow/internal/actions"
	"github.com/chronflow/chronflow/internal/api"
	"github.com/chronflow/chronflow/internal/domain/repositories"
	"github.com/chronflow/chronflow/internal/domain/services"
	"github.com/chronflow/chronflow/internal/pkg/clock"
	"github.com/chronflow/chronflow/internal/pkg/config"
	"github.com/chronflow/chronflow/internal/pkg/database"
	"github.com/chronflow/chronflow/internal/pkg/logger"
	"github.com/chronflow/chronflow/internal/pkg/queue"
	pkgredis "github.com/chronflow/chronflow/internal/pkg/redis"
	"github.com/chronflow/chronflow/internal/scheduler/executor"
	"github.com/chronflow/chronflow/internal/scheduler/recurrence"
	"github.com/chronflow/chronflow/internal/scheduler/store"
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
		Str("service", "api").
		Msg("Starting API service")

	// Connect to database
	db, err := database.NewGormDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := pkgredis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	// Initialize queue client
	queueClient := queue.NewClient(&cfg.Redis)
	defer queueClient.Close()

	// Repositories
	scheduleRepo := repositories.NewScheduleRepository(db)
	taskRepo := repositories.NewTaskRecordRepository(db)
	runRepo := repositories.NewRunRecordRepository(db)

	// The run-now path shares the execution engine with the scheduler
	// daemon; it fires through the same store bookkeeping.
	registry := actions.NewDefaultRegistry(taskRepo, queueClient, redisClient)
	exec := executor.New(store.NewPostgresStore(db), registry, recurrence.NewCalculator(), clock.System())

	scheduleSvc := services.NewScheduleService(scheduleRepo, runRepo, exec, clock.System())

	// Start HTTP server
	server := api.NewServer(cfg, scheduleSvc, redisClient, db)
	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
