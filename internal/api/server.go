package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/chronflow/chronflow/internal/api/handlers"
	"github.com/chronflow/chronflow/internal/api/middleware"
	"github.com/chronflow/chronflow/internal/domain/services"
	"github.com/chronflow/chronflow/internal/pkg/config"
	"github.com/chronflow/chronflow/internal/pkg/metrics"
	pkgredis "github.com/chronflow/chronflow/internal/pkg/redis"
)

type Server struct {
	cfg        *config.Config
	router     *chi.Mux
	httpServer *http.Server
}

func NewServer(
	cfg *config.Config,
	scheduleSvc *services.ScheduleService,
	redisClient *pkgredis.Client,
	db *gorm.DB,
) *Server {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger())
	router.Use(middleware.Recoverer())
	router.Use(chimiddleware.Timeout(60 * time.Second))
	router.Use(metrics.MetricsMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	router.Use(corsHandler.Handler)

	scheduleHandler := handlers.NewScheduleHandler(scheduleSvc)
	healthHandler := handlers.NewHealthHandler(db, redisClient.Client)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimiter.Limit(1000, time.Minute))

		// Health
		r.Get("/health", healthHandler.Health)
		r.Get("/health/live", healthHandler.Live)
		r.Get("/health/ready", healthHandler.Ready)

		// Schedules
		r.Get("/schedules", scheduleHandler.List)
		r.Post("/schedules", scheduleHandler.Create)
		r.Get("/schedules/{scheduleID}", scheduleHandler.Get)
		r.Put("/schedules/{scheduleID}", scheduleHandler.Update)
		r.Delete("/schedules/{scheduleID}", scheduleHandler.Delete)
		r.Post("/schedules/{scheduleID}/activate", scheduleHandler.Activate)
		r.Post("/schedules/{scheduleID}/deactivate", scheduleHandler.Deactivate)
		r.Post("/schedules/{scheduleID}/run", scheduleHandler.Run)
		r.Get("/schedules/{scheduleID}/runs", scheduleHandler.Runs)
	})

	// Metrics endpoint (Prometheus)
	router.Handle("/metrics", metrics.Handler())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		cfg:        cfg,
		router:     router,
		httpServer: httpServer,
	}
}

func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}

func (s *Server) Router() *chi.Mux {
	return s.router
}
