package scheduler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/chronflow/chronflow/internal/actions"
	"github.com/chronflow/chronflow/internal/pkg/clock"
	pkgmetrics "github.com/chronflow/chronflow/internal/pkg/metrics"
	"github.com/chronflow/chronflow/internal/scheduler/executor"
	"github.com/chronflow/chronflow/internal/scheduler/metrics"
	"github.com/chronflow/chronflow/internal/scheduler/poller"
	"github.com/chronflow/chronflow/internal/scheduler/recovery"
	"github.com/chronflow/chronflow/internal/scheduler/recurrence"
	"github.com/chronflow/chronflow/internal/scheduler/store"
)

// Scheduler is the single-process polling driver. Running more than one
// instance against the same store will duplicate firings; cross-process
// coordination is explicitly out of scope.
type Scheduler struct {
	config *Config

	executor   *executor.Executor
	poller     *poller.Poller
	staleRecov *recovery.StaleRecovery
	cleanup    *recovery.Cleanup
	metrics    *metrics.Collector

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Dependencies struct {
	DB      *gorm.DB
	Invoker actions.Invoker
	Clock   clock.Clock
}

func New(cfg *Config, deps *Dependencies) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Validate()

	clk := deps.Clock
	if clk == nil {
		clk = clock.System()
	}

	ctx, cancel := context.WithCancel(context.Background())

	pgStore := store.NewPostgresStore(deps.DB)
	calculator := recurrence.NewCalculator()
	collector := metrics.NewCollector()

	exec := executor.New(pgStore, deps.Invoker, calculator, clk)

	poll := poller.NewPoller(
		pgStore, exec, clk, collector,
		cfg.BatchSize, cfg.PollInterval, cfg.MaxConcurrent, cfg.FiringsPerSecond,
	)

	staleRecov := recovery.NewStaleRecovery(pgStore, calculator, clk, collector, cfg.StaleThreshold)
	cleanup := recovery.NewCleanup(pgStore, clk, collector, cfg.RetentionDays)

	return &Scheduler{
		config:     cfg,
		executor:   exec,
		poller:     poll,
		staleRecov: staleRecov,
		cleanup:    cleanup,
		metrics:    collector,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (s *Scheduler) Start() error {
	log.Info().
		Dur("poll_interval", s.config.PollInterval).
		Int("batch_size", s.config.BatchSize).
		Int("max_concurrent", s.config.MaxConcurrent).
		Msg("Starting scheduler")

	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		// Stale reconciliation runs before the first tick so the backlog of
		// a long outage is skipped, not replayed.
		s.staleRecov.RecoverOnce(s.ctx)
		s.poller.PollOnce(s.ctx)
		s.poller.Run(s.ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.staleRecov.Run(s.ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.cleanup.Run(s.ctx)
	}()

	return nil
}

func (s *Scheduler) Stop() error {
	log.Info().Msg("Stopping scheduler...")

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Scheduler stopped gracefully")
	case <-time.After(s.config.ShutdownTimeout):
		log.Warn().Msg("Scheduler shutdown timed out")
	}

	return nil
}

// Executor exposes the execution engine for the run-now path.
func (s *Scheduler) Executor() *executor.Executor {
	return s.executor
}

func (s *Scheduler) Metrics() *metrics.Collector {
	return s.metrics
}

// Handler serves the daemon's observability surface: the counter snapshot
// on /health and the prometheus registry on /metrics.
func (s *Scheduler) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.Health())
	})
	r.Handle("/metrics", pkgmetrics.Handler())
	return r
}

func (s *Scheduler) Health() map[string]interface{} {
	snapshot := s.metrics.Snapshot()
	pollerStats := s.poller.Stats()

	return map[string]interface{}{
		"uptime_seconds": int64(snapshot.Uptime.Seconds()),
		"polls_total":    pollerStats.PollCount,
		"last_poll_at":   pollerStats.LastPollAt,
		"fired_total":    snapshot.FiredTotal,
		"failed_total":   snapshot.FailedTotal,
		"skipped_total":  snapshot.SkippedTotal,
	}
}
