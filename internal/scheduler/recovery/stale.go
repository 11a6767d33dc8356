package recovery

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/pkg/clock"
	pkgmetrics "github.com/chronflow/chronflow/internal/pkg/metrics"
	"github.com/chronflow/chronflow/internal/scheduler/metrics"
	"github.com/chronflow/chronflow/internal/scheduler/recurrence"
	"github.com/chronflow/chronflow/internal/scheduler/store"
)

// StaleRecovery reconciles schedules whose next run fell due while no
// scheduler was running. Schedules due within the threshold simply fire on
// the first tick after restart; anything staler is advanced to its next
// future occurrence without firing, so a long-dormant process does not
// replay a backlog. A stale Once has missed its only occurrence and goes
// terminal.
type StaleRecovery struct {
	store      store.ScheduleStore
	calculator *recurrence.Calculator
	clock      clock.Clock
	metrics    *metrics.Collector
	threshold  time.Duration
	interval   time.Duration
}

func NewStaleRecovery(
	scheduleStore store.ScheduleStore,
	calculator *recurrence.Calculator,
	clk clock.Clock,
	collector *metrics.Collector,
	threshold time.Duration,
) *StaleRecovery {
	return &StaleRecovery{
		store:      scheduleStore,
		calculator: calculator,
		clock:      clk,
		metrics:    collector,
		threshold:  threshold,
		interval:   5 * time.Minute,
	}
}

func (r *StaleRecovery) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Run once on start
	r.recover(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.recover(ctx)
		}
	}
}

func (r *StaleRecovery) recover(ctx context.Context) {
	now := r.clock.Now()
	cutoff := now.Add(-r.threshold)

	stale, err := r.store.GetStale(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch stale schedules")
		return
	}

	if len(stale) == 0 {
		return
	}

	recovered := 0
	for _, schedule := range stale {
		var nextRun *time.Time
		if schedule.Recurrence.Type != models.RecurrenceOnce {
			nextRun, err = r.calculator.Next(schedule.Recurrence, now, schedule.Location())
			if err != nil {
				log.Error().
					Err(err).
					Str("schedule_id", schedule.ID.String()).
					Msg("Failed to compute next run for stale schedule")
				continue
			}
		}

		if err := r.store.UpdateNextRun(ctx, schedule.ID, nextRun); err != nil {
			log.Error().
				Err(err).
				Str("schedule_id", schedule.ID.String()).
				Msg("Failed to update stale schedule")
			continue
		}

		recovered++
		evt := log.Warn().Str("schedule_id", schedule.ID.String())
		if schedule.NextRunAt != nil {
			evt = evt.Time("old_next_run", *schedule.NextRunAt)
		}
		if nextRun != nil {
			evt = evt.Time("new_next_run", *nextRun)
		}
		evt.Msg("Advanced stale schedule past missed occurrences")
	}

	if recovered > 0 {
		if r.metrics != nil {
			r.metrics.IncRecovered(int64(recovered))
		}
		pkgmetrics.RecordRecovered(int64(recovered))
		log.Info().Int("count", recovered).Msg("Recovered stale schedules")
	}
}

func (r *StaleRecovery) RecoverOnce(ctx context.Context) {
	r.recover(ctx)
}
