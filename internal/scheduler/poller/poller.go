package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/pkg/clock"
	pkgmetrics "github.com/chronflow/chronflow/internal/pkg/metrics"
	"github.com/chronflow/chronflow/internal/scheduler/executor"
	"github.com/chronflow/chronflow/internal/scheduler/metrics"
	"github.com/chronflow/chronflow/internal/scheduler/store"
)

// Poller is the scheduler loop: every tick it selects due, active schedules
// and hands each to the executor. Firings within one tick run concurrently;
// one schedule's failure never blocks the rest. The tick interval bounds
// firing precision and that is accepted.
type Poller struct {
	store    store.ScheduleStore
	executor *executor.Executor
	clock    clock.Clock
	metrics  *metrics.Collector
	limiter  *rate.Limiter

	batchSize     int
	pollInterval  time.Duration
	maxConcurrent int

	pollCount  atomic.Int64
	lastPollAt atomic.Value // time.Time
}

func NewPoller(
	scheduleStore store.ScheduleStore,
	exec *executor.Executor,
	clk clock.Clock,
	collector *metrics.Collector,
	batchSize int,
	pollInterval time.Duration,
	maxConcurrent int,
	firingsPerSecond float64,
) *Poller {
	p := &Poller{
		store:         scheduleStore,
		executor:      exec,
		clock:         clk,
		metrics:       collector,
		limiter:       rate.NewLimiter(rate.Limit(firingsPerSecond), batchSize),
		batchSize:     batchSize,
		pollInterval:  pollInterval,
		maxConcurrent: maxConcurrent,
	}
	p.lastPollAt.Store(time.Time{})
	return p
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	start := time.Now()
	now := p.clock.Now()
	p.pollCount.Add(1)
	if p.metrics != nil {
		p.metrics.IncPolls()
	}

	schedules, err := p.store.GetDue(ctx, now, p.batchSize)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch due schedules")
		return
	}

	if len(schedules) == 0 {
		p.lastPollAt.Store(time.Now())
		return
	}

	var fired, failed, skipped atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(p.maxConcurrent)

	for _, schedule := range schedules {
		schedule := schedule
		g.Go(func() error {
			if !p.limiter.Allow() {
				// Stays due; the next tick picks it up.
				skipped.Add(1)
				return nil
			}

			result, err := p.executor.Execute(ctx, schedule, models.TriggerSchedule)
			switch {
			case err == nil && result.Status == models.RunStatusSuccess:
				fired.Add(1)
				if p.metrics != nil {
					p.metrics.IncFired(true)
				}
			case err == nil || result != nil:
				// Failed action or failed bookkeeping; both counted as a
				// firing attempt.
				fired.Add(1)
				failed.Add(1)
				if p.metrics != nil {
					p.metrics.IncFired(false)
				}
			case errors.Is(err, executor.ErrRunInProgress), errors.Is(err, executor.ErrNotDue):
				skipped.Add(1)
			default:
				failed.Add(1)
				log.Error().
					Err(err).
					Str("schedule_id", schedule.ID.String()).
					Msg("Failed to execute due schedule")
			}
			return nil
		})
	}

	_ = g.Wait()

	if p.metrics != nil {
		p.metrics.IncSkipped(skipped.Load())
		p.metrics.RecordPollDuration(time.Since(start))
	}
	pkgmetrics.RecordPoll(time.Since(start).Seconds())
	p.lastPollAt.Store(time.Now())

	log.Info().
		Int64("fired", fired.Load()).
		Int64("failed", failed.Load()).
		Int64("skipped", skipped.Load()).
		Int("due", len(schedules)).
		Dur("duration", time.Since(start)).
		Msg("Poll completed")
}

// PollOnce runs a single tick outside the ticker; used by tests and by the
// daemon right after startup so due work does not wait a full interval.
func (p *Poller) PollOnce(ctx context.Context) {
	p.poll(ctx)
}

type Stats struct {
	PollCount  int64
	LastPollAt time.Time
}

func (p *Poller) Stats() Stats {
	return Stats{
		PollCount:  p.pollCount.Load(),
		LastPollAt: p.lastPollAt.Load().(time.Time),
	}
}
