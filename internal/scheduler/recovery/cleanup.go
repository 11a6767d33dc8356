package recovery

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chronflow/chronflow/internal/pkg/clock"
	pkgmetrics "github.com/chronflow/chronflow/internal/pkg/metrics"
	"github.com/chronflow/chronflow/internal/scheduler/metrics"
	"github.com/chronflow/chronflow/internal/scheduler/store"
)

// Cleanup prunes run history past the retention window.
type Cleanup struct {
	store         store.ScheduleStore
	clock         clock.Clock
	metrics       *metrics.Collector
	retentionDays int
	interval      time.Duration
}

func NewCleanup(scheduleStore store.ScheduleStore, clk clock.Clock, collector *metrics.Collector, retentionDays int) *Cleanup {
	return &Cleanup{
		store:         scheduleStore,
		clock:         clk,
		metrics:       collector,
		retentionDays: retentionDays,
		interval:      time.Hour,
	}
}

func (c *Cleanup) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleanup) cleanup(ctx context.Context) {
	cutoff := c.clock.Now().AddDate(0, 0, -c.retentionDays)

	deleted, err := c.store.PruneRunRecords(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune run history")
		return
	}

	if deleted > 0 {
		if c.metrics != nil {
			c.metrics.IncPruned(deleted)
		}
		pkgmetrics.RecordPruned(deleted)
		log.Info().
			Int64("deleted", deleted).
			Int("retention_days", c.retentionDays).
			Msg("Pruned run history")
	}
}

func (c *Cleanup) CleanupOnce(ctx context.Context) {
	c.cleanup(ctx)
}
