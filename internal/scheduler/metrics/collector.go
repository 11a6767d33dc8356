package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps process-local counters for the scheduler's health surface.
// Prometheus export lives in internal/pkg/metrics; this snapshot is what the
// daemon logs and serves without a scrape.
type Collector struct {
	pollsTotal     atomic.Int64
	firedTotal     atomic.Int64
	succeededTotal atomic.Int64
	failedTotal    atomic.Int64
	skippedTotal   atomic.Int64
	recoveredTotal atomic.Int64
	prunedTotal    atomic.Int64

	lastPollDuration atomic.Int64 // milliseconds
	startedAt        time.Time
}

func NewCollector() *Collector {
	return &Collector{startedAt: time.Now()}
}

func (c *Collector) IncPolls() {
	c.pollsTotal.Add(1)
}

func (c *Collector) IncFired(succeeded bool) {
	c.firedTotal.Add(1)
	if succeeded {
		c.succeededTotal.Add(1)
	} else {
		c.failedTotal.Add(1)
	}
}

func (c *Collector) IncSkipped(n int64) {
	c.skippedTotal.Add(n)
}

func (c *Collector) IncRecovered(n int64) {
	c.recoveredTotal.Add(n)
}

func (c *Collector) IncPruned(n int64) {
	c.prunedTotal.Add(n)
}

func (c *Collector) RecordPollDuration(d time.Duration) {
	c.lastPollDuration.Store(d.Milliseconds())
}

type Snapshot struct {
	PollsTotal       int64         `json:"polls_total"`
	FiredTotal       int64         `json:"fired_total"`
	SucceededTotal   int64         `json:"succeeded_total"`
	FailedTotal      int64         `json:"failed_total"`
	SkippedTotal     int64         `json:"skipped_total"`
	RecoveredTotal   int64         `json:"recovered_total"`
	PrunedTotal      int64         `json:"pruned_total"`
	LastPollDuration int64         `json:"last_poll_duration_ms"`
	Uptime           time.Duration `json:"uptime"`
}

func (c *Collector) Snapshot() *Snapshot {
	return &Snapshot{
		PollsTotal:       c.pollsTotal.Load(),
		FiredTotal:       c.firedTotal.Load(),
		SucceededTotal:   c.succeededTotal.Load(),
		FailedTotal:      c.failedTotal.Load(),
		SkippedTotal:     c.skippedTotal.Load(),
		RecoveredTotal:   c.recoveredTotal.Load(),
		PrunedTotal:      c.prunedTotal.Load(),
		LastPollDuration: c.lastPollDuration.Load(),
		Uptime:           time.Since(c.startedAt),
	}
}
