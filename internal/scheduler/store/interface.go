package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/chronflow/chronflow/internal/domain/models"
)

var ErrNotFound = errors.New("schedule not found")

// RunUpdate carries the bookkeeping written after one firing attempt.
type RunUpdate struct {
	LastRunAt time.Time
	Status    string
	Error     *string
	// NextRunAt nil marks the schedule terminal (a Once that has fired).
	NextRunAt *time.Time
}

type ScheduleStore interface {
	// GetDue fetches active schedules with next_run_at <= now, oldest first.
	GetDue(ctx context.Context, now time.Time, limit int) ([]*models.Schedule, error)

	// GetByID fetches a single schedule.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Schedule, error)

	// GetStale fetches active schedules whose next_run_at fell before cutoff
	// without a firing being recorded.
	GetStale(ctx context.Context, cutoff time.Time) ([]*models.Schedule, error)

	// RecordRun writes the outcome of a firing and the recomputed next run.
	RecordRun(ctx context.Context, id uuid.UUID, upd RunUpdate) error

	// UpdateNextRun rewrites next_run_at without touching run bookkeeping.
	UpdateNextRun(ctx context.Context, id uuid.UUID, nextRun *time.Time) error

	// AppendRunRecord appends one row of per-firing history.
	AppendRunRecord(ctx context.Context, rec *models.RunRecord) error

	// PruneRunRecords deletes history rows started before cutoff.
	PruneRunRecords(ctx context.Context, cutoff time.Time) (int64, error)
}
