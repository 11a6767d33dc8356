package executor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/chronflow/chronflow/internal/actions"
	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/pkg/clock"
	pkgmetrics "github.com/chronflow/chronflow/internal/pkg/metrics"
	"github.com/chronflow/chronflow/internal/scheduler/recurrence"
	"github.com/chronflow/chronflow/internal/scheduler/store"
)

var (
	// ErrRunInProgress means another execution holds the schedule's slot.
	// The caller that lost the race observes the bookkeeping the winner
	// writes, so a manual run racing a tick never double-fires.
	ErrRunInProgress = errors.New("schedule run already in progress")

	// ErrNotDue means the schedule's next run moved into the future between
	// the tick's selection and execution.
	ErrNotDue = errors.New("schedule is no longer due")
)

type Result struct {
	ScheduleID uuid.UUID
	Status     string
	Err        error
	RanAt      time.Time
	NextRunAt  *time.Time
}

// Executor fires one due schedule: it invokes the bound action, records the
// outcome, recomputes the next run, and persists the bookkeeping. Exactly
// one action invocation happens per successful Execute call.
type Executor struct {
	store    store.ScheduleStore
	invoker  actions.Invoker
	calc     *recurrence.Calculator
	clock    clock.Clock
	inflight *inFlight
}

func New(scheduleStore store.ScheduleStore, invoker actions.Invoker, calc *recurrence.Calculator, clk clock.Clock) *Executor {
	return &Executor{
		store:    scheduleStore,
		invoker:  invoker,
		calc:     calc,
		clock:    clk,
		inflight: newInFlight(),
	}
}

// Execute fires the schedule. Trigger is models.TriggerSchedule for the
// poller path (which re-checks due-ness after acquiring the slot) or
// models.TriggerManual for run-now (which bypasses next-run gating).
func (e *Executor) Execute(ctx context.Context, schedule *models.Schedule, trigger string) (*Result, error) {
	if !e.inflight.TryAcquire(schedule.ID) {
		return nil, ErrRunInProgress
	}
	defer e.inflight.Release(schedule.ID)

	now := e.clock.Now()

	if trigger == models.TriggerSchedule {
		// The row may have been fired by a manual run between selection and
		// acquiring the slot; trust storage, not the snapshot.
		fresh, err := e.store.GetByID(ctx, schedule.ID)
		if err != nil {
			return nil, err
		}
		if !fresh.IsActive || fresh.NextRunAt == nil || fresh.NextRunAt.After(now) {
			return nil, ErrNotDue
		}
		schedule = fresh
	}

	result := &Result{ScheduleID: schedule.ID, RanAt: now}

	invokeErr := e.invoker.Invoke(ctx, schedule.Action, schedule.OwnerContext())

	var errDetail *string
	if invokeErr != nil {
		result.Status = models.RunStatusFailure
		result.Err = invokeErr
		msg := invokeErr.Error()
		errDetail = &msg
		log.Warn().
			Err(invokeErr).
			Str("schedule_id", schedule.ID.String()).
			Str("action", string(schedule.Action.Type)).
			Msg("Action invocation failed")
	} else {
		result.Status = models.RunStatusSuccess
	}

	pkgmetrics.RecordFiring(
		string(schedule.Action.Type),
		result.Status,
		trigger,
		e.clock.Now().Sub(now).Seconds(),
	)

	// A failed firing still advances the schedule; the next occurrence is
	// the retry. A fired Once is terminal regardless of outcome.
	result.NextRunAt = e.nextRun(schedule, now)

	upd := store.RunUpdate{
		LastRunAt: now,
		Status:    result.Status,
		Error:     errDetail,
		NextRunAt: result.NextRunAt,
	}
	if err := e.store.RecordRun(ctx, schedule.ID, upd); err != nil {
		// The action already ran; losing the bookkeeping risks a duplicate
		// fire on the next tick.
		log.Error().
			Err(err).
			Str("schedule_id", schedule.ID.String()).
			Msg("Failed to persist run bookkeeping after action invocation")
		return result, err
	}

	e.appendHistory(ctx, schedule, trigger, result, errDetail)

	log.Debug().
		Str("schedule_id", schedule.ID.String()).
		Str("status", result.Status).
		Str("trigger", trigger).
		Msg("Schedule fired")

	return result, nil
}

// ExecuteByID loads the schedule and fires it; the run-now entry point.
func (e *Executor) ExecuteByID(ctx context.Context, id uuid.UUID, trigger string) (*Result, error) {
	schedule, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, schedule, trigger)
}

func (e *Executor) nextRun(schedule *models.Schedule, now time.Time) *time.Time {
	if schedule.Recurrence.Type == models.RecurrenceOnce {
		return nil
	}

	next, err := e.calc.Next(schedule.Recurrence, now, schedule.Location())
	if err != nil {
		// Validation rejects these at write time; a rule that still fails
		// here goes inert rather than wedging the loop.
		log.Error().
			Err(err).
			Str("schedule_id", schedule.ID.String()).
			Msg("Failed to compute next run")
		return nil
	}
	return next
}

func (e *Executor) appendHistory(ctx context.Context, schedule *models.Schedule, trigger string, result *Result, errDetail *string) {
	finished := e.clock.Now()
	rec := &models.RunRecord{
		ScheduleID: schedule.ID,
		Trigger:    trigger,
		ActionType: string(schedule.Action.Type),
		Status:     result.Status,
		Error:      errDetail,
		StartedAt:  result.RanAt,
		FinishedAt: &finished,
	}
	if err := e.store.AppendRunRecord(ctx, rec); err != nil {
		log.Warn().
			Err(err).
			Str("schedule_id", schedule.ID.String()).
			Msg("Failed to append run history")
	}
}
