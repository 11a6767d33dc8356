package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/domain/repositories"
	"github.com/chronflow/chronflow/internal/pkg/clock"
	"github.com/chronflow/chronflow/internal/scheduler/executor"
	"github.com/chronflow/chronflow/internal/scheduler/recurrence"
)

var (
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrInvalidRecurrence = errors.New("invalid recurrence rule")
	ErrInvalidAction     = errors.New("invalid action binding")
	ErrInvalidTimezone   = errors.New("unknown timezone")
)

// scheduleStore is the slice of ScheduleRepository the service needs.
type scheduleStore interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Schedule, error)
	FindByProjectID(ctx context.Context, projectID uuid.UUID, opts *repositories.ListOptions) ([]models.Schedule, int64, error)
	SetActive(ctx context.Context, id uuid.UUID, isActive bool) error
	SetNextRun(ctx context.Context, id uuid.UUID, nextRunAt *time.Time) error
}

// Runner fires a schedule immediately, outside the polling loop.
type Runner interface {
	ExecuteByID(ctx context.Context, id uuid.UUID, trigger string) (*executor.Result, error)
}

// ScheduleService owns the schedule lifecycle: create, update, activate,
// deactivate, run-now. Recurrence and action bindings are validated at write
// time so the firing path never meets a rule it cannot evaluate.
type ScheduleService struct {
	scheduleRepo scheduleStore
	runRepo      *repositories.RunRecordRepository
	calculator   *recurrence.Calculator
	runner       Runner
	clock        clock.Clock
}

func NewScheduleService(
	scheduleRepo scheduleStore,
	runRepo *repositories.RunRecordRepository,
	runner Runner,
	clk clock.Clock,
) *ScheduleService {
	if clk == nil {
		clk = clock.System()
	}
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		runRepo:      runRepo,
		calculator:   recurrence.NewCalculator(),
		runner:       runner,
		clock:        clk,
	}
}

type CreateScheduleInput struct {
	ProjectID      uuid.UUID
	OrganizationID uuid.UUID
	CreatedBy      uuid.UUID
	Name           string
	Description    *string
	Tags           []string
	Recurrence     models.Recurrence
	Action         models.Action
	Timezone       string
	IsActive       *bool
}

func (s *ScheduleService) Create(ctx context.Context, input CreateScheduleInput) (*models.Schedule, error) {
	if err := s.calculator.Validate(input.Recurrence); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
	}
	if err := input.Action.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	loc, err := s.resolveLocation(input.Timezone)
	if err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	schedule := &models.Schedule{
		ProjectID:      input.ProjectID,
		OrganizationID: input.OrganizationID,
		CreatedBy:      input.CreatedBy,
		Name:           input.Name,
		Description:    input.Description,
		Tags:           input.Tags,
		Recurrence:     input.Recurrence,
		Action:         input.Action,
		Timezone:       input.Timezone,
		IsActive:       isActive,
	}

	if isActive {
		next, err := s.calculator.Next(schedule.Recurrence, s.clock.Now(), loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
		}
		schedule.NextRunAt = next
	}

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, err
	}

	log.Info().
		Str("schedule_id", schedule.ID.String()).
		Str("name", schedule.Name).
		Str("recurrence", string(schedule.Recurrence.Type)).
		Bool("is_active", schedule.IsActive).
		Msg("Schedule created")

	return schedule, nil
}

func (s *ScheduleService) GetByID(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return schedule, nil
}

func (s *ScheduleService) ListByProject(ctx context.Context, projectID uuid.UUID, opts *repositories.ListOptions) ([]models.Schedule, int64, error) {
	return s.scheduleRepo.FindByProjectID(ctx, projectID, opts)
}

type UpdateScheduleInput struct {
	Name        *string
	Description *string
	Tags        []string
	Recurrence  *models.Recurrence
	Action      *models.Action
	Timezone    *string
}

func (s *ScheduleService) Update(ctx context.Context, scheduleID uuid.UUID, input UpdateScheduleInput) (*models.Schedule, error) {
	schedule, err := s.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		schedule.Name = *input.Name
	}
	if input.Description != nil {
		schedule.Description = input.Description
	}
	if input.Tags != nil {
		schedule.Tags = input.Tags
	}
	if input.Recurrence != nil {
		if err := s.calculator.Validate(*input.Recurrence); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
		}
		schedule.Recurrence = *input.Recurrence
	}
	if input.Action != nil {
		if err := input.Action.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
		schedule.Action = *input.Action
	}
	if input.Timezone != nil {
		if _, err := s.resolveLocation(*input.Timezone); err != nil {
			return nil, err
		}
		schedule.Timezone = *input.Timezone
	}

	// A changed rule or zone invalidates the stored occurrence; recompute
	// from now, but only while the schedule is active. An inactive schedule
	// picks its occurrence up at activation.
	if schedule.IsActive && (input.Recurrence != nil || input.Timezone != nil) {
		next, err := s.calculator.Next(schedule.Recurrence, s.clock.Now(), schedule.Location())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
		}
		schedule.NextRunAt = next
	}

	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, err
	}

	return schedule, nil
}

func (s *ScheduleService) Delete(ctx context.Context, scheduleID uuid.UUID) error {
	if _, err := s.GetByID(ctx, scheduleID); err != nil {
		return err
	}
	return s.scheduleRepo.Delete(ctx, scheduleID)
}

// Activate turns the schedule on and computes its next run from now. Past
// occurrences missed while inactive are not replayed. Activating an active
// schedule refreshes the occurrence and is otherwise a no-op.
func (s *ScheduleService) Activate(ctx context.Context, scheduleID uuid.UUID) (*models.Schedule, error) {
	schedule, err := s.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	next, err := s.calculator.Next(schedule.Recurrence, s.clock.Now(), schedule.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
	}

	if err := s.scheduleRepo.SetNextRun(ctx, scheduleID, next); err != nil {
		return nil, err
	}
	if err := s.scheduleRepo.SetActive(ctx, scheduleID, true); err != nil {
		return nil, err
	}

	schedule.IsActive = true
	schedule.NextRunAt = next

	log.Info().
		Str("schedule_id", scheduleID.String()).
		Msg("Schedule activated")

	return schedule, nil
}

// Deactivate turns the schedule off. The stored next run is left in place;
// it is ignored while inactive and recomputed on activation.
func (s *ScheduleService) Deactivate(ctx context.Context, scheduleID uuid.UUID) (*models.Schedule, error) {
	schedule, err := s.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	if err := s.scheduleRepo.SetActive(ctx, scheduleID, false); err != nil {
		return nil, err
	}
	schedule.IsActive = false

	log.Info().
		Str("schedule_id", scheduleID.String()).
		Msg("Schedule deactivated")

	return schedule, nil
}

// RunNow fires the schedule immediately regardless of its next run or active
// flag. The run is serialized against the polling loop, so a manual run
// racing a due tick produces exactly one invocation.
func (s *ScheduleService) RunNow(ctx context.Context, scheduleID uuid.UUID) (*executor.Result, error) {
	if _, err := s.GetByID(ctx, scheduleID); err != nil {
		return nil, err
	}
	return s.runner.ExecuteByID(ctx, scheduleID, models.TriggerManual)
}

func (s *ScheduleService) ListRuns(ctx context.Context, scheduleID uuid.UUID, opts *repositories.ListOptions) ([]models.RunRecord, int64, error) {
	if _, err := s.GetByID(ctx, scheduleID); err != nil {
		return nil, 0, err
	}
	return s.runRepo.FindByScheduleID(ctx, scheduleID, opts)
}

func (s *ScheduleService) resolveLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, timezone)
	}
	return loc, nil
}
