package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/domain/repositories"
	"github.com/chronflow/chronflow/internal/pkg/clock"
	"github.com/chronflow/chronflow/internal/scheduler/executor"
)

type fakeScheduleStore struct {
	schedules map[uuid.UUID]*models.Schedule
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{schedules: make(map[uuid.UUID]*models.Schedule)}
}

func (f *fakeScheduleStore) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}
	copied := *schedule
	f.schedules[schedule.ID] = &copied
	return nil
}

func (f *fakeScheduleStore) Update(ctx context.Context, schedule *models.Schedule) error {
	if _, ok := f.schedules[schedule.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *schedule
	f.schedules[schedule.ID] = &copied
	return nil
}

func (f *fakeScheduleStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.schedules, id)
	return nil
}

func (f *fakeScheduleStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	s, ok := f.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeScheduleStore) FindByProjectID(ctx context.Context, projectID uuid.UUID, opts *repositories.ListOptions) ([]models.Schedule, int64, error) {
	var out []models.Schedule
	for _, s := range f.schedules {
		if s.ProjectID == projectID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeScheduleStore) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	s, ok := f.schedules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.IsActive = isActive
	return nil
}

func (f *fakeScheduleStore) SetNextRun(ctx context.Context, id uuid.UUID, nextRunAt *time.Time) error {
	s, ok := f.schedules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.NextRunAt = nextRunAt
	return nil
}

type fakeRunner struct {
	lastID      uuid.UUID
	lastTrigger string
	result      *executor.Result
	err         error
}

func (f *fakeRunner) ExecuteByID(ctx context.Context, id uuid.UUID, trigger string) (*executor.Result, error) {
	f.lastID = id
	f.lastTrigger = trigger
	return f.result, f.err
}

func newTestService(store *fakeScheduleStore, runner Runner, now time.Time) *ScheduleService {
	return NewScheduleService(store, nil, runner, clock.NewFixed(now))
}

func validInput() CreateScheduleInput {
	return CreateScheduleInput{
		ProjectID:      uuid.New(),
		OrganizationID: uuid.New(),
		CreatedBy:      uuid.New(),
		Name:           "weekly summary",
		Recurrence:     models.Recurrence{Type: models.RecurrenceDaily, TimeOfDay: "08:00"},
		Action:         models.Action{Type: models.ActionEmailSend, Params: models.JSON{"to": "team@example.com"}},
		Timezone:       "UTC",
	}
}

func TestCreateStampsNextRun(t *testing.T) {
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	store := newFakeScheduleStore()
	svc := newTestService(store, &fakeRunner{}, now)

	schedule, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.True(t, schedule.IsActive)
	require.NotNil(t, schedule.NextRunAt)
	assert.True(t, schedule.NextRunAt.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))
}

func TestCreateInactiveLeavesNextRunEmpty(t *testing.T) {
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	store := newFakeScheduleStore()
	svc := newTestService(store, &fakeRunner{}, now)

	input := validInput()
	inactive := false
	input.IsActive = &inactive

	schedule, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, schedule.IsActive)
	assert.Nil(t, schedule.NextRunAt)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	svc := newTestService(newFakeScheduleStore(), &fakeRunner{}, now)

	t.Run("bad recurrence", func(t *testing.T) {
		input := validInput()
		input.Recurrence = models.Recurrence{Type: models.RecurrenceWeekly, TimeOfDay: "08:00"}
		_, err := svc.Create(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidRecurrence)
	})

	t.Run("bad cron expression", func(t *testing.T) {
		input := validInput()
		input.Recurrence = models.Recurrence{Type: models.RecurrenceCustom, CronExpression: "* * *"}
		_, err := svc.Create(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidRecurrence)
	})

	t.Run("bad action", func(t *testing.T) {
		input := validInput()
		input.Action = models.Action{Type: "webhook.call"}
		_, err := svc.Create(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidAction)
	})

	t.Run("bad timezone", func(t *testing.T) {
		input := validInput()
		input.Timezone = "Mars/Olympus_Mons"
		_, err := svc.Create(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidTimezone)
	})
}

func TestUpdateRecomputesNextRunOnRuleChange(t *testing.T) {
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	store := newFakeScheduleStore()
	svc := newTestService(store, &fakeRunner{}, now)

	schedule, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	newRule := models.Recurrence{Type: models.RecurrenceDaily, TimeOfDay: "18:00"}
	updated, err := svc.Update(context.Background(), schedule.ID, UpdateScheduleInput{Recurrence: &newRule})
	require.NoError(t, err)
	require.NotNil(t, updated.NextRunAt)
	assert.True(t, updated.NextRunAt.Equal(time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)))
}

func TestUpdateNameKeepsNextRun(t *testing.T) {
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	store := newFakeScheduleStore()
	svc := newTestService(store, &fakeRunner{}, now)

	schedule, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	original := *schedule.NextRunAt

	name := "renamed"
	updated, err := svc.Update(context.Background(), schedule.ID, UpdateScheduleInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	require.NotNil(t, updated.NextRunAt)
	assert.True(t, updated.NextRunAt.Equal(original))
}

func TestUpdateRejectsInvalidRule(t *testing.T) {
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	store := newFakeScheduleStore()
	svc := newTestService(store, &fakeRunner{}, now)

	schedule, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	bad := models.Recurrence{Type: models.RecurrenceMonthly, TimeOfDay: "08:00", DayOfMonth: 0}
	_, err = svc.Update(context.Background(), schedule.ID, UpdateScheduleInput{Recurrence: &bad})
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	// The stored schedule is untouched.
	fresh, err := svc.GetByID(context.Background(), schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RecurrenceDaily, fresh.Recurrence.Type)
}

func TestActivateRecomputesFromNow(t *testing.T) {
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	store := newFakeScheduleStore()
	svc := newTestService(store, &fakeRunner{}, now)

	input := validInput()
	inactive := false
	input.IsActive = &inactive
	schedule, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Nil(t, schedule.NextRunAt)

	activated, err := svc.Activate(context.Background(), schedule.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
	require.NotNil(t, activated.NextRunAt)
	assert.True(t, activated.NextRunAt.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))
}

func TestActivateIsIdempotent(t *testing.T) {
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	store := newFakeScheduleStore()
	svc := newTestService(store, &fakeRunner{}, now)

	schedule, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	first, err := svc.Activate(context.Background(), schedule.ID)
	require.NoError(t, err)
	second, err := svc.Activate(context.Background(), schedule.ID)
	require.NoError(t, err)

	assert.True(t, second.IsActive)
	assert.True(t, second.NextRunAt.Equal(*first.NextRunAt))
}

func TestDeactivateLeavesNextRunInPlace(t *testing.T) {
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	store := newFakeScheduleStore()
	svc := newTestService(store, &fakeRunner{}, now)

	schedule, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	original := *schedule.NextRunAt

	deactivated, err := svc.Deactivate(context.Background(), schedule.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	fresh, err := svc.GetByID(context.Background(), schedule.ID)
	require.NoError(t, err)
	assert.False(t, fresh.IsActive)
	require.NotNil(t, fresh.NextRunAt)
	assert.True(t, fresh.NextRunAt.Equal(original))
}

func TestRunNowUsesManualTrigger(t *testing.T) {
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	store := newFakeScheduleStore()
	runner := &fakeRunner{result: &executor.Result{Status: models.RunStatusSuccess}}
	svc := newTestService(store, runner, now)

	schedule, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	result, err := svc.RunNow(context.Background(), schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusSuccess, result.Status)
	assert.Equal(t, schedule.ID, runner.lastID)
	assert.Equal(t, models.TriggerManual, runner.lastTrigger)
}

func TestRunNowUnknownSchedule(t *testing.T) {
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	runner := &fakeRunner{}
	svc := newTestService(newFakeScheduleStore(), runner, now)

	_, err := svc.RunNow(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrScheduleNotFound)
	assert.Equal(t, uuid.Nil, runner.lastID)
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newTestService(newFakeScheduleStore(), &fakeRunner{}, time.Now())
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}
