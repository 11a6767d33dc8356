package recovery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/pkg/clock"
	"github.com/chronflow/chronflow/internal/scheduler/metrics"
	"github.com/chronflow/chronflow/internal/scheduler/recurrence"
	"github.com/chronflow/chronflow/internal/scheduler/store"
)

type recoveryStore struct {
	mu        sync.Mutex
	schedules map[uuid.UUID]*models.Schedule

	pruneCutoff time.Time
	pruneResult int64
}

func newRecoveryStore(schedules ...*models.Schedule) *recoveryStore {
	rs := &recoveryStore{schedules: make(map[uuid.UUID]*models.Schedule)}
	for _, s := range schedules {
		rs.schedules[s.ID] = s
	}
	return rs
}

func (r *recoveryStore) GetDue(ctx context.Context, now time.Time, limit int) ([]*models.Schedule, error) {
	return nil, nil
}

func (r *recoveryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *recoveryStore) GetStale(ctx context.Context, cutoff time.Time) ([]*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stale []*models.Schedule
	for _, s := range r.schedules {
		if s.IsActive && s.NextRunAt != nil && s.NextRunAt.Before(cutoff) {
			copied := *s
			stale = append(stale, &copied)
		}
	}
	return stale, nil
}

func (r *recoveryStore) RecordRun(ctx context.Context, id uuid.UUID, upd store.RunUpdate) error {
	return nil
}

func (r *recoveryStore) UpdateNextRun(ctx context.Context, id uuid.UUID, nextRun *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.schedules[id]; ok {
		s.NextRunAt = nextRun
	}
	return nil
}

func (r *recoveryStore) AppendRunRecord(ctx context.Context, rec *models.RunRecord) error {
	return nil
}

func (r *recoveryStore) PruneRunRecords(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneCutoff = cutoff
	return r.pruneResult, nil
}

func staleDaily(nextRun time.Time) *models.Schedule {
	return &models.Schedule{
		ID:         uuid.New(),
		Name:       "morning standup reminder",
		Recurrence: models.Recurrence{Type: models.RecurrenceDaily, TimeOfDay: "09:00"},
		Action:     models.Action{Type: models.ActionNotificationSend},
		Timezone:   "UTC",
		IsActive:   true,
		NextRunAt:  &nextRun,
	}
}

func TestRecoverAdvancesStaleSchedules(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	threshold := 10 * time.Minute

	// Missed three days of occurrences while the process was down.
	stale := staleDaily(now.AddDate(0, 0, -3))
	// Due but within the threshold; the first tick should fire it instead.
	fresh := staleDaily(now.Add(-time.Minute))

	rs := newRecoveryStore(stale, fresh)
	collector := metrics.NewCollector()
	r := NewStaleRecovery(rs, recurrence.NewCalculator(), clock.NewFixed(now), collector, threshold)

	r.RecoverOnce(context.Background())

	recovered, err := rs.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	require.NotNil(t, recovered.NextRunAt)
	// Advanced straight to the next future occurrence, not replayed.
	assert.True(t, recovered.NextRunAt.Equal(time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC)))
	// No run was recorded for the missed occurrences.
	assert.Equal(t, 0, recovered.RunCount)

	untouched, err := rs.GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.True(t, untouched.NextRunAt.Equal(now.Add(-time.Minute)))

	assert.Equal(t, int64(1), collector.Snapshot().RecoveredTotal)
}

func TestRecoverStaleOnceGoesTerminal(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	at := now.AddDate(0, 0, -2)

	once := staleDaily(at)
	once.Recurrence = models.Recurrence{Type: models.RecurrenceOnce, At: &at}

	rs := newRecoveryStore(once)
	r := NewStaleRecovery(rs, recurrence.NewCalculator(), clock.NewFixed(now), metrics.NewCollector(), 10*time.Minute)

	r.RecoverOnce(context.Background())

	recovered, err := rs.GetByID(context.Background(), once.ID)
	require.NoError(t, err)
	assert.Nil(t, recovered.NextRunAt)
}

func TestRecoverSkipsInactive(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	dormant := staleDaily(now.AddDate(0, 0, -5))
	dormant.IsActive = false

	rs := newRecoveryStore(dormant)
	r := NewStaleRecovery(rs, recurrence.NewCalculator(), clock.NewFixed(now), metrics.NewCollector(), 10*time.Minute)

	r.RecoverOnce(context.Background())

	s, err := rs.GetByID(context.Background(), dormant.ID)
	require.NoError(t, err)
	assert.True(t, s.NextRunAt.Equal(now.AddDate(0, 0, -5)))
}

func TestCleanupUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	rs := newRecoveryStore()
	rs.pruneResult = 42
	collector := metrics.NewCollector()

	c := NewCleanup(rs, clock.NewFixed(now), collector, 30)
	c.CleanupOnce(context.Background())

	rs.mu.Lock()
	cutoff := rs.pruneCutoff
	rs.mu.Unlock()
	assert.True(t, cutoff.Equal(now.AddDate(0, 0, -30)))
	assert.Equal(t, int64(42), collector.Snapshot().PrunedTotal)
}
