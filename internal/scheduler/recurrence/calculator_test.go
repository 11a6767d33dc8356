package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronflow/chronflow/internal/domain/models"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestCalculatorOnce(t *testing.T) {
	calc := NewCalculator()
	ref := mustTime(t, "2024-01-01T10:00:00Z")

	t.Run("future instant is returned as-is", func(t *testing.T) {
		at := mustTime(t, "2024-01-05T08:30:00Z")
		next, err := calc.Next(models.Recurrence{Type: models.RecurrenceOnce, At: &at}, ref, time.UTC)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.True(t, next.Equal(at))
	})

	t.Run("instant equal to reference counts as elapsed", func(t *testing.T) {
		at := ref
		next, err := calc.Next(models.Recurrence{Type: models.RecurrenceOnce, At: &at}, ref, time.UTC)
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("past instant has no future occurrence", func(t *testing.T) {
		at := mustTime(t, "2023-12-31T23:59:00Z")
		next, err := calc.Next(models.Recurrence{Type: models.RecurrenceOnce, At: &at}, ref, time.UTC)
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("missing instant is an error", func(t *testing.T) {
		_, err := calc.Next(models.Recurrence{Type: models.RecurrenceOnce}, ref, time.UTC)
		assert.ErrorIs(t, err, models.ErrMissingOnceAt)
	})
}

func TestCalculatorDaily(t *testing.T) {
	calc := NewCalculator()
	rec := models.Recurrence{Type: models.RecurrenceDaily, TimeOfDay: "09:00"}

	t.Run("before time of day stays on the same day", func(t *testing.T) {
		ref := mustTime(t, "2024-01-01T08:00:00Z")
		next, err := calc.Next(rec, ref, time.UTC)
		require.NoError(t, err)
		assert.True(t, next.Equal(mustTime(t, "2024-01-01T09:00:00Z")))
	})

	t.Run("after time of day rolls to the next day", func(t *testing.T) {
		ref := mustTime(t, "2024-01-01T10:00:00Z")
		next, err := calc.Next(rec, ref, time.UTC)
		require.NoError(t, err)
		assert.True(t, next.Equal(mustTime(t, "2024-01-02T09:00:00Z")))
	})

	t.Run("exactly at time of day rolls forward", func(t *testing.T) {
		ref := mustTime(t, "2024-01-01T09:00:00Z")
		next, err := calc.Next(rec, ref, time.UTC)
		require.NoError(t, err)
		assert.True(t, next.Equal(mustTime(t, "2024-01-02T09:00:00Z")))
	})

	t.Run("successive runs advance one day at a time", func(t *testing.T) {
		ref := mustTime(t, "2024-01-01T10:00:00Z")
		first, err := calc.Next(rec, ref, time.UTC)
		require.NoError(t, err)
		assert.True(t, first.Equal(mustTime(t, "2024-01-02T09:00:00Z")))

		second, err := calc.Next(rec, *first, time.UTC)
		require.NoError(t, err)
		assert.True(t, second.Equal(mustTime(t, "2024-01-03T09:00:00Z")))
	})

	t.Run("time of day is interpreted in the schedule zone", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)

		// 09:00 New York is 14:00 UTC in January.
		ref := mustTime(t, "2024-01-01T12:00:00Z")
		next, err := calc.Next(rec, ref, loc)
		require.NoError(t, err)
		assert.True(t, next.Equal(mustTime(t, "2024-01-01T14:00:00Z")))
	})

	t.Run("malformed time of day is an error", func(t *testing.T) {
		bad := models.Recurrence{Type: models.RecurrenceDaily, TimeOfDay: "24:99"}
		_, err := calc.Next(bad, mustTime(t, "2024-01-01T00:00:00Z"), time.UTC)
		assert.ErrorIs(t, err, models.ErrInvalidTimeOfDay)
	})
}

func TestCalculatorWeekly(t *testing.T) {
	calc := NewCalculator()
	// Mon/Wed/Fri at 09:00. 2024-01-01 is a Monday.
	rec := models.Recurrence{
		Type:       models.RecurrenceWeekly,
		TimeOfDay:  "09:00",
		DaysOfWeek: []int{1, 3, 5},
	}

	t.Run("monday after firing time yields wednesday", func(t *testing.T) {
		ref := mustTime(t, "2024-01-01T10:00:00Z")
		next, err := calc.Next(rec, ref, time.UTC)
		require.NoError(t, err)
		assert.True(t, next.Equal(mustTime(t, "2024-01-03T09:00:00Z")))
	})

	t.Run("monday before firing time yields same monday", func(t *testing.T) {
		ref := mustTime(t, "2024-01-01T08:00:00Z")
		next, err := calc.Next(rec, ref, time.UTC)
		require.NoError(t, err)
		assert.True(t, next.Equal(mustTime(t, "2024-01-01T09:00:00Z")))
	})

	t.Run("single day wraps a full week", func(t *testing.T) {
		single := models.Recurrence{
			Type:       models.RecurrenceWeekly,
			TimeOfDay:  "09:00",
			DaysOfWeek: []int{1},
		}
		ref := mustTime(t, "2024-01-01T09:00:00Z")
		next, err := calc.Next(single, ref, time.UTC)
		require.NoError(t, err)
		assert.True(t, next.Equal(mustTime(t, "2024-01-08T09:00:00Z")))
	})

	t.Run("no days is an error", func(t *testing.T) {
		bad := models.Recurrence{Type: models.RecurrenceWeekly, TimeOfDay: "09:00"}
		_, err := calc.Next(bad, mustTime(t, "2024-01-01T00:00:00Z"), time.UTC)
		assert.ErrorIs(t, err, models.ErrEmptyDaysOfWeek)
	})
}

func TestCalculatorMonthly(t *testing.T) {
	calc := NewCalculator()

	t.Run("day later in the month stays in the month", func(t *testing.T) {
		rec := models.Recurrence{Type: models.RecurrenceMonthly, TimeOfDay: "09:00", DayOfMonth: 15}
		ref := mustTime(t, "2024-01-10T12:00:00Z")
		next, err := calc.Next(rec, ref, time.UTC)
		require.NoError(t, err)
		assert.True(t, next.Equal(mustTime(t, "2024-01-15T09:00:00Z")))
	})

	t.Run("day already passed rolls to next month", func(t *testing.T) {
		rec := models.Recurrence{Type: models.RecurrenceMonthly, TimeOfDay: "09:00", DayOfMonth: 5}
		ref := mustTime(t, "2024-01-10T12:00:00Z")
		next, err := calc.Next(rec, ref, time.UTC)
		require.NoError(t, err)
		assert.True(t, next.Equal(mustTime(t, "2024-02-05T09:00:00Z")))
	})

	t.Run("day 31 clamps to the end of shorter months", func(t *testing.T) {
		rec := models.Recurrence{Type: models.RecurrenceMonthly, TimeOfDay: "09:00", DayOfMonth: 31}
		ref := mustTime(t, "2024-03-31T12:00:00Z")
		next, err := calc.Next(rec, ref, time.UTC)
		require.NoError(t, err)
		assert.True(t, next.Equal(mustTime(t, "2024-04-30T09:00:00Z")))
	})

	t.Run("day 31 clamps to leap february", func(t *testing.T) {
		rec := models.Recurrence{Type: models.RecurrenceMonthly, TimeOfDay: "09:00", DayOfMonth: 31}
		ref := mustTime(t, "2024-01-31T12:00:00Z")
		next, err := calc.Next(rec, ref, time.UTC)
		require.NoError(t, err)
		assert.True(t, next.Equal(mustTime(t, "2024-02-29T09:00:00Z")))
	})

	t.Run("day of month out of range is an error", func(t *testing.T) {
		rec := models.Recurrence{Type: models.RecurrenceMonthly, TimeOfDay: "09:00", DayOfMonth: 32}
		_, err := calc.Next(rec, mustTime(t, "2024-01-01T00:00:00Z"), time.UTC)
		assert.ErrorIs(t, err, models.ErrDayOfMonthRange)
	})
}

func TestCalculatorCustom(t *testing.T) {
	calc := NewCalculator()

	t.Run("five field expression advances past the reference", func(t *testing.T) {
		rec := models.Recurrence{Type: models.RecurrenceCustom, CronExpression: "0 9 * * *"}
		ref := mustTime(t, "2024-01-01T10:00:00Z")
		next, err := calc.Next(rec, ref, time.UTC)
		require.NoError(t, err)
		assert.True(t, next.Equal(mustTime(t, "2024-01-02T09:00:00Z")))
	})

	t.Run("february 29 lands on the next leap year", func(t *testing.T) {
		rec := models.Recurrence{Type: models.RecurrenceCustom, CronExpression: "0 0 29 2 *"}
		ref := mustTime(t, "2024-03-01T00:00:00Z")
		next, err := calc.Next(rec, ref, time.UTC)
		require.NoError(t, err)
		assert.True(t, next.Equal(mustTime(t, "2028-02-29T00:00:00Z")))
	})

	t.Run("expression that never matches yields no occurrence", func(t *testing.T) {
		rec := models.Recurrence{Type: models.RecurrenceCustom, CronExpression: "0 0 30 2 *"}
		next, err := calc.Next(rec, mustTime(t, "2024-01-01T00:00:00Z"), time.UTC)
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("malformed expression is an error", func(t *testing.T) {
		rec := models.Recurrence{Type: models.RecurrenceCustom, CronExpression: "not a cron"}
		_, err := calc.Next(rec, mustTime(t, "2024-01-01T00:00:00Z"), time.UTC)
		assert.ErrorIs(t, err, models.ErrInvalidCron)
	})
}

func TestCalculatorUnknownType(t *testing.T) {
	calc := NewCalculator()
	_, err := calc.Next(models.Recurrence{Type: "hourly"}, time.Now(), time.UTC)
	assert.ErrorIs(t, err, models.ErrUnknownRecurrence)
}
