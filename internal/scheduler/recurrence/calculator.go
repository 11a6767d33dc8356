package recurrence

import (
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/chronflow/chronflow/internal/domain/models"
)

// Calculator computes the next firing instant for a recurrence rule. It is
// pure: no I/O, no reads of the wall clock; callers supply the reference
// instant and the schedule's zone.
type Calculator struct {
	parser cronlib.Parser
}

func NewCalculator() *Calculator {
	return &Calculator{
		parser: cronlib.NewParser(
			cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow,
		),
	}
}

// Next returns the earliest instant strictly after ref at which the rule
// fires, or nil when no future occurrence exists. An occurrence exactly at
// ref counts as already elapsed, so the result always moves forward.
func (c *Calculator) Next(rec models.Recurrence, ref time.Time, loc *time.Location) (*time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	switch rec.Type {
	case models.RecurrenceOnce:
		if rec.At == nil {
			return nil, models.ErrMissingOnceAt
		}
		if rec.At.After(ref) {
			at := *rec.At
			return &at, nil
		}
		return nil, nil

	case models.RecurrenceDaily:
		hour, minute, err := models.ParseTimeOfDay(rec.TimeOfDay)
		if err != nil {
			return nil, err
		}
		local := ref.In(loc)
		next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
		if !next.After(ref) {
			next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
		}
		return &next, nil

	case models.RecurrenceWeekly:
		hour, minute, err := models.ParseTimeOfDay(rec.TimeOfDay)
		if err != nil {
			return nil, err
		}
		if len(rec.DaysOfWeek) == 0 {
			return nil, models.ErrEmptyDaysOfWeek
		}
		days := make(map[int]bool, len(rec.DaysOfWeek))
		for _, d := range rec.DaysOfWeek {
			days[d] = true
		}
		local := ref.In(loc)
		for offset := 0; offset <= 7; offset++ {
			cand := time.Date(local.Year(), local.Month(), local.Day()+offset, hour, minute, 0, 0, loc)
			if days[int(cand.Weekday())] && cand.After(ref) {
				return &cand, nil
			}
		}
		return nil, nil

	case models.RecurrenceMonthly:
		hour, minute, err := models.ParseTimeOfDay(rec.TimeOfDay)
		if err != nil {
			return nil, err
		}
		if rec.DayOfMonth < 1 || rec.DayOfMonth > 31 {
			return nil, models.ErrDayOfMonthRange
		}
		local := ref.In(loc)
		next := monthlyOccurrence(local.Year(), local.Month(), rec.DayOfMonth, hour, minute, loc)
		if !next.After(ref) {
			first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
			next = monthlyOccurrence(first.Year(), first.Month(), rec.DayOfMonth, hour, minute, loc)
		}
		return &next, nil

	case models.RecurrenceCustom:
		schedule, err := c.parser.Parse(rec.CronExpression)
		if err != nil {
			return nil, models.ErrInvalidCron
		}
		// robfig bounds its forward search; contradictory field combinations
		// (Feb 30 and the like) come back as the zero time.
		next := schedule.Next(ref.In(loc))
		if next.IsZero() {
			return nil, nil
		}
		return &next, nil

	default:
		return nil, models.ErrUnknownRecurrence
	}
}

// monthlyOccurrence places day-of-month in the given month, clamped to the
// month's last day (31 in February yields Feb 28/29).
func monthlyOccurrence(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

// Validate reports whether the rule could ever produce an occurrence.
// Schedules are rejected at write time on error, so the store never holds a
// rule the calculator cannot evaluate.
func (c *Calculator) Validate(rec models.Recurrence) error {
	return rec.Validate()
}
