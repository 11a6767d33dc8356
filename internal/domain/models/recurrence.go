package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

type RecurrenceType string

const (
	RecurrenceOnce    RecurrenceType = "once"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceCustom  RecurrenceType = "custom"
)

// cronParser accepts the standard 5-field grammar only
// (minute, hour, day-of-month, month, day-of-week).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

var (
	ErrUnknownRecurrence = errors.New("unknown recurrence type")
	ErrEmptyDaysOfWeek   = errors.New("weekly recurrence requires at least one day of week")
	ErrDayOfMonthRange   = errors.New("day of month must be between 1 and 31")
	ErrInvalidCron       = errors.New("invalid cron expression")
	ErrInvalidTimeOfDay  = errors.New("time of day must be in HH:MM format")
	ErrMissingOnceAt     = errors.New("once recurrence requires a firing instant")
)

// Recurrence is the rule governing when a schedule becomes due. It is a
// closed variant discriminated by Type; only the fields belonging to the
// active variant are populated. Stored as a JSONB column.
type Recurrence struct {
	Type RecurrenceType `json:"type"`

	// Once
	At *time.Time `json:"at,omitempty"`

	// Daily, Weekly, Monthly: local time of day as "HH:MM".
	TimeOfDay string `json:"time_of_day,omitempty"`

	// Weekly: subset of 0 (Sunday) .. 6 (Saturday), non-empty.
	DaysOfWeek []int `json:"days_of_week,omitempty"`

	// Monthly: 1..31, clamped to the last day of shorter months.
	DayOfMonth int `json:"day_of_month,omitempty"`

	// Custom
	CronExpression string `json:"cron_expression,omitempty"`
}

func (r Recurrence) Validate() error {
	switch r.Type {
	case RecurrenceOnce:
		if r.At == nil {
			return ErrMissingOnceAt
		}
	case RecurrenceDaily:
		if _, _, err := ParseTimeOfDay(r.TimeOfDay); err != nil {
			return err
		}
	case RecurrenceWeekly:
		if _, _, err := ParseTimeOfDay(r.TimeOfDay); err != nil {
			return err
		}
		if len(r.DaysOfWeek) == 0 {
			return ErrEmptyDaysOfWeek
		}
		for _, d := range r.DaysOfWeek {
			if d < 0 || d > 6 {
				return fmt.Errorf("day of week %d out of range 0..6", d)
			}
		}
	case RecurrenceMonthly:
		if _, _, err := ParseTimeOfDay(r.TimeOfDay); err != nil {
			return err
		}
		if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
			return ErrDayOfMonthRange
		}
	case RecurrenceCustom:
		if _, err := cronParser.Parse(r.CronExpression); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCron, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRecurrence, r.Type)
	}
	return nil
}

// ParseTimeOfDay parses "HH:MM" into hour and minute.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	t, parseErr := time.Parse("15:04", s)
	if parseErr != nil {
		return 0, 0, ErrInvalidTimeOfDay
	}
	return t.Hour(), t.Minute(), nil
}

func (r Recurrence) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *Recurrence) Scan(value interface{}) error {
	if value == nil {
		return errors.New("recurrence column cannot be null")
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan Recurrence: not a byte slice")
	}
	return json.Unmarshal(bytes, r)
}
