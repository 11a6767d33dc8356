package models

import (
	"time"

	"github.com/google/uuid"
)

// RunRecord is the per-firing history row. The schedule's own
// last_run_at/last_run_status columns stay the authoritative summary; rows
// here exist for inspection and are pruned by the retention cleanup.
type RunRecord struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ScheduleID uuid.UUID  `gorm:"type:uuid;index;not null" json:"schedule_id"`
	Trigger    string     `gorm:"size:20;not null" json:"trigger"`
	ActionType string     `gorm:"size:50;not null" json:"action_type"`
	Status     string     `gorm:"size:20;not null" json:"status"`
	Error      *string    `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time  `gorm:"index;not null" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (RunRecord) TableName() string {
	return "run_records"
}
