package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Schedule struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;index;not null" json:"organization_id"`
	CreatedBy      uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
	Name           string         `gorm:"size:100;not null" json:"name"`
	Description    *string        `gorm:"type:text" json:"description,omitempty"`
	Tags           StringArray    `gorm:"type:text[]" json:"tags,omitempty"`
	Recurrence     Recurrence     `gorm:"type:jsonb;not null" json:"recurrence"`
	Action         Action         `gorm:"type:jsonb;not null" json:"action"`
	Timezone       string         `gorm:"size:50;default:UTC" json:"timezone"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	NextRunAt      *time.Time     `gorm:"index" json:"next_run_at,omitempty"`
	LastRunAt      *time.Time     `json:"last_run_at,omitempty"`
	LastRunStatus  *string        `gorm:"size:20" json:"last_run_status,omitempty"`
	LastRunError   *string        `gorm:"type:text" json:"last_run_error,omitempty"`
	RunCount       int            `gorm:"default:0" json:"run_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Schedule) TableName() string {
	return "schedules"
}

// Location resolves the schedule's timezone, falling back to UTC when the
// name is empty or unknown. All next-run arithmetic for this schedule uses
// this single zone.
func (s *Schedule) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OwnerContext returns the owning identifiers merged into every action
// invocation. Opaque to the scheduler itself.
func (s *Schedule) OwnerContext() JSON {
	return JSON{
		"schedule_id":     s.ID.String(),
		"project_id":      s.ProjectID.String(),
		"organization_id": s.OrganizationID.String(),
		"created_by":      s.CreatedBy.String(),
	}
}
