package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskRecord is the row produced by a schedule firing a task.create action.
type TaskRecord struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ScheduleID     *uuid.UUID     `gorm:"type:uuid;index" json:"schedule_id,omitempty"`
	ProjectID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;index;not null" json:"organization_id"`
	CreatedBy      uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
	Kind           string         `gorm:"size:50;not null" json:"kind"`
	Title          string         `gorm:"size:200;not null" json:"title"`
	Status         string         `gorm:"size:20;default:open" json:"status"`
	Payload        JSON           `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (TaskRecord) TableName() string {
	return "task_records"
}
