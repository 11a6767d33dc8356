package dto

import (
	"github.com/chronflow/chronflow/internal/domain/models"
)

// Recurrence as it appears on the wire. Fields beyond Type are
// variant-specific; models.Recurrence.Validate decides which combination is
// legal.
type RecurrenceRequest struct {
	Type           string `json:"type" validate:"required,oneof=once daily weekly monthly custom"`
	At             string `json:"at,omitempty"`
	TimeOfDay      string `json:"time_of_day,omitempty" validate:"omitempty,timeofday"`
	DaysOfWeek     []int  `json:"days_of_week,omitempty" validate:"omitempty,dive,min=0,max=6"`
	DayOfMonth     int    `json:"day_of_month,omitempty" validate:"omitempty,min=1,max=31"`
	CronExpression string `json:"cron_expression,omitempty" validate:"omitempty,cron"`
}

type ActionRequest struct {
	Type   string      `json:"type" validate:"required,oneof=task.create notification.send email.send"`
	Params models.JSON `json:"params,omitempty"`
}

type CreateScheduleRequest struct {
	ProjectID      string            `json:"project_id" validate:"required,uuid"`
	OrganizationID string            `json:"organization_id" validate:"required,uuid"`
	CreatedBy      string            `json:"created_by" validate:"required,uuid"`
	Name           string            `json:"name" validate:"required,min=1,max=100"`
	Description    *string           `json:"description,omitempty"`
	Tags           []string          `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	Recurrence     RecurrenceRequest `json:"recurrence" validate:"required"`
	Action         ActionRequest     `json:"action" validate:"required"`
	Timezone       string            `json:"timezone,omitempty" validate:"omitempty,timezone"`
	IsActive       *bool             `json:"is_active,omitempty"`
}

type UpdateScheduleRequest struct {
	Name        *string            `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string            `json:"description,omitempty"`
	Tags        []string           `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	Recurrence  *RecurrenceRequest `json:"recurrence,omitempty"`
	Action      *ActionRequest     `json:"action,omitempty"`
	Timezone    *string            `json:"timezone,omitempty" validate:"omitempty,timezone"`
}
