package dto

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/pkg/validator"
)

// Error codes for consistent API responses
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
	ErrCodeTooManyRequest = "TOO_MANY_REQUESTS"
	ErrCodeServiceUnavail = "SERVICE_UNAVAILABLE"
)

type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *ErrorData  `json:"error,omitempty"`
	Meta      *Meta       `json:"meta,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type ErrorData struct {
	Code    string                      `json:"code"`
	Message string                      `json:"message"`
	Details []validator.ValidationError `json:"details,omitempty"`
}

type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func getRequestID(w http.ResponseWriter) string {
	return w.Header().Get("X-Request-ID")
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := Response{
		Success:   status >= 200 && status < 300,
		Data:      data,
		RequestID: getRequestID(w),
		Timestamp: time.Now().Unix(),
	}

	_ = json.NewEncoder(w).Encode(response)
}

func JSONWithMeta(w http.ResponseWriter, status int, data interface{}, meta *Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := Response{
		Success:   status >= 200 && status < 300,
		Data:      data,
		Meta:      meta,
		RequestID: getRequestID(w),
		Timestamp: time.Now().Unix(),
	}

	_ = json.NewEncoder(w).Encode(response)
}

func errorWithCode(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := Response{
		Success:   false,
		RequestID: getRequestID(w),
		Timestamp: time.Now().Unix(),
		Error: &ErrorData{
			Code:    code,
			Message: message,
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}

func ValidationErrorResponse(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	response := Response{
		Success:   false,
		RequestID: getRequestID(w),
		Timestamp: time.Now().Unix(),
		Error: &ErrorData{
			Code:    ErrCodeValidation,
			Message: "Validation failed",
			Details: validator.FormatErrors(err),
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}

func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

func Accepted(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusAccepted, data)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func BadRequest(w http.ResponseWriter, message string) {
	errorWithCode(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func NotFound(w http.ResponseWriter, resource string) {
	errorWithCode(w, http.StatusNotFound, ErrCodeNotFound, resource+" not found")
}

func Conflict(w http.ResponseWriter, message string) {
	errorWithCode(w, http.StatusConflict, ErrCodeConflict, message)
}

func TooManyRequests(w http.ResponseWriter, message string) {
	errorWithCode(w, http.StatusTooManyRequests, ErrCodeTooManyRequest, message)
}

func InternalServerError(w http.ResponseWriter, message string) {
	errorWithCode(w, http.StatusInternalServerError, ErrCodeInternalServer, message)
}

func ServiceUnavailable(w http.ResponseWriter, message string) {
	errorWithCode(w, http.StatusServiceUnavailable, ErrCodeServiceUnavail, message)
}

// Schedule responses

type RecurrenceResponse struct {
	Type           string `json:"type"`
	At             *int64 `json:"at,omitempty"`
	TimeOfDay      string `json:"time_of_day,omitempty"`
	DaysOfWeek     []int  `json:"days_of_week,omitempty"`
	DayOfMonth     int    `json:"day_of_month,omitempty"`
	CronExpression string `json:"cron_expression,omitempty"`
}

type ActionResponse struct {
	Type   string      `json:"type"`
	Params models.JSON `json:"params,omitempty"`
}

type ScheduleResponse struct {
	ID             string             `json:"id"`
	ProjectID      string             `json:"project_id"`
	OrganizationID string             `json:"organization_id"`
	CreatedBy      string             `json:"created_by"`
	Name           string             `json:"name"`
	Description    *string            `json:"description,omitempty"`
	Tags           []string           `json:"tags,omitempty"`
	Recurrence     RecurrenceResponse `json:"recurrence"`
	Action         ActionResponse     `json:"action"`
	Timezone       string             `json:"timezone"`
	IsActive       bool               `json:"is_active"`
	NextRunAt      *int64             `json:"next_run_at,omitempty"`
	LastRunAt      *int64             `json:"last_run_at,omitempty"`
	LastRunStatus  *string            `json:"last_run_status,omitempty"`
	LastRunError   *string            `json:"last_run_error,omitempty"`
	RunCount       int                `json:"run_count"`
	CreatedAt      int64              `json:"created_at"`
	UpdatedAt      int64              `json:"updated_at"`
}

type RunResponse struct {
	ID         string  `json:"id"`
	ScheduleID string  `json:"schedule_id"`
	Trigger    string  `json:"trigger"`
	ActionType string  `json:"action_type"`
	Status     string  `json:"status"`
	Error      *string `json:"error,omitempty"`
	StartedAt  int64   `json:"started_at"`
	FinishedAt *int64  `json:"finished_at,omitempty"`
}

func NewScheduleResponse(s *models.Schedule) ScheduleResponse {
	resp := ScheduleResponse{
		ID:             s.ID.String(),
		ProjectID:      s.ProjectID.String(),
		OrganizationID: s.OrganizationID.String(),
		CreatedBy:      s.CreatedBy.String(),
		Name:           s.Name,
		Description:    s.Description,
		Tags:           s.Tags,
		Timezone:       s.Timezone,
		IsActive:       s.IsActive,
		LastRunStatus:  s.LastRunStatus,
		LastRunError:   s.LastRunError,
		RunCount:       s.RunCount,
		CreatedAt:      s.CreatedAt.Unix(),
		UpdatedAt:      s.UpdatedAt.Unix(),
		Recurrence: RecurrenceResponse{
			Type:           string(s.Recurrence.Type),
			TimeOfDay:      s.Recurrence.TimeOfDay,
			DaysOfWeek:     s.Recurrence.DaysOfWeek,
			DayOfMonth:     s.Recurrence.DayOfMonth,
			CronExpression: s.Recurrence.CronExpression,
		},
		Action: ActionResponse{
			Type:   string(s.Action.Type),
			Params: s.Action.Params,
		},
	}
	if s.Recurrence.At != nil {
		ts := s.Recurrence.At.Unix()
		resp.Recurrence.At = &ts
	}
	if s.NextRunAt != nil {
		ts := s.NextRunAt.Unix()
		resp.NextRunAt = &ts
	}
	if s.LastRunAt != nil {
		ts := s.LastRunAt.Unix()
		resp.LastRunAt = &ts
	}
	return resp
}

func NewRunResponse(r *models.RunRecord) RunResponse {
	resp := RunResponse{
		ID:         r.ID.String(),
		ScheduleID: r.ScheduleID.String(),
		Trigger:    r.Trigger,
		ActionType: r.ActionType,
		Status:     r.Status,
		Error:      r.Error,
		StartedAt:  r.StartedAt.Unix(),
	}
	if r.FinishedAt != nil {
		ts := r.FinishedAt.Unix()
		resp.FinishedAt = &ts
	}
	return resp
}
