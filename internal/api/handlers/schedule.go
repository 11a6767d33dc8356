package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chronflow/chronflow/internal/api/dto"
	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/domain/repositories"
	"github.com/chronflow/chronflow/internal/domain/services"
	"github.com/chronflow/chronflow/internal/pkg/validator"
	"github.com/chronflow/chronflow/internal/scheduler/executor"
)

type ScheduleHandler struct {
	scheduleSvc *services.ScheduleService
}

func NewScheduleHandler(scheduleSvc *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.URL.Query().Get("project_id"))
	if err != nil {
		dto.BadRequest(w, "project_id query parameter is required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	opts := repositories.NewListOptions(page, perPage)

	schedules, total, err := h.scheduleSvc.ListByProject(r.Context(), projectID, opts)
	if err != nil {
		dto.InternalServerError(w, "failed to list schedules")
		return
	}

	response := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		response = append(response, dto.NewScheduleResponse(&schedules[i]))
	}

	totalPages := int(total) / opts.Limit
	if int(total)%opts.Limit > 0 {
		totalPages++
	}

	dto.JSONWithMeta(w, http.StatusOK, response, &dto.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}

	if err := validator.Validate(&req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	projectID, _ := uuid.Parse(req.ProjectID)
	organizationID, _ := uuid.Parse(req.OrganizationID)
	createdBy, _ := uuid.Parse(req.CreatedBy)

	recurrence, err := toRecurrence(&req.Recurrence)
	if err != nil {
		dto.BadRequest(w, err.Error())
		return
	}

	schedule, err := h.scheduleSvc.Create(r.Context(), services.CreateScheduleInput{
		ProjectID:      projectID,
		OrganizationID: organizationID,
		CreatedBy:      createdBy,
		Name:           req.Name,
		Description:    req.Description,
		Tags:           req.Tags,
		Recurrence:     recurrence,
		Action: models.Action{
			Type:   models.ActionType(req.Action.Type),
			Params: req.Action.Params,
		},
		Timezone: req.Timezone,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dto.Created(w, dto.NewScheduleResponse(schedule))
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := h.scheduleID(w, r)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.GetByID(r.Context(), scheduleID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dto.OK(w, dto.NewScheduleResponse(schedule))
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := h.scheduleID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}

	if err := validator.Validate(&req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	input := services.UpdateScheduleInput{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Timezone:    req.Timezone,
	}
	if req.Recurrence != nil {
		recurrence, err := toRecurrence(req.Recurrence)
		if err != nil {
			dto.BadRequest(w, err.Error())
			return
		}
		input.Recurrence = &recurrence
	}
	if req.Action != nil {
		input.Action = &models.Action{
			Type:   models.ActionType(req.Action.Type),
			Params: req.Action.Params,
		}
	}

	schedule, err := h.scheduleSvc.Update(r.Context(), scheduleID, input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dto.OK(w, dto.NewScheduleResponse(schedule))
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := h.scheduleID(w, r)
	if !ok {
		return
	}

	if err := h.scheduleSvc.Delete(r.Context(), scheduleID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	dto.NoContent(w)
}

func (h *ScheduleHandler) Activate(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := h.scheduleID(w, r)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.Activate(r.Context(), scheduleID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dto.OK(w, dto.NewScheduleResponse(schedule))
}

func (h *ScheduleHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := h.scheduleID(w, r)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.Deactivate(r.Context(), scheduleID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dto.OK(w, dto.NewScheduleResponse(schedule))
}

func (h *ScheduleHandler) Run(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := h.scheduleID(w, r)
	if !ok {
		return
	}

	result, err := h.scheduleSvc.RunNow(r.Context(), scheduleID)
	if err != nil {
		if errors.Is(err, executor.ErrRunInProgress) {
			dto.Conflict(w, "a run for this schedule is already in progress")
			return
		}
		h.writeServiceError(w, err)
		return
	}

	response := map[string]interface{}{
		"schedule_id": result.ScheduleID.String(),
		"status":      result.Status,
		"ran_at":      result.RanAt.Unix(),
	}
	if result.NextRunAt != nil {
		response["next_run_at"] = result.NextRunAt.Unix()
	}
	if result.Err != nil {
		response["error"] = result.Err.Error()
	}

	dto.OK(w, response)
}

func (h *ScheduleHandler) Runs(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := h.scheduleID(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	opts := repositories.NewListOptions(page, perPage)
	opts.OrderBy = "started_at"

	runs, total, err := h.scheduleSvc.ListRuns(r.Context(), scheduleID, opts)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response := make([]dto.RunResponse, 0, len(runs))
	for i := range runs {
		response = append(response, dto.NewRunResponse(&runs[i]))
	}

	totalPages := int(total) / opts.Limit
	if int(total)%opts.Limit > 0 {
		totalPages++
	}

	dto.JSONWithMeta(w, http.StatusOK, response, &dto.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

func (h *ScheduleHandler) scheduleID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "scheduleID"))
	if err != nil {
		dto.BadRequest(w, "invalid schedule ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ScheduleHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrScheduleNotFound):
		dto.NotFound(w, "Schedule")
	case errors.Is(err, services.ErrInvalidRecurrence),
		errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrInvalidTimezone):
		dto.BadRequest(w, err.Error())
	default:
		dto.InternalServerError(w, "An unexpected error occurred")
	}
}

func toRecurrence(req *dto.RecurrenceRequest) (models.Recurrence, error) {
	rec := models.Recurrence{
		Type:           models.RecurrenceType(req.Type),
		TimeOfDay:      req.TimeOfDay,
		DaysOfWeek:     req.DaysOfWeek,
		DayOfMonth:     req.DayOfMonth,
		CronExpression: req.CronExpression,
	}
	if req.At != "" {
		at, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			return models.Recurrence{}, errors.New("invalid recurrence.at, expected RFC 3339 timestamp")
		}
		rec.At = &at
	}
	return rec, nil
}
