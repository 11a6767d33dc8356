package actions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/chronflow/chronflow/internal/domain/repositories"
)

// TaskCreator handles task.create: it inserts a task record owned by the
// schedule's project.
type TaskCreator struct {
	tasks *repositories.TaskRecordRepository
}

func NewTaskCreator(tasks *repositories.TaskRecordRepository) *TaskCreator {
	return &TaskCreator{tasks: tasks}
}

func (t *TaskCreator) Invoke(ctx context.Context, params models.JSON) error {
	projectID, err := uuidParam(params, "project_id")
	if err != nil {
		return err
	}
	orgID, err := uuidParam(params, "organization_id")
	if err != nil {
		return err
	}
	createdBy, err := uuidParam(params, "created_by")
	if err != nil {
		return err
	}

	record := &models.TaskRecord{
		ProjectID:      projectID,
		OrganizationID: orgID,
		CreatedBy:      createdBy,
		Kind:           stringParam(params, "kind", "task"),
		Title:          stringParam(params, "title", "Scheduled task"),
		Status:         models.TaskStatusOpen,
		Payload:        params,
	}
	if scheduleID, err := uuidParam(params, "schedule_id"); err == nil {
		record.ScheduleID = &scheduleID
	}

	if err := t.tasks.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to create task record: %w", err)
	}

	log.Debug().
		Str("task_id", record.ID.String()).
		Str("project_id", projectID.String()).
		Msg("Task record created")

	return nil
}

func stringParam(params models.JSON, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func uuidParam(params models.JSON, key string) (uuid.UUID, error) {
	v, ok := params[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing %s parameter", key)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s parameter: %w", key, err)
	}
	return id, nil
}
