package repositories

import (
	"context"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRecordRepository struct {
	*BaseRepository[models.TaskRecord]
}

func NewTaskRecordRepository(db *gorm.DB) *TaskRecordRepository {
	return &TaskRecordRepository{
		BaseRepository: NewBaseRepository[models.TaskRecord](db),
	}
}

func (r *TaskRecordRepository) FindByScheduleID(ctx context.Context, scheduleID uuid.UUID, opts *ListOptions) ([]models.TaskRecord, int64, error) {
	var tasks []models.TaskRecord
	var total int64

	query := r.DB().WithContext(ctx).Where("schedule_id = ?", scheduleID)
	query.Model(&models.TaskRecord{}).Count(&total)

	if opts != nil {
		query = query.Offset(opts.Offset).Limit(opts.Limit).Order(opts.OrderBy + " " + opts.Order)
	}

	err := query.Find(&tasks).Error
	return tasks, total, err
}

func (r *TaskRecordRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID, opts *ListOptions) ([]models.TaskRecord, int64, error) {
	var tasks []models.TaskRecord
	var total int64

	query := r.DB().WithContext(ctx).Where("project_id = ?", projectID)
	query.Model(&models.TaskRecord{}).Count(&total)

	if opts != nil {
		query = query.Offset(opts.Offset).Limit(opts.Limit).Order(opts.OrderBy + " " + opts.Order)
	}

	err := query.Find(&tasks).Error
	return tasks, total, err
}
