package repositories

import (
	"context"
	"time"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleRepository struct {
	*BaseRepository[models.Schedule]
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{
		BaseRepository: NewBaseRepository[models.Schedule](db),
	}
}

func (r *ScheduleRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID, opts *ListOptions) ([]models.Schedule, int64, error) {
	var schedules []models.Schedule
	var total int64

	query := r.DB().WithContext(ctx).Where("project_id = ?", projectID)
	query.Model(&models.Schedule{}).Count(&total)

	if opts != nil {
		query = query.Offset(opts.Offset).Limit(opts.Limit).Order(opts.OrderBy + " " + opts.Order)
	}

	err := query.Find(&schedules).Error
	return schedules, total, err
}

func (r *ScheduleRepository) FindByOrganizationID(ctx context.Context, orgID uuid.UUID, opts *ListOptions) ([]models.Schedule, int64, error) {
	var schedules []models.Schedule
	var total int64

	query := r.DB().WithContext(ctx).Where("organization_id = ?", orgID)
	query.Model(&models.Schedule{}).Count(&total)

	if opts != nil {
		query = query.Offset(opts.Offset).Limit(opts.Limit).Order(opts.OrderBy + " " + opts.Order)
	}

	err := query.Find(&schedules).Error
	return schedules, total, err
}

func (r *ScheduleRepository) FindActive(ctx context.Context) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := r.DB().WithContext(ctx).
		Where("is_active = ?", true).
		Find(&schedules).Error
	return schedules, err
}

func (r *ScheduleRepository) SetActive(ctx context.Context, scheduleID uuid.UUID, isActive bool) error {
	return r.DB().WithContext(ctx).Model(&models.Schedule{}).
		Where("id = ?", scheduleID).
		Update("is_active", isActive).Error
}

// SetNextRun writes the computed occurrence; a nil value marks the schedule
// as having no future occurrence.
func (r *ScheduleRepository) SetNextRun(ctx context.Context, scheduleID uuid.UUID, nextRunAt *time.Time) error {
	return r.DB().WithContext(ctx).Model(&models.Schedule{}).
		Where("id = ?", scheduleID).
		Update("next_run_at", nextRunAt).Error
}

func (r *ScheduleRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB().WithContext(ctx).Model(&models.Schedule{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}
