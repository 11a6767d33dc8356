package repositories

import (
	"context"

	"github.com/chronflow/chronflow/internal/domain/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RunRecordRepository struct {
	*BaseRepository[models.RunRecord]
}

func NewRunRecordRepository(db *gorm.DB) *RunRecordRepository {
	return &RunRecordRepository{
		BaseRepository: NewBaseRepository[models.RunRecord](db),
	}
}

func (r *RunRecordRepository) FindByScheduleID(ctx context.Context, scheduleID uuid.UUID, opts *ListOptions) ([]models.RunRecord, int64, error) {
	var runs []models.RunRecord
	var total int64

	query := r.DB().WithContext(ctx).Where("schedule_id = ?", scheduleID)
	query.Model(&models.RunRecord{}).Count(&total)

	orderBy, order := "started_at", "desc"
	if opts != nil {
		if opts.OrderBy != "" {
			orderBy, order = opts.OrderBy, opts.Order
		}
		query = query.Offset(opts.Offset).Limit(opts.Limit)
	}
	query = query.Order(orderBy + " " + order)

	err := query.Find(&runs).Error
	return runs, total, err
}

func (r *RunRecordRepository) CountFailures(ctx context.Context, scheduleID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB().WithContext(ctx).Model(&models.RunRecord{}).
		Where("schedule_id = ? AND status = ?", scheduleID, models.RunStatusFailure).
		Count(&count).Error
	return count, err
}
