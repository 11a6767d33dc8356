package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chronflow/chronflow/internal/domain/models"
)

type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetDue(ctx context.Context, now time.Time, limit int) ([]*models.Schedule, error) {
	var schedules []*models.Schedule

	err := s.db.WithContext(ctx).
		Where("is_active = ? AND next_run_at IS NOT NULL AND next_run_at <= ?", true, now).
		Order("next_run_at ASC").
		Limit(limit).
		Find(&schedules).Error

	if err != nil {
		return nil, err
	}

	return schedules, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	var schedule models.Schedule
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

func (s *PostgresStore) GetStale(ctx context.Context, cutoff time.Time) ([]*models.Schedule, error) {
	var schedules []*models.Schedule

	err := s.db.WithContext(ctx).
		Where("is_active = ? AND next_run_at IS NOT NULL AND next_run_at < ? AND (last_run_at IS NULL OR last_run_at < next_run_at)", true, cutoff).
		Find(&schedules).Error

	if err != nil {
		return nil, err
	}

	return schedules, nil
}

func (s *PostgresStore) RecordRun(ctx context.Context, id uuid.UUID, upd RunUpdate) error {
	return s.db.WithContext(ctx).
		Model(&models.Schedule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_run_at":     upd.LastRunAt,
			"last_run_status": upd.Status,
			"last_run_error":  upd.Error,
			"next_run_at":     upd.NextRunAt,
			"run_count":       gorm.Expr("run_count + 1"),
		}).Error
}

func (s *PostgresStore) UpdateNextRun(ctx context.Context, id uuid.UUID, nextRun *time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.Schedule{}).
		Where("id = ?", id).
		Update("next_run_at", nextRun).Error
}

func (s *PostgresStore) AppendRunRecord(ctx context.Context, rec *models.RunRecord) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *PostgresStore) PruneRunRecords(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("started_at < ?", cutoff).
		Delete(&models.RunRecord{})
	return res.RowsAffected, res.Error
}
