package repository

import (
	"context"
	"time"

	"merchquote/internal/dto"
	"merchquote/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExportRepository interface {
	Create(ctx context.Context, e *model.ExportRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ExportRecord, error)
	List(ctx context.Context, operatorID uuid.UUID, filter dto.ExportFilter) ([]model.ExportRecord, int64, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID, filePath string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	// SetLastError records a diagnostic without changing status or retry
	// count (dispatch failures where the record should stay pending).
	SetLastError(ctx context.Context, id uuid.UUID, reason string) error
	// StalePending returns pending exports older than the cutoff, for the
	// retry cron to re-enqueue.
	StalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.ExportRecord, error)
}

type exportRepo struct{ db *gorm.DB }

func NewExportRepository(db *gorm.DB) ExportRepository { return &exportRepo{db: db} }

func (r *exportRepo) Create(ctx context.Context, e *model.ExportRecord) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *exportRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ExportRecord, error) {
	var e model.ExportRecord
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *exportRepo) List(ctx context.Context, operatorID uuid.UUID, filter dto.ExportFilter) ([]model.ExportRecord, int64, error) {
	var records []model.ExportRecord
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.ExportRecord{}).Where("operator_id = ?", operatorID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&records).Error
	return records, total, err
}

func (r *exportRepo) MarkRunning(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.ExportRecord{}).Where("id = ?", id).
		Update("status", model.ExportRunning).Error
}

func (r *exportRepo) MarkCompleted(ctx context.Context, id uuid.UUID, filePath string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.ExportRecord{}).Where("id = ?", id).
		Updates(map[string]any{
			"status":       model.ExportCompleted,
			"file_path":    filePath,
			"completed_at": &now,
		}).Error
}

func (r *exportRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Model(&model.ExportRecord{}).Where("id = ?", id).
		Updates(map[string]any{
			"status":      model.ExportFailed,
			"last_error":  reason,
			"retry_count": gorm.Expr("retry_count + 1"),
		}).Error
}

func (r *exportRepo) SetLastError(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Model(&model.ExportRecord{}).Where("id = ?", id).
		Update("last_error", reason).Error
}

func (r *exportRepo) StalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.ExportRecord, error) {
	var records []model.ExportRecord
	err := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", []string{model.ExportPending, model.ExportFailed}, olderThan).
		Where("retry_count <= ?", model.MaxExportRetries).
		Order("updated_at").
		Limit(limit).
		Find(&records).Error
	return records, err
}
