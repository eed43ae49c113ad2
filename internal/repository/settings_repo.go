package repository

import (
	"context"

	"merchquote/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	GetLetterhead(ctx context.Context, key string) (*model.Letterhead, error)
	UpsertLetterhead(ctx context.Context, lh *model.Letterhead) error
	GetSetting(ctx context.Context, key string) (*model.Setting, error)
	UpsertSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context) ([]model.Setting, error)
}

type settingsRepo struct{ db *gorm.DB }

func NewSettingsRepository(db *gorm.DB) SettingsRepository { return &settingsRepo{db: db} }

func (r *settingsRepo) GetLetterhead(ctx context.Context, key string) (*model.Letterhead, error) {
	var lh model.Letterhead
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&lh).Error
	return &lh, err
}

func (r *settingsRepo) UpsertLetterhead(ctx context.Context, lh *model.Letterhead) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(lh).Error
}

func (r *settingsRepo) GetSetting(ctx context.Context, key string) (*model.Setting, error) {
	var s model.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&s).Error
	return &s, err
}

func (r *settingsRepo) UpsertSetting(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&model.Setting{Key: key, Value: value}).Error
}

func (r *settingsRepo) AllSettings(ctx context.Context) ([]model.Setting, error) {
	var all []model.Setting
	err := r.db.WithContext(ctx).Find(&all).Error
	return all, err
}
