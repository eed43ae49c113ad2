package repository

import (
	"context"
	"fmt"
	"time"

	"merchquote/internal/dto"
	"merchquote/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuoteRepository interface {
	Create(ctx context.Context, tx *gorm.DB, q *model.QuoteRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.QuoteRecord, error)
	List(ctx context.Context, filter dto.SavedQuoteFilter) ([]model.QuoteRecord, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	NextNumber(ctx context.Context, tx *gorm.DB) (string, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type quoteRepo struct{ db *gorm.DB }

func NewQuoteRepository(db *gorm.DB) QuoteRepository { return &quoteRepo{db: db} }

func (r *quoteRepo) DB() *gorm.DB { return r.db }

func (r *quoteRepo) Create(ctx context.Context, tx *gorm.DB, q *model.QuoteRecord) error {
	return tx.WithContext(ctx).Create(q).Error
}

func (r *quoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.QuoteRecord, error) {
	var q model.QuoteRecord
	err := r.db.WithContext(ctx).Preload("Lines.Addons").Preload("Lines").First(&q, id).Error
	return &q, err
}

func (r *quoteRepo) List(ctx context.Context, filter dto.SavedQuoteFilter) ([]model.QuoteRecord, int64, error) {
	var quotes []model.QuoteRecord
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.QuoteRecord{})

	if filter.Customer != "" {
		q = q.Where("customer ILIKE ?", "%"+filter.Customer+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Lines.Addons").Preload("Lines").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&quotes).Error

	return quotes, total, err
}

func (r *quoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.QuoteRecord{}, id).Error
}

// NextNumber produces the printable quote number, e.g. "Q20260901-0042".
// Uses a PostgreSQL sequence so concurrent saves never collide.
func (r *quoteRepo) NextNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	var n int
	if err := tx.WithContext(ctx).Raw("SELECT nextval('quote_number_seq')").Scan(&n).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("Q%s-%04d", time.Now().Format("20060102"), n), nil
}
