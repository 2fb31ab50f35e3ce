package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/scrutineering-core/internal/model"
)

type ResultRepository interface {
	// Upsert итога по booking_id: на бронирование существует ровно одна
	// запись, повторная финализация (или правка админом) перезаписывает её.
	Upsert(ctx context.Context, res *model.InspectionResult) error
	// Итог бронирования.
	GetByBookingID(ctx context.Context, bookingID string) (*model.InspectionResult, error)
	// Количество записанных итогов (для сверок и тестов).
	Count(ctx context.Context) (int64, error)
}

type GormResultRepository struct {
	db *gorm.DB
}

func NewGormResultRepository(db *gorm.DB) *GormResultRepository {
	return &GormResultRepository{db: db}
}

func (r *GormResultRepository) Upsert(ctx context.Context, res *model.InspectionResult) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "booking_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "completed_at", "inspector_ids", "notes", "updated_at",
		}),
	}).Create(res).Error
}

func (r *GormResultRepository) GetByBookingID(ctx context.Context, bookingID string) (*model.InspectionResult, error) {
	var res model.InspectionResult
	if err := r.db.WithContext(ctx).First(&res, "booking_id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *GormResultRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.InspectionResult{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
