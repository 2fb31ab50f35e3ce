package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/scrutineering-core/internal/model"
)

type InspectionTypeRepository interface {
	// Найти вид инспекции по ID.
	GetByID(ctx context.Context, id string) (*model.InspectionType, error)
	// Активные виды инспекции в порядке sort_order.
	ListActive(ctx context.Context) ([]model.InspectionType, error)
	// Создать вид инспекции (админ).
	Create(ctx context.Context, t *model.InspectionType) error
	// Обновить вид инспекции (админ).
	Update(ctx context.Context, t *model.InspectionType) error
	// Включить/выключить запись на вид инспекции.
	SetActive(ctx context.Context, id string, active bool) error
}

type GormInspectionTypeRepository struct {
	db *gorm.DB
}

func NewGormInspectionTypeRepository(db *gorm.DB) *GormInspectionTypeRepository {
	return &GormInspectionTypeRepository{db: db}
}

func (r *GormInspectionTypeRepository) GetByID(ctx context.Context, id string) (*model.InspectionType, error) {
	var t model.InspectionType
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormInspectionTypeRepository) ListActive(ctx context.Context) ([]model.InspectionType, error) {
	var types []model.InspectionType
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order ASC").
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

func (r *GormInspectionTypeRepository) Create(ctx context.Context, t *model.InspectionType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *GormInspectionTypeRepository) Update(ctx context.Context, t *model.InspectionType) error {
	return r.db.WithContext(ctx).Model(&model.InspectionType{}).Where("id = ?", t.ID).Updates(t).Error
}

func (r *GormInspectionTypeRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).
		Model(&model.InspectionType{}).
		Where("id = ?", id).
		Update("active", active).
		Error
}
