package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/scrutineering-core/internal/model"
)

type ChecklistRepository interface {
	// Шаблонные пункты вида инспекции в порядке (section, order_index).
	ListTemplateItems(ctx context.Context, inspectionTypeID string) ([]model.ChecklistTemplateItem, error)
	// Все записи прогресса бронирования.
	ListEntries(ctx context.Context, bookingID string) ([]model.ChecklistProgressEntry, error)
	// Запись прогресса по паре (booking, item); используется read-back
	// верификацией после upsert.
	GetEntry(ctx context.Context, bookingID, itemID string) (*model.ChecklistProgressEntry, error)
	// Upsert по композитному ключу (booking_id, item_id): последняя запись
	// перезаписывает предыдущую целиком.
	UpsertEntry(ctx context.Context, e *model.ChecklistProgressEntry) error
	// Создать шаблонный пункт (админ).
	CreateTemplateItem(ctx context.Context, item *model.ChecklistTemplateItem) error
}

type GormChecklistRepository struct {
	db *gorm.DB
}

func NewGormChecklistRepository(db *gorm.DB) *GormChecklistRepository {
	return &GormChecklistRepository{db: db}
}

func (r *GormChecklistRepository) ListTemplateItems(
	ctx context.Context,
	inspectionTypeID string,
) ([]model.ChecklistTemplateItem, error) {
	var items []model.ChecklistTemplateItem
	err := r.db.WithContext(ctx).
		Where("inspection_type_id = ?", inspectionTypeID).
		Order("section ASC, order_index ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormChecklistRepository) ListEntries(
	ctx context.Context,
	bookingID string,
) ([]model.ChecklistProgressEntry, error) {
	var entries []model.ChecklistProgressEntry
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *GormChecklistRepository) GetEntry(
	ctx context.Context,
	bookingID, itemID string,
) (*model.ChecklistProgressEntry, error) {
	var e model.ChecklistProgressEntry
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND item_id = ?", bookingID, itemID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *GormChecklistRepository) UpsertEntry(ctx context.Context, e *model.ChecklistProgressEntry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "booking_id"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "comment", "user_id", "checked_at", "updated_at",
		}),
	}).Create(e).Error
}

func (r *GormChecklistRepository) CreateTemplateItem(
	ctx context.Context,
	item *model.ChecklistTemplateItem,
) error {
	return r.db.WithContext(ctx).Create(item).Error
}
