package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/scrutineering-core/internal/model"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.UserProfile, error)
	// Синхронизация профиля из identity-провайдера: вставка или
	// обновление по внешнему ID.
	Upsert(ctx context.Context, profile *model.UserProfile) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*model.UserProfile, error) {
	var u model.UserProfile
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) Upsert(ctx context.Context, profile *model.UserProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name", "role", "team_id", "updated_at",
		}),
	}).Create(profile).Error
}
