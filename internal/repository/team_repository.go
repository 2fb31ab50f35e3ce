package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/scrutineering-core/internal/model"
)

type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*model.Team, error)
	Create(ctx context.Context, team *model.Team) error
	List(ctx context.Context, limit, offset int) ([]model.Team, int64, error)
}

type GormTeamRepository struct {
	db *gorm.DB
}

func NewGormTeamRepository(db *gorm.DB) *GormTeamRepository {
	return &GormTeamRepository{db: db}
}

func (r *GormTeamRepository) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var t model.Team
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormTeamRepository) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *GormTeamRepository) List(ctx context.Context, limit, offset int) ([]model.Team, int64, error) {
	var (
		teams []model.Team
		total int64
	)

	q := r.db.WithContext(ctx).Model(&model.Team{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("name ASC").Find(&teams).Error; err != nil {
		return nil, 0, err
	}

	return teams, total, nil
}
