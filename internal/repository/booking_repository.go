package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/scrutineering-core/internal/model"
	"github.com/Leganyst/scrutineering-core/internal/scrutineering"
)

type BookingRepository interface {
	// Атомарная вставка бронирования, если слот свободен.
	// Возвращает scrutineering.ErrConflict, когда кортеж
	// (тип, дата, время, дорожка) уже занят неотменённой записью.
	CreateIfSlotFree(ctx context.Context, booking *model.Booking) error
	// Получить бронирование по ID.
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// Обновить статус и временные метки перехода.
	// started_at пишется через COALESCE: повторный переход в ongoing
	// не перетирает метку первого.
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus, startedAt, completedAt *time.Time) error
	// Бронирования вида инспекции за день.
	ListByTypeAndDate(ctx context.Context, inspectionTypeID string, date datatypes.Date, limit, offset int) ([]model.Booking, int64, error)
	// Бронирования команды.
	ListByTeam(ctx context.Context, teamID string, limit, offset int) ([]model.Booking, int64, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) CreateIfSlotFree(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.Booking{}).
			Where("inspection_type_id = ?", booking.InspectionTypeID).
			Where("date = ?", booking.Date).
			Where("start_time = ?", booking.StartTime).
			Where("resource_index = ?", booking.ResourceIndex).
			Where("status <> ?", model.BookingStatusCancelled).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return scrutineering.ErrConflict
		}
		if err := tx.Create(booking).Error; err != nil {
			// Проигрыш гонки двух одновременных вставок ловит частичный
			// уникальный индекс uniq_bookings_active_slot.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return scrutineering.ErrConflict
			}
			return err
		}
		return nil
	})
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) UpdateStatus(
	ctx context.Context,
	id string,
	status model.BookingStatus,
	startedAt, completedAt *time.Time,
) error {
	update := map[string]any{
		"status": status,
	}
	if startedAt != nil {
		update["started_at"] = gorm.Expr("COALESCE(started_at, ?)", *startedAt)
	}
	if completedAt != nil {
		update["completed_at"] = *completedAt
	}
	return r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", id).
		Updates(update).
		Error
}

func (r *GormBookingRepository) ListByTypeAndDate(
	ctx context.Context,
	inspectionTypeID string,
	date datatypes.Date,
	limit, offset int,
) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("inspection_type_id = ?", inspectionTypeID).
		Where("date = ?", date)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("start_time ASC, resource_index ASC").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *GormBookingRepository) ListByTeam(
	ctx context.Context,
	teamID string,
	limit, offset int,
) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("team_id = ?", teamID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("date DESC, start_time DESC").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}
