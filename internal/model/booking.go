package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Статус бронирования инспекции.
type BookingStatus string

const (
	BookingStatusUpcoming  BookingStatus = "upcoming"
	BookingStatusOngoing   BookingStatus = "ongoing"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// bookings
//
// Инвариант: для кортежа (inspection_type_id, date, start_time, resource_index)
// может существовать не более одного неотменённого бронирования. Частичный
// уникальный индекс (WHERE status <> 'cancelled') gorm-тегами не выразить,
// он создаётся в EnsureIndexes.
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	TeamID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"team_id"`
	InspectionTypeID uuid.UUID      `gorm:"type:uuid;not null;index:idx_bookings_slot" json:"inspection_type_id"`
	Date             datatypes.Date `gorm:"type:date;not null;index:idx_bookings_slot" json:"date"`
	StartTime        string         `gorm:"type:varchar(5);not null;index:idx_bookings_slot" json:"start_time"`
	ResourceIndex    int            `gorm:"not null;index:idx_bookings_slot" json:"resource_index"`

	Status      BookingStatus `gorm:"type:varchar(32);not null;default:'upcoming';index" json:"status"`
	StartedAt   *time.Time    `gorm:"type:timestamp with time zone" json:"started_at,omitempty"`
	CompletedAt *time.Time    `gorm:"type:timestamp with time zone" json:"completed_at,omitempty"`

	InspectorID    *uuid.UUID `gorm:"type:uuid;index" json:"inspector_id,omitempty"`
	IsReinspection bool       `gorm:"not null;default:false" json:"is_reinspection"`
	Priority       int        `gorm:"not null;default:0" json:"priority"`
	Notes          string     `gorm:"type:text" json:"notes"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	// Навигационные поля (опционально, но удобно для Preload).
	Team           *Team           `gorm:"foreignKey:TeamID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"team,omitempty"`
	InspectionType *InspectionType `gorm:"foreignKey:InspectionTypeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"inspection_type,omitempty"`
	Inspector      *UserProfile    `gorm:"foreignKey:InspectorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"inspector,omitempty"`
}

// DateOf нормализует произвольный момент времени к чистой дате (UTC).
// Один и тот же день должен сериализоваться одинаково и при вставке,
// и в условиях запросов.
func DateOf(t time.Time) datatypes.Date {
	return datatypes.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
}
