package model

import (
	"time"

	"github.com/google/uuid"
)

// Тип события аудита.
type EventType string

const (
	EventTypeBookingReserved  EventType = "booking_reserved"
	EventTypeStatusChanged    EventType = "status_changed"
	EventTypeChecklistUpdated EventType = "checklist_updated"
	EventTypeResultRecorded   EventType = "result_recorded"
)

// events — события аудита
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	EventType EventType `gorm:"type:varchar(64);not null;index" json:"event_type"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`

	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	BookingID *uuid.UUID `gorm:"type:uuid;index" json:"booking_id,omitempty"`

	Details string `gorm:"type:text" json:"details"`

	// Навигационные поля
	User    *UserProfile `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Booking *Booking     `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}
