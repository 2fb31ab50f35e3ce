package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Статус итогового вердикта инспекции.
type ResultStatus string

const (
	ResultStatusPassed      ResultStatus = "passed"
	ResultStatusFailed      ResultStatus = "failed"
	ResultStatusProvisional ResultStatus = "provisional"
	ResultStatusFinal       ResultStatus = "final"
)

// inspection_results — один итог на бронирование.
// Создаётся при финализации; администратор может позже исправить запись,
// upsert по booking_id.
type InspectionResult struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	BookingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"booking_id"`

	Status      ResultStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	CompletedAt *time.Time   `gorm:"type:timestamp with time zone" json:"completed_at,omitempty"`

	// Список ID инспекторов, участвовавших в сессии.
	InspectorIDs datatypes.JSON `gorm:"type:jsonb" json:"inspector_ids,omitempty"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}
