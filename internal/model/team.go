package model

import (
	"time"

	"github.com/google/uuid"
)

// Статус команды в соревновании.
type TeamStatus string

const (
	TeamStatusActive       TeamStatus = "active"
	TeamStatusInactive     TeamStatus = "inactive"
	TeamStatusDisqualified TeamStatus = "disqualified"
)

// teams
type Team struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	CarNumber string `gorm:"type:varchar(16)" json:"car_number"`

	Status TeamStatus `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Members []UserProfile `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}
