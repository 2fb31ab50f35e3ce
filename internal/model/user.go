package model

import (
	"time"

	"github.com/google/uuid"
)

// Роль пользователя. Аутентификацию делает внешний identity-провайдер,
// ядро доверяет переданной паре (id, роль) как есть.
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleScrutineer UserRole = "scrutineer"
	UserRoleTeamLeader UserRole = "team_leader"
	UserRoleTeamMember UserRole = "team_member"
	UserRoleViewer     UserRole = "viewer"
)

// user_profiles — профили для FK и отображения.
// ID приходит из identity-провайдера, default здесь не нужен.
type UserProfile struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	DisplayName string   `gorm:"type:varchar(255)" json:"display_name"`
	Role        UserRole `gorm:"type:varchar(32);not null;default:'viewer';index" json:"role"`

	TeamID *uuid.UUID `gorm:"type:uuid;index" json:"team_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Team *Team `gorm:"foreignKey:TeamID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}
