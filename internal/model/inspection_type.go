package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// inspection_types — справочник видов инспекции.
// Редактируется только администраторами, для остального кода это
// неизменяемые справочные данные.
type InspectionType struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// Длительность одной сессии в минутах.
	DurationMin int `gorm:"not null" json:"duration_min"`

	// Количество параллельных "дорожек" (постов инспекции).
	SlotCount int `gorm:"not null;default:1" json:"slot_count"`

	// Список ID видов инспекции, которые должны быть пройдены раньше.
	Prerequisites datatypes.JSON `gorm:"type:jsonb" json:"prerequisites,omitempty"`

	SortOrder int  `gorm:"not null;default:0" json:"sort_order"`
	Active    bool `gorm:"not null;default:true;index" json:"active"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Items []ChecklistTemplateItem `gorm:"foreignKey:InspectionTypeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items,omitempty"`
}
