package model

import (
	"time"

	"github.com/google/uuid"
)

// Статус пункта чек-листа. Пустое значение — пункт ещё не отмечали.
type ItemStatus string

const (
	ItemStatusPass  ItemStatus = "pass"
	ItemStatusFail  ItemStatus = "fail"
	ItemStatusUnset ItemStatus = ""
)

// checklist_template_items — шаблонные пункты чек-листа вида инспекции.
// Упорядочены внутри секции по order_index.
type ChecklistTemplateItem struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	InspectionTypeID uuid.UUID `gorm:"type:uuid;not null;index" json:"inspection_type_id"`

	Section     string `gorm:"type:varchar(255);not null" json:"section"`
	Description string `gorm:"type:text;not null" json:"description"`
	OrderIndex  int    `gorm:"not null;default:0" json:"order_index"`
	Required    bool   `gorm:"not null;default:true" json:"required"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	InspectionType *InspectionType `gorm:"foreignKey:InspectionTypeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// checklist_progress — прогресс по пунктам чек-листа бронирования.
// Создаётся лениво при первой отметке, затем перезаписывается целиком:
// побеждает последняя запись, версий нет.
type ChecklistProgressEntry struct {
	BookingID uuid.UUID `gorm:"type:uuid;primaryKey" json:"booking_id"`
	ItemID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"item_id"`

	Status  ItemStatus `gorm:"type:varchar(16);not null;default:''" json:"status"`
	Comment string     `gorm:"type:text" json:"comment"`

	// Кто последним записал пункт.
	UserID    uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	CheckedAt *time.Time `gorm:"type:timestamp with time zone" json:"checked_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Booking *Booking               `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Item    *ChecklistTemplateItem `gorm:"foreignKey:ItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Checked — пункт считается закрытым только со статусом pass.
func (e *ChecklistProgressEntry) Checked() bool {
	return e != nil && e.Status == ItemStatusPass
}
