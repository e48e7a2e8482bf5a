package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingAmendment records a manual adjustment to a booking's financials
// outside the normal payment flow, such as a write-off or correction. Active
// (non-reversed) amendments are summed into every balance and profit
// recomputation.
type BookingAmendment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	Reason     string          `gorm:"type:varchar(255);not null" json:"reason"`
	OldValue   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"old_value"`
	NewValue   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"new_value"`
	Difference decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"difference"`
	IsReversed bool            `gorm:"not null;default:false" json:"is_reversed"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *BookingAmendment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
