package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionEntryType enum constants
const (
	CommissionInitial             = "INITIAL"
	CommissionFinalReconciliation = "FINAL_RECONCILIATION"
)

// CommissionEntry is one commission ledger line for a booking's agent. The
// unique index on (booking_id, entry_type) enforces at most one INITIAL and
// one FINAL_RECONCILIATION per booking at the data layer.
type CommissionEntry struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_commission_booking_type" json:"booking_id"`
	AgentID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"agent_id"`
	Agent     *Agent          `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	EntryType string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_commission_booking_type" json:"entry_type"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *CommissionEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
