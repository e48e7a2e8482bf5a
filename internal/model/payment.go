package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InitialPayment is money received from the customer at or after booking time,
// before any instalment schedule applies.
type InitialPayment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Method     string          `gorm:"type:varchar(30);not null" json:"method"`
	Reference  string          `gorm:"type:varchar(100)" json:"reference"`
	ReceivedAt time.Time       `gorm:"not null" json:"received_at"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (p *InitialPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Instalment is a scheduled due amount. Its settlement history may be partial
// and multi-event; reconciliation recomputes balance regardless, so overpaying
// a single instalment is tolerated rather than structurally forbidden.
type Instalment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	DueDate   time.Time       `gorm:"not null;index" json:"due_date"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Payments []InstalmentPayment `gorm:"foreignKey:InstalmentID" json:"payments,omitempty"`
}

func (i *Instalment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// InstalmentPayment is one settlement event against an instalment.
type InstalmentPayment struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InstalmentID uuid.UUID       `gorm:"type:uuid;not null;index" json:"instalment_id"`
	BookingID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Method       string          `gorm:"type:varchar(30);not null" json:"method"`
	ReceivedAt   time.Time       `gorm:"not null" json:"received_at"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (p *InstalmentPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PassengerRefundPayment is money paid back to the passenger. It subtracts
// from the booking's total received.
type PassengerRefundPayment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Method    string          `gorm:"type:varchar(30);not null" json:"method"`
	Reason    string          `gorm:"type:varchar(255)" json:"reason"`
	PaidAt    time.Time       `gorm:"not null" json:"paid_at"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (p *PassengerRefundPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
