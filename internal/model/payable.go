package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayableStatus enum constants
const (
	PayablePending = "PENDING"
	PayablePaid    = "PAID"
)

// SupplierPayable is a shortfall the company still owes a supplier after a
// cancellation (fee exceeded what was already paid). Pending amount only ever
// decreases, via settlement records.
type SupplierPayable struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CancellationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"cancellation_id"`
	ChainRootID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"chain_root_id"`
	SupplierID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"paid_amount"`
	PendingAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"pending_amount"`
	Status         string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Settlements []SupplierPayableSettlement `gorm:"foreignKey:PayableID" json:"settlements,omitempty"`
}

func (p *SupplierPayable) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CustomerPayable is a shortfall the customer still owes the company after a
// cancellation (fees exceeded what was received).
type CustomerPayable struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CancellationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"cancellation_id"`
	ChainRootID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"chain_root_id"`
	CustomerName   string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"paid_amount"`
	PendingAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"pending_amount"`
	Status         string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Settlements []CustomerPayableSettlement `gorm:"foreignKey:PayableID" json:"settlements,omitempty"`
}

func (p *CustomerPayable) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// SupplierPayableSettlement is one partial payment against a supplier payable.
type SupplierPayableSettlement struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PayableID uuid.UUID       `gorm:"type:uuid;not null;index" json:"payable_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Method    string          `gorm:"type:varchar(30);not null" json:"method"`
	PaidAt    time.Time       `gorm:"not null" json:"paid_at"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (s *SupplierPayableSettlement) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// CustomerPayableSettlement is one partial payment received against a customer
// payable. It counts toward the chain root booking's total received.
type CustomerPayableSettlement struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PayableID uuid.UUID       `gorm:"type:uuid;not null;index" json:"payable_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Method    string          `gorm:"type:varchar(30);not null" json:"method"`
	PaidAt    time.Time       `gorm:"not null" json:"paid_at"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (s *CustomerPayableSettlement) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
