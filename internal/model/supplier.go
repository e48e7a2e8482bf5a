package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Supplier is a product supplier (airline, hotel, consolidator).
type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// CostItemSupplier is one supplier cost line of a booking. The sum of a
// booking's cost lines is expected to match its ProdCost.
type CostItemSupplier struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	SupplierID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier    *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Description string          `gorm:"type:varchar(255)" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Settlements []SupplierPaymentSettlement `gorm:"foreignKey:CostItemID" json:"settlements,omitempty"`
}

func (c *CostItemSupplier) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// SupplierPaymentSettlement is one payment made to a supplier against a cost
// line. It may be partially or fully funded by supplier credit notes.
type SupplierPaymentSettlement struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CostItemID uuid.UUID       `gorm:"type:uuid;not null;index" json:"cost_item_id"`
	BookingID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Method     string          `gorm:"type:varchar(30);not null" json:"method"`
	PaidAt     time.Time       `gorm:"not null" json:"paid_at"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (s *SupplierPaymentSettlement) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
