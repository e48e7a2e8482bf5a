package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditNoteStatus enum constants. Status is derived from the remaining
// amount, never set independently.
const (
	CreditNoteAvailable     = "AVAILABLE"
	CreditNotePartiallyUsed = "PARTIALLY_USED"
	CreditNoteUsed          = "USED"
)

// CreditNoteKind enum constants
const (
	NoteKindCustomer = "CUSTOMER"
	NoteKindSupplier = "SUPPLIER"
)

// AppliedToKind enum constants for credit note usages
const (
	AppliedToInitialPayment     = "INITIAL_PAYMENT"
	AppliedToInstalmentPayment  = "INSTALMENT_PAYMENT"
	AppliedToSupplierSettlement = "SUPPLIER_SETTLEMENT"
	AppliedToPayableSettlement  = "PAYABLE_SETTLEMENT"
)

// creditNoteTolerance mirrors the engine's settlement tolerance: a note with
// 0.01 or less remaining is spent.
var creditNoteTolerance = decimal.NewFromFloat(0.01)

// CreditNoteStatusFor derives a note's status from its remaining amount.
func CreditNoteStatusFor(initial, remaining decimal.Decimal) string {
	if remaining.LessThanOrEqual(creditNoteTolerance) {
		return CreditNoteUsed
	}
	if remaining.LessThan(initial) {
		return CreditNotePartiallyUsed
	}
	return CreditNoteAvailable
}

// CustomerCreditNote is stored value owed to a customer, generated from a
// cancellation and spendable against future customer payments.
type CustomerCreditNote struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	NoteNo          string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"note_no"`
	CustomerName    string          `gorm:"type:varchar(255);not null;index" json:"customer_name"`
	CancellationID  *uuid.UUID      `gorm:"type:uuid;index" json:"cancellation_id"`
	OriginBookingID *uuid.UUID      `gorm:"type:uuid;index" json:"origin_booking_id"`
	InitialAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"initial_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"remaining_amount"`
	Status          string          `gorm:"type:varchar(20);not null;default:'AVAILABLE';index" json:"status"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *CustomerCreditNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// SupplierCreditNote is stored value owed by a supplier (e.g. cash already
// paid out in excess of a cancellation fee), spendable against future supplier
// payments.
type SupplierCreditNote struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	NoteNo          string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"note_no"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	SupplierName    string          `gorm:"type:varchar(255);not null;index" json:"supplier_name"`
	CancellationID  *uuid.UUID      `gorm:"type:uuid;index" json:"cancellation_id"`
	OriginBookingID *uuid.UUID      `gorm:"type:uuid;index" json:"origin_booking_id"`
	InitialAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"initial_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"remaining_amount"`
	Status          string          `gorm:"type:varchar(20);not null;default:'AVAILABLE';index" json:"status"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *SupplierCreditNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// CreditNoteUsage links a credit note to the payment or settlement it funded.
// It is created in the same transaction as the note decrement and the funded
// record, so it is never orphaned.
type CreditNoteUsage struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	NoteKind      string          `gorm:"type:varchar(10);not null;index" json:"note_kind"`
	NoteID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"note_id"`
	AmountUsed    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount_used"`
	AppliedToKind string          `gorm:"type:varchar(30);not null" json:"applied_to_kind"`
	AppliedToID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"applied_to_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (u *CreditNoteUsage) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
