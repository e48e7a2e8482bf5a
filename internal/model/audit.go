package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit action vocabulary
const (
	ActionCreate             = "CREATE"
	ActionUpdate             = "UPDATE"
	ActionApproveBooking     = "APPROVE_BOOKING"
	ActionCreateCancellation = "CREATE_CANCELLATION"
	ActionInitialPayment     = "INITIAL_PAYMENT"
	ActionInstalmentPayment  = "INSTALMENT_PAYMENT"
	ActionSettlementPayment  = "SETTLEMENT_PAYMENT"
	ActionSupplierPayment    = "SUPPLIER_PAYMENT"
	ActionRefundPayment      = "REFUND_PAYMENT"
	ActionVoidBooking        = "VOID_BOOKING"
	ActionUnvoidBooking      = "UNVOID_BOOKING"
	ActionWriteOff           = "WRITE_OFF"
	ActionReverseAmendment   = "REVERSE_AMENDMENT"
	ActionGenerateInvoice    = "GENERATE_INVOICE"
)

// AuditLog is an append-only record of one logical change: who did what to
// which record, with optional field-level old/new values. Entries are written
// in the same transaction as the mutation they describe and are never updated
// or deleted.
type AuditLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for system-initiated changes
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Model     string     `gorm:"type:varchar(50);not null;index" json:"model"`
	RecordID  string     `gorm:"type:varchar(50);not null;index" json:"record_id"`
	Action    string     `gorm:"type:varchar(50);not null;index" json:"action"`
	FieldName *string    `gorm:"type:varchar(100)" json:"field_name,omitempty"`
	OldValue  *string    `gorm:"type:varchar(255)" json:"old_value,omitempty"`
	NewValue  *string    `gorm:"type:varchar(255)" json:"new_value,omitempty"`
	Details   string     `gorm:"type:text" json:"details"` // serialized JSON payload of the change
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
