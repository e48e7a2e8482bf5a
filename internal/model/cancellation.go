package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RefundStatus enum constants
const (
	RefundNA           = "N/A"
	RefundPending      = "PENDING"
	RefundCreditIssued = "CREDIT_ISSUED"
	RefundPaid         = "PAID"
)

// RefundMode enum constants: how a positive customer difference is returned.
const (
	RefundModeCash       = "CASH"
	RefundModeCreditNote = "CREDIT_NOTE"
)

// Cancellation is the single financial settlement of a cancelled booking
// chain. At most one exists per chain. It owns at most one supplier credit
// note XOR supplier payable, and at most one customer credit note XOR customer
// payable, each created only when its amount is positive.
type Cancellation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChainRootID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"chain_root_id"`
	FolderNo    int       `gorm:"not null" json:"folder_no"`

	OriginalRevenue  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"original_revenue"`
	OriginalProdCost decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"original_prod_cost"`
	TotalReceived    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_received"`
	TotalPaidToSupp  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_paid_to_supplier"`

	SupplierCancellationFee decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"supplier_cancellation_fee"`
	AdminFee                decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"admin_fee"`

	RefundToPassenger decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"refund_to_passenger"`
	PayableByCustomer decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"payable_by_customer"`
	RefundStatus      string          `gorm:"type:varchar(20);not null;default:'N/A'" json:"refund_status"`

	CreditNoteAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"credit_note_amount"`
	SupplierCreditNoteAmt   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"supplier_credit_note_amount"`
	SupplierPayableAmt      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"supplier_payable_amount"`
	ProfitOrLoss            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"profit_or_loss"`
	CustomerCreditNoteID    *uuid.UUID      `gorm:"type:uuid" json:"customer_credit_note_id"`
	SupplierCreditNoteID    *uuid.UUID      `gorm:"type:uuid" json:"supplier_credit_note_id"`
	CustomerPayableID       *uuid.UUID      `gorm:"type:uuid" json:"customer_payable_id"`
	SupplierPayableRecordID *uuid.UUID      `gorm:"type:uuid" json:"supplier_payable_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Cancellation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// FolderLabel renders the cancellation's display folder string ("42.C").
func (c *Cancellation) FolderLabel() string {
	return fmt.Sprintf("%d.C", c.FolderNo)
}
