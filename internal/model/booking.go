package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingStatus enum constants
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCompleted = "COMPLETED"
	BookingCancelled = "CANCELLED"
	BookingVoid      = "VOID"
)

// RecordKind enum constants. The chain relation is structural
// (ChainRootID/ParentBookingID + kind); the dotted folder label is
// presentation only and is computed, never parsed.
const (
	RecordKindOriginal   = "ORIGINAL"
	RecordKindDateChange = "DATE_CHANGE"
)

// PaymentSchedule enum constants
const (
	ScheduleFull = "FULL"
	SchedulePart = "PART"
)

// Payment tender enum constants
const (
	TenderBankTransfer = "BANK_TRANSFER"
	TenderCard         = "CARD"
	TenderCash         = "CASH"
	TenderCheque       = "CHEQUE"
	TenderCreditNotes  = "CREDIT_NOTES"
)

// Booking is one folder entry in a chain: the original itinerary or a
// date-change child. All money columns are decimal(18,2); Balance, Profit and
// TotalReceived are recomputed from the full payment graph after every
// mutation, never patched incrementally.
type Booking struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FolderNo        int        `gorm:"not null;index" json:"folder_no"`
	ChildSeq        int        `gorm:"not null;default:0" json:"child_seq"`
	RecordKind      string     `gorm:"type:varchar(20);not null;default:'ORIGINAL'" json:"record_kind"`
	ChainRootID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"chain_root_id"`
	ParentBookingID *uuid.UUID `gorm:"type:uuid;index" json:"parent_booking_id"`
	RefNo           string     `gorm:"type:varchar(30);uniqueIndex;not null" json:"ref_no"`
	CustomerName    string     `gorm:"type:varchar(255);not null" json:"customer_name"`
	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	AgentID uuid.UUID `gorm:"type:uuid;not null;index" json:"agent_id"`
	Agent   *Agent    `gorm:"foreignKey:AgentID" json:"agent,omitempty"`

	Revenue       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"revenue"`
	ProdCost      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"prod_cost"`
	TransFee      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"trans_fee"`
	Surcharge     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"surcharge"`
	TotalReceived decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_received"`
	Balance       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	Profit        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"profit"`

	// Payment plan, decoded once at the boundary from the request's
	// payment_method string. FULL schedule pays full commission up front,
	// PART pays half until final reconciliation.
	Schedule        string  `gorm:"type:varchar(10);not null;default:'FULL'" json:"schedule"`
	PrimaryMethod   string  `gorm:"type:varchar(30);not null" json:"primary_method"`
	SecondaryMethod *string `gorm:"type:varchar(30)" json:"secondary_method"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.ChainRootID == uuid.Nil {
		b.ChainRootID = b.ID
	}
	return nil
}

// FolderLabel renders the display folder string ("42", "42.1") from the
// structured relation.
func (b *Booking) FolderLabel() string {
	if b.ChildSeq == 0 {
		return fmt.Sprintf("%d", b.FolderNo)
	}
	return fmt.Sprintf("%d.%d", b.FolderNo, b.ChildSeq)
}

// IsTerminal reports whether the booking can no longer be mutated.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingCancelled || b.Status == BookingVoid
}

// PaymentPlan is the decoded payment method variant.
type PaymentPlan struct {
	Schedule        string
	PrimaryMethod   string
	SecondaryMethod *string
}

// MethodString recomposes the legacy payment-method display string.
func (p PaymentPlan) MethodString() string {
	s := p.Schedule + "_" + p.PrimaryMethod
	if p.SecondaryMethod != nil {
		s += "_AND_" + *p.SecondaryMethod
	}
	return s
}

// IncludesCreditNotes reports whether any leg of the plan is funded by
// customer credit notes.
func (p PaymentPlan) IncludesCreditNotes() bool {
	if p.PrimaryMethod == TenderCreditNotes {
		return true
	}
	return p.SecondaryMethod != nil && *p.SecondaryMethod == TenderCreditNotes
}

var validTenders = map[string]bool{
	TenderBankTransfer: true,
	TenderCard:         true,
	TenderCash:         true,
	TenderCheque:       true,
	TenderCreditNotes:  true,
}

// ValidTender reports whether t is a known payment tender.
func ValidTender(t string) bool {
	return validTenders[t]
}

// ParsePaymentPlan decodes strings like "FULL_BANK_TRANSFER" or
// "PART_CARD_AND_CREDIT_NOTES" into the structured plan. Strings with no
// schedule prefix default to PART (legacy instalment bookings).
func ParsePaymentPlan(method string) (PaymentPlan, error) {
	s := strings.ToUpper(strings.TrimSpace(method))
	if s == "" {
		return PaymentPlan{}, fmt.Errorf("payment method is required")
	}

	plan := PaymentPlan{Schedule: SchedulePart}
	if strings.HasPrefix(s, ScheduleFull+"_") {
		plan.Schedule = ScheduleFull
		s = strings.TrimPrefix(s, ScheduleFull+"_")
	} else if strings.HasPrefix(s, SchedulePart+"_") {
		s = strings.TrimPrefix(s, SchedulePart+"_")
	}

	parts := strings.SplitN(s, "_AND_", 2)
	if !validTenders[parts[0]] {
		return PaymentPlan{}, fmt.Errorf("unknown payment tender %q", parts[0])
	}
	plan.PrimaryMethod = parts[0]

	if len(parts) == 2 {
		if !validTenders[parts[1]] {
			return PaymentPlan{}, fmt.Errorf("unknown payment tender %q", parts[1])
		}
		secondary := parts[1]
		plan.SecondaryMethod = &secondary
	}

	return plan, nil
}
