package service

import (
	"context"
	"fmt"
	"time"

	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceLine is one priced line on a generated invoice.
type InvoiceLine struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// InvoiceDocument is an immutable snapshot of a booking's financial state at
// generation time, ready for rendering.
type InvoiceDocument struct {
	InvoiceNo    string `json:"invoice_no"`
	IssuedAt     string `json:"issued_at"`
	Folder       string `json:"folder"`
	RefNo        string `json:"ref_no"`
	CustomerName string `json:"customer_name"`
	AgentName    string `json:"agent_name,omitempty"`
	Status       string `json:"status"`

	Lines []InvoiceLine `json:"lines"`

	Revenue       string `json:"revenue"`
	TotalReceived string `json:"total_received"`
	Balance       string `json:"balance"`

	Payments []InvoicePaymentLine `json:"payments"`
}

// InvoicePaymentLine is one received payment shown on the invoice.
type InvoicePaymentLine struct {
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	Method     string `json:"method"`
	ReceivedAt string `json:"received_at"`
}

// DocumentService produces customer-facing documents. Generation is read-only
// on the booking but still writes its audit entry transactionally.
type DocumentService interface {
	GenerateInvoice(ctx context.Context, userID, bookingID string) (*InvoiceDocument, error)
}

type documentService struct {
	tx          repository.TransactionManager
	bookingRepo repository.BookingRepository
	paymentRepo repository.PaymentRepository
	auditRepo   repository.AuditRepository
}

func NewDocumentService(
	tx repository.TransactionManager,
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	auditRepo repository.AuditRepository,
) DocumentService {
	return &documentService{
		tx:          tx,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
	}
}

func (s *documentService) GenerateInvoice(ctx context.Context, userID, bookingID string) (*InvoiceDocument, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}

	var doc *InvoiceDocument
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.FindByID(txCtx, bid)
		if err != nil {
			return lookupErr(err, "booking %s not found", bookingID)
		}

		now := time.Now()
		doc = &InvoiceDocument{
			InvoiceNo:     fmt.Sprintf("INV-%s", booking.RefNo),
			IssuedAt:      now.Format("2006-01-02T15:04:05Z07:00"),
			Folder:        booking.FolderLabel(),
			RefNo:         booking.RefNo,
			CustomerName:  booking.CustomerName,
			Status:        booking.Status,
			Revenue:       booking.Revenue.StringFixed(2),
			TotalReceived: booking.TotalReceived.StringFixed(2),
			Balance:       booking.Balance.StringFixed(2),
		}
		if booking.Agent != nil {
			doc.AgentName = booking.Agent.Name
		}

		doc.Lines = append(doc.Lines, InvoiceLine{Description: "Travel arrangements", Amount: booking.Revenue.StringFixed(2)})
		if booking.TransFee.GreaterThan(decimal.Zero) {
			doc.Lines = append(doc.Lines, InvoiceLine{Description: "Transaction fee", Amount: booking.TransFee.StringFixed(2)})
		}
		if booking.Surcharge.GreaterThan(decimal.Zero) {
			doc.Lines = append(doc.Lines, InvoiceLine{Description: "Surcharge", Amount: booking.Surcharge.StringFixed(2)})
		}

		ownID := []uuid.UUID{booking.ID}
		initial, err := s.paymentRepo.ListInitialPayments(txCtx, ownID)
		if err != nil {
			return err
		}
		for _, p := range initial {
			doc.Payments = append(doc.Payments, InvoicePaymentLine{
				Kind:       "INITIAL",
				Amount:     p.Amount.StringFixed(2),
				Method:     p.Method,
				ReceivedAt: p.ReceivedAt.Format("2006-01-02"),
			})
		}
		instalment, err := s.paymentRepo.ListInstalmentPayments(txCtx, ownID)
		if err != nil {
			return err
		}
		for _, p := range instalment {
			doc.Payments = append(doc.Payments, InvoicePaymentLine{
				Kind:       "INSTALMENT",
				Amount:     p.Amount.StringFixed(2),
				Method:     p.Method,
				ReceivedAt: p.ReceivedAt.Format("2006-01-02"),
			})
		}

		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "Booking",
			RecordID: booking.ID.String(),
			Action:   model.ActionGenerateInvoice,
			Details:  auditDetails(map[string]interface{}{"invoice_no": doc.InvoiceNo}),
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
