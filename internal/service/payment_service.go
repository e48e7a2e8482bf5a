package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"tourdesk-backend/internal/finance"
	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DTOs for request validation
type CreateInstalmentRequest struct {
	Amount  string    `json:"amount" binding:"required"`
	DueDate time.Time `json:"due_date" binding:"required"`
}

type RecordPaymentRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Method    string `json:"method" binding:"required"`
	Reference string `json:"reference"`
	// Credit-note funding: the portion of Amount drawn from the customer's
	// notes, plus the notes to draw it from. The line amounts must total
	// CreditNoteAmount exactly.
	CreditNoteAmount string                  `json:"credit_note_amount"`
	CreditNotes      []CreditNoteLineRequest `json:"credit_notes"`
}

type RecordRefundRequest struct {
	Amount string `json:"amount" binding:"required"`
	Method string `json:"method" binding:"required"`
	Reason string `json:"reason"`
}

type InstalmentResponse struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	Amount    string    `json:"amount"`
	Paid      string    `json:"paid"`
	DueDate   string    `json:"due_date"`
	CreatedAt string    `json:"created_at"`
}

func mapInstalmentResponse(i *model.Instalment) InstalmentResponse {
	paid := decimal.Zero
	for _, p := range i.Payments {
		paid = paid.Add(p.Amount)
	}
	return InstalmentResponse{
		ID:        i.ID,
		BookingID: i.BookingID,
		Amount:    i.Amount.StringFixed(2),
		Paid:      paid.StringFixed(2),
		DueDate:   i.DueDate.Format("2006-01-02"),
		CreatedAt: i.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// PaymentService records customer-side money movement: initial payments,
// instalment schedules and their settlements, and passenger refunds. Every
// mutation reconciles the booking inside the same transaction.
type PaymentService interface {
	CreateInstalment(ctx context.Context, userID, bookingID string, req CreateInstalmentRequest) (*InstalmentResponse, error)
	RecordInitialPayment(ctx context.Context, userID, bookingID string, req RecordPaymentRequest) (*BookingResponse, error)
	RecordInstalmentPayment(ctx context.Context, userID, instalmentID string, req RecordPaymentRequest) (*BookingResponse, error)
	RecordRefund(ctx context.Context, userID, bookingID string, req RecordRefundRequest) (*BookingResponse, error)
	ListInstalments(ctx context.Context, bookingID string) ([]InstalmentResponse, error)
}

type paymentService struct {
	tx               repository.TransactionManager
	bookingRepo      repository.BookingRepository
	paymentRepo      repository.PaymentRepository
	cancellationRepo repository.CancellationRepository
	auditRepo        repository.AuditRepository
	creditNotes      CreditNoteService
	reconciler       ReconcileService
	log              *logrus.Logger
}

func NewPaymentService(
	tx repository.TransactionManager,
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	cancellationRepo repository.CancellationRepository,
	auditRepo repository.AuditRepository,
	creditNotes CreditNoteService,
	reconciler ReconcileService,
	log *logrus.Logger,
) PaymentService {
	return &paymentService{
		tx:               tx,
		bookingRepo:      bookingRepo,
		paymentRepo:      paymentRepo,
		cancellationRepo: cancellationRepo,
		auditRepo:        auditRepo,
		creditNotes:      creditNotes,
		reconciler:       reconciler,
		log:              log,
	}
}

// parsePaymentRequest validates the shared shape of a payment request and
// returns (amount, credit-note cover, normalized method).
func parsePaymentRequest(req RecordPaymentRequest) (decimal.Decimal, decimal.Decimal, string, error) {
	amount, err := parsePositiveAmount("amount", req.Amount)
	if err != nil {
		return decimal.Zero, decimal.Zero, "", err
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if !model.ValidTender(method) {
		return decimal.Zero, decimal.Zero, "", apperror.Validation("unknown payment method %q", req.Method)
	}

	cover, err := parseOptionalAmount("credit_note_amount", req.CreditNoteAmount)
	if err != nil {
		return decimal.Zero, decimal.Zero, "", err
	}

	if method == model.TenderCreditNotes {
		if len(req.CreditNotes) == 0 {
			return decimal.Zero, decimal.Zero, "", apperror.Validation("credit_notes are required for a CREDIT_NOTES payment")
		}
		if cover.IsZero() {
			cover = amount
		}
	}
	if len(req.CreditNotes) > 0 && cover.IsZero() {
		return decimal.Zero, decimal.Zero, "", apperror.Validation("credit_note_amount is required when credit notes are attached")
	}
	if len(req.CreditNotes) == 0 && !cover.IsZero() {
		return decimal.Zero, decimal.Zero, "", apperror.Validation("credit_notes are required when credit_note_amount is set")
	}
	if cover.Sub(amount).GreaterThanOrEqual(finance.Tolerance) {
		return decimal.Zero, decimal.Zero, "", apperror.Validation("credit_note_amount exceeds the payment amount")
	}

	return amount, cover, method, nil
}

func (s *paymentService) CreateInstalment(ctx context.Context, userID, bookingID string, req CreateInstalmentRequest) (*InstalmentResponse, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}
	amount, err := parsePositiveAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	var instalment *model.Instalment
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(txCtx, bid)
		if err != nil {
			return lookupErr(err, "booking %s not found", bookingID)
		}
		if booking.IsTerminal() {
			return apperror.Conflict("booking %s is %s and can no longer be changed", booking.FolderLabel(), booking.Status)
		}

		instalment = &model.Instalment{
			BookingID: booking.ID,
			Amount:    amount,
			DueDate:   req.DueDate,
		}
		if err := s.paymentRepo.CreateInstalment(txCtx, instalment); err != nil {
			return err
		}

		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "Instalment",
			RecordID: instalment.ID.String(),
			Action:   model.ActionCreate,
			Details:  auditDetails(map[string]interface{}{"booking_id": booking.ID, "amount": amount, "due_date": req.DueDate}),
		})
	})
	if err != nil {
		return nil, err
	}

	resp := mapInstalmentResponse(instalment)
	return &resp, nil
}

func (s *paymentService) RecordInitialPayment(ctx context.Context, userID, bookingID string, req RecordPaymentRequest) (*BookingResponse, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}
	amount, cover, method, err := parsePaymentRequest(req)
	if err != nil {
		return nil, err
	}

	var booking *model.Booking
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		booking, err = s.bookingRepo.FindByIDForUpdate(txCtx, bid)
		if err != nil {
			return lookupErr(err, "booking %s not found", bookingID)
		}
		if booking.IsTerminal() {
			return apperror.Conflict("booking %s is %s, payments are no longer accepted", booking.FolderLabel(), booking.Status)
		}

		payment := &model.InitialPayment{
			BookingID:  booking.ID,
			Amount:     amount,
			Method:     method,
			Reference:  req.Reference,
			ReceivedAt: time.Now(),
		}
		if err := s.paymentRepo.CreateInitialPayment(txCtx, payment); err != nil {
			return err
		}

		if len(req.CreditNotes) > 0 {
			if err := s.creditNotes.ApplyCustomerNotes(txCtx, booking.CustomerName, req.CreditNotes, cover, model.AppliedToInitialPayment, payment.ID); err != nil {
				return err
			}
		}

		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "Booking",
			RecordID: booking.ID.String(),
			Action:   model.ActionInitialPayment,
			Details:  auditDetails(map[string]interface{}{"payment_id": payment.ID, "amount": amount, "method": method}),
		}); err != nil {
			return err
		}

		booking, err = s.reconciler.Recompute(txCtx, booking.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mapBookingResponse(booking), nil
}

func (s *paymentService) RecordInstalmentPayment(ctx context.Context, userID, instalmentID string, req RecordPaymentRequest) (*BookingResponse, error) {
	iid, err := uuid.Parse(instalmentID)
	if err != nil {
		return nil, apperror.Validation("invalid instalment id")
	}
	amount, cover, method, err := parsePaymentRequest(req)
	if err != nil {
		return nil, err
	}

	var booking *model.Booking
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		instalment, err := s.paymentRepo.FindInstalmentByID(txCtx, iid)
		if err != nil {
			return lookupErr(err, "instalment %s not found", instalmentID)
		}
		booking, err = s.bookingRepo.FindByIDForUpdate(txCtx, instalment.BookingID)
		if err != nil {
			return lookupErr(err, "booking %s not found", instalment.BookingID)
		}
		if booking.IsTerminal() {
			return apperror.Conflict("booking %s is %s, payments are no longer accepted", booking.FolderLabel(), booking.Status)
		}

		payment := &model.InstalmentPayment{
			InstalmentID: instalment.ID,
			BookingID:    booking.ID,
			Amount:       amount,
			Method:       method,
			ReceivedAt:   time.Now(),
		}
		if err := s.paymentRepo.CreateInstalmentPayment(txCtx, payment); err != nil {
			return err
		}

		if len(req.CreditNotes) > 0 {
			if err := s.creditNotes.ApplyCustomerNotes(txCtx, booking.CustomerName, req.CreditNotes, cover, model.AppliedToInstalmentPayment, payment.ID); err != nil {
				return err
			}
		}

		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "Booking",
			RecordID: booking.ID.String(),
			Action:   model.ActionInstalmentPayment,
			Details:  auditDetails(map[string]interface{}{"instalment_id": instalment.ID, "payment_id": payment.ID, "amount": amount, "method": method}),
		}); err != nil {
			return err
		}

		booking, err = s.reconciler.Recompute(txCtx, booking.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mapBookingResponse(booking), nil
}

func (s *paymentService) RecordRefund(ctx context.Context, userID, bookingID string, req RecordRefundRequest) (*BookingResponse, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}
	amount, err := parsePositiveAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if !model.ValidTender(method) {
		return nil, apperror.Validation("unknown payment method %q", req.Method)
	}

	var booking *model.Booking
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		booking, err = s.bookingRepo.FindByIDForUpdate(txCtx, bid)
		if err != nil {
			return lookupErr(err, "booking %s not found", bookingID)
		}
		// Refunds remain valid on a cancelled chain (paying out the
		// cancellation refund); only VOID bookings reject them.
		if booking.Status == model.BookingVoid {
			return apperror.Conflict("booking %s is VOID", booking.FolderLabel())
		}

		refund := &model.PassengerRefundPayment{
			BookingID: booking.ID,
			Amount:    amount,
			Method:    method,
			Reason:    req.Reason,
			PaidAt:    time.Now(),
		}
		if err := s.paymentRepo.CreateRefundPayment(txCtx, refund); err != nil {
			return err
		}

		if err := s.settleCancellationRefund(txCtx, booking); err != nil {
			return err
		}

		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "Booking",
			RecordID: booking.ID.String(),
			Action:   model.ActionRefundPayment,
			Details:  auditDetails(map[string]interface{}{"refund_id": refund.ID, "amount": amount, "method": method, "reason": req.Reason}),
		}); err != nil {
			return err
		}

		booking, err = s.reconciler.Recompute(txCtx, booking.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mapBookingResponse(booking), nil
}

// settleCancellationRefund flips the chain's pending cancellation refund to
// PAID once recorded refunds cover the owed amount.
func (s *paymentService) settleCancellationRefund(ctx context.Context, booking *model.Booking) error {
	cancellation, err := s.cancellationRepo.FindByChainRoot(ctx, booking.ChainRootID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if cancellation.RefundStatus != model.RefundPending {
		return nil
	}

	chain, err := s.bookingRepo.ListChain(ctx, booking.ChainRootID)
	if err != nil {
		return err
	}
	chainIDs := make([]uuid.UUID, 0, len(chain))
	for _, member := range chain {
		chainIDs = append(chainIDs, member.ID)
	}

	refunds, err := s.paymentRepo.ListRefundPayments(ctx, chainIDs)
	if err != nil {
		return err
	}
	total := decimal.Zero
	for _, r := range refunds {
		total = total.Add(r.Amount)
	}

	if finance.Settled(cancellation.RefundToPassenger.Sub(total)) || total.GreaterThan(cancellation.RefundToPassenger) {
		cancellation.RefundStatus = model.RefundPaid
		return s.cancellationRepo.Update(ctx, cancellation)
	}
	return nil
}

func (s *paymentService) ListInstalments(ctx context.Context, bookingID string) ([]InstalmentResponse, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}
	instalments, err := s.paymentRepo.ListInstalments(ctx, bid)
	if err != nil {
		return nil, err
	}
	responses := make([]InstalmentResponse, 0, len(instalments))
	for i := range instalments {
		responses = append(responses, mapInstalmentResponse(&instalments[i]))
	}
	return responses, nil
}
