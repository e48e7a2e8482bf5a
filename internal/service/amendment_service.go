package service

import (
	"context"

	"tourdesk-backend/internal/finance"
	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DTOs for request validation
type WriteOffRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type CreateAdjustmentRequest struct {
	Reason   string `json:"reason" binding:"required"`
	OldValue string `json:"old_value" binding:"required"`
	NewValue string `json:"new_value" binding:"required"`
}

type AmendmentResponse struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Reason     string    `json:"reason"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	Difference string    `json:"difference"`
	IsReversed bool      `json:"is_reversed"`
	CreatedAt  string    `json:"created_at"`
}

func mapAmendmentResponse(a *model.BookingAmendment) AmendmentResponse {
	return AmendmentResponse{
		ID:         a.ID,
		BookingID:  a.BookingID,
		Reason:     a.Reason,
		OldValue:   a.OldValue.StringFixed(2),
		NewValue:   a.NewValue.StringFixed(2),
		Difference: a.Difference.StringFixed(2),
		IsReversed: a.IsReversed,
		CreatedAt:  a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// AmendmentService records manual financial adjustments: balance write-offs,
// ad-hoc corrections, and their reversals. Amendments never mutate booking
// columns directly; they flow into the next reconciliation as signed diffs.
type AmendmentService interface {
	WriteOff(ctx context.Context, userID, bookingID string, req WriteOffRequest) (*BookingResponse, error)
	CreateAdjustment(ctx context.Context, userID, bookingID string, req CreateAdjustmentRequest) (*BookingResponse, error)
	Reverse(ctx context.Context, userID, amendmentID string) (*BookingResponse, error)
	ListByBooking(ctx context.Context, bookingID string) ([]AmendmentResponse, error)
}

type amendmentService struct {
	tx            repository.TransactionManager
	bookingRepo   repository.BookingRepository
	amendmentRepo repository.AmendmentRepository
	auditRepo     repository.AuditRepository
	reconciler    ReconcileService
	log           *logrus.Logger
}

func NewAmendmentService(
	tx repository.TransactionManager,
	bookingRepo repository.BookingRepository,
	amendmentRepo repository.AmendmentRepository,
	auditRepo repository.AuditRepository,
	reconciler ReconcileService,
	log *logrus.Logger,
) AmendmentService {
	return &amendmentService{
		tx:            tx,
		bookingRepo:   bookingRepo,
		amendmentRepo: amendmentRepo,
		auditRepo:     auditRepo,
		reconciler:    reconciler,
		log:           log,
	}
}

// WriteOff zeroes the booking's outstanding balance with a negative amendment.
// The following reconciliation settles the balance and completes the booking.
func (s *amendmentService) WriteOff(ctx context.Context, userID, bookingID string, req WriteOffRequest) (*BookingResponse, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}

	var booking *model.Booking
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		booking, err = s.bookingRepo.FindByIDForUpdate(txCtx, bid)
		if err != nil {
			return lookupErr(err, "booking %s not found", bookingID)
		}
		if booking.IsTerminal() {
			return apperror.Conflict("booking %s is %s and can no longer be changed", booking.FolderLabel(), booking.Status)
		}
		if finance.Settled(booking.Balance) {
			return apperror.Validation("booking %s has no outstanding balance to write off", booking.FolderLabel())
		}

		amendment := &model.BookingAmendment{
			BookingID:  booking.ID,
			Reason:     req.Reason,
			OldValue:   booking.Balance,
			NewValue:   decimal.Zero,
			Difference: booking.Balance.Neg(),
		}
		if err := s.amendmentRepo.Create(txCtx, amendment); err != nil {
			return err
		}

		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:    parseActor(userID),
			Model:     "Booking",
			RecordID:  booking.ID.String(),
			Action:    model.ActionWriteOff,
			FieldName: strPtr("balance"),
			OldValue:  strPtr(booking.Balance.StringFixed(2)),
			NewValue:  strPtr("0.00"),
			Details:   auditDetails(map[string]interface{}{"amendment_id": amendment.ID, "reason": req.Reason}),
		}); err != nil {
			return err
		}

		booking, err = s.reconciler.Recompute(txCtx, booking.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": booking.ID, "folder": booking.FolderLabel()}).Info("balance written off")
	return mapBookingResponse(booking), nil
}

func (s *amendmentService) CreateAdjustment(ctx context.Context, userID, bookingID string, req CreateAdjustmentRequest) (*BookingResponse, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}
	oldValue, err := decimal.NewFromString(req.OldValue)
	if err != nil {
		return nil, apperror.Validation("invalid old_value: %v", err)
	}
	newValue, err := decimal.NewFromString(req.NewValue)
	if err != nil {
		return nil, apperror.Validation("invalid new_value: %v", err)
	}
	difference := newValue.Sub(oldValue)
	if finance.Settled(difference) {
		return nil, apperror.Validation("adjustment changes nothing")
	}

	var booking *model.Booking
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		booking, err = s.bookingRepo.FindByIDForUpdate(txCtx, bid)
		if err != nil {
			return lookupErr(err, "booking %s not found", bookingID)
		}
		if booking.IsTerminal() {
			return apperror.Conflict("booking %s is %s and can no longer be changed", booking.FolderLabel(), booking.Status)
		}

		amendment := &model.BookingAmendment{
			BookingID:  booking.ID,
			Reason:     req.Reason,
			OldValue:   oldValue,
			NewValue:   newValue,
			Difference: difference,
		}
		if err := s.amendmentRepo.Create(txCtx, amendment); err != nil {
			return err
		}

		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "BookingAmendment",
			RecordID: amendment.ID.String(),
			Action:   model.ActionCreate,
			Details:  auditDetails(map[string]interface{}{"booking_id": booking.ID, "request": req}),
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

// Reverse marks an amendment reversed and reconciles the booking without it.
// Reversing a write-off can reopen a completed booking's balance.
func (s *amendmentService) Reverse(ctx context.Context, userID, amendmentID string) (*BookingResponse, error) {
	aid, err := uuid.Parse(amendmentID)
	if err != nil {
		return nil, apperror.Validation("invalid amendment id")
	}

	var booking *model.Booking
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		amendment, err := s.amendmentRepo.FindByIDForUpdate(txCtx, aid)
		if err != nil {
			return lookupErr(err, "amendment %s not found", amendmentID)
		}
		if amendment.IsReversed {
			return apperror.Conflict("amendment %s is already reversed", amendmentID)
		}

		amendment.IsReversed = true
		if err := s.amendmentRepo.Update(txCtx, amendment); err != nil {
			return err
		}

		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "BookingAmendment",
			RecordID: amendment.ID.String(),
			Action:   model.ActionReverseAmendment,
			Details:  auditDetails(map[string]interface{}{"booking_id": amendment.BookingID, "difference": amendment.Difference}),
		}); err != nil {
			return err
		}

		booking, err = s.reconciler.Recompute(txCtx, amendment.BookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mapBookingResponse(booking), nil
}

func (s *amendmentService) ListByBooking(ctx context.Context, bookingID string) ([]AmendmentResponse, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}
	amendments, err := s.amendmentRepo.ListByBooking(ctx, bid)
	if err != nil {
		return nil, err
	}
	responses := make([]AmendmentResponse, 0, len(amendments))
	for i := range amendments {
		responses = append(responses, mapAmendmentResponse(&amendments[i]))
	}
	return responses, nil
}
