package service

import (
	"context"
	"errors"

	"tourdesk-backend/internal/finance"
	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CommissionEntryResponse is one commission ledger line for API responses.
type CommissionEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	AgentID   uuid.UUID `json:"agent_id"`
	AgentName string    `json:"agent_name,omitempty"`
	EntryType string    `json:"entry_type"`
	Amount    string    `json:"amount"`
	CreatedAt string    `json:"created_at"`
}

// CommissionService maintains the agent commission ledger. Posting is always
// called from inside another operation's transaction; an unresolvable agent is
// logged and skipped rather than failing the caller.
type CommissionService interface {
	// PostInitial upserts the INITIAL entry for a booking from its current
	// profit and payment schedule. It is idempotent and becomes a no-op once a
	// FINAL_RECONCILIATION entry exists.
	PostInitial(ctx context.Context, booking *model.Booking) error
	// PostFinal posts the FINAL_RECONCILIATION entry when a booking completes.
	// At most one is ever created per booking; amounts inside tolerance are
	// not worth a ledger line and are skipped.
	PostFinal(ctx context.Context, booking *model.Booking) error
	ListByBooking(ctx context.Context, bookingID string) ([]CommissionEntryResponse, error)
	ListByAgent(ctx context.Context, agentID string, page, limit int) ([]CommissionEntryResponse, int64, error)
}

type commissionService struct {
	commissionRepo repository.CommissionRepository
	agentRepo      repository.AgentRepository
	amendmentRepo  repository.AmendmentRepository
	log            *logrus.Logger
}

func NewCommissionService(
	commissionRepo repository.CommissionRepository,
	agentRepo repository.AgentRepository,
	amendmentRepo repository.AmendmentRepository,
	log *logrus.Logger,
) CommissionService {
	return &commissionService{
		commissionRepo: commissionRepo,
		agentRepo:      agentRepo,
		amendmentRepo:  amendmentRepo,
		log:            log,
	}
}

func sumAmendments(amendments []model.BookingAmendment) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amendments {
		total = total.Add(a.Difference)
	}
	return total
}

func mapCommissionResponse(e *model.CommissionEntry) CommissionEntryResponse {
	resp := CommissionEntryResponse{
		ID:        e.ID,
		BookingID: e.BookingID,
		AgentID:   e.AgentID,
		EntryType: e.EntryType,
		Amount:    e.Amount.StringFixed(2),
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if e.Agent != nil {
		resp.AgentName = e.Agent.Name
	}
	return resp
}

func (s *commissionService) PostInitial(ctx context.Context, booking *model.Booking) error {
	if !s.resolveAgent(ctx, booking, model.CommissionInitial) {
		return nil
	}

	// Frozen once final reconciliation has been posted.
	if _, err := s.commissionRepo.FindByBookingAndType(ctx, booking.ID, model.CommissionFinalReconciliation); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	target := finance.InitialCommissionTarget(booking.Schedule == model.ScheduleFull, booking.Profit)

	existing, err := s.commissionRepo.FindByBookingAndType(ctx, booking.ID, model.CommissionInitial)
	switch {
	case err == nil:
		if existing.Amount.Equal(target) {
			return nil
		}
		existing.Amount = target
		existing.AgentID = booking.AgentID
		return s.commissionRepo.Update(ctx, existing)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.commissionRepo.Create(ctx, &model.CommissionEntry{
			BookingID: booking.ID,
			AgentID:   booking.AgentID,
			EntryType: model.CommissionInitial,
			Amount:    target,
		})
	default:
		return err
	}
}

func (s *commissionService) PostFinal(ctx context.Context, booking *model.Booking) error {
	if _, err := s.commissionRepo.FindByBookingAndType(ctx, booking.ID, model.CommissionFinalReconciliation); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	initialPaid := decimal.Zero
	initial, err := s.commissionRepo.FindByBookingAndType(ctx, booking.ID, model.CommissionInitial)
	if err == nil {
		initialPaid = initial.Amount
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	amendments, err := s.amendmentRepo.ListActiveByBooking(ctx, booking.ID)
	if err != nil {
		return err
	}
	amendmentTotal := sumAmendments(amendments)

	amount := finance.FinalReconciliationAmount(booking.Revenue, booking.ProdCost, amendmentTotal, initialPaid)
	if finance.Settled(amount) {
		return nil
	}

	if !s.resolveAgent(ctx, booking, model.CommissionFinalReconciliation) {
		return nil
	}

	return s.commissionRepo.Create(ctx, &model.CommissionEntry{
		BookingID: booking.ID,
		AgentID:   booking.AgentID,
		EntryType: model.CommissionFinalReconciliation,
		Amount:    amount,
	})
}

// resolveAgent checks the booking's agent exists. A missing agent is a data
// problem worth a warning, not worth failing the payment that triggered the
// posting.
func (s *commissionService) resolveAgent(ctx context.Context, booking *model.Booking, entryType string) bool {
	if _, err := s.agentRepo.FindByID(ctx, booking.AgentID); err != nil {
		s.log.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"agent_id":   booking.AgentID,
			"entry_type": entryType,
		}).Warn("agent could not be resolved, skipping commission entry")
		return false
	}
	return true
}

func (s *commissionService) ListByBooking(ctx context.Context, bookingID string) ([]CommissionEntryResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}

	entries, err := s.commissionRepo.ListByBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	responses := make([]CommissionEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, mapCommissionResponse(&entries[i]))
	}
	return responses, nil
}

func (s *commissionService) ListByAgent(ctx context.Context, agentID string, page, limit int) ([]CommissionEntryResponse, int64, error) {
	id, err := uuid.Parse(agentID)
	if err != nil {
		return nil, 0, apperror.Validation("invalid agent id")
	}

	entries, total, err := s.commissionRepo.ListByAgent(ctx, id, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CommissionEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, mapCommissionResponse(&entries[i]))
	}
	return responses, total, nil
}
