package service

import (
	"context"
	"fmt"
	"time"

	"tourdesk-backend/internal/finance"
	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditNoteLineRequest is one requested draw against a credit note inside a
// payment request.
type CreditNoteLineRequest struct {
	NoteID string `json:"note_id" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// CreditNoteResponse is a customer or supplier credit note for API responses.
type CreditNoteResponse struct {
	ID              uuid.UUID  `json:"id"`
	NoteNo          string     `json:"note_no"`
	Kind            string     `json:"kind"`
	Counterparty    string     `json:"counterparty"`
	CancellationID  *uuid.UUID `json:"cancellation_id,omitempty"`
	InitialAmount   string     `json:"initial_amount"`
	RemainingAmount string     `json:"remaining_amount"`
	Status          string     `json:"status"`
	CreatedAt       string     `json:"created_at"`

	Usages []CreditNoteUsageResponse `json:"usages,omitempty"`
}

// CreditNoteUsageResponse is one draw already made against a note.
type CreditNoteUsageResponse struct {
	ID            uuid.UUID `json:"id"`
	AmountUsed    string    `json:"amount_used"`
	AppliedToKind string    `json:"applied_to_kind"`
	AppliedToID   uuid.UUID `json:"applied_to_id"`
	CreatedAt     string    `json:"created_at"`
}

// CreditNoteService issues and spends credit notes. Apply* and Issue* run
// inside the caller's transaction: the note decrement, the usage record and
// the funded payment commit or roll back together.
type CreditNoteService interface {
	// ApplyCustomerNotes draws the requested amounts from the customer's notes
	// to cover exactly requiredCover. Notes are locked for the duration of the
	// transaction; any validation failure rejects the whole operation.
	ApplyCustomerNotes(ctx context.Context, customerName string, lines []CreditNoteLineRequest, requiredCover decimal.Decimal, appliedToKind string, appliedToID uuid.UUID) error
	ApplySupplierNotes(ctx context.Context, supplierName string, lines []CreditNoteLineRequest, requiredCover decimal.Decimal, appliedToKind string, appliedToID uuid.UUID) error

	IssueCustomerNote(ctx context.Context, customerName string, amount decimal.Decimal, cancellationID, originBookingID *uuid.UUID) (*model.CustomerCreditNote, error)
	IssueSupplierNote(ctx context.Context, supplierID uuid.UUID, supplierName string, amount decimal.Decimal, cancellationID, originBookingID *uuid.UUID) (*model.SupplierCreditNote, error)

	GetCustomerNote(ctx context.Context, id string) (*CreditNoteResponse, error)
	GetSupplierNote(ctx context.Context, id string) (*CreditNoteResponse, error)
	ListCustomerNotes(ctx context.Context, filter repository.CreditNoteListFilter) ([]CreditNoteResponse, int64, error)
	ListSupplierNotes(ctx context.Context, filter repository.CreditNoteListFilter) ([]CreditNoteResponse, int64, error)
}

type creditNoteService struct {
	noteRepo repository.CreditNoteRepository
}

func NewCreditNoteService(noteRepo repository.CreditNoteRepository) CreditNoteService {
	return &creditNoteService{noteRepo: noteRepo}
}

// parseLines converts request lines into engine application lines.
func parseLines(lines []CreditNoteLineRequest) ([]finance.ApplicationLine, []uuid.UUID, error) {
	parsed := make([]finance.ApplicationLine, 0, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		noteID, err := uuid.Parse(line.NoteID)
		if err != nil {
			return nil, nil, apperror.Validation("invalid credit note id %q", line.NoteID)
		}
		amount, err := decimal.NewFromString(line.Amount)
		if err != nil {
			return nil, nil, apperror.Validation("invalid credit note amount %q", line.Amount)
		}
		parsed = append(parsed, finance.ApplicationLine{NoteID: noteID, Amount: amount})
		ids = append(ids, noteID)
	}
	return parsed, ids, nil
}

func (s *creditNoteService) ApplyCustomerNotes(ctx context.Context, customerName string, lines []CreditNoteLineRequest, requiredCover decimal.Decimal, appliedToKind string, appliedToID uuid.UUID) error {
	parsed, ids, err := parseLines(lines)
	if err != nil {
		return err
	}

	notes, err := s.noteRepo.FindCustomerNotesForUpdate(ctx, ids)
	if err != nil {
		return err
	}

	states := make([]finance.NoteState, 0, len(notes))
	for _, n := range notes {
		states = append(states, finance.NoteState{
			ID:           n.ID,
			Counterparty: n.CustomerName,
			Remaining:    n.RemainingAmount,
			Spent:        n.Status == model.CreditNoteUsed,
		})
	}

	if err := finance.ValidateCreditNoteApplication(states, parsed, requiredCover, customerName); err != nil {
		return err
	}

	drawn := accumulateDraws(parsed)
	for i := range notes {
		draw := drawn[notes[i].ID]
		if draw.IsZero() {
			continue
		}
		notes[i].RemainingAmount = notes[i].RemainingAmount.Sub(draw)
		notes[i].Status = model.CreditNoteStatusFor(notes[i].InitialAmount, notes[i].RemainingAmount)
		if err := s.noteRepo.UpdateCustomerNote(ctx, &notes[i]); err != nil {
			return err
		}
		if err := s.noteRepo.CreateUsage(ctx, &model.CreditNoteUsage{
			NoteKind:      model.NoteKindCustomer,
			NoteID:        notes[i].ID,
			AmountUsed:    draw,
			AppliedToKind: appliedToKind,
			AppliedToID:   appliedToID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *creditNoteService) ApplySupplierNotes(ctx context.Context, supplierName string, lines []CreditNoteLineRequest, requiredCover decimal.Decimal, appliedToKind string, appliedToID uuid.UUID) error {
	parsed, ids, err := parseLines(lines)
	if err != nil {
		return err
	}

	notes, err := s.noteRepo.FindSupplierNotesForUpdate(ctx, ids)
	if err != nil {
		return err
	}

	states := make([]finance.NoteState, 0, len(notes))
	for _, n := range notes {
		states = append(states, finance.NoteState{
			ID:           n.ID,
			Counterparty: n.SupplierName,
			Remaining:    n.RemainingAmount,
			Spent:        n.Status == model.CreditNoteUsed,
		})
	}

	if err := finance.ValidateCreditNoteApplication(states, parsed, requiredCover, supplierName); err != nil {
		return err
	}

	drawn := accumulateDraws(parsed)
	for i := range notes {
		draw := drawn[notes[i].ID]
		if draw.IsZero() {
			continue
		}
		notes[i].RemainingAmount = notes[i].RemainingAmount.Sub(draw)
		notes[i].Status = model.CreditNoteStatusFor(notes[i].InitialAmount, notes[i].RemainingAmount)
		if err := s.noteRepo.UpdateSupplierNote(ctx, &notes[i]); err != nil {
			return err
		}
		if err := s.noteRepo.CreateUsage(ctx, &model.CreditNoteUsage{
			NoteKind:      model.NoteKindSupplier,
			NoteID:        notes[i].ID,
			AmountUsed:    draw,
			AppliedToKind: appliedToKind,
			AppliedToID:   appliedToID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func accumulateDraws(lines []finance.ApplicationLine) map[uuid.UUID]decimal.Decimal {
	drawn := make(map[uuid.UUID]decimal.Decimal, len(lines))
	for _, line := range lines {
		drawn[line.NoteID] = drawn[line.NoteID].Add(line.Amount)
	}
	return drawn
}

// nextNoteNo produces sequential note numbers like CCN-20260830-0004.
func (s *creditNoteService) nextNoteNo(ctx context.Context, noteKind, tag string) (string, error) {
	prefix := fmt.Sprintf("%s-%s", tag, time.Now().Format("20060102"))
	count, err := s.noteRepo.CountByPrefix(ctx, noteKind, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, count+1), nil
}

func (s *creditNoteService) IssueCustomerNote(ctx context.Context, customerName string, amount decimal.Decimal, cancellationID, originBookingID *uuid.UUID) (*model.CustomerCreditNote, error) {
	if !amount.IsPositive() {
		return nil, apperror.Validation("credit note amount must be positive")
	}
	noteNo, err := s.nextNoteNo(ctx, model.NoteKindCustomer, "CCN")
	if err != nil {
		return nil, err
	}
	note := &model.CustomerCreditNote{
		NoteNo:          noteNo,
		CustomerName:    customerName,
		CancellationID:  cancellationID,
		OriginBookingID: originBookingID,
		InitialAmount:   amount,
		RemainingAmount: amount,
		Status:          model.CreditNoteAvailable,
	}
	if err := s.noteRepo.CreateCustomerNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *creditNoteService) IssueSupplierNote(ctx context.Context, supplierID uuid.UUID, supplierName string, amount decimal.Decimal, cancellationID, originBookingID *uuid.UUID) (*model.SupplierCreditNote, error) {
	if !amount.IsPositive() {
		return nil, apperror.Validation("credit note amount must be positive")
	}
	noteNo, err := s.nextNoteNo(ctx, model.NoteKindSupplier, "SCN")
	if err != nil {
		return nil, err
	}
	note := &model.SupplierCreditNote{
		NoteNo:          noteNo,
		SupplierID:      supplierID,
		SupplierName:    supplierName,
		CancellationID:  cancellationID,
		OriginBookingID: originBookingID,
		InitialAmount:   amount,
		RemainingAmount: amount,
		Status:          model.CreditNoteAvailable,
	}
	if err := s.noteRepo.CreateSupplierNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func mapUsages(usages []model.CreditNoteUsage) []CreditNoteUsageResponse {
	responses := make([]CreditNoteUsageResponse, 0, len(usages))
	for _, u := range usages {
		responses = append(responses, CreditNoteUsageResponse{
			ID:            u.ID,
			AmountUsed:    u.AmountUsed.StringFixed(2),
			AppliedToKind: u.AppliedToKind,
			AppliedToID:   u.AppliedToID,
			CreatedAt:     u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return responses
}

func mapCustomerNote(n *model.CustomerCreditNote) CreditNoteResponse {
	return CreditNoteResponse{
		ID:              n.ID,
		NoteNo:          n.NoteNo,
		Kind:            model.NoteKindCustomer,
		Counterparty:    n.CustomerName,
		CancellationID:  n.CancellationID,
		InitialAmount:   n.InitialAmount.StringFixed(2),
		RemainingAmount: n.RemainingAmount.StringFixed(2),
		Status:          n.Status,
		CreatedAt:       n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func mapSupplierNote(n *model.SupplierCreditNote) CreditNoteResponse {
	return CreditNoteResponse{
		ID:              n.ID,
		NoteNo:          n.NoteNo,
		Kind:            model.NoteKindSupplier,
		Counterparty:    n.SupplierName,
		CancellationID:  n.CancellationID,
		InitialAmount:   n.InitialAmount.StringFixed(2),
		RemainingAmount: n.RemainingAmount.StringFixed(2),
		Status:          n.Status,
		CreatedAt:       n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *creditNoteService) GetCustomerNote(ctx context.Context, id string) (*CreditNoteResponse, error) {
	noteID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid credit note id")
	}
	note, err := s.noteRepo.FindCustomerNoteByID(ctx, noteID)
	if err != nil {
		return nil, lookupErr(err, "credit note %s not found", id)
	}
	usages, err := s.noteRepo.ListUsagesByNote(ctx, model.NoteKindCustomer, noteID)
	if err != nil {
		return nil, err
	}
	resp := mapCustomerNote(note)
	resp.Usages = mapUsages(usages)
	return &resp, nil
}

func (s *creditNoteService) GetSupplierNote(ctx context.Context, id string) (*CreditNoteResponse, error) {
	noteID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid credit note id")
	}
	note, err := s.noteRepo.FindSupplierNoteByID(ctx, noteID)
	if err != nil {
		return nil, lookupErr(err, "credit note %s not found", id)
	}
	usages, err := s.noteRepo.ListUsagesByNote(ctx, model.NoteKindSupplier, noteID)
	if err != nil {
		return nil, err
	}
	resp := mapSupplierNote(note)
	resp.Usages = mapUsages(usages)
	return &resp, nil
}

func (s *creditNoteService) ListCustomerNotes(ctx context.Context, filter repository.CreditNoteListFilter) ([]CreditNoteResponse, int64, error) {
	notes, total, err := s.noteRepo.ListCustomerNotes(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]CreditNoteResponse, 0, len(notes))
	for i := range notes {
		responses = append(responses, mapCustomerNote(&notes[i]))
	}
	return responses, total, nil
}

func (s *creditNoteService) ListSupplierNotes(ctx context.Context, filter repository.CreditNoteListFilter) ([]CreditNoteResponse, int64, error) {
	notes, total, err := s.noteRepo.ListSupplierNotes(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]CreditNoteResponse, 0, len(notes))
	for i := range notes {
		responses = append(responses, mapSupplierNote(&notes[i]))
	}
	return responses, total, nil
}
