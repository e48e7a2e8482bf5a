package service

import (
	"context"
	"strings"

	"tourdesk-backend/internal/finance"
	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CancelChainRequest settles a whole booking chain. RefundMode selects how a
// positive customer difference comes back: CASH leaves a pending refund to pay
// out, CREDIT_NOTE issues a customer credit note immediately. SupplierID names
// the supplier charging the cancellation fee; the supplier-side credit note or
// payable is raised against it.
type CancelChainRequest struct {
	SupplierID              string `json:"supplier_id" binding:"required"`
	SupplierCancellationFee string `json:"supplier_cancellation_fee" binding:"required"`
	AdminFee                string `json:"admin_fee" binding:"required"`
	RefundMode              string `json:"refund_mode" binding:"required"`
}

type CancellationResponse struct {
	ID          uuid.UUID `json:"id"`
	Folder      string    `json:"folder"`
	ChainRootID uuid.UUID `json:"chain_root_id"`

	OriginalRevenue  string `json:"original_revenue"`
	OriginalProdCost string `json:"original_prod_cost"`
	TotalReceived    string `json:"total_received"`
	TotalPaidToSupp  string `json:"total_paid_to_supplier"`

	SupplierCancellationFee string `json:"supplier_cancellation_fee"`
	AdminFee                string `json:"admin_fee"`

	RefundToPassenger string `json:"refund_to_passenger"`
	PayableByCustomer string `json:"payable_by_customer"`
	RefundStatus      string `json:"refund_status"`

	CreditNoteAmount      string `json:"credit_note_amount"`
	SupplierCreditNoteAmt string `json:"supplier_credit_note_amount"`
	SupplierPayableAmt    string `json:"supplier_payable_amount"`
	ProfitOrLoss          string `json:"profit_or_loss"`

	CustomerCreditNoteID *uuid.UUID `json:"customer_credit_note_id,omitempty"`
	SupplierCreditNoteID *uuid.UUID `json:"supplier_credit_note_id,omitempty"`
	CustomerPayableID    *uuid.UUID `json:"customer_payable_id,omitempty"`
	SupplierPayableID    *uuid.UUID `json:"supplier_payable_id,omitempty"`

	CreatedAt string `json:"created_at"`
}

func mapCancellationResponse(c *model.Cancellation) *CancellationResponse {
	return &CancellationResponse{
		ID:                      c.ID,
		Folder:                  c.FolderLabel(),
		ChainRootID:             c.ChainRootID,
		OriginalRevenue:         c.OriginalRevenue.StringFixed(2),
		OriginalProdCost:        c.OriginalProdCost.StringFixed(2),
		TotalReceived:           c.TotalReceived.StringFixed(2),
		TotalPaidToSupp:         c.TotalPaidToSupp.StringFixed(2),
		SupplierCancellationFee: c.SupplierCancellationFee.StringFixed(2),
		AdminFee:                c.AdminFee.StringFixed(2),
		RefundToPassenger:       c.RefundToPassenger.StringFixed(2),
		PayableByCustomer:       c.PayableByCustomer.StringFixed(2),
		RefundStatus:            c.RefundStatus,
		CreditNoteAmount:        c.CreditNoteAmount.StringFixed(2),
		SupplierCreditNoteAmt:   c.SupplierCreditNoteAmt.StringFixed(2),
		SupplierPayableAmt:      c.SupplierPayableAmt.StringFixed(2),
		ProfitOrLoss:            c.ProfitOrLoss.StringFixed(2),
		CustomerCreditNoteID:    c.CustomerCreditNoteID,
		SupplierCreditNoteID:    c.SupplierCreditNoteID,
		CustomerPayableID:       c.CustomerPayableID,
		SupplierPayableID:       c.SupplierPayableRecordID,
		CreatedAt:               c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CancellationService settles booking chains. A chain is cancelled exactly
// once: the whole chain is locked, its money flows are aggregated, the
// settlement outcome is computed and all downstream records (credit notes,
// payables, refund state) are created in one transaction.
type CancellationService interface {
	CancelChain(ctx context.Context, userID, bookingID string, req CancelChainRequest) (*CancellationResponse, error)
	Get(ctx context.Context, id string) (*CancellationResponse, error)
	GetByChainRoot(ctx context.Context, chainRootID string) (*CancellationResponse, error)
	List(ctx context.Context, page, limit int) ([]CancellationResponse, int64, error)
}

type cancellationService struct {
	tx               repository.TransactionManager
	bookingRepo      repository.BookingRepository
	paymentRepo      repository.PaymentRepository
	supplierRepo     repository.SupplierRepository
	payableRepo      repository.PayableRepository
	cancellationRepo repository.CancellationRepository
	auditRepo        repository.AuditRepository
	creditNotes      CreditNoteService
	publisher        EventPublisher
	log              *logrus.Logger
}

func NewCancellationService(
	tx repository.TransactionManager,
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	supplierRepo repository.SupplierRepository,
	payableRepo repository.PayableRepository,
	cancellationRepo repository.CancellationRepository,
	auditRepo repository.AuditRepository,
	creditNotes CreditNoteService,
	publisher EventPublisher,
	log *logrus.Logger,
) CancellationService {
	return &cancellationService{
		tx:               tx,
		bookingRepo:      bookingRepo,
		paymentRepo:      paymentRepo,
		supplierRepo:     supplierRepo,
		payableRepo:      payableRepo,
		cancellationRepo: cancellationRepo,
		auditRepo:        auditRepo,
		creditNotes:      creditNotes,
		publisher:        publisher,
		log:              log,
	}
}

func (s *cancellationService) CancelChain(ctx context.Context, userID, bookingID string, req CancelChainRequest) (*CancellationResponse, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, apperror.Validation("invalid supplier id")
	}
	supplierFee, err := parseAmount("supplier_cancellation_fee", req.SupplierCancellationFee)
	if err != nil {
		return nil, err
	}
	adminFee, err := parseAmount("admin_fee", req.AdminFee)
	if err != nil {
		return nil, err
	}
	refundMode := strings.ToUpper(strings.TrimSpace(req.RefundMode))
	if refundMode != model.RefundModeCash && refundMode != model.RefundModeCreditNote {
		return nil, apperror.Validation("refund_mode must be CASH or CREDIT_NOTE")
	}

	var cancellation *model.Cancellation
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.FindByID(txCtx, bid)
		if err != nil {
			return lookupErr(err, "booking %s not found", bookingID)
		}

		chain, err := s.bookingRepo.ListChainForUpdate(txCtx, booking.ChainRootID)
		if err != nil {
			return err
		}
		exists, err := s.cancellationRepo.ExistsForChain(txCtx, booking.ChainRootID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.Conflict("chain %d has already been cancelled", booking.FolderNo)
		}
		for _, member := range chain {
			if member.Status == model.BookingCancelled {
				return apperror.Conflict("chain %d has already been cancelled", booking.FolderNo)
			}
		}

		supplier, err := s.supplierRepo.FindByID(txCtx, supplierID)
		if err != nil {
			return lookupErr(err, "supplier %s not found", supplierID)
		}

		input, err := s.aggregateChain(txCtx, booking.ChainRootID, chain)
		if err != nil {
			return err
		}
		input.SupplierCancellationFee = supplierFee
		input.AdminFee = adminFee

		outcome, err := finance.ComputeCancellation(input)
		if err != nil {
			return err
		}

		root := chain[0]
		for i := range chain {
			if chain[i].ID == chain[i].ChainRootID {
				root = chain[i]
				break
			}
		}

		revenue := decimal.Zero
		for _, member := range chain {
			if member.Status != model.BookingVoid {
				revenue = revenue.Add(member.Revenue)
			}
		}

		cancellation = &model.Cancellation{
			ChainRootID:             booking.ChainRootID,
			FolderNo:                root.FolderNo,
			OriginalRevenue:         revenue.Round(2),
			OriginalProdCost:        input.TotalOwedToSupplier.Round(2),
			TotalReceived:           input.TotalReceived.Round(2),
			TotalPaidToSupp:         input.TotalPaidToSupplier.Round(2),
			SupplierCancellationFee: supplierFee,
			AdminFee:                adminFee,
			RefundToPassenger:       outcome.RefundToPassenger.Round(2),
			PayableByCustomer:       outcome.PayableByCustomer.Round(2),
			RefundStatus:            model.RefundNA,
			SupplierCreditNoteAmt:   outcome.SupplierCreditNote.Round(2),
			SupplierPayableAmt:      outcome.SupplierPayable.Round(2),
			ProfitOrLoss:            outcome.ProfitOrLoss.Round(2),
		}

		if err := s.cancellationRepo.Create(txCtx, cancellation); err != nil {
			return err
		}

		if err := s.attachCustomerSide(txCtx, cancellation, root, outcome, refundMode); err != nil {
			return err
		}
		if err := s.attachSupplierSide(txCtx, cancellation, root, supplier, outcome); err != nil {
			return err
		}
		if err := s.cancellationRepo.Update(txCtx, cancellation); err != nil {
			return err
		}

		if err := s.bookingRepo.MarkChainCancelled(txCtx, booking.ChainRootID); err != nil {
			return err
		}

		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "Cancellation",
			RecordID: cancellation.ID.String(),
			Action:   model.ActionCreateCancellation,
			Details: auditDetails(map[string]interface{}{
				"chain_root_id":       cancellation.ChainRootID,
				"chain_size":          len(chain),
				"request":             req,
				"refund_to_passenger": cancellation.RefundToPassenger,
				"payable_by_customer": cancellation.PayableByCustomer,
				"profit_or_loss":      cancellation.ProfitOrLoss,
			}),
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"cancellation_id": cancellation.ID,
		"folder":          cancellation.FolderLabel(),
		"profit_or_loss":  cancellation.ProfitOrLoss.StringFixed(2),
	}).Info("chain cancelled")
	if s.publisher != nil {
		s.publisher.Publish("booking.cancelled", map[string]interface{}{
			"cancellation_id": cancellation.ID.String(),
			"folder":          cancellation.FolderLabel(),
		})
	}

	return mapCancellationResponse(cancellation), nil
}

// aggregateChain sums the money flows of all active (non-void) chain members.
func (s *cancellationService) aggregateChain(ctx context.Context, chainRootID uuid.UUID, chain []model.Booking) (finance.CancellationInput, error) {
	var input finance.CancellationInput

	activeIDs := make([]uuid.UUID, 0, len(chain))
	for _, member := range chain {
		if member.Status == model.BookingVoid {
			continue
		}
		activeIDs = append(activeIDs, member.ID)
		input.TotalOwedToSupplier = input.TotalOwedToSupplier.Add(member.ProdCost)
	}

	initial, err := s.paymentRepo.ListInitialPayments(ctx, activeIDs)
	if err != nil {
		return input, err
	}
	for _, p := range initial {
		input.TotalReceived = input.TotalReceived.Add(p.Amount)
	}

	instalment, err := s.paymentRepo.ListInstalmentPayments(ctx, activeIDs)
	if err != nil {
		return input, err
	}
	for _, p := range instalment {
		input.TotalReceived = input.TotalReceived.Add(p.Amount)
	}

	// Refunds already paid out reduce what the agency still holds; leaving
	// them in would refund that money a second time.
	refunds, err := s.paymentRepo.ListRefundPayments(ctx, activeIDs)
	if err != nil {
		return input, err
	}
	for _, r := range refunds {
		input.TotalReceived = input.TotalReceived.Sub(r.Amount)
	}

	settlements, err := s.supplierRepo.ListSettlements(ctx, activeIDs)
	if err != nil {
		return input, err
	}
	for _, p := range settlements {
		input.TotalPaidToSupplier = input.TotalPaidToSupplier.Add(p.Amount)
	}

	return input, nil
}

func (s *cancellationService) attachCustomerSide(ctx context.Context, c *model.Cancellation, root model.Booking, outcome finance.CancellationOutcome, refundMode string) error {
	switch {
	case outcome.RefundToPassenger.IsPositive():
		if refundMode == model.RefundModeCreditNote {
			note, err := s.creditNotes.IssueCustomerNote(ctx, root.CustomerName, outcome.RefundToPassenger.Round(2), &c.ID, &root.ID)
			if err != nil {
				return err
			}
			c.CustomerCreditNoteID = &note.ID
			c.CreditNoteAmount = note.InitialAmount
			c.RefundStatus = model.RefundCreditIssued
		} else {
			c.RefundStatus = model.RefundPending
		}
	case outcome.PayableByCustomer.IsPositive():
		payable := &model.CustomerPayable{
			CancellationID: c.ID,
			ChainRootID:    c.ChainRootID,
			CustomerName:   root.CustomerName,
			TotalAmount:    outcome.PayableByCustomer.Round(2),
			PaidAmount:     decimal.Zero,
			PendingAmount:  outcome.PayableByCustomer.Round(2),
			Status:         model.PayablePending,
		}
		if err := s.payableRepo.CreateCustomerPayable(ctx, payable); err != nil {
			return err
		}
		c.CustomerPayableID = &payable.ID
	}
	return nil
}

func (s *cancellationService) attachSupplierSide(ctx context.Context, c *model.Cancellation, root model.Booking, supplier *model.Supplier, outcome finance.CancellationOutcome) error {
	switch {
	case outcome.SupplierCreditNote.IsPositive():
		note, err := s.creditNotes.IssueSupplierNote(ctx, supplier.ID, supplier.Name, outcome.SupplierCreditNote.Round(2), &c.ID, &root.ID)
		if err != nil {
			return err
		}
		c.SupplierCreditNoteID = &note.ID
	case outcome.SupplierPayable.IsPositive():
		payable := &model.SupplierPayable{
			CancellationID: c.ID,
			ChainRootID:    c.ChainRootID,
			SupplierID:     supplier.ID,
			TotalAmount:    outcome.SupplierPayable.Round(2),
			PaidAmount:     decimal.Zero,
			PendingAmount:  outcome.SupplierPayable.Round(2),
			Status:         model.PayablePending,
		}
		if err := s.payableRepo.CreateSupplierPayable(ctx, payable); err != nil {
			return err
		}
		c.SupplierPayableRecordID = &payable.ID
	}
	return nil
}

func (s *cancellationService) Get(ctx context.Context, id string) (*CancellationResponse, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid cancellation id")
	}
	cancellation, err := s.cancellationRepo.FindByID(ctx, cid)
	if err != nil {
		return nil, lookupErr(err, "cancellation %s not found", id)
	}
	return mapCancellationResponse(cancellation), nil
}

func (s *cancellationService) GetByChainRoot(ctx context.Context, chainRootID string) (*CancellationResponse, error) {
	rid, err := uuid.Parse(chainRootID)
	if err != nil {
		return nil, apperror.Validation("invalid chain root id")
	}
	cancellation, err := s.cancellationRepo.FindByChainRoot(ctx, rid)
	if err != nil {
		return nil, lookupErr(err, "no cancellation for chain %s", chainRootID)
	}
	return mapCancellationResponse(cancellation), nil
}

func (s *cancellationService) List(ctx context.Context, page, limit int) ([]CancellationResponse, int64, error) {
	cancellations, total, err := s.cancellationRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]CancellationResponse, 0, len(cancellations))
	for i := range cancellations {
		responses = append(responses, *mapCancellationResponse(&cancellations[i]))
	}
	return responses, total, nil
}
