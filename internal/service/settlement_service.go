package service

import (
	"context"
	"time"

	"tourdesk-backend/internal/finance"
	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type PayableResponse struct {
	ID             uuid.UUID `json:"id"`
	Kind           string    `json:"kind"`
	CancellationID uuid.UUID `json:"cancellation_id"`
	ChainRootID    uuid.UUID `json:"chain_root_id"`
	Counterparty   string    `json:"counterparty,omitempty"`
	TotalAmount    string    `json:"total_amount"`
	PaidAmount     string    `json:"paid_amount"`
	PendingAmount  string    `json:"pending_amount"`
	Status         string    `json:"status"`
	CreatedAt      string    `json:"created_at"`
}

func mapSupplierPayable(p *model.SupplierPayable) PayableResponse {
	return PayableResponse{
		ID:             p.ID,
		Kind:           "SUPPLIER",
		CancellationID: p.CancellationID,
		ChainRootID:    p.ChainRootID,
		TotalAmount:    p.TotalAmount.StringFixed(2),
		PaidAmount:     p.PaidAmount.StringFixed(2),
		PendingAmount:  p.PendingAmount.StringFixed(2),
		Status:         p.Status,
		CreatedAt:      p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func mapCustomerPayable(p *model.CustomerPayable) PayableResponse {
	return PayableResponse{
		ID:             p.ID,
		Kind:           "CUSTOMER",
		CancellationID: p.CancellationID,
		ChainRootID:    p.ChainRootID,
		Counterparty:   p.CustomerName,
		TotalAmount:    p.TotalAmount.StringFixed(2),
		PaidAmount:     p.PaidAmount.StringFixed(2),
		PendingAmount:  p.PendingAmount.StringFixed(2),
		Status:         p.Status,
		CreatedAt:      p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// SettlementService settles cancellation payables in partial payments. The
// pending amount only ever decreases; a settlement exceeding it is rejected,
// and the payable flips to PAID when pending reaches zero within tolerance.
// Customer payables may be settled with customer credit notes, supplier
// payables with supplier credit notes.
type SettlementService interface {
	SettleSupplierPayable(ctx context.Context, userID, payableID string, req RecordPaymentRequest) (*PayableResponse, error)
	SettleCustomerPayable(ctx context.Context, userID, payableID string, req RecordPaymentRequest) (*PayableResponse, error)
	ListSupplierPayables(ctx context.Context, status string, page, limit int) ([]PayableResponse, int64, error)
	ListCustomerPayables(ctx context.Context, status string, page, limit int) ([]PayableResponse, int64, error)
}

type settlementService struct {
	tx           repository.TransactionManager
	payableRepo  repository.PayableRepository
	supplierRepo repository.SupplierRepository
	auditRepo    repository.AuditRepository
	creditNotes  CreditNoteService
	reconciler   ReconcileService
	log          *logrus.Logger
}

func NewSettlementService(
	tx repository.TransactionManager,
	payableRepo repository.PayableRepository,
	supplierRepo repository.SupplierRepository,
	auditRepo repository.AuditRepository,
	creditNotes CreditNoteService,
	reconciler ReconcileService,
	log *logrus.Logger,
) SettlementService {
	return &settlementService{
		tx:           tx,
		payableRepo:  payableRepo,
		supplierRepo: supplierRepo,
		auditRepo:    auditRepo,
		creditNotes:  creditNotes,
		reconciler:   reconciler,
		log:          log,
	}
}

// checkSettleAmount validates a settlement amount against the payable state.
func checkSettleAmount(amount, pending decimal.Decimal, status string) error {
	if status == model.PayablePaid {
		return apperror.Conflict("payable is already fully paid")
	}
	if amount.Sub(pending).GreaterThanOrEqual(finance.Tolerance) {
		return apperror.Conflict("settlement of %s exceeds the pending amount %s",
			amount.StringFixed(2), pending.StringFixed(2))
	}
	return nil
}

func (s *settlementService) SettleSupplierPayable(ctx context.Context, userID, payableID string, req RecordPaymentRequest) (*PayableResponse, error) {
	pid, err := uuid.Parse(payableID)
	if err != nil {
		return nil, apperror.Validation("invalid payable id")
	}
	amount, cover, method, err := parsePaymentRequest(req)
	if err != nil {
		return nil, err
	}

	var payable *model.SupplierPayable
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		payable, err = s.payableRepo.FindSupplierPayableForUpdate(txCtx, pid)
		if err != nil {
			return lookupErr(err, "supplier payable %s not found", payableID)
		}
		if err := checkSettleAmount(amount, payable.PendingAmount, payable.Status); err != nil {
			return err
		}

		settlement := &model.SupplierPayableSettlement{
			PayableID: payable.ID,
			Amount:    amount,
			Method:    method,
			PaidAt:    time.Now(),
		}
		if err := s.payableRepo.CreateSupplierSettlement(txCtx, settlement); err != nil {
			return err
		}

		if len(req.CreditNotes) > 0 {
			supplier, err := s.supplierRepo.FindByID(txCtx, payable.SupplierID)
			if err != nil {
				return lookupErr(err, "supplier %s not found", payable.SupplierID)
			}
			if err := s.creditNotes.ApplySupplierNotes(txCtx, supplier.Name, req.CreditNotes, cover, model.AppliedToPayableSettlement, settlement.ID); err != nil {
				return err
			}
		}

		payable.PaidAmount = payable.PaidAmount.Add(amount).Round(2)
		payable.PendingAmount = payable.TotalAmount.Sub(payable.PaidAmount).Round(2)
		if finance.Settled(payable.PendingAmount) {
			payable.PendingAmount = decimal.Zero
			payable.Status = model.PayablePaid
		}
		if err := s.payableRepo.UpdateSupplierPayable(txCtx, payable); err != nil {
			return err
		}

		// Supplier payable settlements are tracked on the payable alone; the
		// root booking's stored totals only follow money on the customer side.
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "SupplierPayable",
			RecordID: payable.ID.String(),
			Action:   model.ActionSettlementPayment,
			Details:  auditDetails(map[string]interface{}{"settlement_id": settlement.ID, "amount": amount, "method": method}),
		})
	})
	if err != nil {
		return nil, err
	}

	resp := mapSupplierPayable(payable)
	return &resp, nil
}

func (s *settlementService) SettleCustomerPayable(ctx context.Context, userID, payableID string, req RecordPaymentRequest) (*PayableResponse, error) {
	pid, err := uuid.Parse(payableID)
	if err != nil {
		return nil, apperror.Validation("invalid payable id")
	}
	amount, cover, method, err := parsePaymentRequest(req)
	if err != nil {
		return nil, err
	}

	var payable *model.CustomerPayable
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		payable, err = s.payableRepo.FindCustomerPayableForUpdate(txCtx, pid)
		if err != nil {
			return lookupErr(err, "customer payable %s not found", payableID)
		}
		if err := checkSettleAmount(amount, payable.PendingAmount, payable.Status); err != nil {
			return err
		}

		settlement := &model.CustomerPayableSettlement{
			PayableID: payable.ID,
			Amount:    amount,
			Method:    method,
			PaidAt:    time.Now(),
		}
		if err := s.payableRepo.CreateCustomerSettlement(txCtx, settlement); err != nil {
			return err
		}

		if len(req.CreditNotes) > 0 {
			if err := s.creditNotes.ApplyCustomerNotes(txCtx, payable.CustomerName, req.CreditNotes, cover, model.AppliedToPayableSettlement, settlement.ID); err != nil {
				return err
			}
		}

		payable.PaidAmount = payable.PaidAmount.Add(amount).Round(2)
		payable.PendingAmount = payable.TotalAmount.Sub(payable.PaidAmount).Round(2)
		if finance.Settled(payable.PendingAmount) {
			payable.PendingAmount = decimal.Zero
			payable.Status = model.PayablePaid
		}
		if err := s.payableRepo.UpdateCustomerPayable(txCtx, payable); err != nil {
			return err
		}

		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "CustomerPayable",
			RecordID: payable.ID.String(),
			Action:   model.ActionSettlementPayment,
			Details:  auditDetails(map[string]interface{}{"settlement_id": settlement.ID, "amount": amount, "method": method}),
		}); err != nil {
			return err
		}

		// Money in from the customer counts toward the chain root's received.
		_, err = s.reconciler.Recompute(txCtx, payable.ChainRootID)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := mapCustomerPayable(payable)
	return &resp, nil
}

func (s *settlementService) ListSupplierPayables(ctx context.Context, status string, page, limit int) ([]PayableResponse, int64, error) {
	payables, total, err := s.payableRepo.ListSupplierPayables(ctx, status, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]PayableResponse, 0, len(payables))
	for i := range payables {
		responses = append(responses, mapSupplierPayable(&payables[i]))
	}
	return responses, total, nil
}

func (s *settlementService) ListCustomerPayables(ctx context.Context, status string, page, limit int) ([]PayableResponse, int64, error) {
	payables, total, err := s.payableRepo.ListCustomerPayables(ctx, status, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]PayableResponse, 0, len(payables))
	for i := range payables {
		responses = append(responses, mapCustomerPayable(&payables[i]))
	}
	return responses, total, nil
}
