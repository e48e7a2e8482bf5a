package service

import (
	"context"
	"strings"
	"time"

	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DTOs for request validation
type CreateSupplierRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
}

type AddCostItemRequest struct {
	SupplierID  string `json:"supplier_id" binding:"required"`
	Description string `json:"description"`
	Amount      string `json:"amount" binding:"required"`
}

type SupplierResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt string    `json:"created_at"`
}

type CostItemResponse struct {
	ID           uuid.UUID `json:"id"`
	BookingID    uuid.UUID `json:"booking_id"`
	SupplierID   uuid.UUID `json:"supplier_id"`
	SupplierName string    `json:"supplier_name,omitempty"`
	Description  string    `json:"description"`
	Amount       string    `json:"amount"`
	Paid         string    `json:"paid"`
	CreatedAt    string    `json:"created_at"`
}

func mapSupplierResponse(s *model.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func mapCostItemResponse(item *model.CostItemSupplier) CostItemResponse {
	paid := decimal.Zero
	for _, s := range item.Settlements {
		paid = paid.Add(s.Amount)
	}
	resp := CostItemResponse{
		ID:          item.ID,
		BookingID:   item.BookingID,
		SupplierID:  item.SupplierID,
		Description: item.Description,
		Amount:      item.Amount.StringFixed(2),
		Paid:        paid.StringFixed(2),
		CreatedAt:   item.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if item.Supplier != nil {
		resp.SupplierName = item.Supplier.Name
	}
	return resp
}

// SupplierService manages suppliers, booking cost lines and payments out to
// suppliers. Supplier payments may be partially funded by supplier credit
// notes.
type SupplierService interface {
	CreateSupplier(ctx context.Context, userID string, req CreateSupplierRequest) (*SupplierResponse, error)
	ListSuppliers(ctx context.Context, page, limit int) ([]SupplierResponse, int64, error)
	AddCostItem(ctx context.Context, userID, bookingID string, req AddCostItemRequest) (*CostItemResponse, error)
	ListCostItems(ctx context.Context, bookingID string) ([]CostItemResponse, error)
	RecordSupplierPayment(ctx context.Context, userID, costItemID string, req RecordPaymentRequest) (*BookingResponse, error)
}

type supplierService struct {
	tx           repository.TransactionManager
	bookingRepo  repository.BookingRepository
	supplierRepo repository.SupplierRepository
	auditRepo    repository.AuditRepository
	creditNotes  CreditNoteService
	reconciler   ReconcileService
	log          *logrus.Logger
}

func NewSupplierService(
	tx repository.TransactionManager,
	bookingRepo repository.BookingRepository,
	supplierRepo repository.SupplierRepository,
	auditRepo repository.AuditRepository,
	creditNotes CreditNoteService,
	reconciler ReconcileService,
	log *logrus.Logger,
) SupplierService {
	return &supplierService{
		tx:           tx,
		bookingRepo:  bookingRepo,
		supplierRepo: supplierRepo,
		auditRepo:    auditRepo,
		creditNotes:  creditNotes,
		reconciler:   reconciler,
		log:          log,
	}
}

func (s *supplierService) CreateSupplier(ctx context.Context, userID string, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier := &model.Supplier{
		Name:  strings.TrimSpace(req.Name),
		Email: req.Email,
	}
	if supplier.Name == "" {
		return nil, apperror.Validation("supplier name is required")
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.supplierRepo.Create(txCtx, supplier); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "Supplier",
			RecordID: supplier.ID.String(),
			Action:   model.ActionCreate,
			Details:  auditDetails(req),
		})
	})
	if err != nil {
		return nil, err
	}

	resp := mapSupplierResponse(supplier)
	return &resp, nil
}

func (s *supplierService) ListSuppliers(ctx context.Context, page, limit int) ([]SupplierResponse, int64, error) {
	suppliers, total, err := s.supplierRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		responses = append(responses, mapSupplierResponse(&suppliers[i]))
	}
	return responses, total, nil
}

func (s *supplierService) AddCostItem(ctx context.Context, userID, bookingID string, req AddCostItemRequest) (*CostItemResponse, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, apperror.Validation("invalid supplier id")
	}
	amount, err := parsePositiveAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	var item *model.CostItemSupplier
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(txCtx, bid)
		if err != nil {
			return lookupErr(err, "booking %s not found", bookingID)
		}
		if booking.IsTerminal() {
			return apperror.Conflict("booking %s is %s and can no longer be changed", booking.FolderLabel(), booking.Status)
		}
		supplier, err := s.supplierRepo.FindByID(txCtx, supplierID)
		if err != nil {
			return lookupErr(err, "supplier %s not found", supplierID)
		}

		item = &model.CostItemSupplier{
			BookingID:   booking.ID,
			SupplierID:  supplier.ID,
			Description: req.Description,
			Amount:      amount,
		}
		if err := s.supplierRepo.CreateCostItem(txCtx, item); err != nil {
			return err
		}
		item.Supplier = supplier

		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "CostItemSupplier",
			RecordID: item.ID.String(),
			Action:   model.ActionCreate,
			Details:  auditDetails(map[string]interface{}{"booking_id": booking.ID, "supplier_id": supplier.ID, "amount": amount}),
		})
	})
	if err != nil {
		return nil, err
	}

	resp := mapCostItemResponse(item)
	return &resp, nil
}

func (s *supplierService) ListCostItems(ctx context.Context, bookingID string) ([]CostItemResponse, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}
	items, err := s.supplierRepo.ListCostItems(ctx, []uuid.UUID{bid})
	if err != nil {
		return nil, err
	}
	responses := make([]CostItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, mapCostItemResponse(&items[i]))
	}
	return responses, nil
}

func (s *supplierService) RecordSupplierPayment(ctx context.Context, userID, costItemID string, req RecordPaymentRequest) (*BookingResponse, error) {
	cid, err := uuid.Parse(costItemID)
	if err != nil {
		return nil, apperror.Validation("invalid cost item id")
	}
	amount, cover, method, err := parsePaymentRequest(req)
	if err != nil {
		return nil, err
	}

	var booking *model.Booking
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.supplierRepo.FindCostItemByID(txCtx, cid)
		if err != nil {
			return lookupErr(err, "cost item %s not found", costItemID)
		}
		booking, err = s.bookingRepo.FindByIDForUpdate(txCtx, item.BookingID)
		if err != nil {
			return lookupErr(err, "booking %s not found", item.BookingID)
		}
		if booking.IsTerminal() {
			return apperror.Conflict("booking %s is %s, supplier payments are no longer accepted", booking.FolderLabel(), booking.Status)
		}
		supplier, err := s.supplierRepo.FindByID(txCtx, item.SupplierID)
		if err != nil {
			return lookupErr(err, "supplier %s not found", item.SupplierID)
		}

		settlement := &model.SupplierPaymentSettlement{
			CostItemID: item.ID,
			BookingID:  booking.ID,
			Amount:     amount,
			Method:     method,
			PaidAt:     time.Now(),
		}
		if err := s.supplierRepo.CreateSettlement(txCtx, settlement); err != nil {
			return err
		}

		if len(req.CreditNotes) > 0 {
			if err := s.creditNotes.ApplySupplierNotes(txCtx, supplier.Name, req.CreditNotes, cover, model.AppliedToSupplierSettlement, settlement.ID); err != nil {
				return err
			}
		}

		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "Booking",
			RecordID: booking.ID.String(),
			Action:   model.ActionSupplierPayment,
			Details:  auditDetails(map[string]interface{}{"cost_item_id": item.ID, "settlement_id": settlement.ID, "amount": amount, "method": method}),
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
