package service

import (
	"context"
	"fmt"

	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DTOs for request validation
type CreateBookingRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	AgentID       string `json:"agent_id" binding:"required"`
	Revenue       string `json:"revenue" binding:"required"`
	ProdCost      string `json:"prod_cost" binding:"required"`
	TransFee      string `json:"trans_fee"`
	Surcharge     string `json:"surcharge"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// DateChangeRequest creates a date-change child under an existing booking.
// Customer and agent are inherited from the parent; the child carries its own
// financials and payment plan.
type DateChangeRequest struct {
	Revenue       string `json:"revenue" binding:"required"`
	ProdCost      string `json:"prod_cost" binding:"required"`
	TransFee      string `json:"trans_fee"`
	Surcharge     string `json:"surcharge"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type UpdateBookingFinancialsRequest struct {
	Revenue       *string `json:"revenue"`
	ProdCost      *string `json:"prod_cost"`
	TransFee      *string `json:"trans_fee"`
	Surcharge     *string `json:"surcharge"`
	PaymentMethod *string `json:"payment_method"`
}

type BookingResponse struct {
	ID              uuid.UUID  `json:"id"`
	Folder          string     `json:"folder"`
	RefNo           string     `json:"ref_no"`
	RecordKind      string     `json:"record_kind"`
	ChainRootID     uuid.UUID  `json:"chain_root_id"`
	ParentBookingID *uuid.UUID `json:"parent_booking_id,omitempty"`
	CustomerName    string     `json:"customer_name"`
	Status          string     `json:"status"`
	AgentID         uuid.UUID  `json:"agent_id"`
	AgentName       string     `json:"agent_name,omitempty"`
	Revenue         string     `json:"revenue"`
	ProdCost        string     `json:"prod_cost"`
	TransFee        string     `json:"trans_fee"`
	Surcharge       string     `json:"surcharge"`
	TotalReceived   string     `json:"total_received"`
	Balance         string     `json:"balance"`
	Profit          string     `json:"profit"`
	PaymentMethod   string     `json:"payment_method"`
	CreatedAt       string     `json:"created_at"`
}

// BookingDetailResponse is the folder view: the booking plus its chain
// siblings and payment history.
type BookingDetailResponse struct {
	BookingResponse
	Chain       []BookingResponse         `json:"chain"`
	Instalments []InstalmentResponse      `json:"instalments"`
	Amendments  []AmendmentResponse       `json:"amendments"`
	Commissions []CommissionEntryResponse `json:"commissions"`
}

type BookingService interface {
	Create(ctx context.Context, userID string, req CreateBookingRequest) (*BookingResponse, error)
	CreateDateChange(ctx context.Context, userID, parentID string, req DateChangeRequest) (*BookingResponse, error)
	Approve(ctx context.Context, userID, id string) (*BookingResponse, error)
	UpdateFinancials(ctx context.Context, userID, id string, req UpdateBookingFinancialsRequest) (*BookingResponse, error)
	Void(ctx context.Context, userID, id string) (*BookingResponse, error)
	Unvoid(ctx context.Context, userID, id string) (*BookingResponse, error)
	Get(ctx context.Context, id string) (*BookingDetailResponse, error)
	List(ctx context.Context, filter repository.BookingListFilter) ([]BookingResponse, int64, error)
}

type bookingService struct {
	tx               repository.TransactionManager
	bookingRepo      repository.BookingRepository
	agentRepo        repository.AgentRepository
	paymentRepo      repository.PaymentRepository
	amendmentRepo    repository.AmendmentRepository
	cancellationRepo repository.CancellationRepository
	commissionRepo   repository.CommissionRepository
	auditRepo        repository.AuditRepository
	commission       CommissionService
	reconciler       ReconcileService
	log              *logrus.Logger
}

func NewBookingService(
	tx repository.TransactionManager,
	bookingRepo repository.BookingRepository,
	agentRepo repository.AgentRepository,
	paymentRepo repository.PaymentRepository,
	amendmentRepo repository.AmendmentRepository,
	cancellationRepo repository.CancellationRepository,
	commissionRepo repository.CommissionRepository,
	auditRepo repository.AuditRepository,
	commission CommissionService,
	reconciler ReconcileService,
	log *logrus.Logger,
) BookingService {
	return &bookingService{
		tx:               tx,
		bookingRepo:      bookingRepo,
		agentRepo:        agentRepo,
		paymentRepo:      paymentRepo,
		amendmentRepo:    amendmentRepo,
		cancellationRepo: cancellationRepo,
		commissionRepo:   commissionRepo,
		auditRepo:        auditRepo,
		commission:       commission,
		reconciler:       reconciler,
		log:              log,
	}
}

func mapBookingResponse(b *model.Booking) *BookingResponse {
	plan := model.PaymentPlan{Schedule: b.Schedule, PrimaryMethod: b.PrimaryMethod, SecondaryMethod: b.SecondaryMethod}
	resp := &BookingResponse{
		ID:              b.ID,
		Folder:          b.FolderLabel(),
		RefNo:           b.RefNo,
		RecordKind:      b.RecordKind,
		ChainRootID:     b.ChainRootID,
		ParentBookingID: b.ParentBookingID,
		CustomerName:    b.CustomerName,
		Status:          b.Status,
		AgentID:         b.AgentID,
		Revenue:         b.Revenue.StringFixed(2),
		ProdCost:        b.ProdCost.StringFixed(2),
		TransFee:        b.TransFee.StringFixed(2),
		Surcharge:       b.Surcharge.StringFixed(2),
		TotalReceived:   b.TotalReceived.StringFixed(2),
		Balance:         b.Balance.StringFixed(2),
		Profit:          b.Profit.StringFixed(2),
		PaymentMethod:   plan.MethodString(),
		CreatedAt:       b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if b.Agent != nil {
		resp.AgentName = b.Agent.Name
	}
	return resp
}

type bookingFinancials struct {
	revenue   decimal.Decimal
	prodCost  decimal.Decimal
	transFee  decimal.Decimal
	surcharge decimal.Decimal
	plan      model.PaymentPlan
}

func parseBookingFinancials(revenue, prodCost, transFee, surcharge, paymentMethod string) (bookingFinancials, error) {
	var f bookingFinancials
	var err error
	if f.revenue, err = parseAmount("revenue", revenue); err != nil {
		return f, err
	}
	if f.prodCost, err = parseAmount("prod_cost", prodCost); err != nil {
		return f, err
	}
	if f.transFee, err = parseOptionalAmount("trans_fee", transFee); err != nil {
		return f, err
	}
	if f.surcharge, err = parseOptionalAmount("surcharge", surcharge); err != nil {
		return f, err
	}
	if f.plan, err = model.ParsePaymentPlan(paymentMethod); err != nil {
		return f, apperror.Validation("%v", err)
	}
	return f, nil
}

func (f bookingFinancials) profit() decimal.Decimal {
	return f.revenue.Sub(f.prodCost).Sub(f.transFee).Sub(f.surcharge)
}

func (s *bookingService) Create(ctx context.Context, userID string, req CreateBookingRequest) (*BookingResponse, error) {
	fin, err := parseBookingFinancials(req.Revenue, req.ProdCost, req.TransFee, req.Surcharge, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	agentID, err := uuid.Parse(req.AgentID)
	if err != nil {
		return nil, apperror.Validation("invalid agent id")
	}

	var booking *model.Booking
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.agentRepo.FindByID(txCtx, agentID); err != nil {
			return lookupErr(err, "agent %s not found", agentID)
		}

		folderNo, err := s.bookingRepo.NextFolderNo(txCtx)
		if err != nil {
			return err
		}

		booking = &model.Booking{
			FolderNo:        folderNo,
			ChildSeq:        0,
			RecordKind:      model.RecordKindOriginal,
			RefNo:           fmt.Sprintf("TDK-%05d", folderNo),
			CustomerName:    req.CustomerName,
			Status:          model.BookingPending,
			AgentID:         agentID,
			Revenue:         fin.revenue,
			ProdCost:        fin.prodCost,
			TransFee:        fin.transFee,
			Surcharge:       fin.surcharge,
			TotalReceived:   decimal.Zero,
			Balance:         fin.revenue,
			Profit:          fin.profit(),
			Schedule:        fin.plan.Schedule,
			PrimaryMethod:   fin.plan.PrimaryMethod,
			SecondaryMethod: fin.plan.SecondaryMethod,
		}
		if err := s.bookingRepo.Create(txCtx, booking); err != nil {
			return err
		}

		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "Booking",
			RecordID: booking.ID.String(),
			Action:   model.ActionCreate,
			Details:  auditDetails(req),
		}); err != nil {
			return err
		}

		return s.commission.PostInitial(txCtx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": booking.ID, "folder": booking.FolderLabel()}).Info("booking created")
	return mapBookingResponse(booking), nil
}

func (s *bookingService) CreateDateChange(ctx context.Context, userID, parentID string, req DateChangeRequest) (*BookingResponse, error) {
	fin, err := parseBookingFinancials(req.Revenue, req.ProdCost, req.TransFee, req.Surcharge, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	pid, err := uuid.Parse(parentID)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}

	var booking *model.Booking
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		parent, err := s.bookingRepo.FindByIDForUpdate(txCtx, pid)
		if err != nil {
			return lookupErr(err, "booking %s not found", parentID)
		}
		if parent.IsTerminal() {
			return apperror.Conflict("cannot add a date change to a %s booking", parent.Status)
		}

		seq, err := s.bookingRepo.NextChildSeq(txCtx, parent.ChainRootID)
		if err != nil {
			return err
		}

		booking = &model.Booking{
			FolderNo:        parent.FolderNo,
			ChildSeq:        seq,
			RecordKind:      model.RecordKindDateChange,
			ChainRootID:     parent.ChainRootID,
			ParentBookingID: &parent.ID,
			RefNo:           fmt.Sprintf("TDK-%05d-%d", parent.FolderNo, seq),
			CustomerName:    parent.CustomerName,
			Status:          model.BookingPending,
			AgentID:         parent.AgentID,
			Revenue:         fin.revenue,
			ProdCost:        fin.prodCost,
			TransFee:        fin.transFee,
			Surcharge:       fin.surcharge,
			TotalReceived:   decimal.Zero,
			Balance:         fin.revenue,
			Profit:          fin.profit(),
			Schedule:        fin.plan.Schedule,
			PrimaryMethod:   fin.plan.PrimaryMethod,
			SecondaryMethod: fin.plan.SecondaryMethod,
		}
		if err := s.bookingRepo.Create(txCtx, booking); err != nil {
			return err
		}

		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "Booking",
			RecordID: booking.ID.String(),
			Action:   model.ActionCreate,
			Details:  auditDetails(map[string]interface{}{"parent_booking_id": parent.ID, "request": req}),
		}); err != nil {
			return err
		}

		return s.commission.PostInitial(txCtx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": booking.ID, "folder": booking.FolderLabel()}).Info("date change created")
	return mapBookingResponse(booking), nil
}

func (s *bookingService) Approve(ctx context.Context, userID, id string) (*BookingResponse, error) {
	bid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}

	var booking *model.Booking
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		booking, err = s.bookingRepo.FindByIDForUpdate(txCtx, bid)
		if err != nil {
			return lookupErr(err, "booking %s not found", id)
		}
		if booking.Status != model.BookingPending {
			return apperror.Conflict("booking %s is %s, only PENDING bookings can be approved", booking.FolderLabel(), booking.Status)
		}

		booking.Status = model.BookingConfirmed
		if err := s.bookingRepo.Update(txCtx, booking); err != nil {
			return err
		}

		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:    parseActor(userID),
			Model:     "Booking",
			RecordID:  booking.ID.String(),
			Action:    model.ActionApproveBooking,
			FieldName: strPtr("status"),
			OldValue:  strPtr(model.BookingPending),
			NewValue:  strPtr(model.BookingConfirmed),
		})
	})
	if err != nil {
		return nil, err
	}
	return mapBookingResponse(booking), nil
}

func (s *bookingService) UpdateFinancials(ctx context.Context, userID, id string, req UpdateBookingFinancialsRequest) (*BookingResponse, error) {
	bid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}

	var booking *model.Booking
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		booking, err = s.bookingRepo.FindByIDForUpdate(txCtx, bid)
		if err != nil {
			return lookupErr(err, "booking %s not found", id)
		}
		if booking.IsTerminal() {
			return apperror.Conflict("booking %s is %s and can no longer be changed", booking.FolderLabel(), booking.Status)
		}

		before := mapBookingResponse(booking)

		if req.Revenue != nil {
			if booking.Revenue, err = parseAmount("revenue", *req.Revenue); err != nil {
				return err
			}
		}
		if req.ProdCost != nil {
			if booking.ProdCost, err = parseAmount("prod_cost", *req.ProdCost); err != nil {
				return err
			}
		}
		if req.TransFee != nil {
			if booking.TransFee, err = parseAmount("trans_fee", *req.TransFee); err != nil {
				return err
			}
		}
		if req.Surcharge != nil {
			if booking.Surcharge, err = parseAmount("surcharge", *req.Surcharge); err != nil {
				return err
			}
		}
		if req.PaymentMethod != nil {
			plan, err := model.ParsePaymentPlan(*req.PaymentMethod)
			if err != nil {
				return apperror.Validation("%v", err)
			}
			booking.Schedule = plan.Schedule
			booking.PrimaryMethod = plan.PrimaryMethod
			booking.SecondaryMethod = plan.SecondaryMethod
		}

		if err := s.bookingRepo.Update(txCtx, booking); err != nil {
			return err
		}

		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "Booking",
			RecordID: booking.ID.String(),
			Action:   model.ActionUpdate,
			Details:  auditDetails(map[string]interface{}{"before": before, "request": req}),
		}); err != nil {
			return err
		}

		// Balance and profit follow the new figures; initial commission is
		// re-targeted unless already frozen by a final reconciliation.
		if booking, err = s.reconciler.Recompute(txCtx, booking.ID); err != nil {
			return err
		}
		return s.commission.PostInitial(txCtx, booking)
	})
	if err != nil {
		return nil, err
	}
	return mapBookingResponse(booking), nil
}

func (s *bookingService) Void(ctx context.Context, userID, id string) (*BookingResponse, error) {
	bid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}

	var booking *model.Booking
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		booking, err = s.bookingRepo.FindByIDForUpdate(txCtx, bid)
		if err != nil {
			return lookupErr(err, "booking %s not found", id)
		}
		if booking.IsTerminal() {
			return apperror.Conflict("booking %s is already %s", booking.FolderLabel(), booking.Status)
		}

		oldStatus := booking.Status
		booking.Status = model.BookingVoid
		if err := s.bookingRepo.Update(txCtx, booking); err != nil {
			return err
		}

		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:    parseActor(userID),
			Model:     "Booking",
			RecordID:  booking.ID.String(),
			Action:    model.ActionVoidBooking,
			FieldName: strPtr("status"),
			OldValue:  strPtr(oldStatus),
			NewValue:  strPtr(model.BookingVoid),
		})
	})
	if err != nil {
		return nil, err
	}
	return mapBookingResponse(booking), nil
}

func (s *bookingService) Unvoid(ctx context.Context, userID, id string) (*BookingResponse, error) {
	bid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}

	var booking *model.Booking
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		booking, err = s.bookingRepo.FindByIDForUpdate(txCtx, bid)
		if err != nil {
			return lookupErr(err, "booking %s not found", id)
		}
		if booking.Status != model.BookingVoid {
			return apperror.Conflict("booking %s is %s, only VOID bookings can be restored", booking.FolderLabel(), booking.Status)
		}
		cancelled, err := s.cancellationRepo.ExistsForChain(txCtx, booking.ChainRootID)
		if err != nil {
			return err
		}
		if cancelled {
			return apperror.Conflict("chain %d has been cancelled, booking cannot be restored", booking.FolderNo)
		}

		booking.Status = model.BookingConfirmed
		if err := s.bookingRepo.Update(txCtx, booking); err != nil {
			return err
		}

		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:    parseActor(userID),
			Model:     "Booking",
			RecordID:  booking.ID.String(),
			Action:    model.ActionUnvoidBooking,
			FieldName: strPtr("status"),
			OldValue:  strPtr(model.BookingVoid),
			NewValue:  strPtr(model.BookingConfirmed),
		}); err != nil {
			return err
		}

		// The balance may already be settled, in which case restoring
		// completes the booking.
		booking, err = s.reconciler.Recompute(txCtx, booking.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mapBookingResponse(booking), nil
}

func (s *bookingService) Get(ctx context.Context, id string) (*BookingDetailResponse, error) {
	bid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid booking id")
	}

	booking, err := s.bookingRepo.FindByID(ctx, bid)
	if err != nil {
		return nil, lookupErr(err, "booking %s not found", id)
	}

	detail := &BookingDetailResponse{BookingResponse: *mapBookingResponse(booking)}

	chain, err := s.bookingRepo.ListChain(ctx, booking.ChainRootID)
	if err != nil {
		return nil, err
	}
	for i := range chain {
		detail.Chain = append(detail.Chain, *mapBookingResponse(&chain[i]))
	}

	instalments, err := s.paymentRepo.ListInstalments(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	for i := range instalments {
		detail.Instalments = append(detail.Instalments, mapInstalmentResponse(&instalments[i]))
	}

	amendments, err := s.amendmentRepo.ListByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	for i := range amendments {
		detail.Amendments = append(detail.Amendments, mapAmendmentResponse(&amendments[i]))
	}

	commissions, err := s.commissionRepo.ListByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	for i := range commissions {
		detail.Commissions = append(detail.Commissions, mapCommissionResponse(&commissions[i]))
	}

	return detail, nil
}

func (s *bookingService) List(ctx context.Context, filter repository.BookingListFilter) ([]BookingResponse, int64, error) {
	bookings, total, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, *mapBookingResponse(&bookings[i]))
	}
	return responses, total, nil
}
