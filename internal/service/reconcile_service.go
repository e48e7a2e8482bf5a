package service

import (
	"context"

	"tourdesk-backend/internal/finance"
	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReconcileService recomputes a booking's financial state from the full
// payment graph. Every mutating operation that touches money calls Recompute
// inside its own transaction; totals are derived from first principles each
// time, never patched incrementally.
type ReconcileService interface {
	Recompute(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error)
}

type reconcileService struct {
	bookingRepo   repository.BookingRepository
	paymentRepo   repository.PaymentRepository
	supplierRepo  repository.SupplierRepository
	payableRepo   repository.PayableRepository
	amendmentRepo repository.AmendmentRepository
	commission    CommissionService
	publisher     EventPublisher
	log           *logrus.Logger
}

func NewReconcileService(
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	supplierRepo repository.SupplierRepository,
	payableRepo repository.PayableRepository,
	amendmentRepo repository.AmendmentRepository,
	commission CommissionService,
	publisher EventPublisher,
	log *logrus.Logger,
) ReconcileService {
	return &reconcileService{
		bookingRepo:   bookingRepo,
		paymentRepo:   paymentRepo,
		supplierRepo:  supplierRepo,
		payableRepo:   payableRepo,
		amendmentRepo: amendmentRepo,
		commission:    commission,
		publisher:     publisher,
		log:           log,
	}
}

func (s *reconcileService) Recompute(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookingRepo.FindByIDForUpdate(ctx, bookingID)
	if err != nil {
		return nil, lookupErr(err, "booking %s not found", bookingID)
	}

	snapshot, err := s.loadSnapshot(ctx, booking)
	if err != nil {
		return nil, err
	}

	rec := finance.Recompute(snapshot)
	// Settlement is decided on the exact balance; the stored 2dp figure can
	// round a sub-tolerance remainder up to 0.01.
	settled := finance.Settled(rec.Balance)
	booking.TotalReceived = rec.TotalReceived.Round(2)
	booking.Balance = rec.Balance.Round(2)
	booking.Profit = rec.Profit.Round(2)

	completedNow := false
	if !booking.IsTerminal() {
		if settled {
			if booking.Status != model.BookingCompleted {
				booking.Status = model.BookingCompleted
				completedNow = true
			}
		} else if booking.Status == model.BookingCompleted {
			// A reversed amendment can reopen a settled balance.
			booking.Status = model.BookingConfirmed
		}
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	if completedNow {
		if err := s.commission.PostFinal(ctx, booking); err != nil {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"folder":     booking.FolderLabel(),
		}).Info("booking fully paid")
		if s.publisher != nil {
			s.publisher.Publish("booking.completed", map[string]interface{}{
				"booking_id": booking.ID.String(),
				"folder":     booking.FolderLabel(),
				"profit":     booking.Profit.StringFixed(2),
			})
		}
	}

	return booking, nil
}

// loadSnapshot assembles the booking's own payments plus the chain-wide flows
// that attach to it: customer payable settlements count only toward the chain
// root, supplier settlements are summed across the whole chain.
func (s *reconcileService) loadSnapshot(ctx context.Context, booking *model.Booking) (finance.LedgerSnapshot, error) {
	var snapshot finance.LedgerSnapshot
	snapshot.Revenue = booking.Revenue
	snapshot.ProdCost = booking.ProdCost
	snapshot.TransFee = booking.TransFee
	snapshot.Surcharge = booking.Surcharge

	ownID := []uuid.UUID{booking.ID}

	initial, err := s.paymentRepo.ListInitialPayments(ctx, ownID)
	if err != nil {
		return snapshot, err
	}
	for _, p := range initial {
		snapshot.InitialPayments = append(snapshot.InitialPayments, p.Amount)
	}

	instalment, err := s.paymentRepo.ListInstalmentPayments(ctx, ownID)
	if err != nil {
		return snapshot, err
	}
	for _, p := range instalment {
		snapshot.InstalmentPayments = append(snapshot.InstalmentPayments, p.Amount)
	}

	refunds, err := s.paymentRepo.ListRefundPayments(ctx, ownID)
	if err != nil {
		return snapshot, err
	}
	for _, p := range refunds {
		snapshot.PassengerRefunds = append(snapshot.PassengerRefunds, p.Amount)
	}

	if booking.ID == booking.ChainRootID {
		payableSettlements, err := s.payableRepo.ListCustomerSettlementsByChainRoot(ctx, booking.ChainRootID)
		if err != nil {
			return snapshot, err
		}
		for _, p := range payableSettlements {
			snapshot.CustomerPayableSettlements = append(snapshot.CustomerPayableSettlements, p.Amount)
		}
	}

	chain, err := s.bookingRepo.ListChain(ctx, booking.ChainRootID)
	if err != nil {
		return snapshot, err
	}
	chainIDs := make([]uuid.UUID, 0, len(chain))
	for _, member := range chain {
		chainIDs = append(chainIDs, member.ID)
	}

	supplierSettlements, err := s.supplierRepo.ListSettlements(ctx, chainIDs)
	if err != nil {
		return snapshot, err
	}
	for _, p := range supplierSettlements {
		snapshot.SupplierSettlements = append(snapshot.SupplierSettlements, p.Amount)
	}

	payableSettled, err := s.payableRepo.ListSupplierSettlementsByChainRoot(ctx, booking.ChainRootID)
	if err != nil {
		return snapshot, err
	}
	for _, p := range payableSettled {
		snapshot.SupplierSettlements = append(snapshot.SupplierSettlements, p.Amount)
	}

	amendments, err := s.amendmentRepo.ListActiveByBooking(ctx, booking.ID)
	if err != nil {
		return snapshot, err
	}
	for _, a := range amendments {
		snapshot.AmendmentDiffs = append(snapshot.AmendmentDiffs, a.Difference)
	}

	return snapshot, nil
}
