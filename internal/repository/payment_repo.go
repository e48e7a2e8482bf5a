package repository

import (
	"context"

	"tourdesk-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	CreateInitialPayment(ctx context.Context, p *model.InitialPayment) error
	CreateInstalment(ctx context.Context, i *model.Instalment) error
	CreateInstalmentPayment(ctx context.Context, p *model.InstalmentPayment) error
	CreateRefundPayment(ctx context.Context, p *model.PassengerRefundPayment) error

	FindInstalmentByID(ctx context.Context, id uuid.UUID) (*model.Instalment, error)
	ListInitialPayments(ctx context.Context, bookingIDs []uuid.UUID) ([]model.InitialPayment, error)
	ListInstalments(ctx context.Context, bookingID uuid.UUID) ([]model.Instalment, error)
	ListInstalmentPayments(ctx context.Context, bookingIDs []uuid.UUID) ([]model.InstalmentPayment, error)
	ListRefundPayments(ctx context.Context, bookingIDs []uuid.UUID) ([]model.PassengerRefundPayment, error)
	ListOverdueInstalments(ctx context.Context) ([]model.Instalment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreateInitialPayment(ctx context.Context, p *model.InitialPayment) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *paymentRepository) CreateInstalment(ctx context.Context, i *model.Instalment) error {
	return GetDB(ctx, r.db).Create(i).Error
}

func (r *paymentRepository) CreateInstalmentPayment(ctx context.Context, p *model.InstalmentPayment) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *paymentRepository) CreateRefundPayment(ctx context.Context, p *model.PassengerRefundPayment) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *paymentRepository) FindInstalmentByID(ctx context.Context, id uuid.UUID) (*model.Instalment, error) {
	var instalment model.Instalment
	if err := GetDB(ctx, r.db).Preload("Payments").First(&instalment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &instalment, nil
}

func (r *paymentRepository) ListInitialPayments(ctx context.Context, bookingIDs []uuid.UUID) ([]model.InitialPayment, error) {
	var payments []model.InitialPayment
	if err := GetDB(ctx, r.db).Where("booking_id IN ?", bookingIDs).Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) ListInstalments(ctx context.Context, bookingID uuid.UUID) ([]model.Instalment, error) {
	var instalments []model.Instalment
	if err := GetDB(ctx, r.db).Preload("Payments").Where("booking_id = ?", bookingID).Order("due_date asc").Find(&instalments).Error; err != nil {
		return nil, err
	}
	return instalments, nil
}

func (r *paymentRepository) ListInstalmentPayments(ctx context.Context, bookingIDs []uuid.UUID) ([]model.InstalmentPayment, error) {
	var payments []model.InstalmentPayment
	if err := GetDB(ctx, r.db).Where("booking_id IN ?", bookingIDs).Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) ListRefundPayments(ctx context.Context, bookingIDs []uuid.UUID) ([]model.PassengerRefundPayment, error) {
	var refunds []model.PassengerRefundPayment
	if err := GetDB(ctx, r.db).Where("booking_id IN ?", bookingIDs).Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}

// ListOverdueInstalments returns instalments past due whose recorded payments
// do not yet cover the scheduled amount. Used by the reminder job only.
func (r *paymentRepository) ListOverdueInstalments(ctx context.Context) ([]model.Instalment, error) {
	var instalments []model.Instalment
	if err := GetDB(ctx, r.db).Preload("Payments").
		Where("due_date < CURRENT_TIMESTAMP").
		Order("due_date asc").Find(&instalments).Error; err != nil {
		return nil, err
	}
	return instalments, nil
}
