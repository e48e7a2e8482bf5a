package repository

import (
	"context"

	"tourdesk-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AmendmentRepository interface {
	Create(ctx context.Context, a *model.BookingAmendment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.BookingAmendment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.BookingAmendment, error)
	Update(ctx context.Context, a *model.BookingAmendment) error
	ListActiveByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.BookingAmendment, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.BookingAmendment, error)
}

type amendmentRepository struct {
	db *gorm.DB
}

func NewAmendmentRepository(db *gorm.DB) AmendmentRepository {
	return &amendmentRepository{db: db}
}

func (r *amendmentRepository) Create(ctx context.Context, a *model.BookingAmendment) error {
	return GetDB(ctx, r.db).Create(a).Error
}

func (r *amendmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.BookingAmendment, error) {
	var amendment model.BookingAmendment
	if err := GetDB(ctx, r.db).First(&amendment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &amendment, nil
}

func (r *amendmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.BookingAmendment, error) {
	var amendment model.BookingAmendment
	if err := GetDBForUpdate(ctx, r.db).First(&amendment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &amendment, nil
}

func (r *amendmentRepository) Update(ctx context.Context, a *model.BookingAmendment) error {
	return GetDB(ctx, r.db).Save(a).Error
}

func (r *amendmentRepository) ListActiveByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.BookingAmendment, error) {
	var amendments []model.BookingAmendment
	if err := GetDB(ctx, r.db).Where("booking_id = ? AND is_reversed = ?", bookingID, false).
		Find(&amendments).Error; err != nil {
		return nil, err
	}
	return amendments, nil
}

func (r *amendmentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.BookingAmendment, error) {
	var amendments []model.BookingAmendment
	if err := GetDB(ctx, r.db).Where("booking_id = ?", bookingID).
		Order("created_at asc").Find(&amendments).Error; err != nil {
		return nil, err
	}
	return amendments, nil
}
