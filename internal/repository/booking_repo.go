package repository

import (
	"context"

	"tourdesk-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingListFilter struct {
	Status       string
	AgentID      *uuid.UUID
	CustomerName string
	Page         int
	Limit        int
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListChain(ctx context.Context, chainRootID uuid.UUID) ([]model.Booking, error)
	ListChainForUpdate(ctx context.Context, chainRootID uuid.UUID) ([]model.Booking, error)
	List(ctx context.Context, filter BookingListFilter) ([]model.Booking, int64, error)
	Update(ctx context.Context, booking *model.Booking) error
	MarkChainCancelled(ctx context.Context, chainRootID uuid.UUID) error
	NextFolderNo(ctx context.Context) (int, error)
	NextChildSeq(ctx context.Context, chainRootID uuid.UUID) (int, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return GetDB(ctx, r.db).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	if err := GetDB(ctx, r.db).Preload("Agent").First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	if err := GetDBForUpdate(ctx, r.db).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) ListChain(ctx context.Context, chainRootID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := GetDB(ctx, r.db).Where("chain_root_id = ?", chainRootID).Order("child_seq asc").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) ListChainForUpdate(ctx context.Context, chainRootID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := GetDBForUpdate(ctx, r.db).Where("chain_root_id = ?", chainRootID).Order("child_seq asc").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) List(ctx context.Context, filter BookingListFilter) ([]model.Booking, int64, error) {
	var bookings []model.Booking
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Booking{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AgentID != nil {
		query = query.Where("agent_id = ?", *filter.AgentID)
	}
	if filter.CustomerName != "" {
		query = query.Where("customer_name LIKE ?", "%"+filter.CustomerName+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Agent").Order("folder_no desc, child_seq asc").Offset(offset).Limit(filter.Limit).Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	return GetDB(ctx, r.db).Save(booking).Error
}

func (r *bookingRepository) MarkChainCancelled(ctx context.Context, chainRootID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Booking{}).
		Where("chain_root_id = ?", chainRootID).
		Update("status", model.BookingCancelled).Error
}

func (r *bookingRepository) NextFolderNo(ctx context.Context) (int, error) {
	var max int
	err := GetDB(ctx, r.db).Model(&model.Booking{}).
		Select("COALESCE(MAX(folder_no), 0)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *bookingRepository) NextChildSeq(ctx context.Context, chainRootID uuid.UUID) (int, error) {
	var max int
	err := GetDB(ctx, r.db).Model(&model.Booking{}).
		Where("chain_root_id = ?", chainRootID).
		Select("COALESCE(MAX(child_seq), 0)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}
