package repository

import (
	"context"

	"tourdesk-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommissionRepository interface {
	Create(ctx context.Context, entry *model.CommissionEntry) error
	Update(ctx context.Context, entry *model.CommissionEntry) error
	FindByBookingAndType(ctx context.Context, bookingID uuid.UUID, entryType string) (*model.CommissionEntry, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.CommissionEntry, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, page, limit int) ([]model.CommissionEntry, int64, error)
}

type commissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

func (r *commissionRepository) Create(ctx context.Context, entry *model.CommissionEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *commissionRepository) Update(ctx context.Context, entry *model.CommissionEntry) error {
	return GetDB(ctx, r.db).Save(entry).Error
}

func (r *commissionRepository) FindByBookingAndType(ctx context.Context, bookingID uuid.UUID, entryType string) (*model.CommissionEntry, error) {
	var entry model.CommissionEntry
	if err := GetDB(ctx, r.db).First(&entry, "booking_id = ? AND entry_type = ?", bookingID, entryType).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *commissionRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.CommissionEntry, error) {
	var entries []model.CommissionEntry
	if err := GetDB(ctx, r.db).Preload("Agent").Where("booking_id = ?", bookingID).
		Order("created_at asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *commissionRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, page, limit int) ([]model.CommissionEntry, int64, error) {
	var entries []model.CommissionEntry
	var total int64

	query := GetDB(ctx, r.db).Model(&model.CommissionEntry{}).Where("agent_id = ?", agentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
