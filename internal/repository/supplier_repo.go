package repository

import (
	"context"

	"tourdesk-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, page, limit int) ([]model.Supplier, int64, error)

	CreateCostItem(ctx context.Context, item *model.CostItemSupplier) error
	FindCostItemByID(ctx context.Context, id uuid.UUID) (*model.CostItemSupplier, error)
	ListCostItems(ctx context.Context, bookingIDs []uuid.UUID) ([]model.CostItemSupplier, error)

	CreateSettlement(ctx context.Context, s *model.SupplierPaymentSettlement) error
	ListSettlements(ctx context.Context, bookingIDs []uuid.UUID) ([]model.SupplierPaymentSettlement, error)
}

type supplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(ctx context.Context, supplier *model.Supplier) error {
	return GetDB(ctx, r.db).Create(supplier).Error
}

func (r *supplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := GetDB(ctx, r.db).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepository) List(ctx context.Context, page, limit int) ([]model.Supplier, int64, error) {
	var suppliers []model.Supplier
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Supplier{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&suppliers).Error; err != nil {
		return nil, 0, err
	}

	return suppliers, total, nil
}

func (r *supplierRepository) CreateCostItem(ctx context.Context, item *model.CostItemSupplier) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *supplierRepository) FindCostItemByID(ctx context.Context, id uuid.UUID) (*model.CostItemSupplier, error) {
	var item model.CostItemSupplier
	if err := GetDB(ctx, r.db).Preload("Supplier").Preload("Settlements").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *supplierRepository) ListCostItems(ctx context.Context, bookingIDs []uuid.UUID) ([]model.CostItemSupplier, error) {
	var items []model.CostItemSupplier
	if err := GetDB(ctx, r.db).Preload("Supplier").Preload("Settlements").
		Where("booking_id IN ?", bookingIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *supplierRepository) CreateSettlement(ctx context.Context, s *model.SupplierPaymentSettlement) error {
	return GetDB(ctx, r.db).Create(s).Error
}

func (r *supplierRepository) ListSettlements(ctx context.Context, bookingIDs []uuid.UUID) ([]model.SupplierPaymentSettlement, error) {
	var settlements []model.SupplierPaymentSettlement
	if err := GetDB(ctx, r.db).Where("booking_id IN ?", bookingIDs).Find(&settlements).Error; err != nil {
		return nil, err
	}
	return settlements, nil
}
