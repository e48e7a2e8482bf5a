package repository

import (
	"context"

	"tourdesk-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayableRepository interface {
	CreateSupplierPayable(ctx context.Context, p *model.SupplierPayable) error
	CreateCustomerPayable(ctx context.Context, p *model.CustomerPayable) error

	FindSupplierPayableByID(ctx context.Context, id uuid.UUID) (*model.SupplierPayable, error)
	FindCustomerPayableByID(ctx context.Context, id uuid.UUID) (*model.CustomerPayable, error)
	FindSupplierPayableForUpdate(ctx context.Context, id uuid.UUID) (*model.SupplierPayable, error)
	FindCustomerPayableForUpdate(ctx context.Context, id uuid.UUID) (*model.CustomerPayable, error)

	UpdateSupplierPayable(ctx context.Context, p *model.SupplierPayable) error
	UpdateCustomerPayable(ctx context.Context, p *model.CustomerPayable) error

	CreateSupplierSettlement(ctx context.Context, s *model.SupplierPayableSettlement) error
	CreateCustomerSettlement(ctx context.Context, s *model.CustomerPayableSettlement) error

	// Chain-wide sums feed the reconciliation engine.
	ListCustomerSettlementsByChainRoot(ctx context.Context, chainRootID uuid.UUID) ([]model.CustomerPayableSettlement, error)
	ListSupplierSettlementsByChainRoot(ctx context.Context, chainRootID uuid.UUID) ([]model.SupplierPayableSettlement, error)

	ListSupplierPayables(ctx context.Context, status string, page, limit int) ([]model.SupplierPayable, int64, error)
	ListCustomerPayables(ctx context.Context, status string, page, limit int) ([]model.CustomerPayable, int64, error)
}

type payableRepository struct {
	db *gorm.DB
}

func NewPayableRepository(db *gorm.DB) PayableRepository {
	return &payableRepository{db: db}
}

func (r *payableRepository) CreateSupplierPayable(ctx context.Context, p *model.SupplierPayable) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *payableRepository) CreateCustomerPayable(ctx context.Context, p *model.CustomerPayable) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *payableRepository) FindSupplierPayableByID(ctx context.Context, id uuid.UUID) (*model.SupplierPayable, error) {
	var payable model.SupplierPayable
	if err := GetDB(ctx, r.db).Preload("Settlements").First(&payable, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payable, nil
}

func (r *payableRepository) FindCustomerPayableByID(ctx context.Context, id uuid.UUID) (*model.CustomerPayable, error) {
	var payable model.CustomerPayable
	if err := GetDB(ctx, r.db).Preload("Settlements").First(&payable, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payable, nil
}

func (r *payableRepository) FindSupplierPayableForUpdate(ctx context.Context, id uuid.UUID) (*model.SupplierPayable, error) {
	var payable model.SupplierPayable
	if err := GetDBForUpdate(ctx, r.db).First(&payable, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payable, nil
}

func (r *payableRepository) FindCustomerPayableForUpdate(ctx context.Context, id uuid.UUID) (*model.CustomerPayable, error) {
	var payable model.CustomerPayable
	if err := GetDBForUpdate(ctx, r.db).First(&payable, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payable, nil
}

func (r *payableRepository) UpdateSupplierPayable(ctx context.Context, p *model.SupplierPayable) error {
	return GetDB(ctx, r.db).Save(p).Error
}

func (r *payableRepository) UpdateCustomerPayable(ctx context.Context, p *model.CustomerPayable) error {
	return GetDB(ctx, r.db).Save(p).Error
}

func (r *payableRepository) CreateSupplierSettlement(ctx context.Context, s *model.SupplierPayableSettlement) error {
	return GetDB(ctx, r.db).Create(s).Error
}

func (r *payableRepository) CreateCustomerSettlement(ctx context.Context, s *model.CustomerPayableSettlement) error {
	return GetDB(ctx, r.db).Create(s).Error
}

func (r *payableRepository) ListCustomerSettlementsByChainRoot(ctx context.Context, chainRootID uuid.UUID) ([]model.CustomerPayableSettlement, error) {
	var settlements []model.CustomerPayableSettlement
	err := GetDB(ctx, r.db).
		Joins("JOIN customer_payables ON customer_payables.id = customer_payable_settlements.payable_id").
		Where("customer_payables.chain_root_id = ?", chainRootID).
		Find(&settlements).Error
	if err != nil {
		return nil, err
	}
	return settlements, nil
}

func (r *payableRepository) ListSupplierSettlementsByChainRoot(ctx context.Context, chainRootID uuid.UUID) ([]model.SupplierPayableSettlement, error) {
	var settlements []model.SupplierPayableSettlement
	err := GetDB(ctx, r.db).
		Joins("JOIN supplier_payables ON supplier_payables.id = supplier_payable_settlements.payable_id").
		Where("supplier_payables.chain_root_id = ?", chainRootID).
		Find(&settlements).Error
	if err != nil {
		return nil, err
	}
	return settlements, nil
}

func (r *payableRepository) ListSupplierPayables(ctx context.Context, status string, page, limit int) ([]model.SupplierPayable, int64, error) {
	var payables []model.SupplierPayable
	var total int64

	query := GetDB(ctx, r.db).Model(&model.SupplierPayable{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Settlements").Order("created_at desc").Offset(offset).Limit(limit).Find(&payables).Error; err != nil {
		return nil, 0, err
	}
	return payables, total, nil
}

func (r *payableRepository) ListCustomerPayables(ctx context.Context, status string, page, limit int) ([]model.CustomerPayable, int64, error) {
	var payables []model.CustomerPayable
	var total int64

	query := GetDB(ctx, r.db).Model(&model.CustomerPayable{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Settlements").Order("created_at desc").Offset(offset).Limit(limit).Find(&payables).Error; err != nil {
		return nil, 0, err
	}
	return payables, total, nil
}
