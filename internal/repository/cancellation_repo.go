package repository

import (
	"context"

	"tourdesk-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CancellationRepository interface {
	Create(ctx context.Context, c *model.Cancellation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cancellation, error)
	FindByChainRoot(ctx context.Context, chainRootID uuid.UUID) (*model.Cancellation, error)
	ExistsForChain(ctx context.Context, chainRootID uuid.UUID) (bool, error)
	Update(ctx context.Context, c *model.Cancellation) error
	List(ctx context.Context, page, limit int) ([]model.Cancellation, int64, error)
}

type cancellationRepository struct {
	db *gorm.DB
}

func NewCancellationRepository(db *gorm.DB) CancellationRepository {
	return &cancellationRepository{db: db}
}

func (r *cancellationRepository) Create(ctx context.Context, c *model.Cancellation) error {
	return GetDB(ctx, r.db).Create(c).Error
}

func (r *cancellationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Cancellation, error) {
	var cancellation model.Cancellation
	if err := GetDB(ctx, r.db).First(&cancellation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cancellation, nil
}

func (r *cancellationRepository) FindByChainRoot(ctx context.Context, chainRootID uuid.UUID) (*model.Cancellation, error) {
	var cancellation model.Cancellation
	if err := GetDB(ctx, r.db).First(&cancellation, "chain_root_id = ?", chainRootID).Error; err != nil {
		return nil, err
	}
	return &cancellation, nil
}

func (r *cancellationRepository) ExistsForChain(ctx context.Context, chainRootID uuid.UUID) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Cancellation{}).
		Where("chain_root_id = ?", chainRootID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *cancellationRepository) Update(ctx context.Context, c *model.Cancellation) error {
	return GetDB(ctx, r.db).Save(c).Error
}

func (r *cancellationRepository) List(ctx context.Context, page, limit int) ([]model.Cancellation, int64, error) {
	var cancellations []model.Cancellation
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Cancellation{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&cancellations).Error; err != nil {
		return nil, 0, err
	}

	return cancellations, total, nil
}
