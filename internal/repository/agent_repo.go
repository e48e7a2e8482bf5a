package repository

import (
	"context"

	"tourdesk-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AgentRepository interface {
	Create(ctx context.Context, agent *model.Agent) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Agent, error)
	FindByName(ctx context.Context, name string) (*model.Agent, error)
	List(ctx context.Context, page, limit int) ([]model.Agent, int64, error)
}

type agentRepository struct {
	db *gorm.DB
}

func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) Create(ctx context.Context, agent *model.Agent) error {
	return GetDB(ctx, r.db).Create(agent).Error
}

func (r *agentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Agent, error) {
	var agent model.Agent
	if err := GetDB(ctx, r.db).First(&agent, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// FindByName exists only as a backfill path for legacy rows that predate the
// mandatory agent foreign key.
func (r *agentRepository) FindByName(ctx context.Context, name string) (*model.Agent, error) {
	var agent model.Agent
	if err := GetDB(ctx, r.db).First(&agent, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) List(ctx context.Context, page, limit int) ([]model.Agent, int64, error) {
	var agents []model.Agent
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Agent{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&agents).Error; err != nil {
		return nil, 0, err
	}

	return agents, total, nil
}
