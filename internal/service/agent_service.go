package service

import (
	"context"
	"strings"

	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/pkg/apperror"

	"github.com/google/uuid"
)

type CreateAgentRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
}

type AgentResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt string    `json:"created_at"`
}

func mapAgentResponse(a *model.Agent) AgentResponse {
	return AgentResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// AgentService manages the selling agents bookings are attributed to.
type AgentService interface {
	Create(ctx context.Context, userID string, req CreateAgentRequest) (*AgentResponse, error)
	Get(ctx context.Context, id string) (*AgentResponse, error)
	List(ctx context.Context, page, limit int) ([]AgentResponse, int64, error)
}

type agentService struct {
	tx        repository.TransactionManager
	agentRepo repository.AgentRepository
	auditRepo repository.AuditRepository
}

func NewAgentService(tx repository.TransactionManager, agentRepo repository.AgentRepository, auditRepo repository.AuditRepository) AgentService {
	return &agentService{tx: tx, agentRepo: agentRepo, auditRepo: auditRepo}
}

func (s *agentService) Create(ctx context.Context, userID string, req CreateAgentRequest) (*AgentResponse, error) {
	agent := &model.Agent{
		Name:  strings.TrimSpace(req.Name),
		Email: req.Email,
	}
	if agent.Name == "" {
		return nil, apperror.Validation("agent name is required")
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.agentRepo.Create(txCtx, agent); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:   parseActor(userID),
			Model:    "Agent",
			RecordID: agent.ID.String(),
			Action:   model.ActionCreate,
			Details:  auditDetails(req),
		})
	})
	if err != nil {
		return nil, err
	}

	resp := mapAgentResponse(agent)
	return &resp, nil
}

func (s *agentService) Get(ctx context.Context, id string) (*AgentResponse, error) {
	aid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid agent id")
	}
	agent, err := s.agentRepo.FindByID(ctx, aid)
	if err != nil {
		return nil, lookupErr(err, "agent %s not found", id)
	}
	resp := mapAgentResponse(agent)
	return &resp, nil
}

func (s *agentService) List(ctx context.Context, page, limit int) ([]AgentResponse, int64, error) {
	agents, total, err := s.agentRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]AgentResponse, 0, len(agents))
	for i := range agents {
		responses = append(responses, mapAgentResponse(&agents[i]))
	}
	return responses, total, nil
}
