package service

import (
	"context"

	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"
)

type AuditEntryResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username,omitempty"`
	Model     string  `json:"model"`
	RecordID  string  `json:"record_id"`
	Action    string  `json:"action"`
	FieldName *string `json:"field_name,omitempty"`
	OldValue  *string `json:"old_value,omitempty"`
	NewValue  *string `json:"new_value,omitempty"`
	Details   string  `json:"details,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// AuditService exposes the read side of the audit trail. Writes happen inside
// the mutating services' transactions, never through this interface.
type AuditService interface {
	List(ctx context.Context, page, limit int) ([]AuditEntryResponse, int64, error)
	ListByRecord(ctx context.Context, modelName, recordID string) ([]AuditEntryResponse, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func mapAuditResponse(entry *model.AuditLog) AuditEntryResponse {
	resp := AuditEntryResponse{
		ID:        entry.ID.String(),
		Model:     entry.Model,
		RecordID:  entry.RecordID,
		Action:    entry.Action,
		FieldName: entry.FieldName,
		OldValue:  entry.OldValue,
		NewValue:  entry.NewValue,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if entry.User != nil {
		resp.Username = entry.User.Username
	}
	return resp
}

func (s *auditService) List(ctx context.Context, page, limit int) ([]AuditEntryResponse, int64, error) {
	entries, total, err := s.auditRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]AuditEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, mapAuditResponse(&entries[i]))
	}
	return responses, total, nil
}

func (s *auditService) ListByRecord(ctx context.Context, modelName, recordID string) ([]AuditEntryResponse, error) {
	entries, err := s.auditRepo.ListByRecord(ctx, modelName, recordID)
	if err != nil {
		return nil, err
	}
	responses := make([]AuditEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, mapAuditResponse(&entries[i]))
	}
	return responses, nil
}
