package services

import (
	"fmt"

	"github.com/ykurohata/workorder-api/internal/models"
	"github.com/ykurohata/workorder-api/internal/repository"
	"github.com/ykurohata/workorder-api/internal/utils"
)

// AuditService exposes the audit trail to administrators
type AuditService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditService creates a new AuditService
func NewAuditService(auditRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// List returns a page of audit entries, newest first, with the total count
func (s *AuditService) List(params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	logs, total, err := s.auditRepo.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}
