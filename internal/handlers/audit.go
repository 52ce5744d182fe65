package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ykurohata/workorder-api/internal/dto"
	apierrors "github.com/ykurohata/workorder-api/internal/errors"
	"github.com/ykurohata/workorder-api/internal/services"
	"github.com/ykurohata/workorder-api/internal/utils"
)

// AuditHandler serves the audit trail to administrators.
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// ListAuditLogs returns a page of audit entries, newest first.
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	logs, total, err := h.auditService.List(params)
	if err != nil {
		apierrors.InternalError(c, "Failed to list audit logs")
		return
	}

	items := make([]dto.AuditLogDTO, len(logs))
	for i, entry := range logs {
		items[i] = dto.ToAuditLogDTO(entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"logs": items,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}
