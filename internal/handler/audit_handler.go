package handler

import (
	"net/http"

	"tourdesk-backend/internal/middleware"
	"tourdesk-backend/internal/service"
	"tourdesk-backend/pkg/pagination"
	"tourdesk-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audit := router.Group("/api/audit-logs")
	{
		audit.GET("", middleware.RequireRole("admin", "manager"), h.ListAuditLogs)
		audit.GET("/:model/:id", middleware.RequireRole("admin", "manager"), h.ListRecordHistory)
	}
}

// ListAuditLogs returns a paginated audit trail
// @Summary      List audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	entries, total, err := h.auditService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"audit_logs": entries,
		"total":      total,
		"page":       params.Page,
		"limit":      params.Limit,
	}))
}

// ListRecordHistory returns the audit trail for one record
// @Summary      Get record history
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        model  path      string  true  "Model name (e.g. Booking)"
// @Param        id     path      string  true  "Record ID"
// @Success      200    {object}  response.Response{data=[]service.AuditEntryResponse}
// @Router       /api/audit-logs/{model}/{id} [get]
func (h *AuditHandler) ListRecordHistory(c *gin.Context) {
	entries, err := h.auditService.ListByRecord(c.Request.Context(), c.Param("model"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}
