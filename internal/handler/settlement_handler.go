package handler

import (
	"net/http"

	"tourdesk-backend/internal/middleware"
	"tourdesk-backend/internal/service"
	"tourdesk-backend/pkg/pagination"
	"tourdesk-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettlementHandler struct {
	settlementService service.SettlementService
}

func NewSettlementHandler(settlementService service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

func (h *SettlementHandler) RegisterRoutes(router *gin.RouterGroup) {
	supplierPayables := router.Group("/api/supplier-payables")
	{
		supplierPayables.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListSupplierPayables)
		supplierPayables.POST("/:id/settlements", middleware.RequireRole("admin", "manager"), h.SettleSupplierPayable)
	}

	customerPayables := router.Group("/api/customer-payables")
	{
		customerPayables.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListCustomerPayables)
		customerPayables.POST("/:id/settlements", middleware.RequireRole("admin", "manager", "staff"), h.SettleCustomerPayable)
	}
}

// SettleSupplierPayable records a partial payment to a supplier payable
// @Summary      Settle supplier payable
// @Tags         settlements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Payable ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Settlement Payload"
// @Success      200      {object}  response.Response{data=service.PayableResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/supplier-payables/{id}/settlements [post]
func (h *SettlementHandler) SettleSupplierPayable(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	payable, err := h.settlementService.SettleSupplierPayable(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payable))
}

// SettleCustomerPayable records money received against a customer payable
// @Summary      Settle customer payable
// @Tags         settlements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Payable ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Settlement Payload"
// @Success      200      {object}  response.Response{data=service.PayableResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/customer-payables/{id}/settlements [post]
func (h *SettlementHandler) SettleCustomerPayable(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	payable, err := h.settlementService.SettleCustomerPayable(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payable))
}

// ListSupplierPayables lists supplier payables
// @Summary      List supplier payables
// @Tags         settlements
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (PENDING, PAID)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/supplier-payables [get]
func (h *SettlementHandler) ListSupplierPayables(c *gin.Context) {
	params := pagination.Parse(c)

	payables, total, err := h.settlementService.ListSupplierPayables(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"payables": payables,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// ListCustomerPayables lists customer payables
// @Summary      List customer payables
// @Tags         settlements
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (PENDING, PAID)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/customer-payables [get]
func (h *SettlementHandler) ListCustomerPayables(c *gin.Context) {
	params := pagination.Parse(c)

	payables, total, err := h.settlementService.ListCustomerPayables(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"payables": payables,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}
