package handler

import (
	"net/http"

	"tourdesk-backend/internal/middleware"
	"tourdesk-backend/internal/service"
	"tourdesk-backend/pkg/pagination"
	"tourdesk-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SupplierHandler struct {
	supplierService service.SupplierService
}

func NewSupplierHandler(supplierService service.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

func (h *SupplierHandler) RegisterRoutes(router *gin.RouterGroup) {
	suppliers := router.Group("/api/suppliers")
	{
		suppliers.POST("", middleware.RequireRole("admin", "manager"), h.CreateSupplier)
		suppliers.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListSuppliers)
	}

	bookings := router.Group("/api/bookings")
	{
		bookings.POST("/:id/cost-items", middleware.RequireRole("admin", "manager", "staff"), h.AddCostItem)
		bookings.GET("/:id/cost-items", middleware.RequireRole("admin", "manager", "staff"), h.ListCostItems)
	}

	costItems := router.Group("/api/cost-items")
	{
		costItems.POST("/:id/payments", middleware.RequireRole("admin", "manager"), h.RecordSupplierPayment)
	}
}

// CreateSupplier creates a supplier
// @Summary      Create supplier
// @Tags         suppliers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateSupplierRequest  true  "Supplier Payload"
// @Success      201      {object}  response.Response{data=service.SupplierResponse}
// @Router       /api/suppliers [post]
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req service.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	supplier, err := h.supplierService.CreateSupplier(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, supplier))
}

// ListSuppliers returns a paginated supplier list
// @Summary      List suppliers
// @Tags         suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/suppliers [get]
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	params := pagination.Parse(c)

	suppliers, total, err := h.supplierService.ListSuppliers(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"suppliers": suppliers,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// AddCostItem adds a supplier cost line to a booking
// @Summary      Add cost item
// @Tags         suppliers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Booking ID"
// @Param        payload  body      service.AddCostItemRequest  true  "Cost Item Payload"
// @Success      201      {object}  response.Response{data=service.CostItemResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/bookings/{id}/cost-items [post]
func (h *SupplierHandler) AddCostItem(c *gin.Context) {
	var req service.AddCostItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := h.supplierService.AddCostItem(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// ListCostItems lists a booking's supplier cost lines
// @Summary      List cost items
// @Tags         suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  response.Response{data=[]service.CostItemResponse}
// @Router       /api/bookings/{id}/cost-items [get]
func (h *SupplierHandler) ListCostItems(c *gin.Context) {
	items, err := h.supplierService.ListCostItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// RecordSupplierPayment records a payment to a supplier against a cost line
// @Summary      Record supplier payment
// @Description  Records a payment out to the supplier, optionally funded by supplier credit notes, and reconciles the booking
// @Tags         suppliers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Cost Item ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Payment Payload"
// @Success      200      {object}  response.Response{data=service.BookingResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/cost-items/{id}/payments [post]
func (h *SupplierHandler) RecordSupplierPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	booking, err := h.supplierService.RecordSupplierPayment(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}
