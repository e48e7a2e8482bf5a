package handler

import (
	"net/http"

	"tourdesk-backend/internal/middleware"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/internal/service"
	"tourdesk-backend/pkg/pagination"
	"tourdesk-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreditNoteHandler struct {
	creditNoteService service.CreditNoteService
}

func NewCreditNoteHandler(creditNoteService service.CreditNoteService) *CreditNoteHandler {
	return &CreditNoteHandler{creditNoteService: creditNoteService}
}

func (h *CreditNoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	customerNotes := router.Group("/api/customer-credit-notes")
	{
		customerNotes.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListCustomerNotes)
		customerNotes.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetCustomerNote)
	}

	supplierNotes := router.Group("/api/supplier-credit-notes")
	{
		supplierNotes.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListSupplierNotes)
		supplierNotes.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetSupplierNote)
	}
}

func (h *CreditNoteHandler) noteFilter(c *gin.Context) repository.CreditNoteListFilter {
	params := pagination.Parse(c)
	return repository.CreditNoteListFilter{
		Counterparty: c.Query("counterparty"),
		Status:       c.Query("status"),
		Page:         params.Page,
		Limit:        params.Limit,
	}
}

// ListCustomerNotes lists customer credit notes
// @Summary      List customer credit notes
// @Tags         credit-notes
// @Security     BearerAuth
// @Produce      json
// @Param        counterparty  query     string  false  "Filter by customer name"
// @Param        status        query     string  false  "Filter by status (ACTIVE, USED)"
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Items per page (default 20)"
// @Success      200           {object}  response.Response{data=object}
// @Router       /api/customer-credit-notes [get]
func (h *CreditNoteHandler) ListCustomerNotes(c *gin.Context) {
	filter := h.noteFilter(c)

	notes, total, err := h.creditNoteService.ListCustomerNotes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"credit_notes": notes,
		"total":        total,
		"page":         filter.Page,
		"limit":        filter.Limit,
	}))
}

// GetCustomerNote returns one customer credit note
// @Summary      Get customer credit note
// @Tags         credit-notes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Credit Note ID"
// @Success      200  {object}  response.Response{data=service.CreditNoteResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/customer-credit-notes/{id} [get]
func (h *CreditNoteHandler) GetCustomerNote(c *gin.Context) {
	note, err := h.creditNoteService.GetCustomerNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, note))
}

// ListSupplierNotes lists supplier credit notes
// @Summary      List supplier credit notes
// @Tags         credit-notes
// @Security     BearerAuth
// @Produce      json
// @Param        counterparty  query     string  false  "Filter by supplier name"
// @Param        status        query     string  false  "Filter by status (ACTIVE, USED)"
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Items per page (default 20)"
// @Success      200           {object}  response.Response{data=object}
// @Router       /api/supplier-credit-notes [get]
func (h *CreditNoteHandler) ListSupplierNotes(c *gin.Context) {
	filter := h.noteFilter(c)

	notes, total, err := h.creditNoteService.ListSupplierNotes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"credit_notes": notes,
		"total":        total,
		"page":         filter.Page,
		"limit":        filter.Limit,
	}))
}

// GetSupplierNote returns one supplier credit note
// @Summary      Get supplier credit note
// @Tags         credit-notes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Credit Note ID"
// @Success      200  {object}  response.Response{data=service.CreditNoteResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/supplier-credit-notes/{id} [get]
func (h *CreditNoteHandler) GetSupplierNote(c *gin.Context) {
	note, err := h.creditNoteService.GetSupplierNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, note))
}
