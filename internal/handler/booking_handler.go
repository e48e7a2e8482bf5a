package handler

import (
	"net/http"

	"tourdesk-backend/internal/middleware"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/internal/service"
	"tourdesk-backend/pkg/pagination"
	"tourdesk-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingService  service.BookingService
	documentService service.DocumentService
}

func NewBookingHandler(bookingService service.BookingService, documentService service.DocumentService) *BookingHandler {
	return &BookingHandler{
		bookingService:  bookingService,
		documentService: documentService,
	}
}

func (h *BookingHandler) RegisterRoutes(router *gin.RouterGroup) {
	bookings := router.Group("/api/bookings")
	{
		bookings.POST("", middleware.RequireRole("admin", "manager", "staff"), h.CreateBooking)
		bookings.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListBookings)
		bookings.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetBooking)
		bookings.POST("/:id/date-changes", middleware.RequireRole("admin", "manager", "staff"), h.CreateDateChange)
		bookings.PUT("/:id/approve", middleware.RequireRole("admin", "manager"), h.ApproveBooking)
		bookings.PUT("/:id/financials", middleware.RequireRole("admin", "manager"), h.UpdateFinancials)
		bookings.PUT("/:id/void", middleware.RequireRole("admin", "manager"), h.VoidBooking)
		bookings.PUT("/:id/unvoid", middleware.RequireRole("admin", "manager"), h.UnvoidBooking)
		bookings.POST("/:id/invoice", middleware.RequireRole("admin", "manager", "staff"), h.GenerateInvoice)
	}
}

// CreateBooking creates a new booking folder
// @Summary      Create booking
// @Description  Creates a new booking with its financials and payment plan
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateBookingRequest  true  "Create Booking Payload"
// @Success      201      {object}  response.Response{data=service.BookingResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, booking))
}

// CreateDateChange creates a date-change child under a booking
// @Summary      Create date change
// @Description  Creates a date-change record in the booking's chain
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Parent Booking ID"
// @Param        payload  body      service.DateChangeRequest  true  "Date Change Payload"
// @Success      201      {object}  response.Response{data=service.BookingResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/bookings/{id}/date-changes [post]
func (h *BookingHandler) CreateDateChange(c *gin.Context) {
	var req service.DateChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	booking, err := h.bookingService.CreateDateChange(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, booking))
}

// ApproveBooking confirms a pending booking
// @Summary      Approve booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  response.Response{data=service.BookingResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/bookings/{id}/approve [put]
func (h *BookingHandler) ApproveBooking(c *gin.Context) {
	booking, err := h.bookingService.Approve(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// UpdateFinancials edits a booking's financial figures
// @Summary      Update booking financials
// @Description  Updates revenue, costs, fees or payment plan and reconciles the booking
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                                  true  "Booking ID"
// @Param        payload  body      service.UpdateBookingFinancialsRequest  true  "Financials Payload"
// @Success      200      {object}  response.Response{data=service.BookingResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/bookings/{id}/financials [put]
func (h *BookingHandler) UpdateFinancials(c *gin.Context) {
	var req service.UpdateBookingFinancialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	booking, err := h.bookingService.UpdateFinancials(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// VoidBooking voids a booking
// @Summary      Void booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  response.Response{data=service.BookingResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/bookings/{id}/void [put]
func (h *BookingHandler) VoidBooking(c *gin.Context) {
	booking, err := h.bookingService.Void(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// UnvoidBooking restores a voided booking
// @Summary      Restore voided booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  response.Response{data=service.BookingResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/bookings/{id}/unvoid [put]
func (h *BookingHandler) UnvoidBooking(c *gin.Context) {
	booking, err := h.bookingService.Unvoid(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// GetBooking returns a booking with its chain and payment history
// @Summary      Get booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  response.Response{data=service.BookingDetailResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	detail, err := h.bookingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// ListBookings returns a paginated list of bookings
// @Summary      List bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        status    query     string  false  "Filter by status"
// @Param        agent_id  query     string  false  "Filter by agent"
// @Param        customer  query     string  false  "Filter by customer name"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Router       /api/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.BookingListFilter{
		Status:       c.Query("status"),
		CustomerName: c.Query("customer"),
		Page:         params.Page,
		Limit:        params.Limit,
	}
	if raw := c.Query("agent_id"); raw != "" {
		if agentID, err := uuid.Parse(raw); err == nil {
			filter.AgentID = &agentID
		}
	}

	bookings, total, err := h.bookingService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GenerateInvoice produces an invoice snapshot for a booking
// @Summary      Generate invoice
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  response.Response{data=service.InvoiceDocument}
// @Failure      404  {object}  response.Response
// @Router       /api/bookings/{id}/invoice [post]
func (h *BookingHandler) GenerateInvoice(c *gin.Context) {
	doc, err := h.documentService.GenerateInvoice(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}
