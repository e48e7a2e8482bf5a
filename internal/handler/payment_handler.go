package handler

import (
	"net/http"

	"tourdesk-backend/internal/middleware"
	"tourdesk-backend/internal/service"
	"tourdesk-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	bookings := router.Group("/api/bookings")
	{
		bookings.POST("/:id/instalments", middleware.RequireRole("admin", "manager", "staff"), h.CreateInstalment)
		bookings.GET("/:id/instalments", middleware.RequireRole("admin", "manager", "staff"), h.ListInstalments)
		bookings.POST("/:id/payments", middleware.RequireRole("admin", "manager", "staff"), h.RecordInitialPayment)
		bookings.POST("/:id/refunds", middleware.RequireRole("admin", "manager"), h.RecordRefund)
	}

	instalments := router.Group("/api/instalments")
	{
		instalments.POST("/:id/payments", middleware.RequireRole("admin", "manager", "staff"), h.RecordInstalmentPayment)
	}
}

// CreateInstalment schedules an instalment on a booking
// @Summary      Create instalment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "Booking ID"
// @Param        payload  body      service.CreateInstalmentRequest  true  "Instalment Payload"
// @Success      201      {object}  response.Response{data=service.InstalmentResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/bookings/{id}/instalments [post]
func (h *PaymentHandler) CreateInstalment(c *gin.Context) {
	var req service.CreateInstalmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	instalment, err := h.paymentService.CreateInstalment(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, instalment))
}

// ListInstalments lists a booking's instalment schedule
// @Summary      List instalments
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  response.Response{data=[]service.InstalmentResponse}
// @Router       /api/bookings/{id}/instalments [get]
func (h *PaymentHandler) ListInstalments(c *gin.Context) {
	instalments, err := h.paymentService.ListInstalments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, instalments))
}

// RecordInitialPayment records a customer payment on a booking
// @Summary      Record initial payment
// @Description  Records a payment received from the customer, optionally funded by credit notes, and reconciles the booking
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Booking ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Payment Payload"
// @Success      200      {object}  response.Response{data=service.BookingResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/bookings/{id}/payments [post]
func (h *PaymentHandler) RecordInitialPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	booking, err := h.paymentService.RecordInitialPayment(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// RecordInstalmentPayment records a payment against an instalment
// @Summary      Record instalment payment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Instalment ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Payment Payload"
// @Success      200      {object}  response.Response{data=service.BookingResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/instalments/{id}/payments [post]
func (h *PaymentHandler) RecordInstalmentPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	booking, err := h.paymentService.RecordInstalmentPayment(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// RecordRefund records money paid back to the passenger
// @Summary      Record passenger refund
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Booking ID"
// @Param        payload  body      service.RecordRefundRequest  true  "Refund Payload"
// @Success      200      {object}  response.Response{data=service.BookingResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/bookings/{id}/refunds [post]
func (h *PaymentHandler) RecordRefund(c *gin.Context) {
	var req service.RecordRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	booking, err := h.paymentService.RecordRefund(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}
