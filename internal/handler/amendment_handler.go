package handler

import (
	"net/http"

	"tourdesk-backend/internal/middleware"
	"tourdesk-backend/internal/service"
	"tourdesk-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AmendmentHandler struct {
	amendmentService service.AmendmentService
}

func NewAmendmentHandler(amendmentService service.AmendmentService) *AmendmentHandler {
	return &AmendmentHandler{amendmentService: amendmentService}
}

func (h *AmendmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	bookings := router.Group("/api/bookings")
	{
		bookings.POST("/:id/write-off", middleware.RequireRole("admin", "manager"), h.WriteOff)
		bookings.POST("/:id/adjustments", middleware.RequireRole("admin", "manager"), h.CreateAdjustment)
		bookings.GET("/:id/amendments", middleware.RequireRole("admin", "manager", "staff"), h.ListAmendments)
	}

	amendments := router.Group("/api/amendments")
	{
		amendments.PUT("/:id/reverse", middleware.RequireRole("admin", "manager"), h.ReverseAmendment)
	}
}

// WriteOff forgives a booking's outstanding balance
// @Summary      Write off balance
// @Description  Forgives the remaining balance so the booking can complete without further payment
// @Tags         amendments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Booking ID"
// @Param        payload  body      service.WriteOffRequest  true  "Write Off Payload"
// @Success      200      {object}  response.Response{data=service.BookingResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/bookings/{id}/write-off [post]
func (h *AmendmentHandler) WriteOff(c *gin.Context) {
	var req service.WriteOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	booking, err := h.amendmentService.WriteOff(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// CreateAdjustment records a manual financial adjustment on a booking
// @Summary      Create adjustment
// @Tags         amendments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "Booking ID"
// @Param        payload  body      service.CreateAdjustmentRequest  true  "Adjustment Payload"
// @Success      200      {object}  response.Response{data=service.BookingResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/bookings/{id}/adjustments [post]
func (h *AmendmentHandler) CreateAdjustment(c *gin.Context) {
	var req service.CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	booking, err := h.amendmentService.CreateAdjustment(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// ReverseAmendment undoes an amendment and reconciles the booking
// @Summary      Reverse amendment
// @Tags         amendments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Amendment ID"
// @Success      200  {object}  response.Response{data=service.BookingResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/amendments/{id}/reverse [put]
func (h *AmendmentHandler) ReverseAmendment(c *gin.Context) {
	booking, err := h.amendmentService.Reverse(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, booking))
}

// ListAmendments lists a booking's amendments
// @Summary      List amendments
// @Tags         amendments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  response.Response{data=[]service.AmendmentResponse}
// @Router       /api/bookings/{id}/amendments [get]
func (h *AmendmentHandler) ListAmendments(c *gin.Context) {
	amendments, err := h.amendmentService.ListByBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, amendments))
}
