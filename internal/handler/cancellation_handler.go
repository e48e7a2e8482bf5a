package handler

import (
	"net/http"

	"tourdesk-backend/internal/middleware"
	"tourdesk-backend/internal/service"
	"tourdesk-backend/pkg/pagination"
	"tourdesk-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CancellationHandler struct {
	cancellationService service.CancellationService
}

func NewCancellationHandler(cancellationService service.CancellationService) *CancellationHandler {
	return &CancellationHandler{cancellationService: cancellationService}
}

func (h *CancellationHandler) RegisterRoutes(router *gin.RouterGroup) {
	bookings := router.Group("/api/bookings")
	{
		bookings.POST("/:id/cancel", middleware.RequireRole("admin", "manager"), h.CancelChain)
	}

	cancellations := router.Group("/api/cancellations")
	{
		cancellations.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListCancellations)
		cancellations.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetCancellation)
	}
}

// CancelChain cancels a booking's whole chain
// @Summary      Cancel booking chain
// @Description  Cancels every booking in the chain and settles the financial outcome: refunds, payables and credit notes
// @Tags         cancellations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Booking ID (any chain member)"
// @Param        payload  body      service.CancelChainRequest  true  "Cancellation Payload"
// @Success      201      {object}  response.Response{data=service.CancellationResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/bookings/{id}/cancel [post]
func (h *CancellationHandler) CancelChain(c *gin.Context) {
	var req service.CancelChainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cancellation, err := h.cancellationService.CancelChain(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, cancellation))
}

// GetCancellation returns one cancellation
// @Summary      Get cancellation
// @Tags         cancellations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Cancellation ID"
// @Success      200  {object}  response.Response{data=service.CancellationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/cancellations/{id} [get]
func (h *CancellationHandler) GetCancellation(c *gin.Context) {
	cancellation, err := h.cancellationService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cancellation))
}

// ListCancellations returns a paginated cancellation list
// @Summary      List cancellations
// @Tags         cancellations
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/cancellations [get]
func (h *CancellationHandler) ListCancellations(c *gin.Context) {
	params := pagination.Parse(c)

	cancellations, total, err := h.cancellationService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"cancellations": cancellations,
		"total":         total,
		"page":          params.Page,
		"limit":         params.Limit,
	}))
}
