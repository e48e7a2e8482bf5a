package handler

import (
	"net/http"

	"tourdesk-backend/internal/middleware"
	"tourdesk-backend/internal/service"
	"tourdesk-backend/pkg/pagination"
	"tourdesk-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AgentHandler struct {
	agentService      service.AgentService
	commissionService service.CommissionService
}

func NewAgentHandler(agentService service.AgentService, commissionService service.CommissionService) *AgentHandler {
	return &AgentHandler{
		agentService:      agentService,
		commissionService: commissionService,
	}
}

func (h *AgentHandler) RegisterRoutes(router *gin.RouterGroup) {
	agents := router.Group("/api/agents")
	{
		agents.POST("", middleware.RequireRole("admin", "manager"), h.CreateAgent)
		agents.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListAgents)
		agents.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetAgent)
		agents.GET("/:id/commissions", middleware.RequireRole("admin", "manager"), h.ListAgentCommissions)
	}

	bookings := router.Group("/api/bookings")
	{
		bookings.GET("/:id/commissions", middleware.RequireRole("admin", "manager"), h.ListBookingCommissions)
	}
}

// CreateAgent creates a sales agent
// @Summary      Create agent
// @Tags         agents
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateAgentRequest  true  "Agent Payload"
// @Success      201      {object}  response.Response{data=service.AgentResponse}
// @Router       /api/agents [post]
func (h *AgentHandler) CreateAgent(c *gin.Context) {
	var req service.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	agent, err := h.agentService.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, agent))
}

// GetAgent returns one agent
// @Summary      Get agent
// @Tags         agents
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Agent ID"
// @Success      200  {object}  response.Response{data=service.AgentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/agents/{id} [get]
func (h *AgentHandler) GetAgent(c *gin.Context) {
	agent, err := h.agentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, agent))
}

// ListAgents returns a paginated agent list
// @Summary      List agents
// @Tags         agents
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/agents [get]
func (h *AgentHandler) ListAgents(c *gin.Context) {
	params := pagination.Parse(c)

	agents, total, err := h.agentService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"agents": agents,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}

// ListAgentCommissions lists an agent's commission entries
// @Summary      List agent commissions
// @Tags         agents
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true   "Agent ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/agents/{id}/commissions [get]
func (h *AgentHandler) ListAgentCommissions(c *gin.Context) {
	params := pagination.Parse(c)

	commissions, total, err := h.commissionService.ListByAgent(c.Request.Context(), c.Param("id"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"commissions": commissions,
		"total":       total,
		"page":        params.Page,
		"limit":       params.Limit,
	}))
}

// ListBookingCommissions lists a booking's commission entries
// @Summary      List booking commissions
// @Tags         agents
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  response.Response{data=[]service.CommissionEntryResponse}
// @Router       /api/bookings/{id}/commissions [get]
func (h *AgentHandler) ListBookingCommissions(c *gin.Context) {
	commissions, err := h.commissionService.ListByBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, commissions))
}
