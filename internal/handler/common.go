package handler

import (
	"net/http"

	"tourdesk-backend/pkg/apperror"
	"tourdesk-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto the HTTP status its kind implies.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}

// actorID returns the authenticated user id set by the auth middleware, empty
// for unauthenticated routes.
func actorID(c *gin.Context) string {
	userID, _ := c.Get("userID")
	id, _ := userID.(string)
	return id
}
