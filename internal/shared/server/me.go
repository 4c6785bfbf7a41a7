package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tire-backend/internal/shared/server/middleware"
	"tire-backend/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

// meHandler echoes the principal the request is scoped to.
func meHandler(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{
		"ownerId": middleware.OwnerIDFromContext(c),
		"isGuest": middleware.IsGuest(c),
	})
}
