package middlewares

import (
	"net/http"

	"bitbucket.org/wildlifefocus/reptileguard_backend/models"
	"bitbucket.org/wildlifefocus/reptileguard_backend/utils"
	"github.com/gin-gonic/gin"
)

// RequireAuth rejects requests that did not present a valid session token.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := utils.GetUserIdFromContext(c.Request.Context())
		if !ok || userId == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireOfficer limits a route to wildlife officers.
func RequireOfficer() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := utils.GetUserRoleFromContext(c.Request.Context())
		if !ok || role != string(models.UserRoleOfficer) {
			c.JSON(http.StatusForbidden, gin.H{"error": "officer role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
