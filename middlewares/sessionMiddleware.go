package middlewares

import (
	"net/http"

	"bitbucket.org/wildlifefocus/reptileguard_backend/config"
	"bitbucket.org/wildlifefocus/reptileguard_backend/models"
	"bitbucket.org/wildlifefocus/reptileguard_backend/utils"
	"github.com/gin-gonic/gin"
)

// SessionMiddleware resolves the opaque session token into the principal.
// Requests without a token pass through unauthenticated; route guards decide
// what anonymous callers may do.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		userId, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUserIdInContext(ctx, userId)

		// Role and guest flag come from the cached principal so route guards
		// need no extra store round trip.
		if user, err := models.GetUser(ctx, userId); err == nil {
			ctx = utils.SetUserNameInContext(ctx, user.Name)
			ctx = utils.SetUserRoleInContext(ctx, string(user.Role))
			ctx = utils.SetIsGuestInContext(ctx, user.IsGuest)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
