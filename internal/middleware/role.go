package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentaldesk/internal/pkg/response"
)

const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleViewer  = "viewer"
)

// RequireRole lets the request through when the token role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		if role == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		c.Abort()
	}
}

// CanWrite guards every route that changes bookings or movements.
func CanWrite() gin.HandlerFunc {
	return RequireRole(RoleOwner, RoleManager)
}
