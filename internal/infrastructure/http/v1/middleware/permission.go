package middleware

import (
	"github.com/gin-gonic/gin"

	"logistix/internal/core/apperror"
	appctx "logistix/internal/core/context"
	"logistix/internal/core/security"
)

// RequirePermission middleware checks that the user's role grants permission.
// Admins automatically have all permissions.
func RequirePermission(permission security.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		role, ok := security.ParseRole(user.Role)
		if !ok || !security.HasPermission(role, permission) {
			_ = c.Error(
				apperror.NewForbidden("insufficient permissions").
					WithDetail("required_permission", string(permission)),
			)
			c.Abort()
			return
		}

		c.Next()
	}
}
