package middleware

import (
	"net/http"

	"aidtrack/internal/util"

	"github.com/gin-gonic/gin"
)

// RequirePermission gates a route on a named permission. Must run after
// AuthMiddleware; admin:all passes every gate.
func RequirePermission(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			c.Abort()
			return
		}
		if !user.HasPermission(name) {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "permission denied")
			c.Abort()
			return
		}
		c.Next()
	}
}
