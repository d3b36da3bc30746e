package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin must run after RequireAuth. A missing identity is a 401, a
// non-admin caller a 403.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFromContext(c)

		if !ok {
			m.prom.ObserveDenial("unauthenticated")
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}
		if !id.IsAdmin {
			m.prom.ObserveDenial("forbidden")
			abortWithError(c, http.StatusForbidden, "forbidden", "Admin privileges required")
			return
		}
		c.Next()
	}
}
