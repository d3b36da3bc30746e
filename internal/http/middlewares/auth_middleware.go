package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/geocoder89/portal/internal/auth"
	"github.com/geocoder89/portal/internal/observability"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyToken(token string) (auth.Identity, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
	prom   *observability.Prom
}

func NewAuthMiddleware(tokens TokenVerifier, prom *observability.Prom) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, prom: prom}
}

func bearerToken(header string) (string, bool) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// RequireAuth rejects the request with 401 before any handler runs unless it
// carries a valid bearer token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.prom.ObserveDenial("unauthenticated")
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
			return
		}

		id, err := m.tokens.VerifyToken(raw)
		if err != nil {
			m.prom.ObserveDenial("unauthenticated")
			if errors.Is(err, auth.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "token_expired", "Access token has expired")
				return
			}
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Invalid access token")
			return
		}

		c.Set(ctxIdentity, id)

		c.Next()
	}
}

// IdentityFromContext returns the caller set by RequireAuth.
func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
