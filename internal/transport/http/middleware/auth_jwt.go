package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"arena-social/internal/core/auth"
	"arena-social/internal/transport/http/ez"
	resp "arena-social/internal/transport/http/response"
)

const KeyClaims = "claims"

// AuthJWT requires a bearer token; requireRole may be empty to accept any role.
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, http.StatusUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			resp.Abort(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(ez.KeyUserID, claims.UID)
		c.Set(ez.KeyRole, claims.Role)
		c.Next()
	}
}
