package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "arena-social/internal/transport/http/response"
)

// RecoveryJSON is the gin.RecoveryFunc handed to the base engine; the panic
// itself is already logged by ginzap.
func RecoveryJSON(c *gin.Context, _ any) {
	resp.Abort(c, http.StatusInternalServerError, "internal error")
}
