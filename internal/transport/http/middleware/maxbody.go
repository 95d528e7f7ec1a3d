package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "arena-social/internal/transport/http/response"
)

// MaxBodyBytes limits the request body to n bytes.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
