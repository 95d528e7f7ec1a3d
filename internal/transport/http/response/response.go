package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the only failure payload the API writes.
type ErrorBody struct {
	Error string `json:"error"`
}

func Error(msg string) ErrorBody {
	if msg == "" {
		msg = "error"
	}
	return ErrorBody{Error: msg}
}

// Abort stops the chain with status and an error body. An empty msg uses the status text.
func Abort(c *gin.Context, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, Error(msg))
}

// Fail writes err with the status its domain kind maps to.
func Fail(c *gin.Context, err error) {
	Abort(c, StatusOf(err), MessageOf(err))
}
