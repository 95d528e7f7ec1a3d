package response

import (
	"errors"
	"net/http"

	"arena-social/internal/domain"
)

// kindStatus maps each domain error kind onto its HTTP status.
var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:   http.StatusBadRequest,
	domain.KindUnauthorized: http.StatusUnauthorized,
	domain.KindForbidden:    http.StatusForbidden,
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindConflict:     http.StatusConflict,
	domain.KindInternal:     http.StatusInternalServerError,
}

// StatusOf returns the HTTP status for err; unknown errors are 500.
func StatusOf(err error) int {
	if s, ok := kindStatus[domain.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// MessageOf returns the client-safe message carried by err.
func MessageOf(err error) string {
	var de *domain.Error
	if errors.As(err, &de) && de.Msg != "" {
		return de.Msg
	}
	return http.StatusText(http.StatusInternalServerError)
}
