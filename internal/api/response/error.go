package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an error that knows the HTTP status it is reported with.
type Error struct {
	Code    int
	Message string
}

func (e Error) Error() string {
	return e.Message
}

func NewError(code int, message string) Error {
	return Error{Code: code, Message: message}
}

// WriteError reports err with its own status when it is an Error. Anything else is logged and reported
// as an internal error without details.
func WriteError(c *gin.Context, err error) {
	var apiErr Error
	if errors.As(err, &apiErr) {
		ErrorResponse(c, apiErr.Code, apiErr.Message)
		return
	}
	slog.ErrorContext(c.Request.Context(), "Request failed", "path", c.FullPath(), "error", err)
	ErrorResponse(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
