package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/internal/handler"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Application errors keep their status and message; anything else is a
// 500 with a generic message. Metadata set on the gin error is echoed
// back as the submitted form.
func ErrorHandler(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		status := http.StatusInternalServerError
		message := "Internal server error"
		var details interface{}

		if appErr, ok := apperrors.As(last.Err); ok {
			status = appErr.StatusCode()
			message = appErr.Message
			details = appErr.Details
		}

		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Err(last.Err).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg("request error")

		resp := handler.NewErrorResponse(message)
		if last.Meta != nil || details != nil {
			resp.Data = handler.FormError{Form: last.Meta, Errors: details}
		}
		c.AbortWithStatusJSON(status, resp)
	}
}
