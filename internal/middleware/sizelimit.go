package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
)

// DefaultMaxBodySize covers every form the site accepts.
const DefaultMaxBodySize int64 = 1 << 20

// SizeLimit rejects bodies that declare more than max bytes and caps the
// reader for those that do not declare a length.
func SizeLimit(max int64) gin.HandlerFunc {
	if max <= 0 {
		max = DefaultMaxBodySize
	}
	msg := fmt.Sprintf("request body exceeds %d bytes", max)
	return func(c *gin.Context) {
		if c.Request.ContentLength > max {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, handler.NewErrorResponse(msg))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}
