// Package middleware provides gin middleware shared by all HTTP routes.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/docqa/pkg/id"
)

// RequestID header and context key names.
const (
	HeaderXRequestID    = "X-Request-ID"
	ContextKeyRequestID = "request_id"
)

// RequestID returns a middleware that attaches a unique request ID to each
// request. A client-supplied X-Request-ID is honored; otherwise a ULID is
// generated. The ID is stored in the gin context and echoed in the response
// header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" {
			requestID = id.New()
		}

		c.Set(ContextKeyRequestID, requestID)
		c.Writer.Header().Set(HeaderXRequestID, requestID)

		c.Next()
	}
}

// GetRequestID returns the request ID stored in the gin context, if any.
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyRequestID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
