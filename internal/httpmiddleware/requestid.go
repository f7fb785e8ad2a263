package httpmiddleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ottoassistant/otto/internal/logx"
	"github.com/ottoassistant/otto/internal/requestid"
)

// RequestID injects a request ID into the request context and response
// header, preserving an incoming X-Request-ID if present, and tags the
// context with plane so every log line a handler emits shows which
// control plane served it.
func RequestID(plane string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = requestid.New()
		}

		ctx := requestid.WithRequestID(c.Request.Context(), id)
		ctx = logx.WithPlane(ctx, plane)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
