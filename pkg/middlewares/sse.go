package middlewares

import (
	"github.com/gin-gonic/gin"
)

// This middleware adds the response headers needed for Server-Sent-Events (SSE) to work properly.
// X-Accel-Buffering stops reverse proxies from buffering the event stream.
func SSEHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")
		c.Next()
	}
}
