package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Request ids correlate log lines, error envelopes, and the trace_id field
// returned to clients. Callers may bring their own via the header.
const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID tags every request with a correlation id, minting one when the
// caller did not send it, and echoes it back on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)

		c.Next()
	}
}
