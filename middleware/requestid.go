package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ledgerly/ledgerly-backend/internal/auditlog"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with a unique id, reusing the client's when
// supplied, and echoes it on the response. The id is also placed on the
// request context so the audit trail can pick it up.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Request = c.Request.WithContext(auditlog.WithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID retrieves the id set by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}
