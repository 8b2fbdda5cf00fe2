package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"mibe/pkg/utils"
)

const TraceIDHeader = "X-Trace-ID"

// TraceIDMiddleware tags the request with a trace id echoed in the response
// envelope and header. Callers may pass their own as a UUID.
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := inboundTraceID(c.GetHeader(TraceIDHeader))
		c.Set(utils.TraceIDKey, id)
		c.Header(TraceIDHeader, id)
		c.Next()
	}
}

func inboundTraceID(v string) string {
	if id, err := uuid.Parse(v); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
