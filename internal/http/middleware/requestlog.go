package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

// RequestLog logs one structured line per request.
func RequestLog(log *logger.Logger) gin.HandlerFunc {
	reqLog := log.With("middleware", "RequestLog")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		if c.Writer.Status() >= 500 {
			reqLog.Error("request", fields...)
		} else {
			reqLog.Info("request", fields...)
		}
	}
}
