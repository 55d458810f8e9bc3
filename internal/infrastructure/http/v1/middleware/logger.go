package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"varasto/pkg/logger"
)

// Logger middleware logs HTTP requests with timing and status.
// The request logger is also placed on the request context so that
// logger.Info(ctx, ...) in the domain uses the configured sink.
// Request lines are tagged component=http.
func Logger(log *logger.Logger) gin.HandlerFunc {
	accessLog := log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		accessLog.WithContext(c.Request.Context()).Infow("http request",
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"error", c.Errors.String(),
		)
	}
}
