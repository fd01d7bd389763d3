package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opensourceavatars/avatar-site/internal/metrics"
	"github.com/rs/zerolog"
)

// requestLogger logs every request and records it in the HTTP metrics,
// labelled by route template so ids do not explode cardinality.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		metrics.ObserveRequest(c.Request.Method, c.FullPath(), status, elapsed.Seconds())

		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", elapsed).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
