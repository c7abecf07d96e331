package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthPath is logged at DEBUG so load balancer probes do not flood the access log.
const HealthPath = "/health"

// Logger writes one access log line per request. 5xx responses log at ERROR and
// 4xx at WARN. The matched route template is logged next to the concrete path so
// lines for different transactions group together.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			attrs = append(attrs, "query", q)
		}
		if id := c.Param("id"); id != "" {
			attrs = append(attrs, "transaction_id", id)
		}
		if id := GetCorrelationID(c); id != "" {
			attrs = append(attrs, "correlation_id", id)
		}

		logger.Log(c.Request.Context(), accessLevel(c.Request.URL.Path, status), "HTTP request", attrs...)
	}
}

func accessLevel(path string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case path == HealthPath:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
