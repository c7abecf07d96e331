package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/register-pos/internal/platform/persistence"
)

// Recovery turns a panicking handler into a 500 with the generic failure message.
// If the handler already started writing, the response is only aborted.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.Error("Panic recovered",
				"error", panicText(r),
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"correlation_id", GetCorrelationID(c),
				"response_started", c.Writer.Written(),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			body := gin.H{
				"error": gin.H{
					"code":    persistence.ClassOther.Code(),
					"message": persistence.ClassOther.Message(),
				},
			}
			if id := GetCorrelationID(c); id != "" {
				body["correlation_id"] = id
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}

func panicText(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(r)
}
