package middleware

import (
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/types"
	"github.com/gin-gonic/gin"
)

// GinRequestLogger logs one line per request once it has been served.
// Paths in skip are not logged.
func GinRequestLogger(logger *log.Log, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		startTime := time.Now()

		c.Next()

		fields := []types.Field{
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.String("route", c.FullPath()),
			log.Int("status_code", c.Writer.Status()),
			log.Duration("latency", time.Since(startTime)),
			log.String("client_ip", c.ClientIP()),
			log.String("request_id", c.GetString(constant.RequestID)),
			log.String(constant.CorrelationIDHeader, c.GetString(constant.CorrelationID)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, log.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("Request served", fields...)
		case status >= 400:
			logger.Warn("Request served", fields...)
		default:
			logger.Info("Request served", fields...)
		}
	}
}
