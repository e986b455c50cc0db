package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/helpers"
	"github.com/abhissng/chargehub/utils/random"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Middleware to generate requestId and correlationId
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := random.GenerateUUIDString()

		correlationId := c.GetHeader(constant.CorrelationIDHeader)
		if correlationId == "" {
			correlationId = random.GenerateUUIDString()
		}

		c.Set(constant.RequestID, requestId)
		c.Set(constant.CorrelationID, correlationId)
		c.Header(constant.CorrelationIDHeader, correlationId)

		c.Next()
	}
}

// **Gin Middleware for Compression**
func CompressionMiddleware() gin.HandlerFunc {
	return gzip.Gzip(gzip.BestSpeed)
}

// Recovery turns a panic into a 500 carrying the internal error body.
func Recovery(logger *log.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				b := blame.InternalServerError(fmt.Errorf("panic: %v", r))
				logger.Error(constant.HandlerFailed,
					log.String("path", c.Request.URL.Path),
					log.String(constant.CorrelationID, c.GetString(constant.CorrelationID)),
					log.Any("panic", r),
					log.String("stack", string(debug.Stack())))
				AbortWithBlame(c, b)
			}
		}()
		c.Next()
	}
}

// AbortWithBlame writes the error response of b with the status mapped from its response type.
func AbortWithBlame(c *gin.Context, b blame.Blame) {
	status := helpers.FetchHTTPStatusCode(b.FetchResponseType())
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, b.FetchErrorResponse(blame.WithoutCauses()))
}
