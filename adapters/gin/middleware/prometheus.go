package middleware

import (
	"strconv"
	"time"

	"github.com/abhissng/chargehub/adapters/prometheus"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GinMiddleware returns a Gin middleware for collecting metrics
func GinMiddleware(mc *prometheus.MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		mc.HttpRequestsInFlight().Inc()
		defer mc.HttpRequestsInFlight().Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusCode := strconv.Itoa(c.Writer.Status())
		labels := []string{c.Request.Method, path, statusCode}

		mc.RequestCount().WithLabelValues(labels...).Inc()
		mc.RequestDuration().WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		mc.ResponseSize().WithLabelValues(labels...).Observe(float64(max(c.Writer.Size(), 0)))
	}
}

// RegisterMetricsEndpoint registers the Prometheus metrics endpoint
func RegisterMetricsEndpoint(router gin.IRoutes, mc *prometheus.MetricsCollector) {
	router.GET(constant.MetricsPath, gin.WrapH(promhttp.HandlerFor(
		mc.Registry(),
		promhttp.HandlerOpts{},
	)))
}
