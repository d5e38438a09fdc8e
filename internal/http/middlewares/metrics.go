package middlewares

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/pool-sniper/internal/metrics"
)

const unmatchedRoute = "unmatched"

// MetricsMiddleware records request counts and latency per route template.
// Unmatched paths share one label so pool addresses never become label values.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "/metrics" {
			c.Next()
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		start := time.Now()

		c.Next()

		group := routeGroup(route)
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, group, route, status).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, group, route).Observe(time.Since(start).Seconds())
	}
}

// routeGroup maps /api/v1/admin/pools/:address/unsubscribe to admin, /api/v1/quote to quote.
func routeGroup(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/v1/")
	if !ok {
		return "system"
	}
	group, _, _ := strings.Cut(rest, "/")
	return group
}
