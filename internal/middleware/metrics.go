package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ragul198/Event/internal/service"
)

// sessionStreamSuffix marks the route that holds a connection open for the whole
// session. Its latency would only measure how long users kept the tab open.
const sessionStreamSuffix = "/auth/events"

// Metrics records latency and status per matched route. Unmatched paths are grouped
// so arbitrary URLs cannot grow label cardinality. The scrape endpoint is not observed.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if metricsSvc == nil || path == "/metrics" {
			c.Next()
			return
		}
		if strings.HasSuffix(path, sessionStreamSuffix) {
			metricsSvc.SessionStream(1)
			defer metricsSvc.SessionStream(-1)
			c.Next()
			return
		}

		metricsSvc.RequestStarted(1)
		defer metricsSvc.RequestStarted(-1)
		start := time.Now()
		c.Next()

		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
