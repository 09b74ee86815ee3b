package middleware

import (
	"strconv"
	"time"

	"supplieriq/internal/infra"

	"github.com/gin-gonic/gin"
)

// HTTPMetrics records request count and latency per route template.
// Unmatched paths are grouped under "unmatched" to bound label cardinality.
func HTTPMetrics(m *infra.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
