package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/megamarket-backend/internal/observability"
)

// Metrics records request counts and latency per matched route. Unmatched
// paths share one label so scanners cannot blow up cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observability.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
