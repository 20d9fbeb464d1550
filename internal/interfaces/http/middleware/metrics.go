package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mudi-match-api/pkg/metrics"
)

// Metrics HTTP 指标采集，路径取路由模板避免高基数
func Metrics(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.FullPath()
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		start := time.Now()

		if size := float64(c.Request.ContentLength); size > 0 {
			metrics.HTTPRequestSize.WithLabelValues(method, path).Observe(size)
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := float64(c.Writer.Size()); size > 0 {
			metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(size)
		}
	}
}
