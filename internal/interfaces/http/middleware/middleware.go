// Package middleware provides the gin middleware chain shared by all API
// routes: panic recovery, structured request logging, and request metrics.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/prometheus"
	"github.com/patentminer/patentminer/pkg/errors"
)

// Recovery converts panics into 500 responses with a structured log entry
// instead of killing the connection.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panic",
					logging.String("path", c.Request.URL.Path),
					logging.Any("panic", r))
				c.AbortWithStatusJSON(500, gin.H{
					"code":    string(errors.ErrCodeInternal),
					"message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// RequestLogger emits one structured entry per request after it completes.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			logger.Error("request failed", fields...)
		} else {
			logger.Info("request", fields...)
		}
	}
}

// Metrics records request count and latency per route template, so path
// parameters do not explode the label cardinality.
func Metrics(metrics *prometheus.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
