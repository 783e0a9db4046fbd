package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/prometheus"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

// RequestLogger logs one line per request and feeds the HTTP metrics.
// Unmatched routes are labelled "unmatched" to keep metric cardinality
// bounded.
func RequestLogger(log logging.Logger, metrics *prometheus.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		if metrics != nil {
			metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())
		}

		log.Info("http request",
			logging.String("method", c.Request.Method),
			logging.String("route", route),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", status),
			logging.Duration("elapsed", elapsed),
			logging.String("client_ip", c.ClientIP()),
		)
	}
}

// Recovery converts panics into 500 responses without taking the process
// down.
func Recovery(log logging.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered in handler",
			logging.String("path", c.Request.URL.Path),
			logging.Any("panic", recovered),
		)
		c.AbortWithStatusJSON(errors.HTTPStatusForCode(errors.ErrCodeInternal), gin.H{
			"error": common.ErrorDetail{
				Code:    errors.ErrCodeInternal.String(),
				Message: errors.DefaultMessageForCode(errors.ErrCodeInternal),
			},
		})
	})
}
