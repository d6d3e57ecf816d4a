package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/parlour/logger"
	"github.com/sirupsen/logrus"
)

// GinLogger writes one structured line per request to the application loggers.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		entry := logrus.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			entry["errors"] = c.Errors.String()
		}

		switch {
		case status >= 500:
			logger.ErrorLogger.WithFields(entry).Error("request failed")
		case status >= 400:
			logger.WarnLogger.WithFields(entry).Warn("request rejected")
		default:
			logger.InfoLogger.WithFields(entry).Info("request handled")
		}
	}
}
