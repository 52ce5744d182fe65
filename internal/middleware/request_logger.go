package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ykurohata/workorder-api/internal/logging"
	"go.uber.org/zap"
)

// RequestLogger logs every request through the shared zap logger
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logging.L().Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
