package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Audit writes one structured line per successful admin mutation.
func Audit(log *zap.Logger, action string) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("audit")
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}
		fields := []zap.Field{
			zap.String("action", action),
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, zap.String("resource_id", id))
		}
		if session, ok := CurrentSession(c); ok {
			fields = append(fields, zap.String("user_id", session.UserID))
		}
		log.Info("admin action", fields...)
	}
}
