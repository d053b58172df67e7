package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/models"
)

func RequestLogger(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)
		c.Set("request_id", reqID)

		c.Next()

		if c.Request.URL.Path == "/ping" {
			return
		}
		lat := time.Since(start)
		status := c.Writer.Status()

		userID, _ := c.Get(CtxUserID)

		entry := l.WithFields(logrus.Fields{
			"request_id": reqID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     status,
			"latency_ms": lat.Milliseconds(),
			"ip":         c.ClientIP(),
			"user_id":    userID,
		})

		if id := c.Param("interview_id"); id != "" {
			entry = entry.WithField("interview_id", id)
		}
		if v, ok := c.Get(CtxCapabilities); ok {
			if caps, ok := v.(models.Capabilities); ok {
				entry = entry.WithFields(logrus.Fields{"role": caps.Role, "plan": caps.Plan})
			}
		}
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
