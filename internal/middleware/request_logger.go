package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// HeaderRequestID carries the request identifier in and out.
	HeaderRequestID = "X-Request-ID"

	contextKeyLogger = "logger"
)

// RequestLogger assigns every request an ID and logs its outcome
func RequestLogger(logger log.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		entry := logger.WithField("request_id", requestID)
		c.Set(contextKeyLogger, entry)

		c.Next()

		fields := log.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.WithFields(fields).Error("request failed")
		case status >= 400:
			entry.WithFields(fields).Warn("request rejected")
		default:
			entry.WithFields(fields).Info("request completed")
		}
	}
}

// GetLogger returns the request scoped logger, falling back to fallback
func GetLogger(c *gin.Context, fallback log.FieldLogger) log.FieldLogger {
	if v, exists := c.Get(contextKeyLogger); exists {
		if entry, ok := v.(log.FieldLogger); ok {
			return entry
		}
	}
	return fallback
}
