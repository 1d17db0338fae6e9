package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rentaldesk/internal/pkg/response"
)

const headerRequestID = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or mints one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// ErrorLogger logs failed requests and recovers from panics.
func ErrorLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				requestFields(c, log, start).
					WithField("stack", string(debug.Stack())).
					WithError(err).
					Error("panic")
				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				c.Abort()
				return
			}

			if len(c.Errors) == 0 {
				if c.Writer.Status() >= http.StatusInternalServerError {
					requestFields(c, log, start).Error("http_error")
				}
				return
			}

			for _, err := range c.Errors {
				entry := requestFields(c, log, start).WithError(err.Err)
				if err.Meta != nil {
					entry = entry.WithField("meta", err.Meta)
				}
				entry.Error("request_error")
			}
		}()

		c.Next()
	}
}

func requestFields(c *gin.Context, log logrus.FieldLogger, start time.Time) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"status":     c.Writer.Status(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"query":      c.Request.URL.RawQuery,
		"client_ip":  c.ClientIP(),
		"user_id":    c.GetInt64(ctxUserID),
		"role":       c.GetString(ctxRole),
		"request_id": c.GetString("request_id"),
		"latency":    time.Since(start).String(),
	})
}
