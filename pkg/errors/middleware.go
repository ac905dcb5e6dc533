package errors

import (
	"net/http"
	"runtime/debug"

	"persona-chat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler returns a middleware that formats errors queued via c.Error.
// Non-AppError values become a generic 500.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors[0].Err

		appErr, ok := AsAppError(err)
		if !ok {
			appErr = NewInternalError("The server encountered an unexpected error")
		}

		log.Error("request error",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"status_code", appErr.StatusCode,
			"error_code", appErr.Code,
			"message", appErr.Message,
		)

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(appErr.StatusCode, gin.H{"error": appErr.Message})
	}
}

// RecoveryWithLogger returns a middleware that recovers from panics and logs
// them with the stack trace before answering 500
func RecoveryWithLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					"error", r,
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"error": "The server encountered an unexpected error",
					})
				}
			}
		}()

		c.Next()
	}
}
