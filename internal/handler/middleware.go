package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/driftmind/driftmind/internal/errors"
	"github.com/driftmind/driftmind/internal/logger"
)

func randomRequestID() string {
	return uuid.NewString()
}

// ErrorHandlerMiddleware converts the last error attached via c.Error(...)
// into the JSON error envelope, using AppError.Status when the handler
// attached one and falling back to 500 otherwise.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		ae := apperrors.As(err)
		logger.Error(c.Request.Context(), "request failed", "kind", ae.Kind, "error", ae.Error())

		c.JSON(ae.Status, gin.H{
			"code":    ae.Status,
			"msg":     ae.Message,
			"success": false,
		})
	}
}

// RequestIDMiddleware attaches a request id to the request context's logger
// fields, so every log line for this request carries it.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// CORSMiddleware allows every origin to call the API from a browser-based
// client.
func CORSMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-ID")
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	return cors.New(cfg)
}
