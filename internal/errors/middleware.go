package errors

import (
	"context"

	"github.com/driftmind/driftmind/internal/logger"
	"github.com/gin-gonic/gin"
)

// GinMiddleware renders any error attached via c.Error(...) as the standard
// {code, msg, success} JSON envelope, so handlers never format error bodies
// themselves.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr := As(err)

		logger.GetLogger(logCtx(c)).WithFields(map[string]interface{}{
			"kind":  appErr.Kind,
			"error": appErr.Error(),
		}).Warn("request failed")

		c.AbortWithStatusJSON(appErr.Status, gin.H{
			"code":    appErr.Status,
			"msg":     appErr.Message,
			"success": false,
		})
	}
}

func logCtx(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}
