package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bassista/go_sole/internal/logger"
	"github.com/gin-gonic/gin"
)

// RequestTimeout bounds the request context of console handlers. Handlers
// waiting on the cache return once it expires; fetches already started keep
// running on the store context and land in the cache for the next request.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			logger.WithComponent("http").Warnf("%s %s timed out after %v", c.Request.Method, c.Request.URL.Path, d)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{
				"error":   "timeout",
				"message": "The request took too long. Please try again.",
			})
		}
	}
}
