package middleware

import (
	"fmt"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	honeybadger "github.com/honeybadger-io/honeybadger-go"
	"github.com/sirupsen/logrus"
)

// HoneybadgerMiddleware reports panics and failed console requests to
// Honeybadger. Gate rejections (401/403) and 404s are expected traffic and
// are not reported. On panic it re-panics so gin.Recovery writes the response.
func HoneybadgerMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	apiKey := os.Getenv("HONEYBADGER_API_KEY")
	if apiKey == "" {
		logger.Info("Honeybadger is not active. To enable error reporting, set the HONEYBADGER_API_KEY environment variable.")
		return func(c *gin.Context) {
			c.Next()
		}
	}

	honeybadger.Configure(honeybadger.Configuration{
		APIKey: apiKey,
		Env:    os.Getenv("GO_ENV"),
	})

	logger.Info("Honeybadger error reporting is enabled.")

	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				honeybadger.Notify(fmt.Sprintf("Panic: %s %s", c.Request.Method, c.Request.URL.Path),
					c.Request, requestContext(c, honeybadger.Context{"stack": string(debug.Stack())}), honeybadger.Tags{"panic", "http"})
				logger.Error("Recovered from panic, notified Honeybadger: ", rec)
				panic(rec)
			}
		}()

		c.Next()

		status := c.Writer.Status()
		if !reportable(status) {
			return
		}
		msg := fmt.Sprintf("HTTP %d: %s %s", status, c.Request.Method, c.FullPath())
		if last := c.Errors.Last(); last != nil {
			msg += ": " + last.Error()
		}
		if status >= 500 {
			honeybadger.Notify("Error: "+msg, c.Request, requestContext(c, nil), honeybadger.Tags{"5XX", "http"})
		} else {
			honeybadger.Notify("Warning: "+msg, requestContext(c, nil), honeybadger.Tags{"4XX", "http"})
		}
		logger.Warnf("Honeybadger reported %s", msg)
	}
}

func reportable(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	}
	return status >= 400
}

func requestContext(c *gin.Context, ctx honeybadger.Context) honeybadger.Context {
	if ctx == nil {
		ctx = honeybadger.Context{}
	}
	if id := c.GetString(RequestIDKey); id != "" {
		ctx["request_id"] = id
	}
	if role := c.GetString(RoleKey); role != "" {
		ctx["role"] = role
	}
	return ctx
}
