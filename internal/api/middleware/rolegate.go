package middleware

import (
	"net/http"
	"strings"

	"github.com/bassista/go_sole/internal/gate"
	"github.com/gin-gonic/gin"
)

// RoleKey is the gin context key of the authorized role.
const RoleKey = "role"

// RoleGate rejects requests whose session may not open the route. The route
// key is the registered path pattern, so /orders/1 and /orders/2 share one
// warning. An empty allowed list admits any logged-in role.
func RoleGate(g *gate.Gate, p gate.Principal, allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		d := g.Check(route, p, allowed)
		switch d.State {
		case gate.Unauthenticated:
			if wantsHTML(c) && d.LoginPath != "" {
				c.Redirect(http.StatusFound, d.LoginPath)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     string(d.State),
				"message":   "Please log in to continue.",
				"loginPath": d.LoginPath,
			})
		case gate.InsufficientRole:
			body := gin.H{"error": string(d.State), "warn": d.Warn}
			if d.Warn {
				body["message"] = "You do not have permission to access this page."
			}
			if d.BackAfter > 0 {
				body["backAfterMs"] = d.BackAfter.Milliseconds()
			}
			c.AbortWithStatusJSON(http.StatusForbidden, body)
		default:
			c.Set(RoleKey, p.Role())
			c.Next()
		}
	}
}

func wantsHTML(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
