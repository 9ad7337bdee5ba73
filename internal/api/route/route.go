package route

import (
	"net/http"

	"github.com/bassista/go_sole/internal/api/controller"
	"github.com/bassista/go_sole/internal/app"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, appCtx *app.App) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":  "UP",
			"loggedIn": appCtx.Session.HasToken(),
			"realtime": appCtx.Notifier.Active(),
		})
	})

	timeout := appCtx.Config.Server.RequestTimeout
	m := controller.Mutator{Store: appCtx.Cache, SettleTimeout: appCtx.Config.Cache.SettleTimeout}

	NewAuthRouter(timeout, r.Group("/api/auth"), appCtx, m)
	NewProfileRouter(timeout, r.Group("/api/profile"), appCtx, m)
	NewAdminRouter(timeout, r, appCtx, m)
}
