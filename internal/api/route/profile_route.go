package route

import (
	"time"

	"github.com/bassista/go_sole/internal/api/controller"
	"github.com/bassista/go_sole/internal/api/middleware"
	"github.com/bassista/go_sole/internal/app"
	"github.com/gin-gonic/gin"
)

// NewProfileRouter mounts the profile screens for any logged-in role.
func NewProfileRouter(timeout time.Duration, group *gin.RouterGroup, appCtx *app.App, m controller.Mutator) {
	group.Use(middleware.RequestTimeout(timeout), middleware.RoleGate(appCtx.Gate, appCtx.Session))

	pc := controller.NewProfileController(appCtx.API.Auth, appCtx.API.Shipping, appCtx.Session, m)
	pc.Register(group)
}
