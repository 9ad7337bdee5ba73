package route

import (
	"time"

	"github.com/bassista/go_sole/internal/api/controller"
	"github.com/bassista/go_sole/internal/api/middleware"
	"github.com/bassista/go_sole/internal/app"
	"github.com/gin-gonic/gin"
)

// NewAuthRouter mounts login, registration and logout publicly and /me
// behind the gate for any logged-in role.
func NewAuthRouter(timeout time.Duration, group *gin.RouterGroup, appCtx *app.App, m controller.Mutator) {
	group.Use(middleware.RequestTimeout(timeout))

	ac := controller.NewAuthController(appCtx.API.Auth, appCtx.Session, m)
	ac.RegisterPublic(group)
	ac.Register(group.Group("", middleware.RoleGate(appCtx.Gate, appCtx.Session)))
}
