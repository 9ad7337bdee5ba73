package route

import (
	"time"

	"github.com/bassista/go_sole/internal/api/controller"
	"github.com/bassista/go_sole/internal/api/middleware"
	"github.com/bassista/go_sole/internal/app"
	"github.com/bassista/go_sole/internal/model"
	"github.com/gin-gonic/gin"
)

// backOffice is who may open the admin console; user and cache management
// is admin only.
var backOffice = []string{model.RoleAdmin, model.RoleStaff}

// NewAdminRouter mounts /api/admin. Streams get their own groups so the
// request timeout does not cut them off.
func NewAdminRouter(timeout time.Duration, r *gin.Engine, appCtx *app.App, m controller.Mutator) {
	staff := r.Group("/api/admin",
		middleware.RequestTimeout(timeout),
		middleware.RoleGate(appCtx.Gate, appCtx.Session, backOffice...))
	adminOnly := r.Group("/api/admin",
		middleware.RequestTimeout(timeout),
		middleware.RoleGate(appCtx.Gate, appCtx.Session, model.RoleAdmin))
	staffStream := r.Group("/api/admin", middleware.RoleGate(appCtx.Gate, appCtx.Session, backOffice...))
	adminStream := r.Group("/api/admin", middleware.RoleGate(appCtx.Gate, appCtx.Session, model.RoleAdmin))

	controller.NewOrderController(appCtx.API.Orders, m).Register(staff)
	controller.NewVoucherController(appCtx.API.Vouchers, m).Register(staff)
	controller.NewStockController(appCtx.API.Stocks, m).Register(staff)
	controller.NewBannerController(appCtx.API.Banners, m).RegisterCrudRoutes(staff, "banners")
	controller.NewNewsController(appCtx.API.News, m).RegisterCrudRoutes(staff, "news")
	controller.NewContactController(appCtx.API.Contacts, m, appCtx.ContactSource()).Register(staff)

	nc := controller.NewNotificationController(appCtx.API.Notifications, m, appCtx.Notifier, appCtx.Config.Cache.NotificationPoll)
	nc.Register(staff)
	nc.RegisterStream(staffStream)

	controller.NewUserController(appCtx.API.Users, appCtx.API.Roles, m).Register(adminOnly)

	cc := controller.NewCacheController(appCtx.Cache)
	cc.Register(adminOnly)
	cc.RegisterStream(adminStream)
}
