package controller

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/logger"
	"github.com/bassista/go_sole/internal/model"
	"github.com/bassista/go_sole/internal/realtime"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/gin-gonic/gin"
)

const notificationComponent = "notification-controller"

// Acquirer hands out the shared realtime connection.
type Acquirer interface {
	Acquire() (<-chan realtime.Event, func())
}

// NotificationController serves the notification bell: polled lists, the
// unread counter and a live stream.
type NotificationController struct {
	api       *resource.NotificationAPI
	m         Mutator
	notifier  Acquirer
	poll      time.Duration
	keepAlive time.Duration
}

func NewNotificationController(api *resource.NotificationAPI, m Mutator, notifier Acquirer, poll time.Duration) *NotificationController {
	return &NotificationController{api: api, m: m, notifier: notifier, poll: poll, keepAlive: 15 * time.Second}
}

// Register mounts the notification routes.
func (nc *NotificationController) Register(rg *gin.RouterGroup) {
	rg.GET("/notifications", nc.List)
	rg.GET("/notifications/unread", nc.Unread)
	rg.PUT("/notifications/:id/read", nc.MarkRead)
	rg.PUT("/notifications/read-all", nc.MarkAllRead)
}

// RegisterStream mounts the long-lived stream; it must not sit behind the
// request timeout.
func (nc *NotificationController) RegisterStream(rg *gin.RouterGroup) {
	rg.GET("/notifications/stream", nc.Stream)
}

func (nc *NotificationController) listFetcher() cache.Fetcher {
	return cache.Typed(nc.api.List)
}

func (nc *NotificationController) unreadFetcher() cache.Fetcher {
	return cache.Typed(nc.api.Unread)
}

func (nc *NotificationController) List(c *gin.Context) {
	serveQuery(c, nc.m.Store, notificationComponent, cache.Tag(resource.TagNotifications), nc.api.List,
		cache.WithRefetchInterval(nc.poll))
}

func (nc *NotificationController) Unread(c *gin.Context) {
	serveQuery(c, nc.m.Store, notificationComponent, cache.Tag(resource.TagNotificationsUnread), nc.api.Unread,
		cache.WithRefetchInterval(nc.poll))
}

// MarkRead handles PUT /notifications/:id/read.
func (nc *NotificationController) MarkRead(c *gin.Context) {
	id := c.Param("id")
	runMutation(c, nc.m, notificationComponent, http.StatusOK, func(ctx context.Context) (model.Notification, error) {
		return nc.api.MarkRead(ctx, id)
	}, cache.Tag(resource.TagNotifications), cache.Tag(resource.TagNotificationsUnread))
}

// MarkAllRead handles PUT /notifications/read-all.
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	runMutation(c, nc.m, notificationComponent, http.StatusNoContent, discard(nc.api.MarkAllRead),
		cache.Tag(resource.TagNotifications), cache.Tag(resource.TagNotificationsUnread))
}

// Stream handles GET /notifications/stream. While open, the list and the
// counter are subscribed (and so polled) and the realtime connection is held.
func (nc *NotificationController) Stream(c *gin.Context) {
	log := logger.WithComponent(notificationComponent)

	list := nc.m.Store.Subscribe(cache.Tag(resource.TagNotifications), nc.listFetcher(), cache.WithRefetchInterval(nc.poll))
	defer list.Close()
	unread := nc.m.Store.Subscribe(cache.Tag(resource.TagNotificationsUnread), nc.unreadFetcher(), cache.WithRefetchInterval(nc.poll))
	defer unread.Close()

	var events <-chan realtime.Event
	if nc.notifier != nil {
		var release func()
		events, release = nc.notifier.Acquire()
		defer release()
	}

	keepAlive := time.NewTicker(nc.keepAlive)
	defer keepAlive.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	log.Debugf("notification stream opened (%s)", list.ID())

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case e, ok := <-list.Updates():
			if !ok {
				return false
			}
			if e.Status == cache.StatusSuccess {
				c.SSEvent("notifications", newViewModel(e.Data, e))
			}
			return true
		case e, ok := <-unread.Updates():
			if !ok {
				return false
			}
			if e.Status == cache.StatusSuccess {
				c.SSEvent("unread", newViewModel(e.Data, e))
			}
			return true
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
	log.Debugf("notification stream closed (%s)", list.ID())
}
