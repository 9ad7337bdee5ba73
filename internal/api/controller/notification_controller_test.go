package controller

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bassista/go_sole/internal/realtime"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notificationBackend(h *harness) *atomic.Int32 {
	var unread atomic.Int32
	unread.Store(3)
	h.backend.GET("/api/notifications", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"_id": "n1", "title": "New order", "message": "SO-1 placed", "isRead": unread.Load() == 0}})
	})
	h.backend.GET("/api/notifications/unread-count", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"count": unread.Load()})
	})
	h.backend.PUT("/api/notifications/read-all", func(c *gin.Context) {
		unread.Store(0)
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return &unread
}

func TestNotifications_ReadAllRefreshesCounter(t *testing.T) {
	h := newHarness(t)
	notificationBackend(h)
	NewNotificationController(h.api.Notifications, h.mutator, nil, time.Minute).Register(h.router.Group("/api/admin"))

	w := h.do(http.MethodGet, "/api/admin/notifications/unread", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 3, decode[viewResponse[resource.UnreadCount]](t, w).Data.Count)

	w = h.do(http.MethodPut, "/api/admin/notifications/read-all", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(http.MethodGet, "/api/admin/notifications/unread", nil)
	assert.Equal(t, 0, decode[viewResponse[resource.UnreadCount]](t, w).Data.Count)
	assert.Equal(t, 2, h.backend.count(http.MethodGet, "/api/notifications/unread-count"))
}

func TestNotificationStream_HoldsConnection(t *testing.T) {
	h := newHarness(t)
	notificationBackend(h)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifier := realtime.NewNotifier(ctx, nil, h.store)
	nc := NewNotificationController(h.api.Notifications, h.mutator, notifier, time.Minute)
	nc.RegisterStream(h.router.Group("/api/admin"))

	srv := httptest.NewServer(h.router)
	defer srv.Close()

	reqCtx, stop := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL+"/api/admin/notifications/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	seen := map[string]bool{}
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() && !(seen["notifications"] && seen["unread"]) {
		if name, ok := strings.CutPrefix(sc.Text(), "event:"); ok {
			seen[name] = true
		}
	}
	assert.True(t, seen["notifications"])
	assert.True(t, seen["unread"])
	assert.Equal(t, 1, notifier.Active())

	stop()
	assert.Eventually(t, func() bool { return notifier.Active() == 0 }, 2*time.Second, 10*time.Millisecond)
}
