package controller

import (
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/gin-gonic/gin"
)

// EntryView is the debug view of one cache slot.
type EntryView struct {
	Key           string       `json:"key"`
	Status        cache.Status `json:"status"`
	Stale         bool         `json:"stale"`
	Fetching      bool         `json:"fetching"`
	LastFetchedAt *time.Time   `json:"lastFetchedAt,omitempty"`
	Error         string       `json:"error,omitempty"`
}

// CacheController exposes the query cache to admins for troubleshooting.
type CacheController struct {
	store cache.AppStore
}

func NewCacheController(store cache.AppStore) *CacheController {
	return &CacheController{store: store}
}

// Register mounts the cache routes.
func (cc *CacheController) Register(rg *gin.RouterGroup) {
	rg.GET("/cache", cc.Entries)
	rg.POST("/cache/invalidate", cc.Invalidate)
}

// RegisterStream mounts the event stream outside the request timeout.
func (cc *CacheController) RegisterStream(rg *gin.RouterGroup) {
	rg.GET("/cache/events", cc.Events)
}

// Entries handles GET /cache.
func (cc *CacheController) Entries(c *gin.Context) {
	entries := cc.store.Entries()
	out := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		v := EntryView{Key: e.Key.String(), Status: e.Status, Stale: e.Stale, Fetching: e.Fetching}
		if !e.LastFetchedAt.IsZero() {
			t := e.LastFetchedAt
			v.LastFetchedAt = &t
		}
		if e.Err != nil {
			v.Error = e.Err.Error()
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	c.JSON(http.StatusOK, gin.H{"data": out})
}

type invalidateBody struct {
	Tags []string `json:"tags"`
}

// Invalidate handles POST /cache/invalidate with {tags}.
func (cc *CacheController) Invalidate(c *gin.Context) {
	var body invalidateBody
	if !bindJSON(c, "cache-controller", &body) {
		return
	}
	keys := make([]cache.Key, 0, len(body.Tags))
	for _, t := range body.Tags {
		if t != "" {
			keys = append(keys, cache.Tag(t))
		}
	}
	c.JSON(http.StatusOK, gin.H{"invalidated": cc.store.Invalidate(keys...)})
}

// Events handles GET /cache/events as a server-sent event stream.
func (cc *CacheController) Events(c *gin.Context) {
	events, stop := cc.store.Listen(64)
	defer stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		}
	})
}
