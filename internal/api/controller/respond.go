package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bassista/go_sole/internal/apperr"
	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/logger"
	"github.com/gin-gonic/gin"
)

// ViewModel is what every read endpoint answers with: the data plus the
// cache state the screen needs for spinners and stale badges.
type ViewModel struct {
	Data      any          `json:"data"`
	Status    cache.Status `json:"status"`
	Stale     bool         `json:"stale"`
	FetchedAt *time.Time   `json:"fetchedAt,omitempty"`
}

func newViewModel(data any, e cache.Entry) ViewModel {
	vm := ViewModel{Data: data, Status: e.Status, Stale: e.Stale}
	if !e.LastFetchedAt.IsZero() {
		t := e.LastFetchedAt
		vm.FetchedAt = &t
	}
	return vm
}

// respondError maps err onto a status and a {error, message} body. The
// server message is shown when present, else a generic one.
func respondError(c *gin.Context, component string, err error) {
	status := apperr.HTTPStatus(err)
	kind := "internal"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status, kind = http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, cache.ErrEvicted):
		status, kind = http.StatusConflict, "evicted"
	}

	body := gin.H{"message": apperr.PublicMessage(err)}
	if ae, ok := apperr.As(err); ok {
		kind = string(ae.Kind)
		if len(ae.Fields) > 0 {
			body["fields"] = ae.Fields
		}
	}
	body["error"] = kind

	log := logger.WithComponent(component)
	if status >= 500 {
		log.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		log.Debugf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the body into v; a malformed body is a validation error.
func bindJSON(c *gin.Context, component string, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondError(c, component, apperr.ValidationErr("invalid payload", nil))
		return false
	}
	return true
}

// notFound renders the empty state used when a route is missing its id.
func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   string(apperr.NotFound),
		"message": what + " not found",
		"data":    nil,
	})
}

// serveQuery reads key through the cache and answers with a ViewModel.
func serveQuery[T any](c *gin.Context, store cache.Reader, component string, key cache.Key, fetch func(context.Context) (T, error), opts ...cache.QueryOption) {
	data, e, err := cache.Get[T](c.Request.Context(), store, key, cache.Typed(fetch), opts...)
	if err != nil {
		respondError(c, component, err)
		return
	}
	if e.Status == cache.StatusIdle {
		c.JSON(http.StatusOK, newViewModel(nil, e))
		return
	}
	c.JSON(http.StatusOK, newViewModel(data, e))
}

// Mutator runs mutations and waits for the refetches they trigger, so the
// response is sent once the invalidated lists are fresh.
type Mutator struct {
	Store         cache.AppStore
	SettleTimeout time.Duration
}

func runMutation[T any](c *gin.Context, m Mutator, component string, status int, fn func(context.Context) (T, error), keys ...cache.Key) {
	ctx := c.Request.Context()
	result, err := cache.Mutate(ctx, m.Store, fn, cache.Invalidates(keys...))
	if err != nil {
		respondError(c, component, err)
		return
	}
	if len(keys) > 0 {
		if err := m.Store.WaitSettled(ctx, m.SettleTimeout, keys...); err != nil {
			logger.WithComponent(component).Debugf("refetch after mutation not settled: %v", err)
		}
	}
	if status == http.StatusNoContent {
		c.Status(status)
		return
	}
	c.JSON(status, gin.H{"data": result})
}

// done is the result of mutations whose endpoint returns no body.
type done struct{}

func discard(fn func(context.Context) error) func(context.Context) (done, error) {
	return func(ctx context.Context) (done, error) {
		return done{}, fn(ctx)
	}
}

// serveProjected is serveQuery with a typed read-time projection. The cache
// keeps the raw value.
func serveProjected[T, V any](c *gin.Context, store cache.Reader, component string, key cache.Key, fetch func(context.Context) (T, error), project func(T) V, opts ...cache.QueryOption) {
	opts = append(opts, cache.WithSelect(func(v any) any { return project(v.(T)) }))
	data, e, err := cache.Get[V](c.Request.Context(), store, key, cache.Typed(fetch), opts...)
	if err != nil {
		respondError(c, component, err)
		return
	}
	if e.Status == cache.StatusIdle {
		c.JSON(http.StatusOK, newViewModel(nil, e))
		return
	}
	c.JSON(http.StatusOK, newViewModel(data, e))
}
