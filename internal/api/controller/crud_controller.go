package controller

import (
	"context"
	"net/http"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/gin-gonic/gin"
)

// CrudService is the resource API shape shared by vouchers, banners and news.
type CrudService[T, In any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id string, in In) (T, error)
	Delete(ctx context.Context, id string) error
}

// CrudController provides generic list/create/update/delete handlers over a
// cached resource list. Every mutation invalidates Tag.
type CrudController[T, In any] struct {
	Service CrudService[T, In]
	Mutator Mutator
	Tag     string
	// Bind decodes the request into the input; JSON when nil.
	Bind      func(c *gin.Context) (In, error)
	Component string
}

// RegisterCrudRoutes registers CRUD endpoints for a resource on the given router group.
func (cc *CrudController[T, In]) RegisterCrudRoutes(rg *gin.RouterGroup, resource string) {
	rg.GET("/"+resource, cc.List)
	rg.POST("/"+resource, cc.Create)
	rg.PUT("/"+resource+"/:id", cc.Update)
	rg.DELETE("/"+resource+"/:id", cc.Delete)
}

// List handles GET requests through the cache.
func (cc *CrudController[T, In]) List(c *gin.Context) {
	serveQuery(c, cc.Mutator.Store, cc.Component, cache.Tag(cc.Tag), cc.Service.List)
}

// Create handles POST requests.
func (cc *CrudController[T, In]) Create(c *gin.Context) {
	in, ok := cc.bind(c)
	if !ok {
		return
	}
	runMutation(c, cc.Mutator, cc.Component, http.StatusCreated, func(ctx context.Context) (T, error) {
		return cc.Service.Create(ctx, in)
	}, cache.Tag(cc.Tag))
}

// Update handles PUT requests for one record.
func (cc *CrudController[T, In]) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		notFound(c, cc.Tag)
		return
	}
	in, ok := cc.bind(c)
	if !ok {
		return
	}
	runMutation(c, cc.Mutator, cc.Component, http.StatusOK, func(ctx context.Context) (T, error) {
		return cc.Service.Update(ctx, id, in)
	}, cache.Tag(cc.Tag))
}

// Delete handles DELETE requests for one record.
func (cc *CrudController[T, In]) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		notFound(c, cc.Tag)
		return
	}
	runMutation(c, cc.Mutator, cc.Component, http.StatusNoContent, discard(func(ctx context.Context) error {
		return cc.Service.Delete(ctx, id)
	}), cache.Tag(cc.Tag))
}

func (cc *CrudController[T, In]) bind(c *gin.Context) (In, bool) {
	if cc.Bind != nil {
		in, err := cc.Bind(c)
		if err != nil {
			respondError(c, cc.Component, err)
			return in, false
		}
		return in, true
	}
	var in In
	return in, bindJSON(c, cc.Component, &in)
}
