package controller

import (
	"context"
	"net/http"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/model"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/gin-gonic/gin"
)

const orderComponent = "order-controller"

// OrderDetail is the order screen view: the record plus what the status
// picker may offer.
type OrderDetail struct {
	model.Order
	Locked       bool                `json:"locked"`
	NextStatuses []model.OrderStatus `json:"nextStatuses"`
}

// OrderController serves /api/admin/orders.
type OrderController struct {
	api *resource.OrderAPI
	m   Mutator
}

func NewOrderController(api *resource.OrderAPI, m Mutator) *OrderController {
	return &OrderController{api: api, m: m}
}

// Register mounts the order routes.
func (oc *OrderController) Register(rg *gin.RouterGroup) {
	rg.GET("/orders", oc.List)
	rg.GET("/orders/:id", oc.Detail)
	rg.PUT("/orders/:id/status", oc.UpdateStatus)
	rg.POST("/orders/:id/cancel", oc.Cancel)
}

// List handles GET /orders?status=.
func (oc *OrderController) List(c *gin.Context) {
	status := model.OrderStatus(c.Query("status"))
	key := cache.Tag(resource.TagOrders)
	if status != "" {
		key = cache.ID(resource.TagOrders, "status="+string(status))
	}
	serveQuery(c, oc.m.Store, orderComponent, key, func(ctx context.Context) ([]model.Order, error) {
		return oc.api.List(ctx, status)
	})
}

func (oc *OrderController) load(c *gin.Context, id string) (model.Order, cache.Entry, error) {
	return cache.Get[model.Order](c.Request.Context(), oc.m.Store, cache.ID(resource.TagOrder, id),
		cache.Typed(func(ctx context.Context) (model.Order, error) { return oc.api.Get(ctx, id) }))
}

// Detail handles GET /orders/:id.
func (oc *OrderController) Detail(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		notFound(c, "order")
		return
	}
	order, e, err := oc.load(c, id)
	if err != nil {
		respondError(c, orderComponent, err)
		return
	}
	c.JSON(http.StatusOK, newViewModel(OrderDetail{
		Order:        order,
		Locked:       order.StatusLocked(),
		NextStatuses: model.NextStatuses(order.Status),
	}, e))
}

type statusBody struct {
	Status model.OrderStatus `json:"status"`
}

// UpdateStatus handles PUT /orders/:id/status. A locked order or an invalid
// transition is rejected before any request is sent.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	var body statusBody
	if !bindJSON(c, orderComponent, &body) {
		return
	}
	current, _, err := oc.load(c, id)
	if err != nil {
		respondError(c, orderComponent, err)
		return
	}
	runMutation(c, oc.m, orderComponent, http.StatusOK, func(ctx context.Context) (model.Order, error) {
		return oc.api.UpdateStatus(ctx, current, body.Status)
	}, cache.Tag(resource.TagOrders), cache.ID(resource.TagOrder, id))
}

// Cancel handles POST /orders/:id/cancel.
func (oc *OrderController) Cancel(c *gin.Context) {
	id := c.Param("id")
	current, _, err := oc.load(c, id)
	if err != nil {
		respondError(c, orderComponent, err)
		return
	}
	runMutation(c, oc.m, orderComponent, http.StatusOK, func(ctx context.Context) (model.Order, error) {
		return oc.api.Cancel(ctx, current)
	}, cache.Tag(resource.TagOrders), cache.ID(resource.TagOrder, id))
}
