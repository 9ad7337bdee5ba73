package controller

import (
	"context"
	"net/http"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/model"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/gin-gonic/gin"
)

const stockComponent = "stock-controller"

// StockController serves /api/admin/stocks.
type StockController struct {
	api *resource.StockAPI
	m   Mutator
}

func NewStockController(api *resource.StockAPI, m Mutator) *StockController {
	return &StockController{api: api, m: m}
}

// Register mounts the stock routes.
func (sc *StockController) Register(rg *gin.RouterGroup) {
	rg.GET("/stocks", sc.List)
	rg.GET("/stocks/:id/history", sc.History)
	rg.PUT("/stocks/:id", sc.Adjust)
}

// List handles GET /stocks. ?low=true keeps only records at or under their
// threshold; the cached list stays complete.
func (sc *StockController) List(c *gin.Context) {
	var opts []cache.QueryOption
	if c.Query("low") == "true" {
		opts = append(opts, cache.WithSelect(func(v any) any {
			low := []model.Stock{}
			for _, s := range v.([]model.Stock) {
				if s.LowStock() {
					low = append(low, s)
				}
			}
			return low
		}))
	}
	serveQuery(c, sc.m.Store, stockComponent, cache.Tag(resource.TagStocks), sc.api.List, opts...)
}

// History handles GET /stocks/:id/history.
func (sc *StockController) History(c *gin.Context) {
	id := c.Param("id")
	serveQuery(c, sc.m.Store, stockComponent, cache.ID(resource.TagStockHistory, id), func(ctx context.Context) ([]model.StockHistory, error) {
		return sc.api.History(ctx, id)
	})
}

// Adjust handles PUT /stocks/:id with {quantity_change, reason}.
func (sc *StockController) Adjust(c *gin.Context) {
	id := c.Param("id")
	var adj resource.StockAdjustment
	if !bindJSON(c, stockComponent, &adj) {
		return
	}
	runMutation(c, sc.m, stockComponent, http.StatusOK, func(ctx context.Context) (model.Stock, error) {
		return sc.api.Adjust(ctx, id, adj)
	}, cache.Tag(resource.TagStocks), cache.Tag(resource.TagStockHistory))
}
