package resource

import (
	"context"

	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/model"
)

var (
	stocksEndpoint       = client.Endpoint{Path: "stocks", Envelope: client.EnvelopeData}
	stockHistoryEndpoint = stocksEndpoint.Sub("history")
)

// StockAdjustment is the PUT body of a stock change.
type StockAdjustment struct {
	QuantityChange int    `json:"quantity_change" validate:"ne=0"`
	Reason         string `json:"reason" validate:"required,max=200"`
}

// StockAPI covers /stocks and /stocks/history.
type StockAPI struct{ c *client.Client }

func (a *StockAPI) List(ctx context.Context) ([]model.Stock, error) {
	return client.FetchList[model.Stock](ctx, a.c, stocksEndpoint, nil)
}

// Adjust applies a relative quantity change to one stock record.
func (a *StockAPI) Adjust(ctx context.Context, id string, adj StockAdjustment) (model.Stock, error) {
	return client.Update[model.Stock](ctx, a.c, stocksEndpoint, id, adj)
}

// History lists adjustments of one stock record.
func (a *StockAPI) History(ctx context.Context, id string) ([]model.StockHistory, error) {
	return client.FetchByID[[]model.StockHistory](ctx, a.c, stockHistoryEndpoint, id)
}
