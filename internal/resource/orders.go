package resource

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bassista/go_sole/internal/apperr"
	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/model"
)

var ordersEndpoint = client.Endpoint{Path: "orders", Envelope: client.EnvelopeData}

// OrderStatusInput is the body of a status change.
type OrderStatusInput struct {
	Status model.OrderStatus `json:"status" validate:"required,oneof=pending processing shipped delivered canceled"`
}

// OrderAPI covers /orders.
type OrderAPI struct{ c *client.Client }

// List returns orders, optionally filtered by status.
func (a *OrderAPI) List(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {string(status)}}
	}
	orders, err := client.FetchList[model.Order](ctx, a.c, ordersEndpoint, q)
	for i := range orders {
		orders[i].ApplyDefaults()
	}
	return orders, err
}

func (a *OrderAPI) Get(ctx context.Context, id string) (model.Order, error) {
	o, err := client.FetchByID[model.Order](ctx, a.c, ordersEndpoint, id)
	if err == nil {
		o.ApplyDefaults()
	}
	return o, err
}

// UpdateStatus moves the order to status. The current record is required so
// a locked order or an invalid transition never reaches the network.
func (a *OrderAPI) UpdateStatus(ctx context.Context, current model.Order, status model.OrderStatus) (model.Order, error) {
	if err := current.CheckTransition(status); err != nil {
		return model.Order{}, apperr.ValidationErr(err.Error(), map[string]string{"status": "transition"})
	}
	return client.Action[model.Order](ctx, a.c, client.Request{
		Method: http.MethodPut,
		Path:   ordersEndpoint.Sub(current.ID, "status").Path,
		Body:   OrderStatusInput{Status: status},
	}, ordersEndpoint.Envelope)
}

// Cancel cancels a pending or processing order.
func (a *OrderAPI) Cancel(ctx context.Context, current model.Order) (model.Order, error) {
	if err := current.CheckTransition(model.OrderCanceled); err != nil {
		return model.Order{}, apperr.ValidationErr(err.Error(), map[string]string{"status": "transition"})
	}
	return client.Action[model.Order](ctx, a.c, client.Request{
		Method: http.MethodPut,
		Path:   ordersEndpoint.Sub(current.ID, "cancel").Path,
	}, ordersEndpoint.Envelope)
}
