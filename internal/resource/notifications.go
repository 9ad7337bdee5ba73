package resource

import (
	"context"
	"net/http"

	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/model"
)

var notificationsEndpoint = client.Endpoint{Path: "notifications", Envelope: client.EnvelopeNone}

// UnreadCount is the answer of the unread counter endpoint.
type UnreadCount struct {
	Count int `json:"count" validate:"gte=0"`
}

// NotificationAPI covers /notifications.
type NotificationAPI struct{ c *client.Client }

func (a *NotificationAPI) List(ctx context.Context) ([]model.Notification, error) {
	return client.FetchList[model.Notification](ctx, a.c, notificationsEndpoint, nil)
}

func (a *NotificationAPI) Unread(ctx context.Context) (UnreadCount, error) {
	return client.Action[UnreadCount](ctx, a.c, client.Request{
		Method: http.MethodGet,
		Path:   notificationsEndpoint.Sub("unread-count").Path,
	}, client.EnvelopeNone)
}

func (a *NotificationAPI) MarkRead(ctx context.Context, id string) (model.Notification, error) {
	return client.Update[model.Notification](ctx, a.c, notificationsEndpoint.Sub("read"), id, nil)
}

func (a *NotificationAPI) MarkAllRead(ctx context.Context) error {
	_, err := a.c.Do(ctx, client.Request{Method: http.MethodPut, Path: notificationsEndpoint.Sub("read-all").Path})
	return err
}
