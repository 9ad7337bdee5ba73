package resource

import (
	"context"
	"net/http"

	"github.com/bassista/go_sole/internal/apperr"
	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/model"
)

var contactsEndpoint = client.Endpoint{Path: "contacts", Envelope: client.EnvelopeData}

// ContactAPI covers /contacts.
type ContactAPI struct{ c *client.Client }

func (a *ContactAPI) List(ctx context.Context) ([]model.Contact, error) {
	return client.FetchList[model.Contact](ctx, a.c, contactsEndpoint, nil)
}

// MarkHandled flags a contact message as answered.
func (a *ContactAPI) MarkHandled(ctx context.Context, id string) (model.Contact, error) {
	if id == "" {
		return model.Contact{}, apperr.ValidationErr("id is required", map[string]string{"id": "required"})
	}
	return client.Action[model.Contact](ctx, a.c, client.Request{
		Method: http.MethodPut,
		Path:   contactsEndpoint.Sub(id, "handled").Path,
	}, contactsEndpoint.Envelope)
}

func (a *ContactAPI) Delete(ctx context.Context, id string) error {
	return client.Delete(ctx, a.c, contactsEndpoint, id)
}
