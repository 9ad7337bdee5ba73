package resource

import (
	"context"
	"net/http"

	"github.com/bassista/go_sole/internal/apperr"
	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/model"
)

var (
	usersEndpoint = client.Endpoint{Path: "users", Envelope: client.EnvelopeData}
	rolesEndpoint = client.Endpoint{Path: "roles", Envelope: client.EnvelopeNone}
)

// RoleInput assigns a role to a user.
type RoleInput struct {
	Role string `json:"role" validate:"required"`
}

// UserAPI covers /users.
type UserAPI struct{ c *client.Client }

func (a *UserAPI) List(ctx context.Context) ([]model.User, error) {
	users, err := client.FetchList[model.User](ctx, a.c, usersEndpoint, nil)
	for i := range users {
		users[i].ApplyDefaults()
	}
	return users, err
}

func (a *UserAPI) SetRole(ctx context.Context, id, role string) (model.User, error) {
	if id == "" {
		return model.User{}, apperr.ValidationErr("id is required", map[string]string{"id": "required"})
	}
	return client.Action[model.User](ctx, a.c, client.Request{
		Method: http.MethodPut,
		Path:   usersEndpoint.Sub(id, "role").Path,
		Body:   RoleInput{Role: role},
	}, usersEndpoint.Envelope)
}

// RoleAPI covers /roles.
type RoleAPI struct{ c *client.Client }

func (a *RoleAPI) List(ctx context.Context) ([]model.Role, error) {
	return client.FetchList[model.Role](ctx, a.c, rolesEndpoint, nil)
}
