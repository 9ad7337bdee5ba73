package resource

import (
	"context"
	"net/http"

	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/model"
)

// LoginInput is the login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput is the storefront sign-up form.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone" validate:"omitempty,min=9,max=15"`
}

// ProfileInput updates the current user's own profile.
type ProfileInput struct {
	FullName string `json:"fullName" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,min=9,max=15"`
}

// AddressesInput replaces the user's address book.
type AddressesInput struct {
	Addresses []model.ShippingAddress `json:"addresses" validate:"dive"`
}

// LoginResult is the bare {token, user} answer of login and register.
type LoginResult struct {
	Token string     `json:"token" validate:"required"`
	User  model.User `json:"user"`
}

// AuthAPI covers /auth.
type AuthAPI struct{ c *client.Client }

func (a *AuthAPI) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	return client.Action[LoginResult](ctx, a.c, client.Request{Method: http.MethodPost, Path: "auth/login", Body: in}, client.EnvelopeNone)
}

func (a *AuthAPI) Register(ctx context.Context, in RegisterInput) (LoginResult, error) {
	return client.Action[LoginResult](ctx, a.c, client.Request{Method: http.MethodPost, Path: "auth/register", Body: in}, client.EnvelopeNone)
}

// Me returns the user bound to the current token.
func (a *AuthAPI) Me(ctx context.Context) (model.User, error) {
	u, err := client.Action[model.User](ctx, a.c, client.Request{Method: http.MethodGet, Path: "auth/me"}, client.EnvelopeUser)
	if err == nil {
		u.ApplyDefaults()
	}
	return u, err
}

func (a *AuthAPI) UpdateProfile(ctx context.Context, in ProfileInput) (model.User, error) {
	u, err := client.Action[model.User](ctx, a.c, client.Request{Method: http.MethodPut, Path: "auth/profile", Body: in}, client.EnvelopeUser)
	if err == nil {
		u.ApplyDefaults()
	}
	return u, err
}

// SaveAddresses stores the whole address book. Callers apply the
// single-default rule before sending.
func (a *AuthAPI) SaveAddresses(ctx context.Context, addresses []model.ShippingAddress) (model.User, error) {
	u, err := client.Action[model.User](ctx, a.c, client.Request{
		Method: http.MethodPut,
		Path:   "auth/addresses",
		Body:   AddressesInput{Addresses: addresses},
	}, client.EnvelopeUser)
	if err == nil {
		u.ApplyDefaults()
	}
	return u, err
}
