package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/bassista/go_sole/internal/apperr"
)

// Endpoint is a resource collection and the envelope its responses use.
type Endpoint struct {
	Path     string
	Envelope Envelope
}

// Item returns the path of one record of the collection.
func (e Endpoint) Item(id string) string {
	return strings.TrimSuffix(e.Path, "/") + "/" + url.PathEscape(id)
}

// Sub returns the endpoint below the collection with the same envelope.
func (e Endpoint) Sub(segments ...string) Endpoint {
	p := strings.TrimSuffix(e.Path, "/")
	for _, s := range segments {
		p += "/" + url.PathEscape(s)
	}
	return Endpoint{Path: p, Envelope: e.Envelope}
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.ValidationErr("id is required", map[string]string{"id": "required"})
	}
	return nil
}

// Action performs a custom call and decodes the response as T, validating
// the decoded value when T declares constraints.
func Action[T any](ctx context.Context, c *Client, req Request, env Envelope) (T, error) {
	var out T
	resp, err := c.Do(ctx, req)
	if err != nil {
		return out, err
	}
	if len(resp.Body) == 0 {
		return out, nil
	}
	if err := decodeInto(resp.Body, env, &out); err != nil {
		return out, err
	}
	if err := validateValue(c.validate, out); err != nil {
		return out, apperr.DecodeErr(err)
	}
	return out, nil
}

// FetchList loads the collection, optionally filtered by query.
func FetchList[T any](ctx context.Context, c *Client, ep Endpoint, query url.Values) ([]T, error) {
	out, err := Action[[]T](ctx, c, Request{Method: http.MethodGet, Path: ep.Path, Query: query}, ep.Envelope)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// FetchByID loads one record. An empty id fails before any request.
func FetchByID[T any](ctx context.Context, c *Client, ep Endpoint, id string) (T, error) {
	if err := requireID(id); err != nil {
		var zero T
		return zero, err
	}
	return Action[T](ctx, c, Request{Method: http.MethodGet, Path: ep.Item(id)}, ep.Envelope)
}

// Create posts payload to the collection.
func Create[T any](ctx context.Context, c *Client, ep Endpoint, payload any) (T, error) {
	return Action[T](ctx, c, Request{Method: http.MethodPost, Path: ep.Path, Body: payload}, ep.Envelope)
}

// Update puts payload to one record. An empty id fails before any request.
func Update[T any](ctx context.Context, c *Client, ep Endpoint, id string, payload any) (T, error) {
	if err := requireID(id); err != nil {
		var zero T
		return zero, err
	}
	return Action[T](ctx, c, Request{Method: http.MethodPut, Path: ep.Item(id), Body: payload}, ep.Envelope)
}

// Delete removes one record. An empty id fails before any request.
func Delete(ctx context.Context, c *Client, ep Endpoint, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: ep.Item(id)})
	return err
}
