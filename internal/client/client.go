// Package client is the typed HTTP wrapper around the shop REST API. It
// attaches the session bearer token, encodes JSON or multipart bodies,
// unwraps per-endpoint envelopes and turns failures into apperr errors.
// It never retries and never touches the cache.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/bassista/go_sole/internal/apperr"
	"github.com/bassista/go_sole/internal/config"
	"github.com/bassista/go_sole/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const defaultUserAgent = "go_sole-console/1.0"

// TokenSource supplies the bearer token of the current session.
// An empty token means the request is sent anonymously.
type TokenSource interface {
	Token() string
}

// Client executes requests against the configured base URL.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	userAgent  string
	tokens     TokenSource
	validate   *validator.Validate
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithValidator shares a validator instance with the caller.
func WithValidator(v *validator.Validate) Option {
	return func(c *Client) { c.validate = v }
}

// New builds a client from the API configuration.
func New(cfg config.APIConfig, tokens TokenSource, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", cfg.BaseURL)
	}
	// Paths are resolved relative to the base, so it must end with a slash.
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		// Timeout 0 leaves requests bounded only by their context.
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    base,
		userAgent:  cfg.UserAgent,
		tokens:     tokens,
		validate:   validator.New(),
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Request describes one call. Body is encoded as JSON unless it is a
// Multipart carrying at least one file.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is a completed 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
	RequestID  string
}

// Do validates and sends the request. Non-2xx responses are returned as
// *apperr.Error with the status and the server message.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	log := logger.WithComponent("client").WithField("method", req.Method).WithField("path", req.Path)

	if err := c.validatePayload(req.Body); err != nil {
		log.WithError(err).Debug("request payload rejected before send")
		return nil, err
	}

	u, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return nil, apperr.ValidationErr(err.Error(), nil)
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return nil, apperr.TransportErr(err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apperr.TransportErr(fmt.Errorf("reading response body: %w", err))
	}

	log = log.WithField("status", httpResp.StatusCode).WithField("request_id", requestID)
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		msg := serverMessage(raw)
		log.WithField("message", msg).Info("request returned error status")
		return nil, apperr.HTTPErr(httpResp.StatusCode, msg)
	}
	log.WithField("duration", duration).Debug("request completed")

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       raw,
		Duration:   duration,
		RequestID:  requestID,
	}, nil
}

func (c *Client) buildURL(path string, query url.Values) (*url.URL, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil, fmt.Errorf("request path is required")
	}
	u, err := c.baseURL.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", path, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

// validatePayload runs struct validation on the body, or on each element
// of a slice body. Other shapes are sent as they are.
func (c *Client) validatePayload(body any) error {
	if body == nil {
		return nil
	}
	return validateValue(c.validate, body)
}

func validateValue(v *validator.Validate, value any) error {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		if err := v.Struct(rv.Interface()); err != nil {
			return validationError(err)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			el := rv.Index(i)
			for el.Kind() == reflect.Pointer && !el.IsNil() {
				el = el.Elem()
			}
			if el.Kind() != reflect.Struct {
				continue
			}
			if err := v.Struct(el.Interface()); err != nil {
				return validationError(err)
			}
		}
	}
	return nil
}

func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	if mp, ok := body.(Multipart); ok && len(mp.FormFiles()) > 0 {
		return encodeMultipart(mp)
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(b), "application/json", nil
}
