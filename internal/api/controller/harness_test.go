package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/config"
	"github.com/bassista/go_sole/internal/model"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/bassista/go_sole/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type call struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Auth        string
	Body        []byte
}

// backend is a fake shop REST API. Handlers are registered per test on a
// gin engine; every request is recorded first.
type backend struct {
	*gin.Engine
	mu    sync.Mutex
	calls []call
}

func newBackend() *backend {
	b := &backend{Engine: gin.New()}
	b.Use(func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		b.mu.Lock()
		b.calls = append(b.calls, call{
			Method:      c.Request.Method,
			Path:        c.Request.URL.Path,
			Query:       c.Request.URL.RawQuery,
			ContentType: c.ContentType(),
			Auth:        c.GetHeader("Authorization"),
			Body:        body,
		})
		b.mu.Unlock()
		c.Next()
	})
	return b
}

func (b *backend) count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (b *backend) last(method, path string) (call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.calls) - 1; i >= 0; i-- {
		if b.calls[i].Method == method && b.calls[i].Path == path {
			return b.calls[i], true
		}
	}
	return call{}, false
}

type harness struct {
	backend *backend
	store   *cache.Store
	session *session.Session
	api     *resource.API
	mutator Mutator
	router  *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, session.Document{Token: "admin-token", Role: model.RoleAdmin, Username: "root"})
}

func newHarnessWith(t *testing.T, doc session.Document) *harness {
	t.Helper()
	b := newBackend()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	sess := session.New(doc, nil)
	c, err := client.New(config.APIConfig{BaseURL: srv.URL + "/api"}, sess)
	require.NoError(t, err)

	store := cache.NewStore()
	t.Cleanup(store.Close)
	sess.OnLogout(store.Clear)

	return &harness{
		backend: b,
		store:   store,
		session: sess,
		api:     resource.New(c),
		mutator: Mutator{Store: store, SettleTimeout: time.Second},
		router:  gin.New(),
	}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

type viewResponse[T any] struct {
	Data   T            `json:"data"`
	Status cache.Status `json:"status"`
	Stale  bool         `json:"stale"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
