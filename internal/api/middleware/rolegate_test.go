package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bassista/go_sole/internal/gate"
	"github.com/bassista/go_sole/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrincipal struct {
	token bool
	role  string
}

func (p *fakePrincipal) HasToken() bool { return p.token }
func (p *fakePrincipal) Role() string   { return p.role }

func newGatedRouter(g *gate.Gate, p gate.Principal) *gin.Engine {
	r := gin.New()
	admin := r.Group("/api/admin", RoleGate(g, p, model.RoleAdmin, model.RoleStaff))
	admin.GET("/orders/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString(RoleKey)})
	})
	return r
}

func get(r http.Handler, path, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoleGate_Unauthenticated(t *testing.T) {
	r := newGatedRouter(gate.New("/login", 0), &fakePrincipal{})

	w := get(r, "/api/admin/orders/1", "application/json")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unauthenticated", body["error"])
	assert.Equal(t, "/login", body["loginPath"])

	w = get(r, "/api/admin/orders/1", "text/html")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRoleGate_WarnsOnlyOnFirstRejection(t *testing.T) {
	r := newGatedRouter(gate.New("/login", 1500*time.Millisecond), &fakePrincipal{token: true, role: model.RoleCustomer})

	var bodies []map[string]any
	for _, id := range []string{"1", "2", "1"} {
		w := get(r, "/api/admin/orders/"+id, "")
		require.Equal(t, http.StatusForbidden, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		bodies = append(bodies, body)
	}

	assert.Equal(t, true, bodies[0]["warn"])
	assert.NotEmpty(t, bodies[0]["message"])
	assert.Equal(t, float64(1500), bodies[0]["backAfterMs"])
	for _, b := range bodies[1:] {
		assert.Equal(t, false, b["warn"])
		assert.NotContains(t, b, "message")
	}
}

func TestRoleGate_Authorized(t *testing.T) {
	r := newGatedRouter(gate.New("/login", 0), &fakePrincipal{token: true, role: model.RoleStaff})

	w := get(r, "/api/admin/orders/9", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"staff"}`, w.Body.String())
}

func TestRoleGate_AnyLoggedInRole(t *testing.T) {
	g := gate.New("/login", 0)
	p := &fakePrincipal{token: true, role: model.RoleCustomer}
	r := gin.New()
	r.GET("/api/profile", RoleGate(g, p), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, get(r, "/api/profile", "").Code)
	p.token = false
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/profile", "").Code)
}
