package controller

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/model"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/bassista/go_sole/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authBackend(h *harness) {
	h.backend.POST("/api/auth/login", func(c *gin.Context) {
		var in resource.LoginInput
		_ = c.ShouldBindJSON(&in)
		if in.Password != "secret1" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token": "staff-token",
			"user":  gin.H{"_id": "u2", "username": "mai", "email": in.Email, "role": "staff"},
		})
	})
	h.backend.GET("/api/auth/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": gin.H{"_id": "u1", "username": "root", "role": "admin"}})
	})
}

func newAuthHarness(t *testing.T) *harness {
	h := newHarness(t)
	authBackend(h)
	ac := NewAuthController(h.api.Auth, h.session, h.mutator)
	ac.RegisterPublic(h.router.Group("/api/auth"))
	ac.Register(h.router.Group("/api/auth"))
	return h
}

func TestLogin_ReplacesSessionAndClearsCache(t *testing.T) {
	h := newAuthHarness(t)

	w := h.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "root", decode[viewResponse[model.User]](t, w).Data.Username)
	_, cached := h.store.Peek(cache.Tag(resource.TagMe))
	require.True(t, cached)

	w = h.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "mai@shop.test", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "staff", decode[map[string]any](t, w)["role"])

	assert.Empty(t, h.store.Entries())
	assert.Equal(t, "staff", h.session.Role())
	assert.Equal(t, "mai", h.session.Username())
	assert.Equal(t, "staff-token", h.session.Token())
}

func TestLogin_ExpiredSessionIsTornDown(t *testing.T) {
	h := newHarnessWith(t, session.Document{
		Token:     "old-admin-token",
		Role:      model.RoleAdmin,
		Username:  "root",
		ExpiresAt: time.Now().Add(-time.Hour).UnixMilli(),
	})
	authBackend(h)
	ac := NewAuthController(h.api.Auth, h.session, h.mutator)
	ac.RegisterPublic(h.router.Group("/api/auth"))
	require.False(t, h.session.HasToken())

	_, err := h.store.Fetch(context.Background(), cache.Tag(resource.TagOrders), func(context.Context) (any, error) {
		return []model.Order{{Audit: model.Audit{ID: "o1"}}}, nil
	})
	require.NoError(t, err)
	require.Len(t, h.store.Entries(), 1)

	w := h.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "mai@shop.test", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Empty(t, h.store.Entries())
	assert.Equal(t, "staff-token", h.session.Token())
	assert.Equal(t, model.RoleStaff, h.session.Role())
}

func TestLogin_ServerMessageShown(t *testing.T) {
	h := newAuthHarness(t)

	w := h.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "mai@shop.test", "password": "wrong12"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode[map[string]any](t, w)["message"])
	assert.Equal(t, "admin-token", h.session.Token())
}

func TestLogin_InvalidFormSendsNothing(t *testing.T) {
	h := newAuthHarness(t)

	w := h.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, h.backend.count(http.MethodPost, "/api/auth/login"))
}

func TestLogout(t *testing.T) {
	h := newAuthHarness(t)
	h.do(http.MethodGet, "/api/auth/me", nil)

	w := h.do(http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, h.store.Entries())
	assert.False(t, h.session.HasToken())

	w = h.do(http.MethodGet, "/api/auth/session", nil)
	body := decode[map[string]any](t, w)
	assert.Equal(t, false, body["loggedIn"])
	assert.Equal(t, "", body["role"])
}
