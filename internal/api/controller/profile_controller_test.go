package controller

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func address(name string, def bool) gin.H {
	return gin.H{
		"full_name": name, "phone": "0901234567", "address": "1 Le Loi",
		"province_id": 79, "district_id": 760, "ward_code": "26734", "is_default": def,
	}
}

func profileBackend(h *harness) {
	var mu sync.Mutex
	user := gin.H{
		"_id": "u1", "username": "root", "email": "root@shop.test", "role": "admin",
		"addresses": []gin.H{address("Home", true), address("Office", false)},
	}
	h.backend.GET("/api/auth/me", func(c *gin.Context) {
		mu.Lock()
		defer mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"user": user})
	})
	h.backend.PUT("/api/auth/addresses", func(c *gin.Context) {
		var body struct {
			Addresses []gin.H `json:"addresses"`
		}
		_ = c.ShouldBindJSON(&body)
		mu.Lock()
		defer mu.Unlock()
		user["addresses"] = body.Addresses
		c.JSON(http.StatusOK, gin.H{"user": user})
	})
	h.backend.GET("/api/shipping/provinces", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []gin.H{{"ProvinceID": 79, "ProvinceName": "Ho Chi Minh"}}})
	})
	h.backend.GET("/api/shipping/districts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []gin.H{{"DistrictID": 760, "ProvinceID": 79, "DistrictName": "Quan 1"}}})
	})
}

func newProfileHarness(t *testing.T) *harness {
	h := newHarness(t)
	profileBackend(h)
	NewProfileController(h.api.Auth, h.api.Shipping, h.session, h.mutator).Register(h.router.Group("/api/profile"))
	return h
}

func TestDistricts_IdleWithoutProvince(t *testing.T) {
	h := newProfileHarness(t)

	w := h.do(http.MethodGet, "/api/profile/shipping/districts", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	idle := decode[viewResponse[[]model.Option]](t, w)
	assert.Equal(t, cache.StatusIdle, idle.Status)
	assert.Nil(t, idle.Data)
	assert.Equal(t, 0, h.backend.count(http.MethodGet, "/api/shipping/districts"))

	w = h.do(http.MethodGet, "/api/profile/shipping/districts?province=79", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[viewResponse[[]model.Option]](t, w)
	assert.Equal(t, cache.StatusSuccess, got.Status)
	assert.Equal(t, []model.Option{{Label: "Quan 1", Value: "760"}}, got.Data)

	last, _ := h.backend.last(http.MethodGet, "/api/shipping/districts")
	assert.Equal(t, "province_id=79", last.Query)
}

func TestProvinces_Options(t *testing.T) {
	h := newProfileHarness(t)

	w := h.do(http.MethodGet, "/api/profile/shipping/provinces", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []model.Option{{Label: "Ho Chi Minh", Value: "79"}}, decode[viewResponse[[]model.Option]](t, w).Data)
}

func TestAddresses_SetDefaultKeepsOne(t *testing.T) {
	h := newProfileHarness(t)

	w := h.do(http.MethodPut, "/api/profile/addresses/1/default", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	sent, ok := h.backend.last(http.MethodPut, "/api/auth/addresses")
	require.True(t, ok)
	var body struct {
		Addresses []model.ShippingAddress `json:"addresses"`
	}
	require.NoError(t, json.Unmarshal(sent.Body, &body))
	require.Len(t, body.Addresses, 2)
	assert.False(t, body.Addresses[0].IsDefault)
	assert.True(t, body.Addresses[1].IsDefault)

	w = h.do(http.MethodGet, "/api/profile/addresses", nil)
	list := decode[viewResponse[[]model.ShippingAddress]](t, w).Data
	require.Len(t, list, 2)
	assert.True(t, list[1].IsDefault)

	u, ok := h.session.User()
	require.True(t, ok)
	assert.True(t, u.Addresses[1].IsDefault)
}

func TestAddresses_RemoveDefaultPromotesFirst(t *testing.T) {
	h := newProfileHarness(t)

	w := h.do(http.MethodDelete, "/api/profile/addresses/0", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	sent, _ := h.backend.last(http.MethodPut, "/api/auth/addresses")
	var body struct {
		Addresses []model.ShippingAddress `json:"addresses"`
	}
	require.NoError(t, json.Unmarshal(sent.Body, &body))
	require.Len(t, body.Addresses, 1)
	assert.Equal(t, "Office", body.Addresses[0].FullName)
	assert.True(t, body.Addresses[0].IsDefault)
}

func TestAddresses_UnknownIndex(t *testing.T) {
	h := newProfileHarness(t)

	w := h.do(http.MethodDelete, "/api/profile/addresses/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, h.backend.count(http.MethodPut, "/api/auth/addresses"))
}
