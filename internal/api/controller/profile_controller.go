package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bassista/go_sole/internal/apperr"
	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/model"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/gin-gonic/gin"
)

const profileComponent = "profile-controller"

// ProfileController serves the customer profile: account details, the
// address book and the shipping lookups behind the address form.
type ProfileController struct {
	auth     *resource.AuthAPI
	shipping *resource.ShippingAPI
	session  SessionManager
	m        Mutator
}

func NewProfileController(auth *resource.AuthAPI, shipping *resource.ShippingAPI, session SessionManager, m Mutator) *ProfileController {
	return &ProfileController{auth: auth, shipping: shipping, session: session, m: m}
}

// Register mounts the profile routes.
func (pc *ProfileController) Register(rg *gin.RouterGroup) {
	rg.GET("", pc.Get)
	rg.PUT("", pc.Update)
	rg.GET("/addresses", pc.Addresses)
	rg.POST("/addresses", pc.AddAddress)
	rg.PUT("/addresses/:index/default", pc.SetDefault)
	rg.DELETE("/addresses/:index", pc.RemoveAddress)

	rg.GET("/shipping/provinces", pc.Provinces)
	rg.GET("/shipping/districts", pc.Districts)
	rg.GET("/shipping/wards", pc.Wards)
	rg.POST("/shipping/fee", pc.Fee)
}

func (pc *ProfileController) fetchMe(ctx context.Context) (model.User, error) {
	return pc.session.RefreshUser(ctx, pc.auth.Me)
}

func (pc *ProfileController) me(c *gin.Context) (model.User, error) {
	u, _, err := cache.Get[model.User](c.Request.Context(), pc.m.Store, cache.Tag(resource.TagMe), cache.Typed(pc.fetchMe))
	return u, err
}

func (pc *ProfileController) Get(c *gin.Context) {
	serveQuery(c, pc.m.Store, profileComponent, cache.Tag(resource.TagMe), pc.fetchMe)
}

// Update handles PUT /profile.
func (pc *ProfileController) Update(c *gin.Context) {
	var in resource.ProfileInput
	if !bindJSON(c, profileComponent, &in) {
		return
	}
	pc.saveUser(c, func(ctx context.Context) (model.User, error) {
		return pc.auth.UpdateProfile(ctx, in)
	})
}

func (pc *ProfileController) saveUser(c *gin.Context, fn func(context.Context) (model.User, error)) {
	runMutation(c, pc.m, profileComponent, http.StatusOK, func(ctx context.Context) (model.User, error) {
		u, err := fn(ctx)
		if err == nil {
			pc.session.SetUser(u)
		}
		return u, err
	}, cache.Tag(resource.TagMe))
}

func (pc *ProfileController) Addresses(c *gin.Context) {
	serveProjected(c, pc.m.Store, profileComponent, cache.Tag(resource.TagMe), pc.fetchMe,
		func(u model.User) []model.ShippingAddress { return u.Addresses })
}

// AddAddress handles POST /profile/addresses. The first address, or one
// flagged default, becomes the only default.
func (pc *ProfileController) AddAddress(c *gin.Context) {
	var addr model.ShippingAddress
	if !bindJSON(c, profileComponent, &addr) {
		return
	}
	u, err := pc.me(c)
	if err != nil {
		respondError(c, profileComponent, err)
		return
	}
	next := model.AddAddress(u.Addresses, addr)
	pc.saveUser(c, func(ctx context.Context) (model.User, error) {
		return pc.auth.SaveAddresses(ctx, next)
	})
}

func addressIndex(c *gin.Context, u model.User) (int, error) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 || idx >= len(u.Addresses) {
		return 0, apperr.NotFoundErr("address not found")
	}
	return idx, nil
}

// SetDefault handles PUT /profile/addresses/:index/default.
func (pc *ProfileController) SetDefault(c *gin.Context) {
	u, err := pc.me(c)
	if err != nil {
		respondError(c, profileComponent, err)
		return
	}
	idx, err := addressIndex(c, u)
	if err != nil {
		respondError(c, profileComponent, err)
		return
	}
	next, err := model.SetDefaultAddress(u.Addresses, idx)
	if err != nil {
		respondError(c, profileComponent, apperr.ValidationErr(err.Error(), nil))
		return
	}
	pc.saveUser(c, func(ctx context.Context) (model.User, error) {
		return pc.auth.SaveAddresses(ctx, next)
	})
}

// RemoveAddress handles DELETE /profile/addresses/:index. Removing the
// default promotes the first remaining address.
func (pc *ProfileController) RemoveAddress(c *gin.Context) {
	u, err := pc.me(c)
	if err != nil {
		respondError(c, profileComponent, err)
		return
	}
	idx, err := addressIndex(c, u)
	if err != nil {
		respondError(c, profileComponent, err)
		return
	}
	wasDefault := u.Addresses[idx].IsDefault
	next := make([]model.ShippingAddress, 0, len(u.Addresses)-1)
	next = append(next, u.Addresses[:idx]...)
	next = append(next, u.Addresses[idx+1:]...)
	if wasDefault && len(next) > 0 {
		next, _ = model.SetDefaultAddress(next, 0)
	}
	pc.saveUser(c, func(ctx context.Context) (model.User, error) {
		return pc.auth.SaveAddresses(ctx, next)
	})
}

func (pc *ProfileController) Provinces(c *gin.Context) {
	serveProjected(c, pc.m.Store, profileComponent, cache.Tag(resource.TagProvinces), pc.shipping.Provinces, model.ProvinceOptions)
}

// Districts handles GET /shipping/districts?province=. Without a province
// the query stays idle and no request is sent.
func (pc *ProfileController) Districts(c *gin.Context) {
	provinceID, _ := strconv.Atoi(c.Query("province"))
	key := cache.ID(resource.TagDistricts, strconv.Itoa(provinceID))
	serveProjected(c, pc.m.Store, profileComponent, key, func(ctx context.Context) ([]model.District, error) {
		return pc.shipping.Districts(ctx, provinceID)
	}, model.DistrictOptions, cache.WithEnabled(provinceID > 0))
}

// Wards handles GET /shipping/wards?district=, idle without a district.
func (pc *ProfileController) Wards(c *gin.Context) {
	districtID, _ := strconv.Atoi(c.Query("district"))
	key := cache.ID(resource.TagWards, strconv.Itoa(districtID))
	serveProjected(c, pc.m.Store, profileComponent, key, func(ctx context.Context) ([]model.Ward, error) {
		return pc.shipping.Wards(ctx, districtID)
	}, model.WardOptions, cache.WithEnabled(districtID > 0))
}

// Fee handles POST /shipping/fee. Quotes are not cached.
func (pc *ProfileController) Fee(c *gin.Context) {
	var in resource.FeeInput
	if !bindJSON(c, profileComponent, &in) {
		return
	}
	fee, err := pc.shipping.Fee(c.Request.Context(), in)
	if err != nil {
		respondError(c, profileComponent, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": fee})
}
