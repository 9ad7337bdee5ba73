package controller

import (
	"context"
	"net/http"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/model"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/gin-gonic/gin"
)

const userComponent = "user-controller"

// UserController serves user and role administration.
type UserController struct {
	users *resource.UserAPI
	roles *resource.RoleAPI
	m     Mutator
}

func NewUserController(users *resource.UserAPI, roles *resource.RoleAPI, m Mutator) *UserController {
	return &UserController{users: users, roles: roles, m: m}
}

// Register mounts the user routes.
func (uc *UserController) Register(rg *gin.RouterGroup) {
	rg.GET("/users", uc.List)
	rg.PUT("/users/:id/role", uc.SetRole)
	rg.GET("/roles", uc.Roles)
}

func (uc *UserController) List(c *gin.Context) {
	serveQuery(c, uc.m.Store, userComponent, cache.Tag(resource.TagUsers), uc.users.List)
}

func (uc *UserController) Roles(c *gin.Context) {
	serveQuery(c, uc.m.Store, userComponent, cache.Tag(resource.TagRoles), uc.roles.List)
}

// SetRole handles PUT /users/:id/role with {role}.
func (uc *UserController) SetRole(c *gin.Context) {
	id := c.Param("id")
	var body resource.RoleInput
	if !bindJSON(c, userComponent, &body) {
		return
	}
	runMutation(c, uc.m, userComponent, http.StatusOK, func(ctx context.Context) (model.User, error) {
		return uc.users.SetRole(ctx, id, body.Role)
	}, cache.Tag(resource.TagUsers))
}
