package controller

import (
	"context"
	"net/http"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/logger"
	"github.com/bassista/go_sole/internal/model"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/gin-gonic/gin"
)

const authComponent = "auth-controller"

// SessionManager is the session lifecycle the auth screens drive.
type SessionManager interface {
	HasToken() bool
	Role() string
	Username() string
	Login(ctx context.Context, token string, user model.User) error
	Logout(ctx context.Context) error
	SetUser(user model.User)
	RefreshUser(ctx context.Context, fetch func(context.Context) (model.User, error)) (model.User, error)
}

// AuthController serves login, registration, logout and the current user.
type AuthController struct {
	api     *resource.AuthAPI
	session SessionManager
	m       Mutator
}

func NewAuthController(api *resource.AuthAPI, session SessionManager, m Mutator) *AuthController {
	return &AuthController{api: api, session: session, m: m}
}

// RegisterPublic mounts the routes reachable without a session.
func (ac *AuthController) RegisterPublic(rg *gin.RouterGroup) {
	rg.POST("/login", ac.Login)
	rg.POST("/register", ac.SignUp)
	rg.POST("/logout", ac.Logout)
	rg.GET("/session", ac.Session)
}

// Register mounts the routes that need a session.
func (ac *AuthController) Register(rg *gin.RouterGroup) {
	rg.GET("/me", ac.Me)
}

// Login handles POST /login with {email, password}.
func (ac *AuthController) Login(c *gin.Context) {
	var in resource.LoginInput
	if !bindJSON(c, authComponent, &in) {
		return
	}
	res, err := ac.api.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, authComponent, err)
		return
	}
	ac.start(c, res)
}

// SignUp handles POST /register.
func (ac *AuthController) SignUp(c *gin.Context) {
	var in resource.RegisterInput
	if !bindJSON(c, authComponent, &in) {
		return
	}
	res, err := ac.api.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, authComponent, err)
		return
	}
	ac.start(c, res)
}

// start replaces any previous session. Login runs the logout hooks for it,
// so nothing cached for another account survives the switch.
func (ac *AuthController) start(c *gin.Context, res resource.LoginResult) {
	if err := ac.session.Login(c.Request.Context(), res.Token, res.User); err != nil {
		respondError(c, authComponent, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": res.User, "role": ac.session.Role()})
}

// Logout handles POST /logout. It always succeeds for the caller; the
// cache and gate state are torn down by the session hooks.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.session.Logout(c.Request.Context()); err != nil {
		logger.WithComponent(authComponent).Errorf("logout: %v", err)
	}
	c.Status(http.StatusNoContent)
}

// Session handles GET /session: what the login screen needs to redirect.
func (ac *AuthController) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"loggedIn": ac.session.HasToken(),
		"role":     ac.session.Role(),
		"username": ac.session.Username(),
	})
}

// Me handles GET /me through the cache; concurrent refreshes share one call.
func (ac *AuthController) Me(c *gin.Context) {
	serveQuery(c, ac.m.Store, authComponent, cache.Tag(resource.TagMe), ac.fetchMe)
}

func (ac *AuthController) fetchMe(ctx context.Context) (model.User, error) {
	return ac.session.RefreshUser(ctx, ac.api.Me)
}
