// Package gate decides whether the current session may open a role-gated
// console route.
package gate

import (
	"slices"
	"sync"
	"time"

	"github.com/bassista/go_sole/internal/logger"
)

// State is the outcome of a gate evaluation.
type State string

const (
	Unauthenticated  State = "unauthenticated"
	InsufficientRole State = "insufficient_role"
	Authorized       State = "authorized"
)

// Evaluate is a pure function of token presence, role and the allowed set.
// An empty allowed set admits any authenticated role.
func Evaluate(hasToken bool, role string, allowed []string) State {
	if !hasToken {
		return Unauthenticated
	}
	if len(allowed) == 0 || slices.Contains(allowed, role) {
		return Authorized
	}
	return InsufficientRole
}

// Principal is the view of the session the gate needs.
type Principal interface {
	HasToken() bool
	Role() string
}

// Decision tells the caller what to render.
type Decision struct {
	State State `json:"state"`
	// Warn is true the first time a route rejects a role in this session.
	Warn bool `json:"warn"`
	// BackAfter is the delay before navigating back; zero disables it.
	BackAfter time.Duration `json:"-"`
	// LoginPath is set for unauthenticated decisions.
	LoginPath string `json:"loginPath,omitempty"`
}

// Allowed reports whether the route may render.
func (d Decision) Allowed() bool { return d.State == Authorized }

// Gate keeps the per-session warning flags.
type Gate struct {
	loginPath string
	backDelay time.Duration

	mu     sync.Mutex
	warned map[string]struct{}
}

// New creates a gate. backDelay zero disables delayed back navigation.
func New(loginPath string, backDelay time.Duration) *Gate {
	return &Gate{loginPath: loginPath, backDelay: backDelay, warned: make(map[string]struct{})}
}

// Check evaluates route access for p and records the warning flag.
func (g *Gate) Check(route string, p Principal, allowed []string) Decision {
	role := p.Role()
	state := Evaluate(p.HasToken(), role, allowed)

	switch state {
	case Unauthenticated:
		return Decision{State: state, LoginPath: g.loginPath}
	case InsufficientRole:
		return Decision{State: state, Warn: g.warnOnce(route, role), BackAfter: g.backDelay}
	default:
		return Decision{State: state}
	}
}

func (g *Gate) warnOnce(route, role string) bool {
	key := route + "|" + role
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, seen := g.warned[key]; seen {
		return false
	}
	g.warned[key] = struct{}{}
	logger.WithComponent("gate").Warnf("role %q is not allowed on %s", role, route)
	return true
}

// HasWarned reports whether route already warned role.
func (g *Gate) HasWarned(route, role string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, seen := g.warned[route+"|"+role]
	return seen
}

// Reset forgets every warning. Called on logout.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	clear(g.warned)
}
