// Package session holds the console's explicit session: the bearer token,
// role and user snapshot that the resource client and the role gate read.
// It replaces ambient storage lookups with one injected object whose
// login/logout lifecycle also tears down the query cache.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bassista/go_sole/internal/logger"
	"github.com/bassista/go_sole/internal/model"
	"golang.org/x/sync/singleflight"
)

// ErrNotLoggedIn is returned by operations that need a session token.
var ErrNotLoggedIn = errors.New("not logged in")

// Hook runs after logout, or when a reload swaps the identity.
type Hook func()

// Session is safe for concurrent use.
type Session struct {
	mu         sync.RWMutex
	doc        Document
	dirty      bool
	lastUpdate int64

	repo  Saver
	now   func() time.Time
	hooks []Hook

	refresh singleflight.Group
}

// New creates a session from a loaded document. repo may be nil in tests.
func New(doc Document, repo Saver) *Session {
	return &Session{doc: doc, lastUpdate: doc.Metadata.LastUpdate, repo: repo, now: time.Now}
}

// OnLogout registers a teardown hook.
func (s *Session) OnLogout(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Token returns the bearer token, or "" when logged out or expired.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.expiredLocked() {
		return ""
	}
	return s.doc.Token
}

// HasToken reports whether a usable token is present.
func (s *Session) HasToken() bool {
	return s.Token() != ""
}

// Role returns the role claim of the current user.
func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Role
}

// Username returns the username of the current user.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Username
}

// User returns a copy of the current user snapshot.
func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc.User == nil {
		return model.User{}, false
	}
	return *s.doc.User, true
}

func (s *Session) expiredLocked() bool {
	return s.doc.ExpiresAt > 0 && s.now().UnixMilli() >= s.doc.ExpiresAt
}

// Login stores the token and user and persists at once. Role and username
// come from the user record, falling back to the token claims. A previous
// session is torn down through the logout hooks first.
func (s *Session) Login(ctx context.Context, token string, user model.User) error {
	if token == "" {
		return errors.New("login: empty token")
	}
	claims, err := ParseClaims(token)
	if err != nil {
		// Opaque tokens are accepted; only the JWT fallbacks are lost.
		logger.WithComponent("session").Debugf("token is not a JWT: %v", err)
		claims = &Claims{}
	}
	if claims.Expired(s.now()) {
		return errors.New("login: token already expired")
	}

	doc := Document{
		Token:     token,
		Role:      user.Role,
		Username:  user.Username,
		ExpiresAt: claims.expiry(),
		User:      &user,
	}
	if doc.Role == "" {
		doc.Role = claims.Role
	}
	if doc.Username == "" {
		doc.Username = claims.Username
	}

	s.mu.Lock()
	prev := s.doc.Token
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.Unlock()

	// Any stored token, expired or not, belongs to a previous session whose
	// state must not reach the new one.
	if prev != "" {
		for _, h := range hooks {
			h()
		}
		logger.WithComponent("session").Debug("previous session torn down")
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	logger.WithComponent("session").Infof("logged in as %s (%s)", doc.Username, doc.Role)
	return nil
}

// Logout clears the session, persists it and runs the teardown hooks. The
// hooks run even when persisting failed.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	who := s.doc.Username
	s.doc = Document{}
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.Unlock()

	err := s.persist(ctx)
	for _, h := range hooks {
		h()
	}
	logger.WithComponent("session").Infof("logged out %s", who)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// SetUser replaces the user snapshot after a profile refresh. The change is
// flushed by the persistence scheduler.
func (s *Session) SetUser(user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.Token == "" {
		return
	}
	s.doc.User = &user
	if user.Role != "" {
		s.doc.Role = user.Role
	}
	if user.Username != "" {
		s.doc.Username = user.Username
	}
	s.dirty = true
}

// RefreshUser loads the current user with fetch and stores it. Concurrent
// callers share one fetch.
func (s *Session) RefreshUser(ctx context.Context, fetch func(context.Context) (model.User, error)) (model.User, error) {
	if !s.HasToken() {
		return model.User{}, ErrNotLoggedIn
	}
	v, err, shared := s.refresh.Do("me", func() (any, error) {
		u, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.SetUser(u)
		return u, nil
	})
	if err != nil {
		return model.User{}, err
	}
	if shared {
		logger.WithComponent("session").Trace("user refresh shared with a concurrent caller")
	}
	return v.(model.User), nil
}

func (s *Session) persist(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	s.mu.Lock()
	doc := s.doc
	doc.Metadata.LastUpdate = s.now().UnixMilli()
	s.mu.Unlock()

	if err := s.repo.Save(ctx, &doc); err != nil {
		s.MarkDirty()
		return err
	}

	s.mu.Lock()
	s.lastUpdate = doc.Metadata.LastUpdate
	s.doc.Metadata.LastUpdate = doc.Metadata.LastUpdate
	s.dirty = false
	s.mu.Unlock()
	return nil
}

// MarkDirty flags unsaved changes.
func (s *Session) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
}

// IsDirty reports unsaved changes.
func (s *Session) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// ClearDirty resets the dirty flag.
func (s *Session) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

// GetLastUpdate returns the lastUpdate of the live session.
func (s *Session) GetLastUpdate() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// SetLastUpdate records the lastUpdate written to disk.
func (s *Session) SetLastUpdate(ts int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdate = ts
	s.doc.Metadata.LastUpdate = ts
}

// Snapshot returns a copy of the document.
func (s *Session) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := s.doc
	if doc.User != nil {
		u := *doc.User
		doc.User = &u
	}
	return doc
}

// Replace swaps in a document loaded from disk. When the identity changes
// the logout hooks run, so no cached data of the previous user survives.
func (s *Session) Replace(doc Document) {
	s.mu.Lock()
	identityChanged := s.doc.Token != doc.Token
	s.doc = doc
	s.lastUpdate = doc.Metadata.LastUpdate
	s.dirty = false
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.Unlock()

	if identityChanged {
		logger.WithComponent("session").Info("session identity changed on disk, tearing down")
		for _, h := range hooks {
			h()
		}
	}
}
