package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/config"
	"github.com/bassista/go_sole/internal/model"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/bassista/go_sole/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements session.Repository for testing
type mockRepository struct {
	mu             sync.Mutex
	watcherStarted bool
	watcherErr     error
	saves          int
	doc            session.Document
}

func (m *mockRepository) Load(ctx context.Context) (*session.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.doc
	return &doc, nil
}

func (m *mockRepository) Save(ctx context.Context, doc *session.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if doc != nil {
		m.doc = *doc
	}
	return nil
}

func (m *mockRepository) StartWatcher(ctx context.Context, target session.WatchTarget) error {
	if m.watcherErr != nil {
		return m.watcherErr
	}
	m.watcherStarted = true
	return nil
}

func (m *mockRepository) savedDoc() (session.Document, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc, m.saves
}

func testConfig() *config.Config {
	return &config.Config{
		API:     config.APIConfig{BaseURL: "http://localhost:5000/api"},
		Session: config.SessionConfig{FilePath: "session.json", PersistInterval: time.Hour},
		Cache:   config.CacheConfig{PollTick: 10 * time.Millisecond, NotificationPoll: time.Second, SettleTimeout: time.Second},
		Gate:    config.GateConfig{LoginPath: "/login", BackDelay: time.Second},
	}
}

func testAPI(t *testing.T, sess *session.Session) *resource.API {
	t.Helper()
	c, err := client.New(config.APIConfig{BaseURL: "http://localhost:5000/api"}, sess)
	require.NoError(t, err)
	return resource.New(c)
}

func TestNew_Validation(t *testing.T) {
	cfg := testConfig()
	repo := &mockRepository{}
	sess := session.New(session.Document{}, repo)
	store := cache.NewStore()
	defer store.Close()
	api := testAPI(t, sess)

	tests := []struct {
		name    string
		cfg     *config.Config
		repo    session.Repository
		sess    *session.Session
		store   cache.AppStore
		api     *resource.API
		wantErr string
	}{
		{"nil config", nil, repo, sess, store, api, "config is nil"},
		{"nil repo", cfg, nil, sess, store, api, "session repo is nil"},
		{"nil session", cfg, repo, nil, store, api, "session is nil"},
		{"nil store", cfg, repo, sess, nil, api, "cache store is nil"},
		{"nil api", cfg, repo, sess, store, nil, "resource api is nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.cfg, tt.repo, tt.sess, tt.store, tt.api, nil)
			assert.Nil(t, a)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestNew_WiresDependencies(t *testing.T) {
	cfg := testConfig()
	repo := &mockRepository{}
	sess := session.New(session.Document{}, repo)
	store := cache.NewStore()
	defer store.Close()

	a, err := New(cfg, repo, sess, store, testAPI(t, sess), nil)
	require.NoError(t, err)
	defer a.Shutdown()

	assert.NotNil(t, a.Gate)
	assert.NotNil(t, a.Notifier)
	assert.Nil(t, a.Sample)
	assert.Nil(t, a.ContactSource())
	assert.NoError(t, a.BaseCtx.Err())
}

func TestNew_SampleData(t *testing.T) {
	cfg := testConfig()
	cfg.Misc.SampleData = true
	repo := &mockRepository{}
	sess := session.New(session.Document{}, repo)
	store := cache.NewStore()
	defer store.Close()

	a, err := New(cfg, repo, sess, store, testAPI(t, sess), nil)
	require.NoError(t, err)
	defer a.Shutdown()

	src := a.ContactSource()
	require.NotNil(t, src)
	contacts, err := src(context.Background())
	require.NoError(t, err)
	assert.Len(t, contacts, sampleContacts)
}

type fakePrincipal struct{}

func (fakePrincipal) HasToken() bool { return true }
func (fakePrincipal) Role() string   { return model.RoleCustomer }

func TestLogout_TearsDownCacheAndGate(t *testing.T) {
	cfg := testConfig()
	repo := &mockRepository{}
	sess := session.New(session.Document{Token: "tok", Role: model.RoleCustomer}, repo)
	store := cache.NewStore()
	defer store.Close()

	a, err := New(cfg, repo, sess, store, testAPI(t, sess), nil)
	require.NoError(t, err)
	defer a.Shutdown()

	_, err = store.Fetch(context.Background(), cache.Tag("orders"), func(context.Context) (any, error) { return 1, nil })
	require.NoError(t, err)
	d := a.Gate.Check("/api/admin/orders", fakePrincipal{}, []string{model.RoleAdmin})
	require.True(t, d.Warn)

	require.NoError(t, sess.Logout(context.Background()))

	assert.Empty(t, store.Entries())
	assert.False(t, a.Gate.HasWarned("/api/admin/orders", model.RoleCustomer))
	doc, _ := repo.savedDoc()
	assert.False(t, doc.LoggedIn())
}

func TestStartWatchers(t *testing.T) {
	cfg := testConfig()
	repo := &mockRepository{}
	sess := session.New(session.Document{Token: "tok"}, repo)
	store := cache.NewStore()
	defer store.Close()

	a, err := New(cfg, repo, sess, store, testAPI(t, sess), nil)
	require.NoError(t, err)

	require.NoError(t, a.StartWatchers())
	assert.True(t, repo.watcherStarted)

	sess.SetUser(model.User{Username: "root"})
	a.Shutdown()

	// The persistence scheduler flushes the dirty session on the way out.
	doc, saves := repo.savedDoc()
	assert.Equal(t, 1, saves)
	require.NotNil(t, doc.User)
	assert.Equal(t, "root", doc.User.Username)
	assert.Error(t, a.BaseCtx.Err())
}

func TestStartWatchers_WatcherError(t *testing.T) {
	cfg := testConfig()
	repo := &mockRepository{watcherErr: errors.New("no inotify")}
	sess := session.New(session.Document{}, repo)
	store := cache.NewStore()
	defer store.Close()

	a, err := New(cfg, repo, sess, store, testAPI(t, sess), nil)
	require.NoError(t, err)
	defer a.Shutdown()

	err = a.StartWatchers()
	assert.ErrorContains(t, err, "no inotify")
}

func TestShutdown_NilSafe(t *testing.T) {
	var a *App
	a.Shutdown()
	(&App{}).Shutdown()
}
