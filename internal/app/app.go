package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/config"
	"github.com/bassista/go_sole/internal/gate"
	"github.com/bassista/go_sole/internal/logger"
	"github.com/bassista/go_sole/internal/model"
	"github.com/bassista/go_sole/internal/realtime"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/bassista/go_sole/internal/sample"
	"github.com/bassista/go_sole/internal/scheduler"
	"github.com/bassista/go_sole/internal/session"
)

const sampleContacts = 25

// App is the application container (immutable dependencies + lifecycle context).
// It is not a request context; handlers should still use gin's request context.
type App struct {
	Config      *config.Config
	SessionRepo session.Repository
	Session     *session.Session
	Cache       cache.AppStore
	API         *resource.API
	Gate        *gate.Gate
	Notifier    *realtime.Notifier
	// Sample is nil unless misc.sample_data is set.
	Sample *sample.Provider

	BaseCtx context.Context
	Cancel  context.CancelFunc

	done []<-chan struct{}
}

func New(cfg *config.Config, repo session.Repository, sess *session.Session, store cache.AppStore, api *resource.API, transport realtime.Transport) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if repo == nil {
		return nil, errors.New("session repo is nil")
	}
	if sess == nil {
		return nil, errors.New("session is nil")
	}
	if store == nil {
		return nil, errors.New("cache store is nil")
	}
	if api == nil {
		return nil, errors.New("resource api is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Config:      cfg,
		SessionRepo: repo,
		Session:     sess,
		Cache:       store,
		API:         api,
		Gate:        gate.New(cfg.Gate.LoginPath, cfg.Gate.BackDelay),
		Notifier:    realtime.NewNotifier(ctx, transport, store),
		BaseCtx:     ctx,
		Cancel:      cancel,
	}
	if cfg.Misc.SampleData {
		a.Sample = sample.New(uint64(time.Now().UnixNano()))
	}

	// Nothing cached or warned for one account may leak into the next.
	sess.OnLogout(store.Clear)
	sess.OnLogout(a.Gate.Reset)
	return a, nil
}

// ContactSource returns the sample contact loader, or nil for live data.
func (a *App) ContactSource() func(context.Context) ([]model.Contact, error) {
	if a.Sample == nil {
		return nil
	}
	return a.Sample.ContactSource(sampleContacts)
}

// Shutdown cancels the base context and waits for the background
// goroutines, including the final session flush.
func (a *App) Shutdown() {
	if a == nil || a.Cancel == nil {
		return
	}
	a.Cancel()
	for _, ch := range a.done {
		<-ch
	}
	a.done = nil
}

// StartWatchers starts the session file watcher, the session persistence
// scheduler and the cache refetch poller.
func (a *App) StartWatchers() error {
	if err := a.SessionRepo.StartWatcher(a.BaseCtx, a.Session); err != nil {
		return fmt.Errorf("cannot start session file watcher: %w", err)
	}

	a.done = append(a.done,
		session.StartPersistenceScheduler(a.BaseCtx, a.Session, a.SessionRepo, a.Config.Session.PersistInterval),
		scheduler.NewPoller(a.Cache, a.Config.Cache.PollTick).Start(a.BaseCtx),
	)
	logger.WithComponent("app").Debug("background watchers started")
	return nil
}
