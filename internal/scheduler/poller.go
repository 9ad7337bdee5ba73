// Package scheduler drives time-based cache work.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/logger"
)

// Poller ticks the cache so subscribed entries with a refetch interval are
// refreshed. The tick only needs to be finer than the shortest interval;
// each entry decides on its own whether it is due.
type Poller struct {
	store cache.RefetchStore
	tick  time.Duration
	now   func() time.Time

	ticks   atomic.Int64
	started atomic.Int64
}

func NewPoller(store cache.RefetchStore, tick time.Duration) *Poller {
	if tick <= 0 {
		tick = time.Second
	}
	return &Poller{store: store, tick: tick, now: time.Now}
}

// Start runs the poller until ctx is done. The returned channel is closed
// once the goroutine exited.
func (p *Poller) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	logger.WithComponent("poller").Debugf("starting refetch poller with tick: %v", p.tick)
	ticker := time.NewTicker(p.tick)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.WithComponent("poller").Info("refetch poller stopped")
				return
			case <-ticker.C:
				p.Tick(ctx)
			}
		}
	}()
	return done
}

// Tick runs one evaluation and returns how many refetches it started.
func (p *Poller) Tick(ctx context.Context) int {
	if ctx.Err() != nil {
		logger.WithComponent("poller").Debugf("tick cancelled")
		return 0
	}
	n := p.store.RefetchDue(p.now())
	p.ticks.Add(1)
	p.started.Add(int64(n))
	if n > 0 {
		logger.WithComponent("poller").Debugf("tick started %d refetches", n)
	} else {
		logger.WithComponent("poller").Tracef("tick: nothing due")
	}
	return n
}

// Stats reports ticks run and refetches started since creation.
func (p *Poller) Stats() (ticks, started int64) {
	return p.ticks.Load(), p.started.Load()
}
