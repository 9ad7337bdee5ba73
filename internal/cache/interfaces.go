package cache

import (
	"context"
	"time"
)

// Reader is the cache API needed by read-only controllers.
type Reader interface {
	Fetch(ctx context.Context, key Key, fetch Fetcher, opts ...QueryOption) (Entry, error)
}

// Invalidator is the cache API needed by mutations and the realtime notifier.
type Invalidator interface {
	Invalidate(keys ...Key) int
}

// Settler awaits refetches started by an invalidation.
type Settler interface {
	WaitSettled(ctx context.Context, timeout time.Duration, keys ...Key) error
}

// RefetchStore is the cache API needed by the poll scheduler.
type RefetchStore interface {
	RefetchDue(now time.Time) int
}

// Clearer is the cache API needed by the session logout teardown.
type Clearer interface {
	Clear()
}

// AppStore is the cache contract the application container exposes.
type AppStore interface {
	Reader
	Invalidator
	Settler
	RefetchStore
	Clearer
	Query(key Key, fetch Fetcher, opts ...QueryOption) Entry
	Subscribe(key Key, fetch Fetcher, opts ...QueryOption) *Subscription
	Listen(buffer int) (<-chan Event, func())
	Entries() []Entry
	Remove(key Key) bool
}

var _ AppStore = (*Store)(nil)
