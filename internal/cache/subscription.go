package cache

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription is a mounted view's interest in one key. Updates carries the
// latest entry; intermediate entries may be skipped when the reader is slow.
type Subscription struct {
	id    string
	key   Key
	opts  queryOptions
	store *Store

	mu     sync.Mutex
	ch     chan Entry
	closed bool
}

// Subscribe registers a view on key and returns its subscription. The current
// entry is delivered at once; a fetch starts when the entry is absent or stale.
func (s *Store) Subscribe(key Key, fetch Fetcher, opts ...QueryOption) *Subscription {
	o := buildQueryOptions(s.staleTime, opts)
	sub := &Subscription{
		id:    uuid.NewString(),
		key:   key,
		opts:  o,
		store: s,
		ch:    make(chan Entry, 1),
	}

	s.mu.Lock()
	rec, _ := s.ensureLocked(key)
	rec.register(fetch, o)
	rec.subs[sub] = struct{}{}
	if o.enabled && s.needsFetchLocked(rec) {
		s.startLocked(rec, false)
	}
	sub.deliver(rec.entry)
	s.mu.Unlock()

	return sub
}

func (sub *Subscription) ID() string { return sub.id }

func (sub *Subscription) Key() Key { return sub.key }

// Updates is closed when the subscription is closed or its entry evicted.
func (sub *Subscription) Updates() <-chan Entry { return sub.ch }

// Current returns the entry as this subscription sees it.
func (sub *Subscription) Current() Entry {
	e, _ := sub.store.Peek(sub.key)
	return sub.opts.project(e)
}

// Close unmounts the view. Results landing afterwards are not delivered.
// In-flight requests are not aborted.
func (sub *Subscription) Close() {
	sub.store.unsubscribe(sub)
	sub.closeUpdates()
}

func (sub *Subscription) deliver(e Entry) {
	e = sub.opts.project(e)

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	// Keep only the newest entry in the buffer.
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- e
}

func (sub *Subscription) closeUpdates() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.ch)
}
