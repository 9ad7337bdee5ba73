package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bassista/go_sole/internal/logger"
	"golang.org/x/sync/errgroup"
)

// record is the store-private state behind one key.
type record struct {
	entry     Entry
	fetch     Fetcher
	staleTime time.Duration
	gen       uint64
	startedAt time.Time
	// settled is closed when the latest generation lands; nil when idle.
	settled chan struct{}
	subs    map[*Subscription]struct{}
}

func (r *record) register(fetch Fetcher, o queryOptions) {
	if fetch != nil {
		r.fetch = fetch
	}
	r.staleTime = o.staleTime
}

// active reports whether an enabled view is subscribed.
func (r *record) active() bool {
	if r.fetch == nil {
		return false
	}
	for sub := range r.subs {
		if sub.opts.enabled {
			return true
		}
	}
	return false
}

// pollInterval is the shortest refetch interval among enabled subscribers.
func (r *record) pollInterval() time.Duration {
	var d time.Duration
	for sub := range r.subs {
		if !sub.opts.enabled || sub.opts.refetchInterval <= 0 {
			continue
		}
		if d == 0 || sub.opts.refetchInterval < d {
			d = sub.opts.refetchInterval
		}
	}
	return d
}

// Store is the process-wide query cache. It is the only writer of entries:
// callers read copies and change data only through fetches and mutations.
type Store struct {
	mu      sync.Mutex
	records map[Key]*record
	closed  bool

	lmu          sync.Mutex
	listeners    map[uint64]chan Event
	nextListener uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	staleTime time.Duration
	now       func() time.Time
	metrics   *Metrics
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDefaultStaleTime sets the stale time of queries that do not set one.
func WithDefaultStaleTime(d time.Duration) StoreOption {
	return func(s *Store) { s.staleTime = d }
}

// WithMetrics records store activity on m.
func WithMetrics(m *Metrics) StoreOption {
	return func(s *Store) { s.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store. Fetches run until Close.
func NewStore(opts ...StoreOption) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		records:   make(map[Key]*record),
		listeners: make(map[uint64]chan Event),
		ctx:       ctx,
		cancel:    cancel,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close cancels running fetches and waits for their goroutines.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	logger.WithComponent("cache").Debug("store closed")
}

// Query returns the current entry for key and starts a background fetch
// when the entry is absent or stale. A fetch already in flight is reused.
func (s *Store) Query(key Key, fetch Fetcher, opts ...QueryOption) Entry {
	o := buildQueryOptions(s.staleTime, opts)

	s.mu.Lock()
	rec, existed := s.ensureLocked(key)
	rec.register(fetch, o)
	if o.enabled && s.needsFetchLocked(rec) {
		s.startLocked(rec, false)
	}
	e := rec.entry
	s.mu.Unlock()

	s.metrics.lookup(key.Tag, existed && e.Status == StatusSuccess && !e.Stale)
	return o.project(e)
}

// Fetch is Query followed by a wait for the entry to settle. ctx bounds the
// wait only; the fetch itself keeps running and its result is cached.
func (s *Store) Fetch(ctx context.Context, key Key, fetch Fetcher, opts ...QueryOption) (Entry, error) {
	o := buildQueryOptions(s.staleTime, opts)
	e := s.Query(key, fetch, opts...)

	for {
		s.mu.Lock()
		rec, ok := s.records[key]
		if !ok {
			s.mu.Unlock()
			return e, ErrEvicted
		}
		if !rec.entry.Fetching {
			e = o.project(rec.entry)
			s.mu.Unlock()
			if e.Status == StatusError {
				return e, e.Err
			}
			return e, nil
		}
		ch := rec.settled
		e = o.project(rec.entry)
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return e, ctx.Err()
		}
	}
}

// Peek returns the entry for key without registering interest.
func (s *Store) Peek(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return Entry{Key: key, Status: StatusIdle}, false
	}
	return rec.entry, true
}

// Entries returns a copy of every entry, ordered by key.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	out := make([]Entry, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.entry)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out
}

// Invalidate marks every entry matched by keys stale. Entries with an
// enabled subscriber or a fetch in flight refetch immediately, superseding
// that fetch; the rest refetch on their next query. It returns the number of
// entries hit.
func (s *Store) Invalidate(keys ...Key) int {
	if len(keys) == 0 {
		return 0
	}

	s.mu.Lock()
	for _, k := range keys {
		s.emit(Event{Type: EventInvalidated, Key: k})
	}
	hit, refetched := 0, 0
	for k, rec := range s.records {
		if !matchesAny(keys, k) {
			continue
		}
		hit++
		rec.entry.Stale = true
		// A fetch in flight may have read state older than the mutation.
		if (rec.active() || rec.entry.Fetching) && s.startLocked(rec, true) {
			refetched++
		}
	}
	s.mu.Unlock()

	for _, k := range keys {
		s.metrics.invalidated(k.Tag)
	}
	logger.WithComponent("cache").WithField("keys", keyStrings(keys)).
		Debugf("invalidated %d entries, %d refetching", hit, refetched)
	return hit
}

// RefetchDue starts a fetch for every subscribed entry whose refetch interval
// elapsed at now. A fetch hung for longer than the interval is superseded.
func (s *Store) RefetchDue(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := 0
	for _, rec := range s.records {
		interval := rec.pollInterval()
		if interval <= 0 || rec.fetch == nil {
			continue
		}
		if rec.entry.Fetching {
			if now.Sub(rec.startedAt) >= interval && s.startLocked(rec, true) {
				started++
			}
			continue
		}
		if now.Sub(rec.entry.LastFetchedAt) >= interval && s.startLocked(rec, false) {
			started++
		}
	}
	return started
}

// WaitSettled waits until no entry matched by keys has a fetch in flight, or
// until timeout elapses. No keys means every entry. A zero timeout waits for
// ctx only.
func (s *Store) WaitSettled(ctx context.Context, timeout time.Duration, keys ...Key) error {
	s.mu.Lock()
	var pending []chan struct{}
	for k, rec := range s.records {
		if rec.settled != nil && (len(keys) == 0 || matchesAny(keys, k)) {
			pending = append(pending, rec.settled)
		}
	}
	s.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, ch := range pending {
		g.Go(func() error {
			select {
			case <-ch:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	return g.Wait()
}

// Remove evicts one entry. Its subscribers are closed and a fetch in flight
// for it is discarded when it lands.
func (s *Store) Remove(key Key) bool {
	s.mu.Lock()
	rec, ok := s.records[key]
	if ok {
		delete(s.records, key)
		s.dropLocked(rec)
	}
	s.mu.Unlock()

	if ok {
		s.emit(Event{Type: EventRemoved, Key: key})
	}
	return ok
}

// Clear evicts every entry. It is the logout teardown.
func (s *Store) Clear() {
	s.mu.Lock()
	n := len(s.records)
	for k, rec := range s.records {
		delete(s.records, k)
		s.dropLocked(rec)
	}
	s.mu.Unlock()

	s.emit(Event{Type: EventCleared})
	logger.WithComponent("cache").Infof("cache cleared (%d entries)", n)
}

func (s *Store) ensureLocked(key Key) (*record, bool) {
	if rec, ok := s.records[key]; ok {
		return rec, true
	}
	rec := &record{
		entry: Entry{Key: key, Status: StatusIdle},
		subs:  make(map[*Subscription]struct{}),
	}
	s.records[key] = rec
	return rec, false
}

func (s *Store) needsFetchLocked(rec *record) bool {
	if rec.fetch == nil || rec.entry.Fetching {
		return false
	}
	switch {
	case rec.entry.Status == StatusIdle, rec.entry.Status == StatusError, rec.entry.Stale:
		return true
	case rec.staleTime > 0:
		return s.now().Sub(rec.entry.LastFetchedAt) >= rec.staleTime
	}
	return false
}

// startLocked launches a fetch for rec. Unless force is set, a fetch already
// in flight is reused. Every launch takes a new generation; only the latest
// generation may write the entry.
func (s *Store) startLocked(rec *record, force bool) bool {
	if s.closed || rec.fetch == nil {
		return false
	}
	if rec.entry.Fetching && !force {
		return false
	}

	key := rec.entry.Key
	if rec.entry.Fetching {
		logger.WithKey("cache", key.String()).Tracef("superseding fetch generation %d", rec.gen)
	}
	rec.gen++
	gen := rec.gen
	rec.startedAt = s.now()
	if rec.settled == nil {
		rec.settled = make(chan struct{})
	}
	rec.entry.Fetching = true
	if rec.entry.Status != StatusSuccess {
		rec.entry.Status = StatusLoading
	}

	fetch := rec.fetch
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		data, err := fetch(s.ctx)
		s.complete(key, rec, gen, data, err, time.Since(start))
	}()
	return true
}

func (s *Store) complete(key Key, rec *record, gen uint64, data any, err error, took time.Duration) {
	log := logger.WithKey("cache", key.String())

	s.mu.Lock()
	if cur, ok := s.records[key]; !ok || cur != rec || rec.gen != gen {
		s.mu.Unlock()
		s.metrics.discard(key.Tag)
		log.Debugf("discarding result of superseded fetch generation %d", gen)
		return
	}

	rec.entry.Fetching = false
	rec.entry.LastFetchedAt = s.now()
	if err != nil {
		rec.entry.Err = err
		rec.entry.Status = StatusError
		rec.entry.Stale = true
	} else {
		rec.entry.Data = data
		rec.entry.Err = nil
		rec.entry.Status = StatusSuccess
		rec.entry.Stale = false
	}
	e := rec.entry
	s.metrics.fetched(key.Tag, err, took)
	// Delivery and events happen under the store lock so observers never
	// see entries out of order, and before waiters are released. Neither
	// blocks.
	for sub := range rec.subs {
		sub.deliver(e)
	}
	s.emit(Event{Type: EventUpdated, Key: key, Status: e.Status})
	if rec.settled != nil {
		close(rec.settled)
		rec.settled = nil
	}
	s.mu.Unlock()

	if err != nil {
		log.WithError(err).Warn("fetch failed")
	} else {
		log.Tracef("fetch generation %d stored in %v", gen, took)
	}
}

// dropLocked releases waiters and subscribers of an evicted record.
func (s *Store) dropLocked(rec *record) {
	if rec.settled != nil {
		close(rec.settled)
		rec.settled = nil
	}
	for sub := range rec.subs {
		sub.closeUpdates()
	}
	rec.subs = map[*Subscription]struct{}{}
}

func (s *Store) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[sub.key]; ok {
		delete(rec.subs, sub)
	}
}

func matchesAny(patterns []Key, k Key) bool {
	for _, p := range patterns {
		if p.Matches(k) {
			return true
		}
	}
	return false
}

func keyStrings(keys []Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
