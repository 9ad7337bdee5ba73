// Package realtime listens to the backend's push channel and turns
// notification events into cache invalidations.
package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/logger"
	"github.com/bassista/go_sole/internal/resource"
)

// EventNewNotification is pushed when the backend creates a notification.
const EventNewNotification = "new-notification"

// Event is one message received from a transport.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
}

// Transport delivers events until ctx is cancelled. Reconnection is the
// transport's own business.
type Transport interface {
	Run(ctx context.Context, emit func(Event)) error
}

// Notifier owns the connection to a Transport. The connection is opened by
// the first Acquire and closed when the last holder releases it.
type Notifier struct {
	transport Transport
	store     cache.Invalidator
	base      context.Context

	mu       sync.Mutex
	refs     int
	cancel   context.CancelFunc
	done     chan struct{}
	watchers map[int]chan Event
	nextID   int
}

// NewNotifier creates a notifier. base bounds the lifetime of every
// connection the notifier opens.
func NewNotifier(base context.Context, t Transport, store cache.Invalidator) *Notifier {
	if t == nil {
		t = NopTransport{}
	}
	return &Notifier{transport: t, store: store, base: base, watchers: make(map[int]chan Event)}
}

// Acquire registers a holder and returns its event feed plus the release
// function. release is idempotent.
func (n *Notifier) Acquire() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan Event, 16)
	n.watchers[id] = ch

	n.refs++
	if n.refs == 1 {
		n.openLocked()
	}

	var once sync.Once
	return ch, func() { once.Do(func() { n.release(id) }) }
}

func (n *Notifier) release(id int) {
	n.mu.Lock()
	if ch, ok := n.watchers[id]; ok {
		delete(n.watchers, id)
		close(ch)
	}
	n.refs--
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)
	if n.refs == 0 {
		cancel, done = n.cancel, n.done
		n.cancel, n.done = nil, nil
	}
	n.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		logger.WithComponent("realtime").Debug("realtime connection closed")
	}
}

func (n *Notifier) openLocked() {
	ctx, cancel := context.WithCancel(n.base)
	done := make(chan struct{})
	n.cancel, n.done = cancel, done

	go func() {
		defer close(done)
		log := logger.WithComponent("realtime")
		log.Debug("realtime connection opened")
		if err := n.transport.Run(ctx, n.handle); err != nil && ctx.Err() == nil {
			// Polling still refreshes notifications.
			log.Warnf("realtime transport stopped: %v", err)
		}
	}()
}

// Active reports the number of current holders.
func (n *Notifier) Active() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.refs
}

func (n *Notifier) handle(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if ev.Type == EventNewNotification && n.store != nil {
		hits := n.store.Invalidate(
			cache.Tag(resource.TagNotifications),
			cache.Tag(resource.TagNotificationsUnread),
		)
		logger.WithComponent("realtime").Debugf("new notification invalidated %d entries", hits)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// parseMessage decodes a pushed payload. JSON objects carry their type in
// "type" (or "event"); anything else is taken as a bare event name.
func parseMessage(name string, data []byte) Event {
	ev := Event{Type: name}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return ev
	}
	var body struct {
		Type  string `json:"type"`
		Event string `json:"event"`
	}
	if strings.HasPrefix(trimmed, "{") && json.Unmarshal([]byte(trimmed), &body) == nil {
		ev.Payload = json.RawMessage(trimmed)
		if ev.Type == "" || ev.Type == "message" {
			if body.Type != "" {
				ev.Type = body.Type
			} else if body.Event != "" {
				ev.Type = body.Event
			}
		}
		return ev
	}
	if ev.Type == "" || ev.Type == "message" {
		ev.Type = trimmed
	}
	return ev
}

// NopTransport never delivers anything.
type NopTransport struct{}

// Run blocks until ctx is done.
func (NopTransport) Run(ctx context.Context, _ func(Event)) error {
	<-ctx.Done()
	return nil
}
