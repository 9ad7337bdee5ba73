package cache

import (
	"errors"
	"time"

	"github.com/bassista/go_sole/internal/logger"
)

// ErrEvicted is returned by Fetch when the entry was removed while waiting.
var ErrEvicted = errors.New("cache entry evicted")

// EventType names a store event.
type EventType string

const (
	EventInvalidated EventType = "invalidated"
	EventUpdated     EventType = "updated"
	EventRemoved     EventType = "removed"
	EventCleared     EventType = "cleared"
)

// Event describes a change in the store. Key is the invalidation pattern for
// EventInvalidated and empty for EventCleared.
type Event struct {
	Type   EventType `json:"type"`
	Key    Key       `json:"-"`
	Tag    string    `json:"tag,omitempty"`
	ID     string    `json:"id,omitempty"`
	Status Status    `json:"status,omitempty"`
	At     time.Time `json:"at"`
}

// Listen returns a channel of store events and a function that stops the
// listener. Events are dropped when the buffer is full.
func (s *Store) Listen(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	s.lmu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = ch
	s.lmu.Unlock()

	stop := func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		if _, ok := s.listeners[id]; ok {
			delete(s.listeners, id)
			close(ch)
		}
	}
	return ch, stop
}

func (s *Store) emit(ev Event) {
	ev.Tag, ev.ID = ev.Key.Tag, ev.Key.ID
	ev.At = s.now()

	s.lmu.Lock()
	defer s.lmu.Unlock()
	for _, ch := range s.listeners {
		select {
		case ch <- ev:
		default:
			logger.WithComponent("cache").Tracef("listener buffer full, dropping %s event", ev.Type)
		}
	}
}
