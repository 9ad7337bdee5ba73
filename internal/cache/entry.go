package cache

import "time"

// Key identifies a cache entry: a resource tag plus an optional record id.
type Key struct {
	Tag string
	ID  string
}

// Tag builds a tag-only key. Used for invalidation it matches every entry
// carrying the tag.
func Tag(tag string) Key { return Key{Tag: tag} }

// ID builds a key for one record of a tag.
func ID(tag, id string) Key { return Key{Tag: tag, ID: id} }

func (k Key) String() string {
	if k.ID == "" {
		return k.Tag
	}
	return k.Tag + ":" + k.ID
}

// Matches reports whether k, used as an invalidation pattern, selects other.
func (k Key) Matches(other Key) bool {
	if k.Tag != other.Tag {
		return false
	}
	return k.ID == "" || k.ID == other.ID
}

// Status is the fetch state of an entry.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry is a copy of one cache slot. Data keeps the last successful value
// while a refetch is running or after it failed.
type Entry struct {
	Key           Key
	Data          any
	Err           error
	Status        Status
	LastFetchedAt time.Time
	Stale         bool
	Fetching      bool
}

// Settled reports whether the entry has a final result.
func (e Entry) Settled() bool {
	return !e.Fetching && (e.Status == StatusSuccess || e.Status == StatusError)
}
