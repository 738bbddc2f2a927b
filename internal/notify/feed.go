// Package notify holds the user-visible notification feed.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of entries the feed retains.
const DefaultCapacity = 5

// Kind distinguishes success from error notifications.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Entry is a single notification.
type Entry struct {
	ID      string
	Message string
	Kind    Kind
	Time    time.Time
}

// Feed is a bounded, newest-first list of notifications.
// Order is insertion order; timestamps are informational only.
// Not goroutine-safe: it is mutated from the UI update loop.
type Feed struct {
	entries []Entry
	cap     int
	now     func() time.Time
	newID   func() string
}

// NewFeed creates a feed that keeps at most capacity entries.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{
		entries: make([]Entry, 0, capacity+1),
		cap:     capacity,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Push prepends a new entry and evicts the oldest entries beyond capacity.
func (f *Feed) Push(kind Kind, message string) Entry {
	e := Entry{
		ID:      f.newID(),
		Message: message,
		Kind:    kind,
		Time:    f.now(),
	}
	f.entries = append(f.entries, Entry{})
	copy(f.entries[1:], f.entries)
	f.entries[0] = e
	if len(f.entries) > f.cap {
		clear(f.entries[f.cap:])
		f.entries = f.entries[:f.cap]
	}
	return e
}

// Success pushes a success entry.
func (f *Feed) Success(message string) Entry {
	return f.Push(KindSuccess, message)
}

// Error pushes an error entry.
func (f *Feed) Error(message string) Entry {
	return f.Push(KindError, message)
}

// Dismiss removes the entry with the given id. Unknown ids are ignored.
func (f *Feed) Dismiss(id string) bool {
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entries returns a copy of all entries, newest first.
func (f *Feed) Entries() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Visible returns up to n of the newest entries.
func (f *Feed) Visible(n int) []Entry {
	if n <= 0 {
		return nil
	}
	if n > len(f.entries) {
		n = len(f.entries)
	}
	out := make([]Entry, n)
	copy(out, f.entries[:n])
	return out
}

// Latest returns the newest entry.
func (f *Feed) Latest() (Entry, bool) {
	if len(f.entries) == 0 {
		return Entry{}, false
	}
	return f.entries[0], true
}

// Len returns the number of entries.
func (f *Feed) Len() int {
	return len(f.entries)
}

// Cap returns the feed capacity.
func (f *Feed) Cap() int {
	return f.cap
}
