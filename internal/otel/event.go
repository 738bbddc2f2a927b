// Package otel is memescope's diagnostics journal.
//
// Pipeline events are typed structs written as JSONL by an async Logger.
// A RingBuffer can be attached to the Logger for the in-app debug overlay.
// Nothing here is user-facing; notifications live in package notify.
package otel

import (
	"encoding/json"
	"time"
)

// Level is the event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind is "<subsystem>.<action>".
type EventKind string

const (
	// Search pipeline
	KindSearchCommit     EventKind = "search.commit"
	KindSearchStart      EventKind = "search.start"
	KindSearchComplete   EventKind = "search.complete"
	KindSearchError      EventKind = "search.error"
	KindSearchCancel     EventKind = "search.cancel"
	KindSearchSuperseded EventKind = "search.superseded"

	// Portfolio polling
	KindPollStart EventKind = "poll.start"
	KindPollStop  EventKind = "poll.stop"
	KindPollTick  EventKind = "poll.tick"

	// Collection sync (favorites, history, portfolio)
	KindSyncComplete EventKind = "sync.complete"
	KindSyncError    EventKind = "sync.error"

	// Dashboard navigation
	KindTabChange EventKind = "ui.tab"

	// Process lifecycle
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
)

// Event is one journal record. Only Kind is required.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "search", "poll", "sync", "ui", "main"
	SessionID string         `json:"session_id,omitempty"`
	Gen       uint64         `json:"gen,omitempty"` // search attempt generation
	Query     string         `json:"query,omitempty"`
	View      string         `json:"view,omitempty"`
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON fills DurMs from Dur.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	p := plain(e)
	if e.Dur > 0 {
		p.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(p)
}
