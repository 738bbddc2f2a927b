package search

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDelay is the quiet period before an edit is committed.
const DefaultDelay = 600 * time.Millisecond

// CommitMsg is delivered when a debounce timer fires. Only the message
// carrying the latest Seq is honoured.
type CommitMsg struct {
	Seq   uint64
	Query string
}

// Debouncer commits the trimmed input once it has been stable for delay.
// Each Change supersedes every pending timer; stale timers still fire but
// Resolve rejects them.
type Debouncer struct {
	delay  time.Duration
	seq    uint64
	closed bool
}

// NewDebouncer creates a Debouncer. A non-positive delay means DefaultDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Delay returns the configured quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Change records a new raw value and returns the timer command for it.
func (d *Debouncer) Change(raw string) tea.Cmd {
	if d.closed {
		return nil
	}
	d.seq++
	msg := CommitMsg{Seq: d.seq, Query: strings.TrimSpace(raw)}
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return msg
	})
}

// Resolve returns the committed query if msg is from the latest Change.
func (d *Debouncer) Resolve(msg CommitMsg) (string, bool) {
	if d.closed || msg.Seq != d.seq {
		return "", false
	}
	return msg.Query, true
}

// Close discards every pending commit. Later Changes are ignored.
func (d *Debouncer) Close() {
	d.closed = true
}
