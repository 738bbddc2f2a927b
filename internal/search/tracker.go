// Package search turns raw keystrokes into an ordered stream of analysis
// requests and decides which of their results may reach the store.
//
// Debouncer collapses a burst of edits into one committed query, Tracker
// numbers every attempt, and Controller issues requests and applies their
// results. All three are owned by the UI update loop and are not
// goroutine-safe.
package search

// Attempt is one analysis request. Attempts are immutable values; an
// attempt is current only while its Generation is the latest issued.
type Attempt struct {
	Generation uint64
	Query      string
}

// Tracker hands out strictly increasing generations.
type Tracker struct {
	latest uint64
}

// Begin issues a new attempt for query. Every earlier attempt stops being
// current.
func (t *Tracker) Begin(query string) Attempt {
	t.latest++
	return Attempt{Generation: t.latest, Query: query}
}

// IsCurrent reports whether gen is the most recently issued generation.
func (t *Tracker) IsCurrent(gen uint64) bool {
	return gen != 0 && gen == t.latest
}

// Invalidate retires the current attempt without issuing a new one.
func (t *Tracker) Invalidate() {
	t.latest++
}

// Latest returns the last generation handed out or retired.
func (t *Tracker) Latest() uint64 {
	return t.latest
}
