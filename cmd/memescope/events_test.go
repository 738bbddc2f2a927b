package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/memescope/internal/otel"
)

// journal writes events through a real Logger so the fixture matches the
// on-disk format.
func journal(t *testing.T, events ...otel.Event) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	l := otel.NewLogger(&buf)
	for _, e := range events {
		l.Emit(e)
	}
	l.Close()
	return &buf
}

func TestReadTailKeepsNewestMatches(t *testing.T) {
	buf := journal(t,
		otel.Event{Kind: otel.KindSearchStart, Gen: 1, Query: "pepe"},
		otel.Event{Kind: otel.KindPollTick},
		otel.Event{Kind: otel.KindSearchStart, Gen: 2, Query: "bonk"},
		otel.Event{Kind: otel.KindSearchComplete, Gen: 2, Query: "bonk"},
	)
	buf.WriteString("not json\n\n")

	lines, err := readTail(buf, 2, eventFilter{kind: "search"}.match)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, otel.KindSearchStart, lines[0].ev.Kind)
	assert.Equal(t, uint64(2), lines[0].ev.Gen)
	assert.Equal(t, otel.KindSearchComplete, lines[1].ev.Kind)
	assert.True(t, strings.HasPrefix(string(lines[1].raw), "{"))
}

func TestReadTailZero(t *testing.T) {
	lines, err := readTail(journal(t, otel.Event{Kind: otel.KindStartup}), 0, eventFilter{}.match)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestEventFilter(t *testing.T) {
	ev := otel.Event{Level: otel.LevelWarn, Kind: otel.KindSyncError, Comp: "sync", Gen: 0, SessionID: "abc"}

	tests := []struct {
		name   string
		filter eventFilter
		want   bool
	}{
		{"empty", eventFilter{}, true},
		{"kind prefix", eventFilter{kind: "sync"}, true},
		{"other kind", eventFilter{kind: "search"}, false},
		{"level below", eventFilter{level: "info"}, true},
		{"level above", eventFilter{level: "error"}, false},
		{"comp", eventFilter{comp: "sync"}, true},
		{"other comp", eventFilter{comp: "poll"}, false},
		{"gen", eventFilter{gen: 3}, false},
		{"session", eventFilter{session: "abc"}, true},
		{"other session", eventFilter{session: "xyz"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.match(ev))
		})
	}
}

func TestFormatEvent(t *testing.T) {
	ev := otel.Event{
		Time:  time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		Level: otel.LevelInfo,
		Kind:  otel.KindSearchComplete,
		Comp:  "search",
		Gen:   7,
		Query: "pepe",
		DurMs: 12.5,
	}
	got := formatEvent(ev)
	for _, want := range []string{"15:04:05.000", "INFO", "[search]", "search.complete", "gen=7", `q="pepe"`, "(12.5ms)"} {
		assert.Contains(t, got, want)
	}

	assert.Contains(t, formatEvent(otel.Event{Kind: otel.KindError, Err: "boom"}), "? ")
	assert.Contains(t, formatEvent(otel.Event{Kind: otel.KindError, Err: "boom"}), "err=boom")
}

func TestDurPrecision(t *testing.T) {
	assert.Equal(t, 0, durPrecision(250))
	assert.Equal(t, 1, durPrecision(12.5))
	assert.Equal(t, 2, durPrecision(0.25))
}
