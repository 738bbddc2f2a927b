package otel

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for i, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("line %d: invalid JSON %q: %v", i, line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestEmitWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindSearchStart, Level: LevelInfo, Comp: "search", Gen: 7, Query: "pepe"})
	l.Close()

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got["kind"] != "search.start" {
		t.Errorf("kind=%v, want search.start", got["kind"])
	}
	if got["comp"] != "search" {
		t.Errorf("comp=%v, want search", got["comp"])
	}
	if got["gen"] != float64(7) {
		t.Errorf("gen=%v, want 7", got["gen"])
	}
	if got["query"] != "pepe" {
		t.Errorf("query=%v, want pepe", got["query"])
	}
}

func TestEmitStampsTimeAndSession(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	before := time.Now()
	l.Emit(Event{Kind: KindStartup})
	l.Close()

	var ev Event
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Time.Before(before) {
		t.Errorf("time %v precedes emit", ev.Time)
	}
	if len(ev.SessionID) != 16 {
		t.Errorf("session_id should be 16 hex chars, got %q", ev.SessionID)
	}
	if ev.SessionID != l.SessionID() {
		t.Errorf("session_id %q != logger session %q", ev.SessionID, l.SessionID())
	}
}

func TestDurationSerializedAsMillis(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindSearchComplete, Dur: 250 * time.Millisecond})
	l.Close()

	got := decodeLines(t, &buf)[0]
	if got["dur_ms"] != float64(250) {
		t.Errorf("dur_ms=%v, want 250", got["dur_ms"])
	}
}

func TestEmptyFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindShutdown})
	l.Close()

	line := buf.String()
	for _, field := range []string{"dur_ms", "count", "query", "gen", "view", "err", "msg", "extra"} {
		if strings.Contains(line, `"`+field+`"`) {
			t.Errorf("field %q should be omitted: %s", field, line)
		}
	}
}

func TestConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Emit(Event{Kind: KindPollTick, Comp: "poll"})
		}()
	}
	wg.Wait()
	l.Close()

	if n := len(decodeLines(t, &buf)); n != 50 {
		t.Errorf("expected 50 lines, got %d", n)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Emit(Event{Kind: KindStartup})
	l.Info(KindStartup, "main", "hi")
	l.SetRingBuffer(NewRingBuffer(4))
	if l.Dropped() != 0 {
		t.Error("nil logger should report zero drops")
	}
	l.Close()
}

func TestEmitAfterCloseIsDropped(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Close()
	l.Close() // idempotent

	l.Emit(Event{Kind: KindStartup})
	if l.Dropped() != 1 {
		t.Errorf("Dropped()=%d, want 1", l.Dropped())
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written after close, got %q", buf.String())
	}
}

type stallWriter struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (w *stallWriter) Write(p []byte) (int, error) {
	w.once.Do(func() {
		close(w.entered)
		<-w.release
	})
	return len(p), nil
}

func TestFullQueueDrops(t *testing.T) {
	w := &stallWriter{entered: make(chan struct{}), release: make(chan struct{})}
	l := NewLogger(w)

	l.Emit(Event{Kind: KindPollTick})
	<-w.entered

	for i := 0; i < queueSize+5; i++ {
		l.Emit(Event{Kind: KindPollTick})
	}
	if l.Dropped() == 0 {
		t.Error("expected drops with a stalled writer")
	}

	close(w.release)
	l.Close()
}

func TestLevelHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Info(KindStartup, "main", "starting")
	l.Warn(KindSyncError, "sync", "favorites unavailable")
	l.Error(KindError, "main", errors.New("disk full"))
	l.Close()

	want := []struct{ level, kind string }{
		{"info", "sys.startup"},
		{"warn", "sync.error"},
		{"error", "sys.error"},
	}
	lines := decodeLines(t, &buf)
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i, w := range want {
		if lines[i]["level"] != w.level || lines[i]["kind"] != w.kind {
			t.Errorf("line %d: level=%v kind=%v, want %s %s", i, lines[i]["level"], lines[i]["kind"], w.level, w.kind)
		}
	}
	if lines[2]["err"] != "disk full" {
		t.Errorf("err=%v, want disk full", lines[2]["err"])
	}
}
