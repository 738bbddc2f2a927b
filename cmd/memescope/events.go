package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/memescope/internal/config"
	"github.com/abelbrown/memescope/internal/otel"
)

var eventsFlags struct {
	file   string
	tail   int
	follow bool
	filter eventFilter
	json   bool
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the JSONL diagnostics log",
	Long: `Prints the newest diagnostics events written by the dashboard
(see --events or log.events in the config file).

  memescope events --kind search --tail 20
  memescope events --gen 42
  memescope events -f --level warn`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	f := eventsCmd.Flags()
	f.StringVar(&eventsFlags.file, "file", "", "event log (default log.events from config, else ~/.memescope/events.jsonl)")
	f.IntVar(&eventsFlags.tail, "tail", 50, "number of recent lines to show")
	f.BoolVarP(&eventsFlags.follow, "follow", "f", false, "keep printing new events")
	f.StringVar(&eventsFlags.filter.kind, "kind", "", "event kind prefix, e.g. search or poll.tick")
	f.StringVar(&eventsFlags.filter.level, "level", "", "minimum level: debug, info, warn, error")
	f.StringVar(&eventsFlags.filter.comp, "comp", "", "component: search, poll, sync, ui, main")
	f.Uint64Var(&eventsFlags.filter.gen, "gen", 0, "search generation")
	f.StringVar(&eventsFlags.filter.session, "session", "", "session id")
	f.BoolVar(&eventsFlags.json, "json", false, "print raw JSON lines")
}

// eventLogPath picks the flag, then the config, then the default location.
func eventLogPath() string {
	if eventsFlags.file != "" {
		return eventsFlags.file
	}
	if cfg, err := config.Load(""); err == nil && cfg.Log.Events != "" {
		return cfg.Log.Events
	}
	return filepath.Join(filepath.Dir(config.ConfigPath()), "events.jsonl")
}

// eventFilter selects events; zero fields match everything.
type eventFilter struct {
	kind    string
	level   string
	comp    string
	gen     uint64
	session string
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level otel.Level) int {
	switch level {
	case otel.LevelInfo:
		return 1
	case otel.LevelWarn:
		return 2
	case otel.LevelError:
		return 3
	default:
		return 0
	}
}

func (f eventFilter) match(ev otel.Event) bool {
	if f.kind != "" && !strings.HasPrefix(string(ev.Kind), f.kind) {
		return false
	}
	if f.level != "" && levelRank(ev.Level) < levelRank(otel.Level(f.level)) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.gen != 0 && ev.Gen != f.gen {
		return false
	}
	if f.session != "" && ev.SessionID != f.session {
		return false
	}
	return true
}

func formatEvent(ev otel.Event) string {
	lvl := strings.ToUpper(string(ev.Level))
	if lvl == "" {
		lvl = "?"
	}
	parts := []string{fmt.Sprintf("%s %-5s [%-6s] %-18s", ev.Time.Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)}

	if ev.Gen != 0 {
		parts = append(parts, fmt.Sprintf("gen=%d", ev.Gen))
	}
	if ev.Query != "" {
		parts = append(parts, fmt.Sprintf("q=%q", ev.Query))
	}
	if ev.View != "" {
		parts = append(parts, "view="+ev.View)
	}
	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	return strings.Join(parts, " ")
}

func durPrecision(ms float64) int {
	switch {
	case ms >= 100:
		return 0
	case ms >= 1:
		return 1
	default:
		return 2
	}
}

type parsedLine struct {
	ev  otel.Event
	raw []byte
}

func parseLine(raw []byte) (otel.Event, bool) {
	raw = trimLine(raw)
	if len(raw) == 0 {
		return otel.Event{}, false
	}
	var ev otel.Event
	if json.Unmarshal(raw, &ev) != nil {
		return otel.Event{}, false
	}
	return ev, true
}

// readTail returns the last n lines of r that match. Malformed lines are
// skipped.
func readTail(r io.Reader, n int, match func(otel.Event) bool) ([]parsedLine, error) {
	if n <= 0 {
		return nil, nil
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := make([]parsedLine, 0, n)
	for scanner.Scan() {
		ev, ok := parseLine(scanner.Bytes())
		if !ok || !match(ev) {
			continue
		}
		line := parsedLine{ev: ev, raw: append([]byte(nil), trimLine(scanner.Bytes())...)}
		if len(ring) < n {
			ring = append(ring, line)
		} else {
			copy(ring, ring[1:])
			ring[n-1] = line
		}
	}
	return ring, scanner.Err()
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func runEvents(cmd *cobra.Command, _ []string) error {
	path := eventLogPath()
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("event log not found at %s; run the dashboard with --events first", path)
		}
		return err
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	emit := func(l parsedLine) {
		if eventsFlags.json {
			fmt.Fprintln(out, string(l.raw))
		} else {
			fmt.Fprintln(out, formatEvent(l.ev))
		}
	}

	lines, err := readTail(f, eventsFlags.tail, eventsFlags.filter.match)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, l := range lines {
		emit(l)
	}
	if !eventsFlags.follow {
		return nil
	}

	ctx := cmd.Context()
	reader := bufio.NewReader(f)
	for {
		raw, err := reader.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		if err != nil {
			return err
		}
		if ev, ok := parseLine(raw); ok && eventsFlags.filter.match(ev) {
			emit(parsedLine{ev: ev, raw: trimLine(raw)})
		}
	}
}
