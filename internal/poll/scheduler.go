// Package poll refreshes portfolio performance on a fixed interval while a
// portfolio view is on screen.
package poll

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/memescope/internal/api"
	"github.com/abelbrown/memescope/internal/logging"
	"github.com/abelbrown/memescope/internal/metrics"
	"github.com/abelbrown/memescope/internal/model"
	"github.com/abelbrown/memescope/internal/otel"
)

// DefaultInterval is the time between refreshes.
const DefaultInterval = 30 * time.Second

const comp = "poll"

// Sender delivers messages to the running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// RefreshFunc fetches one performance snapshot.
type RefreshFunc func(ctx context.Context) (*model.Performance, error)

// RefreshMsg is sent after every refresh that was not cancelled.
type RefreshMsg struct {
	Performance *model.Performance
	Err         error
}

// Ticker is the subset of *time.Ticker the scheduler needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Options configures a Scheduler.
type Options struct {
	Interval  time.Duration
	NewTicker func(time.Duration) Ticker
	Events    *otel.Logger
	Metrics   *metrics.Pipeline
}

// Scheduler runs at most one polling goroutine at a time.
// Context cancellation is the only stop mechanism for the goroutine.
type Scheduler struct {
	refresh   RefreshFunc
	interval  time.Duration
	newTicker func(time.Duration) Ticker
	events    *otel.Logger
	metrics   *metrics.Pipeline

	mu      sync.Mutex
	sender  Sender
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// New creates an inactive Scheduler.
func New(refresh RefreshFunc, opts Options) *Scheduler {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	newTicker := opts.NewTicker
	if newTicker == nil {
		newTicker = NewRealTicker
	}
	return &Scheduler{
		refresh:   refresh,
		interval:  interval,
		newTicker: newTicker,
		events:    opts.Events,
		metrics:   opts.Metrics,
	}
}

// Attach sets where refresh results are delivered. Results produced while
// no sender is attached are discarded.
func (s *Scheduler) Attach(sender Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
}

// Interval returns the refresh period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Active reports whether the polling goroutine is running.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// SetActive starts polling (refresh now, then every interval) or stops it.
// Starting while active and stopping while inactive are no-ops. It never
// blocks, so it is safe to call from the update loop.
func (s *Scheduler) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	switch {
	case active && s.cancel == nil:
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.start(ctx)
		s.metrics.SetPollActive(true)
		s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPollStart, Comp: comp})
	case !active && s.cancel != nil:
		s.deactivate()
	}
}

// deactivate cancels the polling goroutine. Caller holds s.mu.
func (s *Scheduler) deactivate() {
	s.cancel()
	s.cancel = nil
	s.metrics.SetPollActive(false)
	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPollStop, Comp: comp})
}

// Stop deactivates the scheduler for good and waits for the polling
// goroutine and any in-flight refresh. Call it after the program has
// exited, since a refresh may be blocked delivering to it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.deactivate()
	}
	s.stopped = true
	s.mu.Unlock()
	s.wg.Wait()
}

// start launches the polling goroutine. Caller holds s.mu.
func (s *Scheduler) start(ctx context.Context) {
	ticker := s.newTicker(s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()

		s.spawn(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				if ctx.Err() != nil {
					return
				}
				s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindPollTick, Comp: comp})
				s.spawn(ctx)
			}
		}
	}()
}

// spawn runs one refresh on its own goroutine so a slow backend never
// delays the next tick.
func (s *Scheduler) spawn(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.refreshOnce(ctx)
	}()
}

func (s *Scheduler) refreshOnce(ctx context.Context) {
	perf, err := s.refresh(ctx)
	if ctx.Err() != nil || api.IsCanceled(err) {
		return
	}
	s.metrics.PollRefreshed(err)
	if err != nil {
		logging.Warn("performance refresh failed", "err", err)
		s.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindSyncError, Comp: comp, Err: err.Error()})
	}

	s.mu.Lock()
	sender := s.sender
	s.mu.Unlock()
	if sender != nil {
		sender.Send(RefreshMsg{Performance: perf, Err: err})
	}
}
