package search

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/memescope/internal/api"
	"github.com/abelbrown/memescope/internal/logging"
	"github.com/abelbrown/memescope/internal/metrics"
	"github.com/abelbrown/memescope/internal/model"
	"github.com/abelbrown/memescope/internal/notify"
	"github.com/abelbrown/memescope/internal/otel"
	"github.com/abelbrown/memescope/internal/state"
)

const comp = "search"

// Analyzer runs one analysis request. Implementations must return an error
// satisfying api.IsCanceled when ctx is cancelled.
type Analyzer interface {
	Analyze(ctx context.Context, coin string) (*model.Analysis, error)
}

// ResultMsg carries the resolution of one attempt back to the update loop.
type ResultMsg struct {
	Attempt  Attempt
	Analysis *model.Analysis
	Err      error
	Took     time.Duration
}

// Options wires a Controller. Analyzer, Store and Feed are required.
type Options struct {
	Analyzer Analyzer
	Store    *state.Store
	Feed     *notify.Feed

	// OnSuccess is run after a result is applied. Its command is not tied
	// to the attempt's generation.
	OnSuccess func() tea.Cmd

	Events  *otel.Logger
	Metrics *metrics.Pipeline
}

// Controller issues analysis requests for committed queries and applies
// their results. Apply is the only path by which a result reaches the
// store or the feed.
type Controller struct {
	analyzer  Analyzer
	store     *state.Store
	feed      *notify.Feed
	onSuccess func() tea.Cmd
	events    *otel.Logger
	metrics   *metrics.Pipeline

	tracker   Tracker
	committed string
	inflight  Attempt
	cancel    context.CancelFunc
	closed    bool
}

// NewController creates a Controller.
func NewController(opts Options) *Controller {
	return &Controller{
		analyzer:  opts.Analyzer,
		store:     opts.Store,
		feed:      opts.Feed,
		onSuccess: opts.OnSuccess,
		events:    opts.Events,
		metrics:   opts.Metrics,
	}
}

// Committed returns the last committed query.
func (c *Controller) Committed() string {
	return c.committed
}

// InFlight returns the pending attempt, if any.
func (c *Controller) InFlight() (Attempt, bool) {
	return c.inflight, c.cancel != nil
}

// Commit starts a new attempt for query, cancelling any pending one.
// Committing the same value twice in a row does nothing. An empty query
// clears the result without issuing a request.
func (c *Controller) Commit(query string) tea.Cmd {
	if c.closed || query == c.committed {
		return nil
	}
	c.committed = query
	c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchCommit, Comp: comp, Query: query})

	c.abort()

	if query == "" {
		c.tracker.Invalidate()
		c.store.ClearSearch()
		return nil
	}

	att := c.tracker.Begin(query)
	ctx, cancel := context.WithCancel(context.Background())
	c.inflight = att
	c.cancel = cancel
	c.store.BeginSearch(query)
	c.metrics.SearchStarted()
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchStart, Comp: comp, Gen: att.Generation, Query: query})

	analyzer := c.analyzer
	return func() tea.Msg {
		start := time.Now()
		a, err := analyzer.Analyze(ctx, att.Query)
		return ResultMsg{Attempt: att, Analysis: a, Err: err, Took: time.Since(start)}
	}
}

// Apply is the generation-checked resolution of an attempt. Results of
// attempts that are no longer current are dropped without touching the
// store or the feed. On success the OnSuccess command is returned.
func (c *Controller) Apply(msg ResultMsg) tea.Cmd {
	att := msg.Attempt
	if !c.tracker.IsCurrent(att.Generation) {
		c.metrics.SearchResolved(metrics.OutcomeSuperseded, msg.Took)
		c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchSuperseded, Comp: comp,
			Gen: att.Generation, Query: att.Query, Dur: msg.Took})
		return nil
	}
	c.release()

	if msg.Err != nil && api.IsCanceled(msg.Err) {
		c.metrics.SearchResolved(metrics.OutcomeCanceled, msg.Took)
		c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchCancel, Comp: comp,
			Gen: att.Generation, Query: att.Query})
		return nil
	}

	if msg.Err != nil {
		reason := msg.Err.Error()
		c.store.ResolveSearch(state.Failure(att.Generation, att.Query, reason))
		c.notify(notify.KindError, fmt.Sprintf("Error analyzing %s: %s", att.Query, reason))
		c.metrics.SearchResolved(metrics.OutcomeFailure, msg.Took)
		c.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindSearchError, Comp: comp,
			Gen: att.Generation, Query: att.Query, Dur: msg.Took, Err: reason})
		logging.Warn("analysis failed", "query", att.Query, "err", msg.Err)
		return nil
	}

	c.store.ResolveSearch(state.Success(att.Generation, att.Query, msg.Analysis))
	c.notify(notify.KindSuccess, fmt.Sprintf("Analysis complete for %s", att.Query))
	c.metrics.SearchResolved(metrics.OutcomeSuccess, msg.Took)
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchComplete, Comp: comp,
		Gen: att.Generation, Query: att.Query, Dur: msg.Took})

	if c.onSuccess == nil {
		return nil
	}
	return c.onSuccess()
}

// Close cancels the pending request and retires its generation so a late
// resolution is ignored. Further commits are ignored.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.abort()
	c.tracker.Invalidate()
}

// abort cancels the in-flight request, if any.
func (c *Controller) abort() {
	if c.cancel == nil {
		return
	}
	c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchCancel, Comp: comp,
		Gen: c.inflight.Generation, Query: c.inflight.Query})
	c.release()
}

// release frees the in-flight context.
func (c *Controller) release() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.inflight = Attempt{}
}

func (c *Controller) notify(kind notify.Kind, message string) {
	c.feed.Push(kind, message)
	c.metrics.Notified(string(kind))
}
