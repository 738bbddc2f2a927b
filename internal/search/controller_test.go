package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/memescope/internal/api"
	"github.com/abelbrown/memescope/internal/metrics"
	"github.com/abelbrown/memescope/internal/model"
	"github.com/abelbrown/memescope/internal/notify"
	"github.com/abelbrown/memescope/internal/otel"
	"github.com/abelbrown/memescope/internal/state"
)

// fakeAnalyzer records calls and answers with fn.
type fakeAnalyzer struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, coin string) (*model.Analysis, error)
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, coin string) (*model.Analysis, error) {
	f.mu.Lock()
	f.calls = append(f.calls, coin)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(ctx, coin)
	}
	return &model.Analysis{Coin: coin}, nil
}

func (f *fakeAnalyzer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type historyRefreshed struct{}

type fixture struct {
	ctrl     *Controller
	store    *state.Store
	feed     *notify.Feed
	analyzer *fakeAnalyzer
	ring     *otel.RingBuffer
}

func newFixture(t *testing.T, a Analyzer) *fixture {
	t.Helper()
	fa, _ := a.(*fakeAnalyzer)
	if a == nil {
		fa = &fakeAnalyzer{}
		a = fa
	}
	ring := otel.NewRingBuffer(64)
	events := otel.NewNullLogger()
	events.SetRingBuffer(ring)
	t.Cleanup(events.Close)

	f := &fixture{store: state.New(), feed: notify.NewFeed(notify.DefaultCapacity), analyzer: fa, ring: ring}
	f.ctrl = NewController(Options{
		Analyzer:  a,
		Store:     f.store,
		Feed:      f.feed,
		OnSuccess: func() tea.Cmd { return func() tea.Msg { return historyRefreshed{} } },
		Events:    events,
		Metrics:   metrics.New(),
	})
	return f
}

func messages(feed *notify.Feed) []string {
	var out []string
	for _, e := range feed.Entries() {
		out = append(out, e.Message)
	}
	return out
}

func TestCommitSuccess(t *testing.T) {
	f := newFixture(t, nil)

	cmd := f.ctrl.Commit("pepe")
	require.NotNil(t, cmd)
	assert.True(t, f.store.Loading())
	assert.Nil(t, f.store.Result())

	follow := f.ctrl.Apply(cmd().(ResultMsg))

	assert.False(t, f.store.Loading())
	res := f.store.Result()
	require.NotNil(t, res)
	assert.False(t, res.Failed())
	assert.Equal(t, "pepe", res.Query)
	assert.Equal(t, "pepe", res.Analysis.Coin)
	assert.Equal(t, []string{"Analysis complete for pepe"}, messages(f.feed))

	latest, _ := f.feed.Latest()
	assert.Equal(t, notify.KindSuccess, latest.Kind)

	require.NotNil(t, follow, "success should trigger a history refresh")
	assert.Equal(t, historyRefreshed{}, follow())
}

func TestSameCommitIsNoop(t *testing.T) {
	f := newFixture(t, nil)
	require.NotNil(t, f.ctrl.Commit("pepe"))
	assert.Nil(t, f.ctrl.Commit("pepe"))
}

func TestEmptyCommitClearsWithoutRequest(t *testing.T) {
	f := newFixture(t, nil)

	assert.Nil(t, f.ctrl.Commit(""), "initial empty commit is not a change")

	cmd := f.ctrl.Commit("pepe")
	assert.Nil(t, f.ctrl.Commit(""))

	assert.Nil(t, f.store.Result())
	assert.False(t, f.store.Loading())
	assert.Empty(t, f.store.Query())

	// pepe's late result must not resurrect a result
	assert.Nil(t, f.ctrl.Apply(cmd().(ResultMsg)))
	assert.Nil(t, f.store.Result())
	assert.Equal(t, 0, f.feed.Len())
	assert.Equal(t, []string{"pepe"}, f.analyzer.Calls())
}

func TestSupersededResultIgnored(t *testing.T) {
	release := make(chan struct{})
	pepeCtx := make(chan context.Context, 1)
	fa := &fakeAnalyzer{fn: func(ctx context.Context, coin string) (*model.Analysis, error) {
		if coin == "pepe" {
			pepeCtx <- ctx
			// the backend ignores the abort and answers late
			<-release
		}
		return &model.Analysis{Coin: coin, CurrentPrice: 1}, nil
	}}
	f := newFixture(t, fa)

	pepe := f.ctrl.Commit("pepe")
	pepeDone := make(chan tea.Msg, 1)
	go func() { pepeDone <- pepe() }()

	shiba := f.ctrl.Commit("shiba inu")
	assert.ErrorIs(t, (<-pepeCtx).Err(), context.Canceled, "pepe should be cancelled on supersede")

	f.ctrl.Apply(shiba().(ResultMsg))
	close(release)
	assert.Nil(t, f.ctrl.Apply((<-pepeDone).(ResultMsg)))

	res := f.store.Result()
	require.NotNil(t, res)
	assert.Equal(t, "shiba inu", res.Query)
	assert.Equal(t, "shiba inu", res.Analysis.Coin)
	for _, m := range messages(f.feed) {
		assert.NotContains(t, m, "pepe")
	}
	assert.Equal(t, 1, f.ring.Stats()[otel.KindSearchSuperseded])
}

func TestOlderResolvingFirstIsAlsoIgnored(t *testing.T) {
	f := newFixture(t, nil)

	old := f.ctrl.Commit("pepe")
	cur := f.ctrl.Commit("wif")

	f.ctrl.Apply(old().(ResultMsg))
	assert.True(t, f.store.Loading(), "superseded result must not end loading")
	assert.Nil(t, f.store.Result())

	f.ctrl.Apply(cur().(ResultMsg))
	assert.Equal(t, "wif", f.store.Result().Query)
	assert.Equal(t, []string{"Analysis complete for wif"}, messages(f.feed))
}

func TestCanceledCurrentIsSilent(t *testing.T) {
	fa := &fakeAnalyzer{fn: func(ctx context.Context, coin string) (*model.Analysis, error) {
		return nil, context.Canceled
	}}
	f := newFixture(t, fa)

	cmd := f.ctrl.Commit("pepe")
	assert.Nil(t, f.ctrl.Apply(cmd().(ResultMsg)))
	assert.Nil(t, f.store.Result())
	assert.Equal(t, 0, f.feed.Len())
}

func TestServerErrorBecomesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newFixture(t, api.New(api.Options{BaseURL: srv.URL}))

	cmd := f.ctrl.Commit("rugpull")
	follow := f.ctrl.Apply(cmd().(ResultMsg))

	assert.Nil(t, follow, "failures do not refresh history")
	assert.False(t, f.store.Loading())
	res := f.store.Result()
	require.NotNil(t, res)
	assert.True(t, res.Failed())
	assert.Equal(t, "HTTP error! status: 500", res.Failure)

	entries := f.feed.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, notify.KindError, entries[0].Kind)
	assert.Equal(t, "Error analyzing rugpull: HTTP error! status: 500", entries[0].Message)
}

func TestCloseCancelsInFlight(t *testing.T) {
	var seen context.Context
	fa := &fakeAnalyzer{fn: func(ctx context.Context, coin string) (*model.Analysis, error) {
		seen = ctx
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	f := newFixture(t, fa)

	cmd := f.ctrl.Commit("pepe")
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	require.Eventually(t, func() bool { return len(fa.Calls()) == 1 }, time.Second, time.Millisecond)

	f.ctrl.Close()
	msg := (<-done).(ResultMsg)
	assert.True(t, api.IsCanceled(msg.Err))
	assert.Error(t, seen.Err())

	assert.Nil(t, f.ctrl.Apply(msg))
	assert.Equal(t, 0, f.feed.Len())
	assert.Nil(t, f.ctrl.Commit("wif"), "closed controller ignores commits")
}

// TestTypingIssuesOneRequest drives the debouncer and controller together
// against a real HTTP server.
func TestTypingIssuesOneRequest(t *testing.T) {
	var posts atomic.Int32
	var bodies sync.Map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Coin string `json:"coin"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		bodies.Store(posts.Add(1), req.Coin)
		_ = json.NewEncoder(w).Encode(model.Analysis{Coin: req.Coin, CurrentPrice: 0.08})
	}))
	defer srv.Close()

	f := newFixture(t, api.New(api.Options{BaseURL: srv.URL}))
	d := NewDebouncer(5 * time.Millisecond)

	var ticks []tea.Cmd
	word := "dogecoin"
	for i := 1; i <= len(word); i++ {
		ticks = append(ticks, d.Change(word[:i]))
	}

	// timers fire in any order; only the last edit commits
	var wg sync.WaitGroup
	fired := make(chan CommitMsg, len(ticks))
	for _, tick := range ticks {
		wg.Add(1)
		go func(c tea.Cmd) {
			defer wg.Done()
			fired <- c().(CommitMsg)
		}(tick)
	}
	wg.Wait()
	close(fired)

	for msg := range fired {
		q, ok := d.Resolve(msg)
		if !ok {
			continue
		}
		if cmd := f.ctrl.Commit(q); cmd != nil {
			f.ctrl.Apply(cmd().(ResultMsg))
		}
	}

	assert.EqualValues(t, 1, posts.Load())
	coin, _ := bodies.Load(int32(1))
	assert.Equal(t, "dogecoin", coin)
	assert.Equal(t, "dogecoin", f.store.Result().Analysis.Coin)
	assert.True(t, strings.HasSuffix(messages(f.feed)[0], "dogecoin"))
}
