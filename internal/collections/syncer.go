// Package collections keeps favorites, search history, the portfolio and
// its performance in step with the backend.
//
// Every network call runs inside a tea.Cmd and reports back with a message;
// Apply, called from the update loop, is the only place the store and the
// feed are written. Failures are logged and journalled, never retried.
package collections

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/memescope/internal/api"
	"github.com/abelbrown/memescope/internal/logging"
	"github.com/abelbrown/memescope/internal/metrics"
	"github.com/abelbrown/memescope/internal/model"
	"github.com/abelbrown/memescope/internal/notify"
	"github.com/abelbrown/memescope/internal/otel"
	"github.com/abelbrown/memescope/internal/state"
)

// maxConcurrentLoads bounds the startup snapshot.
const maxConcurrentLoads = 4

const comp = "sync"

// ErrInvalidHolding is returned for a holding form missing required fields.
var ErrInvalidHolding = errors.New("enter a coin, an amount and a purchase price")

// Client is the subset of the API client used here.
type Client interface {
	History(ctx context.Context) ([]model.HistoryEntry, error)
	Favorites(ctx context.Context) ([]model.Favorite, error)
	AddFavorite(ctx context.Context, coin string) error
	RemoveFavorite(ctx context.Context, coin string) error
	Portfolio(ctx context.Context) ([]model.Holding, error)
	AddHolding(ctx context.Context, form model.HoldingForm) (*model.Holding, error)
	RemoveHolding(ctx context.Context, id int64) error
	Performance(ctx context.Context) (*model.Performance, error)
}

// Options wires a Syncer. Client, Store and Feed are required.
type Options struct {
	Client  Client
	Store   *state.Store
	Feed    *notify.Feed
	Events  *otel.Logger
	Metrics *metrics.Pipeline
}

// Syncer builds commands for collection calls and applies their results.
type Syncer struct {
	client  Client
	store   *state.Store
	feed    *notify.Feed
	events  *otel.Logger
	metrics *metrics.Pipeline

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Syncer. Close cancels every call it started.
func New(opts Options) *Syncer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Syncer{
		client:  opts.Client,
		store:   opts.Store,
		feed:    opts.Feed,
		events:  opts.Events,
		metrics: opts.Metrics,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Close aborts outstanding calls.
func (s *Syncer) Close() {
	s.cancel()
}

// Context is cancelled by Close.
func (s *Syncer) Context() context.Context {
	return s.ctx
}

// Snapshot loads all four collections in parallel.
func (s *Syncer) Snapshot() tea.Cmd {
	ctx := s.ctx
	return func() tea.Msg {
		var msg SnapshotMsg
		var g errgroup.Group
		g.SetLimit(maxConcurrentLoads)

		g.Go(func() error {
			msg.Portfolio = s.loadPortfolio(ctx)
			return nil
		})
		g.Go(func() error {
			msg.Performance = s.loadPerformance(ctx)
			return nil
		})
		g.Go(func() error {
			msg.Favorites = s.loadFavorites(ctx)
			return nil
		})
		g.Go(func() error {
			msg.History = s.loadHistory(ctx)
			return nil
		})

		_ = g.Wait() // members report errors in their own message
		return msg
	}
}

// RefreshHistory re-reads the search history.
func (s *Syncer) RefreshHistory() tea.Cmd {
	ctx := s.ctx
	return func() tea.Msg { return s.loadHistory(ctx) }
}

// RefreshFavorites re-reads the favorites.
func (s *Syncer) RefreshFavorites() tea.Cmd {
	ctx := s.ctx
	return func() tea.Msg { return s.loadFavorites(ctx) }
}

// RefreshPortfolio re-reads the holdings.
func (s *Syncer) RefreshPortfolio() tea.Cmd {
	ctx := s.ctx
	return func() tea.Msg { return s.loadPortfolio(ctx) }
}

// RefreshPerformance re-reads the portfolio performance.
func (s *Syncer) RefreshPerformance() tea.Cmd {
	ctx := s.ctx
	return func() tea.Msg { return s.loadPerformance(ctx) }
}

// FetchPerformance is the polling refresh function.
func (s *Syncer) FetchPerformance(ctx context.Context) (*model.Performance, error) {
	return s.client.Performance(ctx)
}

// AddFavorite stores coin as a favorite and re-reads the list.
func (s *Syncer) AddFavorite(coin string) tea.Cmd {
	coin = strings.TrimSpace(coin)
	if coin == "" {
		return nil
	}
	ctx := s.ctx
	return func() tea.Msg {
		if err := s.client.AddFavorite(ctx, coin); err != nil {
			return FavoriteAddedMsg{Coin: coin, Err: err}
		}
		return FavoriteAddedMsg{Coin: coin, Favorites: s.loadFavorites(ctx)}
	}
}

// RemoveFavorite deletes coin from the favorites and re-reads the list.
func (s *Syncer) RemoveFavorite(coin string) tea.Cmd {
	coin = strings.TrimSpace(coin)
	if coin == "" {
		return nil
	}
	ctx := s.ctx
	return func() tea.Msg {
		if err := s.client.RemoveFavorite(ctx, coin); err != nil {
			return FavoriteRemovedMsg{Coin: coin, Err: err}
		}
		return FavoriteRemovedMsg{Coin: coin, Favorites: s.loadFavorites(ctx)}
	}
}

// ToggleFavorite adds or removes coin depending on the current favorites.
func (s *Syncer) ToggleFavorite(coin string) tea.Cmd {
	if s.store.IsFavorite(coin) {
		return s.RemoveFavorite(coin)
	}
	return s.AddFavorite(coin)
}

// ValidateHolding checks the fields the backend requires.
func ValidateHolding(form model.HoldingForm) error {
	if strings.TrimSpace(form.Coin) == "" || form.Amount <= 0 || form.PurchasePrice <= 0 {
		return ErrInvalidHolding
	}
	return nil
}

// RejectForm reports a holding form that could not be submitted.
func (s *Syncer) RejectForm(err error) {
	s.notify(notify.KindError, err.Error())
}

// AddHolding records a position. An invalid form is reported through the
// feed and no request is made.
func (s *Syncer) AddHolding(form model.HoldingForm) tea.Cmd {
	if err := ValidateHolding(form); err != nil {
		s.RejectForm(err)
		return nil
	}
	form.Coin = strings.TrimSpace(form.Coin)
	ctx := s.ctx
	return func() tea.Msg {
		h, err := s.client.AddHolding(ctx, form)
		if err != nil {
			return HoldingAddedMsg{Form: form, Err: err}
		}
		return HoldingAddedMsg{
			Form:        form,
			Holding:     h,
			Portfolio:   s.loadPortfolio(ctx),
			Performance: s.loadPerformance(ctx),
		}
	}
}

// RemoveHolding deletes a position by id.
func (s *Syncer) RemoveHolding(id int64) tea.Cmd {
	ctx := s.ctx
	return func() tea.Msg {
		if err := s.client.RemoveHolding(ctx, id); err != nil {
			return HoldingRemovedMsg{ID: id, Err: err}
		}
		return HoldingRemovedMsg{
			ID:          id,
			Portfolio:   s.loadPortfolio(ctx),
			Performance: s.loadPerformance(ctx),
		}
	}
}

func (s *Syncer) loadHistory(ctx context.Context) HistoryMsg {
	entries, err := s.client.History(ctx)
	return HistoryMsg{Entries: entries, Err: err}
}

func (s *Syncer) loadFavorites(ctx context.Context) FavoritesMsg {
	favs, err := s.client.Favorites(ctx)
	return FavoritesMsg{Favorites: favs, Err: err}
}

func (s *Syncer) loadPortfolio(ctx context.Context) PortfolioMsg {
	holdings, err := s.client.Portfolio(ctx)
	return PortfolioMsg{Holdings: holdings, Err: err}
}

func (s *Syncer) loadPerformance(ctx context.Context) PerformanceMsg {
	perf, err := s.client.Performance(ctx)
	return PerformanceMsg{Performance: perf, Err: err}
}

// failed logs and journals a best-effort failure. Cancellations are quiet.
func (s *Syncer) failed(what string, err error) {
	if api.IsCanceled(err) {
		return
	}
	logging.Warn("collection sync failed", "what", what, "err", err)
	s.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindSyncError, Comp: comp,
		Msg: what, Err: err.Error()})
}

func (s *Syncer) synced(what string, n int) {
	s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSyncComplete, Comp: comp,
		Msg: what, Count: n})
}

func (s *Syncer) notify(kind notify.Kind, message string) {
	s.feed.Push(kind, message)
	s.metrics.Notified(string(kind))
}
