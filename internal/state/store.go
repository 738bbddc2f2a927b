// Package state holds the dashboard's application state.
//
// Each field has exactly one producer: the search controller owns Query,
// Loading and Result; collection sync owns Favorites, History and Portfolio;
// the polling scheduler (and the startup snapshot) owns Performance.
// The Store is mutated only from the UI update loop and carries no lock.
package state

import (
	"slices"

	"github.com/abelbrown/memescope/internal/model"
)

// Result is the outcome of one analysis attempt.
type Result struct {
	Generation uint64
	Query      string
	Analysis   *model.Analysis
	Failure    string
}

// Failed reports whether the attempt ended in a request failure.
func (r Result) Failed() bool {
	return r.Failure != ""
}

// Success builds a successful result.
func Success(gen uint64, query string, a *model.Analysis) Result {
	return Result{Generation: gen, Query: query, Analysis: a}
}

// Failure builds a failed result.
func Failure(gen uint64, query, message string) Result {
	return Result{Generation: gen, Query: query, Failure: message}
}

// Store is the latest state written by each producer.
type Store struct {
	query       string
	loading     bool
	result      *Result
	favorites   []model.Favorite
	history     []model.HistoryEntry
	portfolio   []model.Holding
	performance *model.Performance
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// BeginSearch marks a new request as pending for query.
func (s *Store) BeginSearch(query string) {
	s.query = query
	s.loading = true
	s.result = nil
}

// ClearSearch drops the active query and any result.
func (s *Store) ClearSearch() {
	s.query = ""
	s.loading = false
	s.result = nil
}

// ResolveSearch stores the outcome of the current attempt.
func (s *Store) ResolveSearch(r Result) {
	s.loading = false
	s.result = &r
}

// SetFavorites replaces the favorites collection.
func (s *Store) SetFavorites(f []model.Favorite) {
	s.favorites = slices.Clone(f)
}

// SetHistory replaces the search history collection.
func (s *Store) SetHistory(h []model.HistoryEntry) {
	s.history = slices.Clone(h)
}

// SetPortfolio replaces the holdings collection.
func (s *Store) SetPortfolio(p []model.Holding) {
	s.portfolio = slices.Clone(p)
}

// SetPerformance replaces the portfolio performance snapshot.
func (s *Store) SetPerformance(p *model.Performance) {
	s.performance = p
}

// Query is the committed query the current result belongs to.
func (s *Store) Query() string { return s.query }

// Loading reports whether an analysis request is pending.
func (s *Store) Loading() bool { return s.loading }

// Result returns the latest result, or nil when there is none.
func (s *Store) Result() *Result {
	if s.result == nil {
		return nil
	}
	r := *s.result
	return &r
}

// Favorites returns a copy of the favorites collection.
func (s *Store) Favorites() []model.Favorite { return slices.Clone(s.favorites) }

// History returns a copy of the search history.
func (s *Store) History() []model.HistoryEntry { return slices.Clone(s.history) }

// RecentHistory returns up to n of the most recent history entries.
func (s *Store) RecentHistory(n int) []model.HistoryEntry {
	n = max(0, min(n, len(s.history)))
	return slices.Clone(s.history[:n])
}

// Portfolio returns a copy of the holdings.
func (s *Store) Portfolio() []model.Holding { return slices.Clone(s.portfolio) }

// Performance returns the latest performance snapshot, or nil.
func (s *Store) Performance() *model.Performance { return s.performance }

// IsFavorite reports whether coin is among the favorites.
func (s *Store) IsFavorite(coin string) bool {
	key := model.NormalizeCoin(coin)
	if key == "" {
		return false
	}
	return slices.ContainsFunc(s.favorites, func(f model.Favorite) bool {
		return f.Coin == key
	})
}
