package collections

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/memescope/internal/model"
	"github.com/abelbrown/memescope/internal/notify"
)

// HistoryMsg is the result of GET /history.
type HistoryMsg struct {
	Entries []model.HistoryEntry
	Err     error
}

// FavoritesMsg is the result of GET /favorites.
type FavoritesMsg struct {
	Favorites []model.Favorite
	Err       error
}

// PortfolioMsg is the result of GET /portfolio.
type PortfolioMsg struct {
	Holdings []model.Holding
	Err      error
}

// PerformanceMsg is the result of GET /portfolio/performance.
type PerformanceMsg struct {
	Performance *model.Performance
	Err         error
}

// SnapshotMsg is the startup load.
type SnapshotMsg struct {
	Portfolio   PortfolioMsg
	Performance PerformanceMsg
	Favorites   FavoritesMsg
	History     HistoryMsg
}

// FavoriteAddedMsg follows AddFavorite. Favorites is the re-read list.
type FavoriteAddedMsg struct {
	Coin      string
	Favorites FavoritesMsg
	Err       error
}

// FavoriteRemovedMsg follows RemoveFavorite.
type FavoriteRemovedMsg struct {
	Coin      string
	Favorites FavoritesMsg
	Err       error
}

// HoldingAddedMsg follows AddHolding.
type HoldingAddedMsg struct {
	Form        model.HoldingForm
	Holding     *model.Holding
	Portfolio   PortfolioMsg
	Performance PerformanceMsg
	Err         error
}

// HoldingRemovedMsg follows RemoveHolding.
type HoldingRemovedMsg struct {
	ID          int64
	Portfolio   PortfolioMsg
	Performance PerformanceMsg
	Err         error
}

// Apply writes a collection message into the store and reports whether msg
// belonged to this package.
func (s *Syncer) Apply(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case HistoryMsg:
		s.applyHistory(msg)
	case FavoritesMsg:
		s.applyFavorites(msg)
	case PortfolioMsg:
		s.applyPortfolio(msg)
	case PerformanceMsg:
		s.applyPerformance(msg)
	case SnapshotMsg:
		s.applyPortfolio(msg.Portfolio)
		s.applyPerformance(msg.Performance)
		s.applyFavorites(msg.Favorites)
		s.applyHistory(msg.History)

	case FavoriteAddedMsg:
		if msg.Err != nil {
			s.failed("add favorite", msg.Err)
			return true
		}
		s.applyFavorites(msg.Favorites)
		s.notify(notify.KindSuccess, fmt.Sprintf("%s added to favorites", msg.Coin))
	case FavoriteRemovedMsg:
		if msg.Err != nil {
			s.failed("remove favorite", msg.Err)
			return true
		}
		s.applyFavorites(msg.Favorites)

	case HoldingAddedMsg:
		if msg.Err != nil {
			s.failed("add holding", msg.Err)
			return true
		}
		s.applyPortfolio(msg.Portfolio)
		s.applyPerformance(msg.Performance)
		s.notify(notify.KindSuccess, fmt.Sprintf("%s added to portfolio", msg.Form.Coin))
	case HoldingRemovedMsg:
		if msg.Err != nil {
			s.failed("remove holding", msg.Err)
			return true
		}
		s.applyPortfolio(msg.Portfolio)
		s.applyPerformance(msg.Performance)
		s.notify(notify.KindSuccess, "Item removed from portfolio")

	default:
		return false
	}
	return true
}

func (s *Syncer) applyHistory(msg HistoryMsg) {
	if msg.Err != nil {
		s.failed("history", msg.Err)
		return
	}
	s.store.SetHistory(msg.Entries)
	s.synced("history", len(msg.Entries))
}

func (s *Syncer) applyFavorites(msg FavoritesMsg) {
	if msg.Err != nil {
		s.failed("favorites", msg.Err)
		return
	}
	s.store.SetFavorites(msg.Favorites)
	s.synced("favorites", len(msg.Favorites))
}

func (s *Syncer) applyPortfolio(msg PortfolioMsg) {
	if msg.Err != nil {
		s.failed("portfolio", msg.Err)
		return
	}
	s.store.SetPortfolio(msg.Holdings)
	s.synced("portfolio", len(msg.Holdings))
}

func (s *Syncer) applyPerformance(msg PerformanceMsg) {
	if msg.Err != nil {
		s.failed("performance", msg.Err)
		return
	}
	s.store.SetPerformance(msg.Performance)
	s.synced("performance", 1)
}
