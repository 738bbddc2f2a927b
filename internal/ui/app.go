// Package ui is the Bubble Tea front end for memescope.
//
// App owns no network code. It forwards edits to the debouncer, committed
// queries to the search controller, and collection messages to the syncer;
// every state mutation happens inside Update.
package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/memescope/internal/collections"
	"github.com/abelbrown/memescope/internal/model"
	"github.com/abelbrown/memescope/internal/notify"
	"github.com/abelbrown/memescope/internal/otel"
	"github.com/abelbrown/memescope/internal/poll"
	"github.com/abelbrown/memescope/internal/search"
	"github.com/abelbrown/memescope/internal/state"
)

// Poller is the polling control the App needs.
type Poller interface {
	SetActive(active bool)
}

// Deps are the components the App drives. Store, Feed, Debouncer,
// Controller and Syncer are required.
type Deps struct {
	Store      *state.Store
	Feed       *notify.Feed
	Debouncer  *search.Debouncer
	Controller *search.Controller
	Syncer     *collections.Syncer
	Poller     Poller
	Ring       *otel.RingBuffer
	Events     *otel.Logger

	Theme                string
	VisibleNotifications int
	RecentSearches       int
}

type focus int

const (
	focusSearch focus = iota
	focusBrowse
	focusForm
)

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	keys   keyMap
	styles Styles
	theme  string

	input   textinput.Model
	spin    spinner.Model
	help    help.Model
	form    holdingForm
	focus   focus
	tab     Tab
	cursor  int
	width   int
	height  int
	ready   bool
	debug   bool
	closing bool
}

// NewApp creates the App.
func NewApp(d Deps) App {
	if d.VisibleNotifications <= 0 {
		d.VisibleNotifications = 3
	}
	if d.RecentSearches <= 0 {
		d.RecentSearches = 5
	}
	if d.Poller == nil {
		d.Poller = noopPoller{}
	}
	if d.Theme == "" {
		d.Theme = "dark"
	}

	in := textinput.New()
	in.Placeholder = "Search a memecoin (pepe, dogecoin, shiba inu...)"
	in.Prompt = "> "
	in.CharLimit = 64
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return App{
		deps:   d,
		keys:   defaultKeys(),
		styles: NewStyles(d.Theme),
		theme:  d.Theme,
		input:  in,
		spin:   sp,
		help:   help.New(),
		form:   newHoldingForm(),
	}
}

type noopPoller struct{}

func (noopPoller) SetActive(bool) {}

// Init loads the collections.
func (a App) Init() tea.Cmd {
	a.deps.Events.Info(otel.KindStartup, "ui", "dashboard started")
	return tea.Batch(textinput.Blink, a.deps.Syncer.Snapshot())
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.help.Width = msg.Width
		a.input.Width = min(60, max(10, msg.Width-20))
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case search.CommitMsg:
		q, ok := a.deps.Debouncer.Resolve(msg)
		if !ok {
			return a, nil
		}
		cmd := a.deps.Controller.Commit(q)
		if cmd != nil && a.deps.Store.Loading() {
			return a, tea.Batch(cmd, a.spin.Tick)
		}
		return a, cmd

	case search.ResultMsg:
		return a, a.deps.Controller.Apply(msg)

	case poll.RefreshMsg:
		if msg.Err == nil && msg.Performance != nil {
			a.deps.Store.SetPerformance(msg.Performance)
		}
		return a, nil

	case spinner.TickMsg:
		if !a.deps.Store.Loading() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd
	}

	if a.deps.Syncer.Apply(msg) {
		a.clampCursor()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a.quit()
	}
	switch {
	case key.Matches(msg, a.keys.Debug):
		a.debug = !a.debug
		return a, nil
	case a.focus == focusForm:
		return a.handleFormKey(msg)
	case key.Matches(msg, a.keys.NextTab):
		return a.setTab(a.tab.next(1))
	case key.Matches(msg, a.keys.PrevTab):
		return a.setTab(a.tab.next(-1))
	}

	if a.focus == focusSearch {
		return a.handleSearchKey(msg)
	}
	return a.handleBrowseKey(msg)
}

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.focus = focusBrowse
		a.input.Blur()
		return a, nil
	case "ctrl+f":
		return a, a.toggleFavorite()
	case "ctrl+x":
		a.dismissNewest()
		return a, nil
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if a.input.Value() == before {
		return a, cmd
	}
	return a, tea.Batch(cmd, a.deps.Debouncer.Change(a.input.Value()))
}

func (a App) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()
	case key.Matches(msg, a.keys.Search), msg.String() == "esc":
		a.focus = focusSearch
		return a, a.input.Focus()
	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.cursor < a.listLen()-1 {
			a.cursor++
		}
	case key.Matches(msg, a.keys.Pick):
		return a.pick()
	case key.Matches(msg, a.keys.Favorite):
		return a, a.toggleFavorite()
	case key.Matches(msg, a.keys.Dismiss):
		a.dismissNewest()
	case key.Matches(msg, a.keys.AddHold):
		if a.tab == TabPortfolio {
			a.focus = focusForm
			return a, a.form.open()
		}
	case key.Matches(msg, a.keys.RemHold):
		if a.tab == TabPortfolio {
			holdings := a.deps.Store.Portfolio()
			if a.cursor < len(holdings) {
				return a, a.deps.Syncer.RemoveHolding(holdings[a.cursor].ID)
			}
		}
	case key.Matches(msg, a.keys.Theme):
		if a.theme == "dark" {
			a.theme = "light"
		} else {
			a.theme = "dark"
		}
		a.styles = NewStyles(a.theme)
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	case key.Matches(msg, a.keys.TabDirect):
		n, _ := strconv.Atoi(msg.String())
		return a.setTab(Tab(n - 1))
	}
	return a, nil
}

func (a App) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.form.close()
		a.focus = focusBrowse
		return a, nil
	case "enter":
		f, err := a.form.value(a.deps.Store.Query())
		if err != nil {
			a.deps.Syncer.RejectForm(err)
			return a, nil
		}
		a.form.close()
		a.focus = focusBrowse
		return a, a.deps.Syncer.AddHolding(f)
	}
	var cmd tea.Cmd
	a.form, cmd = a.form.update(msg)
	return a, cmd
}

// setTab switches pages and gates portfolio polling on the new page.
func (a App) setTab(t Tab) (tea.Model, tea.Cmd) {
	if t < 0 || t >= tabCount {
		return a, nil
	}
	a.tab = t
	a.cursor = 0
	a.deps.Poller.SetActive(t.Polls())
	a.deps.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindTabChange, Comp: "ui", View: t.String()})
	return a, nil
}

// pick opens the highlighted recent search or favorite by typing it into
// the search box; the normal debounce path commits it.
func (a App) pick() (tea.Model, tea.Cmd) {
	if !a.picksVisible() {
		return a, nil
	}
	picks := a.picks()
	if a.cursor >= len(picks) {
		return a, nil
	}
	coin := picks[a.cursor].coin
	a.input.SetValue(coin)
	a.input.CursorEnd()
	return a, a.deps.Debouncer.Change(coin)
}

func (a App) toggleFavorite() tea.Cmd {
	coin := a.deps.Store.Query()
	if coin == "" {
		return nil
	}
	return a.deps.Syncer.ToggleFavorite(coin)
}

func (a *App) dismissNewest() {
	if e, ok := a.deps.Feed.Latest(); ok {
		a.deps.Feed.Dismiss(e.ID)
	}
}

func (a App) quit() (tea.Model, tea.Cmd) {
	a.closing = true
	a.deps.Debouncer.Close()
	a.deps.Controller.Close()
	a.deps.Poller.SetActive(false)
	a.deps.Events.Info(otel.KindShutdown, "ui", "dashboard closed")
	return a, tea.Quit
}

type pickItem struct {
	coin  string
	label string
	star  bool
}

// picks is the overview quick-pick list: recent searches, then favorites.
func (a App) picks() []pickItem {
	var out []pickItem
	for _, h := range a.deps.Store.RecentHistory(a.deps.RecentSearches) {
		out = append(out, pickItem{coin: h.Coin, label: h.Label()})
	}
	for _, f := range a.deps.Store.Favorites() {
		out = append(out, pickItem{coin: f.Coin, label: f.Label(), star: true})
	}
	return out
}

// picksVisible reports whether the welcome list is on screen.
func (a App) picksVisible() bool {
	return a.tab == TabOverview && !a.deps.Store.Loading() && a.deps.Store.Result() == nil
}

func (a App) listLen() int {
	switch a.tab {
	case TabOverview:
		if !a.picksVisible() {
			return 0
		}
		return len(a.picks())
	case TabPortfolio:
		return len(a.deps.Store.Portfolio())
	}
	return 0
}

func (a *App) clampCursor() {
	if n := a.listLen(); a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

// Tab returns the active page (for testing).
func (a App) Tab() Tab { return a.tab }

// Query returns the raw search box value (for testing).
func (a App) Query() string { return a.input.Value() }

// Browsing reports whether keys navigate instead of typing.
func (a App) Browsing() bool { return a.focus == focusBrowse }

func holdingLabel(h model.Holding) string {
	if h.DisplayName != "" {
		return h.DisplayName
	}
	return strings.ToUpper(h.Coin)
}
