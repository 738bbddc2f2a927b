package ui

// Tab is one dashboard page.
type Tab int

const (
	TabOverview Tab = iota
	TabCharts
	TabSocial
	TabRisk
	TabPortfolio
	TabPortfolioView
	tabCount
)

var tabNames = [...]string{
	TabOverview:      "Overview",
	TabCharts:        "Charts",
	TabSocial:        "Social",
	TabRisk:          "Risk",
	TabPortfolio:     "Portfolio",
	TabPortfolioView: "Performance",
}

var tabIDs = [...]string{
	TabOverview:      "overview",
	TabCharts:        "charts",
	TabSocial:        "social",
	TabRisk:          "risk",
	TabPortfolio:     "portfolio",
	TabPortfolioView: "portfolio-view",
}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "unknown"
	}
	return tabIDs[t]
}

// Title is the label shown in the tab bar.
func (t Tab) Title() string {
	if t < 0 || t >= tabCount {
		return "?"
	}
	return tabNames[t]
}

// Polls reports whether portfolio performance is refreshed while t is shown.
func (t Tab) Polls() bool {
	return t == TabPortfolio || t == TabPortfolioView
}

// next cycles forward (delta 1) or backward (delta -1).
func (t Tab) next(delta int) Tab {
	n := (int(t) + delta) % int(tabCount)
	if n < 0 {
		n += int(tabCount)
	}
	return Tab(n)
}
