package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/memescope/internal/model"
	"github.com/abelbrown/memescope/internal/notify"
)

// View renders the UI.
func (a App) View() string {
	if a.closing {
		return ""
	}
	if !a.ready {
		return "Loading..."
	}

	parts := []string{a.renderHeader(), a.renderTabs()}
	if a.debug {
		parts = append(parts, debugOverlay(a.deps.Ring, a.width, a.height-4))
	} else {
		parts = append(parts, a.renderBody())
	}
	if notes := a.renderNotifications(); notes != "" {
		parts = append(parts, notes)
	}
	parts = append(parts, a.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) renderHeader() string {
	st := a.styles
	line := st.Title.Render("memescope") + " " + a.input.View()

	switch q := a.deps.Store.Query(); {
	case a.deps.Store.Loading():
		line += "  " + a.spin.View() + st.Muted.Render(" Analyzing "+q+"...")
	case q != "" && a.deps.Store.IsFavorite(q):
		line += "  " + st.Severity[model.SeverityWarn].Render("★ favorite")
	}
	return line
}

func (a App) renderTabs() string {
	var tabs []string
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", int(t)+1, t.Title())
		if t == a.tab {
			tabs = append(tabs, a.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, a.styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n"
}

func (a App) renderBody() string {
	switch a.tab {
	case TabPortfolio:
		return a.renderPortfolio()
	case TabPortfolioView:
		return a.renderPerformance()
	}

	res := a.deps.Store.Result()
	switch {
	case a.deps.Store.Loading():
		return a.styles.Muted.Render(a.spin.View() + " Fetching analysis...")
	case res == nil:
		return a.renderWelcome()
	case res.Failed():
		return a.styles.Error.Render("Error: " + res.Failure)
	}

	switch a.tab {
	case TabCharts:
		return a.renderCharts(res.Analysis)
	case TabSocial:
		return a.renderSocial(res.Analysis)
	case TabRisk:
		return a.renderRisk(res.Analysis)
	default:
		return a.renderOverview(res.Analysis)
	}
}

func (a App) renderWelcome() string {
	st := a.styles
	var b strings.Builder
	b.WriteString(st.Muted.Render("Type a coin name above. Results appear after you stop typing."))
	b.WriteString("\n")

	picks := a.picks()
	if a.tab != TabOverview || len(picks) == 0 {
		return b.String()
	}
	b.WriteString(st.Section.Render("Recent & favorites") + "\n")
	for i, p := range picks {
		label := p.label
		if p.star {
			label = "★ " + label
		}
		if a.focus == focusBrowse && i == a.cursor {
			b.WriteString(st.Selected.Render("> "+label) + "\n")
		} else {
			b.WriteString("  " + label + "\n")
		}
	}
	return b.String()
}

func (a App) field(label, value string) string {
	return a.styles.Label.Render(label) + a.styles.Value.Render(value)
}

func (a App) change(pct float64) string {
	if pct >= 0 {
		return a.styles.Up.Render("▲ " + formatPercent(pct))
	}
	return a.styles.Down.Render("▼ " + formatPercent(pct))
}

func (a App) renderOverview(an *model.Analysis) string {
	if an == nil {
		return ""
	}
	st := a.styles
	risk := st.Severity[an.RiskSeverity()].Render(an.RiskLevel())
	rows := []string{
		st.Section.Render(strings.ToUpper(an.Coin)),
		a.field("Price", formatCurrency(an.CurrentPrice)) + "  " + a.change(an.PriceChange24h),
		a.field("Market cap", an.MarketCapEstimate),
		a.field("Volume 24h", "$"+formatLargeNumber(an.Volume24h)),
		a.field("Holders", formatLargeNumber(an.HolderCount)),
		a.field("Liquidity", an.LiquidityEstimate),
		a.field("Rank", fmt.Sprintf("#%d", an.MarketRank)),
		a.field("Social trend", fmt.Sprintf("%.1f", an.SocialTrendScore)),
		st.Label.Render("Risk") + risk,
	}
	if an.Summary != "" {
		rows = append(rows, "", lipgloss.NewStyle().Width(min(80, max(20, a.width-4))).Render(an.Summary))
	}
	return st.Card.Render(strings.Join(rows, "\n"))
}

func (a App) renderCharts(an *model.Analysis) string {
	if an == nil || len(an.PriceHistory) == 0 {
		return a.styles.Muted.Render("No price history.")
	}
	prices := make([]float64, len(an.PriceHistory))
	volumes := make([]float64, len(an.PriceHistory))
	for i, p := range an.PriceHistory {
		prices[i] = p.Price
		volumes[i] = p.Volume
	}
	width := min(72, max(10, a.width-20))
	first, last := an.PriceHistory[0], an.PriceHistory[len(an.PriceHistory)-1]
	rows := []string{
		a.styles.Section.Render("Price, last " + last.Timestamp.Sub(first.Timestamp).Round(1e9).String()),
		a.styles.Up.Render(sparkline(prices, width)),
		a.field("Open", formatCurrency(first.Price)) + "  " + a.field("Last", formatCurrency(last.Price)),
		a.styles.Section.Render("Volume"),
		a.styles.Muted.Render(sparkline(volumes, width)),
	}
	return strings.Join(rows, "\n")
}

func (a App) renderSocial(an *model.Analysis) string {
	if an == nil || len(an.SocialData) == 0 {
		return a.styles.Muted.Render("No social data.")
	}
	rows := []string{a.styles.Section.Render(fmt.Sprintf("Social trend score %.1f", an.SocialTrendScore))}
	for _, s := range an.SocialData {
		sentiment := a.styles.Up.Render(fmt.Sprintf("%+.2f", s.Sentiment))
		if s.Sentiment < 0 {
			sentiment = a.styles.Down.Render(fmt.Sprintf("%+.2f", s.Sentiment))
		}
		rows = append(rows, fmt.Sprintf("%s%8s mentions  sentiment %s",
			a.styles.Label.Render(s.Platform), formatLargeNumber(float64(s.Mentions)), sentiment))
	}
	return strings.Join(rows, "\n")
}

func (a App) renderRisk(an *model.Analysis) string {
	if an == nil {
		return ""
	}
	st := a.styles
	rows := []string{st.Section.Render("Risk level ") + st.Severity[an.RiskSeverity()].Render(an.RiskLevel())}
	if len(an.RiskFlags) == 0 {
		rows = append(rows, st.Muted.Render("No risk flags."))
	}
	for _, f := range an.RiskFlags {
		rows = append(rows, "  ! "+strings.ReplaceAll(f, "_", " "))
	}
	if m := an.RiskMetrics; m != nil {
		rows = append(rows, st.Section.Render("Metrics"),
			a.field("Volatility", bar(m.VolatilityScore, 20)),
			a.field("Liquidity", bar(m.LiquidityScore, 20)),
			a.field("Market depth", bar(m.MarketDepthScore, 20)),
			a.field("Contract risk", bar(m.SmartContractRisk, 20)),
			a.field("Transparency", bar(m.TeamTransparency, 20)),
			a.field("Audit", m.AuditStatus),
		)
	}
	return strings.Join(rows, "\n")
}

func (a App) renderPortfolio() string {
	st := a.styles
	holdings := a.deps.Store.Portfolio()
	var b strings.Builder
	b.WriteString(st.Section.Render(fmt.Sprintf("Holdings (%d)", len(holdings))) + "\n")
	if len(holdings) == 0 {
		b.WriteString(st.Muted.Render("No holdings yet. Search a coin, press esc then a to add it.") + "\n")
	}
	for i, h := range holdings {
		line := fmt.Sprintf("%-14s %12s @ %-12s %12s  %s",
			truncateRunes(holdingLabel(h), 14),
			formatLargeNumber(h.Amount),
			formatCurrency(h.PurchasePrice),
			formatCurrency(h.Value()),
			a.change(h.GainPercent()))
		if a.focus == focusBrowse && i == a.cursor {
			line = st.Selected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if form := a.form.view(a.deps.Store.Query(), st); form != "" {
		b.WriteString(form)
	}
	return b.String()
}

func (a App) renderPerformance() string {
	st := a.styles
	p := a.deps.Store.Performance()
	if p == nil {
		return st.Muted.Render("Loading portfolio performance...")
	}
	rows := []string{
		st.Section.Render("Portfolio performance"),
		a.field("Invested", formatCurrency(p.TotalInvested)),
		a.field("Current value", formatCurrency(p.CurrentValue)),
		a.field("Gains", formatCurrency(p.TotalGains)) + "  " + a.change(p.TotalGainsPercentage),
	}
	if p.BestPerformer != nil {
		rows = append(rows, a.field("Best", p.BestPerformer.Coin)+"  "+a.change(p.BestPerformer.GainsPercentage))
	}
	if p.WorstPerformer != nil {
		rows = append(rows, a.field("Worst", p.WorstPerformer.Coin)+"  "+a.change(p.WorstPerformer.GainsPercentage))
	}
	if len(p.PerformanceHistory) > 0 {
		values := make([]float64, len(p.PerformanceHistory))
		for i, v := range p.PerformanceHistory {
			values[i] = v.Value
		}
		rows = append(rows, st.Section.Render("Value history"), st.Up.Render(sparkline(values, 60)))
	}
	if len(p.HoldingsBreakdown) > 0 {
		rows = append(rows, st.Section.Render("Allocation"))
		for _, h := range p.HoldingsBreakdown {
			rows = append(rows, fmt.Sprintf("%s%s %5.1f%%", st.Label.Render(h.Coin), bar(h.Percentage, 20), h.Percentage))
		}
	}
	return strings.Join(rows, "\n")
}

func (a App) renderNotifications() string {
	entries := a.deps.Feed.Visible(a.deps.VisibleNotifications)
	if len(entries) == 0 {
		return ""
	}
	notes := make([]string, len(entries))
	for i, e := range entries {
		style := a.styles.NoteSuccess
		if e.Kind == notify.KindError {
			style = a.styles.NoteError
		}
		notes[i] = style.Render(e.Message + "\n" + a.styles.Muted.Render(e.Time.Format("15:04:05")))
	}
	return lipgloss.JoinVertical(lipgloss.Right, notes...)
}

func (a App) renderStatus() string {
	mode := "SEARCH"
	switch a.focus {
	case focusBrowse:
		mode = "BROWSE"
	case focusForm:
		mode = "FORM"
	}
	left := a.styles.StatusKey.Render(mode) + a.styles.StatusText.Render("  "+a.tab.Title())
	return a.styles.StatusBar.Width(max(0, a.width)).Render(left + "  " + a.help.View(a.keys))
}
