package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/memescope/internal/model"
)

// palette is one color theme.
type palette struct {
	text      lipgloss.Color
	muted     lipgloss.Color
	panel     lipgloss.Color
	primary   lipgloss.Color
	highlight lipgloss.Color
	success   lipgloss.Color
	warn      lipgloss.Color
	danger    lipgloss.Color
}

var (
	darkPalette = palette{
		text:      lipgloss.Color("255"),
		muted:     lipgloss.Color("241"),
		panel:     lipgloss.Color("236"),
		primary:   lipgloss.Color("62"),  // Purple
		highlight: lipgloss.Color("212"), // Pink
		success:   lipgloss.Color("78"),
		warn:      lipgloss.Color("221"),
		danger:    lipgloss.Color("203"),
	}
	lightPalette = palette{
		text:      lipgloss.Color("235"),
		muted:     lipgloss.Color("244"),
		panel:     lipgloss.Color("254"),
		primary:   lipgloss.Color("61"),
		highlight: lipgloss.Color("162"),
		success:   lipgloss.Color("28"),
		warn:      lipgloss.Color("136"),
		danger:    lipgloss.Color("160"),
	}
)

// Styles is the rendered look for one theme.
type Styles struct {
	Title       lipgloss.Style
	Tab         lipgloss.Style
	ActiveTab   lipgloss.Style
	Label       lipgloss.Style
	Value       lipgloss.Style
	Muted       lipgloss.Style
	Up          lipgloss.Style
	Down        lipgloss.Style
	Section     lipgloss.Style
	Selected    lipgloss.Style
	Error       lipgloss.Style
	Card        lipgloss.Style
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusText  lipgloss.Style
	NoteSuccess lipgloss.Style
	NoteError   lipgloss.Style
	Severity    map[model.Severity]lipgloss.Style
}

// NewStyles builds the styles for theme ("dark" or "light").
func NewStyles(theme string) Styles {
	p := darkPalette
	if theme == "light" {
		p = lightPalette
	}
	note := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(44)

	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(p.highlight).Padding(0, 1),
		Tab:         lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
		ActiveTab:   lipgloss.NewStyle().Bold(true).Foreground(p.text).Background(p.primary).Padding(0, 1),
		Label:       lipgloss.NewStyle().Foreground(p.muted).Width(16),
		Value:       lipgloss.NewStyle().Foreground(p.text).Bold(true),
		Muted:       lipgloss.NewStyle().Foreground(p.muted),
		Up:          lipgloss.NewStyle().Foreground(p.success).Bold(true),
		Down:        lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		Section:     lipgloss.NewStyle().Bold(true).Foreground(p.highlight).MarginTop(1),
		Selected:    lipgloss.NewStyle().Bold(true).Foreground(p.text).Background(p.primary),
		Error:       lipgloss.NewStyle().Foreground(p.danger).Bold(true).Padding(0, 1),
		Card:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.muted).Padding(0, 1),
		StatusBar:   lipgloss.NewStyle().Foreground(p.text).Background(p.panel).Padding(0, 1),
		StatusKey:   lipgloss.NewStyle().Foreground(p.highlight).Bold(true),
		StatusText:  lipgloss.NewStyle().Foreground(p.muted),
		NoteSuccess: note.BorderForeground(p.success).Foreground(p.success),
		NoteError:   note.BorderForeground(p.danger).Foreground(p.danger),
		Severity: map[model.Severity]lipgloss.Style{
			model.SeverityOK:     lipgloss.NewStyle().Foreground(p.success).Bold(true),
			model.SeverityWarn:   lipgloss.NewStyle().Foreground(p.warn).Bold(true),
			model.SeverityDanger: lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		},
	}
}

// DebugHeaderStyle for section headers in the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(darkPalette.highlight)

// DebugPanel is the bordered container for the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(darkPalette.primary).
	Padding(1, 2)
