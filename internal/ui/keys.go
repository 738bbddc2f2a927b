package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the bindings. Typing always goes to the focused input, so
// browse-mode letters only apply once the search box is blurred.
type keyMap struct {
	Quit      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Browse    key.Binding
	Search    key.Binding
	Up        key.Binding
	Down      key.Binding
	Pick      key.Binding
	Favorite  key.Binding
	Dismiss   key.Binding
	AddHold   key.Binding
	RemHold   key.Binding
	Theme     key.Binding
	Debug     key.Binding
	Help      key.Binding
	TabDirect key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Browse:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "browse")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Pick:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Favorite:  key.NewBinding(key.WithKeys("ctrl+f", "f"), key.WithHelp("f", "favorite")),
		Dismiss:   key.NewBinding(key.WithKeys("ctrl+x", "x"), key.WithHelp("x", "dismiss")),
		AddHold:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add holding")),
		RemHold:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove holding")),
		Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Debug:     key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "debug")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		TabDirect: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "jump to tab")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Browse, k.Favorite, k.Dismiss, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.TabDirect, k.Browse, k.Search},
		{k.Up, k.Down, k.Pick, k.Favorite, k.Dismiss},
		{k.AddHold, k.RemHold, k.Theme, k.Debug, k.Quit},
	}
}
