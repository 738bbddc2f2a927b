package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/memescope/internal/model"
)

const (
	fieldAmount = iota
	fieldPrice
	fieldNotes
	fieldCount
)

// holdingForm collects amount, purchase price and notes for the coin
// currently on screen.
type holdingForm struct {
	inputs [fieldCount]textinput.Model
	active int
	shown  bool
}

func newHoldingForm() holdingForm {
	var f holdingForm
	for i := range f.inputs {
		in := textinput.New()
		in.CharLimit = 32
		f.inputs[i] = in
	}
	f.inputs[fieldAmount].Prompt = "Amount:         "
	f.inputs[fieldAmount].Placeholder = "1000"
	f.inputs[fieldPrice].Prompt = "Purchase price: "
	f.inputs[fieldPrice].Placeholder = "0.00001"
	f.inputs[fieldNotes].Prompt = "Notes:          "
	f.inputs[fieldNotes].CharLimit = 120
	return f
}

func (f *holdingForm) open() tea.Cmd {
	f.shown = true
	f.active = fieldAmount
	for i := range f.inputs {
		f.inputs[i].SetValue("")
		f.inputs[i].Blur()
	}
	return f.inputs[fieldAmount].Focus()
}

func (f *holdingForm) close() {
	f.shown = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f holdingForm) update(msg tea.KeyMsg) (holdingForm, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return f.move(1)
	case "shift+tab", "up":
		return f.move(-1)
	}
	var cmd tea.Cmd
	f.inputs[f.active], cmd = f.inputs[f.active].Update(msg)
	return f, cmd
}

func (f holdingForm) move(delta int) (holdingForm, tea.Cmd) {
	f.inputs[f.active].Blur()
	f.active = (f.active + delta + fieldCount) % fieldCount
	return f, f.inputs[f.active].Focus()
}

// value parses the form for coin. Required-field checks are left to the
// syncer so that every rejection reads the same.
func (f holdingForm) value(coin string) (model.HoldingForm, error) {
	form := model.HoldingForm{
		Coin:  coin,
		Notes: strings.TrimSpace(f.inputs[fieldNotes].Value()),
	}
	var err error
	if form.Amount, err = parseNumber(f.inputs[fieldAmount].Value()); err != nil {
		return form, fmt.Errorf("amount: %w", err)
	}
	if form.PurchasePrice, err = parseNumber(f.inputs[fieldPrice].Value()); err != nil {
		return form, fmt.Errorf("purchase price: %w", err)
	}
	return form, nil
}

// parseNumber accepts blanks as zero and ignores "$" and "," decoration.
func parseNumber(s string) (float64, error) {
	s = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}

func (f holdingForm) view(coin string, st Styles) string {
	if !f.shown {
		return ""
	}
	var b strings.Builder
	title := "Add holding"
	if coin != "" {
		title += ": " + coin
	}
	b.WriteString(st.Section.Render(title) + "\n")
	for _, in := range f.inputs {
		b.WriteString(in.View() + "\n")
	}
	b.WriteString(st.Muted.Render("enter save · tab next field · esc cancel"))
	return st.Card.Render(b.String())
}
