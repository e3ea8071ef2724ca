package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"goalboard/internal/cli"
	"goalboard/internal/edit"
	"goalboard/internal/metrics"
	"goalboard/internal/tui/theme"
)

const (
	fieldTransactions = iota
	fieldNetSales
	fieldGrossMargin
	fieldCount
)

var fieldLabels = [fieldCount]string{"Transactions", "Net sales", "Gross margin"}

// editorState holds the modal's text inputs. The draft itself lives in the
// edit session; inputs are synced into it on every keystroke so the derived
// metrics shown below the fields stay live.
type editorState struct {
	active bool
	inputs [fieldCount]textinput.Model
	focus  int
}

func newEditorInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 16
	ti.Width = 14
	return ti
}

// openEditor starts an edit session for the selected day.
func (a App) openEditor() (tea.Model, tea.Cmd) {
	days := a.store.State().Days
	if a.selected < 0 || a.selected >= len(days) {
		return a, nil
	}

	session, err := edit.Open(a.store, a.locationID, days[a.selected].Date)
	if err != nil {
		a.note = fmt.Sprintf("Cannot edit: %s", err)
		a.noteErr = true
		return a, nil
	}
	a.session = session

	rec := session.Draft().Record
	a.editor = editorState{active: true}
	a.editor.inputs[fieldTransactions] = newEditorInput("count")
	a.editor.inputs[fieldNetSales] = newEditorInput("0.00")
	a.editor.inputs[fieldGrossMargin] = newEditorInput("0.00")
	if rec.TxnActual != nil {
		a.editor.inputs[fieldTransactions].SetValue(strconv.FormatInt(*rec.TxnActual, 10))
	}
	if rec.SalesActual != nil {
		a.editor.inputs[fieldNetSales].SetValue(rec.SalesActual.StringFixed(2))
	}
	if rec.MarginActual != nil {
		a.editor.inputs[fieldGrossMargin].SetValue(rec.MarginActual.StringFixed(2))
	}
	a.editor.inputs[0].Focus()

	a.note = ""
	a.noteErr = false
	a.priorDayOK = false
	return a, tea.Batch(textinput.Blink, priorDayCmd(a.client, a.locationID, rec.Date))
}

func (a *App) closeEditor() {
	a.editor.active = false
	a.session = nil
	a.saving = false
}

// updateEditor handles key events while the modal is open.
func (a App) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Closing during an in-flight save detaches it; the commit still
		// lands when the result comes back.
		a.session.Close()
		a.closeEditor()
		return a, nil

	case "tab", "down":
		a.editor.focus = (a.editor.focus + 1) % fieldCount
		a.focusField()
		return a, textinput.Blink

	case "shift+tab", "up":
		a.editor.focus = (a.editor.focus - 1 + fieldCount) % fieldCount
		a.focusField()
		return a, textinput.Blink

	case "ctrl+x":
		if a.saving {
			return a, nil
		}
		a.session.ClearAll()
		for i := range a.editor.inputs {
			a.editor.inputs[i].SetValue("")
		}
		return a, nil

	case "enter":
		if a.saving {
			return a, nil
		}
		if err := a.applyDraft(true); err != nil {
			a.note = err.Error()
			a.noteErr = true
			return a, nil
		}
		a.saving = true
		a.note = ""
		return a, saveCmd(a.session, a.client)
	}

	if a.saving {
		return a, nil
	}

	var cmd tea.Cmd
	i := a.editor.focus
	a.editor.inputs[i], cmd = a.editor.inputs[i].Update(msg)
	_ = a.applyDraft(false)
	return a, cmd
}

// updateEditorInputs forwards non-key messages (cursor blinks) to the
// focused input.
func (a App) updateEditorInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	i := a.editor.focus
	a.editor.inputs[i], cmd = a.editor.inputs[i].Update(msg)
	return a, cmd
}

func (a *App) focusField() {
	for i := range a.editor.inputs {
		if i == a.editor.focus {
			a.editor.inputs[i].Focus()
		} else {
			a.editor.inputs[i].Blur()
		}
	}
}

// applyDraft parses the inputs into the session draft. With strict set,
// the first invalid field aborts with an error; otherwise invalid fields
// are skipped so partial typing never corrupts the draft.
func (a *App) applyDraft(strict bool) error {
	txn, err := parseCount(a.editor.inputs[fieldTransactions].Value())
	if err == nil {
		a.session.SetTransactions(txn)
	} else if strict {
		return fmt.Errorf("invalid transactions: %q", a.editor.inputs[fieldTransactions].Value())
	}

	sales, err := parseMoney(a.editor.inputs[fieldNetSales].Value())
	if err == nil {
		a.session.SetNetSales(sales)
	} else if strict {
		return fmt.Errorf("invalid net sales: %q", a.editor.inputs[fieldNetSales].Value())
	}

	margin, err := parseMoney(a.editor.inputs[fieldGrossMargin].Value())
	if err == nil {
		a.session.SetGrossMargin(margin)
	} else if strict {
		return fmt.Errorf("invalid gross margin: %q", a.editor.inputs[fieldGrossMargin].Value())
	}

	return nil
}

// parseCount parses a transaction count field. Empty means not recorded.
func parseCount(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseMoney parses a currency field, tolerating "$" and thousands commas.
// Empty means not recorded.
func parseMoney(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (a App) viewEditor() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	focusLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	errStyle := lipgloss.NewStyle().Foreground(t.Red)

	draft := a.session.Draft()
	rec := draft.Record

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("◈ %s", rec.Date.Format("Mon Jan 2"))))
	b.WriteString(dimStyle.Render(fmt.Sprintf("   goal %s · %s txn",
		cli.FormatMoneyPtr(rec.SalesGoal), cli.FormatCount(rec.TxnGoal))))
	b.WriteString("\n")
	if a.priorDayOK {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  last year: %s · %s txn",
			cli.FormatMoneyPtr(a.priorDay.NetSales), cli.FormatCount(a.priorDay.Transactions))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i := range a.editor.inputs {
		label := labelStyle
		if i == a.editor.focus {
			label = focusLabelStyle
		}
		fmt.Fprintf(&b, "  %s %s\n",
			label.Render(fmt.Sprintf("%-14s", fieldLabels[i])),
			a.editor.inputs[i].View())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  ATV "))
	b.WriteString(labelStyle.Render(cli.FormatMoneyPtr(draft.ATVActual)))
	b.WriteString(dimStyle.Render("   margin "))
	b.WriteString(labelStyle.Render(cli.FormatPercentPtr(draft.MarginPercent)))
	b.WriteString(dimStyle.Render("   to goal "))

	badgeStyle := lipgloss.NewStyle().Foreground(t.Red)
	switch draft.Category {
	case metrics.Hit:
		badgeStyle = lipgloss.NewStyle().Foreground(t.Green)
	case metrics.Near:
		badgeStyle = lipgloss.NewStyle().Foreground(t.Orange)
	}
	b.WriteString(badgeStyle.Render(fmt.Sprintf("%s (%s)",
		cli.FormatPercent(draft.SalesPercent), draft.Category.Badge())))
	b.WriteString("\n\n")

	switch {
	case a.saving:
		b.WriteString(dimStyle.Render("  Saving..."))
	case a.session.Err() != nil:
		b.WriteString(errStyle.Render(fmt.Sprintf("  %s", a.session.Err())))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  Enter retry · Esc cancel"))
	default:
		b.WriteString(dimStyle.Render("  Enter save · Tab next field · ^x clear all · Esc cancel"))
	}

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}
