package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"goalboard/internal/cli"
	"goalboard/internal/metrics"
	"goalboard/internal/reconcile"
	"goalboard/internal/tui/theme"
)

// CellHeight is the rendered height of a day cell including its border.
const CellHeight = 5

// DayCell is one calendar tile. Render stores the day's values wholesale;
// View draws them at the requested width, so a terminal resize never needs
// another reconcile pass.
type DayCell struct {
	date    time.Time
	mode    reconcile.Mode
	m       reconcile.CellMetrics
	status  *metrics.Category
	renders int
}

// NewDayCell creates an empty cell for the given date.
func NewDayCell(date time.Time) *DayCell {
	return &DayCell{date: date}
}

// Render implements reconcile.CellHandle.
func (c *DayCell) Render(date time.Time, mode reconcile.Mode, m reconcile.CellMetrics, status *metrics.Category) {
	c.date = date
	c.mode = mode
	c.m = m
	c.status = status
	c.renders++
}

// Renders returns how many times the cell content has been replaced.
func (c *DayCell) Renders() int {
	return c.renders
}

func (c *DayCell) statusColor() lipgloss.Color {
	t := theme.Active
	if c.status == nil {
		return t.TextDim
	}
	switch *c.status {
	case metrics.Hit:
		return t.Green
	case metrics.Near:
		return t.Orange
	default:
		return t.Red
	}
}

// View draws the cell at outerWidth columns. selected adds the focus border.
func (c *DayCell) View(outerWidth int, selected bool) string {
	t := theme.Active

	innerW := outerWidth - 4 // border + padding
	if innerW < 8 {
		innerW = 8
	}

	borderColor := t.Border
	if selected {
		borderColor = t.BorderAccent
	}

	cellStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(innerW + 2).
		Padding(0, 1)

	dayStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	statusStyle := lipgloss.NewStyle().Foreground(c.statusColor())

	dayNum := fmt.Sprintf("%d", c.date.Day())

	var b strings.Builder
	if c.mode == reconcile.ActualTile {
		b.WriteString(cellRow(dayStyle.Render(dayNum), statusStyle.Render("●"), innerW))
		b.WriteString("\n")
		b.WriteString(cellRow(valueStyle.Render(cli.FormatMoneyPtr(c.m.Day.SalesActual)), "", innerW))
		b.WriteString("\n")
		pct := dimStyle.Render(cli.Dash)
		if c.status != nil {
			pct = statusStyle.Render(cli.FormatPercent(c.m.SalesPercent))
		}
		b.WriteString(cellRow(dimStyle.Render("of "+cli.FormatMoneyPtr(c.m.Day.SalesGoal)), pct, innerW))
	} else {
		b.WriteString(cellRow(dayStyle.Render(dayNum), dimStyle.Render("plan"), innerW))
		b.WriteString("\n")
		b.WriteString(cellRow(mutedStyle.Render(cli.FormatMoneyPtr(c.m.Day.SalesGoal)), "", innerW))
		b.WriteString("\n")
		b.WriteString(cellRow(
			dimStyle.Render(cli.FormatCount(c.m.Day.TxnGoal)+" txn"),
			dimStyle.Render(cli.FormatPercent(c.m.GoalSharePercent)),
			innerW,
		))
	}

	return cellStyle.Render(b.String())
}

// BlankCell renders an empty placeholder matching DayCell dimensions, used
// for the leading pad before the first of the month.
func BlankCell(outerWidth int) string {
	line := strings.Repeat(" ", outerWidth)
	rows := make([]string, CellHeight)
	for i := range rows {
		rows[i] = line
	}
	return strings.Join(rows, "\n")
}

// cellRow lays out left and right fragments across w columns.
func cellRow(left, right string, w int) string {
	pad := w - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 && right != "" {
		return left
	}
	if pad < 0 {
		pad = 0
	}
	return left + strings.Repeat(" ", pad) + right
}
