package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"goalboard/internal/metrics"
	"goalboard/internal/model"
	"goalboard/internal/reconcile"
)

// Theme colors (Flexoki Dark)
var (
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	hitStyle  = lipgloss.NewStyle().Foreground(ColorGreen)
	nearStyle = lipgloss.NewStyle().Foreground(ColorOrange)
	failStyle = lipgloss.NewStyle().Foreground(ColorRed)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderMonthTable renders one month of day rows for the non-interactive
// `month` command: date, goals, actuals, ATV, and percent-to-goal with a
// status marker.
func RenderMonthTable(ms model.MonthState, today time.Time) string {
	t := Table{
		Title:   fmt.Sprintf("%s — %s", ms.LocationID, ms.Month),
		Headers: []string{"Date", "Sales Goal", "Sales Act", "Txn Goal", "Txn Act", "ATV", "% Goal", ""},
	}

	for _, d := range ms.Days {
		atv := metrics.AverageValuePerTransaction(d.SalesActual, d.TxnActual)
		pct := metrics.PercentToGoal(d.SalesActual, d.SalesGoal)

		marker := ""
		pctStr := Dash
		if reconcile.TileMode(d, today) == reconcile.ActualTile {
			pctStr = FormatPercent(pct)
			switch metrics.Classify(d.SalesActual, d.SalesGoal) {
			case metrics.Hit:
				marker = hitStyle.Render("●")
			case metrics.Near:
				marker = nearStyle.Render("◐")
			default:
				marker = failStyle.Render("○")
			}
		}

		t.Rows = append(t.Rows, []string{
			d.Date.Format("Mon 02"),
			FormatMoneyPtr(d.SalesGoal),
			FormatMoneyPtr(d.SalesActual),
			FormatCount(d.TxnGoal),
			FormatCount(d.TxnActual),
			FormatMoneyPtr(atv),
			pctStr,
			marker,
		})
	}

	return RenderTable(t)
}

// RenderSummaryLine renders the month footer: actual vs goal sales and the
// full-month trend projection.
func RenderSummaryLine(p metrics.Projection) string {
	return fmt.Sprintf("  Sales: %s / %s   %s to goal   trending %s (%s)",
		valueStyle.Render(FormatMoney(p.MTDActual)),
		mutedStyle.Render(FormatMoney(p.TotalGoalSales)),
		headerStyle.Render(FormatPercent(metrics.PercentToGoal(&p.MTDActual, &p.TotalGoalSales))),
		valueStyle.Render(FormatMoney(p.TrendingSales)),
		headerStyle.Render(FormatPercent(p.TrendingPercent)),
	)
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		if len(h) > widths[i] {
			widths[i] = len(h)
		}
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	border := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	border("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			padded := fmt.Sprintf(" %-*s ", widths[i], h)
			b.WriteString(headerStyle.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		border("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			w := widths[i]
			cell := ""
			if i < len(row) {
				cell = row[i]
			}

			// Right-align numeric columns (all except first)
			pad := w - lipgloss.Width(cell)
			if pad < 0 {
				pad = 0
			}
			if i == 0 {
				b.WriteString(valueStyle.Render(" " + cell + strings.Repeat(" ", pad) + " "))
			} else {
				b.WriteString(" " + strings.Repeat(" ", pad) + cell + " ")
			}
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	border("╰", "┴", "╯")

	return b.String()
}
