package components

import (
	"fmt"
	"strings"

	"goalboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// a transient note in the middle, and the data scope on the right.
func RenderStatusBar(width int, scope, note string, noteIsError, saving bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " [e]dit  [r]efresh  [?]help  [q]uit"
	if saving {
		left = " saving..."
	}

	right := ""
	if scope != "" {
		right = fmt.Sprintf("%s ", scope)
	}

	mid := ""
	if note != "" {
		noteStyle := lipgloss.NewStyle().Foreground(t.Yellow)
		if noteIsError {
			noteStyle = lipgloss.NewStyle().Foreground(t.Red)
		}
		mid = noteStyle.Render(note)
	}

	padTotal := width - lipgloss.Width(left) - lipgloss.Width(mid) - lipgloss.Width(right)
	if padTotal < 2 {
		padTotal = 2
	}
	leftPad := padTotal / 2
	rightPad := padTotal - leftPad

	bar := left + strings.Repeat(" ", leftPad) + mid + strings.Repeat(" ", rightPad) + right

	return style.Render(bar)
}
