// Package tui provides the interactive Bubble Tea month board for goalboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"goalboard/internal/cli"
	"goalboard/internal/config"
	"goalboard/internal/edit"
	"goalboard/internal/metrics"
	"goalboard/internal/model"
	"goalboard/internal/month"
	"goalboard/internal/reconcile"
	"goalboard/internal/remote"
	"goalboard/internal/store"
	"goalboard/internal/tui/components"
	"goalboard/internal/tui/theme"
)

// MonthLoadedMsg is sent when a month fetch (or cache fallback) completes.
type MonthLoadedMsg struct {
	Seq       int
	Records   []model.DayRecord
	FromCache bool
	FetchedAt time.Time
	Err       error
}

// PriorYearMsg carries the same month one year earlier, for comparison.
type PriorYearMsg struct {
	Seq        int
	TotalSales decimal.Decimal
	OK         bool
}

// PriorDayMsg carries last year's actuals for the day being edited.
type PriorDayMsg struct {
	Date    time.Time
	Actuals model.DayActuals
	OK      bool
}

// SaveResultMsg is sent when a background save finishes. The session travels
// with the message so a save that outlives its editor modal still commits.
type SaveResultMsg struct {
	Session *edit.Session
	Err     error
}

// App is the root Bubble Tea model.
type App struct {
	cfg        config.Config
	client     *remote.Client
	locationID string
	yearMonth  string

	// Month state and its view cells
	store      *month.Store
	grid       *reconcile.Grid
	cells      map[string]*components.DayCell
	loaded     bool
	loadErr    error
	emptyMonth bool
	fromCache  bool
	fetchedAt  time.Time
	loadSeq    int

	// Prior-year comparison (zero until loaded)
	priorTotal decimal.Decimal
	priorOK    bool

	// UI state
	width    int
	height   int
	selected int
	showHelp bool
	note     string
	noteErr  bool

	// Day editor modal
	editor     editorState
	session    *edit.Session
	saving     bool
	priorDay   model.DayActuals
	priorDayOK bool

	// First-run setup (huh form). setupVals is shared by pointer: the form
	// writes through it across model copies.
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	minCellWidth     = 14
	maxCellWidth     = 22
	minContentHeight = 5
)

// NewApp creates the TUI model. Location and month fall back to config and
// the current month when the flags are empty.
func NewApp(cfg config.Config, locationID, yearMonth string) App {
	if locationID == "" {
		locationID = cfg.General.DefaultLocation
	}
	if yearMonth == "" {
		yearMonth = time.Now().Format(model.MonthLayout)
	}

	needSetup := !config.Exists() || cfg.API.BaseURL == "" || locationID == ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	a := App{
		cfg:        cfg,
		locationID: locationID,
		yearMonth:  yearMonth,
		needSetup:  needSetup,
		store:      month.NewStore(),
		spinner:    sp,
	}
	if cfg.API.BaseURL != "" {
		a.client = remote.NewClient(cfg.API.BaseURL, config.APIKey(cfg))
	}
	if needSetup {
		a.setupVals = &setupValues{}
		a.setupForm = newSetupForm(a.setupVals)
	}
	a.resetGrid()
	return a
}

// resetGrid discards all cells; the next reconcile recreates them. Used on
// every (location, month) change so cells never leak across months.
func (a *App) resetGrid() {
	cells := make(map[string]*components.DayCell)
	a.cells = cells
	a.grid = reconcile.NewGrid(func(date time.Time) reconcile.CellHandle {
		c := components.NewDayCell(date)
		cells[date.Format(model.DateLayout)] = c
		return c
	})
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.needSetup {
		return a.setupForm.Init()
	}
	return tea.Batch(
		a.spinner.Tick,
		loadMonthCmd(a.client, a.cfg, a.locationID, a.yearMonth, a.loadSeq),
		priorYearCmd(a.client, a.locationID, a.yearMonth, a.loadSeq),
	)
}

// startLoad kicks off a fresh month load, invalidating any in-flight one.
func (a *App) startLoad() tea.Cmd {
	a.loadSeq++
	a.loaded = false
	a.loadErr = nil
	a.emptyMonth = false
	a.fromCache = false
	a.priorOK = false
	a.selected = 0
	a.resetGrid()
	return tea.Batch(
		a.spinner.Tick,
		loadMonthCmd(a.client, a.cfg, a.locationID, a.yearMonth, a.loadSeq),
		priorYearCmd(a.client, a.locationID, a.yearMonth, a.loadSeq),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}

		// First-run setup intercepts all keys
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		// Editor modal intercepts all keys
		if a.editor.active {
			return a.updateEditor(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "q":
			return a, tea.Quit

		case "r":
			if a.client != nil {
				return a, a.startLoad()
			}
			return a, nil

		case "[":
			if a.client != nil {
				a.yearMonth = monthShift(a.yearMonth, -1)
				return a, a.startLoad()
			}
			return a, nil

		case "]":
			if a.client != nil {
				a.yearMonth = monthShift(a.yearMonth, 1)
				return a, a.startLoad()
			}
			return a, nil
		}

		if !a.loaded || a.emptyMonth {
			return a, nil
		}

		dayCount := len(a.store.State().Days)

		switch key {
		case "h", "left":
			a.selected = clamp(a.selected-1, 0, dayCount-1)
		case "l", "right":
			a.selected = clamp(a.selected+1, 0, dayCount-1)
		case "k", "up":
			a.selected = clamp(a.selected-7, 0, dayCount-1)
		case "j", "down":
			a.selected = clamp(a.selected+7, 0, dayCount-1)
		case "g":
			a.selected = 0
		case "G":
			a.selected = dayCount - 1
		case "enter", "e":
			return a.openEditor()
		}
		return a, nil

	case MonthLoadedMsg:
		if msg.Seq != a.loadSeq {
			return a, nil // stale load, a newer one is in flight
		}
		a.loaded = true
		a.fromCache = msg.FromCache
		a.fetchedAt = msg.FetchedAt
		if msg.Err != nil {
			a.loadErr = msg.Err
			return a, nil
		}

		if err := a.store.Load(a.locationID, a.yearMonth, msg.Records); err != nil {
			if errors.Is(err, month.ErrEmptyMonth) {
				a.emptyMonth = true
			} else {
				a.loadErr = err
			}
			return a, nil
		}

		a.grid.Reconcile(a.store.State(), time.Now())
		a.selected = todayIndex(a.store.State())

		if !msg.FromCache {
			a.cacheMonth()
		}
		return a, nil

	case PriorYearMsg:
		if msg.Seq != a.loadSeq {
			return a, nil
		}
		a.priorTotal = msg.TotalSales
		a.priorOK = msg.OK
		return a, nil

	case PriorDayMsg:
		if a.editor.active && a.session != nil && a.session.Date().Equal(msg.Date.AddDate(1, 0, 0)) {
			a.priorDay = msg.Actuals
			a.priorDayOK = msg.OK
		}
		return a, nil

	case SaveResultMsg:
		return a.handleSaveResult(msg)

	case spinner.TickMsg:
		if !a.loaded && !a.needSetup {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.editor.active {
		return a.updateEditorInputs(msg)
	}

	return a, nil
}

// handleSaveResult lands a finished save. The commit is applied even when
// the editor that started it has been closed: the write already happened
// remotely, so the board must reflect it.
func (a App) handleSaveResult(msg SaveResultMsg) (tea.Model, tea.Cmd) {
	current := msg.Session == a.session
	if current {
		a.saving = false
	}

	if msg.Err != nil {
		if current {
			a.note = fmt.Sprintf("Save failed: %s", msg.Err)
			a.noteErr = true
		}
		return a, nil
	}

	rec, err := msg.Session.Commit(a.store)
	if err != nil {
		// Typically the month changed underneath the save
		a.note = fmt.Sprintf("Saved remotely, not shown: %s", err)
		a.noteErr = true
		if current {
			a.closeEditor()
		}
		return a, nil
	}

	if perr := a.grid.Patch(a.store.State(), rec.Date, time.Now()); perr != nil {
		a.note = fmt.Sprintf("Saved, repaint failed: %s", perr)
		a.noteErr = true
	} else {
		a.note = fmt.Sprintf("Saved %s", rec.Date.Format(model.DateLayout))
		a.noteErr = false
	}

	a.cacheDay(rec)

	if current {
		a.closeEditor()
	}
	return a, nil
}

// cacheMonth persists the loaded month to the local cache, best effort.
func (a *App) cacheMonth() {
	c, err := store.Open(config.CachePath(a.cfg))
	if err != nil {
		return
	}
	defer c.Close()
	_ = c.SaveMonth(a.store.State())
}

// cacheDay persists one committed day to the local cache, best effort.
func (a *App) cacheDay(rec model.DayRecord) {
	c, err := store.Open(config.CachePath(a.cfg))
	if err != nil {
		return
	}
	defer c.Close()
	_ = c.SaveDay(a.locationID, rec)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	if a.setupForm.State == huh.StateCompleted {
		a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		if a.client == nil {
			a.loadErr = fmt.Errorf("no server configured")
			a.loaded = true
			return a, nil
		}
		return a, a.startLoad()
	}

	if a.setupForm.State == huh.StateAborted {
		return a, tea.Quit
	}

	return a, cmd
}

// ─── View ───────────────────────────────────────────────────────

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	if a.editor.active {
		return a.viewEditor()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  goalboard needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ goalboard"))
	b.WriteString(subtitleStyle.Render(" · Goals vs Actuals"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(fmt.Sprintf(" Loading %s for %s...", a.yearMonth, a.locationID)))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	bindings := []struct{ key, desc string }{
		{"h j k l / arrows", "Move between days"},
		{"g G", "First / last day"},
		{"[ ]", "Previous / next month"},
		{"Enter / e", "Edit selected day"},
		{"Tab", "Next field (in editor)"},
		{"^x", "Clear all actuals (in editor)"},
		{"r", "Reload from server"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-18s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width

	header := a.renderHeader()
	statusBar := a.renderStatusBar()

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := a.height - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	cardW := 60
	if cardW > w-4 {
		cardW = w - 4
	}

	var content string
	switch {
	case a.loadErr != nil:
		body := lipgloss.NewStyle().Foreground(t.Red).
			Render(fmt.Sprintf("Could not load %s: %s", a.yearMonth, a.loadErr))
		card := components.ContentCard("Load failed", body, cardW)
		content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Center, card,
			lipgloss.WithWhitespaceBackground(t.Background))
	case a.emptyMonth:
		body := lipgloss.NewStyle().Foreground(t.TextMuted).
			Render(fmt.Sprintf("No forecast published for %s yet.", a.yearMonth)) +
			"\n\n" + lipgloss.NewStyle().Foreground(t.TextDim).Render("Try another month with [ and ].")
		card := components.ContentCard("No forecast", body, cardW)
		content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Center, card,
			lipgloss.WithWhitespaceBackground(t.Background))
	default:
		content = a.renderSummaryRow() + "\n" + a.renderCalendar()
	}

	content = padHeight(truncateHeight(content, contentH), contentH)

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderHeader() string {
	t := theme.Active

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	scopeStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	line := " " + logoStyle.Render("◈ goalboard") +
		dimStyle.Render("  │  ") +
		scopeStyle.Render(a.locationID) +
		dimStyle.Render(" · ") +
		scopeStyle.Render(a.yearMonth)

	if a.fromCache {
		line += dimStyle.Render(fmt.Sprintf("  (cached %s)", a.fetchedAt.Format("2006-01-02 15:04")))
	}

	return line + "\n"
}

func (a App) renderSummaryRow() string {
	ms := a.store.State()
	proj := metrics.Project(ms, time.Now())

	pyDelta := ""
	pyValue := cli.Dash
	if a.priorOK {
		pyValue = cli.FormatMoney(a.priorTotal)
		if a.priorTotal.Sign() > 0 {
			pct := metrics.PercentToGoal(&proj.MTDActual, &a.priorTotal)
			pyDelta = fmt.Sprintf("MTD at %s of LY", cli.FormatPercent(pct))
		}
	}

	cards := []struct{ Label, Value, Delta string }{
		{"MTD Sales", cli.FormatMoney(proj.MTDActual), "goal " + cli.FormatMoney(proj.TotalGoalSales)},
		{"To Goal", cli.FormatPercent(metrics.PercentToGoal(&proj.MTDActual, &proj.TotalGoalSales)), "full month"},
		{"Trending", cli.FormatMoney(proj.TrendingSales), cli.FormatPercent(proj.TrendingPercent) + " of goal"},
		{"Last Year", pyValue, pyDelta},
	}

	return components.MetricCardRow(cards, a.calendarWidth())
}

func (a App) cellWidth() int {
	cw := a.width / 7
	if cw < minCellWidth {
		cw = minCellWidth
	}
	if cw > maxCellWidth {
		cw = maxCellWidth
	}
	return cw
}

func (a App) calendarWidth() int {
	return a.cellWidth() * 7
}

func (a App) renderCalendar() string {
	t := theme.Active
	ms := a.store.State()
	cellW := a.cellWidth()

	headStyle := lipgloss.NewStyle().Foreground(t.TextDim).Width(cellW).Align(lipgloss.Center)
	var head strings.Builder
	for _, wd := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		head.WriteString(headStyle.Render(wd))
	}

	// Leading pad, then one rendered cell per day, chunked into weeks
	tiles := make([]string, 0, a.grid.LeadingPad()+len(ms.Days))
	for i := 0; i < a.grid.LeadingPad(); i++ {
		tiles = append(tiles, components.BlankCell(cellW))
	}
	for i, d := range ms.Days {
		cell, ok := a.cells[d.Key()]
		if !ok {
			tiles = append(tiles, components.BlankCell(cellW))
			continue
		}
		tiles = append(tiles, cell.View(cellW, i == a.selected))
	}

	var b strings.Builder
	b.WriteString(head.String())
	b.WriteString("\n")
	for i := 0; i < len(tiles); i += 7 {
		end := i + 7
		if end > len(tiles) {
			end = len(tiles)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tiles[i:end]...))
		b.WriteString("\n")
	}

	return b.String()
}

func (a App) renderStatusBar() string {
	scope := fmt.Sprintf("%s · %s", a.locationID, a.yearMonth)
	return components.RenderStatusBar(a.width, scope, a.note, a.noteErr, a.saving)
}

// ─── Commands ───────────────────────────────────────────────────

// loadMonthCmd fetches the month from the server, falling back to the local
// cache when the fetch fails.
func loadMonthCmd(client *remote.Client, cfg config.Config, locationID, yearMonth string, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		records, err := client.ListDayRecords(ctx, locationID, yearMonth)
		if err == nil {
			return MonthLoadedMsg{Seq: seq, Records: records, FetchedAt: time.Now()}
		}

		if c, cerr := store.Open(config.CachePath(cfg)); cerr == nil {
			defer c.Close()
			if ms, fetchedAt, found, lerr := c.LoadMonth(locationID, yearMonth); lerr == nil && found {
				return MonthLoadedMsg{Seq: seq, Records: ms.Days, FromCache: true, FetchedAt: fetchedAt}
			}
		}

		return MonthLoadedMsg{Seq: seq, Err: err}
	}
}

// priorYearCmd fetches the same month one year earlier and returns its total
// actual sales. Failures are silent: the comparison card just stays empty.
func priorYearCmd(client *remote.Client, locationID, yearMonth string, seq int) tea.Cmd {
	return func() tea.Msg {
		t, err := time.Parse(model.MonthLayout, yearMonth)
		if err != nil {
			return PriorYearMsg{Seq: seq}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		records, err := client.ListDayRecords(ctx, locationID, t.AddDate(-1, 0, 0).Format(model.MonthLayout))
		if err != nil || len(records) == 0 {
			return PriorYearMsg{Seq: seq}
		}

		var total decimal.Decimal
		for _, r := range records {
			if r.SalesActual != nil {
				total = total.Add(*r.SalesActual)
			}
		}
		return PriorYearMsg{Seq: seq, TotalSales: total, OK: true}
	}
}

// priorDayCmd looks up last year's actuals for the same date, for the
// reference line in the day editor. Failures are silent.
func priorDayCmd(client *remote.Client, locationID string, date time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		prior := date.AddDate(-1, 0, 0)
		actuals, found, err := client.ReadDayActuals(ctx, locationID, prior)
		if err != nil || !found {
			return PriorDayMsg{Date: prior}
		}
		return PriorDayMsg{Date: prior, Actuals: actuals, OK: true}
	}
}

// saveCmd runs the blocking save protocol off the event loop.
func saveCmd(s *edit.Session, r edit.Remote) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return SaveResultMsg{Session: s, Err: s.Save(ctx, r)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// monthShift moves a YYYY-MM string by delta months.
func monthShift(yearMonth string, delta int) string {
	t, err := time.Parse(model.MonthLayout, yearMonth)
	if err != nil {
		return yearMonth
	}
	return t.AddDate(0, delta, 0).Format(model.MonthLayout)
}

// todayIndex returns the index of today's record, or 0 when the month does
// not contain today.
func todayIndex(ms model.MonthState) int {
	key := time.Now().Format(model.DateLayout)
	for i, d := range ms.Days {
		if d.Key() == key {
			return i
		}
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}
