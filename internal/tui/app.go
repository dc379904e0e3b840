package tui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/pomoclock/internal/analytics"
	"github.com/sadopc/pomoclock/internal/clock"
	"github.com/sadopc/pomoclock/internal/export"
	"github.com/sadopc/pomoclock/internal/schedule"
	"github.com/sadopc/pomoclock/internal/store"
)

// A tick gap longer than this is treated as the machine having slept.
const sleepGap = 30 * time.Second

type Option func(*App)

// WithNow replaces the wall clock, mainly for tests.
func WithNow(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithExportDir sets where exports are written. Defaults to the home directory.
func WithExportDir(dir string) Option {
	return func(a *App) { a.exportDir = dir }
}

func WithLogger(l *log.Logger) Option {
	return func(a *App) { a.log = l }
}

// App is the root Bubble Tea model. It owns the clock and calls it only from
// Update, so the clock never sees concurrent use.
type App struct {
	clock  *clock.Clock
	store  *store.Store
	events *clock.Buffer

	now       func() time.Time
	log       *log.Logger
	exportDir string
	lastTick  time.Time

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	// resume is a persisted manual schedule awaiting a y/n answer.
	resume *schedule.Dynamic

	activity activityModel
	tasks    tasksModel
	reports  reportsModel
	settings settingsModel
	feedback feedbackModel

	help        help.Model
	status      string
	statusError bool
}

// NewApp builds the UI around c. events must be the sink c was created with.
func NewApp(c *clock.Clock, s *store.Store, events *clock.Buffer, opts ...Option) App {
	h := help.New()
	h.ShowAll = false

	a := App{
		clock:      c,
		store:      s,
		events:     events,
		now:        time.Now,
		log:        log.New(io.Discard),
		activeView: viewActivity,
		help:       h,
		feedback:   newFeedbackModel(),
	}
	for _, o := range opts {
		o(&a)
	}
	if a.exportDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			a.exportDir = home
		}
	}

	a.activity = newActivityModel(s)
	a.tasks = newTasksModel(s, a.now)
	a.reports = newReportsModel(s, a.now)
	a.settings = newSettingsModel(s)

	now := a.now()
	a.resume = c.PendingResume(now)
	a.activity.sync(c, now)
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.activity.refresh(),
		a.tasks.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.activity.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tickMsg:
		return a.onTick()

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		return a, nil

	// Data loads are routed by type so a refresh lands even when its view
	// is in the background.
	case todayDataMsg, availableTasksMsg:
		var cmd tea.Cmd
		a.activity, cmd = a.activity.update(msg)
		return a, cmd
	case tasksDataMsg:
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		return a, cmd
	case reportsDataMsg:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.update(msg)
		return a, cmd
	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case selectTaskMsg:
		err := a.clock.SelectTask(msg.id, a.now())
		return a.afterClock(err, a.tasks.refresh())

	case completeTaskMsg:
		err := a.clock.CompleteTask(msg.id, a.now())
		if err == nil {
			a.setStatus("Task completed", false)
		}
		return a.afterClock(err, a.tasks.refresh())

	case deleteTaskMsg:
		err := a.clock.DeleteTask(msg.id, msg.hard)
		if errors.Is(err, clock.ErrTaskActive) {
			a.setStatus("Can't delete the task you're working on", true)
			return a, nil
		}
		if err == nil {
			a.setStatus("Task deleted", false)
		}
		return a.afterClock(err, a.tasks.refresh())

	case feedbackMsg:
		if msg.fb.Empty() {
			a.clock.MarkFeedbackPrompted()
			a.setStatus("Feedback skipped", false)
			return a, nil
		}
		err := a.clock.SubmitFeedback(msg.fb)
		if err == nil {
			a.setStatus("Feedback saved", false)
		}
		return a.afterClock(err, nil)

	case tea.KeyMsg:
		return a.onKey(msg)
	}

	if a.feedback.active {
		var cmd tea.Cmd
		a.feedback, cmd = a.feedback.update(msg)
		return a, cmd
	}
	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusError = isError
}

// onTick advances the clock and reacts to whatever it emitted.
func (a App) onTick() (tea.Model, tea.Cmd) {
	now := a.now()
	if !a.lastTick.IsZero() && now.Sub(a.lastTick) > sleepGap {
		a.log.Info("tick gap, treating as sleep", "gap", now.Sub(a.lastTick).Round(time.Second))
		a.clock.Sleep(a.lastTick)
		a.clock.Wake(now)
	}
	a.lastTick = now

	if a.resume == nil {
		a.clock.Tick(now)
	}
	a.activity.sync(a.clock, now)
	cmds := append(a.drainEvents(), tickCmd())

	if !a.feedback.active && a.clock.ShouldPromptFeedback(now) {
		a.clock.MarkFeedbackPrompted()
		var cmd tea.Cmd
		a.feedback, cmd = a.feedback.open()
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// afterClock reports err, syncs the activity view and runs refresh.
func (a App) afterClock(err error, refresh tea.Cmd) (tea.Model, tea.Cmd) {
	if err != nil {
		a.setStatus(err.Error(), true)
	}
	a.activity.sync(a.clock, a.now())
	cmds := a.drainEvents()
	if refresh != nil {
		cmds = append(cmds, refresh)
	}
	return a, tea.Batch(cmds...)
}

// drainEvents turns clock events into status text and data refreshes.
func (a *App) drainEvents() []tea.Cmd {
	var cmds []tea.Cmd
	refreshed := false
	for _, e := range a.events.Drain() {
		a.log.Debug("clock event", "kind", e.Kind)
		if text, isError := eventStatus(e); text != "" {
			a.setStatus(text, isError)
		}
		switch e.Kind {
		case clock.SessionLogged, clock.ActivityChanged:
			if !refreshed {
				cmds = append(cmds, a.activity.refresh(), a.tasks.refresh())
				if a.activeView == viewReports {
					cmds = append(cmds, a.reports.refresh())
				}
				refreshed = true
			}
		}
	}
	return cmds
}

func eventStatus(e clock.Event) (string, bool) {
	switch e.Kind {
	case clock.ActivityChanged:
		if e.Slot == nil {
			return "Outside schedule", false
		}
		if e.Slot.Session != schedule.NoSession {
			return fmt.Sprintf("%s started (session %d)", e.Slot.Kind.Label(), e.Slot.Session), false
		}
		return e.Slot.Kind.Label() + " started", false
	case clock.SessionLogged:
		if e.Record == nil {
			return "", false
		}
		return fmt.Sprintf("Logged %s on %s", analytics.FormatHMS(e.Record.DurationSeconds), e.Record.TaskName), false
	case clock.TaskBound:
		if e.Task != nil {
			return "Working on " + e.Task.Name, false
		}
	case clock.TaskQueued:
		if e.Task != nil {
			return e.Task.Name + " queued for the next work session", false
		}
	case clock.TaskSelectionNeeded:
		return "No task selected. Press w to pick one.", true
	case clock.ManualStarted:
		return "Manual schedule started", false
	case clock.ManualRejected:
		return "Manual sessions are disabled during fixed schedule hours", true
	case clock.ScheduleCleared:
		return "Manual schedule stopped", false
	case clock.ScheduleCompleted:
		return "Manual schedule complete", false
	}
	return "", false
}

func (a App) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.resume != nil {
		return a.updateResumePrompt(msg)
	}

	if a.feedback.active {
		var cmd tea.Cmd
		a.feedback, cmd = a.feedback.update(msg)
		return a, cmd
	}

	if a.exportPicking {
		return a.updateExportPicker(msg)
	}

	// If a child view is capturing input (e.g. form), delegate first.
	if a.isFormActive() {
		return a.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		a.clock.Terminate(a.now())
		return a, tea.Quit
	case key.Matches(msg, keys.Export):
		a.exportPicking = true
		a.exportCursor = 0
		return a, nil
	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
		return a, nil
	case key.Matches(msg, keys.Manual):
		return a.afterClock(a.clock.ToggleManual(a.now()), nil)
	case key.Matches(msg, keys.Tab1):
		return a.switchView(viewActivity)
	case key.Matches(msg, keys.Tab2):
		return a.switchView(viewTasks)
	case key.Matches(msg, keys.Tab3):
		return a.switchView(viewReports)
	case key.Matches(msg, keys.Tab4):
		return a.switchView(viewSettings)
	case key.Matches(msg, keys.Tab):
		return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
	}

	return a.updateActiveView(msg)
}

func (a App) updateResumePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Yes):
		d := a.resume
		a.resume = nil
		a.clock.Resume(d, a.now())
		a.setStatus("Manual schedule resumed", false)
		return a.afterClock(nil, nil)
	case key.Matches(msg, keys.No):
		a.resume = nil
		a.clock.DiscardResume()
		a.setStatus("Manual schedule discarded", false)
		return a, nil
	case key.Matches(msg, keys.Quit):
		a.clock.Terminate(a.now())
		return a, tea.Quit
	}
	return a, nil
}

func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewActivity:
		a.activity, cmd = a.activity.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewActivity:
		return a.activity.picking
	case viewTasks:
		return a.tasks.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewActivity:
		return a.activity.refresh()
	case viewTasks:
		return a.tasks.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewActivity:
		content = a.activity.view()
	case viewTasks:
		content = a.tasks.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	switch {
	case a.resume != nil:
		content = a.renderResumePrompt()
	case a.feedback.active:
		content = a.feedback.view(a.width - 4)
	case a.exportPicking:
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("pomoclock")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusError {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Session indicator
	timerInfo := ""
	st := a.activity.state
	switch {
	case st.PausedForSleep:
		timerInfo = warningStyle.Render(" ⏸ paused")
	case st.Running():
		timerInfo = successStyle.Render(" ● " + formatDuration(st.Elapsed(a.activity.now)))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderResumePrompt() string {
	d := a.resume
	rows := []string{
		titleStyle.Render("Resume manual schedule?"),
		"",
		fmt.Sprintf("A manual schedule started at %s is still running until %s.",
			d.StartTime.Format("15:04"), d.End().Format("15:04")),
		"",
		mutedStyle.Render("  y: resume  n: discard"),
	}
	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	dir := a.exportDir
	date := a.now().Format("2006-01-02")
	return func() tea.Msg {
		sessions, err := a.store.AllSessions()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		var path string
		if format == 0 {
			path = filepath.Join(dir, fmt.Sprintf("pomoclock-export-%s.csv", date))
			if err := export.ToCSV(sessions, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, fmt.Sprintf("pomoclock-export-%s.json", date))
			if err := export.ToJSON(sessions, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}
		return exportDoneMsg{path: path}
	}
}
