package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pomoclock/internal/clock"
	"github.com/sadopc/pomoclock/internal/schedule"
	"github.com/sadopc/pomoclock/internal/store"
)

const recentSessions = 5

// activityModel shows the current slot, the bound task and today's log. The
// App owns the clock and pushes a fresh snapshot on every tick.
type activityModel struct {
	store  *store.Store
	width  int
	height int

	state   clock.State
	now     time.Time
	next    schedule.Slot
	hasNext bool

	sessions []store.SessionRecord
	icons    map[string]string

	// Task picker state
	picking      bool
	pickerCursor int
	available    []store.Task
}

func newActivityModel(s *store.Store) activityModel {
	return activityModel{store: s, icons: map[string]string{}}
}

func (a *activityModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

func (a *activityModel) sync(c *clock.Clock, now time.Time) {
	a.state = c.State()
	a.now = now
	a.next, a.hasNext = c.NextActivity(now)
}

type availableTasksMsg struct {
	tasks []store.Task
}

// selectTaskMsg asks the App to bind a task to the running work slot.
type selectTaskMsg struct {
	id string
}

func (a activityModel) refresh() tea.Cmd {
	return func() tea.Msg {
		icons, _ := a.store.Icons()
		return todayDataMsg{sessions: a.store.TodaySessions(), icons: icons}
	}
}

func (a activityModel) loadAvailable() tea.Cmd {
	now := a.now
	if now.IsZero() {
		now = time.Now()
	}
	return func() tea.Msg {
		tasks, err := a.store.ListAvailableTasks(now)
		if err != nil {
			return errStatus(err)
		}
		return availableTasksMsg{tasks: tasks}
	}
}

func (a activityModel) update(msg tea.Msg) (activityModel, tea.Cmd) {
	switch msg := msg.(type) {
	case todayDataMsg:
		a.sessions = msg.sessions
		if msg.icons != nil {
			a.icons = msg.icons
		}
		return a, nil

	case availableTasksMsg:
		a.available = msg.tasks
		if len(a.available) == 0 {
			return a, statusCmd(statusMsg{text: "No tasks available today. Press 2 to add one.", isError: true})
		}
		a.picking = true
		a.pickerCursor = 0
		return a, nil

	case tea.KeyMsg:
		if a.picking {
			return a.updatePicker(msg)
		}
		switch {
		case key.Matches(msg, keys.Select), key.Matches(msg, keys.Enter):
			return a, a.loadAvailable()
		}
	}
	return a, nil
}

func (a activityModel) updatePicker(msg tea.KeyMsg) (activityModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.pickerCursor > 0 {
			a.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.pickerCursor < len(a.available)-1 {
			a.pickerCursor++
		}
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Select):
		t := a.available[a.pickerCursor]
		a.picking = false
		return a, func() tea.Msg { return selectTaskMsg{id: t.ID} }
	case key.Matches(msg, keys.Back):
		a.picking = false
	}
	return a, nil
}

func (a activityModel) icon(k schedule.Kind) string {
	return a.icons[k.SettingKey()]
}

func (a activityModel) view() string {
	if a.width < 20 {
		return "Terminal too small"
	}
	w := a.width - 4

	var bottom string
	if a.picking {
		bottom = a.renderPicker(w)
	} else {
		bottom = a.renderToday(w)
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.renderCurrent(w), bottom)
}

func (a activityModel) renderCurrent(w int) string {
	st := a.state
	if st.Activity == nil {
		lines := []string{
			clockStyle.Width(w - 6).Foreground(colorMuted).Render("--:--"),
			mutedStyle.Render("■  OUTSIDE SCHEDULE"),
		}
		if a.hasNext {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("Next: %s %s %s at %s",
				a.icon(a.next.Kind), a.next.Kind.Label(), a.next.SessionLabel(), a.next.Start)))
		}
		lines = append(lines, mutedStyle.Render("Press s to start a manual session"))
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
	}

	slot := *st.Activity
	style := kindStyle(slot.Kind)
	label := fmt.Sprintf("%s  %s", a.icon(slot.Kind), strings.ToUpper(slot.Kind.Label()))
	if slot.Session != schedule.NoSession {
		label += fmt.Sprintf("  ·  session %d", slot.Session)
	}

	lines := []string{
		style.Width(w - 6).Align(lipgloss.Center).Render(formatCountdown(st.Remaining(a.now))),
		style.Render(label),
		mutedStyle.Render(fmt.Sprintf("%s – %s", slot.Start, slot.End)),
	}

	if slot.Kind == schedule.Work {
		switch {
		case st.PausedForSleep:
			lines = append(lines, warningStyle.Render("⏸  PAUSED (system asleep)"))
		case st.Running():
			lines = append(lines, successStyle.Render("●  "+formatDuration(st.Elapsed(a.now))))
		}
		if st.Task != nil {
			lines = append(lines, highlightStyle.Render(st.Task.Name)+" "+priorityStyle(st.Task.Priority).Render(string(st.Task.Priority)))
		} else {
			lines = append(lines, warningStyle.Render("No task selected. Press w to pick one."))
		}
	} else if st.NextTask != nil {
		lines = append(lines, mutedStyle.Render("Up next: ")+highlightStyle.Render(st.NextTask.Name))
	}

	if st.FromDynamic && st.Dynamic != nil {
		lines = append(lines, mutedStyle.Render("Manual schedule until "+st.Dynamic.End().Format("15:04")))
	}

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func (a activityModel) renderToday(w int) string {
	total := 0
	for _, s := range a.sessions {
		total += s.DurationSeconds
	}
	header := fmt.Sprintf("%s  %s  %s",
		titleStyle.Render("Today"),
		highlightStyle.Render(formatSeconds(total)),
		mutedStyle.Render(fmt.Sprintf("(%d sessions)", len(a.sessions))),
	)
	if len(a.sessions) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No sessions logged today"),
		))
	}

	rows := []string{header}
	start := max(0, len(a.sessions)-recentSessions)
	for _, s := range a.sessions[start:] {
		mark := successStyle.Render("✓")
		if !s.Completed {
			mark = warningStyle.Render("•")
		}
		mood := string(s.Mood)
		if mood == "" {
			mood = " "
		}
		rows = append(rows, fmt.Sprintf("  %s %s  %-24s %s %s",
			mark,
			s.StartTime.Local().Format("15:04"),
			truncate(s.TaskName, 24),
			formatSeconds(s.DurationSeconds),
			mood,
		))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (a activityModel) renderPicker(w int) string {
	rows := []string{titleStyle.Render("Select Task")}
	for i, t := range a.available {
		cursor := "  "
		style := normalItemStyle
		if i == a.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+t.Name)+" "+priorityStyle(t.Priority).Render(string(t.Priority)))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: select  esc: cancel"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
