package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/pomoclock/internal/store"
)

type tasksModel struct {
	store  *store.Store
	width  int
	height int
	now    func() time.Time

	active      []store.Task
	deleted     []store.Task
	todaySecs   map[string]int
	cursor      int
	showDeleted bool

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"
	editingID  string

	// Form field pointers (survive value copies)
	formName     *string
	formPriority *string
	formRepeat   *string
	formWeekdays *[]int
}

// Intents the App executes against the clock so a bound task is handled
// consistently with the running session.
type completeTaskMsg struct {
	id string
}

type deleteTaskMsg struct {
	id   string
	hard bool
}

func newTasksModel(s *store.Store, now func() time.Time) tasksModel {
	name, prio, rep := "", string(store.PriorityMedium), ""
	days := []int{}
	return tasksModel{
		store:        s,
		now:          now,
		formName:     &name,
		formPriority: &prio,
		formRepeat:   &rep,
		formWeekdays: &days,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		active, err := m.store.ListActiveTasks()
		if err != nil {
			return errStatus(err)
		}
		deleted, err := m.store.ListDeletedTasks()
		if err != nil {
			return errStatus(err)
		}
		return tasksDataMsg{active: active, deleted: deleted}
	}
}

func (m tasksModel) list() []store.Task {
	if m.showDeleted {
		return m.deleted
	}
	return m.active
}

func (m tasksModel) selected() (store.Task, bool) {
	l := m.list()
	if m.cursor >= len(l) {
		return store.Task{}, false
	}
	return l[m.cursor], true
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		m.active = msg.active
		m.deleted = msg.deleted
		m.todaySecs = m.store.TodayTaskSeconds()
		if m.cursor >= len(m.list()) {
			m.cursor = max(0, len(m.list())-1)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateList(msg)
	}
	return m, nil
}

func (m tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.list())-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.ShowDeleted):
		m.showDeleted = !m.showDeleted
		m.cursor = 0
	case key.Matches(msg, keys.New):
		if !m.showDeleted {
			return m.showNewForm()
		}
	}

	t, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Edit):
		if !m.showDeleted {
			return m.showEditForm(t)
		}
	case key.Matches(msg, keys.Select), key.Matches(msg, keys.Enter):
		if !m.showDeleted {
			return m, func() tea.Msg { return selectTaskMsg{id: t.ID} }
		}
	case key.Matches(msg, keys.Complete):
		if !m.showDeleted {
			return m, func() tea.Msg { return completeTaskMsg{id: t.ID} }
		}
	case key.Matches(msg, keys.Delete):
		if !m.showDeleted {
			return m, func() tea.Msg { return deleteTaskMsg{id: t.ID} }
		}
	case key.Matches(msg, keys.HardDelete):
		return m, func() tea.Msg { return deleteTaskMsg{id: t.ID, hard: true} }
	case key.Matches(msg, keys.Restore):
		if m.showDeleted {
			return m, m.restore(t)
		}
	}
	return m, nil
}

func (m tasksModel) restore(t store.Task) tea.Cmd {
	return tea.Sequence(
		func() tea.Msg {
			if err := m.store.RestoreTask(t.ID); err != nil {
				return errStatus(err)
			}
			return statusMsg{text: "Restored " + t.Name}
		},
		m.refresh(),
	)
}

func priorityOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("High", string(store.PriorityHigh)),
		huh.NewOption("Medium", string(store.PriorityMedium)),
		huh.NewOption("Low", string(store.PriorityLow)),
	}
}

func weekdayOptions() []huh.Option[int] {
	opts := make([]huh.Option[int], len(store.WeekdayNames))
	for i, n := range store.WeekdayNames {
		opts[i] = huh.NewOption(n, i)
	}
	return opts
}

func validateRepeat(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := store.ParseRepeat(s)
	return err
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

func (m tasksModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task Name").Value(m.formName).Validate(validateName),
			huh.NewSelect[string]().Title("Priority").Options(priorityOptions()...).Value(m.formPriority),
			huh.NewInput().Title("Repeat (e.g. 1d, 2w, 1m; blank for one-time)").Value(m.formRepeat).Validate(validateRepeat),
			huh.NewMultiSelect[int]().Title("Allowed weekdays (none = every day)").Options(weekdayOptions()...).Value(m.formWeekdays),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m tasksModel) showNewForm() (tasksModel, tea.Cmd) {
	*m.formName = ""
	*m.formPriority = string(store.PriorityMedium)
	*m.formRepeat = ""
	*m.formWeekdays = []int{}
	m.formType = "new"
	m.form = m.buildForm()
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) showEditForm(t store.Task) (tasksModel, tea.Cmd) {
	*m.formName = t.Name
	*m.formPriority = string(t.Priority)
	*m.formRepeat = ""
	if t.Repeat != nil {
		*m.formRepeat = fmt.Sprintf("%d%c", t.Repeat.Count, t.Repeat.Unit[0])
	}
	*m.formWeekdays = append([]int{}, t.AllowedWeekdays...)
	m.formType = "edit"
	m.editingID = t.ID
	m.form = m.buildForm()
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		return m, tea.Sequence(m.save(), m.refresh())
	}
	return m, cmd
}

// save applies the completed form.
func (m tasksModel) save() tea.Cmd {
	name := strings.TrimSpace(*m.formName)
	prio := store.Priority(*m.formPriority)
	repText := strings.TrimSpace(*m.formRepeat)
	days := append([]int{}, *m.formWeekdays...)
	formType, id := m.formType, m.editingID

	return func() tea.Msg {
		var rep *store.Repeat
		if repText != "" {
			r, err := store.ParseRepeat(repText)
			if err != nil {
				return errStatus(err)
			}
			rep = r
		}
		if formType == "edit" {
			err := m.store.EditTask(id, store.TaskEdit{
				Name:            name,
				Priority:        prio,
				Repeat:          rep,
				ClearRepeat:     rep == nil,
				AllowedWeekdays: days,
			})
			if err != nil {
				return errStatus(err)
			}
			return statusMsg{text: "Updated " + name}
		}
		if _, err := m.store.CreateTask(store.TaskInput{
			Name:            name,
			Priority:        prio,
			Repeat:          rep,
			AllowedWeekdays: days,
		}); err != nil {
			return errStatus(err)
		}
		return statusMsg{text: "Created " + name}
	}
}

func (m tasksModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		if m.formType == "edit" {
			title = titleStyle.Render("Edit Task")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()))
	}
	if m.showDeleted {
		return m.renderDeleted(w)
	}
	return m.renderActive(w)
}

func (m tasksModel) renderActive(w int) string {
	title := titleStyle.Render("Tasks")
	if len(m.active) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No tasks yet. Press n to create one."),
		))
	}

	now := m.now()
	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-26s %-7s %-14s %-16s %s", "Name", "Pri", "Repeat", "Last done", "Today")))
	for i, t := range m.active {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		avail := successStyle.Render("●")
		if !store.Available(t, now) {
			avail = mutedStyle.Render("○")
		}
		repeat := "once"
		if t.Repeat != nil {
			repeat = t.Repeat.String()
		}
		if len(t.AllowedWeekdays) > 0 {
			var names []string
			for _, d := range t.AllowedWeekdays {
				names = append(names, store.WeekdayNames[d][:2])
			}
			repeat += " " + strings.Join(names, "")
		}
		last := "never"
		if t.LastCompleted != nil {
			last = humanize.RelTime(*t.LastCompleted, now, "ago", "from now")
		}
		today := ""
		if secs := m.todaySecs[t.ID]; secs > 0 {
			today = formatSeconds(secs)
		}
		rows = append(rows, fmt.Sprintf("%s%s %s %s %-14s %-16s %s",
			cursor, avail,
			style.Render(fmt.Sprintf("%-26s", truncate(t.Name, 26))),
			priorityStyle(t.Priority).Render(fmt.Sprintf("%-7s", t.Priority)),
			truncate(repeat, 14), truncate(last, 16), today,
		))
	}
	rows = append(rows, "", mutedStyle.Render("  n: new  e: edit  w: work on  c: complete  d: delete  D: delete forever  v: deleted"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m tasksModel) renderDeleted(w int) string {
	title := titleStyle.Render("Deleted Tasks")
	if len(m.deleted) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("Nothing here. Press v to go back."),
		))
	}
	rows := []string{title, ""}
	for i, t := range m.deleted {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		rows = append(rows, cursor+deletedItemStyle.Render(t.Name)+mutedStyle.Render(" · deleted "+humanize.Time(t.UpdatedAt)))
	}
	rows = append(rows, "", mutedStyle.Render("  r: restore  D: delete forever  v: back"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
