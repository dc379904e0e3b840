package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pomoclock/internal/schedule"
	"github.com/sadopc/pomoclock/internal/store"
)

var iconKinds = []schedule.Kind{schedule.Work, schedule.ShortBreak, schedule.LongBreak, schedule.Lunch}

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// One icon per activity kind, in iconKinds order.
	icons []*string
}

func newSettingsModel(s *store.Store) settingsModel {
	icons := make([]*string, len(iconKinds))
	for i := range icons {
		v := ""
		icons[i] = &v
	}
	return settingsModel{store: s, icons: icons}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		if err != nil {
			return errStatus(err)
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	var fields []huh.Field
	for i, k := range iconKinds {
		*s.icons[i] = s.store.Icon(k.SettingKey())
		fields = append(fields, huh.NewInput().
			Title(k.Label()+" icon").
			Value(s.icons[i]).
			Validate(func(v string) error {
				if strings.TrimSpace(v) == "" {
					return fmt.Errorf("icon must not be empty")
				}
				return nil
			}))
	}

	s.form = huh.NewForm(
		huh.NewGroup(fields...).Title("Activity icons"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, tea.Sequence(s.save(), s.refresh())
	}
	return s, cmd
}

func (s settingsModel) save() tea.Cmd {
	values := make(map[string]string, len(iconKinds))
	for i, k := range iconKinds {
		values["icon_"+k.SettingKey()] = strings.TrimSpace(*s.icons[i])
	}
	return func() tea.Msg {
		if err := s.store.SaveSettings(values); err != nil {
			return errStatus(err)
		}
		return statusMsg{text: "Settings saved"}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(formatSettingKey(setting.Key))
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(setting.Value)))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit icons"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// formatSettingKey turns "icon_short_break" into "Short Break icon".
func formatSettingKey(k string) string {
	if kind, ok := strings.CutPrefix(k, "icon_"); ok {
		return schedule.Kind(strings.ToUpper(kind)).Label() + " icon"
	}
	return k
}
