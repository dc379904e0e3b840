package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pomoclock/internal/store"
)

// feedbackModel asks for mood, reflection and blockers once per work session.
type feedbackModel struct {
	active bool
	form   *huh.Form

	mood       *string
	reflection *string
	blockers   *string
}

// feedbackMsg carries the submitted answers to the App.
type feedbackMsg struct {
	fb store.Feedback
}

func newFeedbackModel() feedbackModel {
	mood, refl, block := "", "", ""
	return feedbackModel{mood: &mood, reflection: &refl, blockers: &block}
}

func moodOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("Skip", "")}
	for _, m := range store.Moods {
		opts = append(opts, huh.NewOption(string(m)+"  "+m.Label(), string(m)))
	}
	return opts
}

func (f feedbackModel) open() (feedbackModel, tea.Cmd) {
	*f.mood = ""
	*f.reflection = ""
	*f.blockers = ""
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("How did that session feel?").Options(moodOptions()...).Value(f.mood),
			huh.NewInput().Title("What did you get done?").Value(f.reflection),
			huh.NewInput().Title("Anything blocking you?").Value(f.blockers),
		),
	).WithShowHelp(true)
	f.active = true
	return f, f.form.Init()
}

func (f feedbackModel) update(msg tea.Msg) (feedbackModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		f.active = false
		f.form = nil
		return f, statusCmd(statusMsg{text: "Feedback skipped"})
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		f.active = false
		fb := store.Feedback{
			Mood:       store.Mood(*f.mood),
			Reflection: strings.TrimSpace(*f.reflection),
			Blockers:   strings.TrimSpace(*f.blockers),
		}
		return f, func() tea.Msg { return feedbackMsg{fb: fb} }
	}
	return f, cmd
}

func (f feedbackModel) view(w int) string {
	if f.form == nil {
		return ""
	}
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Session Feedback"), "", f.form.View(),
		mutedStyle.Render("esc: skip"),
	))
}
