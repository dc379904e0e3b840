package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pomoclock/internal/schedule"
	"github.com/sadopc/pomoclock/internal/store"
)

// Chrome
var (
	colorPrimary = lipgloss.Color("#6C63FF")
	colorMuted   = lipgloss.Color("#666666")
	colorFg      = lipgloss.Color("#C0CAF5")
	colorSubtle  = lipgloss.Color("#414868")
	colorError   = lipgloss.Color("#E74C3C")
)

// One color per activity kind, reused for priorities.
var (
	colorWork       = lipgloss.Color("#FF6B6B")
	colorShortBreak = lipgloss.Color("#2ECC71")
	colorLongBreak  = lipgloss.Color("#7AA2F7")
	colorLunch      = lipgloss.Color("#F39C12")
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	// Overlays (resume prompt, feedback, export picker).
	activePanelStyle = panelStyle.BorderForeground(colorPrimary)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Align(lipgloss.Center)

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	successStyle = lipgloss.NewStyle().Foreground(colorShortBreak)
	warningStyle = lipgloss.NewStyle().Foreground(colorLunch)

	highlightStyle = lipgloss.NewStyle().Foreground(colorLongBreak)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = mutedStyle.Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)
	normalItemStyle  = lipgloss.NewStyle().Foreground(colorFg)
	deletedItemStyle = mutedStyle.Strikethrough(true)
)

func kindColor(k schedule.Kind) lipgloss.Color {
	switch k {
	case schedule.Work:
		return colorWork
	case schedule.ShortBreak:
		return colorShortBreak
	case schedule.LongBreak:
		return colorLongBreak
	case schedule.Lunch:
		return colorLunch
	}
	return colorMuted
}

func kindStyle(k schedule.Kind) lipgloss.Style {
	if !k.Valid() {
		return mutedStyle
	}
	return lipgloss.NewStyle().Bold(true).Foreground(kindColor(k))
}

func priorityStyle(p store.Priority) lipgloss.Style {
	switch p {
	case store.PriorityHigh:
		return lipgloss.NewStyle().Foreground(colorWork)
	case store.PriorityMedium:
		return warningStyle
	case store.PriorityLow:
		return successStyle
	}
	return mutedStyle
}
