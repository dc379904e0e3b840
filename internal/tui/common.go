package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/pomoclock/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewActivity viewState = iota
	viewTasks
	viewReports
	viewSettings
)

var viewNames = []string{"Activity", "Tasks", "Reports", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

type tasksDataMsg struct {
	active  []store.Task
	deleted []store.Task
}

type todayDataMsg struct {
	sessions []store.SessionRecord
	icons    map[string]string
}

func errStatus(err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
}

func statusCmd(msg statusMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

// formatCountdown renders mm:ss, clamping negatives to zero.
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
