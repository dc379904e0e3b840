package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pomoclock/internal/analytics"
	"github.com/sadopc/pomoclock/internal/store"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
	reportTasks
	reportMood
)

var reportModeNames = []string{"Daily", "Weekly", "Tasks", "Mood"}

const chartDays = 7

type reportsModel struct {
	store  *store.Store
	width  int
	height int
	now    func() time.Time

	mode     reportMode
	sessions []store.SessionRecord
	offset   int // 7-day blocks back from today

	chart barchart.Model
}

func newReportsModel(s *store.Store, now func() time.Time) reportsModel {
	return reportsModel{
		store: s,
		now:   now,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	sessions []store.SessionRecord
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sessions, err := r.store.AllSessions()
		if err != nil {
			return errStatus(err)
		}
		return reportsDataMsg{sessions: sessions}
	}
}

// anchor is the last day shown in the chart.
func (r reportsModel) anchor() time.Time {
	return r.now().AddDate(0, 0, -chartDays*r.offset)
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.sessions = msg.sessions
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			r.buildChart()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			r.buildChart()
		case key.Matches(msg, keys.Mode):
			r.mode = (r.mode + 1) % reportMode(len(reportModeNames))
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 36 {
		chartHeight = 14
	}
	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, day := range analytics.DailyTotals(r.sessions, r.anchor(), chartDays) {
		var values []barchart.BarValue
		for _, t := range day.Tasks {
			values = append(values, barchart.BarValue{
				Name:  t.TaskName,
				Value: float64(t.Seconds) / 60,
				Style: priorityStyle(t.Priority),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{
			Label:  day.Date.Format("Mon 02"),
			Values: values,
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) body() string {
	now := r.now()
	switch r.mode {
	case reportWeekly:
		return analytics.RenderWeekly(analytics.WeeklySummary(r.sessions, now))
	case reportTasks:
		return analytics.RenderTaskBreakdown(analytics.TaskTotals(analytics.InPeriod(r.sessions, analytics.PeriodWeek, now)))
	case reportMood:
		recs := analytics.InPeriod(r.sessions, analytics.PeriodMonth, now)
		return analytics.RenderMoods(analytics.Moods(recs), analytics.PeriodMonth, now)
	}
	return analytics.RenderDaily(analytics.DailySummary(r.sessions, now))
}

func (r reportsModel) view() string {
	w := r.width - 4

	var tabs []string
	for i, name := range reportModeNames {
		if reportMode(i) == r.mode {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	last := r.anchor()
	first := last.AddDate(0, 0, -(chartDays - 1))
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s – %s (minutes)", first.Format("Jan 02"), last.Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	body := strings.TrimRight(r.body(), "\n")
	nav := mutedStyle.Render("  ←/→: move chart  m: switch report")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", body, "", nav,
		),
	)
}
