package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sadopc/pomoclock/internal/store"
)

const rule = "────────────────────────────────"

// FormatHMS renders seconds as "1h 2m 3s", dropping a zero hour.
func FormatHMS(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if h == 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// Bar draws a fixed-width bar filled to percent.
func Bar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func priorityBadge(p store.Priority) string {
	if p == "" {
		return "-"
	}
	return string(p)[:1]
}

func RenderDaily(d Daily) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today's Summary (%s)\n%s\n", d.Date.Format("Jan 02, 2006"), rule)
	fmt.Fprintf(&b, "Sessions completed: %s\n", humanize.Comma(int64(d.Sessions)))
	fmt.Fprintf(&b, "Total focus time:   %s\n", FormatHMS(d.FocusSeconds))
	fmt.Fprintf(&b, "Tasks worked on:    %d\n\n", d.Tasks)
	top := "None"
	if d.Top != nil {
		top = fmt.Sprintf("%s (%s)", d.Top.TaskName, FormatHMS(d.Top.Seconds))
	}
	fmt.Fprintf(&b, "Top task: %s\n", top)
	mood := "No data"
	if len(d.Moods) > 0 {
		var sb strings.Builder
		for _, m := range d.Moods {
			sb.WriteString(string(m))
		}
		mood = sb.String()
	}
	fmt.Fprintf(&b, "Mood: %s\n", mood)
	return b.String()
}

func RenderWeekly(w Weekly) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This Week (%s - %s)\n%s\n", w.From.Format("Jan 02"), w.To.AddDate(0, 0, -1).Format("Jan 02, 2006"), rule)
	fmt.Fprintf(&b, "Sessions:        %d / %d scheduled\n", w.Sessions, w.Scheduled)
	fmt.Fprintf(&b, "Focus time:      %s\n", FormatHMS(w.FocusSeconds))
	fmt.Fprintf(&b, "Completion rate: %d%%\n\n", w.CompletionRate)
	best := "N/A"
	if w.BestDaySeconds > 0 {
		best = fmt.Sprintf("%s (%s)", w.BestDay, FormatHMS(w.BestDaySeconds))
	}
	fmt.Fprintf(&b, "Most productive day: %s\n", best)
	top := "None"
	if w.Top != nil {
		top = fmt.Sprintf("%s (%s)", w.Top.TaskName, FormatHMS(w.Top.Seconds))
	}
	fmt.Fprintf(&b, "Top task: %s\n", top)
	mood := "No data"
	if w.Mood.Total > 0 {
		mood = fmt.Sprintf("%d/100", w.Mood.Score)
	}
	fmt.Fprintf(&b, "Mood score: %s\n", mood)
	return b.String()
}

func RenderTaskBreakdown(totals []TaskTotal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Time per Task\n%s\n", rule)
	if len(totals) == 0 {
		b.WriteString("No tasks tracked yet.\n")
		return b.String()
	}
	var secs, sessions int
	for _, t := range totals {
		secs += t.Seconds
		sessions += t.Sessions
	}
	fmt.Fprintf(&b, "Total: %s across %d sessions\n\n", FormatHMS(secs), sessions)
	for _, t := range totals {
		pct := 0
		if secs > 0 {
			pct = t.Seconds * 100 / secs
		}
		name := t.TaskName
		if r := []rune(name); len(r) > 20 {
			name = string(r[:20])
		}
		fmt.Fprintf(&b, "%s %-20s %10s (%d sess)\n", priorityBadge(t.Priority), name, FormatHMS(t.Seconds), t.Sessions)
		fmt.Fprintf(&b, "   %s %d%%\n", Bar(pct, 20), pct)
	}
	return b.String()
}

func RenderMoods(rep MoodReport, p Period, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mood Analysis - %s (%s)\n%s\n", p, now.Format("02 Jan 2006"), rule)
	if rep.Total == 0 {
		b.WriteString("No mood data for this period.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Sessions tracked: %d\n", rep.Total)
	fmt.Fprintf(&b, "Mood score: %d/100\n\n", rep.Score)
	b.WriteString("Distribution:\n")
	for _, c := range rep.Counts {
		fmt.Fprintf(&b, "   %s %s: %d (%d%%) %s\n", c.Mood, c.Mood.Label(), c.Count, c.Percent, strings.Repeat("█", c.Percent/10))
	}
	if rep.BestTask != "" || rep.WorstTask != "" {
		b.WriteString("\nInsights:\n")
		if rep.BestTask != "" {
			fmt.Fprintf(&b, "   You feel best when working on: %s\n", rep.BestTask)
		}
		if rep.WorstTask != "" {
			fmt.Fprintf(&b, "   You struggle most with: %s\n", rep.WorstTask)
		}
	}
	return b.String()
}
