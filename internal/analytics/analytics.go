// Package analytics aggregates logged work sessions into summaries.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sadopc/pomoclock/internal/store"
)

// ScheduledPerWeek is the nominal number of work sessions in a week.
const ScheduledPerWeek = 50

type TaskTotal struct {
	TaskID   string
	TaskName string
	Priority store.Priority
	Seconds  int
	Sessions int
}

func workOnly(recs []store.SessionRecord) []store.SessionRecord {
	out := make([]store.SessionRecord, 0, len(recs))
	for _, r := range recs {
		if r.SessionKind == "" || r.SessionKind == "WORK" {
			out = append(out, r)
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns Monday 00:00 of t's week.
func StartOfWeek(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, -store.WeekdayIndex(t))
}

func between(recs []store.SessionRecord, from, to time.Time) []store.SessionRecord {
	var out []store.SessionRecord
	for _, r := range recs {
		if !r.StartTime.Before(from) && r.StartTime.Before(to) {
			out = append(out, r)
		}
	}
	return out
}

// TaskTotals sums seconds and sessions per task, largest first.
func TaskTotals(recs []store.SessionRecord) []TaskTotal {
	byID := make(map[string]*TaskTotal)
	var order []string
	for _, r := range workOnly(recs) {
		tt, ok := byID[r.TaskID]
		if !ok {
			tt = &TaskTotal{TaskID: r.TaskID, TaskName: r.TaskName, Priority: r.Priority}
			byID[r.TaskID] = tt
			order = append(order, r.TaskID)
		}
		tt.Seconds += r.DurationSeconds
		tt.Sessions++
	}
	out := make([]TaskTotal, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seconds > out[j].Seconds })
	return out
}

type Daily struct {
	Date         time.Time
	Sessions     int
	FocusSeconds int
	Tasks        int
	Top          *TaskTotal
	Moods        []store.Mood
}

// DailySummary summarises the work sessions that started on now's date.
func DailySummary(recs []store.SessionRecord, now time.Time) Daily {
	from := startOfDay(now)
	work := workOnly(between(recs, from, from.AddDate(0, 0, 1)))
	d := Daily{Date: from, Sessions: len(work)}
	for _, r := range work {
		d.FocusSeconds += r.DurationSeconds
		if r.Mood != "" {
			d.Moods = append(d.Moods, r.Mood)
		}
	}
	totals := TaskTotals(work)
	d.Tasks = len(totals)
	if len(totals) > 0 {
		top := totals[0]
		d.Top = &top
	}
	return d
}

type Weekly struct {
	From           time.Time
	To             time.Time
	Sessions       int
	Scheduled      int
	CompletionRate int
	FocusSeconds   int
	BestDay        time.Weekday
	BestDaySeconds int
	Top            *TaskTotal
	Mood           MoodReport
}

// WeeklySummary covers Monday of now's week through now's date.
func WeeklySummary(recs []store.SessionRecord, now time.Time) Weekly {
	from := StartOfWeek(now)
	to := startOfDay(now).AddDate(0, 0, 1)
	work := workOnly(between(recs, from, to))

	w := Weekly{From: from, To: to, Sessions: len(work), Scheduled: ScheduledPerWeek}
	w.CompletionRate = w.Sessions * 100 / w.Scheduled

	perDay := make(map[time.Weekday]int)
	for _, r := range work {
		w.FocusSeconds += r.DurationSeconds
		perDay[r.StartTime.In(now.Location()).Weekday()] += r.DurationSeconds
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		if perDay[day] > w.BestDaySeconds {
			w.BestDay, w.BestDaySeconds = day, perDay[day]
		}
	}
	if totals := TaskTotals(work); len(totals) > 0 {
		top := totals[0]
		w.Top = &top
	}
	w.Mood = Moods(work)
	return w
}

type MoodCount struct {
	Mood    store.Mood
	Count   int
	Percent int
}

type MoodReport struct {
	Total     int
	Score     int
	Counts    []MoodCount
	BestTask  string
	WorstTask string
}

// Task insights need at least this many rated sessions per task.
const minRatedSessions = 2

// Moods computes the mood distribution and the 0-100 score, the share of
// rated sessions with a positive mood.
func Moods(recs []store.SessionRecord) MoodReport {
	counts := make(map[store.Mood]int)
	perTask := make(map[string][]int)
	var taskOrder []string
	var rep MoodReport
	for _, r := range recs {
		if r.Mood == "" {
			continue
		}
		rep.Total++
		counts[r.Mood]++
		if _, ok := perTask[r.TaskName]; !ok {
			taskOrder = append(taskOrder, r.TaskName)
		}
		score := 0
		if r.Mood.Positive() {
			score = 1
		}
		perTask[r.TaskName] = append(perTask[r.TaskName], score)
	}
	if rep.Total == 0 {
		return rep
	}

	positive := 0
	for m, n := range counts {
		if m.Positive() {
			positive += n
		}
		rep.Counts = append(rep.Counts, MoodCount{Mood: m, Count: n, Percent: n * 100 / rep.Total})
	}
	rep.Score = positive * 100 / rep.Total
	sort.Slice(rep.Counts, func(i, j int) bool {
		if rep.Counts[i].Count != rep.Counts[j].Count {
			return rep.Counts[i].Count > rep.Counts[j].Count
		}
		return rep.Counts[i].Mood < rep.Counts[j].Mood
	})

	bestAvg, worstAvg := -1.0, 2.0
	best, worst := "", ""
	for _, task := range taskOrder {
		scores := perTask[task]
		if len(scores) < minRatedSessions {
			continue
		}
		sum := 0
		for _, s := range scores {
			sum += s
		}
		avg := float64(sum) / float64(len(scores))
		if avg > bestAvg {
			bestAvg, best = avg, task
		}
		if avg < worstAvg {
			worstAvg, worst = avg, task
		}
	}
	if best != "" && bestAvg >= 0.8 {
		rep.BestTask = best
	}
	if worst != "" && worstAvg <= 0.4 {
		rep.WorstTask = worst
	}
	return rep
}

type Period int

const (
	PeriodDay Period = iota
	PeriodWeek
	PeriodMonth
	PeriodAll
)

func (p Period) String() string {
	switch p {
	case PeriodDay:
		return "Today"
	case PeriodWeek:
		return "Last 7 Days"
	case PeriodMonth:
		return "Last 30 Days"
	}
	return "All Time"
}

// ParsePeriod accepts day, week, month or all.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "today":
		return PeriodDay, nil
	case "week":
		return PeriodWeek, nil
	case "month":
		return PeriodMonth, nil
	case "all":
		return PeriodAll, nil
	}
	return PeriodAll, fmt.Errorf("unknown period %q (want day, week, month or all)", s)
}

// InPeriod keeps the records that started within the rolling period ending
// on now's date.
func InPeriod(recs []store.SessionRecord, p Period, now time.Time) []store.SessionRecord {
	today := startOfDay(now)
	var from time.Time
	switch p {
	case PeriodDay:
		from = today
	case PeriodWeek:
		from = today.AddDate(0, 0, -6)
	case PeriodMonth:
		from = today.AddDate(0, 0, -29)
	default:
		return recs
	}
	return between(recs, from, today.AddDate(0, 0, 1))
}

type DayTotal struct {
	Date    time.Time
	Seconds int
	Tasks   []TaskTotal
}

// DailyTotals returns one entry per day for the last n days, oldest first,
// including days with no sessions.
func DailyTotals(recs []store.SessionRecord, now time.Time, n int) []DayTotal {
	today := startOfDay(now)
	out := make([]DayTotal, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		work := workOnly(between(recs, day, day.AddDate(0, 0, 1)))
		dt := DayTotal{Date: day, Tasks: TaskTotals(work)}
		for _, r := range work {
			dt.Seconds += r.DurationSeconds
		}
		out = append(out, dt)
	}
	return out
}
