package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
	PriorityNone   Priority = "None"
)

// ParsePriority accepts the canonical names case-insensitively. Empty input
// yields Medium.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "medium", "m":
		return PriorityMedium, nil
	case "high", "h":
		return PriorityHigh, nil
	case "low", "l":
		return PriorityLow, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, s)
}

type TaskStatus string

const (
	StatusActive  TaskStatus = "active"
	StatusDeleted TaskStatus = "deleted"
)

type RepeatUnit string

const (
	UnitDay   RepeatUnit = "day"
	UnitWeek  RepeatUnit = "week"
	UnitMonth RepeatUnit = "month"
	UnitYear  RepeatUnit = "year"
)

func (u RepeatUnit) days() int {
	switch u {
	case UnitDay:
		return 1
	case UnitWeek:
		return 7
	case UnitMonth:
		return 30
	case UnitYear:
		return 365
	}
	return 0
}

// Repeat is a recurrence cadence: every Count Units.
type Repeat struct {
	Count int
	Unit  RepeatUnit
}

// Days is the cadence length in days. Months count as 30 and years as 365.
func (r Repeat) Days() int {
	return r.Count * r.Unit.days()
}

func (r Repeat) Valid() bool {
	return r.Count >= 1 && r.Unit.days() > 0
}

func (r Repeat) String() string {
	if r.Count == 1 {
		return "every " + string(r.Unit)
	}
	return fmt.Sprintf("every %d %ss", r.Count, r.Unit)
}

// ParseRepeat parses short cadences such as "1d", "2w", "1m" or "1y".
func ParseRepeat(s string) (*Repeat, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) < 2 {
		return nil, fmt.Errorf("%w: bad repeat %q", ErrInvalidTask, s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad repeat %q", ErrInvalidTask, s)
	}
	var unit RepeatUnit
	switch s[len(s)-1] {
	case 'd':
		unit = UnitDay
	case 'w':
		unit = UnitWeek
	case 'm':
		unit = UnitMonth
	case 'y':
		unit = UnitYear
	default:
		return nil, fmt.Errorf("%w: bad repeat unit in %q", ErrInvalidTask, s)
	}
	r := &Repeat{Count: n, Unit: unit}
	if !r.Valid() {
		return nil, fmt.Errorf("%w: bad repeat %q", ErrInvalidTask, s)
	}
	return r, nil
}

// Weekday names indexed Monday-first, matching AllowedWeekdays.
var WeekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ParseWeekdays maps names such as "Mon", "monday" or "MONDAY" to weekday
// indexes.
func ParseWeekdays(names []string) ([]int, error) {
	days := make([]int, 0, len(names))
	for _, n := range names {
		short := strings.TrimSpace(n)
		if len(short) > 3 {
			short = short[:3]
		}
		idx := -1
		for i, w := range WeekdayNames {
			if strings.EqualFold(w, short) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidTask, n)
		}
		days = append(days, idx)
	}
	return days, nil
}

// WeekdayIndex maps t to 0=Monday .. 6=Sunday.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

type Task struct {
	ID              string
	Name            string
	Priority        Priority
	Status          TaskStatus
	Repeat          *Repeat // nil for one-time tasks
	AllowedWeekdays []int   // 0=Monday; empty means every day
	LastCompleted   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (t Task) Recurring() bool {
	return t.Repeat != nil
}

// TaskInput carries the fields for a new task.
type TaskInput struct {
	Name            string
	Priority        Priority
	Repeat          *Repeat
	AllowedWeekdays []int
}

// TaskEdit is a partial update. Zero values leave the field unchanged.
type TaskEdit struct {
	Name            string
	Priority        Priority
	Repeat          *Repeat
	ClearRepeat     bool
	AllowedWeekdays []int // nil leaves unchanged, empty clears
}

// Placeholder identity for work sessions logged without a bound task.
const (
	NoTaskID       = "no-task"
	NoTaskName     = "(No Task Selected)"
	NoTaskBlockers = "No task was selected for this session"
)

type Mood string

// Moods in prompt order.
var Moods = []Mood{"😣", "😊", "😢", "😎", "😁", "💪", "😓", "🔥"}

var moodLabels = map[Mood]string{
	"😣": "Difficult",
	"😊": "Happy",
	"😢": "Sad",
	"😎": "Cool",
	"😁": "Joyful",
	"💪": "Productive",
	"😓": "Struggling",
	"🔥": "Amazing",
}

func (m Mood) Label() string {
	if l, ok := moodLabels[m]; ok {
		return l
	}
	return string(m)
}

// Positive reports whether the mood counts toward the productivity score.
func (m Mood) Positive() bool {
	switch m {
	case "😊", "😎", "😁", "💪", "🔥":
		return true
	}
	return false
}

// SessionRecord is one logged work session.
type SessionRecord struct {
	ID              string
	TaskID          string
	TaskName        string
	Priority        Priority
	SessionKind     string
	SessionNumber   int
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
	DurationSeconds int
	ElapsedSeconds  int // uncapped wall time; differs from DurationSeconds when capped
	Mood            Mood
	Reflection      string
	Blockers        string
	Completed       bool
	LoggedAt        time.Time

	given feedbackField
}

// Capped reports whether the recorded duration was clamped.
func (r SessionRecord) Capped() bool {
	return r.ElapsedSeconds > r.DurationSeconds
}

// Feedback patches the reflective fields of a session. Empty fields are left
// untouched.
type Feedback struct {
	Mood       Mood
	Reflection string
	Blockers   string
}

func (f Feedback) Empty() bool {
	return f.Mood == "" && f.Reflection == "" && f.Blockers == ""
}

// feedbackField is a bit set of the feedback fields a user has filled in.
type feedbackField int

const (
	feedbackMood feedbackField = 1 << iota
	feedbackReflection
	feedbackBlockers
)

func (f Feedback) fields() feedbackField {
	var set feedbackField
	if f.Mood != "" {
		set |= feedbackMood
	}
	if f.Reflection != "" {
		set |= feedbackReflection
	}
	if f.Blockers != "" {
		set |= feedbackBlockers
	}
	return set
}

type Setting struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}
