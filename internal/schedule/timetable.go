package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind is the activity a slot schedules.
type Kind string

const (
	Work       Kind = "WORK"
	ShortBreak Kind = "SHORT_BREAK"
	LongBreak  Kind = "LONG_BREAK"
	Lunch      Kind = "LUNCH"
)

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	switch k {
	case Work, ShortBreak, LongBreak, Lunch:
		return true
	}
	return false
}

// IsBreak reports whether k is a rest period (short break, long break or lunch).
func (k Kind) IsBreak() bool {
	switch k {
	case ShortBreak, LongBreak, Lunch:
		return true
	}
	return false
}

func (k Kind) Label() string {
	switch k {
	case Work:
		return "Work"
	case ShortBreak:
		return "Short Break"
	case LongBreak:
		return "Long Break"
	case Lunch:
		return "Lunch"
	}
	return string(k)
}

// SettingKey is the lower-case key used for per-kind settings such as icons.
func (k Kind) SettingKey() string {
	return strings.ToLower(string(k))
}

// NoSession marks slots that are not part of a numbered work cycle (lunch).
const NoSession = 0

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time in minutes since midnight. Values of 1440 and
// above belong to the following day; they only appear in dynamic timetables that
// run past midnight.
type TimeOfDay int

// At builds a TimeOfDay from an hour and minute.
func At(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// TimeOfDayOf returns the minute of the day for t, dropping seconds.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return At(t.Hour(), t.Minute())
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("parse time of day %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("parse time of day %q: bad hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse time of day %q: bad minute", s)
	}
	return At(h, m), nil
}

func (t TimeOfDay) String() string {
	m := int(t) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t TimeOfDay) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *TimeOfDay) UnmarshalYAML(value *yaml.Node) error {
	return t.UnmarshalText([]byte(value.Value))
}

// Slot is one scheduled interval of a single activity kind.
type Slot struct {
	Session int       `json:"session" yaml:"session"`
	Kind    Kind      `json:"type" yaml:"type"`
	Start   TimeOfDay `json:"start" yaml:"start"`
	End     TimeOfDay `json:"end" yaml:"end"`
}

// Equal compares kind, session number and bounds.
func (s Slot) Equal(o Slot) bool {
	return s.Kind == o.Kind && s.Session == o.Session && s.Start == o.Start && s.End == o.End
}

func (s Slot) SessionLabel() string {
	if s.Session == NoSession {
		return "-"
	}
	return strconv.Itoa(s.Session)
}

func (s Slot) Duration() time.Duration {
	return time.Duration(s.End-s.Start) * time.Minute
}

// Bounds returns the absolute [start, end) instants of the slot on the calendar
// date of day, in day's location.
func (s Slot) Bounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	loc := day.Location()
	return time.Date(y, m, d, 0, int(s.Start), 0, 0, loc), time.Date(y, m, d, 0, int(s.End), 0, 0, loc)
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %s %s-%s", s.Kind, s.SessionLabel(), s.Start, s.End)
}

// ErrInvalidTimetable is returned when slots are unordered, overlapping or empty.
var ErrInvalidTimetable = errors.New("invalid timetable")

// Timetable is a time-ordered list of non-overlapping slots.
type Timetable []Slot

// Validate checks the ordering invariant.
func (t Timetable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no slots", ErrInvalidTimetable)
	}
	for i, s := range t {
		if !s.Kind.Valid() {
			return fmt.Errorf("%w: slot %d has unknown type %q", ErrInvalidTimetable, i, s.Kind)
		}
		if s.End <= s.Start {
			return fmt.Errorf("%w: slot %d ends before it starts", ErrInvalidTimetable, i)
		}
		if i > 0 && s.Start < t[i-1].End {
			return fmt.Errorf("%w: slot %d overlaps slot %d", ErrInvalidTimetable, i, i-1)
		}
	}
	return nil
}

// At returns the slot whose half-open interval contains now's time of day.
func (t Timetable) At(now time.Time) (Slot, bool) {
	return t.on(now, now)
}

// on resolves now against the timetable anchored to the calendar date of day.
func (t Timetable) on(day, now time.Time) (Slot, bool) {
	for _, s := range t {
		start, end := s.Bounds(day)
		if !now.Before(start) && now.Before(end) {
			return s, true
		}
	}
	return Slot{}, false
}

// NextAfter returns the first slot starting after now on day's date.
func (t Timetable) NextAfter(day, now time.Time) (Slot, bool) {
	for _, s := range t {
		start, _ := s.Bounds(day)
		if start.After(now) {
			return s, true
		}
	}
	return Slot{}, false
}

// Hours returns the earliest start and the latest end.
func (t Timetable) Hours() (TimeOfDay, TimeOfDay, bool) {
	if len(t) == 0 {
		return 0, 0, false
	}
	first, last := t[0].Start, t[0].End
	for _, s := range t[1:] {
		if s.Start < first {
			first = s.Start
		}
		if s.End > last {
			last = s.End
		}
	}
	return first, last, true
}

// unwrap restores the monotonic minute values of a timetable that was written
// as plain "HH:MM" strings and crosses midnight.
func (t Timetable) unwrap() Timetable {
	out := make(Timetable, len(t))
	var offset TimeOfDay
	var prevEnd TimeOfDay
	for i, s := range t {
		s.Start += offset
		s.End += offset
		if i > 0 && s.Start < prevEnd {
			s.Start += minutesPerDay
			s.End += minutesPerDay
			offset += minutesPerDay
		}
		if s.End <= s.Start {
			s.End += minutesPerDay
			offset += minutesPerDay
		}
		prevEnd = s.End
		out[i] = s
	}
	return out
}

func work(session int, start, end TimeOfDay) Slot {
	return Slot{Session: session, Kind: Work, Start: start, End: end}
}

func rest(session int, kind Kind, start, end TimeOfDay) Slot {
	return Slot{Session: session, Kind: kind, Start: start, End: end}
}

// DefaultFixed returns the built-in weekday timetable, 09:00 to 18:00 with lunch
// at noon.
func DefaultFixed() Timetable {
	return Timetable{
		work(1, At(9, 0), At(9, 25)),
		rest(1, ShortBreak, At(9, 25), At(9, 30)),
		work(2, At(9, 30), At(9, 55)),
		rest(2, ShortBreak, At(9, 55), At(10, 0)),
		work(3, At(10, 0), At(10, 25)),
		rest(3, ShortBreak, At(10, 25), At(10, 30)),
		work(4, At(10, 30), At(10, 55)),
		rest(4, LongBreak, At(10, 55), At(11, 10)),
		work(5, At(11, 10), At(11, 35)),
		rest(5, ShortBreak, At(11, 35), At(11, 40)),
		work(6, At(11, 40), At(12, 0)),

		rest(NoSession, Lunch, At(12, 0), At(13, 0)),

		work(1, At(13, 0), At(13, 25)),
		rest(1, ShortBreak, At(13, 25), At(13, 30)),
		work(2, At(13, 30), At(13, 55)),
		rest(2, ShortBreak, At(13, 55), At(14, 0)),
		work(3, At(14, 0), At(14, 25)),
		rest(3, ShortBreak, At(14, 25), At(14, 30)),
		work(4, At(14, 30), At(14, 55)),
		rest(4, LongBreak, At(14, 55), At(15, 10)),
		work(5, At(15, 10), At(15, 35)),
		rest(5, ShortBreak, At(15, 35), At(15, 40)),
		work(6, At(15, 40), At(16, 5)),
		rest(6, ShortBreak, At(16, 5), At(16, 10)),
		work(7, At(16, 10), At(16, 35)),
		rest(7, ShortBreak, At(16, 35), At(16, 40)),
		work(8, At(16, 40), At(17, 5)),
		rest(8, LongBreak, At(17, 5), At(17, 20)),
		work(9, At(17, 20), At(17, 45)),
		rest(9, ShortBreak, At(17, 45), At(17, 50)),
		work(10, At(17, 50), At(18, 0)),
	}
}
