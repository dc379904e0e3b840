package schedule

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// IsWorkday reports whether t falls Monday through Friday.
func IsWorkday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Source resolves the current slot from the fixed weekday timetable and an
// optional dynamic schedule.
type Source struct {
	Fixed Timetable
}

// FixedAt returns the fixed slot covering now. Weekends never match.
func (s Source) FixedAt(now time.Time) (Slot, bool) {
	if !IsWorkday(now) {
		return Slot{}, false
	}
	return s.Fixed.At(now)
}

// WithinFixedHours reports whether now is on a workday between the earliest
// fixed start and the latest fixed end.
func (s Source) WithinFixedHours(now time.Time) bool {
	if !IsWorkday(now) {
		return false
	}
	first, last, ok := s.Fixed.Hours()
	if !ok {
		return false
	}
	start, end := Slot{Start: first, End: last}.Bounds(now)
	return !now.Before(start) && now.Before(end)
}

// Resolution is the outcome of resolving one instant.
type Resolution struct {
	Slot        Slot
	Found       bool
	FromDynamic bool
}

// Current returns the resolved slot, or nil when idle.
func (r Resolution) Current() *Slot {
	if !r.Found {
		return nil
	}
	s := r.Slot
	return &s
}

// Resolve picks the active slot. The fixed timetable always wins; the dynamic
// schedule only fills time the fixed one leaves uncovered.
func (s Source) Resolve(now time.Time, dyn *Dynamic) Resolution {
	if fixed, ok := s.FixedAt(now); ok {
		return Resolution{Slot: fixed, Found: true}
	}
	if dyn == nil {
		return Resolution{}
	}
	if slot, ok := dyn.At(now); ok {
		return Resolution{Slot: slot, Found: true, FromDynamic: true}
	}
	return Resolution{}
}

// Transition describes a change of the active slot. Either side may be nil
// (idle).
type Transition struct {
	From *Slot
	To   *Slot
}

func (t Transition) LeavingWork() bool {
	return t.From != nil && t.From.Kind == Work
}

func (t Transition) EnteringWork() bool {
	return t.To != nil && t.To.Kind == Work
}

func (t Transition) EnteringBreak() bool {
	return t.To != nil && t.To.Kind.IsBreak()
}

// Diff reports the transition from prev to next, if the two differ.
func Diff(prev, next *Slot) (Transition, bool) {
	switch {
	case prev == nil && next == nil:
		return Transition{}, false
	case prev != nil && next != nil && prev.Equal(*next):
		return Transition{}, false
	}
	return Transition{From: prev, To: next}, true
}

type timetableFile struct {
	Slots Timetable `yaml:"slots"`
}

// LoadTimetable reads a YAML timetable of the form
//
//	slots:
//	  - {session: 1, type: WORK, start: "09:00", end: "09:25"}
func LoadTimetable(path string) (Timetable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timetable: %w", err)
	}
	var f timetableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse timetable: %w", err)
	}
	if err := f.Slots.Validate(); err != nil {
		return nil, err
	}
	return f.Slots, nil
}
