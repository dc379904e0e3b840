package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manual cycle shape.
const (
	WorkMinutes       = 25
	ShortBreakMinutes = 5
	LongBreakMinutes  = 15
	ManualSessions    = 4
)

// Dynamic is a manually started cycle of work sessions anchored to the minute
// it was started.
type Dynamic struct {
	StartTime time.Time `json:"start_time"`
	Schedule  Timetable `json:"schedule"`
}

// Generate builds four work sessions starting at the minute containing start.
// Sessions 1-3 are followed by a short break and session 4 by a long break.
func Generate(start time.Time) *Dynamic {
	start = start.Truncate(time.Minute)
	cur := TimeOfDayOf(start)
	d := &Dynamic{StartTime: start}
	for n := 1; n <= ManualSessions; n++ {
		end := cur + WorkMinutes
		d.Schedule = append(d.Schedule, work(n, cur, end))
		cur = end

		kind, length := ShortBreak, TimeOfDay(ShortBreakMinutes)
		if n == ManualSessions {
			kind, length = LongBreak, LongBreakMinutes
		}
		d.Schedule = append(d.Schedule, rest(n, kind, cur, cur+length))
		cur += length
	}
	return d
}

// At returns the dynamic slot covering now.
func (d *Dynamic) At(now time.Time) (Slot, bool) {
	return d.Schedule.on(d.StartTime, now)
}

// End is the instant the last slot finishes.
func (d *Dynamic) End() time.Time {
	if len(d.Schedule) == 0 {
		return d.StartTime
	}
	_, end := d.Schedule[len(d.Schedule)-1].Bounds(d.StartTime)
	return end
}

// NextAfter returns the first dynamic slot starting after now.
func (d *Dynamic) NextAfter(now time.Time) (Slot, bool) {
	return d.Schedule.NextAfter(d.StartTime, now)
}

// Resumable reports whether a persisted schedule may be picked up again at now:
// it was started the same calendar day and has not finished.
func (d *Dynamic) Resumable(now time.Time) bool {
	if len(d.Schedule) == 0 {
		return false
	}
	y1, m1, d1 := d.StartTime.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		return false
	}
	return now.Before(d.End())
}

// DynamicFile persists the active dynamic schedule so it can be resumed after a
// restart.
type DynamicFile struct {
	Path string
}

func (f DynamicFile) Save(d *Dynamic) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create schedule dir: %w", err)
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dynamic schedule: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("write dynamic schedule: %w", err)
	}
	return nil
}

// Load returns nil, nil when no schedule has been saved.
func (f DynamicFile) Load() (*Dynamic, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dynamic schedule: %w", err)
	}
	var d Dynamic
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dynamic schedule: %w", err)
	}
	if len(d.Schedule) == 0 {
		return nil, nil
	}
	d.Schedule = d.Schedule.unwrap()
	return &d, nil
}

func (f DynamicFile) Clear() error {
	err := os.Remove(f.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove dynamic schedule: %w", err)
	}
	return nil
}
