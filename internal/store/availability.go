package store

import "time"

// Available reports whether task t may be selected at now.
//
// Only active tasks are. A task restricted to weekdays is hidden on other
// days. A task never completed is available; a one-time task stops being
// available after its first completion. A daily task becomes available again on the next calendar date; longer cadences
// require the full number of days to have elapsed since the last completion.
func Available(t Task, now time.Time) bool {
	if t.Status != StatusActive {
		return false
	}
	if len(t.AllowedWeekdays) > 0 {
		wd := WeekdayIndex(now)
		allowed := false
		for _, d := range t.AllowedWeekdays {
			if d == wd {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	if t.LastCompleted == nil {
		return true
	}
	if t.Repeat == nil {
		return false
	}

	last := t.LastCompleted.In(now.Location())
	if t.Repeat.Count == 1 && t.Repeat.Unit == UnitDay {
		return dateOf(now).After(dateOf(last))
	}
	due := last.Add(time.Duration(t.Repeat.Days()) * 24 * time.Hour)
	return !now.Before(due)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
