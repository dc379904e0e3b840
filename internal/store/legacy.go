package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// legacyLog is the single-file JSON session log written by earlier versions.
type legacyLog struct {
	Sessions []legacySession `json:"sessions"`
}

type legacySession struct {
	ID              string       `json:"id"`
	TaskID          string       `json:"task_id"`
	TaskName        string       `json:"task_name"`
	Priority        string       `json:"priority"`
	SessionType     string       `json:"session_type"`
	SessionNumber   legacyNumber `json:"session_number"`
	StartTime       string       `json:"start_time"`
	EndTime         string       `json:"end_time"`
	DurationMinutes int          `json:"duration_minutes"`
	DurationSeconds *int         `json:"duration_seconds"`
	Mood            string       `json:"mood"`
	Reflection      string       `json:"reflection"`
	Blockers        string       `json:"blockers"`
	Completed       bool         `json:"completed"`
	LoggedAt        string       `json:"logged_at"`
}

// legacyNumber accepts both numeric session numbers and the "-" placeholder.
type legacyNumber int

func (n *legacyNumber) UnmarshalJSON(b []byte) error {
	var i int
	if err := json.Unmarshal(b, &i); err == nil {
		*n = legacyNumber(i)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		*n = 0
		return nil
	}
	*n = legacyNumber(i)
	return nil
}

var legacyLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseLegacyTime(s string) (time.Time, bool) {
	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (l legacySession) record() SessionRecord {
	rec := SessionRecord{
		ID:              l.ID,
		TaskID:          l.TaskID,
		TaskName:        l.TaskName,
		Priority:        Priority(l.Priority),
		SessionKind:     l.SessionType,
		SessionNumber:   int(l.SessionNumber),
		DurationMinutes: l.DurationMinutes,
		Mood:            Mood(l.Mood),
		Reflection:      l.Reflection,
		Blockers:        l.Blockers,
		Completed:       l.Completed,
	}
	if l.DurationSeconds != nil {
		rec.DurationSeconds = *l.DurationSeconds
	} else {
		rec.DurationSeconds = l.DurationMinutes * 60
	}
	rec.ElapsedSeconds = rec.DurationSeconds
	rec.StartTime, _ = parseLegacyTime(l.StartTime)
	if end, ok := parseLegacyTime(l.EndTime); ok {
		rec.EndTime = end
	} else {
		rec.EndTime = rec.StartTime.Add(time.Duration(rec.DurationSeconds) * time.Second)
	}
	if logged, ok := parseLegacyTime(l.LoggedAt); ok {
		rec.LoggedAt = logged
	} else {
		rec.LoggedAt = rec.EndTime
	}
	if rec.SessionKind == "" {
		rec.SessionKind = "WORK"
	}
	if rec.TaskID == "" {
		rec.TaskID = NoTaskID
		rec.TaskName = NoTaskName
	}
	return rec
}

// ImportLegacyLog splits a legacy JSON session log into the today and history
// partitions. It only runs while both partitions are empty; afterwards the
// file is renamed with a .migrated suffix. Records without a parseable start
// go to history.
func (s *Store) ImportLegacyLog(path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read legacy log: %w", err)
	}

	var existing int
	if err := s.db.Get(&existing, `SELECT (SELECT COUNT(*) FROM sessions_today) + (SELECT COUNT(*) FROM sessions_history)`); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	var legacy legacyLog
	if err := json.Unmarshal(data, &legacy); err != nil {
		return 0, fmt.Errorf("decode legacy log: %w", err)
	}

	now := s.now()
	tx, err := s.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for i, l := range legacy.Sessions {
		rec := l.record()
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("legacy-%d", i+1)
		}
		table := tableHistory
		if !rec.StartTime.IsZero() && sameDay(rec.StartTime, now) {
			table = tableToday
		}
		if err := insertSession(tx, table, rec); err != nil {
			return 0, fmt.Errorf("import session %s: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	if err := os.Rename(path, path+".migrated"); err != nil {
		s.log.Warn("could not rename legacy log", "path", path, "err", err)
	}
	if err := s.reloadToday(); err != nil {
		return 0, err
	}
	return len(legacy.Sessions), nil
}
