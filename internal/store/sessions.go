package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	tableToday   = "sessions_today"
	tableHistory = "sessions_history"
)

type sessionRow struct {
	ID              string `db:"id"`
	TaskID          string `db:"task_id"`
	TaskName        string `db:"task_name"`
	Priority        string `db:"priority"`
	SessionKind     string `db:"session_kind"`
	SessionNumber   int    `db:"session_number"`
	StartTime       string `db:"start_time"`
	EndTime         string `db:"end_time"`
	DurationMinutes int    `db:"duration_minutes"`
	DurationSeconds int    `db:"duration_seconds"`
	ElapsedSeconds  int    `db:"elapsed_seconds"`
	Mood            string `db:"mood"`
	Reflection      string `db:"reflection"`
	Blockers        string `db:"blockers"`
	Completed       int    `db:"completed"`
	LoggedAt        string `db:"logged_at"`
	FeedbackGiven   int    `db:"feedback_given"`
}

const sessionColumns = `id, task_id, task_name, priority, session_kind, session_number, start_time, end_time,
	duration_minutes, duration_seconds, elapsed_seconds, mood, reflection, blockers, completed, logged_at, feedback_given`

const sessionValues = `:id, :task_id, :task_name, :priority, :session_kind, :session_number, :start_time, :end_time,
	:duration_minutes, :duration_seconds, :elapsed_seconds, :mood, :reflection, :blockers, :completed, :logged_at, :feedback_given`

func (r sessionRow) record() SessionRecord {
	return SessionRecord{
		ID:              r.ID,
		TaskID:          r.TaskID,
		TaskName:        r.TaskName,
		Priority:        Priority(r.Priority),
		SessionKind:     r.SessionKind,
		SessionNumber:   r.SessionNumber,
		StartTime:       parseTime(r.StartTime),
		EndTime:         parseTime(r.EndTime),
		DurationMinutes: r.DurationMinutes,
		DurationSeconds: r.DurationSeconds,
		ElapsedSeconds:  r.ElapsedSeconds,
		Mood:            Mood(r.Mood),
		Reflection:      r.Reflection,
		Blockers:        r.Blockers,
		Completed:       r.Completed == 1,
		LoggedAt:        parseTime(r.LoggedAt),
		given:           feedbackField(r.FeedbackGiven),
	}
}

func rowFromRecord(rec SessionRecord) sessionRow {
	r := sessionRow{
		ID:              rec.ID,
		TaskID:          rec.TaskID,
		TaskName:        rec.TaskName,
		Priority:        string(rec.Priority),
		SessionKind:     rec.SessionKind,
		SessionNumber:   rec.SessionNumber,
		StartTime:       formatTime(rec.StartTime),
		EndTime:         formatTime(rec.EndTime),
		DurationMinutes: rec.DurationMinutes,
		DurationSeconds: rec.DurationSeconds,
		ElapsedSeconds:  rec.ElapsedSeconds,
		Mood:            string(rec.Mood),
		Reflection:      rec.Reflection,
		Blockers:        rec.Blockers,
		LoggedAt:        formatTime(rec.LoggedAt),
		FeedbackGiven:   int(rec.given),
	}
	if rec.Completed {
		r.Completed = 1
	}
	return r
}

func insertSession(e sqlx.Ext, table string, rec SessionRecord) error {
	_, err := sqlx.NamedExec(e, `INSERT OR IGNORE INTO `+table+` (`+sessionColumns+`) VALUES (`+sessionValues+`)`, rowFromRecord(rec))
	return err
}

func selectSessions(q sqlx.Queryer, table string) ([]SessionRecord, error) {
	var rows []sessionRow
	if err := sqlx.Select(q, &rows, `SELECT `+sessionColumns+` FROM `+table+` ORDER BY start_time`); err != nil {
		return nil, err
	}
	out := make([]SessionRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

// AppendSession logs a finished session. Records that do not start today are
// routed to history so the today partition only ever holds today's sessions.
func (s *Store) AppendSession(rec SessionRecord) (SessionRecord, error) {
	now := s.now()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.LoggedAt.IsZero() {
		rec.LoggedAt = now
	}
	if rec.SessionKind == "" {
		rec.SessionKind = "WORK"
	}
	if rec.DurationMinutes == 0 && rec.DurationSeconds > 0 {
		rec.DurationMinutes = rec.DurationSeconds / 60
	}
	if rec.ElapsedSeconds < rec.DurationSeconds {
		rec.ElapsedSeconds = rec.DurationSeconds
	}

	table := tableToday
	if !sameDay(rec.StartTime, now) {
		table = tableHistory
	}
	if err := insertSession(s.db, table, rec); err != nil {
		return SessionRecord{}, fmt.Errorf("append session: %w", err)
	}
	if table == tableToday {
		s.mu.Lock()
		s.today = append(s.today, rec)
		s.mu.Unlock()
	}
	return rec, nil
}

func (s *Store) reloadToday() error {
	recs, err := selectSessions(s.db, tableToday)
	if err != nil {
		return fmt.Errorf("load today: %w", err)
	}
	s.mu.Lock()
	s.today = recs
	s.mu.Unlock()
	return nil
}

// TodaySessions returns a copy of today's partition.
func (s *Store) TodaySessions() []SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SessionRecord, len(s.today))
	copy(out, s.today)
	return out
}

// HistorySessions returns all archived sessions ordered by start.
func (s *Store) HistorySessions() ([]SessionRecord, error) {
	recs, err := selectSessions(s.db, tableHistory)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return recs, nil
}

// AllSessions returns history followed by today, ordered by start.
func (s *Store) AllSessions() ([]SessionRecord, error) {
	all, err := s.HistorySessions()
	if err != nil {
		return nil, err
	}
	all = append(all, s.TodaySessions()...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].StartTime.Before(all[j].StartTime) })
	return all, nil
}

// SessionsBetween returns sessions starting in [from, to).
func (s *Store) SessionsBetween(from, to time.Time) ([]SessionRecord, error) {
	all, err := s.AllSessions()
	if err != nil {
		return nil, err
	}
	var out []SessionRecord
	for _, r := range all {
		if !r.StartTime.Before(from) && r.StartTime.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// TodayTaskSeconds sums today's recorded seconds per task id.
func (s *Store) TodayTaskSeconds() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[string]int)
	for _, r := range s.today {
		totals[r.TaskID] += r.DurationSeconds
	}
	return totals
}

// GetSession looks a session up in today's partition, then in history.
func (s *Store) GetSession(id string) (*SessionRecord, error) {
	s.mu.Lock()
	for _, r := range s.today {
		if r.ID == id {
			s.mu.Unlock()
			return &r, nil
		}
	}
	s.mu.Unlock()

	var row sessionRow
	err := s.db.Get(&row, `SELECT `+sessionColumns+` FROM `+tableHistory+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	rec := row.record()
	return &rec, nil
}

// PatchFeedback fills in mood, reflection and blockers on a logged session.
// Each field accepts user feedback once; a second write to the same field
// fails with ErrFeedbackSet and leaves the record untouched. Notes written
// when the session was logged (an interruption reason, the no-task blocker)
// are replaced by the first feedback.
func (s *Store) PatchFeedback(id string, fb Feedback) error {
	if fb.Empty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table := tableToday
	idx := -1
	for i, r := range s.today {
		if r.ID == id {
			idx = i
			break
		}
	}

	var rec SessionRecord
	if idx >= 0 {
		rec = s.today[idx]
	} else {
		var row sessionRow
		err := s.db.Get(&row, `SELECT `+sessionColumns+` FROM `+tableHistory+` WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("patch session %s: %w", id, ErrSessionNotFound)
		}
		if err != nil {
			return fmt.Errorf("patch session %s: %w", id, err)
		}
		rec = row.record()
		table = tableHistory
	}

	fields := fb.fields()
	if rec.given&fields != 0 {
		return fmt.Errorf("patch session %s: %w", id, ErrFeedbackSet)
	}
	rec.given |= fields
	if fb.Mood != "" {
		rec.Mood = fb.Mood
	}
	if fb.Reflection != "" {
		rec.Reflection = fb.Reflection
	}
	if fb.Blockers != "" {
		rec.Blockers = fb.Blockers
	}

	_, err := s.db.NamedExec(
		`UPDATE `+table+` SET mood = :mood, reflection = :reflection, blockers = :blockers,
		feedback_given = :feedback_given WHERE id = :id`,
		rowFromRecord(rec),
	)
	if err != nil {
		return fmt.Errorf("patch session %s: %w", id, err)
	}
	if idx >= 0 {
		s.today[idx] = rec
	}
	return nil
}

// ArchiveSessions moves every today record that did not start on now's date
// into history and reloads the in-memory view. It returns the number moved.
func (s *Store) ArchiveSessions(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("begin archive: %w", err)
	}
	defer tx.Rollback()

	recs, err := selectSessions(tx, tableToday)
	if err != nil {
		return 0, fmt.Errorf("read today: %w", err)
	}

	var keep []SessionRecord
	moved := 0
	for _, r := range recs {
		if sameDay(r.StartTime, now) {
			keep = append(keep, r)
			continue
		}
		if err := insertSession(tx, tableHistory, r); err != nil {
			return 0, fmt.Errorf("archive session %s: %w", r.ID, err)
		}
		if _, err := tx.Exec(`DELETE FROM `+tableToday+` WHERE id = ?`, r.ID); err != nil {
			return 0, fmt.Errorf("archive session %s: %w", r.ID, err)
		}
		moved++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit archive: %w", err)
	}
	s.today = keep
	return moved, nil
}
