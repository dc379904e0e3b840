package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type taskRow struct {
	ID              string         `db:"id"`
	Name            string         `db:"name"`
	Priority        string         `db:"priority"`
	Status          string         `db:"status"`
	RepeatCount     sql.NullInt64  `db:"repeat_count"`
	RepeatUnit      sql.NullString `db:"repeat_unit"`
	AllowedWeekdays string         `db:"allowed_weekdays"`
	LastCompleted   sql.NullString `db:"last_completed"`
	CreatedAt       string         `db:"created_at"`
	UpdatedAt       string         `db:"updated_at"`
}

const taskColumns = `id, name, priority, status, repeat_count, repeat_unit, allowed_weekdays, last_completed, created_at, updated_at`

func (r taskRow) task() Task {
	t := Task{
		ID:              r.ID,
		Name:            r.Name,
		Priority:        Priority(r.Priority),
		Status:          TaskStatus(r.Status),
		AllowedWeekdays: decodeWeekdays(r.AllowedWeekdays),
		CreatedAt:       parseTime(r.CreatedAt),
		UpdatedAt:       parseTime(r.UpdatedAt),
	}
	if r.RepeatCount.Valid && r.RepeatUnit.Valid {
		t.Repeat = &Repeat{Count: int(r.RepeatCount.Int64), Unit: RepeatUnit(r.RepeatUnit.String)}
	}
	if r.LastCompleted.Valid && r.LastCompleted.String != "" {
		lc := parseTime(r.LastCompleted.String)
		t.LastCompleted = &lc
	}
	return t
}

func rowFromTask(t Task) taskRow {
	r := taskRow{
		ID:              t.ID,
		Name:            t.Name,
		Priority:        string(t.Priority),
		Status:          string(t.Status),
		AllowedWeekdays: encodeWeekdays(t.AllowedWeekdays),
		CreatedAt:       formatTime(t.CreatedAt),
		UpdatedAt:       formatTime(t.UpdatedAt),
	}
	if t.Repeat != nil {
		r.RepeatCount = sql.NullInt64{Int64: int64(t.Repeat.Count), Valid: true}
		r.RepeatUnit = sql.NullString{String: string(t.Repeat.Unit), Valid: true}
	}
	if t.LastCompleted != nil {
		r.LastCompleted = sql.NullString{String: formatTime(*t.LastCompleted), Valid: true}
	}
	return r
}

func encodeWeekdays(days []int) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(s string) []int {
	if s == "" {
		return nil
	}
	var days []int
	for _, p := range strings.Split(s, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	return days
}

func normalizeWeekdays(days []int) ([]int, error) {
	seen := make(map[int]bool, len(days))
	var out []int
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: weekday %d out of range", ErrInvalidTask, d)
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out, nil
}

func validateTask(t *Task) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTask)
	}
	p, err := ParsePriority(string(t.Priority))
	if err != nil {
		return err
	}
	t.Priority = p
	if t.Repeat != nil && !t.Repeat.Valid() {
		return fmt.Errorf("%w: bad repeat %d %q", ErrInvalidTask, t.Repeat.Count, t.Repeat.Unit)
	}
	days, err := normalizeWeekdays(t.AllowedWeekdays)
	if err != nil {
		return err
	}
	t.AllowedWeekdays = days
	return nil
}

func (s *Store) CreateTask(in TaskInput) (*Task, error) {
	now := s.now()
	t := Task{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Priority:        in.Priority,
		Status:          StatusActive,
		Repeat:          in.Repeat,
		AllowedWeekdays: in.AllowedWeekdays,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := validateTask(&t); err != nil {
		return nil, err
	}
	_, err := s.db.NamedExec(
		`INSERT INTO tasks (`+taskColumns+`) VALUES
		(:id, :name, :priority, :status, :repeat_count, :repeat_unit, :allowed_weekdays, :last_completed, :created_at, :updated_at)`,
		rowFromTask(t),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(t.ID)
}

// CreateTasks inserts several tasks atomically.
func (s *Store) CreateTasks(inputs []TaskInput) ([]Task, error) {
	now := s.now()
	tasks := make([]Task, 0, len(inputs))
	for _, in := range inputs {
		t := Task{
			ID:              uuid.NewString(),
			Name:            in.Name,
			Priority:        in.Priority,
			Status:          StatusActive,
			Repeat:          in.Repeat,
			AllowedWeekdays: in.AllowedWeekdays,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := validateTask(&t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	for _, t := range tasks {
		_, err := tx.NamedExec(
			`INSERT INTO tasks (`+taskColumns+`) VALUES
			(:id, :name, :priority, :status, :repeat_count, :repeat_unit, :allowed_weekdays, :last_completed, :created_at, :updated_at)`,
			rowFromTask(t),
		)
		if err != nil {
			return nil, fmt.Errorf("insert task %q: %w", t.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) GetTask(id string) (*Task, error) {
	var r taskRow
	err := s.db.Get(&r, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task %s: %w", id, ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	t := r.task()
	return &t, nil
}

func (s *Store) listTasks(status TaskStatus) ([]Task, error) {
	var rows []taskRow
	err := s.db.Select(&rows, `SELECT `+taskColumns+` FROM tasks WHERE status = ? ORDER BY created_at, name`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.task())
	}
	return tasks, nil
}

func (s *Store) ListActiveTasks() ([]Task, error) {
	return s.listTasks(StatusActive)
}

func (s *Store) ListDeletedTasks() ([]Task, error) {
	return s.listTasks(StatusDeleted)
}

// ListAvailableTasks returns the active tasks selectable at now.
func (s *Store) ListAvailableTasks(now time.Time) ([]Task, error) {
	tasks, err := s.ListActiveTasks()
	if err != nil {
		return nil, err
	}
	var out []Task
	for _, t := range tasks {
		if Available(t, now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) EditTask(id string, edit TaskEdit) error {
	t, err := s.GetTask(id)
	if err != nil {
		return err
	}
	if edit.Name != "" {
		t.Name = edit.Name
	}
	if edit.Priority != "" {
		t.Priority = edit.Priority
	}
	if edit.ClearRepeat {
		t.Repeat = nil
	} else if edit.Repeat != nil {
		t.Repeat = edit.Repeat
	}
	if edit.AllowedWeekdays != nil {
		t.AllowedWeekdays = edit.AllowedWeekdays
	}
	t.UpdatedAt = s.now()
	if err := validateTask(t); err != nil {
		return err
	}
	_, err = s.db.NamedExec(
		`UPDATE tasks SET name = :name, priority = :priority, repeat_count = :repeat_count,
		repeat_unit = :repeat_unit, allowed_weekdays = :allowed_weekdays, updated_at = :updated_at
		WHERE id = :id`,
		rowFromTask(*t),
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	return nil
}

func (s *Store) MarkTaskCompleted(id string, at time.Time) error {
	return s.execTask(id, `UPDATE tasks SET last_completed = ?, updated_at = ? WHERE id = ?`,
		formatTime(at), formatTime(s.now()), id)
}

// SoftDeleteTask hides the task from the active list but keeps it for history.
func (s *Store) SoftDeleteTask(id string) error {
	return s.execTask(id, `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		string(StatusDeleted), formatTime(s.now()), id)
}

func (s *Store) RestoreTask(id string) error {
	return s.execTask(id, `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		string(StatusActive), formatTime(s.now()), id)
}

func (s *Store) HardDeleteTask(id string) error {
	return s.execTask(id, `DELETE FROM tasks WHERE id = ?`, id)
}

func (s *Store) execTask(id, query string, args ...any) error {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update task %s: %w", id, ErrTaskNotFound)
	}
	return nil
}
