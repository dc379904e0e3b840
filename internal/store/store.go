package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const currentVersion = 2

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidTask     = errors.New("invalid task")
	ErrSessionNotFound = errors.New("session not found")
	ErrFeedbackSet     = errors.New("feedback already recorded")
)

type Store struct {
	db  *sqlx.DB
	now func() time.Time
	log *log.Logger

	// today mirrors sessions_today so the hot path never hits the database.
	mu    sync.Mutex
	today []SessionRecord

	legacyPath string
}

type Option func(*Store)

// WithClock overrides the wall clock used for partitioning and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithLegacyLog imports a single-file JSON session log on open, once.
func WithLegacyLog(path string) Option {
	return func(s *Store) { s.legacyPath = path }
}

// New opens (or creates) the SQLite database at dbPath, runs migrations,
// archives stale sessions and loads today's log.
func New(dbPath string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, now: time.Now, log: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if s.legacyPath != "" {
		if n, err := s.ImportLegacyLog(s.legacyPath); err != nil {
			s.log.Warn("legacy log import failed", "path", s.legacyPath, "err", err)
		} else if n > 0 {
			s.log.Info("imported legacy sessions", "count", n)
		}
	}
	if _, err := s.ArchiveSessions(s.now()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory(opts ...Option) (*Store, error) {
	return New(":memory:", opts...)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

const sessionTableDDL = `(
		id               TEXT PRIMARY KEY,
		task_id          TEXT NOT NULL,
		task_name        TEXT NOT NULL,
		priority         TEXT NOT NULL DEFAULT 'None',
		session_kind     TEXT NOT NULL DEFAULT 'WORK',
		session_number   INTEGER NOT NULL DEFAULT 0,
		start_time       TEXT NOT NULL,
		end_time         TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		elapsed_seconds  INTEGER NOT NULL DEFAULT 0,
		mood             TEXT NOT NULL DEFAULT '',
		reflection       TEXT NOT NULL DEFAULT '',
		blockers         TEXT NOT NULL DEFAULT '',
		completed        INTEGER NOT NULL DEFAULT 0,
		logged_at        TEXT NOT NULL
	)`

func (s *Store) migrateV1() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS tasks (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		priority         TEXT NOT NULL DEFAULT 'Medium',
		status           TEXT NOT NULL DEFAULT 'active',
		repeat_count     INTEGER,
		repeat_unit      TEXT,
		allowed_weekdays TEXT NOT NULL DEFAULT '',
		last_completed   TEXT,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

	CREATE TABLE IF NOT EXISTS sessions_today ` + sessionTableDDL + `;

	CREATE TABLE IF NOT EXISTS sessions_history ` + sessionTableDDL + `;

	CREATE INDEX IF NOT EXISTS idx_history_start ON sessions_history(start_time);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('icon_work',        '⬆️🔥'),
		('icon_short_break', '🚶🚾'),
		('icon_long_break',  '🥱🥤'),
		('icon_lunch',       '🍽️');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// migrateV2 records which feedback fields came from the user, so notes
// written at log time do not block the first feedback.
func (s *Store) migrateV2() error {
	for _, table := range []string{tableToday, tableHistory} {
		_, err := s.db.Exec(`ALTER TABLE ` + table + ` ADD COLUMN feedback_given INTEGER NOT NULL DEFAULT 0`)
		if err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	return nil
}

// DefaultDBPath returns ~/.config/pomoclock/pomoclock.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "pomoclock", "pomoclock.db"), nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// sameDay reports whether a falls on b's calendar date in b's location.
func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.In(b.Location()).Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
