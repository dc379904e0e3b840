package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/sadopc/pomoclock/internal/clock"
	"github.com/sadopc/pomoclock/internal/config"
	"github.com/sadopc/pomoclock/internal/logging"
	"github.com/sadopc/pomoclock/internal/schedule"
	"github.com/sadopc/pomoclock/internal/store"
)

// env is everything a command needs: resolved config, a logger and an open
// store. Call close when done.
type env struct {
	cfg   *config.Config
	log   *log.Logger
	store *store.Store

	closers []io.Closer
}

// loadConfig applies the global flags on top of the file and environment.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// openEnv loads config and opens the store. With logToFile the logger writes
// to the data directory instead of stderr.
func openEnv(logToFile bool) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}

	if logToFile {
		f, err := logging.OpenFile(cfg.LogPath())
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, f)
		e.log = logging.New(f, cfg.LogLevel)
	} else {
		e.log = logging.New(os.Stderr, cfg.LogLevel)
	}

	s, err := store.New(cfg.DBPath(),
		store.WithLogger(e.log),
		store.WithLegacyLog(cfg.LegacyLogPath()),
	)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	e.store = s
	e.closers = append(e.closers, s)
	return e, nil
}

// newClock builds the scheduling core from config.
func (e *env) newClock(sink clock.Sink) (*clock.Clock, error) {
	tt, err := e.cfg.Timetable()
	if err != nil {
		return nil, err
	}
	opts := []clock.Option{
		clock.WithTimetable(tt),
		clock.WithDynamicFile(schedule.DynamicFile{Path: e.cfg.DynamicSchedulePath()}),
		clock.WithLogger(e.log),
		clock.WithUntrackedLogging(e.cfg.LogUntracked),
		clock.WithFeedbackDelay(e.cfg.FeedbackDelay),
	}
	if sink != nil {
		opts = append(opts, clock.WithSink(sink))
	}
	return clock.New(e.store, opts...), nil
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i].Close()
	}
}
