package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sadopc/pomoclock/internal/schedule"
)

// EnvPrefix prefixes every environment override, e.g. POMOCLOCK_DATA_DIR.
const EnvPrefix = "POMOCLOCK"

type Config struct {
	DataDir           string        `mapstructure:"data_dir"`
	ServerAddr        string        `mapstructure:"server_addr"`
	ServerIdleTimeout time.Duration `mapstructure:"server_idle_timeout"`
	TimetableFile     string        `mapstructure:"timetable_file"`
	LogLevel          string        `mapstructure:"log_level"`
	LogUntracked      bool          `mapstructure:"log_untracked"`
	FeedbackDelay     time.Duration `mapstructure:"feedback_delay"`
}

func DefaultConfig() *Config {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return &Config{
		DataDir:           filepath.Join(dir, "pomoclock"),
		ServerAddr:        "127.0.0.1:8321",
		ServerIdleTimeout: 10 * time.Minute,
		LogLevel:          "info",
		LogUntracked:      true,
		FeedbackDelay:     time.Minute,
	}
}

// DefaultPath returns ~/.config/pomoclock/config.yaml
func DefaultPath() string {
	return filepath.Join(DefaultConfig().DataDir, "config.yaml")
}

// Load merges, from lowest to highest precedence: defaults, the YAML file at
// path (if it exists), a .env file in the working directory, and POMOCLOCK_*
// environment variables.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("server_addr", cfg.ServerAddr)
	v.SetDefault("server_idle_timeout", cfg.ServerIdleTimeout)
	v.SetDefault("timetable_file", cfg.TimetableFile)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_untracked", cfg.LogUntracked)
	v.SetDefault("feedback_delay", cfg.FeedbackDelay)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "pomoclock.db")
}

// DynamicSchedulePath is where a running manual schedule is persisted.
func (c *Config) DynamicSchedulePath() string {
	return filepath.Join(c.DataDir, "dynamic_schedule.json")
}

// LegacyLogPath is the single-file session log imported on first start.
func (c *Config) LegacyLogPath() string {
	return filepath.Join(c.DataDir, "session_logs.json")
}

func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "pomoclock.log")
}

// Timetable returns the fixed weekday timetable, from TimetableFile when set.
func (c *Config) Timetable() (schedule.Timetable, error) {
	if c.TimetableFile == "" {
		return schedule.DefaultFixed(), nil
	}
	return schedule.LoadTimetable(c.TimetableFile)
}
