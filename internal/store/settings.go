package store

import (
	"fmt"
	"strings"
)

const iconPrefix = "icon_"

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM settings WHERE key = ?`, key)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// SaveSettings upserts several settings in one transaction.
func (s *Store) SaveSettings(values map[string]string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	for k, v := range values {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, v,
		); err != nil {
			return fmt.Errorf("save setting %q: %w", k, err)
		}
	}
	return tx.Commit()
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	var settings []Setting
	if err := s.db.Select(&settings, `SELECT key, value FROM settings ORDER BY key`); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// Icon returns the display icon for an activity kind such as "work" or
// "short_break". Unknown kinds yield an empty string.
func (s *Store) Icon(kind string) string {
	v, err := s.GetSetting(iconPrefix + strings.ToLower(kind))
	if err != nil {
		return ""
	}
	return v
}

// Icons returns every configured icon keyed by activity kind.
func (s *Store) Icons() (map[string]string, error) {
	settings, err := s.GetAllSettings()
	if err != nil {
		return nil, err
	}
	icons := make(map[string]string)
	for _, st := range settings {
		if kind, ok := strings.CutPrefix(st.Key, iconPrefix); ok {
			icons[kind] = st.Value
		}
	}
	return icons, nil
}

func (s *Store) SetIcon(kind, icon string) error {
	return s.SetSetting(iconPrefix+strings.ToLower(kind), icon)
}
