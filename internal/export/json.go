package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/pomoclock/internal/store"
)

type jsonExport struct {
	ExportedAt string    `json:"exported_at"`
	Count      int       `json:"count"`
	Sessions   []Session `json:"sessions"`
}

// Session is the wire form of a logged session, shared by file exports and
// the HTTP API.
type Session struct {
	ID              string `json:"id"`
	TaskID          string `json:"task_id"`
	TaskName        string `json:"task_name"`
	Priority        string `json:"priority"`
	SessionType     string `json:"session_type"`
	SessionNumber   int    `json:"session_number"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	DurationSec     int    `json:"duration_seconds"`
	Duration        string `json:"duration"`
	ElapsedSec      int    `json:"elapsed_seconds"`
	Mood            string `json:"mood,omitempty"`
	Reflection      string `json:"reflection,omitempty"`
	Blockers        string `json:"blockers,omitempty"`
	Completed       bool   `json:"completed"`
	LoggedAt        string `json:"logged_at"`
}

func NewSession(s store.SessionRecord) Session {
	return Session{
		ID:              s.ID,
		TaskID:          s.TaskID,
		TaskName:        s.TaskName,
		Priority:        string(s.Priority),
		SessionType:     s.SessionKind,
		SessionNumber:   s.SessionNumber,
		StartTime:       s.StartTime.Local().Format(time.RFC3339),
		EndTime:         s.EndTime.Local().Format(time.RFC3339),
		DurationMinutes: s.DurationMinutes,
		DurationSec:     s.DurationSeconds,
		Duration:        formatDuration(int64(s.DurationSeconds)),
		ElapsedSec:      s.ElapsedSeconds,
		Mood:            string(s.Mood),
		Reflection:      s.Reflection,
		Blockers:        s.Blockers,
		Completed:       s.Completed,
		LoggedAt:        s.LoggedAt.Local().Format(time.RFC3339),
	}
}

func Sessions(recs []store.SessionRecord) []Session {
	out := make([]Session, 0, len(recs))
	for _, r := range recs {
		out = append(out, NewSession(r))
	}
	return out
}

func ToJSON(sessions []store.SessionRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, sessions)
}

func WriteJSON(w io.Writer, sessions []store.SessionRecord) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
		Sessions:   Sessions(sessions),
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
