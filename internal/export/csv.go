package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/pomoclock/internal/store"
)

var csvHeader = []string{
	"ID", "Date", "Task", "Priority", "Type", "Session", "Start", "End",
	"Duration (s)", "Duration", "Elapsed (s)", "Mood", "Reflection", "Blockers", "Completed",
}

func ToCSV(sessions []store.SessionRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, sessions)
}

func WriteCSV(out io.Writer, sessions []store.SessionRecord) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range sessions {
		session := "-"
		if s.SessionNumber > 0 {
			session = strconv.Itoa(s.SessionNumber)
		}
		row := []string{
			s.ID,
			s.StartTime.Local().Format(time.DateOnly),
			s.TaskName,
			string(s.Priority),
			s.SessionKind,
			session,
			s.StartTime.Local().Format(time.RFC3339),
			s.EndTime.Local().Format(time.RFC3339),
			strconv.Itoa(s.DurationSeconds),
			formatDuration(int64(s.DurationSeconds)),
			strconv.Itoa(s.ElapsedSeconds),
			string(s.Mood),
			s.Reflection,
			s.Blockers,
			strconv.FormatBool(s.Completed),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
