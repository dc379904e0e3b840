package schedule

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// monday returns an instant on Monday 2025-01-06.
func monday(h, m, s int) time.Time {
	return time.Date(2025, 1, 6, h, m, s, 0, time.UTC)
}

func fixedSource() Source {
	return Source{Fixed: DefaultFixed()}
}

// ============================================================
// Time of day
// ============================================================

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00", At(9, 0), false},
		{"00:00", 0, false},
		{"23:59", At(23, 59), false},
		{" 7:05 ", At(7, 5), false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"1200", 0, true},
		{"ab:cd", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTimeOfDayStringWrapsPastMidnight(t *testing.T) {
	if got := At(24, 15).String(); got != "00:15" {
		t.Fatalf("expected 00:15, got %s", got)
	}
	if got := At(9, 5).String(); got != "09:05" {
		t.Fatalf("expected 09:05, got %s", got)
	}
}

// ============================================================
// Fixed timetable
// ============================================================

func TestDefaultFixedIsValid(t *testing.T) {
	tt := DefaultFixed()
	if err := tt.Validate(); err != nil {
		t.Fatal(err)
	}
	first, last, ok := tt.Hours()
	if !ok || first != At(9, 0) || last != At(18, 0) {
		t.Fatalf("unexpected hours %s-%s", first, last)
	}
}

func TestValidateRejectsOverlap(t *testing.T) {
	tt := Timetable{
		{Session: 1, Kind: Work, Start: At(9, 0), End: At(9, 30)},
		{Session: 1, Kind: ShortBreak, Start: At(9, 25), End: At(9, 35)},
	}
	if err := tt.Validate(); !errors.Is(err, ErrInvalidTimetable) {
		t.Fatalf("expected ErrInvalidTimetable, got %v", err)
	}
}

func TestValidateRejectsUnknownKind(t *testing.T) {
	tt := Timetable{{Session: 1, Kind: "NAP", Start: At(9, 0), End: At(9, 30)}}
	if err := tt.Validate(); !errors.Is(err, ErrInvalidTimetable) {
		t.Fatalf("expected ErrInvalidTimetable, got %v", err)
	}
}

func TestFixedAtBoundaries(t *testing.T) {
	src := fixedSource()
	tests := []struct {
		name    string
		now     time.Time
		kind    Kind
		session int
		found   bool
	}{
		{"before hours", monday(8, 59, 59), "", 0, false},
		{"first work start", monday(9, 0, 0), Work, 1, true},
		{"last second of work 1", monday(9, 24, 59), Work, 1, true},
		{"short break start", monday(9, 25, 0), ShortBreak, 1, true},
		{"long break", monday(11, 0, 0), LongBreak, 4, true},
		{"lunch", monday(12, 30, 0), Lunch, NoSession, true},
		{"afternoon restarts numbering", monday(13, 10, 0), Work, 1, true},
		{"last work", monday(17, 59, 59), Work, 10, true},
		{"end of day", monday(18, 0, 0), "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, ok := src.FixedAt(tt.now)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if !ok {
				return
			}
			if slot.Kind != tt.kind || slot.Session != tt.session {
				t.Fatalf("got %s, want %s %d", slot, tt.kind, tt.session)
			}
		})
	}
}

func TestFixedAtWeekend(t *testing.T) {
	src := fixedSource()
	saturday := time.Date(2025, 1, 11, 10, 0, 0, 0, time.UTC)
	if _, ok := src.FixedAt(saturday); ok {
		t.Fatal("weekend should never resolve to a fixed slot")
	}
	if src.WithinFixedHours(saturday) {
		t.Fatal("weekend should not be within fixed hours")
	}
}

func TestWithinFixedHours(t *testing.T) {
	src := fixedSource()
	if !src.WithinFixedHours(monday(9, 0, 0)) {
		t.Fatal("09:00 should be within fixed hours")
	}
	if !src.WithinFixedHours(monday(12, 15, 0)) {
		t.Fatal("lunch should be within fixed hours")
	}
	if src.WithinFixedHours(monday(18, 0, 0)) {
		t.Fatal("18:00 should be outside fixed hours")
	}
	if src.WithinFixedHours(monday(8, 0, 0)) {
		t.Fatal("08:00 should be outside fixed hours")
	}
}

func TestNextAfter(t *testing.T) {
	tt := DefaultFixed()
	next, ok := tt.NextAfter(monday(9, 10, 0), monday(9, 10, 0))
	if !ok || next.Kind != ShortBreak || next.Start != At(9, 25) {
		t.Fatalf("unexpected next slot %s", next)
	}
	if _, ok := tt.NextAfter(monday(17, 55, 0), monday(17, 55, 0)); ok {
		t.Fatal("no slot should follow the last one")
	}
}

// ============================================================
// Dynamic schedule
// ============================================================

func TestGenerateShape(t *testing.T) {
	d := Generate(monday(19, 7, 42))
	if !d.StartTime.Equal(monday(19, 7, 0)) {
		t.Fatalf("start should be truncated to the minute, got %v", d.StartTime)
	}
	if len(d.Schedule) != 8 {
		t.Fatalf("expected 8 slots, got %d", len(d.Schedule))
	}
	if err := d.Schedule.Validate(); err != nil {
		t.Fatal(err)
	}
	want := []struct {
		kind    Kind
		session int
		minutes int
	}{
		{Work, 1, 25}, {ShortBreak, 1, 5},
		{Work, 2, 25}, {ShortBreak, 2, 5},
		{Work, 3, 25}, {ShortBreak, 3, 5},
		{Work, 4, 25}, {LongBreak, 4, 15},
	}
	for i, w := range want {
		s := d.Schedule[i]
		if s.Kind != w.kind || s.Session != w.session || s.Duration() != time.Duration(w.minutes)*time.Minute {
			t.Errorf("slot %d = %s (%v), want %s %d %dm", i, s, s.Duration(), w.kind, w.session, w.minutes)
		}
	}
	if !d.End().Equal(monday(21, 17, 0)) {
		t.Fatalf("unexpected end %v", d.End())
	}
}

func TestDynamicAt(t *testing.T) {
	d := Generate(monday(19, 0, 0))
	slot, ok := d.At(monday(19, 26, 0))
	if !ok || slot.Kind != ShortBreak || slot.Session != 1 {
		t.Fatalf("unexpected slot %s", slot)
	}
	if _, ok := d.At(monday(21, 10, 0)); ok {
		t.Fatal("schedule should be over")
	}
}

func TestDynamicCrossesMidnight(t *testing.T) {
	d := Generate(monday(23, 0, 0))
	slot, ok := d.At(time.Date(2025, 1, 7, 0, 10, 0, 0, time.UTC))
	if !ok || slot.Kind != Work || slot.Session != 3 {
		t.Fatalf("unexpected slot after midnight: %s (found %v)", slot, ok)
	}
}

func TestResumable(t *testing.T) {
	d := Generate(monday(19, 0, 0))
	if !d.Resumable(monday(20, 0, 0)) {
		t.Fatal("same day before end should be resumable")
	}
	if d.Resumable(monday(21, 10, 0)) {
		t.Fatal("finished schedule should not be resumable")
	}
	if d.Resumable(time.Date(2025, 1, 7, 19, 30, 0, 0, time.UTC)) {
		t.Fatal("schedule from another day should not be resumable")
	}
}

func TestDynamicFileRoundTrip(t *testing.T) {
	f := DynamicFile{Path: filepath.Join(t.TempDir(), "nested", "dynamic.json")}

	got, err := f.Load()
	if err != nil || got != nil {
		t.Fatalf("missing file should load as nil, got %v %v", got, err)
	}

	d := Generate(monday(23, 0, 0))
	if err := f.Save(d); err != nil {
		t.Fatal(err)
	}
	got, err = f.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !got.StartTime.Equal(d.StartTime) {
		t.Fatalf("start changed: %v vs %v", got.StartTime, d.StartTime)
	}
	if len(got.Schedule) != len(d.Schedule) {
		t.Fatalf("expected %d slots, got %d", len(d.Schedule), len(got.Schedule))
	}
	for i := range d.Schedule {
		if !got.Schedule[i].Equal(d.Schedule[i]) {
			t.Errorf("slot %d: got %s, want %s", i, got.Schedule[i], d.Schedule[i])
		}
	}

	if err := f.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(f.Path); !os.IsNotExist(err) {
		t.Fatal("file should be removed")
	}
	if err := f.Clear(); err != nil {
		t.Fatalf("clearing twice should be fine: %v", err)
	}
}

func TestDynamicFileCorrupt(t *testing.T) {
	f := DynamicFile{Path: filepath.Join(t.TempDir(), "dynamic.json")}
	os.WriteFile(f.Path, []byte("{not json"), 0o644)
	if _, err := f.Load(); err == nil {
		t.Fatal("expected decode error")
	}
}

// ============================================================
// Resolution
// ============================================================

func TestResolveFixedWinsOverDynamic(t *testing.T) {
	src := fixedSource()
	d := Generate(monday(8, 50, 0))

	r := src.Resolve(monday(8, 55, 0), d)
	if !r.Found || !r.FromDynamic || r.Slot.Kind != Work {
		t.Fatalf("expected dynamic work before fixed hours, got %+v", r)
	}

	r = src.Resolve(monday(9, 5, 0), d)
	if !r.Found || r.FromDynamic || !r.Slot.Equal(src.Fixed[0]) {
		t.Fatalf("expected the first fixed slot, got %+v", r)
	}
}

func TestResolveIdle(t *testing.T) {
	r := fixedSource().Resolve(monday(20, 0, 0), nil)
	if r.Found || r.Current() != nil {
		t.Fatal("expected idle")
	}
}

func TestDiff(t *testing.T) {
	a := Slot{Session: 1, Kind: Work, Start: At(9, 0), End: At(9, 25)}
	b := Slot{Session: 1, Kind: ShortBreak, Start: At(9, 25), End: At(9, 30)}
	same := a

	if _, changed := Diff(nil, nil); changed {
		t.Fatal("idle to idle is not a transition")
	}
	if _, changed := Diff(&a, &same); changed {
		t.Fatal("equal slots are not a transition")
	}
	tr, changed := Diff(&a, &b)
	if !changed || !tr.LeavingWork() || !tr.EnteringBreak() || tr.EnteringWork() {
		t.Fatalf("unexpected transition %+v", tr)
	}
	tr, changed = Diff(nil, &a)
	if !changed || !tr.EnteringWork() || tr.LeavingWork() {
		t.Fatalf("unexpected transition %+v", tr)
	}
}

// ============================================================
// YAML timetable
// ============================================================

func TestLoadTimetable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timetable.yaml")
	content := `slots:
  - {session: 1, type: WORK, start: "08:00", end: "08:50"}
  - {session: 1, type: SHORT_BREAK, start: "08:50", end: "09:00"}
  - {session: 0, type: LUNCH, start: "12:00", end: "12:30"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	tt, err := LoadTimetable(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(tt) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(tt))
	}
	if tt[0].Start != At(8, 0) || tt[0].End != At(8, 50) || tt[2].Kind != Lunch {
		t.Fatalf("unexpected slots %v", tt)
	}
	if tt[2].SessionLabel() != "-" {
		t.Fatalf("lunch should have no session number, got %s", tt[2].SessionLabel())
	}
}

func TestLoadTimetableInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timetable.yaml")
	content := `slots:
  - {session: 1, type: WORK, start: "09:00", end: "08:00"}
`
	os.WriteFile(path, []byte(content), 0o644)
	if _, err := LoadTimetable(path); !errors.Is(err, ErrInvalidTimetable) {
		t.Fatalf("expected ErrInvalidTimetable, got %v", err)
	}
}
