package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/pomoclock/internal/clock"
	"github.com/sadopc/pomoclock/internal/schedule"
	"github.com/sadopc/pomoclock/internal/store"
)

func monday(h, m, s int) time.Time {
	return time.Date(2025, 1, 6, h, m, s, 0, time.Local)
}

func newTestStore(t *testing.T, now func() time.Time) *store.Store {
	t.Helper()
	s, err := store.NewMemory(store.WithClock(now))
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// harness drives an App with a controllable clock.
type harness struct {
	now    time.Time
	store  *store.Store
	clock  *clock.Clock
	events *clock.Buffer
	app    App
}

func (h *harness) Now() time.Time { return h.now }

func newHarness(t *testing.T, start time.Time, opts ...clock.Option) *harness {
	t.Helper()
	h := &harness{now: start, events: &clock.Buffer{}}
	h.store = newTestStore(t, h.Now)
	h.clock = clock.New(h.store, append([]clock.Option{clock.WithSink(h.events)}, opts...)...)
	h.app = NewApp(h.clock, h.store, h.events, WithNow(h.Now), WithExportDir(t.TempDir()))
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	m, cmd := h.app.Update(msg)
	h.app = m.(App)
	return cmd
}

func (h *harness) tick(at time.Time) {
	h.now = at
	h.send(tickMsg(at))
}

// advance ticks every 15 seconds up to and including to.
func (h *harness) advance(to time.Time) {
	for h.now.Before(to) {
		next := h.now.Add(15 * time.Second)
		if next.After(to) {
			next = to
		}
		h.tick(next)
	}
}

func (h *harness) press(k string) tea.Cmd {
	return h.send(keyMsg(k))
}

func (h *harness) task(t *testing.T, name string) *store.Task {
	t.Helper()
	task, err := h.store.CreateTask(store.TaskInput{Name: name, Priority: store.PriorityHigh})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func (h *harness) records(t *testing.T) []store.SessionRecord {
	t.Helper()
	recs, err := h.store.AllSessions()
	if err != nil {
		t.Fatalf("all sessions: %v", err)
	}
	return recs
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	h := newHarness(t, monday(8, 0, 0))

	if h.app.activeView != viewActivity {
		t.Fatal("default view should be activity")
	}
	if h.app.showHelp || h.app.exportPicking || h.app.feedback.active {
		t.Fatal("no overlay should be open by default")
	}
	if h.app.resume != nil {
		t.Fatal("nothing to resume without a dynamic file")
	}
	if h.app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppLoadingState(t *testing.T) {
	h := newHarness(t, monday(8, 0, 0))
	app := NewApp(h.clock, h.store, h.events, WithNow(h.Now))
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppViewStates(t *testing.T) {
	h := newHarness(t, monday(8, 0, 0))

	for _, v := range []viewState{viewActivity, viewTasks, viewReports, viewSettings} {
		h.app.activeView = v
		if out := h.app.View(); out == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	h := newHarness(t, monday(8, 0, 0))
	header := h.app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppStatusMessage(t *testing.T) {
	h := newHarness(t, monday(8, 0, 0))
	h.send(statusMsg{text: "test status"})
	if !strings.Contains(h.app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppTabSwitching(t *testing.T) {
	h := newHarness(t, monday(8, 0, 0))

	h.press("2")
	if h.app.activeView != viewTasks {
		t.Fatalf("expected tasks view, got %d", h.app.activeView)
	}
	h.press("4")
	if h.app.activeView != viewSettings {
		t.Fatalf("expected settings view, got %d", h.app.activeView)
	}
	h.press("tab")
	if h.app.activeView != viewActivity {
		t.Fatalf("tab should wrap to activity, got %d", h.app.activeView)
	}
}

func TestIdleBeforeSchedule(t *testing.T) {
	h := newHarness(t, monday(8, 0, 0))
	h.tick(monday(8, 0, 1))

	if h.app.activity.state.Activity != nil {
		t.Fatal("expected no activity before 09:00")
	}
	if !h.app.activity.hasNext || h.app.activity.next.Kind != schedule.Work {
		t.Fatal("expected the first work slot as next activity")
	}
	if !strings.Contains(h.app.activity.view(), "OUTSIDE SCHEDULE") {
		t.Fatal("activity view should say outside schedule")
	}
}

func TestTickEntersWork(t *testing.T) {
	h := newHarness(t, monday(8, 59, 59))
	h.tick(monday(9, 0, 0))

	st := h.app.activity.state
	if st.Activity == nil || st.Activity.Kind != schedule.Work || !st.Running() {
		t.Fatalf("expected running work session, got %+v", st)
	}
	if h.app.status == "" {
		t.Fatal("entering work should set a status")
	}
}

func TestSelectTaskBindsTask(t *testing.T) {
	h := newHarness(t, monday(8, 59, 59))
	task := h.task(t, "Write")
	h.tick(monday(9, 0, 0))

	h.send(selectTaskMsg{id: task.ID})

	st := h.app.activity.state
	if st.Task == nil || st.Task.ID != task.ID {
		t.Fatalf("expected bound task, got %+v", st.Task)
	}
	if h.app.status != "Working on Write" {
		t.Fatalf("unexpected status %q", h.app.status)
	}
}

func TestDeleteBoundTaskRejected(t *testing.T) {
	h := newHarness(t, monday(8, 59, 59))
	task := h.task(t, "Write")
	h.tick(monday(9, 0, 0))
	h.send(selectTaskMsg{id: task.ID})

	h.send(deleteTaskMsg{id: task.ID})

	if !h.app.statusError || !strings.Contains(h.app.status, "working on") {
		t.Fatalf("expected rejection status, got %q", h.app.status)
	}
	if _, err := h.store.GetTask(task.ID); err != nil {
		t.Fatalf("task should survive: %v", err)
	}
}

func TestDeleteIdleTask(t *testing.T) {
	h := newHarness(t, monday(8, 0, 0))
	task := h.task(t, "Old")

	h.send(deleteTaskMsg{id: task.ID, hard: true})

	if h.app.statusError {
		t.Fatalf("unexpected error status %q", h.app.status)
	}
	if _, err := h.store.GetTask(task.ID); err == nil {
		t.Fatal("task should be gone")
	}
}

func TestManualRejectedDuringFixedHours(t *testing.T) {
	h := newHarness(t, monday(10, 0, 0))
	h.tick(monday(10, 0, 1))

	h.press("s")

	if !h.app.statusError || !strings.Contains(h.app.status, "disabled") {
		t.Fatalf("expected rejection status, got %q", h.app.status)
	}
	if h.app.activity.state.FromDynamic {
		t.Fatal("fixed schedule should stay in charge")
	}
}

func TestManualStartAndStop(t *testing.T) {
	h := newHarness(t, monday(19, 0, 0))

	h.press("s")
	st := h.app.activity.state
	if !st.FromDynamic || st.Activity == nil || st.Activity.Kind != schedule.Work {
		t.Fatalf("expected manual work session, got %+v", st)
	}

	h.now = monday(19, 1, 0)
	h.press("s")
	if h.app.activity.state.Activity != nil {
		t.Fatal("stopping the manual schedule should leave no activity")
	}
	recs := h.records(t)
	if len(recs) != 1 || recs[0].Reflection != string(clock.ReasonManualStop) || recs[0].Completed {
		t.Fatalf("expected an early-stop record, got %+v", recs)
	}
}

func TestTickGapTreatedAsSleep(t *testing.T) {
	h := newHarness(t, monday(8, 59, 59))
	task := h.task(t, "Write")
	h.tick(monday(9, 0, 0))
	h.send(selectTaskMsg{id: task.ID})
	h.advance(monday(9, 5, 0))

	h.tick(monday(9, 15, 0))

	recs := h.records(t)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].DurationSeconds != 300 || recs[0].Reflection != string(clock.ReasonSleep) {
		t.Fatalf("unexpected record %+v", recs[0])
	}
	st := h.app.activity.state
	if !st.Running() || !st.SessionStart.Equal(monday(9, 15, 0)) {
		t.Fatal("session should restart at wake time")
	}
}

func TestFeedbackPromptAndSubmit(t *testing.T) {
	h := newHarness(t, monday(8, 59, 59))
	task := h.task(t, "Write")
	h.tick(monday(9, 0, 0))
	h.send(selectTaskMsg{id: task.ID})

	h.advance(monday(9, 25, 30))
	if h.app.feedback.active {
		t.Fatal("prompt should wait for the delay")
	}
	h.advance(monday(9, 26, 0))
	if !h.app.feedback.active {
		t.Fatal("feedback form should open during the break")
	}
	if !strings.Contains(h.app.View(), "Session Feedback") {
		t.Fatal("feedback overlay should render")
	}

	h.send(feedbackMsg{fb: store.Feedback{Mood: "💪", Reflection: "shipped it"}})

	recs := h.records(t)
	if len(recs) != 1 || recs[0].Mood != "💪" || recs[0].Reflection != "shipped it" {
		t.Fatalf("feedback not stored: %+v", recs)
	}
	if h.app.status != "Feedback saved" {
		t.Fatalf("unexpected status %q", h.app.status)
	}
}

func TestQuitTerminatesClock(t *testing.T) {
	h := newHarness(t, monday(8, 59, 59))
	task := h.task(t, "Write")
	h.tick(monday(9, 0, 0))
	h.send(selectTaskMsg{id: task.ID})
	h.advance(monday(9, 10, 0))

	cmd := h.press("q")
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("quit should return tea.Quit")
	}
	if !h.clock.Terminated() {
		t.Fatal("clock should be terminated")
	}
	recs := h.records(t)
	if len(recs) != 1 || recs[0].Reflection != string(clock.ReasonTerminated) {
		t.Fatalf("expected terminated record, got %+v", recs)
	}
}

func TestResumePromptAccept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dynamic.json")
	if err := (schedule.DynamicFile{Path: path}).Save(schedule.Generate(monday(19, 0, 0))); err != nil {
		t.Fatal(err)
	}

	h := newHarness(t, monday(19, 10, 0), clock.WithDynamicFile(schedule.DynamicFile{Path: path}))
	if h.app.resume == nil {
		t.Fatal("expected a resume prompt")
	}
	if !strings.Contains(h.app.View(), "Resume manual schedule?") {
		t.Fatal("resume prompt should render")
	}

	h.press("y")
	if h.app.resume != nil {
		t.Fatal("prompt should close")
	}
	if st := h.app.activity.state; !st.FromDynamic || st.Activity == nil {
		t.Fatalf("expected resumed manual schedule, got %+v", st)
	}
}

func TestResumePromptDiscard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dynamic.json")
	if err := (schedule.DynamicFile{Path: path}).Save(schedule.Generate(monday(19, 0, 0))); err != nil {
		t.Fatal(err)
	}

	h := newHarness(t, monday(19, 10, 0), clock.WithDynamicFile(schedule.DynamicFile{Path: path}))
	h.press("n")

	if h.app.resume != nil {
		t.Fatal("prompt should close")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("discarded schedule file should be removed")
	}
	h.tick(monday(19, 10, 1))
	if h.app.activity.state.Activity != nil {
		t.Fatal("discarded schedule should not run")
	}
}

func TestExportCSV(t *testing.T) {
	h := newHarness(t, monday(8, 0, 0))

	msg := h.app.doExport(0)()
	done, ok := msg.(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg, got %#v", msg)
	}
	if filepath.Ext(done.path) != ".csv" {
		t.Fatalf("unexpected path %s", done.path)
	}
	if _, err := os.Stat(done.path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
}

func TestExportPickerKeys(t *testing.T) {
	h := newHarness(t, monday(8, 0, 0))

	h.press("x")
	if !h.app.exportPicking {
		t.Fatal("x should open the export picker")
	}
	h.press("j")
	if h.app.exportCursor != 1 {
		t.Fatalf("expected cursor 1, got %d", h.app.exportCursor)
	}
	h.press("esc")
	if h.app.exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestEventStatus(t *testing.T) {
	work := schedule.Slot{Session: 2, Kind: schedule.Work}
	lunch := schedule.Slot{Session: schedule.NoSession, Kind: schedule.Lunch}
	task := &store.Task{Name: "Write"}
	rec := &store.SessionRecord{TaskName: "Write", DurationSeconds: 1500}

	tests := []struct {
		e       clock.Event
		want    string
		isError bool
	}{
		{clock.Event{Kind: clock.ActivityChanged}, "Outside schedule", false},
		{clock.Event{Kind: clock.ActivityChanged, Slot: &work}, "Work started (session 2)", false},
		{clock.Event{Kind: clock.ActivityChanged, Slot: &lunch}, "Lunch started", false},
		{clock.Event{Kind: clock.SessionLogged, Record: rec}, "Logged 25m 0s on Write", false},
		{clock.Event{Kind: clock.TaskBound, Task: task}, "Working on Write", false},
		{clock.Event{Kind: clock.TaskQueued, Task: task}, "Write queued for the next work session", false},
		{clock.Event{Kind: clock.TaskSelectionNeeded}, "No task selected. Press w to pick one.", true},
		{clock.Event{Kind: clock.ManualRejected}, "Manual sessions are disabled during fixed schedule hours", true},
		{clock.Event{Kind: clock.ScheduleCompleted}, "Manual schedule complete", false},
	}
	for _, tt := range tests {
		got, isError := eventStatus(tt.e)
		if got != tt.want || isError != tt.isError {
			t.Errorf("eventStatus(%v) = %q, %v; want %q, %v", tt.e.Kind, got, isError, tt.want, tt.isError)
		}
	}
}

// ============================================================
// Activity model
// ============================================================

func TestActivityPicker(t *testing.T) {
	s := newTestStore(t, time.Now)
	a := newActivityModel(s)
	tasks := []store.Task{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	a, _ = a.update(availableTasksMsg{tasks: tasks})
	if !a.picking {
		t.Fatal("picker should open")
	}
	a, _ = a.update(keyMsg("j"))
	a, cmd := a.update(keyMsg("enter"))
	if a.picking {
		t.Fatal("picker should close after selection")
	}
	msg, ok := cmd().(selectTaskMsg)
	if !ok || msg.id != "b" {
		t.Fatalf("expected selectTaskMsg for b, got %#v", msg)
	}
}

func TestActivityPickerEmpty(t *testing.T) {
	s := newTestStore(t, time.Now)
	a := newActivityModel(s)

	a, cmd := a.update(availableTasksMsg{})
	if a.picking {
		t.Fatal("picker should stay closed with no tasks")
	}
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Fatal("expected an error status")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("a long task name", 6); got != "a lon…" {
		t.Fatalf("got %q", got)
	}
}

// ============================================================
// Tasks model
// ============================================================

func TestTasksKeyIntents(t *testing.T) {
	s := newTestStore(t, time.Now)
	m := newTasksModel(s, time.Now)
	m, _ = m.update(tasksDataMsg{active: []store.Task{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}})

	m, _ = m.update(keyMsg("j"))
	if m.cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", m.cursor)
	}

	tests := []struct {
		key  string
		want tea.Msg
	}{
		{"w", selectTaskMsg{id: "b"}},
		{"c", completeTaskMsg{id: "b"}},
		{"d", deleteTaskMsg{id: "b"}},
		{"D", deleteTaskMsg{id: "b", hard: true}},
	}
	for _, tt := range tests {
		_, cmd := m.update(keyMsg(tt.key))
		if cmd == nil {
			t.Fatalf("%s: expected a command", tt.key)
		}
		if got := cmd(); got != tt.want {
			t.Errorf("%s: got %#v, want %#v", tt.key, got, tt.want)
		}
	}
}

func TestTasksDeletedView(t *testing.T) {
	s := newTestStore(t, time.Now)
	m := newTasksModel(s, time.Now)
	m.setSize(100, 40)
	m, _ = m.update(tasksDataMsg{
		active:  []store.Task{{ID: "a", Name: "A"}},
		deleted: []store.Task{{ID: "z", Name: "Gone"}},
	})

	m, _ = m.update(keyMsg("v"))
	if !m.showDeleted {
		t.Fatal("v should show deleted tasks")
	}
	if _, cmd := m.update(keyMsg("d")); cmd != nil {
		t.Fatal("soft delete is not offered for deleted tasks")
	}
	if !strings.Contains(m.view(), "Gone") {
		t.Fatal("deleted view should list deleted tasks")
	}
}

func TestTasksSaveCreates(t *testing.T) {
	s := newTestStore(t, time.Now)
	m := newTasksModel(s, time.Now)
	m.formType = "new"
	*m.formName = "  Review  "
	*m.formPriority = string(store.PriorityLow)
	*m.formRepeat = "2w"
	*m.formWeekdays = []int{0, 2}

	msg := m.save()()
	if st, ok := msg.(statusMsg); !ok || st.isError {
		t.Fatalf("unexpected message %#v", msg)
	}
	tasks, _ := s.ListActiveTasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Name != "Review" || got.Priority != store.PriorityLow || got.Repeat == nil || got.Repeat.Days() != 14 {
		t.Fatalf("unexpected task %+v", got)
	}
}

func TestValidateRepeat(t *testing.T) {
	if err := validateRepeat(""); err != nil {
		t.Fatal("blank repeat means one-time")
	}
	if err := validateRepeat("3d"); err != nil {
		t.Fatal(err)
	}
	if err := validateRepeat("often"); err == nil {
		t.Fatal("expected an error")
	}
}

// ============================================================
// Reports model
// ============================================================

func TestReportsModes(t *testing.T) {
	now := monday(12, 0, 0)
	s := newTestStore(t, func() time.Time { return now })
	r := newReportsModel(s, func() time.Time { return now })
	r.setSize(100, 40)

	recs := []store.SessionRecord{{
		TaskID: "a", TaskName: "Write", Priority: store.PriorityHigh, SessionKind: "WORK",
		StartTime: monday(9, 0, 0), EndTime: monday(9, 25, 0), DurationSeconds: 1500, Completed: true,
	}}
	r, _ = r.update(reportsDataMsg{sessions: recs})

	if !strings.Contains(r.body(), "Sessions completed") {
		t.Fatalf("daily body missing summary:\n%s", r.body())
	}
	r, _ = r.update(keyMsg("m"))
	if r.mode != reportWeekly || !strings.Contains(r.body(), "scheduled") {
		t.Fatalf("expected weekly report:\n%s", r.body())
	}
	r, _ = r.update(keyMsg("m"))
	if !strings.Contains(r.body(), "Write") {
		t.Fatalf("task breakdown should name the task:\n%s", r.body())
	}
	r, _ = r.update(keyMsg("m"))
	r, _ = r.update(keyMsg("m"))
	if r.mode != reportDaily {
		t.Fatal("mode should wrap to daily")
	}
	if r.view() == "" {
		t.Fatal("reports view rendered empty")
	}
}

func TestReportsChartOffset(t *testing.T) {
	now := monday(12, 0, 0)
	s := newTestStore(t, func() time.Time { return now })
	r := newReportsModel(s, func() time.Time { return now })

	r, _ = r.update(keyMsg("h"))
	if !r.anchor().Equal(now.AddDate(0, 0, -7)) {
		t.Fatalf("unexpected anchor %v", r.anchor())
	}
	r, _ = r.update(keyMsg("l"))
	r, _ = r.update(keyMsg("l"))
	if r.offset != 0 {
		t.Fatal("offset should not go past today")
	}
}

// ============================================================
// Settings model
// ============================================================

func TestSettingsSave(t *testing.T) {
	s := newTestStore(t, time.Now)
	m := newSettingsModel(s)
	for i, icon := range []string{"W", "S", "L", "🍜 "} {
		*m.icons[i] = icon
	}

	if msg, ok := m.save()().(statusMsg); !ok || msg.isError {
		t.Fatalf("unexpected message %#v", msg)
	}
	if got := s.Icon("work"); got != "W" {
		t.Fatalf("work icon = %q", got)
	}
	if got := s.Icon("lunch"); got != "🍜" {
		t.Fatalf("lunch icon = %q", got)
	}
}

func TestFormatSettingKey(t *testing.T) {
	tests := map[string]string{
		"icon_work":        "Work icon",
		"icon_short_break": "Short Break icon",
		"theme":            "theme",
	}
	for in, want := range tests {
		if got := formatSettingKey(in); got != want {
			t.Errorf("formatSettingKey(%q) = %q, want %q", in, got, want)
		}
	}
}

// ============================================================
// Feedback model
// ============================================================

func TestFeedbackEscSkips(t *testing.T) {
	f := newFeedbackModel()
	f, _ = f.open()
	if !f.active {
		t.Fatal("form should be active")
	}
	f, cmd := f.update(keyMsg("esc"))
	if f.active {
		t.Fatal("esc should close the form")
	}
	if msg, ok := cmd().(statusMsg); !ok || msg.text != "Feedback skipped" {
		t.Fatalf("unexpected message %#v", msg)
	}
}

func TestMoodOptions(t *testing.T) {
	opts := moodOptions()
	if len(opts) != len(store.Moods)+1 {
		t.Fatalf("expected skip plus %d moods, got %d", len(store.Moods), len(opts))
	}
}

// ============================================================
// Helper functions
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Second, "00:00:00"},
		{time.Minute, "00:01:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Minute, "00:00"},
		{25 * time.Minute, "25:00"},
		{4*time.Minute + 9*time.Second, "04:09"},
	}
	for _, tt := range tests {
		if got := formatCountdown(tt.d); got != tt.want {
			t.Errorf("formatCountdown(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestViewNames(t *testing.T) {
	expected := []string{"Activity", "Tasks", "Reports", "Settings"}
	if len(viewNames) != len(expected) {
		t.Fatalf("expected %d view names, got %d", len(expected), len(viewNames))
	}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapFullHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test)
// ============================================================

func TestStylesRender(t *testing.T) {
	for _, k := range iconKinds {
		if kindStyle(k).Render("x") == "" {
			t.Fatalf("kind style %s rendered empty", k)
		}
	}
	for _, p := range []store.Priority{store.PriorityHigh, store.PriorityMedium, store.PriorityLow} {
		if priorityStyle(p).Render("x") == "" {
			t.Fatalf("priority style %s rendered empty", p)
		}
	}
	if deletedItemStyle.Render("x") == "" || clockStyle.Render("x") == "" {
		t.Fatal("style rendered empty")
	}
}
