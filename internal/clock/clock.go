package clock

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sadopc/pomoclock/internal/schedule"
	"github.com/sadopc/pomoclock/internal/store"
)

const (
	// SessionCap is the longest duration a single work record may carry.
	SessionCap = 25 * time.Minute
	// AnomalyThreshold triggers a warning when the uncapped elapsed time exceeds it.
	AnomalyThreshold = 30 * time.Minute
	// DefaultFeedbackDelay is how long into a break the feedback prompt waits.
	DefaultFeedbackDelay = time.Minute
)

// Reason annotates why a work session ended early. It is stored in the
// record's reflection field.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonTaskSwitched   Reason = "Task switched during session"
	ReasonMarkedComplete Reason = "Task marked complete during session"
	ReasonTerminated     Reason = "Session ended with forced termination"
	ReasonSleep          Reason = "Session ended due to system sleep/lock"
	ReasonManualStop     Reason = "Manual session stopped early"
	ReasonFixedOverride  Reason = "Session interrupted by fixed schedule"
)

// Completed reports whether a session ended for this reason counts as
// completed.
func (r Reason) Completed() bool {
	switch r {
	case ReasonSleep, ReasonManualStop, ReasonFixedOverride:
		return false
	}
	return true
}

var (
	ErrTaskActive        = errors.New("task is bound to the running session")
	ErrFixedHours        = errors.New("manual sessions are disabled during fixed schedule hours")
	ErrManualRunning     = errors.New("a manual session is already running")
	ErrManualNotRunning  = errors.New("no manual session is running")
	ErrNoPendingFeedback = errors.New("no session is awaiting feedback")
)

// Store is the persistence the clock drives.
type Store interface {
	GetTask(id string) (*store.Task, error)
	MarkTaskCompleted(id string, at time.Time) error
	SoftDeleteTask(id string) error
	HardDeleteTask(id string) error
	AppendSession(rec store.SessionRecord) (store.SessionRecord, error)
	PatchFeedback(id string, fb store.Feedback) error
	ArchiveSessions(now time.Time) (int, error)
}

type Option func(*Clock)

func WithTimetable(t schedule.Timetable) Option {
	return func(c *Clock) { c.source.Fixed = t }
}

// WithDynamicFile persists manual schedules so they survive a restart.
func WithDynamicFile(f schedule.DynamicFile) Option {
	return func(c *Clock) { c.dynFile = &f }
}

func WithSink(s Sink) Option {
	return func(c *Clock) { c.sink = s }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Clock) { c.log = l }
}

// WithUntrackedLogging controls whether work sessions with no bound task are
// logged under the placeholder task.
func WithUntrackedLogging(enabled bool) Option {
	return func(c *Clock) { c.logUntracked = enabled }
}

func WithFeedbackDelay(d time.Duration) Option {
	return func(c *Clock) { c.feedbackDelay = d }
}

// Clock is the scheduling state machine. It is driven by Tick and by user or
// system events, and is not safe for concurrent use.
type Clock struct {
	store         Store
	source        schedule.Source
	dynFile       *schedule.DynamicFile
	sink          Sink
	log           *log.Logger
	logUntracked  bool
	feedbackDelay time.Duration

	current     *schedule.Slot
	fromDynamic bool
	dynamic     *schedule.Dynamic

	currentTask *store.Task
	nextTask    *store.Task
	// bound is set once a task has been bound within the current slot.
	bound bool

	sessionStart time.Time
	breakStart   time.Time

	pendingFeedback  string
	feedbackPrompted bool

	pausedForSleep bool
	terminated     bool
	day            time.Time
}

func New(s Store, opts ...Option) *Clock {
	c := &Clock{
		store:         s,
		source:        schedule.Source{Fixed: schedule.DefaultFixed()},
		sink:          discardSink{},
		log:           log.New(io.Discard),
		logUntracked:  true,
		feedbackDelay: DefaultFeedbackDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State is a read-only snapshot for presentation.
type State struct {
	Activity       *schedule.Slot
	FromDynamic    bool
	Task           *store.Task
	NextTask       *store.Task
	SessionStart   time.Time
	BreakStart     time.Time
	Dynamic        *schedule.Dynamic
	PausedForSleep bool
}

// Running reports whether a work session is being timed.
func (s State) Running() bool {
	return !s.SessionStart.IsZero()
}

func (s State) Elapsed(now time.Time) time.Duration {
	if s.SessionStart.IsZero() {
		return 0
	}
	return now.Sub(s.SessionStart)
}

// Remaining is the time left in the active slot.
func (s State) Remaining(now time.Time) time.Duration {
	if s.Activity == nil {
		return 0
	}
	day := now
	if s.FromDynamic && s.Dynamic != nil {
		day = s.Dynamic.StartTime
	}
	_, end := s.Activity.Bounds(day)
	if d := end.Sub(now); d > 0 {
		return d
	}
	return 0
}

func (c *Clock) State() State {
	st := State{
		FromDynamic:    c.fromDynamic,
		SessionStart:   c.sessionStart,
		BreakStart:     c.breakStart,
		Dynamic:        c.dynamic,
		PausedForSleep: c.pausedForSleep,
	}
	if c.current != nil {
		slot := *c.current
		st.Activity = &slot
	}
	if c.currentTask != nil {
		t := *c.currentTask
		st.Task = &t
	}
	if c.nextTask != nil {
		t := *c.nextTask
		st.NextTask = &t
	}
	return st
}

// Source exposes the schedule resolver in use.
func (c *Clock) Source() schedule.Source {
	return c.source
}

func (c *Clock) emit(e Event) {
	c.sink.Emit(e)
}

func (c *Clock) inWork() bool {
	return c.current != nil && c.current.Kind == schedule.Work
}

func (c *Clock) running() bool {
	return c.inWork() && !c.sessionStart.IsZero()
}

// Tick advances the machine to now. It is called about once per second.
func (c *Clock) Tick(now time.Time) {
	if c.terminated {
		return
	}
	c.rollDay(now)
	c.enforceFixedPriority(now)
	c.evaluate(now)
	c.expireDynamic(now)
}

func (c *Clock) rollDay(now time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if c.day.IsZero() {
		c.day = today
		return
	}
	if today.Equal(c.day) {
		return
	}
	c.day = today
	if moved, err := c.store.ArchiveSessions(now); err != nil {
		c.log.Error("archive sessions", "err", err)
	} else {
		c.log.Info("date changed", "archived", moved)
	}

	// A manual session running across midnight keeps its task.
	if c.fromDynamic && c.running() {
		return
	}
	// A fixed session still open here missed its end while the machine slept.
	if c.running() {
		c.finalize(now, ReasonSleep)
	}
	c.resetTaskState()
	c.current = nil
	c.fromDynamic = false
}

// enforceFixedPriority drops an active dynamic schedule as soon as the fixed
// timetable's hours begin.
func (c *Clock) enforceFixedPriority(now time.Time) {
	if c.dynamic == nil || !c.source.WithinFixedHours(now) {
		return
	}
	c.log.Warn("fixed schedule started, dropping manual schedule")
	if c.fromDynamic {
		if c.running() {
			c.finalize(now, ReasonFixedOverride)
		}
		c.current = nil
		c.fromDynamic = false
		c.sessionStart = time.Time{}
		c.breakStart = time.Time{}
	}
	c.clearDynamic(now, ScheduleCleared)
}

func (c *Clock) expireDynamic(now time.Time) {
	if c.dynamic == nil || now.Before(c.dynamic.End()) {
		return
	}
	c.log.Info("manual schedule finished")
	c.clearDynamic(now, ScheduleCompleted)
	c.resetTaskState()
}

func (c *Clock) clearDynamic(now time.Time, kind EventKind) {
	c.dynamic = nil
	if c.dynFile != nil {
		if err := c.dynFile.Clear(); err != nil {
			c.log.Warn("clear manual schedule", "err", err)
		}
	}
	c.emit(Event{Kind: kind, At: now})
}

func (c *Clock) resetTaskState() {
	c.sessionStart = time.Time{}
	c.breakStart = time.Time{}
	c.currentTask = nil
	c.nextTask = nil
	c.bound = false
	c.pendingFeedback = ""
	c.feedbackPrompted = false
	c.pausedForSleep = false
}

func (c *Clock) evaluate(now time.Time) {
	res := c.source.Resolve(now, c.dynamic)
	tr, changed := schedule.Diff(c.current, res.Current())
	if !changed {
		return
	}
	c.transition(now, tr, res.FromDynamic)
}

func (c *Clock) transition(now time.Time, tr schedule.Transition, fromDynamic bool) {
	wasDynamic := c.fromDynamic
	if tr.LeavingWork() {
		if rec := c.finalize(now, ReasonNone); rec != nil {
			c.pendingFeedback = rec.ID
		}
	}

	c.current = tr.To
	c.fromDynamic = fromDynamic && tr.To != nil
	c.sessionStart = time.Time{}
	c.breakStart = time.Time{}
	c.feedbackPrompted = false
	c.bound = false

	switch {
	case tr.EnteringWork():
		if !c.pausedForSleep {
			c.sessionStart = now
		}
		if c.nextTask != nil {
			c.currentTask = c.nextTask
			c.nextTask = nil
			c.bound = true
			c.emit(Event{Kind: TaskBound, At: now, Task: c.currentTask, Slot: tr.To})
		}
		if c.currentTask == nil {
			c.emit(Event{Kind: TaskSelectionNeeded, At: now, Slot: tr.To})
		}
	case tr.EnteringBreak():
		c.breakStart = now
	case tr.To == nil && !wasDynamic && !c.source.WithinFixedHours(now):
		c.log.Info("workday ended, resetting task state")
		c.resetTaskState()
	}

	c.log.Debug("activity changed", "to", slotName(tr.To))
	c.emit(Event{Kind: ActivityChanged, At: now, Slot: tr.To})
}

func slotName(s *schedule.Slot) string {
	if s == nil {
		return "idle"
	}
	return s.String()
}

// finalize logs the running work session ending at now and clears the start.
// It returns nil when nothing was written.
func (c *Clock) finalize(now time.Time, reason Reason) *store.SessionRecord {
	if c.sessionStart.IsZero() || c.current == nil {
		return nil
	}
	start := c.sessionStart
	c.sessionStart = time.Time{}

	elapsed := now.Sub(start).Truncate(time.Second)
	if elapsed < time.Second {
		return nil
	}
	duration := min(elapsed, SessionCap)
	if elapsed > AnomalyThreshold {
		c.log.Warn("session exceeded expected length, capping", "elapsed", elapsed, "cap", SessionCap)
	}

	task := c.currentTask
	if task == nil && !c.logUntracked {
		c.log.Info("skipping untracked session", "elapsed", elapsed)
		return nil
	}

	secs := int(duration / time.Second)
	rec := store.SessionRecord{
		SessionKind:     string(schedule.Work),
		SessionNumber:   c.current.Session,
		StartTime:       start,
		EndTime:         now,
		DurationSeconds: secs,
		DurationMinutes: secs / 60,
		ElapsedSeconds:  int(elapsed / time.Second),
		Reflection:      string(reason),
		Completed:       reason.Completed(),
	}
	if task != nil {
		rec.TaskID = task.ID
		rec.TaskName = task.Name
		rec.Priority = task.Priority
	} else {
		rec.TaskID = store.NoTaskID
		rec.TaskName = store.NoTaskName
		rec.Priority = store.PriorityNone
		rec.Blockers = store.NoTaskBlockers
	}

	logged, err := c.store.AppendSession(rec)
	if err != nil {
		c.log.Error("log session", "task", rec.TaskName, "err", err)
		return nil
	}
	c.log.Info("session logged", "task", logged.TaskName, "seconds", logged.DurationSeconds, "completed", logged.Completed)
	c.emit(Event{Kind: SessionLogged, At: now, Record: &logged, Reason: reason})
	return &logged
}

// SelectTask binds the task to the running work slot, or queues it for the
// next one when no work slot is active.
func (c *Clock) SelectTask(id string, now time.Time) error {
	task, err := c.store.GetTask(id)
	if err != nil {
		return err
	}
	if task.Status != store.StatusActive {
		return fmt.Errorf("select task %s: %w", id, store.ErrTaskNotFound)
	}

	if !c.inWork() {
		c.nextTask = task
		c.emit(Event{Kind: TaskQueued, At: now, Task: task})
		return nil
	}

	switch {
	case c.currentTask != nil && c.currentTask.ID == task.ID:
		c.currentTask = task
		return nil
	case c.currentTask != nil:
		if !c.sessionStart.IsZero() {
			c.finalize(now, ReasonTaskSwitched)
			c.sessionStart = now
		}
	case !c.bound && !c.sessionStart.IsZero():
		// First binding in this slot: time the session from the selection.
		c.sessionStart = now
	}
	c.currentTask = task
	c.bound = true
	c.emit(Event{Kind: TaskBound, At: now, Task: task, Slot: c.current})
	return nil
}

// CompleteTask marks a task done. A running session bound to it is logged
// first; one-time tasks are then removed.
func (c *Clock) CompleteTask(id string, now time.Time) error {
	task, err := c.store.GetTask(id)
	if err != nil {
		return err
	}

	if c.currentTask != nil && c.currentTask.ID == id {
		wasRunning := c.running()
		if wasRunning {
			c.finalize(now, ReasonMarkedComplete)
		}
		c.currentTask = nil
		if wasRunning {
			c.sessionStart = now
		}
	}

	if err := c.store.MarkTaskCompleted(id, now); err != nil {
		return err
	}
	if !task.Recurring() {
		if c.nextTask != nil && c.nextTask.ID == id {
			c.nextTask = nil
		}
		if err := c.store.HardDeleteTask(id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTask removes a task unless it is bound to the current session.
func (c *Clock) DeleteTask(id string, hard bool) error {
	if c.currentTask != nil && c.currentTask.ID == id {
		return fmt.Errorf("delete task %s: %w", id, ErrTaskActive)
	}
	var err error
	if hard {
		err = c.store.HardDeleteTask(id)
	} else {
		err = c.store.SoftDeleteTask(id)
	}
	if err != nil {
		return err
	}
	if c.nextTask != nil && c.nextTask.ID == id {
		c.nextTask = nil
	}
	return nil
}

// Sleep handles a system sleep or lock signal.
func (c *Clock) Sleep(now time.Time) {
	if c.running() {
		c.finalize(now, ReasonSleep)
	}
	c.sessionStart = time.Time{}
	c.pausedForSleep = true
}

// Wake handles the matching resume signal.
func (c *Clock) Wake(now time.Time) {
	if !c.pausedForSleep {
		return
	}
	c.pausedForSleep = false
	if c.inWork() {
		c.sessionStart = now
	}
}

// Terminate logs any running session before shutdown. Further calls and
// ticks are ignored.
func (c *Clock) Terminate(now time.Time) {
	if c.terminated {
		return
	}
	c.terminated = true
	if c.running() {
		c.finalize(now, ReasonTerminated)
	}
}

func (c *Clock) Terminated() bool {
	return c.terminated
}

// StartManual generates a dynamic schedule starting at now.
func (c *Clock) StartManual(now time.Time) error {
	if c.source.WithinFixedHours(now) {
		c.emit(Event{Kind: ManualRejected, At: now})
		return ErrFixedHours
	}
	if c.dynamic != nil {
		return ErrManualRunning
	}
	d := schedule.Generate(now)
	if c.dynFile != nil {
		if err := c.dynFile.Save(d); err != nil {
			c.log.Warn("persist manual schedule", "err", err)
		}
	}
	c.dynamic = d
	c.log.Info("manual schedule started", "until", d.End().Format("15:04"))
	c.emit(Event{Kind: ManualStarted, At: now})
	c.evaluate(now)
	return nil
}

// StopManual ends the dynamic schedule early.
func (c *Clock) StopManual(now time.Time) error {
	if c.source.WithinFixedHours(now) {
		c.emit(Event{Kind: ManualRejected, At: now})
		return ErrFixedHours
	}
	if c.dynamic == nil {
		return ErrManualNotRunning
	}
	if c.fromDynamic && c.running() {
		c.finalize(now, ReasonManualStop)
	}
	c.clearDynamic(now, ScheduleCleared)
	wasActive := c.current != nil && c.fromDynamic
	if wasActive {
		c.current = nil
		c.fromDynamic = false
	}
	c.resetTaskState()
	if wasActive {
		c.emit(Event{Kind: ActivityChanged, At: now})
	}
	return nil
}

// ToggleManual starts a manual schedule, or stops the running one.
func (c *Clock) ToggleManual(now time.Time) error {
	if c.dynamic != nil {
		return c.StopManual(now)
	}
	return c.StartManual(now)
}

// PendingResume returns a persisted manual schedule that can still be
// resumed at now. Stale or unreadable files are removed.
func (c *Clock) PendingResume(now time.Time) *schedule.Dynamic {
	if c.dynFile == nil {
		return nil
	}
	d, err := c.dynFile.Load()
	if err != nil {
		c.log.Warn("load manual schedule", "err", err)
		c.DiscardResume()
		return nil
	}
	if d == nil {
		return nil
	}
	if !d.Resumable(now) {
		c.DiscardResume()
		return nil
	}
	return d
}

// Resume reactivates a persisted manual schedule.
func (c *Clock) Resume(d *schedule.Dynamic, now time.Time) {
	c.dynamic = d
	c.emit(Event{Kind: ManualStarted, At: now})
	c.Tick(now)
}

func (c *Clock) DiscardResume() {
	if c.dynFile == nil {
		return
	}
	if err := c.dynFile.Clear(); err != nil {
		c.log.Warn("clear manual schedule", "err", err)
	}
}

// ShouldPromptFeedback reports whether the one-shot feedback prompt for the
// last work session is due.
func (c *Clock) ShouldPromptFeedback(now time.Time) bool {
	return c.current != nil &&
		c.current.Kind.IsBreak() &&
		!c.breakStart.IsZero() &&
		!c.feedbackPrompted &&
		c.pendingFeedback != "" &&
		now.Sub(c.breakStart) >= c.feedbackDelay
}

func (c *Clock) MarkFeedbackPrompted() {
	c.feedbackPrompted = true
}

// PendingFeedback returns the id of the session awaiting feedback, if any.
func (c *Clock) PendingFeedback() string {
	return c.pendingFeedback
}

func (c *Clock) SubmitFeedback(fb store.Feedback) error {
	id := c.pendingFeedback
	if id == "" {
		return ErrNoPendingFeedback
	}
	c.feedbackPrompted = true
	err := c.store.PatchFeedback(id, fb)
	// Keep the session pending after a failed write so the next save retries.
	if err == nil || errors.Is(err, store.ErrFeedbackSet) || errors.Is(err, store.ErrSessionNotFound) {
		c.pendingFeedback = ""
	}
	return err
}

// NextActivity returns the next slot to start after now.
func (c *Clock) NextActivity(now time.Time) (schedule.Slot, bool) {
	if c.dynamic != nil {
		if s, ok := c.dynamic.NextAfter(now); ok {
			return s, true
		}
	}
	if !schedule.IsWorkday(now) {
		return schedule.Slot{}, false
	}
	return c.source.Fixed.NextAfter(now, now)
}
