package clock

import (
	"time"

	"github.com/sadopc/pomoclock/internal/schedule"
	"github.com/sadopc/pomoclock/internal/store"
)

type EventKind int

const (
	ActivityChanged EventKind = iota
	SessionLogged
	TaskBound
	TaskQueued
	TaskSelectionNeeded
	ManualStarted
	ManualRejected
	ScheduleCleared
	ScheduleCompleted
)

func (k EventKind) String() string {
	switch k {
	case ActivityChanged:
		return "activity_changed"
	case SessionLogged:
		return "session_logged"
	case TaskBound:
		return "task_bound"
	case TaskQueued:
		return "task_queued"
	case TaskSelectionNeeded:
		return "task_selection_needed"
	case ManualStarted:
		return "manual_started"
	case ManualRejected:
		return "manual_rejected"
	case ScheduleCleared:
		return "schedule_cleared"
	case ScheduleCompleted:
		return "schedule_completed"
	}
	return "unknown"
}

// Event is a notification for the presentation layer. Only the fields relevant
// to Kind are set.
type Event struct {
	Kind   EventKind
	At     time.Time
	Slot   *schedule.Slot
	Task   *store.Task
	Record *store.SessionRecord
	Reason Reason
}

type Sink interface {
	Emit(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

type discardSink struct{}

func (discardSink) Emit(Event) {}

// Buffer queues events until drained. It is not safe for concurrent use.
type Buffer struct {
	events []Event
}

func (b *Buffer) Emit(e Event) {
	b.events = append(b.events, e)
}

func (b *Buffer) Drain() []Event {
	out := b.events
	b.events = nil
	return out
}
