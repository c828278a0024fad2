// internal/sched/schedulerEvent.go

package sched

// StatusKind represents the type of scheduler event
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusRelease
	StatusDispatch
	StatusPreempt
	StatusFinish
	StatusOverrun
)

// StatusEvent is emitted on every idle tick and on key actions.
type StatusEvent struct {
	Time      int64 // virtual time
	Tick      int64 // tick index
	Kind      StatusKind
	TaskID    TaskID // zero for StatusIdle
	Remaining int64
	Deadline  int64
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusIdle:
		return "Idle"
	case StatusRelease:
		return "Release"
	case StatusDispatch:
		return "Dispatch"
	case StatusPreempt:
		return "Preempt"
	case StatusFinish:
		return "Finish"
	case StatusOverrun:
		return "Overrun"
	default:
		return "Unknown"
	}
}
