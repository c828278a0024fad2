// internal/sched/task.go

package sched

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"rtsim/internal/numeric"
)

// TaskID uniquely identifies a task in the scheduler. It only breaks ties
// between equal deadlines (lower wins); it never sets priority by itself.
type TaskID uint64

// TaskSpec is the immutable descriptor of a periodic task. All fields are in
// one caller-chosen integer time unit.
type TaskSpec struct {
	ID               TaskID
	ExecutionTime    int64 // worst-case demand per instance
	Period           int64 // inter-arrival time
	RelativeDeadline int64 // deadline offset from each arrival
}

// Task is a TaskSpec plus the runtime state of its current instance.
type Task struct {
	TaskSpec

	Remaining        int64 // work left in the current instance, in [0, ExecutionTime]
	AbsoluteDeadline int64 // arrival of the current instance + RelativeDeadline
	Preemptions      int64 // times the task lost the processor with work left
	Overruns         int64 // arrivals that superseded an unfinished instance
	Released         int64 // instances released so far

	queued bool
	qkey   nodeKey // key the task is stored under in the ready set
}

// NewTask creates a task whose instance 0 has arrived at time 0.
func NewTask(spec TaskSpec) *Task {
	t := &Task{TaskSpec: spec}
	t.Remaining = spec.ExecutionTime
	t.AbsoluteDeadline = spec.RelativeDeadline
	t.Released = 1
	return t
}

// arrivesAt reports whether a new instance arrives at now. Instance 0 is
// released by NewTask, so time 0 never counts.
func (t *Task) arrivesAt(now int64) bool {
	return now != 0 && now%t.Period == 0
}

// release starts a new instance at now, discarding whatever was left of the
// previous one.
func (t *Task) release(now int64) error {
	deadline, err := numeric.CheckedAdd(now, t.RelativeDeadline)
	if err != nil {
		return errors.Wrapf(err, "task %d: absolute deadline at %d", t.ID, now)
	}
	t.Remaining = t.ExecutionTime
	t.AbsoluteDeadline = deadline
	t.Released++
	return nil
}

// execute runs the task for one tick and reports whether the instance is done.
func (t *Task) execute(tick int64) bool {
	t.Remaining -= tick
	if t.Remaining < 0 {
		t.Remaining = 0
	}
	return t.Remaining == 0
}

func (t *Task) key() nodeKey {
	return nodeKey{deadline: t.AbsoluteDeadline, id: t.ID}
}

// Validate checks every spec and reports all problems at once. Each reported
// problem wraps ErrInvalidInput.
func Validate(specs []TaskSpec) error {
	if len(specs) == 0 {
		return errors.Wrap(ErrInvalidInput, "empty task set")
	}

	var err error
	seen := make(map[TaskID]int, len(specs))
	for i, s := range specs {
		if j, dup := seen[s.ID]; dup {
			err = multierr.Append(err, errors.Wrapf(ErrInvalidInput,
				"task %d: id already used by entry %d", s.ID, j))
		}
		seen[s.ID] = i

		if s.ExecutionTime <= 0 {
			err = multierr.Append(err, errors.Wrapf(ErrInvalidInput,
				"task %d: execution time %d must be positive", s.ID, s.ExecutionTime))
		}
		if s.Period <= 0 {
			err = multierr.Append(err, errors.Wrapf(ErrInvalidInput,
				"task %d: period %d must be positive", s.ID, s.Period))
		}
		if s.RelativeDeadline <= 0 {
			err = multierr.Append(err, errors.Wrapf(ErrInvalidInput,
				"task %d: deadline %d must be positive", s.ID, s.RelativeDeadline))
		}
	}
	return err
}
