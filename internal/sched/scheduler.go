// internal/sched/scheduler.go

package sched

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/uber-go/tally/v4"
)

// Params fixes the horizon and the step of one run.
type Params struct {
	Hyperperiod int64 // run stops once the clock reaches it
	Tick        int64 // work done per dispatch and clock step
	Strict      bool  // overlapping instances fail with ErrDeadlineMiss
}

// Scheduler is a single-threaded discrete-event simulator of preemptive
// deadline-ordered scheduling on one processor.
type Scheduler struct {
	strict bool
	clock  *TickClock         // virtual clock
	rbt    *redblacktree.Tree // ready set ordered by absolute deadline and task ID
	tasks  []*Task            // arena, in input order
	active *Task              // task that held the processor during the last tick
	ran    bool

	// logging-related
	log       zerolog.Logger
	metrics   *metrics
	observers []func(StatusEvent)
	csvWriter *csv.Writer
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger events are written to at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithScope reports run counters on scope.
func WithScope(scope tally.Scope) Option {
	return func(s *Scheduler) { s.metrics = newMetrics(scope) }
}

// WithObserver registers fn to receive every event, in order.
func WithObserver(fn func(StatusEvent)) Option {
	return func(s *Scheduler) { s.observers = append(s.observers, fn) }
}

// WithCSVTrace writes one CSV record per event to w.
func WithCSVTrace(w io.Writer) Option {
	return func(s *Scheduler) {
		s.csvWriter = csv.NewWriter(w)
		// write header
		s.csvWriter.Write([]string{"time", "tick", "event", "task_id", "remaining", "deadline"})
	}
}

// New creates a Scheduler over its own copy of specs. Every task's first
// instance is released at time 0.
func New(specs []TaskSpec, p Params, opts ...Option) (*Scheduler, error) {
	if err := Validate(specs); err != nil {
		return nil, err
	}
	if p.Tick <= 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "tick %d must be positive", p.Tick)
	}
	if p.Hyperperiod <= 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "hyperperiod %d must be positive", p.Hyperperiod)
	}

	s := &Scheduler{
		strict:  p.Strict,
		clock:   NewTickClock(p.Tick, p.Hyperperiod),
		rbt:     redblacktree.NewWith(cmp),
		tasks:   make([]*Task, 0, len(specs)),
		log:     zerolog.Nop(),
		metrics: newMetrics(tally.NoopScope),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, spec := range specs {
		t := NewTask(spec)
		if t.Period%p.Tick != 0 {
			s.log.Warn().
				Uint64("task", uint64(t.ID)).
				Int64("period", t.Period).
				Int64("tick", p.Tick).
				Msg("period is not a multiple of the tick, some arrivals will be skipped")
		}
		s.tasks = append(s.tasks, t)
		s.enqueue(t)
	}
	return s, nil
}

// Run simulates one hyperperiod and returns the preemption count of every
// task in input order. It can only be called once.
func (s *Scheduler) Run() ([]int64, error) {
	if s.ran {
		return nil, ErrAlreadyRan
	}
	s.ran = true
	s.metrics.hyperperiod.Update(float64(s.clock.horizon))

	for _, t := range s.tasks {
		s.metrics.releases.Inc(1)
		s.emit(StatusRelease, t)
	}

	for !s.clock.Done() {
		err := s.step()
		if err == nil {
			err = errors.Wrap(s.clock.Advance(), "advance clock")
		}
		if err != nil {
			s.flushTrace()
			return nil, err
		}
	}

	if err := s.flushTrace(); err != nil {
		return nil, errors.Wrap(err, "write trace")
	}

	s.log.Debug().
		Int64("hyperperiod", s.clock.horizon).
		Int64("tick", s.clock.Tick()).
		Int64("ticks", s.clock.Count()).
		Msg("simulation complete")
	return s.Preemptions(), nil
}

// step performs one tick: arrivals, requeue, dispatch, execute.
func (s *Scheduler) step() error {
	now := s.clock.Now()

	// 1) admit new instances
	for _, t := range s.tasks {
		if !t.arrivesAt(now) {
			continue
		}
		if err := s.release(t, now); err != nil {
			return err
		}
	}

	// 2) the task that ran last tick competes again with everything queued
	if s.active != nil && s.active.Remaining > 0 {
		s.enqueue(s.active)
	}

	// 3) idle case: nothing ready, the processor does nothing this tick
	node := s.rbt.Left()
	if node == nil {
		s.metrics.idleTicks.Inc(1)
		s.emit(StatusIdle, nil)
		return nil
	}

	next := node.Value.(*Task)
	s.dequeue(next)

	if prev := s.active; prev != next {
		if prev != nil && prev.Remaining > 0 {
			prev.Preemptions++
			s.metrics.preemptions.Inc(1)
			s.emit(StatusPreempt, prev)
		}
		s.metrics.dispatches.Inc(1)
		s.emit(StatusDispatch, next)
	}
	s.active = next

	// 4) run exactly one tick, 5) drop the task if it finished
	if next.execute(s.clock.Tick()) {
		s.emit(StatusFinish, next)
		s.active = nil
	}
	return nil
}

// release starts a new instance of t at now. An unfinished previous instance
// is either reported (strict) or superseded.
func (s *Scheduler) release(t *Task, now int64) error {
	if t.Remaining > 0 {
		if s.strict {
			return errors.Wrapf(ErrDeadlineMiss,
				"task %d: instance due at %d still had %d left at %d",
				t.ID, t.AbsoluteDeadline, t.Remaining, now)
		}
		t.Overruns++
		s.metrics.overruns.Inc(1)
		s.emit(StatusOverrun, t)
	}

	// The ready-set key snapshots the deadline, so take the task out before
	// the deadline moves.
	s.dequeue(t)
	if err := t.release(now); err != nil {
		return err
	}
	if t != s.active {
		s.enqueue(t)
	}
	s.metrics.releases.Inc(1)
	s.emit(StatusRelease, t)
	return nil
}

func (s *Scheduler) enqueue(t *Task) {
	if t.queued {
		return
	}
	t.qkey = t.key()
	t.queued = true
	s.rbt.Put(t.qkey, t)
}

func (s *Scheduler) dequeue(t *Task) {
	if !t.queued {
		return
	}
	s.rbt.Remove(t.qkey)
	t.queued = false
}

// Preemptions returns the preemption count of every task in input order.
func (s *Scheduler) Preemptions() []int64 {
	out := make([]int64, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Preemptions
	}
	return out
}

// Overruns returns the number of superseded instances of every task in input
// order. Always zero in strict mode.
func (s *Scheduler) Overruns() []int64 {
	out := make([]int64, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Overruns
	}
	return out
}

// Tasks returns a snapshot of the runtime state of every task.
func (s *Scheduler) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = *t
	}
	return out
}

func (s *Scheduler) flushTrace() error {
	if s.csvWriter == nil {
		return nil
	}
	s.csvWriter.Flush()
	return s.csvWriter.Error()
}

func (s *Scheduler) emit(kind StatusKind, t *Task) {
	ev := StatusEvent{
		Time: s.clock.Now(),
		Tick: s.clock.Count(),
		Kind: kind,
	}
	if t != nil {
		ev.TaskID = t.ID
		ev.Remaining = t.Remaining
		ev.Deadline = t.AbsoluteDeadline
	}
	s.handleEvent(ev, t != nil)
}

func (s *Scheduler) handleEvent(ev StatusEvent, hasTask bool) {
	for _, fn := range s.observers {
		fn(ev)
	}

	if e := s.log.Debug(); e.Enabled() {
		e = e.Int64("time", ev.Time).Str("event", ev.Kind.String())
		if hasTask {
			e = e.Uint64("task", uint64(ev.TaskID)).
				Int64("remaining", ev.Remaining).
				Int64("deadline", ev.Deadline)
		}
		e.Msg("sched")
	}

	// CSV output
	if s.csvWriter != nil {
		rec := []string{
			strconv.FormatInt(ev.Time, 10),
			strconv.FormatInt(ev.Tick, 10),
			ev.Kind.String(),
			"", "", "",
		}
		if hasTask {
			rec[3] = strconv.FormatUint(uint64(ev.TaskID), 10)
			rec[4] = strconv.FormatInt(ev.Remaining, 10)
			rec[5] = strconv.FormatInt(ev.Deadline, 10)
		}
		s.csvWriter.Write(rec)
	}
}

// nodeKey is used as a key in the red-black tree.
type nodeKey struct {
	deadline int64
	id       TaskID
}

// nodeKey implements the Comparable interface for red-black tree ordering.
func cmp(a, b any) int {
	ka, kb := a.(nodeKey), b.(nodeKey)
	switch {
	case ka.deadline < kb.deadline:
		return -1
	case ka.deadline > kb.deadline:
		return 1
	case ka.id < kb.id:
		return -1
	case ka.id > kb.id:
		return 1
	default:
		return 0
	}
}
