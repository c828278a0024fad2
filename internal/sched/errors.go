package sched

import "github.com/pkg/errors"

var (
	// ErrInvalidInput marks a task set (or tick) the engine refuses to run.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDeadlineMiss is returned in strict mode when an instance is still
	// unfinished at the arrival of the next one.
	ErrDeadlineMiss = errors.New("deadline miss")
	// ErrAlreadyRan is returned by Scheduler.Run on a second call.
	ErrAlreadyRan = errors.New("scheduler already ran")
)
