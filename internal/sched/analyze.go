package sched

import (
	"math/big"

	"github.com/pkg/errors"
)

// Report is the outcome of Analyze.
type Report struct {
	Schedulable bool
	Utilization *big.Rat
	Hyperperiod int64
	Tick        int64   // zero when the set was not simulated
	Preemptions []int64 // nil when not schedulable, input order otherwise
	Overruns    []int64 // nil when not schedulable
}

// Analyze validates specs, computes the hyperperiod and the utilization bound
// and, if the set passes, simulates one hyperperiod. scale is the number of
// integer units per input unit; it only matters for the unit and half tick
// modes.
func Analyze(specs []TaskSpec, scale int64, cfg Config, opts ...Option) (*Report, error) {
	if err := Validate(specs); err != nil {
		return nil, err
	}
	h, err := Hyperperiod(specs)
	if err != nil {
		return nil, err
	}
	u, err := Utilization(specs)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Schedulable: u.Cmp(one) <= 0,
		Utilization: u,
		Hyperperiod: h,
	}
	if !rep.Schedulable {
		return rep, nil
	}

	tick, err := ResolveTick(cfg.TickMode, cfg.Tick, scale, specs)
	if err != nil {
		return nil, err
	}
	s, err := New(specs, Params{Hyperperiod: h, Tick: tick, Strict: cfg.Strict}, opts...)
	if err != nil {
		return nil, err
	}
	counts, err := s.Run()
	if err != nil {
		return nil, errors.Wrap(err, "simulate")
	}

	rep.Tick = tick
	rep.Preemptions = counts
	rep.Overruns = s.Overruns()
	return rep, nil
}
