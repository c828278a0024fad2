package sched

import (
	"math/big"

	"github.com/pkg/errors"
)

var one = big.NewRat(1, 1)

// Utilization returns sum(ExecutionTime/Period) as an exact rational.
func Utilization(specs []TaskSpec) (*big.Rat, error) {
	if len(specs) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "utilization of an empty task set")
	}
	u := new(big.Rat)
	for _, s := range specs {
		if s.Period <= 0 {
			return nil, errors.Wrapf(ErrInvalidInput, "task %d: period %d must be positive", s.ID, s.Period)
		}
		u.Add(u, big.NewRat(s.ExecutionTime, s.Period))
	}
	return u, nil
}

// Schedulable is the total utilization bound test: true iff utilization <= 1.
// It is only a sufficient check; deadlines shorter than periods are not
// taken into account.
func Schedulable(specs []TaskSpec) (bool, error) {
	u, err := Utilization(specs)
	if err != nil {
		return false, err
	}
	return u.Cmp(one) <= 0, nil
}
