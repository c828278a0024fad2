package sched

import (
	"github.com/pkg/errors"

	"rtsim/internal/numeric"
)

// Hyperperiod returns the LCM of all periods, folded left to right.
func Hyperperiod(specs []TaskSpec) (int64, error) {
	if len(specs) == 0 {
		return 0, errors.Wrap(ErrInvalidInput, "hyperperiod of an empty task set")
	}
	periods := make([]int64, len(specs))
	for i, s := range specs {
		periods[i] = s.Period
	}
	h, err := numeric.LCMAll(periods...)
	if err != nil {
		return 0, errors.Wrap(err, "hyperperiod")
	}
	return h, nil
}
