package sched

import (
	"github.com/pkg/errors"

	"rtsim/internal/numeric"
)

// TickMode selects how the engine derives its step size.
type TickMode string

const (
	// TickGCD steps by the GCD of all execution times.
	TickGCD TickMode = "gcd"
	// TickExact steps by the GCD of all execution times and periods, so no
	// arrival falls between two ticks.
	TickExact TickMode = "exact"
	// TickUnit steps by one input unit (the scale factor).
	TickUnit TickMode = "unit"
	// TickHalf steps by half an input unit; the scale factor must be even.
	TickHalf TickMode = "half"
)

// Valid reports whether m is a known mode.
func (m TickMode) Valid() bool {
	switch m {
	case TickGCD, TickExact, TickUnit, TickHalf:
		return true
	}
	return false
}

// ResolveTick returns the step size for specs. A positive fixed tick wins over
// the mode. scale is the number of integer units per input unit and only
// matters for TickUnit and TickHalf.
func ResolveTick(mode TickMode, fixed, scale int64, specs []TaskSpec) (int64, error) {
	if fixed > 0 {
		return fixed, nil
	}
	if fixed < 0 {
		return 0, errors.Wrapf(ErrInvalidInput, "tick %d must be positive", fixed)
	}
	if len(specs) == 0 {
		return 0, errors.Wrap(ErrInvalidInput, "tick of an empty task set")
	}

	switch mode {
	case TickGCD, "":
		g := int64(0)
		for _, s := range specs {
			g = numeric.GCD(g, s.ExecutionTime)
		}
		return nonZero(g)
	case TickExact:
		g := int64(0)
		for _, s := range specs {
			g = numeric.GCDAll(g, s.ExecutionTime, s.Period)
		}
		return nonZero(g)
	case TickUnit:
		if scale <= 0 {
			return 0, errors.Wrapf(ErrInvalidInput, "scale %d must be positive", scale)
		}
		return scale, nil
	case TickHalf:
		if scale <= 0 || scale%2 != 0 {
			return 0, errors.Wrapf(ErrInvalidInput, "half tick needs an even scale, got %d", scale)
		}
		return scale / 2, nil
	default:
		return 0, errors.Wrapf(ErrInvalidInput, "unknown tick mode %q", mode)
	}
}

func nonZero(g int64) (int64, error) {
	if g <= 0 {
		return 0, errors.Wrap(ErrInvalidInput, "execution times must be positive")
	}
	return g, nil
}
