// Package numeric holds the exact integer helpers the simulator uses for
// hyperperiods, tick sizes and clock arithmetic. Nothing in here touches
// floating point.
package numeric

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrOverflow is returned when a result does not fit in an int64.
	ErrOverflow = errors.New("integer overflow")
	// ErrZeroOperand is returned by LCM when both operands are zero.
	ErrZeroOperand = errors.New("lcm of zero and zero is undefined")
)

// GCD returns the greatest common divisor of |a| and |b|. GCD(a, 0) = |a|.
func GCD(a, b int64) int64 {
	a, b = abs(a), abs(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns |a*b| / GCD(a, b) without forming the intermediate product.
func LCM(a, b int64) (int64, error) {
	if a == 0 && b == 0 {
		return 0, ErrZeroOperand
	}
	if a == math.MinInt64 || b == math.MinInt64 {
		return 0, errors.Wrapf(ErrOverflow, "lcm(%d, %d)", a, b)
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	l, err := CheckedMul(abs(a)/GCD(a, b), abs(b))
	if err != nil {
		return 0, errors.Wrapf(err, "lcm(%d, %d)", a, b)
	}
	return l, nil
}

// GCDAll folds GCD over xs. An empty input yields 0.
func GCDAll(xs ...int64) int64 {
	var g int64
	for _, x := range xs {
		g = GCD(g, x)
	}
	return g
}

// LCMAll folds LCM left to right over xs. An empty input is ErrZeroOperand.
func LCMAll(xs ...int64) (int64, error) {
	if len(xs) == 0 {
		return 0, ErrZeroOperand
	}
	l := abs(xs[0])
	for _, x := range xs[1:] {
		var err error
		if l, err = LCM(l, x); err != nil {
			return 0, err
		}
	}
	return l, nil
}

// CheckedAdd returns a+b or ErrOverflow.
func CheckedAdd(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, errors.Wrapf(ErrOverflow, "%d + %d", a, b)
	}
	return a + b, nil
}

// CheckedMul returns a*b or ErrOverflow.
func CheckedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || c/b != a {
		return 0, errors.Wrapf(ErrOverflow, "%d * %d", a, b)
	}
	return c, nil
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
