package numeric

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCD(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{12, 18, 6},
		{18, 12, 6},
		{7, 0, 7},
		{0, 7, 7},
		{0, 0, 0},
		{-12, 18, 6},
		{17, 5, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GCD(tt.a, tt.b), "gcd(%d, %d)", tt.a, tt.b)
	}
}

func TestLCM(t *testing.T) {
	l, err := LCM(4, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(20), l)

	l, err = LCM(6, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(12), l)

	l, err = LCM(-3, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(12), l)

	l, err = LCM(9, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), l)

	_, err = LCM(0, 0)
	assert.Equal(t, ErrZeroOperand, err)
}

func TestLCMOverflow(t *testing.T) {
	_, err := LCM(math.MaxInt64, math.MaxInt64-1)
	require.Error(t, err)
	assert.Equal(t, ErrOverflow, errors.Cause(err))

	_, err = LCM(math.MinInt64, 2)
	assert.Equal(t, ErrOverflow, errors.Cause(err))
}

func TestFolds(t *testing.T) {
	assert.Equal(t, int64(2), GCDAll(4, 6, 10))
	assert.Equal(t, int64(0), GCDAll())

	l, err := LCMAll(4, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(20), l)

	l, err = LCMAll(7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), l)

	_, err = LCMAll()
	assert.Equal(t, ErrZeroOperand, err)

	// large coprime periods blow past int64
	_, err = LCMAll(1_000_000_007, 1_000_000_009, 998_244_353)
	assert.Equal(t, ErrOverflow, errors.Cause(err))
}

func TestChecked(t *testing.T) {
	s, err := CheckedAdd(3, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(7), s)

	_, err = CheckedAdd(math.MaxInt64, 1)
	assert.Equal(t, ErrOverflow, errors.Cause(err))
	_, err = CheckedAdd(math.MinInt64, -1)
	assert.Equal(t, ErrOverflow, errors.Cause(err))

	p, err := CheckedMul(-3, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(-12), p)

	_, err = CheckedMul(math.MaxInt64/2+1, 2)
	assert.Equal(t, ErrOverflow, errors.Cause(err))
	_, err = CheckedMul(-1, math.MinInt64)
	assert.Equal(t, ErrOverflow, errors.Cause(err))
}
