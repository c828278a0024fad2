// Package taskset reads task descriptors from comma-separated text and writes
// simulation reports back out.
//
// Input has one task per line, "execution_time,period,deadline". Values may
// be decimal; every value of a set is scaled by the same power of ten so all
// of them become exact integers. Blank lines and lines starting with '#' are
// ignored.
package taskset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"rtsim/internal/numeric"
	"rtsim/internal/sched"
)

// Set is a parsed task set.
type Set struct {
	Specs []sched.TaskSpec
	Scale int64 // integer units per input unit
}

type readOptions struct {
	evenScale bool
}

// ReadOption configures Read.
type ReadOption func(*readOptions)

// WithEvenScale doubles an odd scale factor so half a unit is still an
// integer. Needed for the half tick mode.
func WithEvenScale() ReadOption {
	return func(o *readOptions) { o.evenScale = true }
}

// ReadFile reads a task set from path.
func ReadFile(path string, opts ...ReadOption) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open task set")
	}
	defer f.Close()

	set, err := Read(f, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return set, nil
}

// row is one task line before scaling.
type row struct {
	line   int
	fields [3]decimal
}

// Read parses a task set. IDs follow the order of the task lines, from 0.
func Read(r io.Reader, opts ...ReadOption) (*Set, error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}

	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	// first pass: parse and find the widest fraction
	var (
		rows     []row
		decimals int
		errs     error
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(sched.ErrInvalidInput, err.Error())
		}
		line, _ := cr.FieldPos(0)

		var rw row
		rw.line = line
		for i, field := range rec {
			d, err := parseDecimal(field)
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(sched.ErrInvalidInput, "line %d: %v", line, err))
				continue
			}
			if d.frac > decimals {
				decimals = d.frac
			}
			rw.fields[i] = d
		}
		rows = append(rows, rw)
	}
	if errs != nil {
		return nil, errs
	}
	if len(rows) == 0 {
		return nil, errors.Wrap(sched.ErrInvalidInput, "no tasks")
	}

	scale, err := pow10(decimals)
	if err != nil {
		return nil, err
	}
	mult := int64(1)
	if o.evenScale && scale%2 != 0 {
		mult = 2
		scale *= 2
	}

	// second pass: scale to integers
	set := &Set{Scale: scale, Specs: make([]sched.TaskSpec, 0, len(rows))}
	for id, rw := range rows {
		var vals [3]int64
		for i, d := range rw.fields {
			v, err := d.scaled(decimals)
			if err == nil {
				v, err = numeric.CheckedMul(v, mult)
			}
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "line %d", rw.line))
				continue
			}
			if v <= 0 {
				errs = multierr.Append(errs, errors.Wrapf(sched.ErrInvalidInput,
					"line %d: %s must be positive, got %s", rw.line, fieldNames[i], d))
			}
			vals[i] = v
		}
		set.Specs = append(set.Specs, sched.TaskSpec{
			ID:               sched.TaskID(id),
			ExecutionTime:    vals[0],
			Period:           vals[1],
			RelativeDeadline: vals[2],
		})
	}
	if errs != nil {
		return nil, errs
	}
	return set, nil
}

var fieldNames = [3]string{"execution time", "period", "deadline"}

// WriteReport prints "1" and the comma-joined preemption counts for a
// schedulable set, "0" and an empty line otherwise.
func WriteReport(w io.Writer, rep *sched.Report) error {
	if !rep.Schedulable {
		_, err := io.WriteString(w, "0\n\n")
		return err
	}
	counts := make([]string, len(rep.Preemptions))
	for i, c := range rep.Preemptions {
		counts[i] = strconv.FormatInt(c, 10)
	}
	_, err := fmt.Fprintf(w, "1\n%s\n", strings.Join(counts, ","))
	return err
}

// decimal is a base-10 number kept as text so scaling is exact.
type decimal struct {
	neg    bool
	digits string // integer and fraction digits, no point
	frac   int    // number of fraction digits
}

func (d decimal) String() string {
	s := d.digits
	if d.frac > 0 {
		s = s[:len(s)-d.frac] + "." + s[len(s)-d.frac:]
	}
	if d.neg {
		s = "-" + s
	}
	return s
}

func parseDecimal(s string) (decimal, error) {
	var d decimal
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "-"):
		d.neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if (intPart == "" && fracPart == "") || !allDigits(intPart) || !allDigits(fracPart) {
		return d, errors.Errorf("%q is not a number", s)
	}
	fracPart = strings.TrimRight(fracPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	d.digits = intPart + fracPart
	d.frac = len(fracPart)
	return d, nil
}

// scaled returns d * 10^decimals; decimals must be >= d.frac.
func (d decimal) scaled(decimals int) (int64, error) {
	digits := d.digits + strings.Repeat("0", decimals-d.frac)
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(numeric.ErrOverflow, "scale %s by 10^%d", d, decimals)
	}
	if d.neg {
		v = -v
	}
	return v, nil
}

func pow10(n int) (int64, error) {
	p := int64(1)
	for i := 0; i < n; i++ {
		var err error
		if p, err = numeric.CheckedMul(p, 10); err != nil {
			return 0, errors.Wrapf(err, "scale factor 10^%d", n)
		}
	}
	return p, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
