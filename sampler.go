package graphcalc

import (
	"context"
	"math"

	"github.com/njchilds90/graphcalc/symbolic"
)

// Point is a math-space coordinate.
type Point struct {
	X, Y float64
}

// Polyline is a contiguous run of valid samples, at least two long.
type Polyline []Point

// Axis names the independent variable of a set of branches.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// cancelCheckEvery is how many samples pass between context checks.
const cancelCheckEvery = 1024

// Branch is an explicit branch lowered for sampling.
type Branch struct {
	Expr      symbolic.Expr
	Indep     Axis
	eval      func(v float64) float64
	factorial bool
}

// CompileBranch lowers e, a function of the indep axis variable.
func CompileBranch(e symbolic.Expr, indep Axis) (Branch, error) {
	f, err := symbolic.Compile(e, "x", "y")
	if err != nil {
		return Branch{}, err
	}
	eval := func(v float64) float64 { return f(v, 0) }
	if indep == AxisY {
		eval = func(v float64) float64 { return f(0, v) }
	}
	return Branch{
		Expr:      e,
		Indep:     indep,
		eval:      eval,
		factorial: symbolic.HasFactorial(e),
	}, nil
}

func isNegativeInteger(v float64) bool {
	return v < 0 && v == math.Trunc(v)
}

// SampleBranch walks values through b. Dependent results outside [lo, hi]
// break the current run and set sawOutOfRange. Non-finite results and
// factorial poles also break it, without evaluating the latter. The only
// error is ctx's.
func SampleBranch(ctx context.Context, b Branch, values []float64, lo, hi float64) (lines []Polyline, sawOutOfRange bool, err error) {
	var open Polyline
	flush := func() {
		if len(open) >= 2 {
			lines = append(lines, open)
		}
		open = nil
	}
	for i, v := range values {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}
		}
		if b.factorial && isNegativeInteger(v) {
			flush()
			continue
		}
		r := b.eval(v)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			flush()
			continue
		}
		if r < lo || r > hi {
			sawOutOfRange = true
			flush()
			continue
		}
		if b.Indep == AxisX {
			open = append(open, Point{X: v, Y: r})
		} else {
			open = append(open, Point{X: r, Y: v})
		}
	}
	flush()
	return lines, sawOutOfRange, nil
}

// SampleBranches samples every branch over the same values.
func SampleBranches(ctx context.Context, branches []Branch, values []float64, lo, hi float64) ([]Polyline, bool, error) {
	var all []Polyline
	saw := false
	for _, b := range branches {
		lines, out, err := SampleBranch(ctx, b, values, lo, hi)
		if err != nil {
			return nil, false, err
		}
		all = append(all, lines...)
		saw = saw || out
	}
	return all, saw, nil
}
