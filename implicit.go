package graphcalc

import (
	"context"
	"fmt"
	"math"

	"github.com/njchilds90/graphcalc/symbolic"
)

// SampleImplicit scans a grid over the window at density d and keeps the
// points where |lhs - rhs| <= tol. Any failure, a panic included, gives an
// empty set; only ctx cancellation is reported.
func SampleImplicit(ctx context.Context, eq *symbolic.Equation, w Window, d Density, tol float64) (pts []Point, err error) {
	log := Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Debug("graphcalc: implicit sampling panic", "equation", eq.String(), "panic", fmt.Sprint(r))
			pts, err = nil, nil
		}
	}()
	residual := symbolic.RealRoots(eq.Residual())
	f, cerr := symbolic.Compile(residual, "x", "y")
	if cerr != nil {
		log.Debug("graphcalc: implicit compile failed", "equation", eq.String(), "error", cerr)
		return nil, nil
	}
	xs := AxisValues(float64(w.Domain.Min), float64(w.Domain.Max), d.X)
	ys := AxisValues(float64(w.Range.Min), float64(w.Range.Max), d.Y)
	for _, xv := range xs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, yv := range ys {
			r := f(xv, yv)
			if !math.IsNaN(r) && math.Abs(r) <= tol {
				pts = append(pts, Point{X: xv, Y: yv})
			}
		}
	}
	return pts, nil
}
