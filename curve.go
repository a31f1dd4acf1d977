package graphcalc

import (
	"context"
)

// SampledCurve is the math-space geometry of one relation for one set of
// bounds: polylines from explicit branches, or fallback points.
type SampledCurve struct {
	RelationID    int
	Text          string
	Bounds        Bounds
	Polylines     []Polyline
	Points        []Point
	Axis          Axis
	LowResolution bool
	SawOutOfRange bool
}

// Empty reports whether nothing can be drawn.
func (c SampledCurve) Empty() bool { return len(c.Polylines) == 0 && len(c.Points) == 0 }

// SampleCount is the total number of vertices and points.
func (c SampledCurve) SampleCount() int {
	n := len(c.Points)
	for _, l := range c.Polylines {
		n += len(l)
	}
	return n
}

// Compute runs the sampling pipeline for rel over w: explicit branches at
// the resolution for w, then the implicit fallback when nothing was drawn
// and nothing left the viewport. The only error is ctx's.
func Compute(ctx context.Context, rel *Relation, w Window, cfg Config) (SampledCurve, error) {
	log := Logger()
	curve := SampledCurve{RelationID: rel.ID, Text: rel.Text, Bounds: w.Bounds()}
	ds, rs := w.Domain.Span(), w.Range.Span()
	density := Resolution(ds, rs).Limit(ds, rs, cfg.MaxAxisSamples)

	exprs, axis, err := rel.Branches(ctx)
	if err != nil {
		return SampledCurve{}, err
	}
	curve.Axis = axis
	branches := make([]Branch, 0, len(exprs))
	for _, e := range exprs {
		b, err := CompileBranch(e, axis)
		if err != nil {
			log.Debug("graphcalc: branch not compilable", "relation", rel.Text, "branch", e.String(), "error", err)
			continue
		}
		branches = append(branches, b)
	}

	if len(branches) > 0 {
		var values []float64
		var lo, hi float64
		if axis == AxisX {
			values = AxisValues(float64(w.Domain.Min), float64(w.Domain.Max), density.X)
			lo, hi = float64(w.Range.Min), float64(w.Range.Max)
		} else {
			values = AxisValues(float64(w.Range.Min), float64(w.Range.Max), density.Y)
			lo, hi = float64(w.Domain.Min), float64(w.Domain.Max)
		}
		lines, saw, err := SampleBranches(ctx, branches, values, lo, hi)
		if err != nil {
			return SampledCurve{}, err
		}
		curve.Polylines, curve.SawOutOfRange = lines, saw
	}

	if len(curve.Polylines) == 0 && !curve.SawOutOfRange && !rel.Trivial() {
		pts, err := SampleImplicit(ctx, rel.Equation, w, density.Downgrade(cfg.ImplicitDowngrade).LimitCells(ds, rs, cfg.MaxImplicitCells), cfg.ImplicitTolerance)
		if err != nil {
			return SampledCurve{}, err
		}
		curve.Points = pts
		curve.LowResolution = true
		log.Warn("graphcalc: implicit fallback", "relation", rel.Text, "points", len(pts))
	}
	log.Debug("graphcalc: sampled", "relation", rel.Text, "bounds", curve.Bounds.String(),
		"polylines", len(curve.Polylines), "points", len(curve.Points))
	return curve, nil
}
