package graphcalc

import "math"

// Density is the sample count per math unit along each axis.
type Density struct {
	X, Y float64
}

// minImplicitDensity keeps the fallback grid from collapsing on wide views.
const minImplicitDensity = 0.1

// Resolution picks the per-axis sample density for the given spans. Wider
// spans sample more coarsely; each axis is independent. A range of exactly
// five units still gets the finest tier.
func Resolution(domainSpan, rangeSpan float64) Density {
	return Density{
		X: axisDensity(domainSpan, domainSpan >= 10),
		Y: axisDensity(rangeSpan, rangeSpan > 5),
	}
}

func axisDensity(span float64, coarse bool) float64 {
	switch {
	case span >= 1000:
		return 1
	case span >= 100:
		return 10
	case coarse:
		return 100
	}
	return 1000
}

// Downgrade divides both densities by factor, flooring at 0.1 per unit.
func (d Density) Downgrade(factor float64) Density {
	if factor <= 1 {
		return d
	}
	return Density{
		X: math.Max(d.X/factor, minImplicitDensity),
		Y: math.Max(d.Y/factor, minImplicitDensity),
	}
}

// Limit lowers each density so that sampling an axis of the given span
// takes at most maxPerAxis values.
func (d Density) Limit(domainSpan, rangeSpan float64, maxPerAxis int) Density {
	return Density{
		X: limitAxis(d.X, domainSpan, maxPerAxis),
		Y: limitAxis(d.Y, rangeSpan, maxPerAxis),
	}
}

func limitAxis(d, span float64, maxValues int) float64 {
	if maxValues < 2 {
		maxValues = 2
	}
	if span > 0 && axisCount(span, d) > float64(maxValues) {
		return float64(maxValues-1) / span
	}
	return d
}

// LimitCells scales both densities down by the same factor until a grid
// over the given spans has at most maxCells points.
func (d Density) LimitCells(domainSpan, rangeSpan float64, maxCells int) Density {
	cells := func(d Density) float64 { return axisCount(domainSpan, d.X) * axisCount(rangeSpan, d.Y) }
	c := cells(d)
	if c <= float64(maxCells) {
		return d
	}
	f := math.Sqrt(float64(maxCells) / c)
	d = Density{X: d.X * f, Y: d.Y * f}
	for i := 0; i < 64 && cells(d) > float64(maxCells); i++ {
		d = Density{X: d.X * 0.95, Y: d.Y * 0.95}
	}
	return d
}

// axisCount is the number of values AxisValues yields, before the
// MaxAxisValues ceiling.
func axisCount(span, density float64) float64 {
	return math.Max(math.Round(span*density)+1, 2)
}

// MaxAxisValues is the most values AxisValues returns for any density.
const MaxAxisValues = 1 << 22

// AxisValues returns the inclusive evenly spaced samples over [lo, hi]:
// n = round(span*density)+1 values, the i-th at lo + i*span/(n-1). n never
// exceeds MaxAxisValues.
func AxisValues(lo, hi, density float64) []float64 {
	span := hi - lo
	if span <= 0 || density <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return nil
	}
	n := int(math.Min(axisCount(span, density), MaxAxisValues))
	out := make([]float64, n)
	last := float64(n - 1)
	for i := range out {
		out[i] = lo + float64(i)*span/last
	}
	out[n-1] = hi
	return out
}
