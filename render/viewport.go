// Package render turns engine frames into pixels: a pannable viewport
// projection, a gg raster preview and gonum/plot exports.
package render

import (
	"math"

	"github.com/njchilds90/graphcalc"
)

// Viewport projects math space onto a Width x Height pixel surface. The
// full plotting surface is (span+1)*5*scale pixels along each axis, centred
// on the origin; OffsetX and OffsetY pan the visible part across it.
type Viewport struct {
	Width, Height    int
	Window           graphcalc.Window
	OffsetX, OffsetY float64
}

func NewViewport(width, height int, w graphcalc.Window) Viewport {
	return Viewport{Width: width, Height: height, Window: w}
}

// PlottingSize is the pixel size of the whole pannable surface.
func (v Viewport) PlottingSize() (w, h float64) {
	w = (v.Window.Domain.Span() + 1) * 5 * v.Window.ScaleX
	h = (v.Window.Range.Span() + 1) * 5 * v.Window.ScaleY
	return w, h
}

// Project maps a math-space point to pixel coordinates, y growing down.
func (v Viewport) Project(p graphcalc.Point) (px, py float64) {
	px = float64(v.Width)/2 + v.OffsetX + v.Window.ScaleX*p.X
	py = float64(v.Height)/2 + v.OffsetY - v.Window.ScaleY*p.Y
	return px, py
}

// Unproject is the inverse of Project.
func (v Viewport) Unproject(px, py float64) graphcalc.Point {
	return graphcalc.Point{
		X: (px - float64(v.Width)/2 - v.OffsetX) / v.Window.ScaleX,
		Y: (float64(v.Height)/2 + v.OffsetY - py) / v.Window.ScaleY,
	}
}

// Visible reports whether a pixel coordinate lies on the surface.
func (v Viewport) Visible(px, py float64) bool {
	return px >= 0 && px <= float64(v.Width) && py >= 0 && py <= float64(v.Height)
}

// Pan moves the view by dx, dy pixels. Each axis is applied only if the
// view stays within the plotting surface; it reports whether either moved.
func (v *Viewport) Pan(dx, dy float64) bool {
	pw, ph := v.PlottingSize()
	moved := false
	if limit := pw/2 - float64(v.Width)/2; dx != 0 && abs(v.OffsetX+dx) <= limit {
		v.OffsetX += dx
		moved = true
	}
	if limit := ph/2 - float64(v.Height)/2; dy != 0 && abs(v.OffsetY+dy) <= limit {
		v.OffsetY += dy
		moved = true
	}
	return moved
}

// Reset recentres the origin.
func (v *Viewport) Reset() { v.OffsetX, v.OffsetY = 0, 0 }

// Tick is an integer axis label position in pixels.
type Tick struct {
	Axis   graphcalc.Axis
	Value  int
	PX, PY float64
}

// Ticks returns a tick for every nonzero integer of the domain (on the x
// axis) and range (on the y axis) that projects inside the surface. Only
// the integers under the surface are visited.
func (v Viewport) Ticks() []Tick {
	var ticks []Tick
	left := v.Unproject(0, 0)
	right := v.Unproject(float64(v.Width), float64(v.Height))
	lo, hi := visibleInts(v.Window.Domain, left.X, right.X)
	for n := lo; n <= hi; n++ {
		if n == 0 {
			continue
		}
		px, py := v.Project(graphcalc.Point{X: float64(n)})
		if v.Visible(px, py) {
			ticks = append(ticks, Tick{Axis: graphcalc.AxisX, Value: n, PX: px, PY: py})
		}
	}
	lo, hi = visibleInts(v.Window.Range, right.Y, left.Y)
	for n := lo; n <= hi; n++ {
		if n == 0 {
			continue
		}
		px, py := v.Project(graphcalc.Point{Y: float64(n)})
		if v.Visible(px, py) {
			ticks = append(ticks, Tick{Axis: graphcalc.AxisY, Value: n, PX: px, PY: py})
		}
	}
	return ticks
}

// visibleInts clips iv to the integers within [a, b].
func visibleInts(iv graphcalc.Interval, a, b float64) (lo, hi int) {
	lo, hi = iv.Min, iv.Max
	if math.Ceil(a) > float64(hi) || math.Floor(b) < float64(lo) {
		return 1, 0
	}
	if c := math.Ceil(a); c > float64(lo) {
		lo = int(c)
	}
	if f := math.Floor(b); f < float64(hi) {
		hi = int(f)
	}
	return lo, hi
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
