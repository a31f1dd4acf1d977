package graphcalc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scale bounds in pixels per unit.
const (
	MinScale     = 1.0
	MaxScale     = 400.0
	DefaultScale = 25.0
)

// MaxBound is the largest magnitude a window edge may have.
const MaxBound = math.MaxInt32

// ErrInvalidWindow is returned for bounds with Min >= Max or text that is
// not an integer.
var ErrInvalidWindow = errors.New("graphcalc: invalid window")

// Interval is an inclusive integer axis extent.
type Interval struct {
	Min, Max int
}

func (i Interval) Span() float64 { return float64(i.Max) - float64(i.Min) }
func (i Interval) Valid() bool   { return i.Min < i.Max }

// inBounds reports whether both edges lie within ±MaxBound.
func (i Interval) inBounds() bool {
	return i.Min >= -MaxBound && i.Max <= MaxBound
}
func (i Interval) String() string {
	return fmt.Sprintf("(%d, %d)", i.Min, i.Max)
}

// Contains reports whether v lies within the closed interval.
func (i Interval) Contains(v float64) bool {
	return v >= float64(i.Min) && v <= float64(i.Max)
}

// Bounds is the part of a window that determines sampled geometry. Scale and
// pan are projection concerns and never change sampled values.
type Bounds struct {
	Domain, Range Interval
}

func (b Bounds) String() string { return "x" + b.Domain.String() + " y" + b.Range.String() }

// Window is the visible math-space rectangle plus per-axis pixel scale.
type Window struct {
	Domain, Range  Interval
	ScaleX, ScaleY float64
}

// DefaultWindow is (-10, 10) on both axes at the default scale.
func DefaultWindow() Window {
	return Window{
		Domain: Interval{-10, 10},
		Range:  Interval{-10, 10},
		ScaleX: DefaultScale,
		ScaleY: DefaultScale,
	}
}

func (w Window) Bounds() Bounds { return Bounds{Domain: w.Domain, Range: w.Range} }

// Validate checks Min < Max on both axes, edges within ±MaxBound and scales
// within range.
func (w Window) Validate() error {
	if !w.Domain.Valid() {
		return fmt.Errorf("%w: domain %s: min must be less than max", ErrInvalidWindow, w.Domain)
	}
	if !w.Range.Valid() {
		return fmt.Errorf("%w: range %s: min must be less than max", ErrInvalidWindow, w.Range)
	}
	if !w.Domain.inBounds() || !w.Range.inBounds() {
		return fmt.Errorf("%w: bounds %s outside ±%d", ErrInvalidWindow, w.Bounds(), MaxBound)
	}
	if w.ScaleX < MinScale || w.ScaleX > MaxScale || w.ScaleY < MinScale || w.ScaleY > MaxScale {
		return fmt.Errorf("%w: scale (%g, %g) outside [%g, %g]", ErrInvalidWindow, w.ScaleX, w.ScaleY, MinScale, MaxScale)
	}
	return nil
}

// WithScale returns w with both scales clamped to [MinScale, MaxScale].
func (w Window) WithScale(sx, sy float64) Window {
	w.ScaleX = clampScale(sx)
	w.ScaleY = clampScale(sy)
	return w
}

func clampScale(s float64) float64 {
	if math.IsNaN(s) {
		return DefaultScale
	}
	return math.Max(MinScale, math.Min(MaxScale, s))
}

// ParseBounds parses the text of a min and max box into an interval.
func ParseBounds(minText, maxText string) (Interval, error) {
	lo, err := strconv.Atoi(strings.TrimSpace(minText))
	if err != nil {
		return Interval{}, fmt.Errorf("%w: min %q is not an integer", ErrInvalidWindow, minText)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(maxText))
	if err != nil {
		return Interval{}, fmt.Errorf("%w: max %q is not an integer", ErrInvalidWindow, maxText)
	}
	iv := Interval{lo, hi}
	if !iv.Valid() {
		return Interval{}, fmt.Errorf("%w: %s: min must be less than max", ErrInvalidWindow, iv)
	}
	if !iv.inBounds() {
		return Interval{}, fmt.Errorf("%w: %s outside ±%d", ErrInvalidWindow, iv, MaxBound)
	}
	return iv, nil
}

// WindowTracker holds the last valid window. Rejected updates leave it
// unchanged so callers can restore their input boxes from Current.
type WindowTracker struct {
	current Window
}

func NewWindowTracker(w Window) (*WindowTracker, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &WindowTracker{current: w}, nil
}

func (t *WindowTracker) Current() Window { return t.current }

// Set replaces the bounds if both are valid. On error the previous window
// is returned along with it.
func (t *WindowTracker) Set(domain, rng Interval) (Window, error) {
	next := t.current
	next.Domain, next.Range = domain, rng
	if err := next.Validate(); err != nil {
		Logger().Debug("graphcalc: window rejected", "domain", domain, "range", rng, "error", err)
		return t.current, err
	}
	t.current = next
	return next, nil
}

// SetScale clamps and applies new scales. It never fails.
func (t *WindowTracker) SetScale(sx, sy float64) Window {
	t.current = t.current.WithScale(sx, sy)
	return t.current
}
