package graphcalc

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config controls sampling, fallback and scheduling.
type Config struct {
	// Window is the initial viewport.
	Window Window
	// ImplicitTolerance is the accepted |lhs - rhs| for fallback points.
	ImplicitTolerance float64
	// ImplicitDowngrade divides the sample density for the fallback grid.
	ImplicitDowngrade float64
	// MaxAxisSamples caps the explicit samples along one axis. Wider
	// windows sample more coarsely.
	MaxAxisSamples int
	// MaxImplicitCells caps the points of the fallback grid.
	MaxImplicitCells int
	// EvalTimeout bounds one solve+sample job on the gate worker. Zero
	// disables the limit.
	EvalTimeout time.Duration
	// Blocking makes Engine.Frame wait for the first result of every
	// submission instead of reusing the previous curve.
	Blocking bool
}

func DefaultConfig() Config {
	return Config{
		Window:            DefaultWindow(),
		ImplicitTolerance: 0.1,
		ImplicitDowngrade: 10,
		MaxAxisSamples:    1 << 17,
		MaxImplicitCells:  1 << 22,
		Blocking:          true,
	}
}

func (c Config) Validate() error {
	if err := c.Window.Validate(); err != nil {
		return err
	}
	if !(c.ImplicitTolerance > 0) {
		return fmt.Errorf("graphcalc: implicit tolerance must be positive, got %g", c.ImplicitTolerance)
	}
	if !(c.ImplicitDowngrade >= 1) {
		return fmt.Errorf("graphcalc: implicit downgrade must be at least 1, got %g", c.ImplicitDowngrade)
	}
	if c.MaxAxisSamples < 2 || c.MaxAxisSamples > MaxAxisValues {
		return fmt.Errorf("graphcalc: max axis samples must be in [2, %d], got %d", MaxAxisValues, c.MaxAxisSamples)
	}
	if c.MaxImplicitCells < 4 {
		return fmt.Errorf("graphcalc: max implicit cells must be at least 4, got %d", c.MaxImplicitCells)
	}
	if c.EvalTimeout < 0 {
		return errors.New("graphcalc: eval timeout must not be negative")
	}
	return nil
}

// RegisterFlags binds c to fs. Values already in c are the defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.Var((*intervalFlag)(&c.Window.Domain), "domain", "horizontal bounds as min,max")
	fs.Var((*intervalFlag)(&c.Window.Range), "range", "vertical bounds as min,max")
	fs.Var((*scaleFlag)(&c.Window), "scale", "pixels per unit, either one value or sx,sy")
	fs.Float64Var(&c.ImplicitTolerance, "tolerance", c.ImplicitTolerance, "accepted residual for implicit fallback points")
	fs.Float64Var(&c.ImplicitDowngrade, "downgrade", c.ImplicitDowngrade, "density divisor for the implicit fallback grid")
	fs.IntVar(&c.MaxAxisSamples, "max-samples", c.MaxAxisSamples, "most explicit samples along one axis")
	fs.IntVar(&c.MaxImplicitCells, "max-cells", c.MaxImplicitCells, "most grid points for the implicit fallback")
	fs.DurationVar(&c.EvalTimeout, "timeout", c.EvalTimeout, "per-relation evaluation timeout (0 = none)")
	fs.BoolVar(&c.Blocking, "blocking", c.Blocking, "wait for each evaluation before drawing")
}

type intervalFlag Interval

func (f *intervalFlag) String() string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%d,%d", f.Min, f.Max)
}

func (f *intervalFlag) Set(s string) error {
	lo, hi, ok := strings.Cut(s, ",")
	if !ok {
		return fmt.Errorf("%w: want min,max, got %q", ErrInvalidWindow, s)
	}
	iv, err := ParseBounds(lo, hi)
	if err != nil {
		return err
	}
	*f = intervalFlag(iv)
	return nil
}

type scaleFlag Window

func (f *scaleFlag) String() string {
	if f == nil {
		return ""
	}
	if f.ScaleX == f.ScaleY {
		return strconv.FormatFloat(f.ScaleX, 'g', -1, 64)
	}
	return fmt.Sprintf("%g,%g", f.ScaleX, f.ScaleY)
}

func (f *scaleFlag) Set(s string) error {
	xs, ys, pair := strings.Cut(s, ",")
	sx, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return fmt.Errorf("scale %q: %w", s, err)
	}
	sy := sx
	if pair {
		if sy, err = strconv.ParseFloat(strings.TrimSpace(ys), 64); err != nil {
			return fmt.Errorf("scale %q: %w", s, err)
		}
	}
	*f = scaleFlag(Window(*f).WithScale(sx, sy))
	return nil
}
