package graphcalc

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/njchilds90/graphcalc/symbolic"
)

var (
	ErrEmptyRelation = errors.New("graphcalc: empty relation")
	ErrTooManyEquals = errors.New("graphcalc: more than one '='")
	ErrNoRelation    = errors.New("graphcalc: no such relation")
)

// RelationError reports text that could not be turned into a Relation.
type RelationError struct {
	Text string
	Err  error
}

func (e *RelationError) Error() string {
	return fmt.Sprintf("invalid relation %q: %v", e.Text, e.Err)
}

func (e *RelationError) Unwrap() error { return e.Err }

// Demo relations shown on start-up.
const (
	SquareWave = "y = (4/pi)*sin(pi*x)+(4/pi)*(1/3)*sin(3*pi*x)+(4/pi)*(1/5)*sin(5*pi*x)+(4/pi)*(1/7)*sin(7*pi*x)+(4/pi)*(1/9)*sin(9*pi*x)"
	UglyChaos  = "sin(cos(tan(x*y))) = sin(cos(tan(x)))"
)

// Relation is a parsed equality between x and y. It is immutable once
// returned by ParseRelation; the registry hands out copies carrying an ID,
// and the copies share one solution.
type Relation struct {
	ID       int
	Text     string
	LHSText  string
	RHSText  string
	Equation *symbolic.Equation
	Color    color.Color

	sol *solution
}

// ParseRelation parses text into a relation. A missing '=' means
// "y = text". Solving for explicit branches is deferred to the first
// Branches call. A nil solver uses DefaultSolver.
func ParseRelation(text string, col color.Color, s Solver) (*Relation, error) {
	if s == nil {
		s = DefaultSolver
	}
	lhs, rhs, err := splitRelation(text)
	if err != nil {
		return nil, &RelationError{Text: text, Err: err}
	}
	eq, err := symbolic.ParseEquation(lhs, rhs)
	if err != nil {
		return nil, &RelationError{Text: text, Err: err}
	}
	return &Relation{
		Text:     text,
		LHSText:  lhs,
		RHSText:  rhs,
		Equation: eq,
		Color:    col,
		sol:      &solution{eq: eq, solver: s, done: make(chan struct{})},
	}, nil
}

// solution holds the explicit branches of one equation. The solver runs at
// most once, on its own goroutine.
type solution struct {
	eq     *symbolic.Equation
	solver Solver
	once   sync.Once
	done   chan struct{}
	// y holds y = f(x) branches; x holds x = g(y) branches and is only
	// solved when y is empty.
	y, x []symbolic.Expr
}

func (s *solution) start() {
	s.once.Do(func() {
		go func() {
			defer close(s.done)
			s.y = safeSolve(s.solver, s.eq, "y", "x")
			if len(s.y) == 0 {
				s.x = safeSolve(s.solver, s.eq, "x", "y")
			}
		}()
	})
}

func splitRelation(text string) (lhs, rhs string, err error) {
	norm := symbolic.Normalize(text)
	if norm == "" {
		return "", "", ErrEmptyRelation
	}
	switch strings.Count(norm, "=") {
	case 0:
		return "y", norm, nil
	case 1:
		lhs, rhs, _ = strings.Cut(norm, "=")
		return strings.TrimSpace(lhs), strings.TrimSpace(rhs), nil
	}
	return "", "", ErrTooManyEquals
}

// Branches returns the explicit branches and the axis they are functions
// of, solving the relation on first use. It waits until the solve finishes
// or ctx is done; an abandoned solve keeps running and a later call picks
// up its result.
func (r *Relation) Branches(ctx context.Context) ([]symbolic.Expr, Axis, error) {
	if r.sol == nil {
		return nil, AxisX, nil
	}
	r.sol.start()
	select {
	case <-r.sol.done:
	default:
		select {
		case <-r.sol.done:
		case <-ctx.Done():
			return nil, AxisX, ctx.Err()
		}
	}
	if len(r.sol.y) > 0 {
		return r.sol.y, AxisX, nil
	}
	return r.sol.x, AxisY, nil
}

// Solved reports whether Branches would return without waiting.
func (r *Relation) Solved() bool {
	if r.sol == nil {
		return true
	}
	select {
	case <-r.sol.done:
		return true
	default:
		return false
	}
}

// Trivial reports whether both sides are the same text, as in "x = x".
// Trivial relations never use the implicit fallback.
func (r *Relation) Trivial() bool {
	return strings.TrimSpace(r.LHSText) == strings.TrimSpace(r.RHSText)
}

// DisplayName is the text shown in advisories.
func (r *Relation) DisplayName() string { return strings.TrimSpace(r.Text) }

func (r *Relation) String() string {
	if r.Equation == nil {
		return r.Text
	}
	return r.Equation.String()
}
