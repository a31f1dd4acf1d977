package graphcalc

import (
	"fmt"

	"github.com/njchilds90/graphcalc/symbolic"
)

// Solver finds explicit branches of an equation for one variable. A nil
// error with no branches and any error are both treated as "no closed form".
type Solver interface {
	Solve(eq *symbolic.Equation, target string) ([]symbolic.Expr, error)
}

// SolverFunc adapts a plain function to Solver.
type SolverFunc func(eq *symbolic.Equation, target string) ([]symbolic.Expr, error)

func (f SolverFunc) Solve(eq *symbolic.Equation, target string) ([]symbolic.Expr, error) {
	return f(eq, target)
}

// DefaultSolver is the isolating polynomial solver of the symbolic kernel.
var DefaultSolver Solver = SolverFunc(symbolic.Solve)

// safeSolve runs s and normalises its output into real-valued branches in
// the other plane variable. Failures, panics included, yield no branches.
func safeSolve(s Solver, eq *symbolic.Equation, target, free string) (branches []symbolic.Expr) {
	log := Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Debug("graphcalc: solver panic", "equation", eq.String(), "target", target, "panic", fmt.Sprint(r))
			branches = nil
		}
	}()
	sols, err := s.Solve(eq, target)
	if err != nil {
		log.Debug("graphcalc: no explicit form", "equation", eq.String(), "target", target, "error", err)
		return nil
	}
	for _, sol := range sols {
		if sol == nil {
			continue
		}
		b := symbolic.RealRoots(sol)
		if !onlyUses(b, free) {
			log.Debug("graphcalc: branch dropped", "branch", b.String(), "target", target)
			continue
		}
		branches = append(branches, b)
	}
	return branches
}

func onlyUses(e symbolic.Expr, name string) bool {
	for s := range symbolic.FreeSymbols(e) {
		if s != name {
			return false
		}
	}
	return true
}
