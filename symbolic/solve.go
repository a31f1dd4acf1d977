package symbolic

import (
	"errors"
	"fmt"
	"math"
)

// ============================================================
// Solvers
// ============================================================

var (
	// ErrNoSolution means the equation has no real closed-form solution for
	// the requested variable, including the case where it does not occur.
	ErrNoSolution = errors.New("symbolic: no solution")
	// ErrUnsupported means the equation may have solutions but this kernel
	// cannot express them in closed form.
	ErrUnsupported = errors.New("symbolic: unsupported equation")
)

// maxPeriodicInversions bounds how many periodic functions a single solve
// may invert. Inverting nested periodic functions keeps only principal
// branches and loses most of the curve.
const maxPeriodicInversions = 1

type SolveResult struct {
	Solutions []Expr
	Error     string
}

// SolveLinear solves a*v + b = 0.
func SolveLinear(a, b Expr) SolveResult {
	an, aok := a.Eval()
	bn, bok := b.Eval()
	if aok && bok {
		if an.IsZero() {
			if bn.IsZero() {
				return SolveResult{Error: "identity (0 = 0): infinite solutions"}
			}
			return SolveResult{Error: "no solution (inconsistent)"}
		}
		return SolveResult{Solutions: []Expr{numMul(numNeg(bn), numRecip(an))}}
	}
	if aok && an.IsZero() {
		return SolveResult{Error: "no solution (inconsistent)"}
	}
	return SolveResult{Solutions: []Expr{MulOf(N(-1), b, PowOf(a, N(-1))).Simplify()}}
}

// SolveQuadraticExact solves a*v^2 + b*v + c = 0, keeping symbolic
// coefficients symbolic. Numeric coefficients with a negative discriminant
// report complex roots as an error.
func SolveQuadraticExact(a, b, c Expr) SolveResult {
	an, aok := a.Eval()
	bn, bok := b.Eval()
	cn, cok := c.Eval()
	if !aok || !bok || !cok {
		if aok && an.IsZero() {
			return SolveLinear(b, c)
		}
		disc := AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c))
		denom := MulOf(N(2), a)
		x1 := MulOf(AddOf(MulOf(N(-1), b), SqrtOf(disc)), PowOf(denom, N(-1)))
		x2 := MulOf(AddOf(MulOf(N(-1), b), MulOf(N(-1), SqrtOf(disc))), PowOf(denom, N(-1)))
		return SolveResult{Solutions: []Expr{x1.Simplify(), x2.Simplify()}}
	}
	af, _ := an.val.Float64()
	bf, _ := bn.val.Float64()
	cf, _ := cn.val.Float64()
	if af == 0 {
		return SolveLinear(b, c)
	}
	disc := bf*bf - 4*af*cf
	if disc < 0 {
		return SolveResult{Error: fmt.Sprintf("complex roots: %g ± %gi", -bf/(2*af), math.Sqrt(-disc)/(2*af))}
	}
	sq := math.Sqrt(disc)
	sqInt := int64(math.Round(sq))
	twoA := numMul(N(2), an)
	if float64(sqInt)*float64(sqInt) == disc {
		x1 := numDiv(numAdd(numNeg(bn), N(sqInt)), twoA)
		x2 := numDiv(numSub(numNeg(bn), N(sqInt)), twoA)
		if x1.Equal(x2) {
			return SolveResult{Solutions: []Expr{x1}}
		}
		return SolveResult{Solutions: []Expr{x1, x2}}
	}
	return SolveResult{Solutions: []Expr{NFloat((-bf + sq) / (2 * af)), NFloat((-bf - sq) / (2 * af))}}
}

// Solve returns the explicit branches of eq solved for target, in terms of
// the remaining variables. It tries, in order: the linear or quadratic
// formula when the zero form is a polynomial of degree 1 or 2 in target,
// then inversion along the path to a single occurrence of target.
func Solve(eq *Equation, target string) ([]Expr, error) {
	residual := eq.Residual()
	if !Contains(residual, target) {
		return nil, ErrNoSolution
	}
	if expansionTooLarge(residual) {
		return isolateOnce(residual, target)
	}
	expanded := Expand(residual)
	if !Contains(expanded, target) {
		return nil, ErrNoSolution
	}

	if deg, ok := PolyDegree(expanded, target); ok && (deg == 1 || deg == 2) {
		coeffs := PolyCoeffs(expanded, target)
		var res SolveResult
		if deg == 1 {
			res = SolveLinear(coeffs.coeff(1), coeffs.coeff(0))
		} else {
			res = SolveQuadraticExact(coeffs.coeff(2), coeffs.coeff(1), coeffs.coeff(0))
		}
		if res.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoSolution, res.Error)
		}
		out := make([]Expr, len(res.Solutions))
		for i, s := range res.Solutions {
			out[i] = Expand(s)
		}
		return out, nil
	}

	return isolateOnce(residual, target, expanded)
}

// isolateOnce inverts the first form in which target occurs exactly once.
func isolateOnce(residual Expr, target string, more ...Expr) ([]Expr, error) {
	for _, form := range append([]Expr{residual}, more...) {
		if Occurrences(form, target) != 1 {
			continue
		}
		sols, err := isolate(form, target, N(0), 0)
		if err != nil {
			return nil, err
		}
		if len(sols) == 0 {
			return nil, ErrNoSolution
		}
		out := make([]Expr, len(sols))
		for i, s := range sols {
			out[i] = s.Simplify()
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s appears more than once", ErrUnsupported, target)
}

// maxExpandedTerms bounds the expansion Solve will attempt.
const maxExpandedTerms = 4096

// expansionTooLarge reports whether expanding any part of e would produce
// more than maxExpandedTerms terms.
func expansionTooLarge(e Expr) bool {
	large := false
	Walk(e, func(n Expr) bool {
		large = expandedTerms(n) > maxExpandedTerms
		return !large
	})
	return large
}

// expandedTerms estimates the number of terms in Expand(e).
func expandedTerms(e Expr) float64 {
	switch v := e.(type) {
	case *Add:
		n := 0.0
		for _, t := range v.terms {
			n += expandedTerms(t)
		}
		return n
	case *Mul:
		n := 1.0
		for _, f := range v.factors {
			n *= expandedTerms(f)
		}
		return n
	case *Pow:
		if k, ok := v.exp.(*Num); ok {
			if p, small := k.smallInt(10); small && p > 0 {
				return math.Pow(expandedTerms(v.base), float64(p))
			}
		}
	}
	return 1
}

// isolate solves e = rhs for target, where target occurs exactly once in e.
func isolate(e Expr, target string, rhs Expr, periodic int) ([]Expr, error) {
	switch v := e.(type) {
	case *Sym:
		if v.name == target {
			return []Expr{rhs}, nil
		}
	case *Add:
		var inner Expr
		rest := []Expr{rhs}
		for _, t := range v.terms {
			if Contains(t, target) {
				inner = t
			} else {
				rest = append(rest, MulOf(N(-1), t))
			}
		}
		if inner != nil {
			return isolate(inner, target, AddOf(rest...), periodic)
		}
	case *Mul:
		var inner Expr
		rest := []Expr{rhs}
		for _, f := range v.factors {
			if Contains(f, target) {
				inner = f
			} else {
				rest = append(rest, PowOf(f, N(-1)))
			}
		}
		if inner != nil {
			return isolate(inner, target, MulOf(rest...), periodic)
		}
	case *Pow:
		return isolatePow(v, target, rhs, periodic)
	case *Root:
		inv := PowOf(rhs, N(v.n))
		if v.n%2 == 0 {
			inv = restrict(inv, rhs)
		}
		return isolate(v.arg, target, inv, periodic)
	case *Func:
		return isolateFunc(v, target, rhs, periodic)
	}
	return nil, fmt.Errorf("%w: cannot isolate %s in %s", ErrUnsupported, target, e)
}

func isolatePow(p *Pow, target string, rhs Expr, periodic int) ([]Expr, error) {
	if !Contains(p.base, target) {
		// b^u = r  =>  u = ln(r)/ln(b)
		return isolate(p.exp, target, MulOf(LnOf(rhs), PowOf(LnOf(p.base), N(-1))), periodic)
	}
	n, ok := p.exp.(*Num)
	if !ok {
		return nil, fmt.Errorf("%w: symbolic exponent %s", ErrUnsupported, p.exp)
	}
	inv := PowOf(rhs, numRecip(n))
	if n.val.Denom().Bit(0) == 0 {
		inv = restrict(inv, rhs)
	}
	if n.IsInteger() && n.val.Num().Bit(0) == 0 {
		var out []Expr
		for _, branch := range []Expr{inv, MulOf(N(-1), inv)} {
			sols, err := isolate(p.base, target, branch, periodic)
			if err != nil {
				return nil, err
			}
			out = append(out, sols...)
		}
		return out, nil
	}
	return isolate(p.base, target, inv, periodic)
}

// restrict keeps e only where every cond is non-negative.
func restrict(e Expr, conds ...Expr) Expr {
	factors := []Expr{e}
	for _, c := range conds {
		factors = append(factors, FuncOf("nonneg", c))
	}
	return MulOf(factors...)
}

// halfPiBound is non-negative exactly when |r| <= pi/2.
func halfPiBound(r Expr) Expr {
	return AddOf(MulOf(F(1, 2), Pi), MulOf(N(-1), AbsOf(r)))
}

// inverses lists, per function, the branches of f^-1(r). Inverting a
// function with a restricted range masks the branch outside that range.
var inverses = map[string]func(r Expr) []Expr{
	"sin": func(r Expr) []Expr {
		return []Expr{AsinOf(r), AddOf(Pi, MulOf(N(-1), AsinOf(r)))}
	},
	"cos": func(r Expr) []Expr {
		return []Expr{AcosOf(r), AddOf(MulOf(N(2), Pi), MulOf(N(-1), AcosOf(r)))}
	},
	"tan":  func(r Expr) []Expr { return []Expr{AtanOf(r)} },
	"asin": func(r Expr) []Expr { return []Expr{restrict(SinOf(r), halfPiBound(r))} },
	"acos": func(r Expr) []Expr {
		return []Expr{restrict(CosOf(r), r, AddOf(Pi, MulOf(N(-1), r)))}
	},
	"atan":  func(r Expr) []Expr { return []Expr{restrict(TanOf(r), halfPiBound(r))} },
	"exp":   func(r Expr) []Expr { return []Expr{LnOf(r)} },
	"ln":    func(r Expr) []Expr { return []Expr{ExpOf(r)} },
	"log10": func(r Expr) []Expr { return []Expr{PowOf(N(10), r)} },
	"sinh":  func(r Expr) []Expr { return []Expr{FuncOf("asinh", r)} },
	"asinh": func(r Expr) []Expr { return []Expr{SinhOf(r)} },
	"cosh": func(r Expr) []Expr {
		return []Expr{FuncOf("acosh", r), MulOf(N(-1), FuncOf("acosh", r))}
	},
	"acosh": func(r Expr) []Expr { return []Expr{restrict(CoshOf(r), r)} },
	"tanh":  func(r Expr) []Expr { return []Expr{FuncOf("atanh", r)} },
	"atanh": func(r Expr) []Expr { return []Expr{TanhOf(r)} },
	"abs": func(r Expr) []Expr {
		return []Expr{restrict(r, r), restrict(MulOf(N(-1), r), r)}
	},
}

var periodicFuncs = map[string]bool{"sin": true, "cos": true, "tan": true}

func isolateFunc(f *Func, target string, rhs Expr, periodic int) ([]Expr, error) {
	inv, ok := inverses[f.name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no inverse", ErrUnsupported, f.name)
	}
	if periodicFuncs[f.name] {
		if periodic >= maxPeriodicInversions {
			return nil, fmt.Errorf("%w: nested periodic functions", ErrUnsupported)
		}
		periodic++
	}
	var out []Expr
	for _, branch := range inv(rhs) {
		sols, err := isolate(f.arg, target, branch, periodic)
		if err != nil {
			return nil, err
		}
		out = append(out, sols...)
	}
	return out, nil
}
