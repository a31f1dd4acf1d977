package symbolic

import "math/big"

// ============================================================
// Tree walking
// ============================================================

// children returns the direct sub-expressions of e.
func children(e Expr) []Expr {
	switch v := e.(type) {
	case *Add:
		return v.terms
	case *Mul:
		return v.factors
	case *Pow:
		return []Expr{v.base, v.exp}
	case *Root:
		return []Expr{v.arg}
	case *Func:
		return []Expr{v.arg}
	}
	return nil
}

// Walk calls fn for e and every sub-expression, depth first, until fn
// returns false.
func Walk(e Expr, fn func(Expr) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range children(e) {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// FreeSymbols returns the set of variable names in e.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	Walk(e, func(n Expr) bool {
		if s, ok := n.(*Sym); ok {
			result[s.name] = struct{}{}
		}
		return true
	})
	return result
}

// Contains reports whether the variable varName occurs in e.
func Contains(e Expr, varName string) bool {
	return Occurrences(e, varName) > 0
}

// Occurrences counts the leaves of e that are the variable varName.
func Occurrences(e Expr, varName string) int {
	n := 0
	Walk(e, func(node Expr) bool {
		if s, ok := node.(*Sym); ok && s.name == varName {
			n++
		}
		return true
	})
	return n
}

// ContainsFunc reports whether e applies the named function anywhere.
func ContainsFunc(e Expr, name string) bool {
	found := false
	Walk(e, func(n Expr) bool {
		if f, ok := n.(*Func); ok && f.name == name {
			found = true
			return false
		}
		return true
	})
	return found
}

// HasFactorial reports whether e contains a factorial sub-expression.
func HasFactorial(e Expr) bool { return ContainsFunc(e, "factorial") }

// ============================================================
// Real roots
// ============================================================

// RealRoots rewrites every power with a non-integer rational exponent p/q
// into root(base, q)^p, depth first, so odd roots of negative numbers stay
// real. Exponents that are not exact rationals are left alone.
func RealRoots(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = RealRoots(t)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = RealRoots(f)
		}
		return MulOf(factors...)
	case *Func:
		return funcOf(v.name, RealRoots(v.arg)).Simplify()
	case *Root:
		return RootOf(RealRoots(v.arg), v.n)
	case *Pow:
		base := RealRoots(v.base)
		exp := RealRoots(v.exp)
		n, ok := exp.(*Num)
		if !ok || n.IsInteger() {
			return PowOf(base, exp)
		}
		r := n.Rat()
		q := r.Denom()
		if !q.IsInt64() || !r.Num().IsInt64() {
			return PowOf(base, exp)
		}
		p := r.Num().Int64()
		return PowOf(RootOf(base, q.Int64()), &Num{val: new(big.Rat).SetInt64(p)})
	}
	return e
}

// ============================================================
// Polynomial utilities
// ============================================================

// maxPolyDegree bounds the exponents PolyDegree treats as polynomial.
const maxPolyDegree = 1 << 16

// PolyDegree returns the degree of e as a polynomial in varName. ok is
// false when varName appears anywhere other than as a non-negative integer
// power, e.g. inside a function or a denominator.
func PolyDegree(e Expr, varName string) (deg int, ok bool) {
	if !Contains(e, varName) {
		return 0, true
	}
	switch v := e.(type) {
	case *Sym:
		return 1, true
	case *Pow:
		s, isSym := v.base.(*Sym)
		n, isNum := v.exp.(*Num)
		if !isSym || s.name != varName || !isNum {
			return 0, false
		}
		k, small := n.smallInt(maxPolyDegree)
		if !small || k < 0 {
			return 0, false
		}
		return int(k), true
	case *Mul:
		total := 0
		for _, f := range v.factors {
			d, ok := PolyDegree(f, varName)
			if !ok {
				return 0, false
			}
			total += d
		}
		return total, true
	case *Add:
		maxDeg := 0
		for _, t := range v.terms {
			d, ok := PolyDegree(t, varName)
			if !ok {
				return 0, false
			}
			if d > maxDeg {
				maxDeg = d
			}
		}
		return maxDeg, true
	}
	return 0, false
}

type PolyCoeffsResult map[int]Expr

// PolyCoeffs splits a polynomial into coefficients by degree. Only
// meaningful when PolyDegree reports ok.
func PolyCoeffs(expr Expr, varName string) PolyCoeffsResult {
	result := PolyCoeffsResult{}
	extractCoeffs(expr.Simplify(), varName, result)
	return result
}

func extractCoeffs(e Expr, varName string, out PolyCoeffsResult) {
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			extractCoeffs(t, varName, out)
		}
	case *Mul:
		deg := 0
		coeffFactors := []Expr{}
		for _, f := range v.factors {
			if d, _ := PolyDegree(f, varName); d > 0 {
				deg += d
			} else {
				coeffFactors = append(coeffFactors, f)
			}
		}
		addCoeff(out, deg, MulOf(coeffFactors...))
	default:
		d, _ := PolyDegree(e, varName)
		if d > 0 {
			addCoeff(out, d, N(1))
			return
		}
		addCoeff(out, 0, e)
	}
}

func addCoeff(out PolyCoeffsResult, deg int, val Expr) {
	if existing, ok := out[deg]; ok {
		out[deg] = AddOf(existing, val)
	} else {
		out[deg] = val.Simplify()
	}
}

// coeff returns the coefficient for deg, or zero.
func (p PolyCoeffsResult) coeff(deg int) Expr {
	if c, ok := p[deg]; ok {
		return c
	}
	return N(0)
}
