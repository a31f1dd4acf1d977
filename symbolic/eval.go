package symbolic

import (
	"fmt"
	"math"
)

// ============================================================
// Float evaluation
// ============================================================

// floatFuncs maps every known single-argument function to its real-valued
// float64 implementation. Results outside the reals come back as NaN.
var floatFuncs = map[string]func(float64) float64{
	"sin":       math.Sin,
	"cos":       math.Cos,
	"tan":       math.Tan,
	"asin":      math.Asin,
	"acos":      math.Acos,
	"atan":      math.Atan,
	"sinh":      math.Sinh,
	"cosh":      math.Cosh,
	"tanh":      math.Tanh,
	"asinh":     math.Asinh,
	"acosh":     math.Acosh,
	"atanh":     math.Atanh,
	"exp":       math.Exp,
	"ln":        math.Log,
	"log10":     math.Log10,
	"abs":       math.Abs,
	"floor":     math.Floor,
	"ceil":      math.Ceil,
	"sign":      signum,
	"factorial": factorial,
	"nonneg":    nonneg,
}

func signum(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return v
}

// factorial extends n! to the reals through Gamma(n+1). Negative integers
// are poles and evaluate to NaN.
func factorial(v float64) float64 {
	if v < 0 && v == math.Trunc(v) {
		return math.NaN()
	}
	return math.Gamma(v + 1)
}

// nonneg is 1 on [0, +Inf) and NaN elsewhere. Solved branches carry it as a
// factor to drop the points where an inverse leaves its range.
func nonneg(v float64) float64 {
	if v >= 0 {
		return 1
	}
	return math.NaN()
}

func realRoot(v float64, n int64) float64 {
	switch {
	case n == 2:
		return math.Sqrt(v)
	case n == 3:
		return math.Cbrt(v)
	case v >= 0:
		return math.Pow(v, 1/float64(n))
	case n%2 == 0:
		return math.NaN()
	}
	return -math.Pow(-v, 1/float64(n))
}

// Compiled evaluates an expression at a point of the (x, y) plane.
type Compiled func(x, y float64) float64

// Compile lowers e to a closure over the two named plane variables. Any
// other free symbol is an error. Evaluation never panics: domain errors,
// poles and overflow yield NaN or ±Inf.
func Compile(e Expr, xName, yName string) (Compiled, error) {
	switch v := e.(type) {
	case *Num:
		f := v.Float64()
		return func(float64, float64) float64 { return f }, nil
	case *Const:
		f := v.value
		return func(float64, float64) float64 { return f }, nil
	case *Sym:
		switch v.name {
		case xName:
			return func(x, _ float64) float64 { return x }, nil
		case yName:
			return func(_, y float64) float64 { return y }, nil
		}
		return nil, fmt.Errorf("symbolic: free symbol %q", v.name)
	case *Add:
		parts, err := compileAll(v.terms, xName, yName)
		if err != nil {
			return nil, err
		}
		return func(x, y float64) float64 {
			acc := 0.0
			for _, p := range parts {
				acc += p(x, y)
			}
			return acc
		}, nil
	case *Mul:
		parts, err := compileAll(v.factors, xName, yName)
		if err != nil {
			return nil, err
		}
		return func(x, y float64) float64 {
			acc := 1.0
			for _, p := range parts {
				acc *= p(x, y)
			}
			return acc
		}, nil
	case *Pow:
		base, err := Compile(v.base, xName, yName)
		if err != nil {
			return nil, err
		}
		if n, ok := v.exp.(*Num); ok && n.IsInteger() && n.val.Num().IsInt64() {
			k := int(n.val.Num().Int64())
			return func(x, y float64) float64 { return powInt(base(x, y), k) }, nil
		}
		exp, err := Compile(v.exp, xName, yName)
		if err != nil {
			return nil, err
		}
		return func(x, y float64) float64 { return math.Pow(base(x, y), exp(x, y)) }, nil
	case *Root:
		arg, err := Compile(v.arg, xName, yName)
		if err != nil {
			return nil, err
		}
		n := v.n
		return func(x, y float64) float64 { return realRoot(arg(x, y), n) }, nil
	case *Func:
		fn, ok := floatFuncs[v.name]
		if !ok {
			return nil, fmt.Errorf("symbolic: unknown function %q", v.name)
		}
		arg, err := Compile(v.arg, xName, yName)
		if err != nil {
			return nil, err
		}
		return func(x, y float64) float64 { return fn(arg(x, y)) }, nil
	}
	return nil, fmt.Errorf("symbolic: cannot compile %T", e)
}

func compileAll(es []Expr, xName, yName string) ([]Compiled, error) {
	out := make([]Compiled, len(es))
	for i, e := range es {
		c, err := Compile(e, xName, yName)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func powInt(b float64, k int) float64 {
	if k > 64 || k < -64 {
		return math.Pow(b, float64(k))
	}
	if k < 0 {
		return 1 / powInt(b, -k)
	}
	acc := 1.0
	for k > 0 {
		if k&1 == 1 {
			acc *= b
		}
		b *= b
		k >>= 1
	}
	return acc
}

// EvalFloat evaluates e with the given variable bindings. The second result
// is false when e has unbound symbols.
func EvalFloat(e Expr, vars map[string]float64) (float64, bool) {
	names := make([]string, 0, 2)
	for name := range vars {
		names = append(names, name)
	}
	if len(names) > 2 {
		return 0, false
	}
	for len(names) < 2 {
		names = append(names, "")
	}
	c, err := Compile(e, names[0], names[1])
	if err != nil {
		return 0, false
	}
	return c(vars[names[0]], vars[names[1]]), true
}
