package symbolic_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/njchilds90/graphcalc/symbolic"
)

var (
	x = symbolic.S("x")
	y = symbolic.S("y")
)

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := symbolic.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := symbolic.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	n := symbolic.F(2, 5)
	if n.LaTeX() != `\frac{2}{5}` {
		t.Errorf("want \\frac{2}{5}, got %s", n.LaTeX())
	}
}

// ============================================================
// Add / Mul tests
// ============================================================

func TestAdd_CancelsLikeTerms(t *testing.T) {
	result := symbolic.AddOf(x, symbolic.MulOf(symbolic.N(-1), x))
	if result.String() != "0" {
		t.Errorf("want 0, got %s", result)
	}
}

func TestAdd_CollectsFunctionTerms(t *testing.T) {
	sx := symbolic.SinOf(x)
	result := symbolic.AddOf(symbolic.MulOf(symbolic.N(2), sx), sx)
	if result.String() != "3*sin(x)" {
		t.Errorf("want 3*sin(x), got %s", result)
	}
}

func TestAdd_SymbolsBeforeConstant(t *testing.T) {
	result := symbolic.AddOf(symbolic.N(1), y, x)
	if result.String() != "x + y + 1" {
		t.Errorf("want x + y + 1, got %s", result)
	}
}

func TestMul_MergesPowers(t *testing.T) {
	result := symbolic.MulOf(x, symbolic.PowOf(x, symbolic.N(2)))
	if result.String() != "x^3" {
		t.Errorf("want x^3, got %s", result)
	}
}

func TestMul_ReciprocalCancels(t *testing.T) {
	result := symbolic.MulOf(symbolic.N(3), x, symbolic.PowOf(x, symbolic.N(-1)))
	if result.String() != "3" {
		t.Errorf("want 3, got %s", result)
	}
}

// ============================================================
// Pow / Root tests
// ============================================================

func TestPow_IntegerOuterExponentCombines(t *testing.T) {
	result := symbolic.PowOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(3))
	if result.String() != "x^6" {
		t.Errorf("want x^6, got %s", result)
	}
}

func TestPow_FractionalOuterExponentKept(t *testing.T) {
	result := symbolic.PowOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.F(1, 2))
	if result.String() != "(x^2)^(1/2)" {
		t.Errorf("want (x^2)^(1/2), got %s", result)
	}
}

func TestPow_ExponentPastInt64StaysSymbolic(t *testing.T) {
	cases := []struct {
		src string
		bad string
	}{
		{"2^18446744073709551617", "2"},
		{"2^(-18446744073709551617)", "1/2"},
		{"3^(2^64 + 2)", "9"},
		{"2^21", ""},
	}
	for _, c := range cases {
		e := symbolic.MustParse(c.src)
		if _, ok := e.(*symbolic.Pow); !ok {
			t.Errorf("%s: want unevaluated power, got %s", c.src, e)
		}
		if c.bad != "" && e.String() == c.bad {
			t.Errorf("%s: folded to %s", c.src, c.bad)
		}
	}
}

func TestPow_SmallExponentFolds(t *testing.T) {
	if s := symbolic.MustParse("2^20").String(); s != "1048576" {
		t.Errorf("want 1048576, got %s", s)
	}
	if s := symbolic.MustParse("2^(-3)").String(); s != "1/8" {
		t.Errorf("want 1/8, got %s", s)
	}
}

func TestExpand_LargePowerLeftFactored(t *testing.T) {
	e := symbolic.Expand(symbolic.MustParse("(x + 1)^18446744073709551616"))
	if _, ok := e.(*symbolic.Pow); !ok {
		t.Errorf("want (x + 1)^n kept, got %T", e)
	}
}

func TestRoot_OddOfNegative(t *testing.T) {
	v, ok := symbolic.RootOf(symbolic.N(-8), 3).Eval()
	if !ok || !v.Equal(symbolic.N(-2)) {
		t.Errorf("want -2, got %v (ok=%v)", v, ok)
	}
}

func TestRoot_EvenOfNegative(t *testing.T) {
	if _, ok := symbolic.RootOf(symbolic.N(-4), 2).Eval(); ok {
		t.Error("sqrt(-4) should not evaluate to a real number")
	}
}

func TestRoot_String(t *testing.T) {
	if s := symbolic.RootOf(x, 3).String(); s != "root(x, 3)" {
		t.Errorf("want root(x, 3), got %s", s)
	}
	if s := symbolic.RootOf(x, 2).String(); s != "sqrt(x)" {
		t.Errorf("want sqrt(x), got %s", s)
	}
}

// ============================================================
// Func tests
// ============================================================

func TestFunc_FactorialFolds(t *testing.T) {
	if s := symbolic.FactorialOf(symbolic.N(5)).String(); s != "120" {
		t.Errorf("want 120, got %s", s)
	}
}

func TestFunc_FactorialPoleStaysSymbolic(t *testing.T) {
	f := symbolic.FactorialOf(symbolic.N(-1))
	if f.String() != "factorial(-1)" {
		t.Errorf("want factorial(-1), got %s", f)
	}
	if _, ok := f.Eval(); ok {
		t.Error("factorial(-1) should not evaluate")
	}
}

func TestFunc_FactorialPastInt64StaysSymbolic(t *testing.T) {
	for _, src := range []string{"18446744073709551621!", "21!", "9223372036854775807!"} {
		e := symbolic.MustParse(src)
		if _, ok := e.(*symbolic.Func); !ok {
			t.Errorf("%s: want unevaluated factorial, got %s", src, e)
		}
	}
}

func TestFunc_LnExp(t *testing.T) {
	if s := symbolic.LnOf(symbolic.ExpOf(x)).String(); s != "x" {
		t.Errorf("want x, got %s", s)
	}
}

func TestFunc_SinZero(t *testing.T) {
	if s := symbolic.SinOf(symbolic.N(0)).String(); s != "0" {
		t.Errorf("want 0, got %s", s)
	}
}

// ============================================================
// Expand / Equation tests
// ============================================================

func TestExpand_DifferenceOfSquares(t *testing.T) {
	e := symbolic.MulOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.AddOf(x, symbolic.N(-1)))
	result := symbolic.Expand(e)
	if result.String() != "x^2 + -1" {
		t.Errorf("want x^2 + -1, got %s", result)
	}
}

func TestEquation_Residual(t *testing.T) {
	eq := symbolic.Eq(y, symbolic.MulOf(symbolic.N(2), x))
	if s := eq.Residual().String(); s != "-2*x + y" {
		t.Errorf("want -2*x + y, got %s", s)
	}
}

// ============================================================
// Tree walking
// ============================================================

func TestFreeSymbols(t *testing.T) {
	syms := symbolic.FreeSymbols(symbolic.AddOf(x, symbolic.SinOf(y), symbolic.Pi))
	if len(syms) != 2 {
		t.Errorf("want 2 symbols, got %d", len(syms))
	}
}

func TestOccurrences(t *testing.T) {
	e := symbolic.MustParse("sin(x*y) + y")
	if n := symbolic.Occurrences(e, "y"); n != 2 {
		t.Errorf("want 2, got %d", n)
	}
}

func TestHasFactorial(t *testing.T) {
	if !symbolic.HasFactorial(symbolic.MustParse("2*x! + 1")) {
		t.Error("want factorial detected")
	}
	if symbolic.HasFactorial(symbolic.MustParse("x^2")) {
		t.Error("want no factorial in x^2")
	}
}

func TestRealRoots_RewritesRationalPowers(t *testing.T) {
	result := symbolic.RealRoots(symbolic.PowOf(x, symbolic.F(2, 3)))
	if result.String() != "root(x, 3)^2" {
		t.Errorf("want root(x, 3)^2, got %s", result)
	}
}

func TestRealRoots_Nested(t *testing.T) {
	e := symbolic.SinOf(symbolic.PowOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.F(1, 3)))
	result := symbolic.RealRoots(e)
	if result.String() != "sin(root(x + 1, 3))" {
		t.Errorf("want sin(root(x + 1, 3)), got %s", result)
	}
}

func TestPolyDegree(t *testing.T) {
	cases := []struct {
		src  string
		deg  int
		poly bool
	}{
		{"x^2 + y^2", 2, true},
		{"x*y + 1", 1, true},
		{"sin(y) + y", 0, false},
		{"y^(1/2)", 0, false},
		{"x + 1", 0, true},
		{"y^100000", 0, false},
		{"y^9223372036854775807", 0, false},
	}
	for _, c := range cases {
		deg, ok := symbolic.PolyDegree(symbolic.MustParse(c.src), "y")
		if ok != c.poly || (ok && deg != c.deg) {
			t.Errorf("%s: want (%d, %v), got (%d, %v)", c.src, c.deg, c.poly, deg, ok)
		}
	}
}

// ============================================================
// Substitution
// ============================================================

func TestSub_FoldsBoundValues(t *testing.T) {
	e := symbolic.MustParse("x^2*y + 2^x + abs(x - 10)")
	got := symbolic.Sub(e, "x", symbolic.N(8))
	if s := got.String(); s != "64*y + 258" {
		t.Errorf("want 64*y + 258, got %s", s)
	}
	got = symbolic.Sub(got, "y", symbolic.NDecimal(0.1))
	if s := got.String(); s != "1322/5" {
		t.Errorf("want 1322/5, got %s", s)
	}
	e = symbolic.RealRoots(symbolic.MustParse("sin(pi*x) + x^(1/3)"))
	if s := symbolic.Sub(e, "x", symbolic.N(0)).String(); s != "0" {
		t.Errorf("want 0, got %s", s)
	}
}

func TestSub_LeavesOtherSymbols(t *testing.T) {
	e := symbolic.MustParse("x + y")
	if got := symbolic.Sub(e, "z", symbolic.N(1)); !got.Equal(e) {
		t.Errorf("want %s unchanged, got %s", e, got)
	}
}

func TestNDecimal(t *testing.T) {
	cases := []struct {
		f    float64
		want string
	}{
		{0.1, "1/10"},
		{-8, "-8"},
		{1e-3, "1/1000"},
		{2.5, "5/2"},
	}
	for _, c := range cases {
		if s := symbolic.NDecimal(c.f).String(); s != c.want {
			t.Errorf("NDecimal(%g): want %s, got %s", c.f, c.want, s)
		}
	}
}

// ============================================================
// JSON
// ============================================================

func TestJSON_RoundTrip(t *testing.T) {
	e := symbolic.MustParse("sin(pi*x) + root(x, 3)^2 / 4")
	s, err := symbolic.ToJSON(symbolic.RealRoots(e))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatal(err)
	}
	back, err := symbolic.FromJSON(m)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := symbolic.EvalFloat(symbolic.RealRoots(e), map[string]float64{"x": -8})
	got, _ := symbolic.EvalFloat(back, map[string]float64{"x": -8})
	if math.Abs(want-got) > 1e-12 {
		t.Errorf("want %g, got %g", want, got)
	}
}

func TestJSON_UnknownFunction(t *testing.T) {
	_, err := symbolic.FromJSON(map[string]interface{}{
		"type": "func", "name": "gamma", "arg": map[string]interface{}{"type": "sym", "name": "x"},
	})
	if err == nil {
		t.Error("want error for unknown function")
	}
}
