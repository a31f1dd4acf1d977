// Package symbolic is the expression kernel behind the graphing engine.
//
// It keeps the exact rational arithmetic and deterministic simplification of
// a small rule-based CAS, and adds what a plotter needs on top: a text
// grammar, an isolating solver, real-root normalisation, and lowering of
// trees to float64 closures for fast sampling.
package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num — exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat converts a finite float64. Callers must not pass NaN or ±Inf.
func NFloat(f float64) *Num { return &Num{val: new(big.Rat).SetFloat64(f)} }

// NDecimal is the exact value of the shortest decimal that reads back as f,
// so 0.1 becomes 1/10 rather than the binary expansion. f must be finite.
func NDecimal(f float64) *Num {
	if r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64)); ok {
		return &Num{val: r}
	}
	return NFloat(f)
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(new(big.Rat).SetInt64(1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(new(big.Rat).SetInt64(-1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

// smallInt returns n as an int64 when it is an integer with |n| <= limit.
func (n *Num) smallInt(limit int64) (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	v := n.val.Num().Int64()
	if v > limit || v < -limit {
		return 0, false
	}
	return v, true
}

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.String()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }

// finiteNum wraps f when it is representable as an exact rational.
func finiteNum(f float64) (*Num, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return NFloat(f), true
}

// ============================================================
// Sym — symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string  { return s.name }
func (s *Sym) Eval() (*Num, bool) {
	return nil, false
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

// ============================================================
// Const — named irrational constant (e, pi)
// ============================================================

type Const struct {
	name  string
	value float64
}

var (
	Pi    = &Const{name: "pi", value: math.Pi}
	Euler = &Const{name: "E", value: math.E}
)

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Eval() (*Num, bool)    { return NFloat(c.value), true }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) Value() float64        { return c.value }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}
func (c *Const) LaTeX() string {
	if c == Pi || c.name == "pi" {
		return "\\pi"
	}
	return "e"
}

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	// Like terms are collected by their non-numeric part, so x + -1*x and
	// 2*sin(x) + sin(x) both combine.
	numAccum := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	symOrder := []string{}
	otherOrder := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := splitCoeff(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			coeffs[key] = N(0)
			rests[key] = rest
			if _, isSym := rest.(*Sym); isSym {
				symOrder = append(symOrder, key)
			} else {
				otherOrder = append(otherOrder, key)
			}
		}
		coeffs[key] = numAdd(coeffs[key], coeff)
	}
	result := []Expr{}
	sort.Strings(symOrder)
	for _, key := range append(symOrder, otherOrder...) {
		coeff := coeffs[key]
		if coeff.IsZero() {
			continue
		}
		if coeff.IsOne() {
			result = append(result, rests[key])
		} else {
			result = append(result, MulOf(coeff, rests[key]))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

// splitCoeff separates the leading rational coefficient of a simplified term.
func splitCoeff(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) < 2 {
		return N(1), e
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return N(1), e
	}
	if len(m.factors) == 2 {
		return c, m.factors[1]
	}
	return c, &Mul{factors: m.factors[1:]}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) LaTeX() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.LaTeX()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	others := []Expr{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
		} else {
			others = append(others, f)
		}
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Powers of a common base merge: x*x^2 is x^3.
	if merged, changed := mergePowers(others); changed {
		return (&Mul{factors: append([]Expr{coeff}, merged...)}).Simplify()
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sortedOthers := make([]Expr, len(ks))
	for i := range ks {
		sortedOthers[i] = ks[i].e
	}
	others = sortedOthers

	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

func mergePowers(factors []Expr) ([]Expr, bool) {
	type group struct {
		base Expr
		exps []Expr
	}
	groups := map[string]*group{}
	order := []string{}
	for _, f := range factors {
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		g, ok := groups[key]
		if !ok {
			g = &group{base: base}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	if len(order) == len(factors) {
		return factors, false
	}
	out := make([]Expr, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if len(g.exps) == 1 {
			out = append(out, PowOf(g.base, g.exps[0]))
			continue
		}
		out = append(out, PowOf(g.base, AddOf(g.exps...)))
	}
	return out, true
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		_, isAdd := f.(*Add)
		if isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		_, isAdd := f.(*Add)
		if isAdd {
			parts[i] = "\\left(" + f.LaTeX() + "\\right)"
		} else {
			parts[i] = f.LaTeX()
		}
	}
	return strings.Join(parts, " ")
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Num); ok && en.IsZero() {
		return N(1)
	}
	if en, ok := exp.(*Num); ok && en.IsOne() {
		return base
	}

	// Handle 0^exp carefully.
	if bn, ok := base.(*Num); ok && bn.IsZero() {
		if en, ok2 := exp.(*Num); ok2 {
			// 0^0 is indeterminate; 0^negative is division by zero.
			if en.IsZero() || en.IsNegative() {
				return &Pow{base: base, exp: exp}
			}
		}
		return N(0)
	}

	if bn, ok := base.(*Num); ok && bn.IsOne() {
		return N(1)
	}
	if bn, ok := base.(*Num); ok {
		if en, ok2 := exp.(*Num); ok2 {
			e, small := en.smallInt(20)
			if small && e >= 0 {
				result := N(1)
				for i := int64(0); i < e; i++ {
					result = numMul(result, bn)
				}
				return result
			}
			if small && e < 0 {
				posE := -e
				result := N(1)
				for i := int64(0); i < posE; i++ {
					result = numMul(result, bn)
				}
				return numRecip(result)
			}
		}
	}
	// (b^m)^n = b^(m*n) only holds for integer n; (x^2)^(1/2) is |x|, not x.
	if inner, ok := base.(*Pow); ok {
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() {
			return PowOf(inner.base, MulOf(inner.exp, exp))
		}
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	expStr := p.exp.String()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "(" + baseStr + ")"
	case *Num:
		if p.base.(*Num).IsNegative() || !p.base.(*Num).IsInteger() {
			baseStr = "(" + baseStr + ")"
		}
	}
	switch v := p.exp.(type) {
	case *Add, *Mul, *Pow:
		expStr = "(" + expStr + ")"
	case *Num:
		if v.IsNegative() || !v.IsInteger() {
			expStr = "(" + expStr + ")"
		}
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	baseStr := p.base.LaTeX()
	expStr := p.exp.LaTeX()
	_, baseIsAdd := p.base.(*Add)
	_, baseIsMul := p.base.(*Mul)
	if baseIsAdd || baseIsMul {
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + expStr + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if ok1 && ok2 {
		bf, _ := b.val.Float64()
		ef, _ := e.val.Float64()
		return finiteNum(math.Pow(bf, ef))
	}
	return nil, false
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Root — real-valued n-th root
// ============================================================

// Root is the signed real n-th root: for odd n it is defined on the whole
// real line (root(-8, 3) = -2), for even n only on non-negative input.
type Root struct {
	arg Expr
	n   int64
}

func RootOf(arg Expr, n int64) Expr { return (&Root{arg: arg, n: n}).Simplify() }

func (r *Root) Simplify() Expr {
	arg := r.arg.Simplify()
	if r.n == 1 {
		return arg
	}
	if n, ok := arg.(*Num); ok && (n.IsZero() || n.IsOne()) {
		return n
	}
	return &Root{arg: arg, n: r.n}
}

func (r *Root) String() string {
	if r.n == 2 {
		return "sqrt(" + r.arg.String() + ")"
	}
	return fmt.Sprintf("root(%s, %d)", r.arg.String(), r.n)
}

func (r *Root) LaTeX() string {
	if r.n == 2 {
		return "\\sqrt{" + r.arg.LaTeX() + "}"
	}
	return fmt.Sprintf("\\sqrt[%d]{%s}", r.n, r.arg.LaTeX())
}

func (r *Root) Sub(varName string, value Expr) Expr {
	return RootOf(r.arg.Sub(varName, value), r.n)
}

func (r *Root) Eval() (*Num, bool) {
	a, ok := r.arg.Eval()
	if !ok {
		return nil, false
	}
	return finiteNum(realRoot(a.Float64(), r.n))
}

func (r *Root) Equal(other Expr) bool {
	o, ok := other.(*Root)
	return ok && r.n == o.n && r.arg.Equal(o.arg)
}

func (r *Root) exprType() string { return "root" }
func (r *Root) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "root", "arg": r.arg.toJSON(), "n": r.n}
}
func (r *Root) Arg() Expr    { return r.arg }
func (r *Root) Index() int64 { return r.n }

// ============================================================
// Func — named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr       { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr       { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr       { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr       { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr        { return funcOf("ln", arg).Simplify() }
func SqrtOf(arg Expr) Expr      { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr       { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr      { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr      { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr      { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr      { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr      { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr      { return funcOf("tanh", arg).Simplify() }
func FactorialOf(arg Expr) Expr { return funcOf("factorial", arg).Simplify() }

// FuncOf applies a named function; callers should check KnownFunc first.
func FuncOf(name string, arg Expr) Expr { return funcOf(name, arg).Simplify() }

// KnownFunc reports whether name is a single-argument function the kernel
// can simplify and evaluate.
func KnownFunc(name string) bool {
	_, ok := floatFuncs[name]
	return ok
}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		if folded, ok := f.fold(n); ok {
			return folded
		}
	}
	switch f.name {
	case "sin":
		if isNumEqual(arg, 0) {
			return N(0)
		}
	case "cos":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "ln":
		if n2, ok := arg.(*Num); ok && n2.IsOne() {
			return N(0)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if n2, ok := arg.(*Num); ok && n2.IsZero() {
			return N(1)
		}
	case "abs":
		if n2, ok := arg.(*Num); ok && n2.IsPositive() {
			return n2
		}
		if m, ok := arg.(*Mul); ok && len(m.factors) >= 1 {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegOne() {
				inner := m.factors[1:]
				if len(inner) == 1 {
					return AbsOf(inner[0])
				}
				return AbsOf(MulOf(inner...))
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

// fold evaluates f at a numeric argument. Exact results are kept exact;
// results outside the reals are left symbolic.
func (f *Func) fold(n *Num) (Expr, bool) {
	switch f.name {
	case "sign":
		switch {
		case n.IsPositive():
			return N(1), true
		case n.IsNegative():
			return N(-1), true
		default:
			return N(0), true
		}
	case "abs":
		if n.IsNegative() {
			return numNeg(n), true
		}
		return n, true
	case "factorial":
		k, ok := n.smallInt(20)
		if !ok || k < 0 {
			break
		}
		acc := N(1)
		for i := int64(2); i <= k; i++ {
			acc = numMul(acc, N(i))
		}
		return acc, true
	case "floor", "ceil":
		if n.IsInteger() {
			return n, true
		}
	}
	fn, ok := floatFuncs[f.name]
	if !ok || f.name == "factorial" {
		return nil, false
	}
	return finiteNumExpr(fn(n.Float64()))
}

func finiteNumExpr(v float64) (Expr, bool) {
	n, ok := finiteNum(v)
	if !ok {
		return nil, false
	}
	return n, true
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "exp", "ln", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	case "floor":
		return "\\lfloor " + f.arg.LaTeX() + " \\rfloor"
	case "ceil":
		return "\\lceil " + f.arg.LaTeX() + " \\rceil"
	case "factorial":
		return "\\left(" + f.arg.LaTeX() + "\\right)!"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	fn, ok := floatFuncs[f.name]
	if !ok {
		return nil, false
	}
	return finiteNum(fn(n.Float64()))
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

// ============================================================
// Equation
// ============================================================

type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }
func (e *Equation) String() string {
	return e.LHS.String() + " = " + e.RHS.String()
}
func (e *Equation) LaTeX() string { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }

// Residual is the zero form lhs - rhs.
func (e *Equation) Residual() Expr {
	return AddOf(e.LHS, MulOf(N(-1), e.RHS)).Simplify()
}

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
				}
				return expandExpr(AddOf(terms...))
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok {
			exp, small := n.smallInt(10)
			if _, isAdd := base.(*Add); isAdd && small && exp >= 0 {
				result := Expr(N(1))
				for i := int64(0); i < exp; i++ {
					result = distribute(result, base)
				}
				return result
			}
		}
		return PowOf(base, expandExpr(v.exp))
	}
	return e
}

// distribute multiplies two sums term by term. MulOf would fold a repeated
// sum back into a power.
func distribute(a, b Expr) Expr {
	var terms []Expr
	for _, ta := range sumTerms(a) {
		for _, tb := range sumTerms(b) {
			terms = append(terms, expandExpr(MulOf(ta, tb)))
		}
	}
	return AddOf(terms...)
}

func sumTerms(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}
