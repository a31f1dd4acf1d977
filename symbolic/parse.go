package symbolic

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/alecthomas/participle/v2"
	"golang.org/x/text/width"
)

// ============================================================
// Parser
// ============================================================

// ErrParse is wrapped by every error ParseExpr returns.
var ErrParse = errors.New("symbolic: parse error")

type sumAST struct {
	Head *productAST `@@`
	Tail []*sumOp    `@@*`
}

type sumOp struct {
	Op   string      `@("+" | "-")`
	Term *productAST `@@`
}

type productAST struct {
	Head *unaryAST    `@@`
	Tail []*productOp `@@*`
}

type productOp struct {
	Op     string    `@("*" | "/")`
	Factor *unaryAST `@@`
}

type unaryAST struct {
	Signs []string  `@("-" | "+")*`
	Power *powerAST `@@`
}

// powerAST is right associative: the exponent is itself a signed power.
type powerAST struct {
	Base *postfixAST `@@`
	Exp  *unaryAST   `( "^" @@ )?`
}

type postfixAST struct {
	Primary *primaryAST `@@`
	Bangs   []string    `@"!"*`
}

type primaryAST struct {
	Number *string  `  @(Float | Int)`
	Call   *callAST `| @@`
	Ident  *string  `| @Ident`
	Group  *sumAST  `| "(" @@ ")"`
}

type callAST struct {
	Name string    `@Ident "("`
	Args []*sumAST `@@ ( "," @@ )* ")"`
}

var exprParser = participle.MustBuild[sumAST](participle.UseLookahead(2))

// constants maps identifiers that are not plane variables.
var constants = map[string]Expr{
	"e":  Euler,
	"E":  Euler,
	"pi": Pi,
	"π":  Pi,
}

// aliases maps accepted spellings onto kernel function names.
var aliases = map[string]string{
	"log": "ln",
}

// Normalize folds full-width characters to ASCII, trims surrounding space
// and rewrites the "**" power operator to "^".
func Normalize(src string) string {
	src = width.Narrow.String(src)
	src = strings.TrimSpace(src)
	return strings.ReplaceAll(src, "**", "^")
}

// ParseExpr parses one side of a relation. Only the variables x and y are
// accepted as free symbols.
func ParseExpr(src string) (Expr, error) {
	src = Normalize(src)
	if src == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrParse)
	}
	ast, err := exprParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	e, err := ast.build()
	if err != nil {
		return nil, err
	}
	return e.Simplify(), nil
}

// ParseEquation parses both sides into a canonical lhs = rhs equation.
func ParseEquation(lhs, rhs string) (*Equation, error) {
	l, err := ParseExpr(lhs)
	if err != nil {
		return nil, fmt.Errorf("left side: %w", err)
	}
	r, err := ParseExpr(rhs)
	if err != nil {
		return nil, fmt.Errorf("right side: %w", err)
	}
	return Eq(l, r), nil
}

// MustParse is like ParseExpr but panics on error. Intended for tests and
// package-level constants.
func MustParse(src string) Expr {
	e, err := ParseExpr(src)
	if err != nil {
		panic(err)
	}
	return e
}

func (s *sumAST) build() (Expr, error) {
	acc, err := s.Head.build()
	if err != nil {
		return nil, err
	}
	terms := []Expr{acc}
	for _, op := range s.Tail {
		t, err := op.Term.build()
		if err != nil {
			return nil, err
		}
		if op.Op == "-" {
			t = MulOf(N(-1), t)
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return acc, nil
	}
	return AddOf(terms...), nil
}

func (p *productAST) build() (Expr, error) {
	acc, err := p.Head.build()
	if err != nil {
		return nil, err
	}
	factors := []Expr{acc}
	for _, op := range p.Tail {
		f, err := op.Factor.build()
		if err != nil {
			return nil, err
		}
		if op.Op == "/" {
			if n, ok := f.(*Num); ok && n.IsZero() {
				return nil, fmt.Errorf("%w: division by zero", ErrParse)
			}
			f = PowOf(f, N(-1))
		}
		factors = append(factors, f)
	}
	if len(factors) == 1 {
		return acc, nil
	}
	return MulOf(factors...), nil
}

func (u *unaryAST) build() (Expr, error) {
	e, err := u.Power.build()
	if err != nil {
		return nil, err
	}
	neg := false
	for _, s := range u.Signs {
		if s == "-" {
			neg = !neg
		}
	}
	if neg {
		return MulOf(N(-1), e), nil
	}
	return e, nil
}

func (p *powerAST) build() (Expr, error) {
	base, err := p.Base.build()
	if err != nil {
		return nil, err
	}
	if p.Exp == nil {
		return base, nil
	}
	exp, err := p.Exp.build()
	if err != nil {
		return nil, err
	}
	return PowOf(base, exp), nil
}

func (p *postfixAST) build() (Expr, error) {
	e, err := p.Primary.build()
	if err != nil {
		return nil, err
	}
	for range p.Bangs {
		e = FactorialOf(e)
	}
	return e, nil
}

func (p *primaryAST) build() (Expr, error) {
	switch {
	case p.Number != nil:
		r, ok := new(big.Rat).SetString(*p.Number)
		if !ok {
			return nil, fmt.Errorf("%w: bad number %q", ErrParse, *p.Number)
		}
		return &Num{val: r}, nil
	case p.Call != nil:
		return p.Call.build()
	case p.Ident != nil:
		name := *p.Ident
		switch name {
		case "x", "y":
			return S(name), nil
		}
		if c, ok := constants[name]; ok {
			return c, nil
		}
		return nil, fmt.Errorf("%w: unknown identifier %q", ErrParse, name)
	case p.Group != nil:
		return p.Group.build()
	}
	return nil, fmt.Errorf("%w: empty term", ErrParse)
}

func (c *callAST) build() (Expr, error) {
	args := make([]Expr, len(c.Args))
	for i, a := range c.Args {
		e, err := a.build()
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	name := c.Name
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	if name == "root" {
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: root takes 2 arguments, got %d", ErrParse, len(args))
		}
		n, ok := args[1].(*Num)
		if !ok || !n.IsInteger() || !n.IsPositive() {
			return nil, fmt.Errorf("%w: root index must be a positive integer", ErrParse)
		}
		return PowOf(args[0], numRecip(n)), nil
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: %s takes 1 argument, got %d", ErrParse, name, len(args))
	}
	switch name {
	case "sqrt":
		return SqrtOf(args[0]), nil
	case "cbrt":
		return PowOf(args[0], F(1, 3)), nil
	}
	if !KnownFunc(name) {
		return nil, fmt.Errorf("%w: unknown function %q", ErrParse, c.Name)
	}
	return FuncOf(name, args[0]), nil
}
