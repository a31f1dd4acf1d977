package symbolic

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON trees
// ============================================================

// ToJSON encodes e as a nested {"type": ...} object.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// Tree returns the decoded form of ToJSON, for embedding in larger payloads.
func Tree(e Expr) map[string]interface{} { return e.toJSON() }

// FromJSON rebuilds an expression from the object form produced by ToJSON.
// Function names are checked against the kernel's known functions.
func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typ, _ := data["type"].(string)
	if typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}
	d := jsonNode{typ: typ, data: data}

	switch typ {
	case "num":
		val, err := d.str("value")
		if err != nil {
			return nil, err
		}
		r, ok := new(big.Rat).SetString(val)
		if !ok {
			return nil, fmt.Errorf("invalid num value: %s", val)
		}
		return &Num{val: r}, nil
	case "sym":
		name, err := d.str("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil
	case "const":
		name, err := d.str("name")
		if err != nil {
			return nil, err
		}
		c, ok := constants[name]
		if !ok {
			return nil, fmt.Errorf("const: unknown constant %q", name)
		}
		return c, nil
	case "add", "mul":
		field := "terms"
		if typ == "mul" {
			field = "factors"
		}
		items, err := d.list(field)
		if err != nil {
			return nil, err
		}
		if typ == "add" {
			return AddOf(items...), nil
		}
		return MulOf(items...), nil
	case "pow":
		base, err := d.child("base")
		if err != nil {
			return nil, err
		}
		exp, err := d.child("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	case "root":
		arg, err := d.child("arg")
		if err != nil {
			return nil, err
		}
		n, ok := data["n"].(float64)
		if !ok || n < 1 || n != float64(int64(n)) {
			return nil, fmt.Errorf("root: %q must be a positive integer", "n")
		}
		return RootOf(arg, int64(n)), nil
	case "func":
		name, err := d.str("name")
		if err != nil {
			return nil, err
		}
		if !KnownFunc(name) {
			return nil, fmt.Errorf("func: unknown function %q", name)
		}
		arg, err := d.child("arg")
		if err != nil {
			return nil, err
		}
		return FuncOf(name, arg), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

type jsonNode struct {
	typ  string
	data map[string]interface{}
}

func (d jsonNode) str(field string) (string, error) {
	s, ok := d.data[field].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s: %q must be a non-empty string", d.typ, field)
	}
	return s, nil
}

func (d jsonNode) child(field string) (Expr, error) {
	m, ok := d.data[field].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: %q must be an object", d.typ, field)
	}
	e, err := FromJSON(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", d.typ, field, err)
	}
	return e, nil
}

func (d jsonNode) list(field string) ([]Expr, error) {
	raw, ok := d.data[field].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: %q must be an array", d.typ, field)
	}
	out := make([]Expr, len(raw))
	for i, it := range raw {
		m, ok := it.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q[%d] must be an object", d.typ, field, i)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s[%d]: %w", d.typ, field, i, err)
		}
		out[i] = e
	}
	return out, nil
}
