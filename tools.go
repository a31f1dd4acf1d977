package graphcalc

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/njchilds90/graphcalc/symbolic"
)

// ============================================================
// JSON tool interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type toolParams map[string]interface{}

func (p toolParams) str(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing param: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %s must be a string", key)
	}
	return s, nil
}

func (p toolParams) strings(key string) ([]string, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be array", key)
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		s, ok := r.(string)
		if !ok {
			return nil, fmt.Errorf("param %s[%d] must be string", key, i)
		}
		out[i] = s
	}
	return out, nil
}

func (p toolParams) number(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("param %s must be a number", key)
	}
	return f, nil
}

// expr reads an expression from the "tree" object, as produced by
// parse_relation, or else from the "expr" text.
func (p toolParams) expr() (symbolic.Expr, error) {
	if raw, ok := p["tree"]; ok {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param tree must be an object")
		}
		return symbolic.FromJSON(m)
	}
	src, err := p.str("expr")
	if err != nil {
		return nil, err
	}
	return symbolic.ParseExpr(src)
}

// interval reads [min, max]; absent keys yield def.
func (p toolParams) interval(key string, def Interval) (Interval, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	raw, ok := v.([]interface{})
	if !ok || len(raw) != 2 {
		return Interval{}, fmt.Errorf("param %s must be [min, max]", key)
	}
	lo, ok1 := raw[0].(float64)
	hi, ok2 := raw[1].(float64)
	if !ok1 || !ok2 || lo != math.Trunc(lo) || hi != math.Trunc(hi) {
		return Interval{}, fmt.Errorf("param %s must hold two integers", key)
	}
	if math.Abs(lo) > MaxBound || math.Abs(hi) > MaxBound {
		return Interval{}, fmt.Errorf("param %s must lie within ±%d", key, MaxBound)
	}
	return Interval{int(lo), int(hi)}, nil
}

// toolTimeout bounds the solving and sampling of one tool call.
const toolTimeout = 30 * time.Second

// HandleToolCall dispatches one JSON tool request. Errors are reported in
// the response, never returned.
func HandleToolCall(req ToolRequest) ToolResponse {
	ctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
	defer cancel()
	p := toolParams(req.Params)
	switch req.Tool {
	case "parse_relation":
		text, err := p.str("text")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		rel, err := ParseRelation(text, nil, nil)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		exprs, axis, err := rel.Branches(ctx)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		branches := make([]string, len(exprs))
		for i, e := range exprs {
			branches[i] = e.String()
		}
		return ToolResponse{
			Result: map[string]interface{}{
				"lhs":      rel.LHSText,
				"rhs":      rel.RHSText,
				"axis":     axis.String(),
				"branches": branches,
				"tree":     symbolic.Tree(rel.Equation.Residual()),
			},
			LaTeX:  rel.Equation.LaTeX(),
			String: rel.Equation.String(),
		}

	case "sample":
		texts, err := p.strings("relations")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		w := DefaultWindow()
		if w.Domain, err = p.interval("domain", w.Domain); err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if w.Range, err = p.interval("range", w.Range); err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if err := w.Validate(); err != nil {
			return ToolResponse{Error: err.Error()}
		}
		cfg := DefaultConfig()
		cfg.Window = w
		cache := NewCache(func(ctx context.Context, rel *Relation, w Window) (SampledCurve, error) {
			return Compute(ctx, rel, w, cfg)
		}, nil)
		reg := NewRegistry()
		var curves []map[string]interface{}
		var fellBack []string
		for _, text := range texts {
			rel, err := ParseRelation(text, nil, nil)
			if err != nil {
				return ToolResponse{Error: err.Error()}
			}
			rel = reg.Add(rel)
			curve, err := cache.GetOrCompute(ctx, rel, w)
			if err != nil {
				return ToolResponse{Error: err.Error()}
			}
			if curve.LowResolution {
				fellBack = append(fellBack, rel.DisplayName())
			}
			curves = append(curves, curveJSON(curve))
		}
		return ToolResponse{
			Result: map[string]interface{}{"curves": curves, "advisory": FormatAdvisory(fellBack)},
		}

	case "resolution":
		ds, err := p.number("domain_span", 20)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		rs, err := p.number("range_span", 20)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		d := Resolution(ds, rs)
		return ToolResponse{Result: map[string]interface{}{"x": d.X, "y": d.Y}}

	case "evaluate":
		e, err := p.expr()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		e = symbolic.RealRoots(e)
		for _, name := range []string{"x", "y"} {
			if _, ok := p[name]; !ok {
				continue
			}
			v, err := p.number(name, 0)
			if err != nil {
				return ToolResponse{Error: err.Error()}
			}
			e = symbolic.Sub(e, name, symbolic.NDecimal(v))
		}
		if len(symbolic.FreeSymbols(e)) > 0 {
			return ToolResponse{Result: symbolic.Tree(e), String: e.String(), LaTeX: e.LaTeX()}
		}
		f, err := symbolic.Compile(e, "x", "y")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v := f(0, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ToolResponse{Error: fmt.Sprintf("%s is not real", e)}
		}
		return ToolResponse{Result: v, String: e.String(), LaTeX: e.LaTeX()}

	case "schema":
		return ToolResponse{Result: ToolSpec()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func curveJSON(c SampledCurve) map[string]interface{} {
	lines := make([][][2]float64, len(c.Polylines))
	for i, l := range c.Polylines {
		pts := make([][2]float64, len(l))
		for j, pt := range l {
			pts[j] = [2]float64{pt.X, pt.Y}
		}
		lines[i] = pts
	}
	points := make([][2]float64, len(c.Points))
	for i, pt := range c.Points {
		points[i] = [2]float64{pt.X, pt.Y}
	}
	return map[string]interface{}{
		"text":             c.Text,
		"axis":             c.Axis.String(),
		"polylines":        lines,
		"points":           points,
		"low_resolution":   c.LowResolution,
		"saw_out_of_range": c.SawOutOfRange,
	}
}

// ToolSpec describes the tools understood by HandleToolCall.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("parse_relation", "Parse a relation like \"x^2 + y^2 = 25\" and solve it for y (or x)", []string{"text"}, map[string]string{"text": "string"}),
		ts("sample", "Sample relations over a window. domain and range are [min, max] integers", []string{"relations"}, map[string]string{"relations": "array", "domain": "array", "range": "array"}),
		ts("resolution", "Samples per unit for the given axis spans", []string{}, map[string]string{"domain_span": "number", "range_span": "number"}),
		ts("evaluate", "Evaluate an expression, given as text or as a tree from parse_relation, at x and y. Unbound variables are kept and the partially evaluated tree is returned", []string{}, map[string]string{"expr": "string", "tree": "object", "x": "number", "y": "number"}),
		ts("schema", "Return this tool schema", []string{}, map[string]string{}),
	}
	b, _ := json.MarshalIndent(map[string]interface{}{"tools": tools}, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
