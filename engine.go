package graphcalc

import (
	"context"
	"fmt"
	"image/color"
)

// FrameCurve is what the render loop draws for one relation.
type FrameCurve struct {
	Relation *Relation
	Curve    SampledCurve
	// Ready is true when Curve was computed for the current bounds. When
	// false, Curve is the last good result, possibly empty.
	Ready bool
	// Err is the evaluation error of the last attempt, e.g. a timeout.
	Err error
}

// Frame is the output of one render-loop tick.
type Frame struct {
	Window Window
	Curves []FrameCurve
	// Advisory lists relations that fell back to implicit sampling and were
	// not reported in an earlier frame.
	Advisory []string
	// Pending counts relations still being evaluated.
	Pending int
}

type pendingJob struct {
	handle *Handle
	bounds Bounds
}

// Engine ties the registry, window, cache and gate together for a single
// render loop. It is not safe for concurrent use.
type Engine struct {
	cfg        Config
	solver     Solver
	reg        *Registry
	window     *WindowTracker
	cache      *Cache
	gate       *Gate
	pending    map[int]pendingJob
	failed     map[int]Bounds
	lastGood   map[int]SampledCurve
	advisories *advisoryLog
}

// EngineOption customises NewEngine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	solver  Solver
	compute ComputeFunc
}

// WithSolver replaces DefaultSolver for relations added to the engine.
func WithSolver(s Solver) EngineOption {
	return func(o *engineOptions) { o.solver = s }
}

// WithCompute replaces the sampling pipeline run on the gate worker.
func WithCompute(f ComputeFunc) EngineOption {
	return func(o *engineOptions) { o.compute = f }
}

func NewEngine(cfg Config, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := engineOptions{solver: DefaultSolver}
	for _, opt := range opts {
		opt(&o)
	}
	if o.compute == nil {
		o.compute = func(ctx context.Context, rel *Relation, w Window) (SampledCurve, error) {
			return Compute(ctx, rel, w, cfg)
		}
	}
	tracker, err := NewWindowTracker(cfg.Window)
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	return &Engine{
		cfg:        cfg,
		solver:     o.solver,
		reg:        reg,
		window:     tracker,
		cache:      NewCache(o.compute, reg),
		gate:       NewGate(o.compute, cfg.EvalTimeout),
		pending:    map[int]pendingJob{},
		failed:     map[int]Bounds{},
		lastGood:   map[int]SampledCurve{},
		advisories: newAdvisoryLog(),
	}, nil
}

// Add parses text and registers it. Invalid text leaves the engine as it
// was and returns a *RelationError.
func (e *Engine) Add(text string, col color.Color) (*Relation, error) {
	rel, err := ParseRelation(text, col, e.solver)
	if err != nil {
		return nil, err
	}
	return e.reg.Add(rel), nil
}

// Edit replaces the relation at id with new text, keeping its colour and
// position. On error the old relation stays.
func (e *Engine) Edit(id int, text string) (*Relation, error) {
	old := e.reg.Get(id)
	if old == nil {
		return nil, fmt.Errorf("%w: %d", ErrNoRelation, id)
	}
	rel, err := ParseRelation(text, old.Color, e.solver)
	if err != nil {
		return nil, err
	}
	return e.reg.Replace(id, rel), nil
}

func (e *Engine) Remove(id int) bool { return e.reg.Remove(id) }

func (e *Engine) Relations() []*Relation { return e.reg.List() }

// SetBounds validates and applies new domain and range. Rejected bounds
// keep the last valid window, which is returned with the error.
func (e *Engine) SetBounds(domain, rng Interval) (Window, error) {
	return e.window.Set(domain, rng)
}

// SetScale changes the projection only; cached curves stay valid.
func (e *Engine) SetScale(sx, sy float64) Window { return e.window.SetScale(sx, sy) }

func (e *Engine) Window() Window { return e.window.Current() }

func (e *Engine) CacheStats() CacheStats { return e.cache.Stats() }

// Advisories lists every relation reported as partially evaluated so far.
func (e *Engine) Advisories() []string { return e.advisories.all() }

// Close stops the background worker.
func (e *Engine) Close() { e.gate.Close() }

// Frame produces the curves for the current relations and window. Cached
// curves are reused; missing ones are submitted to the gate. With blocking
// set, Frame waits for those results. Otherwise it draws the last good
// curve and picks the result up on a later frame.
func (e *Engine) Frame(ctx context.Context, blocking bool) (Frame, error) {
	w := e.window.Current()
	b := w.Bounds()
	rels := e.reg.List()

	live := make(map[int]bool, len(rels))
	for _, rel := range rels {
		live[rel.ID] = true
	}
	for id, p := range e.pending {
		if !live[id] || p.bounds != b {
			delete(e.pending, id)
		}
	}
	for id, fb := range e.failed {
		if !live[id] || fb != b {
			delete(e.failed, id)
		}
	}
	for id := range e.lastGood {
		if !live[id] {
			delete(e.lastGood, id)
		}
	}

	frame := Frame{Window: w, Curves: make([]FrameCurve, 0, len(rels))}
	for _, rel := range rels {
		fc := FrameCurve{Relation: rel}
		if curve, ok := e.cache.Get(rel, w); ok {
			fc.Curve, fc.Ready = curve, true
		} else if _, failed := e.failed[rel.ID]; !failed {
			p, ok := e.pending[rel.ID]
			if !ok {
				p = pendingJob{handle: e.gate.Submit(rel, w), bounds: b}
				e.pending[rel.ID] = p
			}
			var (
				curve SampledCurve
				err   error
				ready bool
			)
			if blocking {
				curve, err = p.handle.Wait(ctx)
				if ctxErr := ctx.Err(); ctxErr != nil {
					return Frame{}, ctxErr
				}
				ready = true
			} else {
				curve, err, ready = p.handle.Poll()
			}
			if ready {
				delete(e.pending, rel.ID)
				if err != nil {
					fc.Err = err
					e.failed[rel.ID] = b
					Logger().Warn("graphcalc: evaluation failed", "relation", rel.Text, "error", err)
				} else {
					e.cache.Store(rel, b, curve)
					fc.Curve, fc.Ready = curve, true
				}
			} else {
				frame.Pending++
			}
		}
		if fc.Ready {
			e.lastGood[rel.ID] = fc.Curve
			if fc.Curve.LowResolution && e.advisories.note(rel.DisplayName()) {
				frame.Advisory = append(frame.Advisory, rel.DisplayName())
			}
		} else if prev, ok := e.lastGood[rel.ID]; ok {
			fc.Curve = prev
		}
		frame.Curves = append(frame.Curves, fc)
	}
	return frame, nil
}
