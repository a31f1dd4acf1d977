package graphcalc_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/njchilds90/graphcalc"
	"github.com/njchilds90/graphcalc/symbolic"
)

func newEngine(t *testing.T, cfg graphcalc.Config, opts ...graphcalc.EngineOption) *graphcalc.Engine {
	t.Helper()
	e, err := graphcalc.NewEngine(cfg, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return e
}

func frame(t *testing.T, e *graphcalc.Engine) graphcalc.Frame {
	t.Helper()
	f, err := e.Frame(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// ============================================================
// Engine tests
// ============================================================

func TestEngine_CachedAcrossFrames(t *testing.T) {
	var cnt counter
	e := newEngine(t, graphcalc.DefaultConfig(), graphcalc.WithCompute(cnt.compute))
	if _, err := e.Add("y = x", nil); err != nil {
		t.Fatal(err)
	}
	frame(t, e)
	f := frame(t, e)
	if cnt.n() != 1 {
		t.Errorf("want 1 compute, got %d", cnt.n())
	}
	if len(f.Curves) != 1 || !f.Curves[0].Ready {
		t.Fatalf("want one ready curve, got %+v", f.Curves)
	}
	if e.CacheStats().Hits == 0 {
		t.Error("second frame should hit the cache")
	}
}

func TestEngine_ScaleVersusBounds(t *testing.T) {
	var cnt counter
	e := newEngine(t, graphcalc.DefaultConfig(), graphcalc.WithCompute(cnt.compute))
	e.Add("y = x", nil)
	frame(t, e)

	e.SetScale(80, 80)
	frame(t, e)
	if cnt.n() != 1 {
		t.Errorf("scale change: want 1 compute, got %d", cnt.n())
	}

	if _, err := e.SetBounds(graphcalc.Interval{Min: -20, Max: 20}, graphcalc.Interval{Min: -10, Max: 10}); err != nil {
		t.Fatal(err)
	}
	f := frame(t, e)
	if cnt.n() != 2 {
		t.Errorf("domain change: want 2 computes, got %d", cnt.n())
	}
	if got := f.Curves[0].Curve.Bounds.Domain; got.Max != 20 {
		t.Errorf("want curve for the new domain, got %s", got)
	}
}

func TestEngine_InvalidInputLeavesStateAlone(t *testing.T) {
	var cnt counter
	e := newEngine(t, graphcalc.DefaultConfig(), graphcalc.WithCompute(cnt.compute))
	good, _ := e.Add("y = x", nil)
	frame(t, e)
	before := e.CacheStats()

	if _, err := e.Add("not an equation (((", nil); err == nil {
		t.Fatal("want parse error")
	}
	if _, err := e.Edit(good.ID, "y = = x"); err == nil {
		t.Fatal("want error for edit")
	}
	if rels := e.Relations(); len(rels) != 1 || rels[0].ID != good.ID {
		t.Errorf("registry changed: %v", rels)
	}
	if e.CacheStats() != before {
		t.Errorf("cache touched: %+v -> %+v", before, e.CacheStats())
	}
	frame(t, e)
	if cnt.n() != 1 {
		t.Errorf("want no recompute, got %d computes", cnt.n())
	}

	if _, err := e.SetBounds(graphcalc.Interval{Min: 3, Max: 3}, graphcalc.Interval{Min: -1, Max: 1}); err == nil {
		t.Error("want error for empty domain")
	}
	if e.Window().Bounds() != graphcalc.DefaultWindow().Bounds() {
		t.Errorf("rejected bounds should keep the window, got %s", e.Window().Bounds())
	}
}

func TestEngine_EditResamples(t *testing.T) {
	e := newEngine(t, graphcalc.DefaultConfig())
	rel, _ := e.Add("y = x", nil)
	frame(t, e)
	next, err := e.Edit(rel.ID, "y = x + 1000")
	if err != nil {
		t.Fatal(err)
	}
	f := frame(t, e)
	if len(f.Curves) != 1 || f.Curves[0].Relation.ID != next.ID {
		t.Fatalf("want the edited relation, got %+v", f.Curves)
	}
	if !f.Curves[0].Curve.SawOutOfRange || !f.Curves[0].Curve.Empty() {
		t.Errorf("want an empty off-screen curve, got %+v", f.Curves[0].Curve)
	}
	if len(f.Advisory) != 0 {
		t.Errorf("off-screen curve must not raise an advisory, got %v", f.Advisory)
	}
}

func TestEngine_AdvisoryOnce(t *testing.T) {
	e := newEngine(t, graphcalc.DefaultConfig())
	e.Add(graphcalc.UglyChaos, nil)
	e.Add(graphcalc.SquareWave, nil)

	f := frame(t, e)
	if len(f.Advisory) != 1 || f.Advisory[0] != graphcalc.UglyChaos {
		t.Fatalf("want advisory for the chaotic relation, got %v", f.Advisory)
	}
	if !f.Curves[0].Curve.LowResolution || f.Curves[1].Curve.LowResolution {
		t.Errorf("want only the first curve at low resolution")
	}

	e.SetBounds(graphcalc.Interval{Min: -5, Max: 5}, graphcalc.Interval{Min: -5, Max: 5})
	if f = frame(t, e); len(f.Advisory) != 0 {
		t.Errorf("advisory should be reported once, got %v", f.Advisory)
	}
	msg := graphcalc.FormatAdvisory(e.Advisories())
	if !strings.Contains(msg, graphcalc.UglyChaos) {
		t.Errorf("want relation named in %q", msg)
	}
}

func TestEngine_NonBlocking(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	slow := func(_ context.Context, rel *graphcalc.Relation, w graphcalc.Window) (graphcalc.SampledCurve, error) {
		if calls.Add(1) > 1 {
			<-release
		}
		return graphcalc.SampledCurve{
			RelationID: rel.ID,
			Text:       rel.Text,
			Bounds:     w.Bounds(),
			Polylines:  []graphcalc.Polyline{{{X: 0, Y: 0}, {X: 1, Y: 1}}},
		}, nil
	}
	e := newEngine(t, graphcalc.DefaultConfig(), graphcalc.WithCompute(slow))
	e.Add("y = x", nil)
	frame(t, e)

	e.SetBounds(graphcalc.Interval{Min: 0, Max: 10}, graphcalc.Interval{Min: 0, Max: 10})
	f, err := e.Frame(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if f.Pending != 1 || f.Curves[0].Ready {
		t.Fatalf("want a pending curve, got %+v", f)
	}
	if f.Curves[0].Curve.Empty() {
		t.Error("pending relation should draw its last good curve")
	}

	close(release)
	deadline := time.Now().Add(5 * time.Second)
	for f.Pending > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
		f, _ = e.Frame(context.Background(), false)
	}
	if !f.Curves[0].Ready || f.Curves[0].Curve.Bounds.Domain.Min != 0 {
		t.Errorf("want the curve for the new bounds, got %+v", f.Curves[0])
	}
}

func TestEngine_TimeoutDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	stuck := func(ctx context.Context, _ *graphcalc.Relation, _ graphcalc.Window) (graphcalc.SampledCurve, error) {
		calls.Add(1)
		<-ctx.Done()
		return graphcalc.SampledCurve{}, ctx.Err()
	}
	cfg := graphcalc.DefaultConfig()
	cfg.EvalTimeout = 10 * time.Millisecond
	e := newEngine(t, cfg, graphcalc.WithCompute(stuck))
	e.Add("y = x", nil)

	f := frame(t, e)
	if !errors.Is(f.Curves[0].Err, context.DeadlineExceeded) {
		t.Fatalf("want DeadlineExceeded, got %v", f.Curves[0].Err)
	}
	frame(t, e)
	if calls.Load() != 1 {
		t.Errorf("failed relation should wait for new bounds, got %d calls", calls.Load())
	}
	e.SetBounds(graphcalc.Interval{Min: -1, Max: 1}, graphcalc.Interval{Min: -1, Max: 1})
	frame(t, e)
	if calls.Load() != 2 {
		t.Errorf("new bounds should retry, got %d calls", calls.Load())
	}
}

func TestEngine_Remove(t *testing.T) {
	var cnt counter
	e := newEngine(t, graphcalc.DefaultConfig(), graphcalc.WithCompute(cnt.compute))
	a, _ := e.Add("y = x", nil)
	e.Add("y = -x", nil)
	frame(t, e)
	if !e.Remove(a.ID) {
		t.Fatal("remove failed")
	}
	f := frame(t, e)
	if len(f.Curves) != 1 || f.Curves[0].Relation.ID == a.ID {
		t.Errorf("want only the remaining relation, got %+v", f.Curves)
	}
}

func TestEngine_CancelledFrame(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	e := newEngine(t, graphcalc.DefaultConfig(), graphcalc.WithCompute(
		func(ctx context.Context, _ *graphcalc.Relation, _ graphcalc.Window) (graphcalc.SampledCurve, error) {
			select {
			case <-block:
			case <-ctx.Done():
			}
			return graphcalc.SampledCurve{}, nil
		}))
	e.Add("y = x", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := e.Frame(ctx, true); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("want DeadlineExceeded, got %v", err)
	}
}

func TestEngine_EditUnknown(t *testing.T) {
	e := newEngine(t, graphcalc.DefaultConfig())
	if _, err := e.Edit(42, "y = x"); !errors.Is(err, graphcalc.ErrNoRelation) {
		t.Errorf("want ErrNoRelation, got %v", err)
	}
}

func TestEngine_SolveRunsUnderTimeout(t *testing.T) {
	release := make(chan struct{})
	slow := graphcalc.SolverFunc(func(eq *symbolic.Equation, target string) ([]symbolic.Expr, error) {
		<-release
		return symbolic.Solve(eq, target)
	})
	cfg := graphcalc.DefaultConfig()
	cfg.EvalTimeout = 20 * time.Millisecond
	e := newEngine(t, cfg, graphcalc.WithSolver(slow))
	t.Cleanup(func() { close(release) })

	start := time.Now()
	if _, err := e.Add("y = 2*x", nil); err != nil {
		t.Fatal(err)
	}
	if d := time.Since(start); d > time.Second {
		t.Errorf("Add should not wait for the solver, took %s", d)
	}
	f := frame(t, e)
	if !errors.Is(f.Curves[0].Err, context.DeadlineExceeded) {
		t.Errorf("want DeadlineExceeded from the solve, got %v", f.Curves[0].Err)
	}
}

func TestEngine_AddManySumProduct(t *testing.T) {
	factors := make([]string, 16)
	for i := range factors {
		factors[i] = fmt.Sprintf("(x + y + %d)", i+1)
	}
	e := newEngine(t, graphcalc.DefaultConfig())
	start := time.Now()
	if _, err := e.Add(strings.Join(factors, "*")+" = 1", nil); err != nil {
		t.Fatal(err)
	}
	if d := time.Since(start); d > time.Second {
		t.Errorf("Add took %s", d)
	}
	f := frame(t, e)
	if err := f.Curves[0].Err; err != nil {
		t.Errorf("want a curve, got %v", err)
	}
}
