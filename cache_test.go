package graphcalc_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/njchilds90/graphcalc"
)

// counter is a ComputeFunc that records how often it ran.
type counter struct {
	calls atomic.Int32
}

func (c *counter) compute(_ context.Context, rel *graphcalc.Relation, w graphcalc.Window) (graphcalc.SampledCurve, error) {
	c.calls.Add(1)
	return graphcalc.SampledCurve{
		RelationID: rel.ID,
		Text:       rel.Text,
		Bounds:     w.Bounds(),
		Polylines:  []graphcalc.Polyline{{{X: 0, Y: 0}, {X: 1, Y: 1}}},
	}, nil
}

func (c *counter) n() int { return int(c.calls.Load()) }

// ============================================================
// Cache tests
// ============================================================

func TestCache_HitWithoutRecompute(t *testing.T) {
	var cnt counter
	reg := graphcalc.NewRegistry()
	cache := graphcalc.NewCache(cnt.compute, reg)
	rel := reg.Add(mustRelation(t, "y = x"))
	w := graphcalc.DefaultWindow()

	first, err := cache.GetOrCompute(context.Background(), rel, w)
	if err != nil {
		t.Fatal(err)
	}
	second, err := cache.GetOrCompute(context.Background(), rel, w)
	if err != nil {
		t.Fatal(err)
	}
	if cnt.n() != 1 {
		t.Errorf("want 1 compute, got %d", cnt.n())
	}
	if len(second.Polylines) != len(first.Polylines) || second.Bounds != first.Bounds {
		t.Errorf("want identical curve, got %+v", second)
	}
	if s := cache.Stats(); s.Hits != 1 || s.Misses != 1 {
		t.Errorf("want 1 hit and 1 miss, got %+v", s)
	}
}

func TestCache_ScaleDoesNotInvalidate(t *testing.T) {
	var cnt counter
	reg := graphcalc.NewRegistry()
	cache := graphcalc.NewCache(cnt.compute, reg)
	rel := reg.Add(mustRelation(t, "y = x"))
	w := graphcalc.DefaultWindow()

	cache.GetOrCompute(context.Background(), rel, w)
	cache.GetOrCompute(context.Background(), rel, w.WithScale(100, 3))
	if cnt.n() != 1 {
		t.Errorf("scale change should not resample, got %d computes", cnt.n())
	}

	w.Domain = graphcalc.Interval{Min: -20, Max: 20}
	curve, _ := cache.GetOrCompute(context.Background(), rel, w)
	if cnt.n() != 2 {
		t.Errorf("domain change should resample, got %d computes", cnt.n())
	}
	if curve.Bounds.Domain.Max != 20 {
		t.Errorf("want curve for the new domain, got %s", curve.Bounds)
	}
	if s := cache.Stats(); s.Resets != 1 {
		t.Errorf("want 1 reset, got %+v", s)
	}
}

func TestCache_RegistryChangeInvalidates(t *testing.T) {
	var cnt counter
	reg := graphcalc.NewRegistry()
	cache := graphcalc.NewCache(cnt.compute, reg)
	rel := reg.Add(mustRelation(t, "y = x"))
	w := graphcalc.DefaultWindow()

	cache.GetOrCompute(context.Background(), rel, w)
	reg.Add(mustRelation(t, "y = 2*x"))
	if _, ok := cache.Get(rel, w); ok {
		t.Error("adding a relation should clear the cache")
	}
}

func TestCache_StoreDropsStale(t *testing.T) {
	var cnt counter
	reg := graphcalc.NewRegistry()
	cache := graphcalc.NewCache(cnt.compute, reg)
	rel := reg.Add(mustRelation(t, "y = x"))
	w := graphcalc.DefaultWindow()
	curve, _ := cnt.compute(context.Background(), rel, w)

	if !cache.Store(rel, w.Bounds(), curve) {
		t.Fatal("fresh result should be stored")
	}
	old := w.Bounds()
	moved := w
	moved.Range = graphcalc.Interval{Min: 0, Max: 1}
	cache.Get(rel, moved)
	if cache.Store(rel, old, curve) {
		t.Error("result for superseded bounds should be dropped")
	}

	reg.Remove(rel.ID)
	if cache.Store(rel, moved.Bounds(), curve) {
		t.Error("result for a removed relation should be dropped")
	}
	if s := cache.Stats(); s.Dropped != 2 {
		t.Errorf("want 2 dropped, got %+v", s)
	}
}

func TestCache_Invalidate(t *testing.T) {
	var cnt counter
	cache := graphcalc.NewCache(cnt.compute, nil)
	rel := mustRelation(t, "y = x")
	cache.GetOrCompute(context.Background(), rel, graphcalc.DefaultWindow())
	if cache.Len() != 1 {
		t.Fatalf("want 1 entry, got %d", cache.Len())
	}
	cache.Invalidate()
	if cache.Len() != 0 {
		t.Errorf("want empty cache, got %d", cache.Len())
	}
}
