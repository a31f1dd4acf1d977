package graphcalc

import (
	"context"
	"sync"
)

// ComputeFunc produces the curve for one relation and window.
type ComputeFunc func(ctx context.Context, rel *Relation, w Window) (SampledCurve, error)

// CacheStats counts cache traffic since creation.
type CacheStats struct {
	Hits, Misses, Resets, Dropped int
}

// Cache memoises sampled curves by relation ID. Entries are valid for one
// set of bounds and one registry version; a change to either clears every
// entry. Scale and pan never invalidate.
type Cache struct {
	mu      sync.Mutex
	compute ComputeFunc
	reg     *Registry
	bounds  Bounds
	version uint64
	primed  bool
	entries map[int]SampledCurve
	stats   CacheStats
}

// NewCache returns a cache filled by compute. When reg is non-nil its
// version takes part in invalidation and stale relations are refused by
// Store.
func NewCache(compute ComputeFunc, reg *Registry) *Cache {
	return &Cache{compute: compute, reg: reg, entries: map[int]SampledCurve{}}
}

func (c *Cache) currentVersion() uint64 {
	if c.reg == nil {
		return 0
	}
	return c.reg.Version()
}

// sync clears the cache when b or the registry version moved. Callers hold
// c.mu.
func (c *Cache) sync(b Bounds) {
	v := c.currentVersion()
	if c.primed && c.bounds == b && c.version == v {
		return
	}
	if c.primed && len(c.entries) > 0 {
		c.stats.Resets++
		Logger().Debug("graphcalc: cache reset", "bounds", b.String(), "version", v, "entries", len(c.entries))
	}
	c.entries = map[int]SampledCurve{}
	c.bounds, c.version, c.primed = b, v, true
}

// Get returns the cached curve for rel under w, if any.
func (c *Cache) Get(rel *Relation, w Window) (SampledCurve, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sync(w.Bounds())
	curve, ok := c.entries[rel.ID]
	if ok && curve.Text != rel.Text {
		ok = false
	}
	if ok {
		c.stats.Hits++
	}
	return curve, ok
}

// GetOrCompute returns the cached curve or computes and stores it. The
// lock is not held while computing.
func (c *Cache) GetOrCompute(ctx context.Context, rel *Relation, w Window) (SampledCurve, error) {
	if curve, ok := c.Get(rel, w); ok {
		return curve, nil
	}
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()

	curve, err := c.compute(ctx, rel, w)
	if err != nil {
		return SampledCurve{}, err
	}
	c.Store(rel, w.Bounds(), curve)
	return curve, nil
}

// Store inserts a curve computed elsewhere, e.g. on the gate worker. It is
// dropped when b is not the current bounds or rel is no longer registered.
func (c *Cache) Store(rel *Relation, b Bounds, curve SampledCurve) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reg != nil {
		if cur := c.reg.Get(rel.ID); cur == nil || cur.Text != rel.Text {
			c.stats.Dropped++
			return false
		}
	}
	if c.primed {
		c.sync(c.bounds)
	} else {
		c.sync(b)
	}
	if c.bounds != b {
		c.stats.Dropped++
		return false
	}
	c.entries[rel.ID] = curve
	return true
}

// Invalidate clears every entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.primed = false
	c.entries = map[int]SampledCurve{}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
