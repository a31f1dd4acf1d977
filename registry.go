package graphcalc

import "sync"

// Registry is the arena of active relations. IDs are assigned on Add and
// never reused; Version changes whenever the set changes.
type Registry struct {
	mu      sync.RWMutex
	nextID  int
	byID    map[int]*Relation
	order   []int
	version uint64
}

func NewRegistry() *Registry {
	return &Registry{nextID: 1, byID: map[int]*Relation{}}
}

// Add stores a copy of rel under a fresh ID and returns the copy.
func (r *Registry) Add(rel *Relation) *Relation {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *rel
	stored.ID = r.nextID
	r.nextID++
	r.byID[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	r.version++
	return &stored
}

// Replace swaps the relation at id for rel, keeping its position. The new
// relation gets a fresh ID since its text differs. It returns nil if id is
// unknown.
func (r *Registry) Replace(id int, rel *Relation) *Relation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return nil
	}
	stored := *rel
	stored.ID = r.nextID
	r.nextID++
	delete(r.byID, id)
	r.byID[stored.ID] = &stored
	for i, v := range r.order {
		if v == id {
			r.order[i] = stored.ID
			break
		}
	}
	r.version++
	return &stored
}

func (r *Registry) Remove(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.version++
	return true
}

func (r *Registry) Get(id int) *Relation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// List returns the relations in insertion order.
func (r *Registry) List() []*Relation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Relation, len(r.order))
	for i, id := range r.order {
		out[i] = r.byID[id]
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}
