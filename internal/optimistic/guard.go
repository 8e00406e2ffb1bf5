package optimistic

import "sync"

// Guard gates mutations per entity id.
//
// The pending set holds ids with a locking mutation in flight. The sequence map
// counts initiated mutations per id and never goes backwards; a response is
// authoritative only while its captured sequence is still the current one.
type Guard[ID comparable] struct {
	mu      sync.Mutex
	pending map[ID]struct{}
	seq     map[ID]uint64
}

func NewGuard[ID comparable]() *Guard[ID] {
	return &Guard[ID]{
		pending: map[ID]struct{}{},
		seq:     map[ID]uint64{},
	}
}

func (g *Guard[ID]) IsPending(id ID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.pending[id]
	return ok
}

// Lock marks id as having a mutation in flight. Idempotent.
func (g *Guard[ID]) Lock(id ID) {
	g.mu.Lock()
	g.pending[id] = struct{}{}
	g.mu.Unlock()
}

// Unlock clears the pending mark for id. Idempotent.
func (g *Guard[ID]) Unlock(id ID) {
	g.mu.Lock()
	delete(g.pending, id)
	g.mu.Unlock()
}

// NextSeq bumps and returns the sequence for id. The first call returns 1.
func (g *Guard[ID]) NextSeq(id ID) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq[id]++
	return g.seq[id]
}

func (g *Guard[ID]) IsLatest(id ID, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq[id] == seq
}

// current is the latest sequence handed out for id.
func (g *Guard[ID]) current(id ID) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq[id]
}

// Pending returns the number of locked ids.
func (g *Guard[ID]) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// begin performs the check-then-sequence step under one lock so two goroutines
// cannot both pass IsPending for the same id.
func (g *Guard[ID]) begin(id ID, lock bool) (uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.pending[id]; busy {
		return 0, false
	}
	g.seq[id]++
	if lock {
		g.pending[id] = struct{}{}
	}
	return g.seq[id], true
}
