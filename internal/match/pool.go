package match

import (
	"math/rand/v2"
)

// Pool is the waiting pool: the set of connection ids currently seeking a
// partner. Membership only, no ordering; selection is uniformly random over
// current members rather than FIFO, an explicit simplicity-over-fairness
// choice. The slice-plus-index representation keeps add, remove, and random
// selection O(1).
//
// Pool is not self-locking. The Engine serializes all access under its
// mutex so candidate selection stays atomic with pairing creation.
type Pool struct {
	ids   []string
	index map[string]int
}

// NewPool creates an empty waiting pool.
func NewPool() *Pool {
	return &Pool{
		index: make(map[string]int),
	}
}

// Add inserts an id into the pool. No-op if already present.
func (p *Pool) Add(id string) {
	if _, exists := p.index[id]; exists {
		return
	}
	p.index[id] = len(p.ids)
	p.ids = append(p.ids, id)
}

// Remove deletes an id from the pool. Idempotent.
func (p *Pool) Remove(id string) {
	i, exists := p.index[id]
	if !exists {
		return
	}
	p.removeAt(i)
}

// PickRandomExcluding removes and returns a uniformly random member other
// than exclude. Returns false when no such member exists.
func (p *Pool) PickRandomExcluding(exclude string) (string, bool) {
	n := len(p.ids)
	excludeIdx, excluded := p.index[exclude]
	if excluded {
		n--
	}
	if n == 0 {
		return "", false
	}

	// Draw over [0,n) and shift past the excluded slot so the draw stays
	// uniform over the remaining members.
	i := rand.IntN(n)
	if excluded && i >= excludeIdx {
		i++
	}

	id := p.ids[i]
	p.removeAt(i)
	return id, true
}

// Contains reports pool membership.
func (p *Pool) Contains(id string) bool {
	_, exists := p.index[id]
	return exists
}

// Len returns the number of waiting ids.
func (p *Pool) Len() int {
	return len(p.ids)
}

func (p *Pool) removeAt(i int) {
	id := p.ids[i]
	last := len(p.ids) - 1
	if i != last {
		p.ids[i] = p.ids[last]
		p.index[p.ids[i]] = i
	}
	p.ids = p.ids[:last]
	delete(p.index, id)
}
