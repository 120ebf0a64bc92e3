package match

import (
	"log"
	"sync"

	"tandem/internal/registry"
	"tandem/pkg/types"
)

// Engine is the matching engine. It owns the waiting pool and the pairing
// table and serializes every mutation of either under a single mutex, so
// candidate selection and pairing creation form one atomic step: two
// concurrent FindPartnerFor calls can never dequeue the same candidate or
// produce overlapping pairings.
//
// Partner-found, waiting, and partner-disconnected notifications are emitted
// inside the locked section as direct side effects of the state change, so
// a client is never observably Paired before both sides were notified.
type Engine struct {
	mu       sync.Mutex
	pool     *Pool
	table    *Table
	registry *registry.Registry
}

// NewEngine creates a matching engine over the given registry.
func NewEngine(reg *registry.Registry) *Engine {
	return &Engine{
		pool:     NewPool(),
		table:    NewTable(),
		registry: reg,
	}
}

// FindPartnerFor attempts to pair id with a random waiting connection.
// With a candidate available, both sides transition to Paired and receive
// partner_found. Otherwise id transitions to Waiting, joins the pool, and
// receives waiting_for_partner. Matching always resolves synchronously
// against current pool state; it never blocks waiting for a future arrival.
func (e *Engine) FindPartnerFor(id string) error {
	return e.findPartner(id, "")
}

// Rematch is FindPartnerFor for a skipper: avoid, the just-broken partner,
// is never selected, so a skip cannot instantly re-pair the same two
// connections. The avoided id stays in the pool for everyone else.
func (e *Engine) Rematch(id, avoid string) error {
	return e.findPartner(id, avoid)
}

func (e *Engine) findPartner(id, avoid string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	client, exists := e.registry.Get(id)
	if !exists {
		return ErrUnknownClient
	}
	if _, paired := e.table.PartnerOf(id); paired {
		return ErrAlreadyPaired
	}

	candidate := e.pickCandidate(id, avoid)
	if candidate == nil {
		e.pool.Add(id)
		client.SetState(types.StateWaiting)
		e.notify(client, types.Notice{
			Type:    types.EventWaitingForPartner,
			Message: types.NoticeWaiting,
		})
		return nil
	}

	// A repeated find_partner from a Waiting client is itself pool-resident.
	e.pool.Remove(id)

	if err := e.table.Create(id, candidate.ID()); err != nil {
		// Unreachable while the lock covers both structures; restore the
		// candidate rather than corrupt shared state.
		e.pool.Add(candidate.ID())
		return err
	}

	client.SetPartner(candidate.ID())
	client.SetState(types.StatePaired)
	candidate.SetPartner(id)
	candidate.SetState(types.StatePaired)

	e.notify(client, types.PartnerFound{
		Type:      types.EventPartnerFound,
		PartnerID: candidate.ID(),
		Message:   types.NoticePartnerFound,
	})
	e.notify(candidate, types.PartnerFound{
		Type:      types.EventPartnerFound,
		PartnerID: id,
		Message:   types.NoticePartnerFound,
	})

	return nil
}

// Break dissolves id's pairing, if any: id returns to Idle and drops its
// partner reference (the caller decides whether to re-match), while the
// former partner is notified with the given message and returned to the
// waiting pool, passively matchable but not auto-rematched. Break also
// removes id from the pool, making it the one call lifecycle cleanup needs
// for any state. Idempotent: breaking an unpaired id is a no-op.
func (e *Engine) Break(id, message string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pool.Remove(id)

	if client, exists := e.registry.Get(id); exists {
		client.ClearPartner()
		client.SetTyping(false)
		client.SetState(types.StateIdle)
	}

	partnerID, hadPartner := e.table.Remove(id)
	if !hadPartner {
		return "", false
	}

	partner, exists := e.registry.Get(partnerID)
	if !exists {
		// Both sides unwound concurrently; the pairing is gone either way.
		return partnerID, true
	}

	partner.ClearPartner()
	partner.SetTyping(false)
	partner.SetState(types.StateWaiting)
	e.pool.Add(partnerID)
	e.notify(partner, types.Notice{
		Type:    types.EventPartnerDisconnected,
		Message: message,
	})

	return partnerID, true
}

// PartnerOf returns id's current partner from the authoritative table.
func (e *Engine) PartnerOf(id string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table.PartnerOf(id)
}

// Waiting reports pool membership for id.
func (e *Engine) Waiting(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.Contains(id)
}

// Stats returns the waiting pool size and the number of active pairings.
func (e *Engine) Stats() (waiting, pairings int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.Len(), e.table.Len()
}

// pickCandidate draws random pool members until one resolves in the
// registry, skipping avoid. Drawing then redrawing keeps the selection
// uniform over the remaining members; the avoided id re-enters the pool
// before returning. Disconnect cleanup removes ids from the pool before
// the registry, so a stale entry signals a bug; drop it rather than pair
// against it.
func (e *Engine) pickCandidate(exclude, avoid string) *registry.Client {
	heldAvoid := false
	defer func() {
		if heldAvoid {
			e.pool.Add(avoid)
		}
	}()

	for {
		candidateID, found := e.pool.PickRandomExcluding(exclude)
		if !found {
			return nil
		}
		if avoid != "" && candidateID == avoid {
			heldAvoid = true
			continue
		}
		candidate, exists := e.registry.Get(candidateID)
		if exists {
			return candidate
		}
		log.Printf("matching: dropped stale pool entry %s", candidateID)
	}
}

// notify delivers an event inside the exclusion domain. Send failures are
// logged, not propagated: a dead connection is unwound by its own
// disconnect path, never by a peer's matching attempt.
func (e *Engine) notify(client *registry.Client, event interface{}) {
	if err := client.Send(event); err != nil {
		log.Printf("matching: failed to notify %s: %v", client.ID(), err)
	}
}
