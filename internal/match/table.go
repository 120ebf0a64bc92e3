package match

// Table is the pairing table: a symmetric, exclusive relation between
// connection ids. If a maps to b then b maps to a, and neither maps to any
// third id.
//
// Like Pool, Table relies on the Engine's mutex for serialization.
type Table struct {
	partners map[string]string
}

// NewTable creates an empty pairing table.
func NewTable() *Table {
	return &Table{
		partners: make(map[string]string),
	}
}

// Create records the pairing (a, b) in both directions. Pairing an id with
// itself or with an already-paired id is an invariant violation; the table
// is left untouched.
func (t *Table) Create(a, b string) error {
	if a == b {
		return ErrSelfPairing
	}
	if _, paired := t.partners[a]; paired {
		return ErrAlreadyPaired
	}
	if _, paired := t.partners[b]; paired {
		return ErrAlreadyPaired
	}

	t.partners[a] = b
	t.partners[b] = a
	return nil
}

// PartnerOf returns the partner of id, if paired.
func (t *Table) PartnerOf(id string) (string, bool) {
	partner, paired := t.partners[id]
	return partner, paired
}

// Remove deletes the pairing involving id from both directions and returns
// the former partner. Removing an unpaired id is a no-op returning false,
// which makes simultaneous breaks from both sides safe.
func (t *Table) Remove(id string) (string, bool) {
	partner, paired := t.partners[id]
	if !paired {
		return "", false
	}
	delete(t.partners, id)
	delete(t.partners, partner)
	return partner, true
}

// Len returns the number of active pairings.
func (t *Table) Len() int {
	return len(t.partners) / 2
}
