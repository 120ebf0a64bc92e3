package match

import "testing"

func TestTable_CreateIsSymmetric(t *testing.T) {
	table := NewTable()
	if err := table.Create("a", "b"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	partner, paired := table.PartnerOf("a")
	if !paired || partner != "b" {
		t.Errorf("expected a->b, got %q (paired=%v)", partner, paired)
	}
	partner, paired = table.PartnerOf("b")
	if !paired || partner != "a" {
		t.Errorf("expected b->a, got %q (paired=%v)", partner, paired)
	}
	if table.Len() != 1 {
		t.Errorf("expected 1 pairing, got %d", table.Len())
	}
}

func TestTable_CreateRejectsSelfPairing(t *testing.T) {
	table := NewTable()
	if err := table.Create("a", "a"); err != ErrSelfPairing {
		t.Errorf("expected ErrSelfPairing, got %v", err)
	}
	if table.Len() != 0 {
		t.Error("failed create must not mutate the table")
	}
}

func TestTable_CreateRejectsThirdPartner(t *testing.T) {
	table := NewTable()
	if err := table.Create("a", "b"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := table.Create("a", "c"); err != ErrAlreadyPaired {
		t.Errorf("expected ErrAlreadyPaired for occupied first id, got %v", err)
	}
	if err := table.Create("c", "b"); err != ErrAlreadyPaired {
		t.Errorf("expected ErrAlreadyPaired for occupied second id, got %v", err)
	}

	// The original pairing survives the rejected attempts.
	if partner, _ := table.PartnerOf("a"); partner != "b" {
		t.Errorf("pairing corrupted: a->%q", partner)
	}
	if _, paired := table.PartnerOf("c"); paired {
		t.Error("c should not be paired")
	}
}

func TestTable_RemoveDropsBothDirections(t *testing.T) {
	table := NewTable()
	table.Create("a", "b")

	partner, removed := table.Remove("a")
	if !removed || partner != "b" {
		t.Fatalf("expected removal returning b, got %q (removed=%v)", partner, removed)
	}

	if _, paired := table.PartnerOf("a"); paired {
		t.Error("a still paired after removal")
	}
	if _, paired := table.PartnerOf("b"); paired {
		t.Error("b still paired after removal")
	}
}

func TestTable_RemoveIsIdempotent(t *testing.T) {
	table := NewTable()
	table.Create("a", "b")
	table.Remove("a")

	if _, removed := table.Remove("a"); removed {
		t.Error("second remove should be a no-op")
	}
	if _, removed := table.Remove("b"); removed {
		t.Error("remove via the former partner should also be a no-op")
	}
}
