package layout

import (
	"testing"

	"github.com/matzehuels/boxlayout/pkg/layers"
)

func TestChangeSetMerges(t *testing.T) {
	at := func(l, i int) *layers.Location { return &layers.Location{Layer: l, Index: i} }
	cs := newChangeSet()

	cs.record(1, nil, at(0, 0), false)      // added
	cs.record(1, at(0, 0), at(1, 0), true)  // then moved: still added
	cs.record(2, nil, at(0, 1), false)      // added
	cs.record(2, at(0, 1), nil, false)      // then removed: gone
	cs.record(3, at(2, 0), at(2, 0), false) // unchanged
	cs.record(4, at(2, 1), at(2, 0), true)  // moved
	cs.record(5, at(1, 1), nil, false)      // removed

	got := cs.entries()
	if len(got) != 3 {
		t.Fatalf("entries() = %d, want 3", len(got))
	}
	if got[0].vertex != 1 || !got[0].added() || *got[0].new != *at(1, 0) {
		t.Errorf("entry 0 = %+v, want vertex 1 added at 1:0", got[0])
	}
	if got[1].vertex != 4 || got[1].added() || got[1].removed() {
		t.Errorf("entry 1 = %+v, want vertex 4 moved", got[1])
	}
	if got[2].vertex != 5 || !got[2].removed() {
		t.Errorf("entry 2 = %+v, want vertex 5 removed", got[2])
	}
}

func TestTargetRules(t *testing.T) {
	e := newEngine(t)
	mustAdd(t, e, "P", 0)
	mustAdd(t, e, "Q", 0)
	mustAdd(t, e, "Q1", 0, child("Q1-Q", "Q"))

	// No placed siblings: goes before the family of the next parent.
	mustAdd(t, e, "P2", 0, child("P2-P", "P"))
	// Placed siblings: sibling order decides.
	mustAdd(t, e, "P1", 0, child("P1-P", "P"))
	mustAdd(t, e, "P3", 0, child("P3-P", "P"))
	// Root: appended.
	mustAdd(t, e, "Z", 0)

	want := map[string]layers.Location{
		"P": {Layer: 0, Index: 0}, "Q": {Layer: 0, Index: 1}, "Z": {Layer: 0, Index: 2},
		"P1": {Layer: 1, Index: 0}, "P2": {Layer: 1, Index: 1}, "P3": {Layer: 1, Index: 2}, "Q1": {Layer: 1, Index: 3},
	}
	for id, loc := range want {
		if got, _ := e.Location(id); got != loc {
			t.Errorf("Location(%s) = %v, want %v", id, got, loc)
		}
	}
	settled(t, e)
}

func TestPriorityOrdersSiblings(t *testing.T) {
	e := newEngine(t)
	mustAdd(t, e, "R", 0)
	mustAdd(t, e, "a", 0, child("a-R", "R"))
	mustAdd(t, e, "z", 5, child("z-R", "R"))

	if loc, _ := e.Location("z"); loc.Index != 0 {
		t.Errorf("Location(z) = %v, want index 0 (higher priority first)", loc)
	}
	settled(t, e)
}
