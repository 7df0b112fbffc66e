package arcindex

import (
	"testing"

	"github.com/coregx/fstapply/alphabet"
	"github.com/coregx/fstapply/automaton"
)

func buildDenseAutomaton(t *testing.T, n int) (*automaton.Automaton, *automaton.StateMap, *alphabet.Alphabet) {
	t.Helper()
	ab := alphabet.NewBuilder()
	ids := make([]alphabet.SymbolID, n)
	for i := 0; i < n; i++ {
		ids[i] = ab.Add(string(rune('a' + i)))
	}
	alpha := ab.Build()

	b := automaton.NewBuilder(alpha)
	for i := 0; i < n; i++ {
		b.AddArc(automaton.Arc{Source: 0, In: ids[i], Out: ids[i], Target: automaton.StateID(i + 1), IsStart: true})
	}
	for i := 0; i < n; i++ {
		b.AddStateWithNoArcs(automaton.StateID(i+1), true, false)
	}
	a, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return a, automaton.BuildStateMap(a), alpha
}

func TestBuildByMinArcs(t *testing.T) {
	a, sm, alpha := buildDenseAutomaton(t, 5)
	idx := Build(a, sm, Down, Policy{MinArcs: 5})

	if !idx.Indexed(0) {
		t.Fatal("state 0 should be indexed (5 arcs >= threshold 5)")
	}
	cID, _ := alpha.Lookup("c")
	arcs, indexed := idx.Lookup(0, cID)
	if !indexed || len(arcs) != 1 {
		t.Fatalf("Lookup(0, c) = %v, %v; want 1 arc, true", arcs, indexed)
	}
	if arcs[0].Target != 3 {
		t.Errorf("arc target = %d, want 3", arcs[0].Target)
	}
}

func TestBuildSkipsStatesBelowThreshold(t *testing.T) {
	a, sm, _ := buildDenseAutomaton(t, 3)
	idx := Build(a, sm, Down, Policy{MinArcs: 10})

	if idx.Indexed(0) {
		t.Fatal("state 0 should not be indexed below MinArcs")
	}
}

func TestBuildByBudget(t *testing.T) {
	a, sm, _ := buildDenseAutomaton(t, 4)
	idx := Build(a, sm, Down, Policy{BudgetBytes: int64(4 * bytesPerIndexedArc)})

	if !idx.Indexed(0) {
		t.Fatal("densest state should be indexed within budget")
	}
}

func TestBuildFlagOnly(t *testing.T) {
	ab := alphabet.NewBuilder()
	flagID := ab.Add("@U.Case.nom@")
	aID := ab.Add("a")
	alpha := ab.Build()

	b := automaton.NewBuilder(alpha)
	b.AddArc(automaton.Arc{Source: 0, In: flagID, Out: flagID, Target: 1, IsStart: true})
	b.AddArc(automaton.Arc{Source: 0, In: aID, Out: aID, Target: 1, IsStart: true})
	b.AddStateWithNoArcs(1, true, false)
	a, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sm := automaton.BuildStateMap(a)

	idx := Build(a, sm, Down, Policy{FlagOnly: true})
	if !idx.Indexed(0) {
		t.Fatal("state containing a flag arc should be indexed under FlagOnly")
	}
}

func TestLookupUnindexedState(t *testing.T) {
	a, sm, _ := buildDenseAutomaton(t, 2)
	idx := Build(a, sm, Down, Policy{MinArcs: 99})

	if _, indexed := idx.Lookup(0, 0); indexed {
		t.Fatal("unindexed state should report indexed=false")
	}
}
