package apply

import (
	"testing"

	"github.com/coregx/fstapply/alphabet"
	"github.com/coregx/fstapply/automaton"
	"github.com/coregx/fstapply/sigma"
)

// buildAB builds a two-arc chain automaton: 0 --a:x--> 1 --b:y--> 2 (final).
func buildAB(t *testing.T) (*automaton.Automaton, *sigma.Trie) {
	t.Helper()
	ab := alphabet.NewBuilder()
	a := ab.Add("a")
	x := ab.Add("x")
	b := ab.Add("b")
	y := ab.Add("y")
	alpha := ab.Build()

	bld := automaton.NewBuilder(alpha)
	bld.AddArc(automaton.Arc{Source: 0, In: a, Out: x, Target: 1, IsStart: true})
	bld.AddArc(automaton.Arc{Source: 1, In: b, Out: y, Target: 2})
	bld.AddStateWithNoArcs(2, true, false)

	aut, err := bld.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	trie := sigma.Build(alpha)
	return aut, trie
}

func TestApplyDownBasic(t *testing.T) {
	aut, trie := buildAB(t)
	s := NewSession(aut, trie, DefaultConfig())

	got, ok := s.ApplyDown("ab")
	if !ok {
		t.Fatal("ApplyDown(\"ab\") should match")
	}
	if got != "xy" {
		t.Errorf("ApplyDown(\"ab\") = %q, want %q", got, "xy")
	}
}

func TestApplyDownNoMatch(t *testing.T) {
	aut, trie := buildAB(t)
	s := NewSession(aut, trie, DefaultConfig())

	if _, ok := s.ApplyDown("ac"); ok {
		t.Fatal("ApplyDown(\"ac\") should not match")
	}
}

func TestApplyUpBasic(t *testing.T) {
	aut, trie := buildAB(t)
	s := NewSession(aut, trie, DefaultConfig())

	got, ok := s.ApplyUp("xy")
	if !ok {
		t.Fatal("ApplyUp(\"xy\") should match")
	}
	if got != "ab" {
		t.Errorf("ApplyUp(\"xy\") = %q, want %q", got, "ab")
	}
}

// buildBranching builds an automaton with two a:x arcs out of state 0: the
// first reaches a non-final dead end, the second continues on b:x to a final
// state, so "ab" -> "xx" is found only by backtracking past the first arc.
func buildBranching(t *testing.T) (*automaton.Automaton, *sigma.Trie) {
	t.Helper()
	ab := alphabet.NewBuilder()
	a := ab.Add("a")
	b := ab.Add("b")
	x := ab.Add("x")
	alpha := ab.Build()

	bld := automaton.NewBuilder(alpha)
	// First arc leads to a dead end (state 1, non-final, no outgoing arcs).
	bld.AddArc(automaton.Arc{Source: 0, In: a, Out: x, Target: 1, IsStart: true})
	bld.AddArc(automaton.Arc{Source: 0, In: a, Out: x, Target: 2, IsStart: true})
	bld.AddStateWithNoArcs(1, false, false)
	bld.AddArc(automaton.Arc{Source: 2, In: b, Out: x, Target: 3})
	bld.AddStateWithNoArcs(3, true, false)

	aut, err := bld.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return aut, sigma.Build(alpha)
}

func TestApplyDownBacktracksPastDeadEnd(t *testing.T) {
	aut, trie := buildBranching(t)
	s := NewSession(aut, trie, DefaultConfig())

	got, ok := s.ApplyDown("ab")
	if !ok {
		t.Fatal("ApplyDown(\"ab\") should match via the second branch")
	}
	if got != "xx" {
		t.Errorf("ApplyDown(\"ab\") = %q, want %q", got, "xx")
	}
}

func TestApplyWordsEnumeratesBoth(t *testing.T) {
	aut, trie := buildAB(t)
	s := NewSession(aut, trie, DefaultConfig())

	got, ok := s.ApplyWords()
	if !ok {
		t.Fatal("ApplyWords should yield one pair")
	}
	if got != "a:xb:y" {
		t.Errorf("ApplyWords() = %q, want %q", got, "a:xb:y")
	}
}

func TestResetEnumeratorRestartsSearch(t *testing.T) {
	aut, trie := buildAB(t)
	s := NewSession(aut, trie, DefaultConfig())

	first, ok := s.ApplyDown("ab")
	if !ok {
		t.Fatal("first ApplyDown should match")
	}
	s.ResetEnumerator()
	second, ok := s.ApplyDown("ab")
	if !ok {
		t.Fatal("second ApplyDown after reset should match")
	}
	if first != second {
		t.Errorf("results differ after reset: %q vs %q", first, second)
	}
}

// buildSelfLoop builds the minimal single-state DFA for "a*": state 0 is
// start and final, with a self-loop arc a:a back to itself.
func buildSelfLoop(t *testing.T) (*automaton.Automaton, *sigma.Trie) {
	t.Helper()
	ab := alphabet.NewBuilder()
	a := ab.Add("a")
	alpha := ab.Build()

	bld := automaton.NewBuilder(alpha)
	bld.AddArc(automaton.Arc{Source: 0, In: a, Out: a, Target: 0, IsStart: true, IsFinal: true})

	aut, err := bld.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	trie := sigma.Build(alpha)
	return aut, trie
}

func TestApplyDownTraversesDirectSelfLoop(t *testing.T) {
	aut, trie := buildSelfLoop(t)
	s := NewSession(aut, trie, DefaultConfig())

	for _, word := range []string{"", "a", "aaa"} {
		s.ResetEnumerator()
		got, ok := s.ApplyDown(word)
		if !ok {
			t.Fatalf("ApplyDown(%q) should match via the self-loop", word)
		}
		if got != word {
			t.Errorf("ApplyDown(%q) = %q, want %q", word, got, word)
		}
	}
}

func TestApplyWordsSelfLoopYieldsNonEmptyWord(t *testing.T) {
	aut, trie := buildSelfLoop(t)
	s := NewSession(aut, trie, DefaultConfig())

	first, ok := s.ApplyWords()
	if !ok {
		t.Fatal("ApplyWords should yield the empty word first")
	}
	if first != "" {
		t.Errorf("ApplyWords() first result = %q, want empty", first)
	}

	second, ok := s.Continue()
	if !ok {
		t.Fatal("Continue should yield a second, non-empty word via the self-loop")
	}
	if second != "a" {
		t.Errorf("Continue() second result = %q, want %q", second, "a")
	}
}

func TestApplyRandomWordsSeedIsReproducible(t *testing.T) {
	aut, trie := buildSelfLoop(t)
	cfg := DefaultConfig()
	cfg.RandomSeed = 42

	s1 := NewSession(aut, trie, cfg)
	got1, ok1 := s1.ApplyRandomWords()

	s2 := NewSession(aut, trie, cfg)
	got2, ok2 := s2.ApplyRandomWords()

	if ok1 != ok2 || got1 != got2 {
		t.Errorf("same RandomSeed produced different results: (%q,%v) vs (%q,%v)", got1, ok1, got2, ok2)
	}
}
