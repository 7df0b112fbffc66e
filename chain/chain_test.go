package chain

import (
	"testing"

	"github.com/coregx/fstapply/alphabet"
	"github.com/coregx/fstapply/apply"
	"github.com/coregx/fstapply/automaton"
	"github.com/coregx/fstapply/sigma"
)

// buildMapper builds a one-arc automaton mapping upper -> lower for a single
// symbol pair, e.g. "a":"x".
func buildMapper(t *testing.T, upper, lower string) *apply.Session {
	t.Helper()
	ab := alphabet.NewBuilder()
	u := ab.Add(upper)
	l := ab.Add(lower)
	alpha := ab.Build()

	bld := automaton.NewBuilder(alpha)
	bld.AddArc(automaton.Arc{Source: 0, In: u, Out: l, Target: 1, IsStart: true})
	bld.AddStateWithNoArcs(1, true, false)

	aut, err := bld.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return apply.NewSession(aut, sigma.Build(alpha), apply.DefaultConfig())
}

func TestChainDownComposesHeadToTail(t *testing.T) {
	first := buildMapper(t, "a", "x")
	second := buildMapper(t, "x", "y")
	c := New(first, second)

	got, ok := c.Down("a")
	if !ok {
		t.Fatal("Down(\"a\") should match through both stages")
	}
	if got != "y" {
		t.Errorf("Down(\"a\") = %q, want %q", got, "y")
	}
}

func TestChainUpComposesTailToHead(t *testing.T) {
	first := buildMapper(t, "a", "x")
	second := buildMapper(t, "x", "y")
	c := New(first, second)

	got, ok := c.Up("y")
	if !ok {
		t.Fatal("Up(\"y\") should match through both stages")
	}
	if got != "a" {
		t.Errorf("Up(\"y\") = %q, want %q", got, "a")
	}
}

func TestChainDownFailsWhenAnyStageFails(t *testing.T) {
	first := buildMapper(t, "a", "x")
	second := buildMapper(t, "b", "y") // expects "b", never sees it
	c := New(first, second)

	if _, ok := c.Down("a"); ok {
		t.Fatal("Down(\"a\") should fail once the second stage can't match \"x\"")
	}
}

func TestChainAlternatesFirstMatchWins(t *testing.T) {
	first := buildMapper(t, "a", "x")
	second := buildMapper(t, "b", "y")
	c := New(first, second)

	got, ok := c.Alternates(apply.Down, "b")
	if !ok {
		t.Fatal("Alternates(\"b\") should match via the second automaton")
	}
	if got != "y" {
		t.Errorf("Alternates(\"b\") = %q, want %q", got, "y")
	}
}

func TestChainAlternatesNoneMatch(t *testing.T) {
	first := buildMapper(t, "a", "x")
	second := buildMapper(t, "b", "y")
	c := New(first, second)

	if _, ok := c.Alternates(apply.Down, "c"); ok {
		t.Fatal("Alternates(\"c\") should not match either automaton")
	}
}

func TestChainRunDispatchesOnDirectionAndAlternates(t *testing.T) {
	first := buildMapper(t, "a", "x")
	second := buildMapper(t, "x", "y")
	c := New(first, second)

	down, ok := c.Run(apply.Down, false, "a")
	if !ok || down != "y" {
		t.Errorf("Run(Down, false, \"a\") = %q, %v; want %q, true", down, ok, "y")
	}

	up, ok := c.Run(apply.Up, false, "y")
	if !ok || up != "a" {
		t.Errorf("Run(Up, false, \"y\") = %q, %v; want %q, true", up, ok, "a")
	}
}

// buildAmbiguous builds a single automaton accepting "a" via two distinct
// paths that emit different outputs, to exercise Chain.All's Continue loop.
func buildAmbiguous(t *testing.T) *apply.Session {
	t.Helper()
	ab := alphabet.NewBuilder()
	a := ab.Add("a")
	x := ab.Add("x")
	z := ab.Add("z")
	alpha := ab.Build()

	bld := automaton.NewBuilder(alpha)
	bld.AddArc(automaton.Arc{Source: 0, In: a, Out: x, Target: 1, IsStart: true})
	bld.AddArc(automaton.Arc{Source: 0, In: a, Out: z, Target: 2, IsStart: true})
	bld.AddStateWithNoArcs(1, true, false)
	bld.AddStateWithNoArcs(2, true, false)

	aut, err := bld.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return apply.NewSession(aut, sigma.Build(alpha), apply.DefaultConfig())
}

func TestChainAllEnumeratesEveryPathForOneAutomaton(t *testing.T) {
	c := New(buildAmbiguous(t))

	got := c.All(apply.Down, "a")
	if len(got) != 2 {
		t.Fatalf("All(\"a\") = %v, want 2 results", got)
	}
	seen := map[string]bool{got[0]: true, got[1]: true}
	if !seen["x"] || !seen["z"] {
		t.Errorf("All(\"a\") = %v, want both \"x\" and \"z\"", got)
	}
}

func TestChainAllNoMatch(t *testing.T) {
	c := New(buildAmbiguous(t))
	if got := c.All(apply.Down, "b"); got != nil {
		t.Errorf("All(\"b\") = %v, want nil", got)
	}
}

func TestChainEmptyChain(t *testing.T) {
	c := New()
	if _, ok := c.Down("a"); ok {
		t.Fatal("Down on an empty chain should never match")
	}
	if _, ok := c.Up("a"); ok {
		t.Fatal("Up on an empty chain should never match")
	}
}
