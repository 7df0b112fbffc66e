// Package automaton implements the in-memory representation the apply
// engine runs against: a flat, sorted sequence of arcs terminated by a
// sentinel, plus a per-state offset table derived from it.
//
// An Automaton is produced by an external builder (a compiler, a loader —
// see package format) and consumed read-only by apply.Session. Nothing in
// this package mutates an Automaton after Build returns it.
package automaton

import (
	"fmt"

	"github.com/coregx/fstapply/alphabet"
	"github.com/coregx/fstapply/internal/conv"
)

// StateID identifies a state by its position in arc-storage order.
type StateID int32

// InvalidState marks the absence of a state (e.g. the target of the "no
// outgoing arcs" record).
const InvalidState StateID = -1

// Arc is one transition: (source, input symbol, output symbol, target),
// plus the is-final/is-start flags of its source state carried per-arc per
// spec §3 ("the last two bits are carried per-arc but represent properties
// of the source state").
type Arc struct {
	Source  StateID
	In      alphabet.SymbolID
	Out     alphabet.SymbolID
	Target  StateID
	IsFinal bool // true if Source is a final state
	IsStart bool // true if Source is the start state
}

// noArcs is the "state with no outgoing arcs" record shape from spec §3:
// In = Out = Target = -1.
func (a Arc) noOutgoingArcs() bool {
	return a.In == alphabet.SymbolID(InvalidState) && a.Out == alphabet.SymbolID(InvalidState) && a.Target == InvalidState
}

// Automaton is a flat, sorted-by-source sequence of arcs over an Alphabet.
type Automaton struct {
	arcs     []Arc
	alpha    *alphabet.Alphabet
	numState int

	sortedByInput  bool
	sortedByOutput bool

	// pathCount is an optional summary (number of accepting paths), -1 if
	// not computed.
	pathCount int64
}

// Alphabet returns the symbol table this Automaton is defined over.
func (a *Automaton) Alphabet() *alphabet.Alphabet {
	return a.alpha
}

// NumStates returns the number of states, including states with no
// outgoing arcs.
func (a *Automaton) NumStates() int {
	return a.numState
}

// SortedByInput reports whether arcs within each state's group are sorted
// by input-id — the precondition for arc binary search (spec §4.1.1).
func (a *Automaton) SortedByInput() bool {
	return a.sortedByInput
}

// SortedByOutput reports whether arcs within each state's group are sorted
// by output-id.
func (a *Automaton) SortedByOutput() bool {
	return a.sortedByOutput
}

// PathCount returns the optional precomputed accepting-path count and
// whether one is available.
func (a *Automaton) PathCount() (int64, bool) {
	if a.pathCount < 0 {
		return 0, false
	}
	return a.pathCount, true
}

// Arcs returns the full flat arc sequence (excluding the terminal
// sentinel). Callers must not mutate the returned slice.
func (a *Automaton) Arcs() []Arc {
	return a.arcs
}

// StateMap is the per-state first-arc offset table: offsets[s] is the
// index into Automaton.Arcs() of the first arc record with Source == s
// (for a state with no outgoing arcs, its "no outgoing arcs" record), or
// -1 if no record names state s.
//
// It is the only lookup primitive the apply engine uses to find a state's
// arc group (spec §2 component 3).
type StateMap struct {
	offsets []int // offsets[s] = first arc index for state s
	counts  []int // counts[s] = number of arcs for state s
}

// BuildStateMap derives a StateMap from an Automaton's sorted arc sequence.
// Arcs must already be grouped by Source (spec §3 invariant); this is a
// single linear pass.
func BuildStateMap(a *Automaton) *StateMap {
	sm := &StateMap{
		offsets: make([]int, a.numState),
		counts:  make([]int, a.numState),
	}
	for i := range sm.offsets {
		sm.offsets[i] = -1
	}

	for i, arc := range a.arcs {
		s := int(arc.Source)
		if s < 0 || s >= a.numState {
			continue
		}
		if sm.offsets[s] == -1 {
			sm.offsets[s] = i
		}
		if !arc.noOutgoingArcs() {
			sm.counts[s]++
		}
	}
	return sm
}

// ArcsFor returns the arc group for state s, or nil if s has no outgoing
// arcs.
func (sm *StateMap) ArcsFor(a *Automaton, s StateID) []Arc {
	if int(s) < 0 || int(s) >= len(sm.offsets) {
		return nil
	}
	off := sm.offsets[s]
	if off == -1 {
		return nil
	}
	n := sm.counts[s]
	if n == 0 {
		return nil
	}
	return a.arcs[off : off+n]
}

// IsFinal reports whether state s is a final state of a.
func (sm *StateMap) IsFinal(a *Automaton, s StateID) bool {
	if int(s) < 0 || int(s) >= len(sm.offsets) {
		return false
	}
	off := sm.offsets[s]
	if off == -1 || off >= len(a.arcs) {
		return false
	}
	return a.arcs[off].IsFinal
}

// IsStart reports whether state s is the start state of a.
func (sm *StateMap) IsStart(a *Automaton, s StateID) bool {
	if int(s) < 0 || int(s) >= len(sm.offsets) {
		return false
	}
	off := sm.offsets[s]
	if off == -1 || off >= len(a.arcs) {
		return false
	}
	return a.arcs[off].IsStart
}

// Builder constructs an Automaton incrementally. Arcs must be added grouped
// by source state and in final traversal order; Build sorts nothing on the
// caller's behalf beyond what WithSortedByInput/WithSortedByOutput assert.
type Builder struct {
	arcs     []Arc
	numState int
	alpha    *alphabet.Alphabet
}

// NewBuilder creates a Builder over the given Alphabet.
func NewBuilder(alpha *alphabet.Alphabet) *Builder {
	return &Builder{alpha: alpha}
}

// AddArc appends one arc. source must be >= 0; target may be InvalidState
// only for the "no outgoing arcs" record (use AddStateWithNoArcs instead).
func (b *Builder) AddArc(arc Arc) {
	b.arcs = append(b.arcs, arc)
	if int(arc.Source)+1 > b.numState {
		b.numState = int(arc.Source) + 1
	}
	if int(arc.Target)+1 > b.numState {
		b.numState = int(arc.Target) + 1
	}
}

// AddStateWithNoArcs records state s (with its final/start flags) as having
// no outgoing transitions, per spec §3's dedicated sentinel arc shape.
func (b *Builder) AddStateWithNoArcs(s StateID, isFinal, isStart bool) {
	b.arcs = append(b.arcs, Arc{
		Source:  s,
		In:      alphabet.SymbolID(InvalidState),
		Out:     alphabet.SymbolID(InvalidState),
		Target:  InvalidState,
		IsFinal: isFinal,
		IsStart: isStart,
	})
	if int(s)+1 > b.numState {
		b.numState = int(s) + 1
	}
}

// BuildOption configures the finalized Automaton.
type BuildOption func(*Automaton)

// WithSortedByInput asserts arcs within each state group are sorted by
// input-id. The flag is only recorded and reported by SortedByInput; arc
// selection in package apply does not consult it and always scans linearly
// (or uses an attached arc index).
func WithSortedByInput(v bool) BuildOption {
	return func(a *Automaton) { a.sortedByInput = v }
}

// WithSortedByOutput asserts arcs within each state group are sorted by
// output-id.
func WithSortedByOutput(v bool) BuildOption {
	return func(a *Automaton) { a.sortedByOutput = v }
}

// WithPathCount attaches a precomputed accepting-path count summary.
func WithPathCount(n int64) BuildOption {
	return func(a *Automaton) { a.pathCount = n }
}

// Build finalizes the Automaton and validates the invariants from spec §3.
func (b *Builder) Build(opts ...BuildOption) (*Automaton, error) {
	a := &Automaton{
		arcs:      b.arcs,
		alpha:     b.alpha,
		numState:  b.numState,
		pathCount: -1,
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := Validate(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the automaton invariants from spec §3: arcs grouped by
// source, consistent is-final/is-start within a group, exactly one start
// state, every target valid or InvalidState, every referenced symbol id
// present in the Alphabet.
func Validate(a *Automaton) error {
	startCount := 0
	var lastSource StateID = InvalidState
	seenSources := make(map[StateID]bool)
	var groupFinal, groupStart bool

	for i, arc := range a.arcs {
		if arc.Source != lastSource {
			if seenSources[arc.Source] {
				return &ValidationError{
					Message: fmt.Sprintf("arcs for source state %d are not contiguous", arc.Source),
					ArcIdx:  i,
				}
			}
			seenSources[arc.Source] = true
			lastSource = arc.Source
			groupFinal = arc.IsFinal
			groupStart = arc.IsStart
			if arc.IsStart {
				startCount++
			}
		} else {
			if arc.IsFinal != groupFinal || arc.IsStart != groupStart {
				return &ValidationError{
					Message: fmt.Sprintf("inconsistent is-final/is-start within arc group for state %d", arc.Source),
					ArcIdx:  i,
				}
			}
		}

		if !arc.noOutgoingArcs() {
			if arc.Target != InvalidState && (int(arc.Target) < 0 || int(arc.Target) >= a.numState) {
				return &ValidationError{Message: fmt.Sprintf("arc target %d is not a valid state", arc.Target), ArcIdx: i}
			}
			if !a.alpha.Has(arc.In) {
				return &ValidationError{Message: fmt.Sprintf("input symbol %d not in alphabet", arc.In), ArcIdx: i}
			}
			if !a.alpha.Has(arc.Out) {
				return &ValidationError{Message: fmt.Sprintf("output symbol %d not in alphabet", arc.Out), ArcIdx: i}
			}
		}
	}

	if startCount != 1 {
		return &ValidationError{Message: fmt.Sprintf("automaton must have exactly one start state, found %d", startCount), ArcIdx: -1}
	}

	return nil
}

// stateWidth is a conv-backed helper for bounds-checked widening of a state
// count to uint32. Nothing in the module calls it; other state-id
// conversions (e.g. in reachability.go) use plain uint32 conversions.
func stateWidth(n int) uint32 {
	return conv.IntToUint32(n)
}
