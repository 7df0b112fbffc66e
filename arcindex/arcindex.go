// Package arcindex builds the optional per-state, per-direction acceleration
// structure from spec §4.5: a dense symbol-id -> arc-list lookup that lets
// apply skip the linear arc scan for states with many outgoing arcs.
//
// The index never changes which results are reachable, only how quickly a
// matching arc is found — so it is keyed by the exact symbol-id the apply
// engine already resolved via tokenization, never by re-scanning raw bytes.
package arcindex

import (
	"github.com/coregx/fstapply/alphabet"
	"github.com/coregx/fstapply/automaton"
	"github.com/coregx/fstapply/flagdiacritic"
)

// Direction selects which arc field (input or output symbol) the index is
// keyed on: Down keys on Arc.In, Up keys on Arc.Out.
type Direction int

const (
	Down Direction = iota
	Up
)

// Policy decides which states get an index built for them.
type Policy struct {
	// MinArcs indexes any state whose outgoing arc count is >= MinArcs.
	// Zero disables the absolute-count rule.
	MinArcs int

	// BudgetBytes, if nonzero, selects the densest states (by arc count)
	// up to an approximate memory budget instead of an absolute threshold.
	BudgetBytes int64

	// FlagOnly restricts indexing to states whose arc group contains at
	// least one flag diacritic symbol, regardless of arc count.
	FlagOnly bool
}

// bytesPerIndexedArc approximates one overflow-list entry's footprint for
// BudgetBytes accounting: a slice header amortized per arc plus the arc
// value itself.
const bytesPerIndexedArc = 32

// Index holds, per indexed state, a symbol-id -> arc-list map, plus whether
// that state's arc group is "plain" (no epsilon or flag arcs) — the
// precondition under which an exact symbol-id lookup alone is equivalent to
// the full linear scan apply would otherwise do.
type Index struct {
	dir   Direction
	byKey map[automaton.StateID]map[alphabet.SymbolID][]automaton.Arc
	plain map[automaton.StateID]bool
}

// Build constructs an Index over a for the given direction and policy.
// Flag-diacritic detection for Policy.FlagOnly and for the "plain state"
// classification is done internally via flagdiacritic.Classify against a's
// Alphabet — callers never need to supply their own classifier.
func Build(a *automaton.Automaton, sm *automaton.StateMap, dir Direction, policy Policy) *Index {
	idx := &Index{
		dir:   dir,
		byKey: make(map[automaton.StateID]map[alphabet.SymbolID][]automaton.Arc),
		plain: make(map[automaton.StateID]bool),
	}

	isFlag := func(id alphabet.SymbolID) bool {
		str, ok := a.Alphabet().String(id)
		if !ok {
			return false
		}
		_, flag := flagdiacritic.Classify(str)
		return flag
	}

	type candidate struct {
		state automaton.StateID
		arcs  []automaton.Arc
	}
	var candidates []candidate

	for s := automaton.StateID(0); int(s) < a.NumStates(); s++ {
		arcs := sm.ArcsFor(a, s)
		if len(arcs) == 0 {
			continue
		}

		hasSpecial := false
		for _, arc := range arcs {
			if arc.In == alphabet.Epsilon || arc.Out == alphabet.Epsilon || isFlag(arc.In) || isFlag(arc.Out) {
				hasSpecial = true
				break
			}
		}

		selected := policy.MinArcs > 0 && len(arcs) >= policy.MinArcs
		if !selected && policy.FlagOnly && hasSpecial {
			selected = true
		}
		if !selected && policy.BudgetBytes > 0 {
			candidates = append(candidates, candidate{state: s, arcs: arcs})
			continue
		}
		if selected {
			idx.addState(s, arcs, !hasSpecial)
		}
	}

	if policy.BudgetBytes > 0 && len(candidates) > 0 {
		// Densest-first until the budget is exhausted.
		for i := 0; i < len(candidates); i++ {
			for j := i + 1; j < len(candidates); j++ {
				if len(candidates[j].arcs) > len(candidates[i].arcs) {
					candidates[i], candidates[j] = candidates[j], candidates[i]
				}
			}
		}
		var spent int64
		for _, c := range candidates {
			cost := int64(len(c.arcs)) * bytesPerIndexedArc
			if spent+cost > policy.BudgetBytes {
				break
			}
			hasSpecial := false
			for _, arc := range c.arcs {
				if arc.In == alphabet.Epsilon || arc.Out == alphabet.Epsilon || isFlag(arc.In) || isFlag(arc.Out) {
					hasSpecial = true
					break
				}
			}
			idx.addState(c.state, c.arcs, !hasSpecial)
			spent += cost
		}
	}

	return idx
}

func (idx *Index) addState(s automaton.StateID, arcs []automaton.Arc, plain bool) {
	byKey := make(map[alphabet.SymbolID][]automaton.Arc)
	for _, arc := range arcs {
		key := arc.In
		if idx.dir == Up {
			key = arc.Out
		}
		byKey[key] = append(byKey[key], arc)
	}
	idx.byKey[s] = byKey
	idx.plain[s] = plain
}

// Lookup returns the indexed arc list for (state, symbol), and whether
// state is indexed at all. When indexed is true but the returned slice is
// empty, no arc in that state matches symbol — the caller must not fall
// back to a linear scan, since that would duplicate results.
func (idx *Index) Lookup(s automaton.StateID, symbol alphabet.SymbolID) (arcs []automaton.Arc, indexed bool) {
	byKey, ok := idx.byKey[s]
	if !ok {
		return nil, false
	}
	return byKey[symbol], true
}

// Direction reports which tape this Index is keyed on.
func (idx *Index) Direction() Direction {
	return idx.dir
}

// Indexed reports whether state s has an index built for it.
func (idx *Index) Indexed(s automaton.StateID) bool {
	_, ok := idx.byKey[s]
	return ok
}

// IsPlain reports whether state s's arc group contains no epsilon or flag
// arcs. Only for a plain, indexed state is an exact symbol-id lookup (plus
// the IDENTITY/UNKNOWN wildcard keys) guaranteed equivalent to the full
// linear scan apply would otherwise perform.
func (idx *Index) IsPlain(s automaton.StateID) bool {
	return idx.plain[s]
}

// Candidates returns every arc out of state s that could possibly match
// symbol sym: the exact key, plus the IDENTITY and UNKNOWN wildcard keys
// when distinct from sym. Only valid to call when IsPlain(s) is true — a
// state with epsilon or flag arcs must fall back to a linear scan so those
// always get a chance to fire regardless of sym.
func (idx *Index) Candidates(s automaton.StateID, sym alphabet.SymbolID) []automaton.Arc {
	byKey, ok := idx.byKey[s]
	if !ok {
		return nil
	}
	out := append([]automaton.Arc{}, byKey[sym]...)
	if sym != alphabet.Identity {
		out = append(out, byKey[alphabet.Identity]...)
	}
	if sym != alphabet.Unknown {
		out = append(out, byKey[alphabet.Unknown]...)
	}
	return out
}
