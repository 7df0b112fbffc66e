package automaton

import "github.com/coregx/fstapply/internal/sparse"

// ReachableStates returns the set of states reachable from a's start state
// by following arcs forward (ignoring direction — the only thing this
// tracks is which states a traversal in either tape direction could ever
// enter). The search itself never touches the Automaton's arcs beyond
// walking Source/Target, so it's direction-agnostic by construction.
func ReachableStates(a *Automaton, sm *StateMap) *sparse.SparseSet {
	visited := sparse.NewSparseSet(uint32(a.NumStates()))
	var start StateID = InvalidState
	for s := StateID(0); int(s) < a.NumStates(); s++ {
		if sm.IsStart(a, s) {
			start = s
			break
		}
	}
	if start == InvalidState {
		return visited
	}

	queue := []StateID{start}
	visited.Insert(uint32(start))
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, arc := range sm.ArcsFor(a, s) {
			if arc.Target == InvalidState || visited.Contains(uint32(arc.Target)) {
				continue
			}
			visited.Insert(uint32(arc.Target))
			queue = append(queue, arc.Target)
		}
	}
	return visited
}

// UnreachableStates returns every state id not reachable from the start
// state, in ascending order. An empty result means the automaton has no
// dead states.
func UnreachableStates(a *Automaton, sm *StateMap) []StateID {
	reachable := ReachableStates(a, sm)
	var dead []StateID
	for s := StateID(0); int(s) < a.NumStates(); s++ {
		if !reachable.Contains(uint32(s)) {
			dead = append(dead, s)
		}
	}
	return dead
}
