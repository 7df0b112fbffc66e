// Package apply implements the depth-first, backtracking search that
// executes a compiled automaton against an input (or freely, for
// enumeration and random sampling), per spec §4.1.
package apply

import (
	"math/rand/v2"

	"github.com/coregx/fstapply/alphabet"
	"github.com/coregx/fstapply/arcindex"
	"github.com/coregx/fstapply/automaton"
	"github.com/coregx/fstapply/flagdiacritic"
	"github.com/coregx/fstapply/sigma"
)

// frame records one edge taken during the search: enough to resume the
// parent state's arc cursor and undo every side effect of having taken the
// arc, on backtrack (spec §4.1 "each stack frame records...").
type frame struct {
	parentState automaton.StateID
	parentPos   int
	parentArcs  []automaton.Arc
	nextCursor  int // parent's cursor, already advanced past the arc taken

	childPrevMark int32 // target state's mark before this transition

	outLen int // output buffer length before this arc's emission

	shadow    flagdiacritic.Shadow
	hasShadow bool
}

// Session is one bound, mutable traversal of an Automaton. A Session is not
// safe for concurrent use by multiple goroutines; independent Sessions may
// share the same (read-only) Automaton freely (spec §5).
type Session struct {
	a   *automaton.Automaton
	sm  *automaton.StateMap
	trie *sigma.Trie
	idx *arcindex.Index // optional, nil disables index-accelerated lookup

	cfg  Config
	mode Mode

	flags *flagdiacritic.FeatureMap
	input *sigma.Input // non-nil only during a MatchString run

	marks []int32
	rng   *rand.Rand // non-nil only when Config.RandomSeed is set

	curState  automaton.StateID
	curPos    int
	curArcs   []automaton.Arc
	curCursor int
	arcsReady bool

	stack []frame
	buf   []byte

	active    bool // a search is in progress (stack/cursor state is meaningful)
	exhausted bool
	resuming  bool // true when the next run() call must not re-yield curState
}

// NewSession binds a Session to automaton a. trie is the sigma-trie used to
// tokenize MatchString input; pass nil if the session is only ever used to
// enumerate or sample (no input is ever tokenized).
func NewSession(a *automaton.Automaton, trie *sigma.Trie, cfg Config) *Session {
	s := &Session{
		a:     a,
		sm:    automaton.BuildStateMap(a),
		trie:  trie,
		cfg:   cfg,
		flags: flagdiacritic.NewFeatureMap(),
		marks: make([]int32, a.NumStates()),
	}
	if cfg.RandomSeed != 0 {
		seed := uint64(cfg.RandomSeed)
		s.rng = rand.New(rand.NewPCG(seed, seed))
	}
	return s
}

// randIntN draws from the Session's seeded generator when Config.RandomSeed
// is set, falling back to the package-level (unseeded) generator otherwise.
func (s *Session) randIntN(n int) int {
	if s.rng != nil {
		return s.rng.IntN(n)
	}
	return rand.IntN(n)
}

// SetIndex attaches an optional arc index. Pass nil to disable.
func (s *Session) SetIndex(idx *arcindex.Index) {
	s.idx = idx
}

// ResetEnumerator discards any in-progress search, so the next Apply*/
// enumerate/random call starts fresh (spec §4.1 "reset_enumerator").
func (s *Session) ResetEnumerator() {
	s.active = false
	s.exhausted = false
	s.resuming = false
	s.stack = s.stack[:0]
	s.buf = s.buf[:0]
	for i := range s.marks {
		s.marks[i] = 0
	}
	s.flags.Reset()
	s.input = nil
}

func (s *Session) startFresh(mode Mode, input *sigma.Input) {
	s.mode = mode
	s.input = input
	s.stack = s.stack[:0]
	s.buf = s.buf[:0]
	for i := range s.marks {
		s.marks[i] = 0
	}
	s.flags.Reset()
	s.curState = 0
	s.curPos = 0
	s.curArcs = nil
	s.curCursor = 0
	s.arcsReady = false
	s.active = true
	s.exhausted = false
	s.resuming = false
}

// ApplyDown runs a MatchString/Down search consuming word. ok is false if
// no accepting path exists.
func (s *Session) ApplyDown(word string) (string, bool) {
	return s.applyMatch(Down, word)
}

// ApplyUp runs a MatchString/Up search consuming word.
func (s *Session) ApplyUp(word string) (string, bool) {
	return s.applyMatch(Up, word)
}

func (s *Session) applyMatch(dir Direction, word string) (string, bool) {
	var input *sigma.Input
	if s.trie != nil {
		input = sigma.Tokenize(s.trie, []byte(word))
	} else {
		input = sigma.Tokenize(&sigma.Trie{}, []byte(word))
	}
	s.startFresh(Mode{Direction: dir, Kind: MatchString, Side: Both}, input)
	return s.run()
}

// Continue resumes the last MatchString or Enumerate search and returns the
// next distinct result (spec §4.1 "subsequent calls with word=none").
func (s *Session) Continue() (string, bool) {
	if !s.active || s.exhausted {
		return "", false
	}
	return s.run()
}

// ApplyWords enumerates the automaton's language as upper:lower pairs.
func (s *Session) ApplyWords() (string, bool) {
	if !s.active {
		s.startFresh(Mode{Direction: Down, Kind: Enumerate, Side: Both}, nil)
	}
	return s.run()
}

// ApplyUpperWords enumerates the upper-side language only.
func (s *Session) ApplyUpperWords() (string, bool) {
	if !s.active {
		s.startFresh(Mode{Direction: Down, Kind: Enumerate, Side: Upper}, nil)
	}
	return s.run()
}

// ApplyLowerWords enumerates the lower-side language only.
func (s *Session) ApplyLowerWords() (string, bool) {
	if !s.active {
		s.startFresh(Mode{Direction: Down, Kind: Enumerate, Side: Lower}, nil)
	}
	return s.run()
}

// ApplyRandomWords returns one random accepted upper:lower pair. Every call
// restarts the search (spec §4.1).
func (s *Session) ApplyRandomWords() (string, bool) {
	s.startFresh(Mode{Direction: Down, Kind: Random, Side: Both}, nil)
	return s.run()
}

// ApplyRandomUpper returns one random accepted word on the upper side.
func (s *Session) ApplyRandomUpper() (string, bool) {
	s.startFresh(Mode{Direction: Down, Kind: Random, Side: Upper}, nil)
	return s.run()
}

// ApplyRandomLower returns one random accepted word on the lower side.
func (s *Session) ApplyRandomLower() (string, bool) {
	s.startFresh(Mode{Direction: Down, Kind: Random, Side: Lower}, nil)
	return s.run()
}

// run drives the DFS loop (spec §4.1 steps 1-3) until a result is yielded
// or the search is exhausted.
func (s *Session) run() (string, bool) {
	depth := 0
	maxDepth := s.cfg.maxDepth()
	// On a resumed call (Continue after a prior yield), curState is still
	// the state that was just yielded; skip re-checking it as eligible for
	// exactly this first loop iteration, matching foma's apply_net "resume"
	// label jumping straight past the yield check into the next-arc search.
	skipYieldCheck := s.resuming
	s.resuming = false

	for {
		if depth > maxDepth {
			if s.mode.Kind == Random {
				s.exhausted = true
				return string(s.buf), true
			}
			s.exhausted = true
			return "", false
		}

		n := -1
		if s.input != nil {
			n = s.input.Len()
		}
		final := s.sm.IsFinal(s.a, s.curState)
		eligible := !skipYieldCheck && final && (s.mode.Kind != MatchString || s.curPos == n)
		skipYieldCheck = false

		if eligible {
			if s.mode.Kind == Random {
				if s.randIntN(2) == 0 {
					s.exhausted = true
					return string(s.buf), true
				}
			} else {
				s.resuming = true
				return string(s.buf), true
			}
		}

		if arc, consumed, shadow, hasShadow, priorMark, ok := s.selectArc(); ok {
			s.push(arc, consumed, shadow, hasShadow, priorMark)
			depth++
			continue
		}

		if !s.pop() {
			s.exhausted = true
			if s.mode.Kind == Random {
				return string(s.buf), true
			}
			return "", false
		}
		depth--
	}
}

// selectArc finds the next arc out of curState that matches at curPos,
// advancing curCursor past every candidate it rejects along the way.
func (s *Session) selectArc() (arc automaton.Arc, consumed int, shadow flagdiacritic.Shadow, hasShadow bool, priorMark int32, ok bool) {
	if !s.arcsReady {
		s.curArcs = s.arcGroup()
		s.curCursor = 0
		s.arcsReady = true
	}

	if s.mode.Kind == Random {
		if len(s.curArcs) == 0 {
			return automaton.Arc{}, 0, flagdiacritic.Shadow{}, false, 0, false
		}
		start := s.randIntN(len(s.curArcs))
		for i := 0; i < len(s.curArcs); i++ {
			cand := s.curArcs[(start+i)%len(s.curArcs)]
			if c, sh, has, pm, ok := s.tryArc(cand); ok {
				s.curCursor = len(s.curArcs) // exhaust this frame after one random pick
				return cand, c, sh, has, pm, true
			}
		}
		s.curCursor = len(s.curArcs)
		return automaton.Arc{}, 0, flagdiacritic.Shadow{}, false, 0, false
	}

	for s.curCursor < len(s.curArcs) {
		cand := s.curArcs[s.curCursor]
		s.curCursor++
		if c, sh, has, pm, ok := s.tryArc(cand); ok {
			return cand, c, sh, has, pm, true
		}
	}
	return automaton.Arc{}, 0, flagdiacritic.Shadow{}, false, 0, false
}

// arcGroup returns the candidate arc list for curState, consulting the arc
// index (spec §4.5) when one is present, the state's arcs are free of
// epsilon/flag arcs, and we know the exact symbol being sought (MatchString
// mode with input remaining).
func (s *Session) arcGroup() []automaton.Arc {
	full := s.sm.ArcsFor(s.a, s.curState)
	if s.idx == nil || s.mode.Kind != MatchString || s.input == nil {
		return full
	}
	wantDir := arcindex.Down
	if s.mode.Direction == Up {
		wantDir = arcindex.Up
	}
	if s.idx.Direction() != wantDir {
		return full
	}
	if !s.idx.Indexed(s.curState) || !s.idx.IsPlain(s.curState) {
		return full
	}
	if s.curPos >= s.input.Len() {
		return full
	}
	m, _ := s.input.At(s.curPos)
	return s.idx.Candidates(s.curState, m.Symbol)
}

// tryArc evaluates one candidate arc: symbol matching, flag gating, and
// cycle-mark admission (which also governs direct self-loops — there is no
// separate self-loop guard). It never mutates curCursor.
func (s *Session) tryArc(arc automaton.Arc) (consumed int, shadow flagdiacritic.Shadow, hasShadow bool, priorMark int32, ok bool) {
	priorMark = s.marks[arc.Target]

	readSym := arc.In
	if s.mode.Direction == Up {
		readSym = arc.Out
	}

	if readSym == alphabet.Epsilon {
		consumed = 0
	} else if symStr, isSym := s.a.Alphabet().String(readSym); isSym {
		if flag, isFlag := flagdiacritic.Classify(symStr); isFlag {
			if !s.cfg.ObeyFlags {
				consumed = 0
			} else {
				applied, sh := s.flags.Apply(flag)
				if !applied {
					return 0, flagdiacritic.Shadow{}, false, priorMark, false
				}
				consumed, shadow, hasShadow = 0, sh, true
			}
		} else {
			c, matched := s.matchOrdinary(readSym)
			if !matched {
				return 0, flagdiacritic.Shadow{}, false, priorMark, false
			}
			consumed = c
		}
	} else {
		return 0, flagdiacritic.Shadow{}, false, priorMark, false
	}

	if s.mode.Kind != Random && !s.admit(arc.Target, s.curPos+consumed) {
		if hasShadow {
			s.flags.Restore(shadow)
		}
		return 0, flagdiacritic.Shadow{}, false, priorMark, false
	}

	return consumed, shadow, hasShadow, priorMark, true
}

// matchOrdinary implements apply_match_str for a non-flag, non-epsilon
// symbol (spec §4.2).
func (s *Session) matchOrdinary(sym alphabet.SymbolID) (consumed int, ok bool) {
	if s.mode.Kind != MatchString {
		return 0, true
	}
	if s.input == nil || s.curPos >= s.input.Len() {
		return 0, false
	}
	m, _ := s.input.At(s.curPos)
	if m.Symbol == sym {
		return m.Consumed, true
	}
	if (sym == alphabet.Identity || sym == alphabet.Unknown) && m.Symbol == alphabet.Identity {
		return m.Consumed, true
	}
	return 0, false
}

// admit applies the cycle-detection mark transition for entering target at
// newPos (spec §4.1 "Cycle detection"). It returns false when entry must be
// refused.
func (s *Session) admit(target automaton.StateID, newPos int) bool {
	want := int32(newPos + 1)
	cur := s.marks[target]

	switch {
	case cur == want:
		if s.mode.Kind == Enumerate {
			return false
		}
		s.marks[target] = -want
		return true
	case cur == -want:
		return false
	default:
		s.marks[target] = want
		return true
	}
}

// push commits a transition: records a frame, applies the output emission,
// and moves curState/curPos to the arc's target.
func (s *Session) push(arc automaton.Arc, consumed int, shadow flagdiacritic.Shadow, hasShadow bool, priorMark int32) {
	// admit() already set the mark for non-Random kinds, using the mark
	// tryArc captured before that mutation; for Random we set it here for
	// consistency even though it is never consulted.
	if s.mode.Kind == Random {
		s.marks[arc.Target] = int32(s.curPos+consumed) + 1
	}

	f := frame{
		parentState:   s.curState,
		parentPos:     s.curPos,
		parentArcs:    s.curArcs,
		nextCursor:    s.curCursor,
		childPrevMark: priorMark,
		outLen:        len(s.buf),
		shadow:        shadow,
		hasShadow:     hasShadow,
	}
	s.stack = append(s.stack, f)

	s.buf = append(s.buf, s.emit(arc)...)

	s.curState = arc.Target
	s.curPos += consumed
	s.curArcs = nil
	s.curCursor = 0
	s.arcsReady = false
}

// pop restores the parent frame, undoing every side effect push recorded.
func (s *Session) pop() bool {
	if len(s.stack) == 0 {
		return false
	}
	f := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	s.buf = s.buf[:f.outLen]
	if f.hasShadow {
		s.flags.Restore(f.shadow)
	}
	s.marks[s.curState] = f.childPrevMark

	s.curState = f.parentState
	s.curPos = f.parentPos
	s.curArcs = f.parentArcs
	s.curCursor = f.nextCursor
	s.arcsReady = true
	return true
}
