// Package chain composes several bound apply.Sessions into one pipeline,
// implementing the chain-composition semantics of spec §6.
package chain

import "github.com/coregx/fstapply/apply"

// Chain holds an ordered sequence of bound sessions. The zero value is not
// usable; construct with New.
type Chain struct {
	sessions []*apply.Session
}

// New builds a Chain over sessions, in head-to-tail order.
func New(sessions ...*apply.Session) *Chain {
	return &Chain{sessions: sessions}
}

// Len reports how many automata are stacked in the chain.
func (c *Chain) Len() int {
	return len(c.sessions)
}

// Down composes the chain head-to-tail: the first automaton's down-output
// becomes the second automaton's down-input, and so on (spec §6, "apply-down
// direction results flow head→tail"). ok is false as soon as any stage
// fails to match.
func (c *Chain) Down(word string) (string, bool) {
	if len(c.sessions) == 0 {
		return "", false
	}
	cur := word
	for _, s := range c.sessions {
		out, ok := s.ApplyDown(cur)
		if !ok {
			return "", false
		}
		cur = out
	}
	return cur, true
}

// Up composes the chain tail-to-head: the last automaton's up-output becomes
// the second-to-last automaton's up-input, and so on (spec §6, "apply-up
// direction results flow tail→head, to simulate composition on the opposite
// tape").
func (c *Chain) Up(word string) (string, bool) {
	if len(c.sessions) == 0 {
		return "", false
	}
	cur := word
	for i := len(c.sessions) - 1; i >= 0; i-- {
		out, ok := c.sessions[i].ApplyUp(cur)
		if !ok {
			return "", false
		}
		cur = out
	}
	return cur, true
}

// Alternates tries each automaton in the chain head-first against the same
// input and returns the first result produced, rather than composing them
// (spec §6, "-a alternates mode: first automaton that yields a result
// wins").
func (c *Chain) Alternates(dir apply.Direction, word string) (string, bool) {
	for _, s := range c.sessions {
		var out string
		var ok bool
		if dir == apply.Up {
			out, ok = s.ApplyUp(word)
		} else {
			out, ok = s.ApplyDown(word)
		}
		if ok {
			return out, true
		}
	}
	return "", false
}

// Run applies the chain in the requested direction, choosing Alternates or
// plain composition depending on alternates. This is the entry point the
// lookup tools drive per input line.
func (c *Chain) Run(dir apply.Direction, alternates bool, word string) (string, bool) {
	if alternates {
		return c.Alternates(dir, word)
	}
	if dir == apply.Up {
		return c.Up(word)
	}
	return c.Down(word)
}

// All enumerates every distinct accepting result for word in the requested
// direction. For a chain of exactly one automaton this drives the
// session's Continue() loop to surface every nondeterministic path; a
// chain of several composed automata only ever reports the first composed
// result, since enumerating the full cross-product of each stage's
// alternatives is out of scope here.
func (c *Chain) All(dir apply.Direction, word string) []string {
	if len(c.sessions) == 0 {
		return nil
	}
	if len(c.sessions) == 1 {
		s := c.sessions[0]
		first, ok := s.ApplyDown(word)
		if dir == apply.Up {
			first, ok = s.ApplyUp(word)
		}
		if !ok {
			return nil
		}
		out := []string{first}
		for {
			next, ok := s.Continue()
			if !ok {
				break
			}
			out = append(out, next)
		}
		return out
	}
	if out, ok := c.Run(dir, false, word); ok {
		return []string{out}
	}
	return nil
}
