// Package att implements the AT&T FSM text format: tab-separated arc lines
// (src dst isym osym) and bare-state final lines, the format foma itself
// exports with its "-f att" flag.
package att

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/coregx/fstapply/alphabet"
	"github.com/coregx/fstapply/automaton"
)

// Reserved symbol tokens, matching foma's own AT&T export convention.
const (
	epsilonToken  = "@0@"
	identityToken = "@_IDENTITY_SYMBOL_@"
	unknownToken  = "@_UNKNOWN_SYMBOL_@"
)

// FormatError reports a malformed line in an AT&T-format stream.
type FormatError struct {
	Line    int
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("att: line %d: %s", e.Line, e.Message)
}

type arcLine struct {
	src, dst   int
	isym, osym string
}

// Loader reads the AT&T text format into an *automaton.Automaton.
type Loader struct{}

// Load implements format.Loader.
func (Loader) Load(r io.Reader) (*automaton.Automaton, error) {
	var arcs []arcLine
	finals := make(map[int]bool)
	startState := -1
	maxState := -1

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) == 1 {
			fields = strings.Fields(line)
		}

		switch len(fields) {
		case 1, 2:
			s, err := strconv.Atoi(strings.TrimSpace(fields[0]))
			if err != nil {
				return nil, &FormatError{Line: lineNo, Message: "final-state line: " + err.Error()}
			}
			finals[s] = true
			if s > maxState {
				maxState = s
			}
		case 3, 4, 5:
			src, err := strconv.Atoi(strings.TrimSpace(fields[0]))
			if err != nil {
				return nil, &FormatError{Line: lineNo, Message: "arc source: " + err.Error()}
			}
			dst, err := strconv.Atoi(strings.TrimSpace(fields[1]))
			if err != nil {
				return nil, &FormatError{Line: lineNo, Message: "arc target: " + err.Error()}
			}
			isym := fields[2]
			osym := isym
			if len(fields) >= 4 {
				osym = fields[3]
			}
			if startState == -1 {
				startState = src
			}
			arcs = append(arcs, arcLine{src: src, dst: dst, isym: isym, osym: osym})
			if src > maxState {
				maxState = src
			}
			if dst > maxState {
				maxState = dst
			}
		default:
			return nil, &FormatError{Line: lineNo, Message: fmt.Sprintf("unexpected field count %d", len(fields))}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if startState == -1 {
		startState = 0
	}

	ab := alphabet.NewBuilder()
	resolve := func(tok string) alphabet.SymbolID {
		switch tok {
		case epsilonToken, "-", "":
			return alphabet.Epsilon
		case identityToken:
			return alphabet.Identity
		case unknownToken:
			return alphabet.Unknown
		default:
			return ab.Add(tok)
		}
	}

	// Resolve every symbol first so the Alphabet is complete before the
	// Automaton Builder (which validates against it) is constructed.
	type resolvedArc struct {
		src, dst   int
		isym, osym alphabet.SymbolID
	}
	resolved := make([]resolvedArc, len(arcs))
	for i, a := range arcs {
		resolved[i] = resolvedArc{src: a.src, dst: a.dst, isym: resolve(a.isym), osym: resolve(a.osym)}
	}
	alpha := ab.Build()

	byState := make(map[int][]resolvedArc)
	for _, a := range resolved {
		byState[a.src] = append(byState[a.src], a)
	}

	bld := automaton.NewBuilder(alpha)
	for s := 0; s <= maxState; s++ {
		group := byState[s]
		isFinal := finals[s]
		isStart := s == startState
		if len(group) == 0 {
			bld.AddStateWithNoArcs(automaton.StateID(s), isFinal, isStart)
			continue
		}
		for _, a := range group {
			bld.AddArc(automaton.Arc{
				Source:  automaton.StateID(a.src),
				In:      a.isym,
				Out:     a.osym,
				Target:  automaton.StateID(a.dst),
				IsFinal: isFinal,
				IsStart: isStart,
			})
		}
	}

	return bld.Build()
}

// Writer serializes an *automaton.Automaton back to AT&T text format.
type Writer struct{}

// Write implements format.Writer.
func (Writer) Write(w io.Writer, a *automaton.Automaton) error {
	bw := bufio.NewWriter(w)
	sm := automaton.BuildStateMap(a)
	render := func(id alphabet.SymbolID) string {
		switch id {
		case alphabet.Epsilon:
			return epsilonToken
		case alphabet.Identity:
			return identityToken
		case alphabet.Unknown:
			return unknownToken
		default:
			s, _ := a.Alphabet().String(id)
			return s
		}
	}

	finalStates := make([]int, 0)
	for s := automaton.StateID(0); int(s) < a.NumStates(); s++ {
		for _, arc := range sm.ArcsFor(a, s) {
			if _, err := fmt.Fprintf(bw, "%d\t%d\t%s\t%s\n", arc.Source, arc.Target, render(arc.In), render(arc.Out)); err != nil {
				return err
			}
		}
		if sm.IsFinal(a, s) {
			finalStates = append(finalStates, int(s))
		}
	}
	for _, s := range finalStates {
		if _, err := fmt.Fprintf(bw, "%d\n", s); err != nil {
			return err
		}
	}
	return bw.Flush()
}
