package apply

import (
	"unicode/utf8"

	"github.com/coregx/fstapply/alphabet"
	"github.com/coregx/fstapply/automaton"
	"github.com/coregx/fstapply/flagdiacritic"
)

// emit implements apply_append (spec §4.3) for the arc just taken.
func (s *Session) emit(arc automaton.Arc) []byte {
	var piece []byte
	if s.mode.Kind == MatchString {
		piece = s.emitMatchString(arc)
	} else {
		piece = s.emitGenerative(arc)
	}
	if len(piece) > 0 && s.cfg.PrintSpace {
		piece = append(piece, ' ')
	}
	return piece
}

func (s *Session) isFlagSymbol(id alphabet.SymbolID) bool {
	str, ok := s.a.Alphabet().String(id)
	if !ok {
		return false
	}
	_, isFlag := flagdiacritic.Classify(str)
	return isFlag
}

// emitGenerative implements output emission for Enumerate/Random modes.
func (s *Session) emitGenerative(arc automaton.Arc) []byte {
	upper := s.a.Alphabet().Render(arc.In)
	lower := s.a.Alphabet().Render(arc.Out)
	if !s.cfg.ShowFlags {
		if s.isFlagSymbol(arc.In) {
			upper = ""
		}
		if s.isFlagSymbol(arc.Out) {
			lower = ""
		}
	}

	switch s.mode.Side {
	case Upper:
		if arc.In == alphabet.Epsilon {
			return nil
		}
		return []byte(upper)
	case Lower:
		if arc.Out == alphabet.Epsilon {
			return nil
		}
		return []byte(lower)
	default: // Both
		if upper == lower {
			return []byte(upper)
		}
		return []byte(upper + ":" + lower)
	}
}

// emitMatchString implements output emission for MatchString mode: the
// write-tape symbol, with IDENTITY echoing the literal input rune and
// UNKNOWN substituted with the raw input byte under pair-printing.
func (s *Session) emitMatchString(arc automaton.Arc) []byte {
	writeSym, readSym := arc.Out, arc.In
	if s.mode.Direction == Up {
		writeSym, readSym = arc.In, arc.Out
	}

	if s.cfg.PrintPairs && arc.In != arc.Out {
		upper := s.renderPairSide(arc.In, readSym == arc.In)
		lower := s.renderPairSide(arc.Out, readSym == arc.Out)
		return []byte("<" + upper + ":" + lower + ">")
	}

	switch writeSym {
	case alphabet.Epsilon:
		return nil
	case alphabet.Identity:
		return s.echoInputRune()
	default:
		if !s.cfg.ShowFlags && s.isFlagSymbol(writeSym) {
			return nil
		}
		str, _ := s.a.Alphabet().String(writeSym)
		return []byte(str)
	}
}

// renderPairSide renders one side of a "<upper:lower>" pair, substituting
// the literal input byte for UNKNOWN when that side is the one being read
// (spec §4.3 "UNKNOWN replaced by the byte at the current input position").
func (s *Session) renderPairSide(sym alphabet.SymbolID, isReadSide bool) string {
	if sym == alphabet.Unknown && isReadSide {
		if b, ok := s.input.ByteAt(s.curPos); ok {
			return string(b)
		}
	}
	return s.a.Alphabet().Render(sym)
}

// echoInputRune copies one UTF-8 rune from the read tape at the position
// before this transition consumed it.
func (s *Session) echoInputRune() []byte {
	if s.input == nil {
		return nil
	}
	bytes := s.input.Bytes()
	if s.curPos >= len(bytes) {
		return nil
	}
	_, width := utf8.DecodeRune(bytes[s.curPos:])
	if width <= 0 {
		width = 1
	}
	end := s.curPos + width
	if end > len(bytes) {
		end = len(bytes)
	}
	out := make([]byte, end-s.curPos)
	copy(out, bytes[s.curPos:end])
	return out
}
