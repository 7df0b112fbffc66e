// Package alphabet implements the symbol table an Automaton is defined over:
// an ordered mapping from small non-negative symbol ids to the strings they
// denote, with three reserved ids every Alphabet carries regardless of the
// automaton it describes.
package alphabet

import "fmt"

// SymbolID identifies a symbol in an Alphabet. Reserved ids are fixed; all
// other ids are assigned by whatever built the Alphabet (the external
// automaton builder, never this package).
type SymbolID int32

// Reserved symbol ids, present in every Alphabet.
const (
	Epsilon  SymbolID = 0 // the empty string; consumes and emits nothing
	Unknown  SymbolID = 1 // any symbol outside the alphabet
	Identity SymbolID = 2 // any known symbol, passed through unchanged
)

// firstUserID is the smallest id an Alphabet may assign to a concrete string.
const firstUserID SymbolID = 3

// renderReserved renders a reserved id the way output emission does for it
// (spec §4.3); ok is false for a concrete id.
func (id SymbolID) renderReserved() (string, bool) {
	switch id {
	case Epsilon:
		return "0", true
	case Unknown:
		return "?", true
	case Identity:
		return "@", true
	default:
		return "", false
	}
}

// Alphabet is an ordered id→string table. It is immutable once built: the
// apply engine borrows it read-only for the lifetime of a session.
type Alphabet struct {
	// strings holds the concrete symbol for every id >= firstUserID.
	// strings[i] corresponds to id firstUserID+i.
	strings []string

	// byString is the reverse index, built once at construction.
	byString map[string]SymbolID
}

// Builder incrementally assembles an Alphabet. Reserved ids are implicit;
// callers only add the concrete symbols found in the automaton being loaded.
type Builder struct {
	strings  []string
	byString map[string]SymbolID
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byString: make(map[string]SymbolID)}
}

// Add registers symbol and returns its id. Calling Add twice with the same
// string returns the same id both times.
func (b *Builder) Add(symbol string) SymbolID {
	if id, ok := b.byString[symbol]; ok {
		return id
	}
	id := firstUserID + SymbolID(len(b.strings))
	b.strings = append(b.strings, symbol)
	b.byString[symbol] = id
	return id
}

// Build finalizes the Alphabet.
func (b *Builder) Build() *Alphabet {
	byString := make(map[string]SymbolID, len(b.byString))
	for k, v := range b.byString {
		byString[k] = v
	}
	strs := make([]string, len(b.strings))
	copy(strs, b.strings)
	return &Alphabet{strings: strs, byString: byString}
}

// Len returns the number of concrete (non-reserved) symbols.
func (a *Alphabet) Len() int {
	return len(a.strings)
}

// String returns the string a symbol id denotes. Reserved ids render as
// their canonical names ("EPSILON", "UNKNOWN", "IDENTITY"); concrete ids
// return the string they were registered with. ok is false for an id
// outside the alphabet.
func (a *Alphabet) String(id SymbolID) (string, bool) {
	switch id {
	case Epsilon:
		return "EPSILON", true
	case Unknown:
		return "UNKNOWN", true
	case Identity:
		return "IDENTITY", true
	}
	idx := int(id - firstUserID)
	if idx < 0 || idx >= len(a.strings) {
		return "", false
	}
	return a.strings[idx], true
}

// Render returns how id should appear in emitted output (spec §4.3):
// reserved ids render as "0"/"?"/"@", concrete ids render as their string.
func (a *Alphabet) Render(id SymbolID) string {
	if s, ok := id.renderReserved(); ok {
		return s
	}
	s, ok := a.String(id)
	if !ok {
		return ""
	}
	return s
}

// Lookup returns the id registered for symbol, or false if symbol is not in
// the alphabet. Reserved strings are not resolvable through Lookup: callers
// compare against Epsilon/Unknown/Identity directly.
func (a *Alphabet) Lookup(symbol string) (SymbolID, bool) {
	id, ok := a.byString[symbol]
	return id, ok
}

// Has reports whether id is a valid id in this Alphabet, reserved or
// concrete.
func (a *Alphabet) Has(id SymbolID) bool {
	if id == Epsilon || id == Unknown || id == Identity {
		return true
	}
	idx := int(id - firstUserID)
	return idx >= 0 && idx < len(a.strings)
}

// Iter calls f for every concrete symbol id in ascending order. Reserved ids
// are not visited — they have no string of their own to enumerate.
func (a *Alphabet) Iter(f func(id SymbolID, symbol string)) {
	for i, s := range a.strings {
		f(firstUserID+SymbolID(i), s)
	}
}

func (id SymbolID) String() string {
	switch id {
	case Epsilon:
		return "EPSILON"
	case Unknown:
		return "UNKNOWN"
	case Identity:
		return "IDENTITY"
	default:
		return fmt.Sprintf("Symbol(%d)", int32(id))
	}
}
