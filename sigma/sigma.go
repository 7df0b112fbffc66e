// Package sigma tokenizes an input string against an Alphabet using
// longest-match lookup, and exposes the resulting position-indexed match
// table to the apply engine.
//
// The core data structure is a byte-indexed trie over the alphabet's
// concrete symbol strings (the "sigma-trie"): inserting every symbol once,
// then walking it byte-by-byte from each input position finds the longest
// alphabet symbol starting there in O(symbol length) time.
package sigma

import (
	"unicode/utf8"

	"github.com/coregx/fstapply/alphabet"
	"github.com/coregx/fstapply/internal/swar"
)

// trieNode is one byte-indexed trie node. children is nil until the first
// child is inserted, keeping single-path chains cheap.
type trieNode struct {
	children map[byte]*trieNode
	symbol   alphabet.SymbolID
	isSymbol bool
}

// Trie is the byte-indexed sigma-trie over an Alphabet's concrete symbols.
type Trie struct {
	root *trieNode
}

// Build inserts every concrete symbol string from alpha into a fresh Trie.
// Multi-character symbols (e.g. "ch" as one alphabet entry) are the reason
// this exists at all: a naive byte scan can't find them.
func Build(alpha *alphabet.Alphabet) *Trie {
	t := &Trie{root: &trieNode{}}
	alpha.Iter(func(id alphabet.SymbolID, s string) {
		t.insert(s, id)
	})
	return t
}

func (t *Trie) insert(s string, id alphabet.SymbolID) {
	n := t.root
	for i := 0; i < len(s); i++ {
		b := s[i]
		if n.children == nil {
			n.children = make(map[byte]*trieNode)
		}
		child, ok := n.children[b]
		if !ok {
			child = &trieNode{}
			n.children[b] = child
		}
		n = child
	}
	n.isSymbol = true
	n.symbol = id
}

// longestMatch walks the trie from s[pos:], returning the longest alphabet
// symbol id matching there and the number of bytes it consumed. ok is false
// if no alphabet symbol matches at pos at all.
func (t *Trie) longestMatch(s []byte, pos int) (id alphabet.SymbolID, length int, ok bool) {
	n := t.root
	bestLen := -1
	var bestID alphabet.SymbolID

	for i := pos; i < len(s); i++ {
		if n.children == nil {
			break
		}
		child, found := n.children[s[i]]
		if !found {
			break
		}
		n = child
		if n.isSymbol {
			bestLen = i - pos + 1
			bestID = n.symbol
		}
	}
	if bestLen < 0 {
		return 0, 0, false
	}
	return bestID, bestLen, true
}

// Match is one entry of the tokenization table: the symbol-id recognized at
// a byte offset and how many bytes it consumed.
type Match struct {
	Symbol   alphabet.SymbolID
	Consumed int
}

// Input is the tokenization of one input string against a Trie: a flat
// array indexed by byte offset (spec §4.2). Tokenize fills it eagerly but
// only at token starts: it steps over each match in turn, so an offset
// inside a multi-byte token holds the zero Match. The apply engine only
// ever consults token-start offsets, since it advances by Consumed.
type Input struct {
	bytes []byte
	table []Match
}

// Tokenize builds the pos -> (symbol-id, bytes-consumed) array for s (spec
// §4.2): longest sigma-trie match at each byte offset, falling back to
// IDENTITY with the UTF-8 width of the rune starting there when nothing in
// the alphabet matches.
func Tokenize(trie *Trie, s []byte) *Input {
	in := &Input{bytes: s, table: make([]Match, len(s))}

	ascii := swar.IsASCII(s)
	for pos := 0; pos < len(s); {
		if id, n, ok := trie.longestMatch(s, pos); ok {
			in.table[pos] = Match{Symbol: id, Consumed: n}
			pos += n
			continue
		}

		width := 1
		if !ascii {
			_, width = utf8.DecodeRune(s[pos:])
			if width <= 0 {
				width = 1
			}
		}
		in.table[pos] = Match{Symbol: alphabet.Identity, Consumed: width}
		pos += width
	}
	return in
}

// Len returns the number of input bytes tokenized.
func (in *Input) Len() int {
	return len(in.bytes)
}

// At returns the match recorded at byte offset pos. ok is false when pos is
// at or past the end of input.
func (in *Input) At(pos int) (Match, bool) {
	if pos < 0 || pos >= len(in.table) {
		return Match{}, false
	}
	return in.table[pos], true
}

// ByteAt returns the raw input byte at pos, used by pair-printing output
// emission to substitute UNKNOWN with the literal byte matched (spec §4.3).
func (in *Input) ByteAt(pos int) (byte, bool) {
	if pos < 0 || pos >= len(in.bytes) {
		return 0, false
	}
	return in.bytes[pos], true
}

// Bytes returns the tokenized input, for rendering the literal UTF-8
// character under an IDENTITY echo (spec §4.3 "copy one UTF-8 character
// from the input at ipos").
func (in *Input) Bytes() []byte {
	return in.bytes
}
