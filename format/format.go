// Package format defines the abstract automaton-serialization contract;
// concrete encodings (see format/att) implement it. The apply engine never
// imports a format package directly — only the CLI tools that need to read
// one off disk do.
package format

import (
	"io"

	"github.com/coregx/fstapply/automaton"
)

// Loader parses a serialized transducer into an Automaton satisfying the
// invariants of spec §3. The binary layout is opaque to the engine;
// Load's only contract is producing a valid *automaton.Automaton.
type Loader interface {
	Load(r io.Reader) (*automaton.Automaton, error)
}

// Writer serializes an Automaton back to its on-disk form.
type Writer interface {
	Write(w io.Writer, a *automaton.Automaton) error
}
