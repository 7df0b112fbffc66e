package apply

// Config holds the run-time toggles the original tool keeps as process-wide
// globals (spec §7 "Global mutable configuration"). Every apply.Session
// takes an explicit Config at construction; nothing in this package reads
// ambient/global state.
type Config struct {
	// ObeyFlags gates traversal on flag diacritic checks. When false, every
	// flag arc is treated as always succeeding (and never mutates the
	// feature map).
	ObeyFlags bool

	// ShowFlags controls whether flag diacritic symbols appear in emitted
	// output. When false, a flag symbol on either tape renders as empty.
	ShowFlags bool

	// PrintSpace appends one space after each non-empty emission.
	PrintSpace bool

	// PrintPairs, in MatchString mode, emits "<upper:lower>" for arcs whose
	// two tapes differ instead of only the output tape's symbol.
	PrintPairs bool

	// MaxDepth bounds the backtrack stack depth as a safety net against a
	// runaway search (e.g. Random mode walking an automaton with no
	// reachable final state). Zero selects DefaultMaxDepth.
	MaxDepth int

	// RandomSeed seeds Random mode's arc sampling for reproducible output.
	// Zero means unseeded (each Session draws fresh entropy).
	RandomSeed int64
}

// DefaultMaxDepth is used when Config.MaxDepth is zero.
const DefaultMaxDepth = 1 << 20

// DefaultConfig returns the conventional defaults: flags obeyed, hidden
// from output, no pair printing, no inter-symbol spacing.
func DefaultConfig() Config {
	return Config{ObeyFlags: true, ShowFlags: false}
}

func (c Config) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}
