package automaton

import "fmt"

// ValidationError reports a violated automaton invariant, identifying the
// offending arc by index when one is at fault.
type ValidationError struct {
	Message string
	ArcIdx  int // -1 when the error is not about a specific arc
}

func (e *ValidationError) Error() string {
	if e.ArcIdx < 0 {
		return fmt.Sprintf("automaton: %s", e.Message)
	}
	return fmt.Sprintf("automaton: %s (arc %d)", e.Message, e.ArcIdx)
}
