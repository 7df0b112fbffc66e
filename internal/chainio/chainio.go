// Package chainio loads automaton files off disk into a bound chain.Chain,
// shared by the lookup and cgflookup command-line tools.
package chainio

import (
	"fmt"
	"os"

	"github.com/projectdiscovery/gologger"

	"github.com/coregx/fstapply/apply"
	"github.com/coregx/fstapply/arcindex"
	"github.com/coregx/fstapply/automaton"
	"github.com/coregx/fstapply/chain"
	"github.com/coregx/fstapply/format/att"
	"github.com/coregx/fstapply/sigma"
)

// Load reads every path in order into a bound apply.Session and wraps them
// in a chain.Chain. policy is applied to every loaded automaton's
// apply-down arc index, unless skipIndex disables the index pass entirely
// (spec §6 "-q skip arc-sorting").
func Load(paths []string, policy arcindex.Policy, skipIndex bool) (*chain.Chain, error) {
	sessions := make([]*apply.Session, 0, len(paths))
	for _, p := range paths {
		s, err := loadOne(p, policy, skipIndex)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return chain.New(sessions...), nil
}

func loadOne(path string, policy arcindex.Policy, skipIndex bool) (*apply.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	aut, loadErr := (att.Loader{}).Load(f)
	closeErr := f.Close()
	if loadErr != nil {
		return nil, fmt.Errorf("load %s: %w", path, loadErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("close %s: %w", path, closeErr)
	}

	sm := automaton.BuildStateMap(aut)
	if dead := automaton.UnreachableStates(aut, sm); len(dead) > 0 {
		gologger.Warning().Msgf("%s: %d state(s) unreachable from the start state", path, len(dead))
	}

	trie := sigma.Build(aut.Alphabet())
	s := apply.NewSession(aut, trie, apply.DefaultConfig())
	if !skipIndex && (policy.MinArcs > 0 || policy.BudgetBytes > 0 || policy.FlagOnly) {
		s.SetIndex(arcindex.Build(aut, sm, arcindex.Down, policy))
	}
	return s, nil
}
