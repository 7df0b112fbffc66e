// Package cliopt parses the flag set shared by the lookup command-line
// tools (spec §6): plain `lookup` and the constraint-grammar `cgflookup`
// flavor differ only in output formatting, not in the flags they accept.
package cliopt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/coregx/fstapply/arcindex"
)

// Defaults for the field/record separators (spec §6: "-s SEP field
// separator (default TAB)", "-w SEP record separator (default LF)").
const (
	DefaultFieldSep  = "\t"
	DefaultRecordSep = "\n"
)

// Options holds the parsed flag values plus the leftover positional
// arguments (automaton file paths to load into the chain).
type Options struct {
	Help         bool
	Invert       bool // -i: apply-up instead of apply-down
	Alternates   bool // -a
	Unbuffered   bool // -b: flush stdout after each line
	SkipArcSort  bool // -q: skip arc-sorting
	IndexSpec    string
	FieldSep     string
	RecordSep    string
	SuppressEcho bool // -x
	Version      bool // -v

	Files []string
}

// ParseFlags registers and parses the shared flag set under name, using
// args (normally os.Args[1:]).
func ParseFlags(name string, args []string) (*Options, error) {
	opts := &Options{}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	fs.BoolVarP(&opts.Help, "help", "h", false, "show usage and exit")
	fs.BoolVarP(&opts.Invert, "invert", "i", false, "invert direction: apply-up instead of apply-down")
	fs.BoolVarP(&opts.Alternates, "alternates", "a", false, "alternates mode: first automaton in the chain that yields a result wins")
	fs.BoolVarP(&opts.Unbuffered, "unbuffered", "b", false, "flush stdout after every input line")
	fs.BoolVarP(&opts.SkipArcSort, "no-sort", "q", false, "skip arc-sorting before running")
	fs.StringVarP(&opts.IndexSpec, "index", "I", "", "arc-index policy: f (flag-only), N (min arc count), Nk/Nm (density budget in KB/MB)")
	fs.StringVarP(&opts.FieldSep, "field-sep", "s", DefaultFieldSep, "field separator between input and result")
	fs.StringVarP(&opts.RecordSep, "record-sep", "w", DefaultRecordSep, "record separator between results")
	fs.BoolVarP(&opts.SuppressEcho, "no-echo", "x", false, "suppress input echo")
	fs.BoolVarP(&opts.Version, "version", "v", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.Files = fs.Args()
	return opts, nil
}

// ParseIndexPolicy decodes the -I flag's spec grammar into an
// arcindex.Policy (spec §6: "f = flag-containing states only, N = states
// with >=N arcs, Nk / Nm = densest states up to N KB / N MB"). An empty
// spec returns the zero Policy (no state gets indexed).
func ParseIndexPolicy(spec string) (arcindex.Policy, error) {
	if spec == "" {
		return arcindex.Policy{}, nil
	}
	if spec == "f" {
		return arcindex.Policy{FlagOnly: true}, nil
	}

	lower := strings.ToLower(spec)
	if strings.HasSuffix(lower, "k") || strings.HasSuffix(lower, "m") {
		unit := lower[len(lower)-1]
		n, err := strconv.ParseInt(lower[:len(lower)-1], 10, 64)
		if err != nil {
			return arcindex.Policy{}, fmt.Errorf("cliopt: invalid -I budget %q: %w", spec, err)
		}
		mult := int64(1024)
		if unit == 'm' {
			mult = 1024 * 1024
		}
		return arcindex.Policy{BudgetBytes: n * mult}, nil
	}

	n, err := strconv.Atoi(spec)
	if err != nil {
		return arcindex.Policy{}, fmt.Errorf("cliopt: invalid -I spec %q: %w", spec, err)
	}
	return arcindex.Policy{MinArcs: n}, nil
}
