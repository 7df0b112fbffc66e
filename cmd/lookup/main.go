// Command lookup is the plain flavor of the AT&T transducer applier:
// it reads lines from stdin, applies each line through a chain of one or
// more loaded automata, and writes results to stdout (spec §6).
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/projectdiscovery/gologger"

	"github.com/coregx/fstapply/apply"
	"github.com/coregx/fstapply/chain"
	"github.com/coregx/fstapply/internal/chainio"
	"github.com/coregx/fstapply/internal/cliopt"
)

const version = "0.1.0"

func main() {
	opts, err := cliopt.ParseFlags("lookup", os.Args[1:])
	if err != nil {
		gologger.Fatal().Msgf("lookup: %s", err)
	}
	if opts.Help {
		printUsage()
		return
	}
	if opts.Version {
		fmt.Println(version)
		return
	}
	if len(opts.Files) == 0 {
		gologger.Fatal().Msg("lookup: no automaton file given")
	}

	policy, err := cliopt.ParseIndexPolicy(opts.IndexSpec)
	if err != nil {
		gologger.Fatal().Msgf("lookup: %s", err)
	}

	c, err := chainio.Load(opts.Files, policy, opts.SkipArcSort)
	if err != nil {
		gologger.Fatal().Msgf("lookup: %s", err)
	}

	dir := apply.Down
	if opts.Invert {
		dir = apply.Up
	}

	if err := run(os.Stdin, os.Stdout, c, dir, opts); err != nil {
		gologger.Fatal().Msgf("lookup: %s", err)
	}
}

// run drives the stdin-to-stdout loop: chomp each line, apply it through c,
// and write one result line (or the "+?" no-match marker) per spec §6.
func run(in *os.File, out *os.File, c *chain.Chain, dir apply.Direction, opts *cliopt.Options) error {
	w := bufio.NewWriter(out)
	defer w.Flush()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		var results []string
		if opts.Alternates {
			if res, ok := c.Alternates(dir, line); ok {
				results = []string{res}
			}
		} else {
			results = c.All(dir, line)
		}
		writeResults(w, line, results, opts)
		if opts.Unbuffered {
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

func writeResults(w *bufio.Writer, input string, results []string, opts *cliopt.Options) {
	if len(results) == 0 {
		emitLine(w, input, "+?", opts)
		return
	}
	for _, r := range results {
		emitLine(w, input, r, opts)
	}
}

func emitLine(w *bufio.Writer, input, result string, opts *cliopt.Options) {
	if opts.SuppressEcho {
		fmt.Fprintf(w, "%s%s", result, opts.RecordSep)
		return
	}
	fmt.Fprintf(w, "%s%s%s%s", input, opts.FieldSep, result, opts.RecordSep)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: lookup [-h] [-i] [-a] [-b] [-q] [-I spec] [-s sep] [-w sep] [-x] [-v] automaton...")
}
