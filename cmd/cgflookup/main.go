// Command cgflookup is the constraint-grammar flavor of the AT&T transducer
// applier: same chain semantics as lookup, but it prints the quoted input
// once followed by tab-indented result lines, marks input lines that start
// with an uppercase letter, and drops empty input lines (spec §6).
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/projectdiscovery/gologger"

	"github.com/coregx/fstapply/apply"
	"github.com/coregx/fstapply/chain"
	"github.com/coregx/fstapply/internal/chainio"
	"github.com/coregx/fstapply/internal/cliopt"
)

const version = "0.1.0"

func main() {
	opts, err := cliopt.ParseFlags("cgflookup", os.Args[1:])
	if err != nil {
		gologger.Fatal().Msgf("cgflookup: %s", err)
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
		gologger.Fatal().Msg("cgflookup: no automaton file given")
	}

	policy, err := cliopt.ParseIndexPolicy(opts.IndexSpec)
	if err != nil {
		gologger.Fatal().Msgf("cgflookup: %s", err)
	}

	c, err := chainio.Load(opts.Files, policy, opts.SkipArcSort)
	if err != nil {
		gologger.Fatal().Msgf("cgflookup: %s", err)
	}

	dir := apply.Down
	if opts.Invert {
		dir = apply.Up
	}

	if err := run(os.Stdin, os.Stdout, c, dir, opts); err != nil {
		gologger.Fatal().Msgf("cgflookup: %s", err)
	}
}

// run drives the stdin-to-stdout loop in the constraint-grammar block
// format: `"input"`, optionally marked ` <*>`, followed by one tab-indented
// result line per match.
func run(in *os.File, out *os.File, c *chain.Chain, dir apply.Direction, opts *cliopt.Options) error {
	w := bufio.NewWriter(out)
	defer w.Flush()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}

		marker := ""
		if startsUpper(line) {
			marker = " <*>"
		}
		fmt.Fprintf(w, "\"%s\"%s\n", line, marker)

		var results []string
		if opts.Alternates {
			if res, ok := c.Alternates(dir, line); ok {
				results = []string{res}
			}
		} else {
			results = c.All(dir, line)
		}
		if len(results) == 0 {
			fmt.Fprintf(w, "\t+?\n")
		}
		for _, r := range results {
			if opts.SuppressEcho {
				fmt.Fprintf(w, "%s\n", r)
				continue
			}
			fmt.Fprintf(w, "\t%s\n", r)
		}

		if opts.Unbuffered {
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: cgflookup [-h] [-i] [-a] [-b] [-q] [-I spec] [-s sep] [-w sep] [-x] [-v] automaton...")
}
