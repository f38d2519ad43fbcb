package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/informatter/husk/internal/dump"
	"github.com/informatter/husk/internal/intern"
	"github.com/mattn/go-isatty"
)

// checkCmd is `run --check` promoted to its own subcommand for scripting
// convenience (SPEC_FULL.md §2.3): static analysis only, never executes.
type checkCmd struct {
	astOnly bool
	program bool
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "Statically analyze a husk script without executing it" }
func (*checkCmd) Usage() string {
	return `check [--ast] [--program] <script|->:
  Lex, parse, and analyze a script, reporting every static error found.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.astOnly, "ast", false, "print the parsed AST")
	f.BoolVar(&c.program, "program", false, "print the lowered program")
}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "check: script path not provided")
		return subcommands.ExitUsageError
	}
	path := args[0]

	src, err := readSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "check: failed to read %s: %v\n", path, err)
		return subcommands.ExitFailure
	}

	interner := intern.New()
	compiled := compile(path, src, interner)

	colorize := isatty.IsTerminal(os.Stderr.Fd())
	if len(compiled.errs) > 0 {
		reportErrors(compiled.errs, colorize)
		return subcommands.ExitFailure
	}

	if c.astOnly {
		fmt.Print(dump.Ast(compiled.file, interner))
	}
	if c.program {
		fmt.Print(dump.Program(compiled.prog))
	}
	return subcommands.ExitSuccess
}
