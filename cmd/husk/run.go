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

// runCmd implements `husk run`, with the --check/--ast/--program flags
// spec.md §6 adds and with trailing-positional script arguments.
type runCmd struct {
	check   bool
	astOnly bool
	program bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute a husk script" }
func (*runCmd) Usage() string {
	return `run [--check] [--ast] [--program] <script|-> [args...]:
  Execute husk source from a file, or from stdin when the path is "-".
  Flags after the script path are treated as script arguments.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.check, "check", false, "perform static analysis only and exit without executing")
	f.BoolVar(&r.astOnly, "ast", false, "print the parsed AST instead of running")
	f.BoolVar(&r.program, "program", false, "print the lowered program instead of running")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "run: script path not provided")
		return subcommands.ExitUsageError
	}
	path, scriptArgs := args[0], args[1:]

	src, err := readSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: failed to read %s: %v\n", path, err)
		return subcommands.ExitFailure
	}

	interner := intern.New()
	c := compile(path, src, interner)

	colorize := isatty.IsTerminal(os.Stderr.Fd())
	if len(c.errs) > 0 {
		reportErrors(c.errs, colorize)
		return subcommands.ExitFailure
	}

	if r.astOnly {
		fmt.Print(dump.Ast(c.file, interner))
		return subcommands.ExitSuccess
	}
	if r.program {
		fmt.Print(dump.Program(c.prog))
		return subcommands.ExitSuccess
	}
	if r.check {
		return subcommands.ExitSuccess
	}

	runProgram(c, path, scriptArgs)
	return subcommands.ExitSuccess
}
