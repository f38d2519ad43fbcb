package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
	"github.com/informatter/husk/internal/diag"
	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/value"
	"golang.org/x/term"
)

// replCmd is `husk repl`: a github.com/chzyer/readline-backed line reader
// for history and line editing, with multi-line continuation when a line
// ends mid-block (SPEC_FULL.md §3).
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive husk session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive session. Enter "exit" or Ctrl-D to quit.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = home + "/.husk_history"
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "repl: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	// A session run from a pipe (not a real terminal) still works — the
	// continuation prompt is simply never seen interactively — but we
	// only print the welcome banner for an actual terminal.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("husk — interactive session. Ctrl-D to exit.")
	}

	interner := intern.New()
	var buf strings.Builder

	for {
		prompt := ">>> "
		if buf.Len() > 0 {
			prompt = "... "
		}
		rl.SetPrompt(prompt)
		line, err := rl.Readline()
		if err != nil {
			return subcommands.ExitSuccess
		}
		if buf.Len() == 0 && strings.TrimSpace(line) == "exit" {
			return subcommands.ExitSuccess
		}
		buf.WriteString(line)
		buf.WriteByte('\n')

		src := buf.String()
		c := compile("<repl>", []byte(src), interner)
		if needsContinuation(c.errs) {
			continue
		}
		buf.Reset()

		if len(c.errs) > 0 {
			reportErrors(c.errs, false)
			continue
		}

		// Each line runs as its own self-contained program, the same way
		// `husk run` evaluates a whole file: the REPL does not persist
		// `let` bindings across lines (DESIGN.md "Open Question — REPL variable persistence").
		result := runProgram(c, "<repl>", nil)
		if result.Kind() != value.Nil {
			fmt.Println(result.String())
		}
	}
}

// needsContinuation reports whether every static error looks like it was
// caused by running off the end of the input (an unterminated block or
// function body) rather than a genuine syntax mistake, in which case the
// REPL should read another line and re-compile the whole buffer instead of
// reporting errors (SPEC_FULL.md §3 "multi-line continuation").
func needsContinuation(errs []*diag.StaticError) bool {
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if !strings.Contains(e.Error(), "EOF") {
			return false
		}
	}
	return true
}
