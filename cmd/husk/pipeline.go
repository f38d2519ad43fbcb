// cmd/husk is the CLI entry point spec.md §6 "Command-line" describes,
// layered with github.com/google/subcommands over the stdlib flag package
// — three subcommands (run, check, repl) instead of two, since
// SPEC_FULL.md §2.3 splits "analyze only" out of
// "run".
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/informatter/husk/internal/analyzer"
	"github.com/informatter/husk/internal/ast"
	"github.com/informatter/husk/internal/command"
	"github.com/informatter/husk/internal/diag"
	"github.com/informatter/husk/internal/eval"
	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/lexer"
	"github.com/informatter/husk/internal/parser"
	"github.com/informatter/husk/internal/program"
	"github.com/informatter/husk/internal/stdlib"
	"github.com/informatter/husk/internal/stdlib/importlib"
	"github.com/informatter/husk/internal/value"
)

// maxReportedErrors bounds how many static errors a single CLI invocation
// prints before collapsing the rest into a "N more suppressed" banner
// (spec.md §7 "Static errors").
const maxReportedErrors = 20

// compiled holds every artifact one source file produces on its way from
// bytes to a runnable program, so run/check/repl can each use the pieces
// they need without re-deriving them.
type compiled struct {
	interner *intern.Interner
	file     *ast.File
	prog     *program.Program
	errs     []*diag.StaticError
}

// compile runs the lexer, parser, and analyzer in sequence, matching
// spec.md §4's pipeline order. It never stops at the first stage's errors:
// a syntactically broken file still gets analyzed (against whatever the
// parser's error recovery produced) so a single CLI run surfaces as many
// diagnostics as possible, per the lexer's own "never stop at the first
// error" stance (internal/lexer).
func compile(path string, src []byte, interner *intern.Interner) *compiled {
	lex := lexer.New(src, interner)
	tokens, lexErrs := lex.Scan()

	file, parseErrs := parser.Parse(path, tokens, interner)

	prog, analyzeErrs := analyzer.Analyze(file, interner)

	var all []*diag.StaticError
	all = append(all, lexErrs...)
	all = append(all, parseErrs...)
	all = append(all, analyzeErrs...)

	return &compiled{interner: interner, file: file, prog: prog, errs: all}
}

// reportErrors prints up to maxReportedErrors static errors to stderr,
// then a suppression banner for the rest (spec.md §7). colorize decides
// whether the banner is dimmed, wired to go-isatty in run.go and check.go.
func reportErrors(errs []*diag.StaticError, colorize bool) {
	shown := errs
	if len(shown) > maxReportedErrors {
		shown = shown[:maxReportedErrors]
	}
	for _, e := range shown {
		fmt.Fprintln(os.Stderr, e.Error())
	}
	if rest := len(errs) - len(shown); rest > 0 {
		banner := fmt.Sprintf("... %d more suppressed", rest)
		if colorize {
			banner = "\x1b[2m" + banner + "\x1b[0m"
		}
		fmt.Fprintln(os.Stderr, banner)
	}
}

// runProgram wires a compiled program to a fresh evaluator, command
// runtime, and std library, then runs it to completion. callerPath and
// args become std.import's base path and the script's own argv (exposed
// as std.args).
func runProgram(c *compiled, callerPath string, scriptArgs []string) value.Value {
	rt := command.NewRuntime()
	e := eval.New(c.interner, rt, os.Stdout, os.Stderr)

	loader := func(path string) (value.Value, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return value.Nil_(), err
		}
		sub := compile(path, data, c.interner)
		if len(sub.errs) > 0 {
			reportErrors(sub.errs, false)
			return value.Nil_(), fmt.Errorf("%s: static errors", path)
		}
		return runProgram(sub, path, nil), nil
	}

	argv := make([]value.Value, len(scriptArgs))
	for i, a := range scriptArgs {
		argv[i] = value.FromString(a)
	}
	std := stdlib.New(e, callerPath, importlib.Loader(loader))
	std.Set(value.FromString("args"), value.FromArray(value.NewArray(argv)))

	return runCatchingPanic(e, c.prog, value.FromDict(std))
}

// runCatchingPanic recovers an uncaught *diag.Panic at the top level
// (spec.md §7 tier 3 "where they exit with a diagnostic"), printing it and
// exiting non-zero instead of letting it reach the Go runtime as a crash.
func runCatchingPanic(e *eval.Evaluator, prog *program.Program, std value.Value) (result value.Value) {
	defer func() {
		if r := recover(); r != nil {
			p, ok := r.(*diag.Panic)
			if !ok {
				panic(r)
			}
			fmt.Fprintln(os.Stderr, p.Error())
			os.Exit(1)
		}
	}()
	return e.Run(prog, std)
}

// readSource reads the script from path, or from stdin when path is "-"
// (spec.md §6 "the literal `-` (read stdin)").
func readSource(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
