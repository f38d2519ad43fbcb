// Package command implements the command-execution subsystem of spec.md
// §5 "Command blocks": argument expansion (the Cartesian product of
// literal and glob-pattern accumulators), pipeline assembly with the
// right-to-left spawn / left-to-right wait ordering spec.md documents,
// redirections, and the sync/async/capture block kinds.
//
// The spawn/wait ordering and exit-status encoding are ported directly
// from original_source's runtime/command/exec/mod.rs (Command::exec,
// ErrorStatus::wait_child): pipeline stages are spawned tail-to-head so
// each stage's stdout can be wired into the next stage's stdin before
// that next stage starts, but waited head-to-first — see spawnPipeline
// below for the exact mechanics.
package command

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	shellquote "github.com/kballard/go-shellquote"
	"github.com/informatter/husk/internal/cursor"
	"github.com/informatter/husk/internal/diag"
	"github.com/informatter/husk/internal/diaglog"
	"github.com/informatter/husk/internal/eval"
	"github.com/informatter/husk/internal/program"
	"github.com/informatter/husk/internal/value"
	"golang.org/x/sys/unix"
)

// Exit-status encoding constants, ported verbatim from exec/mod.rs.
const (
	ioErrorStatus      = 0x7F
	signalStatusOffset = 0xFF
)

// Runtime is the evaluator's command-execution collaborator: it holds the
// alias table (spec.md §5.1 "Supplemented features") and in-flight async
// job handles.
type Runtime struct {
	mu      sync.Mutex
	aliases map[string][]string
	jobs    map[string]*asyncJob
}

func NewRuntime() *Runtime {
	return &Runtime{aliases: make(map[string][]string), jobs: make(map[string]*asyncJob)}
}

type asyncJob struct {
	done   chan struct{}
	result value.Value
	err    error
	joined bool
}

// Run implements eval.CommandRunner.
func (rt *Runtime) Run(e *eval.Evaluator, blk *program.CommandBlockExpr) (value.Value, error) {
	switch blk.Kind {
	case program.CommandCapture:
		return rt.runCapture(e, blk)
	case program.CommandAsync:
		return rt.runAsync(e, blk)
	default:
		return rt.runSync(e, blk)
	}
}

// runSync executes every pipeline in the block in sequence, inheriting the
// evaluator's stdout/stderr, and returns nil on success or an `error`
// value describing the first pipeline that exited non-zero (spec.md §4.7
// "Block return value": nil for an empty error set, an error value
// otherwise — never a bare status code).
func (rt *Runtime) runSync(e *eval.Evaluator, blk *program.CommandBlockExpr) (value.Value, error) {
	for _, p := range blk.Pipelines {
		st, err := rt.execPipeline(e, p, nil, asWriter(e.Stdout), asWriter(e.Stderr))
		if err != nil {
			return value.Nil_(), err
		}
		if st != 0 {
			return value.FromError(&value.ErrorValue{
				Description: fmt.Sprintf("command exited with status %d", st),
				Context:     value.FromInt(int64(st)),
			}), nil
		}
	}
	return value.Nil_(), nil
}

// runCapture executes the block's pipelines and returns a
// {stdout, stderr, status} dict (spec.md §4.7 "capture blocks"): the final
// pipeline's stdout bytes verbatim (no trailing-newline trim — scripts that
// want a trimmed line use std.trim themselves), the stderr bytes collected
// across every pipeline, and the final pipeline's exit status.
func (rt *Runtime) runCapture(e *eval.Evaluator, blk *program.CommandBlockExpr) (value.Value, error) {
	var stdoutBuf, stderrBuf bytes.Buffer
	status := 0
	for i, p := range blk.Pipelines {
		out := io.Writer(&stdoutBuf)
		if i < len(blk.Pipelines)-1 {
			out = io.Discard
		}
		st, err := rt.execPipeline(e, p, nil, out, &stderrBuf)
		if err != nil {
			return value.Nil_(), err
		}
		status = st
	}
	return captureResult(stdoutBuf.String(), stderrBuf.String(), status), nil
}

func captureResult(stdout, stderr string, status int) value.Value {
	d := value.NewDict()
	d.Set(value.FromString("stdout"), value.FromString(stdout))
	d.Set(value.FromString("stderr"), value.FromString(stderr))
	d.Set(value.FromString("status"), value.FromInt(int64(status)))
	return value.FromDict(d)
}

// runAsync launches the block's pipelines in a background goroutine as if
// it were a capture block (spec.md §4.7(3) "runs the block as if capture"),
// and returns a dict-shaped job handle exposing a native `join` function
// that blocks until the job finishes and returns its capture result.
// Joining the same handle twice panics (spec.md §7 PanicInvalidJoin),
// modeling original_source's JoinHandle without needing a dedicated
// runtime type.
func (rt *Runtime) runAsync(e *eval.Evaluator, blk *program.CommandBlockExpr) (value.Value, error) {
	id := uuid.NewString()
	job := &asyncJob{done: make(chan struct{})}
	rt.mu.Lock()
	rt.jobs[id] = job
	rt.mu.Unlock()

	diaglog.Debugf("async job %s: spawned", id)
	go func() {
		defer close(job.done)
		defer diaglog.Debugf("async job %s: finished", id)
		var stdoutBuf, stderrBuf bytes.Buffer
		status := 0
		for i, p := range blk.Pipelines {
			out := io.Writer(&stdoutBuf)
			if i < len(blk.Pipelines)-1 {
				out = io.Discard
			}
			st, err := rt.execPipeline(e, p, nil, out, &stderrBuf)
			if err != nil {
				job.err = err
				return
			}
			status = st
		}
		job.result = captureResult(stdoutBuf.String(), stderrBuf.String(), status)
	}()

	d := value.NewDict()
	d.Set(value.FromString("id"), value.FromString(id))
	d.Set(value.FromString("join"), value.FromFunction(&value.FunctionValue{
		Name: "join",
		Native: func(args []value.Value) (value.Value, error) {
			pos := cursor.Position{}
			<-job.done
			rt.mu.Lock()
			alreadyJoined := job.joined
			job.joined = true
			rt.mu.Unlock()
			if alreadyJoined {
				diag.Throw(diag.New(diag.PanicInvalidJoin, pos, "job %s already joined", id))
			}
			if job.err != nil {
				return value.Nil_(), job.err
			}
			return job.result, nil
		},
	}))
	return value.FromDict(d), nil
}

func asWriter(w eval.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return writerAdapter{w}
}

type writerAdapter struct{ w eval.Writer }

func (a writerAdapter) Write(p []byte) (int, error) { return a.w.Write(p) }

// execPipeline spawns every stage of a pipeline, wiring stdout->stdin
// between adjoining stages, and returns the head stage's exit status
// (spec.md §5 "Pipeline exit status is the first stage's status").
//
// Spawn order is tail-to-head: each non-head stage is started before the
// one preceding it so its stdin pipe is ready to receive, matching
// exec/mod.rs's Command::exec for the External case. Waiting then
// proceeds head-first, tail-last.
func (rt *Runtime) execPipeline(e *eval.Evaluator, p program.Pipeline, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	n := len(p.Commands)
	if n == 0 {
		return 0, nil
	}

	cmds := make([]*exec.Cmd, n)
	closers := make([]io.Closer, n) // closers[i]: stage i's write end of the pipe into stage i+1.

	// Stages are built tail-to-head: each non-head stage's stdin pipe must
	// exist before the stage feeding it is constructed, matching
	// exec/mod.rs's Command::exec spawn order for External pipelines.
	for i := n - 1; i >= 0; i-- {
		bc := p.Commands[i]
		argv, env, err := rt.expandBasicCommand(e, bc)
		if err != nil {
			return 0, err
		}
		if len(argv) == 0 {
			return 0, diag.NewStaticError(diag.StageAnalyzer, bc.Pos, "empty command")
		}
		if _, handled, err := rt.tryBuiltin(argv); handled {
			if err != nil {
				return 0, err
			}
			continue
		}

		diaglog.Debugf("command stage %d: %s", i, shellquote.Join(argv...))

		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Env = append(os.Environ(), env...)
		cmd.Stderr = stderr

		if i == n-1 {
			cmd.Stdout = stdout
		} else {
			w, err := cmds[i+1].StdinPipe()
			if err != nil {
				return 0, diag.NewStaticError(diag.StageAnalyzer, bc.Pos, "pipe setup failed: %s", err)
			}
			cmd.Stdout = w
			closers[i] = w
		}
		if i == 0 && stdin != nil {
			cmd.Stdin = stdin
		}

		if err := applyRedirections(cmd, bc.Redirections, rt, e); err != nil {
			return 0, err
		}
		cmds[i] = cmd
	}

	for i := n - 1; i >= 0; i-- {
		if cmds[i] == nil {
			continue
		}
		if err := cmds[i].Start(); err != nil {
			return 0, diag.NewIOError(p.Pos, err)
		}
	}

	status := 0
	for i := 0; i < n; i++ {
		if cmds[i] == nil {
			continue
		}
		err := cmds[i].Wait()
		if closers[i] != nil {
			// Stage i is done writing: close the parent's pipe end so stage i+1 sees EOF.
			closers[i].Close()
		}
		st := exitStatus(cmds[i], err)
		if i == 0 {
			status = st
		}
		if p.Commands[i].Try && st != 0 {
			return status, diag.NewStaticError(diag.StageAnalyzer, p.Commands[i].Pos, "command exited with status %d", st)
		}
	}
	return status, nil
}


// exitStatus translates a finished *exec.Cmd into spec.md §5's encoding:
// a clean exit returns its code; a signal death returns signal+0xFF; an
// I/O-level failure (the program never ran at all) returns 0x7F.
func exitStatus(cmd *exec.Cmd, waitErr error) int {
	if waitErr == nil {
		return 0
	}
	exitErr, ok := waitErr.(*exec.ExitError)
	if !ok {
		return ioErrorStatus
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		if name := unix.SignalName(syscall.Signal(ws.Signal())); name != "" {
			diaglog.Warnf("command terminated by signal %s", name)
		}
		return int(ws.Signal()) + signalStatusOffset
	}
	return exitErr.ExitCode()
}

// tryBuiltin handles the two builtins original_source's exec/mod.rs names
// (spec.md §5.1): `cd` changes the evaluator process's own working
// directory; `alias` is given the minimal but real semantics the
// original left as `todo!()` — see DESIGN.md.
func (rt *Runtime) tryBuiltin(argv []string) (name string, handled bool, err error) {
	switch argv[0] {
	case "cd":
		if len(argv) != 2 {
			return "cd", true, fmt.Errorf("cd: expected exactly one argument")
		}
		return "cd", true, os.Chdir(argv[1])
	case "alias":
		if len(argv) < 2 {
			return "alias", true, fmt.Errorf("alias: expected a name")
		}
		rt.mu.Lock()
		rt.aliases[argv[1]] = argv[2:]
		rt.mu.Unlock()
		return "alias", true, nil
	default:
		return "", false, nil
	}
}

// expandBasicCommand resolves env assignments, applies any alias
// substitution for the program name, and expands every argument into its
// final argv strings.
func (rt *Runtime) expandBasicCommand(e *eval.Evaluator, bc program.BasicCommand) (argv []string, env []string, err error) {
	for _, ea := range bc.Env {
		vals, err := expandArgument(e, ea.Value)
		if err != nil {
			return nil, nil, err
		}
		env = append(env, string(ea.Key)+"="+strings.Join(vals, " "))
	}

	progVals, err := expandArgument(e, bc.Program)
	if err != nil {
		return nil, nil, err
	}
	if len(progVals) != 1 {
		return nil, nil, diag.NewStaticError(diag.StageAnalyzer, bc.Pos, "program name must expand to exactly one value")
	}
	prog := progVals[0]

	rt.mu.Lock()
	alias, isAlias := rt.aliases[prog]
	rt.mu.Unlock()
	if isAlias {
		argv = append(argv, alias...)
	} else {
		argv = append(argv, prog)
	}

	for _, a := range bc.Arguments {
		vals, err := expandArgument(e, a)
		if err != nil {
			return nil, nil, err
		}
		argv = append(argv, vals...)
	}
	return argv, env, nil
}

// applyRedirections wires each "N>"/"N>>"/"<"/"<<" onto cmd, per
// exec/mod.rs's spawn/resolve_target (only fd 1 and 2 are supported
// output targets; any other fd raises PanicUnsupportedFD).
func applyRedirections(cmd *exec.Cmd, redirs []program.Redirection, rt *Runtime, e *eval.Evaluator) error {
	for _, r := range redirs {
		vals, err := expandArgument(e, r.Target)
		if err != nil {
			return err
		}
		if len(vals) != 1 {
			return diag.NewStaticError(diag.StageAnalyzer, r.Pos, "redirection target must expand to exactly one value")
		}
		target := vals[0]

		if r.Input {
			if r.Literal {
				cmd.Stdin = strings.NewReader(target + "\n")
				continue
			}
			f, err := os.Open(target)
			if err != nil {
				return diag.NewIOError(r.Pos, err)
			}
			cmd.Stdin = f
			continue
		}

		if r.FD != 1 && r.FD != 2 {
			diag.Throw(diag.New(diag.PanicUnsupportedFD, r.Pos, "unsupported redirection file descriptor %d", r.FD))
		}
		flags := os.O_WRONLY | os.O_CREATE
		if r.Append {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(target, flags, 0o644)
		if err != nil {
			return diag.NewIOError(r.Pos, err)
		}
		if r.FD == 1 {
			cmd.Stdout = f
		} else {
			cmd.Stderr = f
		}
	}
	return nil
}

// fragment is one alternative piece of an argument's Cartesian expansion.
type fragment struct {
	text string
	glob bool
}

// expandArgument expands one command argument into its final set of argv
// strings: Cartesian-multiplies every part's alternatives together, then
// resolves any resulting glob pattern against the filesystem (spec.md §5
// "Argument expansion").
func expandArgument(e *eval.Evaluator, arg *program.Argument) ([]string, error) {
	if arg == nil {
		return nil, nil
	}
	combos := [][]fragment{{}}
	for i, part := range arg.Parts {
		alts, err := expandPart(e, part, i == 0)
		if err != nil {
			return nil, err
		}
		var next [][]fragment
		for _, prefix := range combos {
			for _, alt := range alts {
				row := append(append([]fragment{}, prefix...), alt)
				next = append(next, row)
			}
		}
		combos = next
	}

	var out []string
	for _, combo := range combos {
		var sb strings.Builder
		isGlob := false
		for _, f := range combo {
			sb.WriteString(f.text)
			isGlob = isGlob || f.glob
		}
		pattern := sb.String()
		if !isGlob {
			out = append(out, pattern)
			continue
		}
		globPattern := pattern
		if !filepath.IsAbs(globPattern) {
			globPattern = "./" + globPattern
		}
		matches, err := filepath.Glob(globPattern)
		if err != nil {
			return nil, diag.NewStaticError(diag.StageAnalyzer, arg.Pos, "invalid glob pattern: %s", err)
		}
		if len(matches) == 0 {
			out = append(out, pattern)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}

func expandPart(e *eval.Evaluator, part program.ArgPart, atStart bool) ([]fragment, error) {
	switch part.Kind {
	case program.PartUnquoted:
		return []fragment{{text: unitText(e, part.Unit)}}, nil
	case program.PartSingleQuoted:
		return []fragment{{text: string(part.Literal)}}, nil
	case program.PartDoubleQuoted:
		var sb strings.Builder
		for _, u := range part.Units {
			sb.WriteString(unitText(e, u))
		}
		return []fragment{{text: sb.String()}}, nil
	case program.PartHome:
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, diag.NewIOError(cursor.Position{}, err)
		}
		return []fragment{{text: home + "/"}}, nil
	case program.PartRange:
		return expandRange(part.RangeFrom, part.RangeTo), nil
	case program.PartCollection:
		alts := make([]fragment, len(part.Collection))
		for i, item := range part.Collection {
			alts[i] = fragment{text: string(item)}
		}
		return alts, nil
	case program.PartGlobStar:
		return []fragment{{text: "*", glob: true}}, nil
	case program.PartGlobQuestion:
		return []fragment{{text: "?", glob: true}}, nil
	case program.PartCharClass:
		return []fragment{{text: "[" + string(part.Literal) + "]", glob: true}}, nil
	default:
		return []fragment{{text: ""}}, nil
	}
}

func unitText(e *eval.Evaluator, u program.Unit) string {
	if !u.IsDollar {
		return string(u.Literal)
	}
	v := e.Stack.Top().Fetch(u.Slot)
	if v.Kind() == value.String {
		return v.Str()
	}
	return v.String()
}

func expandRange(from, to int64) []fragment {
	var out []fragment
	if from <= to {
		for i := from; i <= to; i++ {
			out = append(out, fragment{text: strconv.FormatInt(i, 10)})
		}
	} else {
		for i := from; i >= to; i-- {
			out = append(out, fragment{text: strconv.FormatInt(i, 10)})
		}
	}
	return out
}

