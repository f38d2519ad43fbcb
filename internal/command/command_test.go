package command_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/informatter/husk/internal/command"
	"github.com/informatter/husk/internal/diag"
	"github.com/informatter/husk/internal/eval"
	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/program"
	"github.com/informatter/husk/internal/value"
)

func literalArg(s string) *program.Argument {
	return &program.Argument{
		Parts: []program.ArgPart{{
			Kind: program.PartUnquoted,
			Unit: program.Unit{Literal: []byte(s)},
		}},
	}
}

func basicCommand(argv ...string) program.BasicCommand {
	args := make([]*program.Argument, 0, len(argv)-1)
	for _, a := range argv[1:] {
		args = append(args, literalArg(a))
	}
	return program.BasicCommand{Program: literalArg(argv[0]), Arguments: args}
}

func block(kind program.CommandBlockKind, cmds ...program.BasicCommand) *program.CommandBlockExpr {
	return &program.CommandBlockExpr{
		Kind:      kind,
		Pipelines: []program.Pipeline{{Commands: cmds}},
	}
}

func newEvaluator() *eval.Evaluator {
	var stdout, stderr bytes.Buffer
	return eval.New(intern.New(), command.NewRuntime(), &stdout, &stderr)
}

func TestRunSyncReturnsNilOnSuccessAndErrorValueOnFailure(t *testing.T) {
	rt := command.NewRuntime()
	e := newEvaluator()

	v, err := rt.Run(e, block(program.CommandSync, basicCommand("true")))
	require.NoError(t, err)
	require.Equal(t, value.Nil, v.Kind())

	v, err = rt.Run(e, block(program.CommandSync, basicCommand("false")))
	require.NoError(t, err)
	require.Equal(t, value.Error, v.Kind())
	require.Contains(t, v.ErrorValue().Description, "status 1")
}

func TestRunCaptureReturnsStdoutStderrStatusDict(t *testing.T) {
	rt := command.NewRuntime()
	e := newEvaluator()

	v, err := rt.Run(e, block(program.CommandCapture, basicCommand("echo", "hello")))
	require.NoError(t, err)
	require.Equal(t, value.Dict, v.Kind())

	stdout, ok := v.DictValue().Get(value.FromString("stdout"))
	require.True(t, ok)
	require.Equal(t, "hello\n", stdout.Str(), "capture preserves stdout bytes verbatim, including the trailing newline")

	status, ok := v.DictValue().Get(value.FromString("status"))
	require.True(t, ok)
	require.Equal(t, int64(0), status.Int())
}

func TestRunCapturePipelineUsesLastStage(t *testing.T) {
	rt := command.NewRuntime()
	e := newEvaluator()

	blk := &program.CommandBlockExpr{
		Kind: program.CommandCapture,
		Pipelines: []program.Pipeline{{
			Commands: []program.BasicCommand{
				basicCommand("echo", "hello world"),
				basicCommand("cut", "-d", " ", "-f", "2"),
			},
		}},
	}
	v, err := rt.Run(e, blk)
	require.NoError(t, err)
	stdout, ok := v.DictValue().Get(value.FromString("stdout"))
	require.True(t, ok)
	require.Equal(t, "world\n", stdout.Str())
}

func TestRunAsyncJoinReturnsCaptureResult(t *testing.T) {
	rt := command.NewRuntime()
	e := newEvaluator()

	v, err := rt.Run(e, block(program.CommandAsync, basicCommand("echo", "hi")))
	require.NoError(t, err)
	require.Equal(t, value.Dict, v.Kind())

	join, ok := v.DictValue().Get(value.FromString("join"))
	require.True(t, ok)
	require.Equal(t, value.Function, join.Kind())

	result, err := join.Function().Native(nil)
	require.NoError(t, err)
	require.Equal(t, value.Dict, result.Kind())

	stdout, ok := result.DictValue().Get(value.FromString("stdout"))
	require.True(t, ok)
	require.Equal(t, "hi\n", stdout.Str())
	status, ok := result.DictValue().Get(value.FromString("status"))
	require.True(t, ok)
	require.Equal(t, int64(0), status.Int())
}

func TestRunAsyncJoinTwicePanics(t *testing.T) {
	rt := command.NewRuntime()
	e := newEvaluator()

	v, err := rt.Run(e, block(program.CommandAsync, basicCommand("true")))
	require.NoError(t, err)
	join, _ := v.DictValue().Get(value.FromString("join"))

	_, err = join.Function().Native(nil)
	require.NoError(t, err)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		p, ok := r.(*diag.Panic)
		require.True(t, ok)
		require.Equal(t, diag.PanicInvalidJoin, p.Kind)
	}()
	join.Function().Native(nil)
}

func TestCdBuiltinChangesWorkingDirectory(t *testing.T) {
	rt := command.NewRuntime()
	e := newEvaluator()

	original, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(original) })

	tmp := t.TempDir()
	_, err = rt.Run(e, block(program.CommandSync, basicCommand("cd", tmp)))
	require.NoError(t, err)

	resolvedTmp, err := filepath.EvalSymlinks(tmp)
	require.NoError(t, err)
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.Equal(t, resolvedTmp, cwd)
}
