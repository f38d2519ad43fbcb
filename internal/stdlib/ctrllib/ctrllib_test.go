package ctrllib_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/informatter/husk/internal/cursor"
	"github.com/informatter/husk/internal/diag"
	"github.com/informatter/husk/internal/eval"
	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/program"
	"github.com/informatter/husk/internal/stdlib/ctrllib"
	"github.com/informatter/husk/internal/value"
)

// noCommands satisfies eval.CommandRunner; ctrllib never reaches it.
type noCommands struct{}

func (noCommands) Run(*eval.Evaluator, *program.CommandBlockExpr) (value.Value, error) {
	panic("ctrllib tests never execute a command block")
}

func newEvaluator() *eval.Evaluator {
	var stdout, stderr bytes.Buffer
	return eval.New(intern.New(), noCommands{}, &stdout, &stderr)
}

func nativeFn(name string, fn func([]value.Value) (value.Value, error)) value.Value {
	return value.FromFunction(&value.FunctionValue{Name: name, Native: fn})
}

func TestAssertPassesOnTruthyCondition(t *testing.T) {
	lib := ctrllib.New(newEvaluator())
	_, err := lib["assert"].Function().Native([]value.Value{value.FromBool(true)})
	require.NoError(t, err)
}

func TestAssertPanicsOnFalsyCondition(t *testing.T) {
	lib := ctrllib.New(newEvaluator())

	defer func() {
		r := recover()
		require.NotNil(t, r)
		p, ok := r.(*diag.Panic)
		require.True(t, ok)
		require.Equal(t, diag.PanicAssertionFailed, p.Kind)
		require.Contains(t, p.Message, "out of range")
	}()
	lib["assert"].Function().Native([]value.Value{value.FromBool(false), value.FromString("out of range")})
}

func TestCatchConvertsPanicToErrorValue(t *testing.T) {
	lib := ctrllib.New(newEvaluator())
	boom := nativeFn("boom", func(args []value.Value) (value.Value, error) {
		diag.Throw(diag.New(diag.PanicValueError, cursor.Position{}, "boom: %s", "bad input"))
		return value.Nil_(), nil
	})

	result, err := lib["catch"].Function().Native([]value.Value{boom})
	require.NoError(t, err)
	require.Equal(t, value.Error, result.Kind())
	require.Contains(t, result.ErrorValue().Description, "boom: bad input")
}

func TestCatchPassesThroughSuccessfulCall(t *testing.T) {
	lib := ctrllib.New(newEvaluator())
	identity := nativeFn("identity", func(args []value.Value) (value.Value, error) {
		return args[0], nil
	})

	result, err := lib["catch"].Function().Native([]value.Value{identity, value.FromInt(42)})
	require.NoError(t, err)
	require.Equal(t, int64(42), result.Int())
}

func TestBindPrependsArguments(t *testing.T) {
	lib := ctrllib.New(newEvaluator())
	add := nativeFn("add", func(args []value.Value) (value.Value, error) {
		return value.FromInt(args[0].Int() + args[1].Int()), nil
	})

	bound, err := lib["bind"].Function().Native([]value.Value{add, value.FromInt(10)})
	require.NoError(t, err)
	require.Equal(t, value.Function, bound.Kind())

	result, err := bound.Function().Native([]value.Value{value.FromInt(5)})
	require.NoError(t, err)
	require.Equal(t, int64(15), result.Int())
}
