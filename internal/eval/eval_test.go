package eval_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/informatter/husk/internal/analyzer"
	"github.com/informatter/husk/internal/eval"
	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/lexer"
	"github.com/informatter/husk/internal/parser"
	"github.com/informatter/husk/internal/program"
	"github.com/informatter/husk/internal/value"
)

// noCommands satisfies eval.CommandRunner for programs with no command
// blocks; it panics if one ever reaches it, so a test exercising command
// syntax unexpectedly would fail loudly rather than silently no-op.
type noCommands struct{}

func (noCommands) Run(*eval.Evaluator, *program.CommandBlockExpr) (value.Value, error) {
	panic("unexpected command block in a non-command eval test")
}

func runSrc(t *testing.T, src string) value.Value {
	t.Helper()
	interner := intern.New()
	lex := lexer.New([]byte(src), interner)
	tokens, lexErrs := lex.Scan()
	require.Empty(t, lexErrs)

	file, parseErrs := parser.Parse("<test>", tokens, interner)
	require.Empty(t, parseErrs)

	prog, analyzeErrs := analyzer.Analyze(file, interner)
	require.Empty(t, analyzeErrs)

	var stdout, stderr bytes.Buffer
	e := eval.New(interner, noCommands{}, &stdout, &stderr)
	return e.Run(prog, value.Nil_())
}

func TestLetAndArithmetic(t *testing.T) {
	v := runSrc(t, `
let x = 2
let y = 3
x * y + 1
`)
	require.Equal(t, value.Int, v.Kind())
	require.Equal(t, int64(7), v.Int())
}

func TestIfExpressionValue(t *testing.T) {
	v := runSrc(t, `
let x = 10
if x > 5 then
  "big"
else
  "small"
end
`)
	require.Equal(t, "big", v.Str())
}

func TestWhileLoopMutatesOuterBinding(t *testing.T) {
	v := runSrc(t, `
let i = 0
let total = 0
while i < 5 do
  total = total + i
  i = i + 1
end
total
`)
	require.Equal(t, int64(10), v.Int())
}

func TestClosureCapturesSharedCell(t *testing.T) {
	v := runSrc(t, `
let counter = 0
let inc = function()
  counter = counter + 1
  counter
end
inc()
inc()
inc()
`)
	require.Equal(t, int64(3), v.Int(), "three calls to the same closure must share one captured cell")
}

func TestArrayAndDictLiteralsIndex(t *testing.T) {
	v := runSrc(t, `
let arr = [1, 2, 3]
let d = ["a": 10, "b": 20]
arr[1] + d["b"]
`)
	require.Equal(t, int64(22), v.Int())
}

func TestForInDrivesIteratorProtocol(t *testing.T) {
	v := runSrc(t, `
let arr = [1, 2, 3, 4]
let i = 0
let next = function()
  if i < 4 then
    let item = arr[i]
    i = i + 1
    ["value": item, "finished": false]
  else
    ["value": 0, "finished": true]
  end
end

let total = 0
for n in next do
  total = total + n
end
total
`)
	require.Equal(t, int64(10), v.Int())
}

func TestConcatOperator(t *testing.T) {
	v := runSrc(t, `"a" ++ "b" ++ "c"`)
	require.Equal(t, "abc", v.Str())
}
