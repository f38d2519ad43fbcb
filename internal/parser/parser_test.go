package parser

import (
	"testing"

	"github.com/informatter/husk/internal/ast"
	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/lexer"
)

func parseSrc(t *testing.T, src string) (*ast.File, []string) {
	t.Helper()
	interner := intern.New()
	toks, lexErrs := lexer.New([]byte(src), interner).Scan()
	if len(lexErrs) != 0 {
		t.Fatalf("lex(%q) raised errors: %v", src, lexErrs)
	}
	file, errs := Parse("test.hk", toks, interner)
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return file, msgs
}

func requireNoErrors(t *testing.T, msgs []string) {
	t.Helper()
	if len(msgs) != 0 {
		t.Fatalf("unexpected parse errors: %v", msgs)
	}
}

func TestLetStatement(t *testing.T) {
	file, errs := parseSrc(t, "let x = 1 + 2")
	requireNoErrors(t, errs)
	if len(file.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(file.Statements))
	}
	let, ok := file.Statements[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.LetStmt", file.Statements[0])
	}
	bin, ok := let.Init.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.BinaryExpr", let.Init)
	}
	if bin.Left.(*ast.Literal).Int != 1 || bin.Right.(*ast.Literal).Int != 2 {
		t.Fatalf("unexpected operands: %+v", bin)
	}
}

func TestPrecedenceClimbsThroughConcat(t *testing.T) {
	// "++" must bind looser than "+" so `"a" ++ 1 + 1` parses as `"a" ++ (1+1)`.
	file, errs := parseSrc(t, `let x = "a" ++ 1 + 1`)
	requireNoErrors(t, errs)
	let := file.Statements[0].(*ast.LetStmt)
	top := let.Init.(*ast.BinaryExpr)
	if top.Op.String() != "++" {
		t.Fatalf("top op = %s, want ++", top.Op)
	}
	if _, ok := top.Right.(*ast.BinaryExpr); !ok {
		t.Fatalf("right operand = %T, want *ast.BinaryExpr", top.Right)
	}
}

func TestIfElseifElse(t *testing.T) {
	src := `
if x == 1 then
	let a = 1
elseif x == 2 then
	let a = 2
else
	let a = 3
end
`
	file, errs := parseSrc(t, src)
	requireNoErrors(t, errs)
	stmt := file.Statements[0].(*ast.ExprStmt)
	ifExpr := stmt.Expr.(*ast.IfExpr)
	if len(ifExpr.Then.Statements) != 1 {
		t.Fatalf("then block has %d statements, want 1", len(ifExpr.Then.Statements))
	}
	nested := ifExpr.Else.Statements[0].(*ast.ExprStmt).Expr.(*ast.IfExpr)
	if nested.Else == nil {
		t.Fatalf("expected elseif's else branch to be present")
	}
}

func TestWhileLoop(t *testing.T) {
	file, errs := parseSrc(t, "while true do\n  break\nend")
	requireNoErrors(t, errs)
	w := file.Statements[0].(*ast.WhileStmt)
	if len(w.Body.Statements) != 1 {
		t.Fatalf("body has %d statements, want 1", len(w.Body.Statements))
	}
	if _, ok := w.Body.Statements[0].(*ast.BreakStmt); !ok {
		t.Fatalf("got %T, want *ast.BreakStmt", w.Body.Statements[0])
	}
}

func TestForInLoop(t *testing.T) {
	file, errs := parseSrc(t, "for item in xs do\n  let y = item\nend")
	requireNoErrors(t, errs)
	f := file.Statements[0].(*ast.ForInStmt)
	if _, ok := f.Iter.(*ast.IdentExpr); !ok {
		t.Fatalf("iter = %T, want *ast.IdentExpr", f.Iter)
	}
}

func TestFunctionLiteralAndCall(t *testing.T) {
	file, errs := parseSrc(t, "let f = function(a, b)\n  return a + b\nend\nlet r = f(1, 2)")
	requireNoErrors(t, errs)
	let := file.Statements[0].(*ast.LetStmt)
	lit := let.Init.(*ast.Literal)
	if lit.Kind != ast.LitFunction || len(lit.Params) != 2 {
		t.Fatalf("unexpected function literal: %+v", lit)
	}
	call := file.Statements[1].(*ast.LetStmt).Init.(*ast.CallExpr)
	if len(call.Args) != 2 {
		t.Fatalf("call has %d args, want 2", len(call.Args))
	}
}

func TestArrayLiteral(t *testing.T) {
	file, errs := parseSrc(t, "let xs = [1, 2, 3]")
	requireNoErrors(t, errs)
	lit := file.Statements[0].(*ast.LetStmt).Init.(*ast.Literal)
	if lit.Kind != ast.LitArray || len(lit.Array) != 3 {
		t.Fatalf("unexpected array literal: %+v", lit)
	}
}

func TestEmptyArrayAndDictLiterals(t *testing.T) {
	file, errs := parseSrc(t, "let a = []\nlet d = [:]")
	requireNoErrors(t, errs)
	a := file.Statements[0].(*ast.LetStmt).Init.(*ast.Literal)
	if a.Kind != ast.LitArray || len(a.Array) != 0 {
		t.Fatalf("unexpected empty array: %+v", a)
	}
	d := file.Statements[1].(*ast.LetStmt).Init.(*ast.Literal)
	if d.Kind != ast.LitDict || len(d.Dict) != 0 {
		t.Fatalf("unexpected empty dict: %+v", d)
	}
}

func TestDictLiteral(t *testing.T) {
	file, errs := parseSrc(t, `let d = ["a": 1, "b": 2]`)
	requireNoErrors(t, errs)
	lit := file.Statements[0].(*ast.LetStmt).Init.(*ast.Literal)
	if lit.Kind != ast.LitDict || len(lit.Dict) != 2 {
		t.Fatalf("unexpected dict literal: %+v", lit)
	}
}

func TestIndexAndFieldAccessChain(t *testing.T) {
	file, errs := parseSrc(t, "let v = xs[0].name")
	requireNoErrors(t, errs)
	access := file.Statements[0].(*ast.LetStmt).Init.(*ast.AccessExpr)
	if _, ok := access.Object.(*ast.AccessExpr); !ok {
		t.Fatalf("outer object = %T, want *ast.AccessExpr (index access)", access.Object)
	}
}

func TestPostfixTryOperator(t *testing.T) {
	file, errs := parseSrc(t, "let r = f()?")
	requireNoErrors(t, errs)
	try, ok := file.Statements[0].(*ast.LetStmt).Init.(*ast.PostfixTryExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.PostfixTryExpr", file.Statements[0].(*ast.LetStmt).Init)
	}
	if _, ok := try.Operand.(*ast.CallExpr); !ok {
		t.Fatalf("operand = %T, want *ast.CallExpr", try.Operand)
	}
}

func TestAssignmentStatement(t *testing.T) {
	file, errs := parseSrc(t, "let x = 1\nx = 2")
	requireNoErrors(t, errs)
	assign := file.Statements[1].(*ast.AssignStmt)
	if _, ok := assign.Target.(*ast.IdentExpr); !ok {
		t.Fatalf("target = %T, want *ast.IdentExpr", assign.Target)
	}
}

func TestSyncCommandBlockPipelineAndRedirection(t *testing.T) {
	file, errs := parseSrc(t, "{ ls -la | grep foo > out.txt }")
	requireNoErrors(t, errs)
	stmt := file.Statements[0].(*ast.ExprStmt)
	blk := stmt.Expr.(*ast.CommandBlockExpr)
	if blk.Kind != ast.CommandSync {
		t.Fatalf("kind = %v, want CommandSync", blk.Kind)
	}
	if len(blk.Pipelines) != 1 {
		t.Fatalf("got %d pipelines, want 1", len(blk.Pipelines))
	}
	cmds := blk.Pipelines[0].Commands
	if len(cmds) != 2 {
		t.Fatalf("got %d commands in pipeline, want 2", len(cmds))
	}
	if len(cmds[1].Redirections) != 1 {
		t.Fatalf("grep stage has %d redirections, want 1", len(cmds[1].Redirections))
	}
}

func TestAsyncAndCaptureCommandBlocks(t *testing.T) {
	file, errs := parseSrc(t, "let job = &{ sleep 1 }\nlet out = ${ echo hi }")
	requireNoErrors(t, errs)
	asyncBlk := file.Statements[0].(*ast.LetStmt).Init.(*ast.CommandBlockExpr)
	if asyncBlk.Kind != ast.CommandAsync {
		t.Fatalf("kind = %v, want CommandAsync", asyncBlk.Kind)
	}
	captureBlk := file.Statements[1].(*ast.LetStmt).Init.(*ast.CommandBlockExpr)
	if captureBlk.Kind != ast.CommandCapture {
		t.Fatalf("kind = %v, want CommandCapture", captureBlk.Kind)
	}
}

func TestCommandTryOperator(t *testing.T) {
	file, errs := parseSrc(t, "{ risky-command ? }")
	requireNoErrors(t, errs)
	blk := file.Statements[0].(*ast.ExprStmt).Expr.(*ast.CommandBlockExpr)
	if !blk.Pipelines[0].Commands[0].Try {
		t.Fatalf("expected Try to be set")
	}
}

func TestCommandEnvAssignmentPrefix(t *testing.T) {
	file, errs := parseSrc(t, "{ FOO=bar printenv FOO }")
	requireNoErrors(t, errs)
	blk := file.Statements[0].(*ast.ExprStmt).Expr.(*ast.CommandBlockExpr)
	cmd := blk.Pipelines[0].Commands[0]
	if len(cmd.Env) != 1 || string(cmd.Env[0].Key) != "FOO" {
		t.Fatalf("unexpected env assignments: %+v", cmd.Env)
	}
}

func TestMultiplePipelinesSeparatedBySemicolon(t *testing.T) {
	file, errs := parseSrc(t, "{ echo one; echo two }")
	requireNoErrors(t, errs)
	blk := file.Statements[0].(*ast.ExprStmt).Expr.(*ast.CommandBlockExpr)
	if len(blk.Pipelines) != 2 {
		t.Fatalf("got %d pipelines, want 2", len(blk.Pipelines))
	}
}

func TestMissingEndIsReportedAndRecovers(t *testing.T) {
	file, errs := parseSrc(t, "while true do\n  break\nlet x = 1")
	if len(errs) == 0 {
		t.Fatalf("expected a missing-'end' error")
	}
	if len(file.Statements) == 0 {
		t.Fatalf("expected parsing to recover and keep producing statements")
	}
}

func TestMissingCommandCloseIsReportedAndRecovers(t *testing.T) {
	file, errs := parseSrc(t, "{ echo hi \nlet x = 1")
	if len(errs) == 0 {
		t.Fatalf("expected a missing-'}' error")
	}
	if len(file.Statements) == 0 {
		t.Fatalf("expected parsing to recover and keep producing statements")
	}
}

func TestMalformedLetStillParsesRestOfFile(t *testing.T) {
	file, errs := parseSrc(t, "let = 1\nlet y = 2")
	if len(errs) == 0 {
		t.Fatalf("expected an error for the malformed let binding")
	}
	if len(file.Statements) != 2 {
		t.Fatalf("got %d statements, want 2 (recovery should still yield both)", len(file.Statements))
	}
	if _, ok := file.Statements[0].(*ast.IllFormedStmt); !ok {
		t.Fatalf("got %T, want *ast.IllFormedStmt", file.Statements[0])
	}
	y, ok := file.Statements[1].(*ast.LetStmt)
	if !ok || y.Init.(*ast.Literal).Int != 2 {
		t.Fatalf("expected recovery to reach the second let binding, got %+v", file.Statements[1])
	}
}

func TestSelfExpr(t *testing.T) {
	file, errs := parseSrc(t, "let f = function()\n  return self\nend")
	requireNoErrors(t, errs)
	lit := file.Statements[0].(*ast.LetStmt).Init.(*ast.Literal)
	ret := lit.Body.Statements[0].(*ast.ReturnStmt)
	if _, ok := ret.Value.(*ast.SelfExpr); !ok {
		t.Fatalf("got %T, want *ast.SelfExpr", ret.Value)
	}
}
