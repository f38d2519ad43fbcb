package analyzer

import (
	"testing"

	"github.com/informatter/husk/internal/ast"
	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/program"
)

func TestLetThenUseResolves(t *testing.T) {
	in := intern.New()
	x := in.Intern("x")
	file := &ast.File{Statements: []ast.Stmt{
		&ast.LetStmt{Name: x, Init: &ast.Literal{Kind: ast.LitInt, Int: 1}},
		&ast.ExprStmt{Expr: &ast.IdentExpr{Name: x}},
	}}
	_, errs := Analyze(file, in)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestUndeclaredVariableReported(t *testing.T) {
	in := intern.New()
	file := &ast.File{Statements: []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.IdentExpr{Name: in.Intern("missing")}},
	}}
	_, errs := Analyze(file, in)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
}

func TestBreakOutsideLoopReported(t *testing.T) {
	in := intern.New()
	file := &ast.File{Statements: []ast.Stmt{&ast.BreakStmt{}}}
	_, errs := Analyze(file, in)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
}

func TestReturnOutsideFunctionReported(t *testing.T) {
	in := intern.New()
	file := &ast.File{Statements: []ast.Stmt{&ast.ReturnStmt{}}}
	_, errs := Analyze(file, in)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
}

func TestDuplicateDictKeyReported(t *testing.T) {
	in := intern.New()
	lit := &ast.Literal{Kind: ast.LitDict, Dict: []ast.DictEntry{
		{Key: &ast.Literal{Kind: ast.LitString, Str: []byte("a")}, Value: &ast.Literal{Kind: ast.LitInt, Int: 1}},
		{Key: &ast.Literal{Kind: ast.LitString, Str: []byte("a")}, Value: &ast.Literal{Kind: ast.LitInt, Int: 2}},
	}}
	file := &ast.File{Statements: []ast.Stmt{&ast.ExprStmt{Expr: lit}}}
	_, errs := Analyze(file, in)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
}

func TestFunctionLiteralCapturesOuterLet(t *testing.T) {
	in := intern.New()
	x := in.Intern("x")
	fn := &ast.Literal{Kind: ast.LitFunction, Params: nil, Body: &ast.Block{
		Statements: []ast.Stmt{&ast.ExprStmt{Expr: &ast.IdentExpr{Name: x}}},
	}}
	file := &ast.File{Statements: []ast.Stmt{
		&ast.LetStmt{Name: x, Init: &ast.Literal{Kind: ast.LitInt, Int: 1}},
		&ast.ExprStmt{Expr: fn},
	}}
	prog, errs := Analyze(file, in)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	exprStmt := prog.Body.Statements[1].(*program.ExprStmt)
	lit := exprStmt.Expr.(*program.Literal)
	if len(lit.Frame.Captures) != 1 {
		t.Fatalf("expected function literal to capture exactly 1 slot, got %+v", lit.Frame.Captures)
	}
}
