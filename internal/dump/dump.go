// Package dump implements the `--ast` and `--program` CLI flags (spec.md
// §6 "Command-line"): rendering an internal/ast.File or internal/program.Program
// as a parenthesized, one-node-per-line tree. The parenthesized-expression
// style is a Lisp-style visitor expanded from a single-line expression
// printer into a multi-statement, indented tree so a whole file's worth of
// statements stays readable.
package dump

import (
	"fmt"
	"strings"

	"github.com/informatter/husk/internal/ast"
	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/program"
)

// Ast renders a parsed file's statement tree.
func Ast(file *ast.File, interner *intern.Interner) string {
	d := &astDumper{interner: interner}
	var b strings.Builder
	for _, s := range file.Statements {
		d.stmt(&b, 0, s)
	}
	return b.String()
}

type astDumper struct{ interner *intern.Interner }

func (d *astDumper) line(b *strings.Builder, depth int, format string, args ...any) {
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, format, args...)
	b.WriteByte('\n')
}

func (d *astDumper) name(sym intern.Symbol) string {
	s, _ := d.interner.Resolve(sym)
	return s
}

func (d *astDumper) block(b *strings.Builder, depth int, blk *ast.Block) {
	if blk == nil {
		return
	}
	for _, s := range blk.Statements {
		d.stmt(b, depth, s)
	}
}

func (d *astDumper) stmt(b *strings.Builder, depth int, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		d.line(b, depth, "(let %s", d.name(n.Name))
		d.expr(b, depth+1, n.Init)
		d.line(b, depth, ")")
	case *ast.AssignStmt:
		d.line(b, depth, "(assign")
		d.expr(b, depth+1, n.Target)
		d.expr(b, depth+1, n.Value)
		d.line(b, depth, ")")
	case *ast.ReturnStmt:
		if n.Value == nil {
			d.line(b, depth, "(return)")
			return
		}
		d.line(b, depth, "(return")
		d.expr(b, depth+1, n.Value)
		d.line(b, depth, ")")
	case *ast.BreakStmt:
		d.line(b, depth, "(break)")
	case *ast.WhileStmt:
		d.line(b, depth, "(while")
		d.expr(b, depth+1, n.Condition)
		d.block(b, depth+1, n.Body)
		d.line(b, depth, ")")
	case *ast.ForInStmt:
		d.line(b, depth, "(for-in %s", d.name(n.Name))
		d.expr(b, depth+1, n.Iter)
		d.block(b, depth+1, n.Body)
		d.line(b, depth, ")")
	case *ast.ExprStmt:
		d.expr(b, depth, n.Expr)
	case *ast.IllFormedStmt:
		d.line(b, depth, "(ill-formed-stmt)")
	default:
		d.line(b, depth, "(unknown-stmt)")
	}
}

func (d *astDumper) expr(b *strings.Builder, depth int, e ast.Expr) {
	if e == nil {
		d.line(b, depth, "nil")
		return
	}
	switch n := e.(type) {
	case *ast.SelfExpr:
		d.line(b, depth, "self")
	case *ast.IdentExpr:
		d.line(b, depth, "%s", d.name(n.Name))
	case *ast.Literal:
		d.literal(b, depth, n)
	case *ast.UnaryExpr:
		d.line(b, depth, "(%s", n.Op)
		d.expr(b, depth+1, n.Operand)
		d.line(b, depth, ")")
	case *ast.BinaryExpr:
		d.line(b, depth, "(%s", n.Op)
		d.expr(b, depth+1, n.Left)
		d.expr(b, depth+1, n.Right)
		d.line(b, depth, ")")
	case *ast.PostfixTryExpr:
		d.line(b, depth, "(try")
		d.expr(b, depth+1, n.Operand)
		d.line(b, depth, ")")
	case *ast.IfExpr:
		d.line(b, depth, "(if")
		d.expr(b, depth+1, n.Condition)
		d.block(b, depth+1, n.Then)
		if n.Else != nil {
			d.line(b, depth+1, "else")
			d.block(b, depth+1, n.Else)
		}
		d.line(b, depth, ")")
	case *ast.AccessExpr:
		d.line(b, depth, "(access")
		d.expr(b, depth+1, n.Object)
		d.expr(b, depth+1, n.Field)
		d.line(b, depth, ")")
	case *ast.CallExpr:
		d.line(b, depth, "(call")
		d.expr(b, depth+1, n.Function)
		for _, a := range n.Args {
			d.expr(b, depth+1, a)
		}
		d.line(b, depth, ")")
	case *ast.CommandBlockExpr:
		d.line(b, depth, "(command-block kind=%d pipelines=%d)", n.Kind, len(n.Pipelines))
	case *ast.IllFormedExpr:
		d.line(b, depth, "(ill-formed-expr)")
	default:
		d.line(b, depth, "(unknown-expr)")
	}
}

func (d *astDumper) literal(b *strings.Builder, depth int, n *ast.Literal) {
	switch n.Kind {
	case ast.LitNil:
		d.line(b, depth, "nil")
	case ast.LitBool:
		d.line(b, depth, "%v", n.Bool)
	case ast.LitInt:
		d.line(b, depth, "%d", n.Int)
	case ast.LitFloat:
		d.line(b, depth, "%g", n.Float)
	case ast.LitByte:
		d.line(b, depth, "b%d", n.Byte)
	case ast.LitString:
		d.line(b, depth, "%q", string(n.Str))
	case ast.LitArray:
		d.line(b, depth, "(array")
		for _, item := range n.Array {
			d.expr(b, depth+1, item)
		}
		d.line(b, depth, ")")
	case ast.LitDict:
		d.line(b, depth, "(dict")
		for _, entry := range n.Dict {
			d.expr(b, depth+1, entry.Key)
			d.expr(b, depth+1, entry.Value)
		}
		d.line(b, depth, ")")
	case ast.LitFunction:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = d.name(p)
		}
		d.line(b, depth, "(function (%s)", strings.Join(params, " "))
		d.block(b, depth+1, n.Body)
		d.line(b, depth, ")")
	default:
		d.line(b, depth, "(unknown-literal)")
	}
}

// Program renders a lowered program, after slot resolution: identifiers
// become `$N` slot references and every function literal shows its frame's
// slot count and number of captures.
func Program(prog *program.Program) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(program slots=%d std-slot=$%d\n", prog.Frame.Slots, prog.StdSlot)
	programBlock(&b, 1, prog.Body)
	b.WriteString(")\n")
	return b.String()
}

func programBlock(b *strings.Builder, depth int, blk *program.Block) {
	if blk == nil {
		return
	}
	for _, s := range blk.Statements {
		programStmt(b, depth, s)
	}
}

func pline(b *strings.Builder, depth int, format string, args ...any) {
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, format, args...)
	b.WriteByte('\n')
}

func programStmt(b *strings.Builder, depth int, s program.Stmt) {
	switch n := s.(type) {
	case *program.LetStmt:
		pline(b, depth, "(let $%d", n.Slot)
		programExpr(b, depth+1, n.Init)
		pline(b, depth, ")")
	case *program.AssignStmt:
		pline(b, depth, "(assign")
		programExpr(b, depth+1, n.Target)
		programExpr(b, depth+1, n.Value)
		pline(b, depth, ")")
	case *program.ReturnStmt:
		pline(b, depth, "(return")
		if n.Value != nil {
			programExpr(b, depth+1, n.Value)
		}
		pline(b, depth, ")")
	case *program.BreakStmt:
		pline(b, depth, "(break)")
	case *program.WhileStmt:
		pline(b, depth, "(while")
		programExpr(b, depth+1, n.Condition)
		programBlock(b, depth+1, n.Body)
		pline(b, depth, ")")
	case *program.ForInStmt:
		pline(b, depth, "(for-in $%d", n.Slot)
		programExpr(b, depth+1, n.Iter)
		programBlock(b, depth+1, n.Body)
		pline(b, depth, ")")
	case *program.ExprStmt:
		programExpr(b, depth, n.Expr)
	default:
		pline(b, depth, "(unknown-stmt)")
	}
}

func programExpr(b *strings.Builder, depth int, e program.Expr) {
	if e == nil {
		pline(b, depth, "nil")
		return
	}
	switch n := e.(type) {
	case *program.SelfExpr:
		pline(b, depth, "self($%d)", n.Slot)
	case *program.SlotExpr:
		pline(b, depth, "$%d", n.Slot)
	case *program.Literal:
		programLiteral(b, depth, n)
	case *program.UnaryExpr:
		pline(b, depth, "(unary %d", n.Op)
		programExpr(b, depth+1, n.Operand)
		pline(b, depth, ")")
	case *program.BinaryExpr:
		pline(b, depth, "(binary %d", n.Op)
		programExpr(b, depth+1, n.Left)
		programExpr(b, depth+1, n.Right)
		pline(b, depth, ")")
	case *program.PostfixTryExpr:
		pline(b, depth, "(try")
		programExpr(b, depth+1, n.Operand)
		pline(b, depth, ")")
	case *program.IfExpr:
		pline(b, depth, "(if")
		programExpr(b, depth+1, n.Condition)
		programBlock(b, depth+1, n.Then)
		if n.Else != nil {
			pline(b, depth+1, "else")
			programBlock(b, depth+1, n.Else)
		}
		pline(b, depth, ")")
	case *program.AccessExpr:
		pline(b, depth, "(access")
		programExpr(b, depth+1, n.Object)
		programExpr(b, depth+1, n.Field)
		pline(b, depth, ")")
	case *program.CallExpr:
		pline(b, depth, "(call")
		programExpr(b, depth+1, n.Function)
		for _, a := range n.Args {
			programExpr(b, depth+1, a)
		}
		pline(b, depth, ")")
	case *program.CommandBlockExpr:
		pline(b, depth, "(command-block kind=%d pipelines=%d)", n.Kind, len(n.Pipelines))
	default:
		pline(b, depth, "(unknown-expr)")
	}
}

func programLiteral(b *strings.Builder, depth int, n *program.Literal) {
	switch n.Kind {
	case program.LitNil:
		pline(b, depth, "nil")
	case program.LitBool:
		pline(b, depth, "%v", n.Bool)
	case program.LitInt:
		pline(b, depth, "%d", n.Int)
	case program.LitFloat:
		pline(b, depth, "%g", n.Float)
	case program.LitByte:
		pline(b, depth, "b%d", n.Byte)
	case program.LitString:
		pline(b, depth, "%q", string(n.Str))
	case program.LitArray:
		pline(b, depth, "(array")
		for _, item := range n.Array {
			programExpr(b, depth+1, item)
		}
		pline(b, depth, ")")
	case program.LitDict:
		pline(b, depth, "(dict")
		for _, entry := range n.Dict {
			programExpr(b, depth+1, entry.Key)
			programExpr(b, depth+1, entry.Value)
		}
		pline(b, depth, ")")
	case program.LitFunction:
		pline(b, depth, "(function arity=%d slots=%d captures=%d", n.Arity, n.Frame.Slots, len(n.Frame.Captures))
		programBlock(b, depth+1, n.Body)
		pline(b, depth, ")")
	default:
		pline(b, depth, "(unknown-literal)")
	}
}
