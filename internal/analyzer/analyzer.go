// Package analyzer implements the semantic analysis pass of spec.md §4.4:
// it walks internal/ast, resolving every identifier to an activation-stack
// slot via internal/scope and lowering the tree into internal/program's
// slot-indexed IR, while reporting the full set of static errors the
// lexer/parser cannot catch (undeclared variables, duplicate declarations,
// return/break/self used outside their enclosing construct, and so on).
//
// The walking style — one method per AST node kind, threading a mutable
// analyzer through the recursion — is a tree-walking visitor generalized
// from "evaluate and produce a value" to "resolve and produce an IR
// node", and is grounded directly on the original semantic/mod.rs
// Analyzer.
package analyzer

import (
	"github.com/informatter/husk/internal/ast"
	"github.com/informatter/husk/internal/cursor"
	"github.com/informatter/husk/internal/diag"
	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/program"
	"github.com/informatter/husk/internal/scope"
	"github.com/informatter/husk/internal/token"
)

// Analyzer carries the mutable state of one analysis pass: the frame
// stack, the interner shared with the lexer/parser, and accumulated
// errors. inFunction/inLoop/inAsync track the enclosing-construct
// invariants spec.md §4.4 lists (return/break/self/builtin-in-async).
type Analyzer struct {
	interner *intern.Interner
	stack    *scope.Stack
	errors   []*diag.StaticError

	inFunction int
	inLoop     int
	inAsync    int

	declaredInBlock map[intern.Symbol]bool
}

func New(interner *intern.Interner) *Analyzer {
	return &Analyzer{interner: interner, stack: scope.NewStack(interner)}
}

func (a *Analyzer) error(pos cursor.Position, format string, args ...any) {
	a.errors = append(a.errors, diag.NewStaticError(diag.StageAnalyzer, pos, format, args...))
}

// Analyze lowers a parsed file into a Program, returning every semantic
// error encountered. Like the lexer, it never stops at the first error:
// every statement is still visited so a single mistake doesn't hide the
// rest of the file's diagnostics.
func Analyze(file *ast.File, interner *intern.Interner) (*program.Program, []*diag.StaticError) {
	a := New(interner)
	a.stack.EnterFrame()
	stdSlot := a.stack.Declare(interner.Intern("std"))
	body := a.block(&ast.Block{Statements: file.Statements})
	frame := a.stack.ExitFrame()

	prog := &program.Program{
		Path: file.Path,
		Frame: program.FrameInfo{
			Slots:    frame.Slots(),
			Captures: frame.Captures,
			SelfSlot: frame.SelfSlot,
		},
		StdSlot: stdSlot,
		Body:    body,
	}
	return prog, a.errors
}

func (a *Analyzer) block(b *ast.Block) *program.Block {
	a.stack.EnterBlock()
	seen := map[intern.Symbol]bool{}
	prevSeen := a.declaredInBlock
	a.declaredInBlock = seen
	out := &program.Block{}
	for _, s := range b.Statements {
		if st := a.statement(s); st != nil {
			out.Statements = append(out.Statements, st)
		}
	}
	a.declaredInBlock = prevSeen
	a.stack.ExitBlock()
	return out
}

func (a *Analyzer) statement(s ast.Stmt) program.Stmt {
	switch n := s.(type) {
	case *ast.LetStmt:
		return a.letStmt(n)
	case *ast.AssignStmt:
		return a.assignStmt(n)
	case *ast.ReturnStmt:
		return a.returnStmt(n)
	case *ast.BreakStmt:
		return a.breakStmt(n)
	case *ast.WhileStmt:
		return a.whileStmt(n)
	case *ast.ForInStmt:
		return a.forInStmt(n)
	case *ast.ExprStmt:
		return &program.ExprStmt{Pos: n.At(), Expr: a.expr(n.Expr)}
	case *ast.IllFormedStmt:
		return nil
	default:
		return nil
	}
}

func (a *Analyzer) letStmt(n *ast.LetStmt) program.Stmt {
	init := a.expr(n.Init)
	if a.declaredInBlock != nil {
		if a.declaredInBlock[n.Name] {
			name, _ := a.interner.Resolve(n.Name)
			a.error(n.At(), "duplicate declaration of %q in this block", name)
		}
		a.declaredInBlock[n.Name] = true
	}
	slot := a.stack.Declare(n.Name)
	return &program.LetStmt{Pos: n.At(), Slot: slot, Init: init}
}

func (a *Analyzer) assignStmt(n *ast.AssignStmt) program.Stmt {
	target := a.lvalue(n.Target)
	value := a.expr(n.Value)
	return &program.AssignStmt{Pos: n.At(), Target: target, Value: value}
}

// lvalue resolves an assignment target, reporting an error if it isn't an
// identifier or an access expression (spec.md §4.4 "invalid assignment
// l-value").
func (a *Analyzer) lvalue(e ast.Expr) program.Expr {
	switch n := e.(type) {
	case *ast.IdentExpr:
		slot, ok := a.stack.Resolve(n.Name)
		if !ok {
			name, _ := a.interner.Resolve(n.Name)
			a.error(n.At(), "assignment to undeclared variable %q", name)
			return &program.SlotExpr{Pos: n.At()}
		}
		return &program.SlotExpr{Pos: n.At(), Slot: slot}
	case *ast.AccessExpr:
		return a.accessExpr(n)
	default:
		a.error(e.At(), "invalid assignment target")
		return &program.SlotExpr{Pos: e.At()}
	}
}

func (a *Analyzer) returnStmt(n *ast.ReturnStmt) program.Stmt {
	if a.inFunction == 0 {
		a.error(n.At(), "return used outside a function")
	}
	var v program.Expr
	if n.Value != nil {
		v = a.expr(n.Value)
	}
	return &program.ReturnStmt{Pos: n.At(), Value: v}
}

func (a *Analyzer) breakStmt(n *ast.BreakStmt) program.Stmt {
	if a.inLoop == 0 {
		a.error(n.At(), "break used outside a loop")
	}
	return &program.BreakStmt{Pos: n.At()}
}

func (a *Analyzer) whileStmt(n *ast.WhileStmt) program.Stmt {
	cond := a.expr(n.Condition)
	a.inLoop++
	body := a.block(n.Body)
	a.inLoop--
	return &program.WhileStmt{Pos: n.At(), Condition: cond, Body: body}
}

func (a *Analyzer) forInStmt(n *ast.ForInStmt) program.Stmt {
	iter := a.expr(n.Iter)
	a.stack.EnterBlock()
	slot := a.stack.Declare(n.Name)
	a.inLoop++
	body := &program.Block{}
	for _, s := range n.Body.Statements {
		if st := a.statement(s); st != nil {
			body.Statements = append(body.Statements, st)
		}
	}
	a.inLoop--
	a.stack.ExitBlock()
	return &program.ForInStmt{Pos: n.At(), Slot: slot, Iter: iter, Body: body}
}

func (a *Analyzer) expr(e ast.Expr) program.Expr {
	switch n := e.(type) {
	case *ast.SelfExpr:
		if a.inFunction == 0 {
			a.error(n.At(), "self used outside a function")
		}
		return &program.SelfExpr{Pos: n.At(), Slot: a.stack.ResolveOrInsertSelf()}
	case *ast.IdentExpr:
		slot, ok := a.stack.Resolve(n.Name)
		if !ok {
			name, _ := a.interner.Resolve(n.Name)
			a.error(n.At(), "undeclared variable %q", name)
			return &program.SlotExpr{Pos: n.At()}
		}
		return &program.SlotExpr{Pos: n.At(), Slot: slot}
	case *ast.Literal:
		return a.literal(n)
	case *ast.UnaryExpr:
		return &program.UnaryExpr{Pos: n.At(), Op: unaryOp(n.Op), Operand: a.expr(n.Operand)}
	case *ast.BinaryExpr:
		return &program.BinaryExpr{Pos: n.At(), Left: a.expr(n.Left), Op: binaryOp(n.Op), Right: a.expr(n.Right)}
	case *ast.PostfixTryExpr:
		return &program.PostfixTryExpr{Pos: n.At(), Operand: a.expr(n.Operand)}
	case *ast.IfExpr:
		cond := a.expr(n.Condition)
		then := a.block(n.Then)
		var els *program.Block
		if n.Else != nil {
			els = a.block(n.Else)
		}
		return &program.IfExpr{Pos: n.At(), Condition: cond, Then: then, Else: els}
	case *ast.AccessExpr:
		return a.accessExpr(n)
	case *ast.CallExpr:
		args := make([]program.Expr, len(n.Args))
		for i, arg := range n.Args {
			args[i] = a.expr(arg)
		}
		return &program.CallExpr{Pos: n.At(), Function: a.expr(n.Function), Args: args}
	case *ast.CommandBlockExpr:
		return a.commandBlock(n)
	case *ast.IllFormedExpr:
		return &program.Literal{Pos: n.At(), Kind: program.LitNil}
	default:
		return &program.Literal{Pos: e.At(), Kind: program.LitNil}
	}
}

func (a *Analyzer) accessExpr(n *ast.AccessExpr) program.Expr {
	return &program.AccessExpr{Pos: n.At(), Object: a.expr(n.Object), Field: a.expr(n.Field)}
}

func (a *Analyzer) literal(n *ast.Literal) program.Expr {
	switch n.Kind {
	case ast.LitNil:
		return &program.Literal{Pos: n.At(), Kind: program.LitNil}
	case ast.LitBool:
		return &program.Literal{Pos: n.At(), Kind: program.LitBool, Bool: n.Bool}
	case ast.LitInt:
		return &program.Literal{Pos: n.At(), Kind: program.LitInt, Int: n.Int}
	case ast.LitFloat:
		return &program.Literal{Pos: n.At(), Kind: program.LitFloat, Float: n.Float}
	case ast.LitByte:
		return &program.Literal{Pos: n.At(), Kind: program.LitByte, Byte: n.Byte}
	case ast.LitString:
		return &program.Literal{Pos: n.At(), Kind: program.LitString, Str: n.Str}
	case ast.LitArray:
		items := make([]program.Expr, len(n.Array))
		for i, item := range n.Array {
			items[i] = a.expr(item)
		}
		return &program.Literal{Pos: n.At(), Kind: program.LitArray, Array: items}
	case ast.LitDict:
		entries := make([]program.DictEntry, len(n.Dict))
		seenKeys := map[string]bool{}
		for i, entry := range n.Dict {
			if keyLit, ok := entry.Key.(*ast.Literal); ok && keyLit.Kind == ast.LitString {
				key := string(keyLit.Str)
				if seenKeys[key] {
					a.error(n.At(), "duplicate dict key %q", key)
				}
				seenKeys[key] = true
			}
			entries[i] = program.DictEntry{Key: a.expr(entry.Key), Value: a.expr(entry.Value)}
		}
		return &program.Literal{Pos: n.At(), Kind: program.LitDict, Dict: entries}
	case ast.LitFunction:
		return a.functionLiteral(n)
	default:
		return &program.Literal{Pos: n.At(), Kind: program.LitNil}
	}
}

func (a *Analyzer) functionLiteral(n *ast.Literal) program.Expr {
	a.stack.EnterFrame()
	a.inFunction++
	slots := make([]scope.SlotIx, len(n.Params))
	for i, p := range n.Params {
		slots[i] = a.stack.Declare(p)
	}
	body := a.block(n.Body)
	a.inFunction--
	frame := a.stack.ExitFrame()

	return &program.Literal{
		Pos:  n.At(),
		Kind: program.LitFunction,
		Frame: program.FrameInfo{
			Slots:    frame.Slots(),
			Captures: frame.Captures,
			SelfSlot: frame.SelfSlot,
		},
		Body:  body,
		Arity: len(slots),
	}
}

// commandBlock lowers a command-block expression, resolving every dollar
// reference inside every argument part to a slot the same way an
// identifier expression would be. Builtins that only make sense
// synchronously (spec.md's `cd`) are rejected inside async blocks here,
// since that is a static, not a runtime, property of the block.
func (a *Analyzer) commandBlock(n *ast.CommandBlockExpr) program.Expr {
	kind := program.CommandSync
	switch n.Kind {
	case ast.CommandAsync:
		kind = program.CommandAsync
	case ast.CommandCapture:
		kind = program.CommandCapture
	}

	if kind == program.CommandAsync {
		a.inAsync++
	}
	pipelines := make([]program.Pipeline, len(n.Pipelines))
	for i, p := range n.Pipelines {
		pipelines[i] = a.pipeline(p)
	}
	if kind == program.CommandAsync {
		a.inAsync--
	}

	return &program.CommandBlockExpr{Pos: n.At(), Kind: kind, Pipelines: pipelines}
}

func (a *Analyzer) pipeline(p ast.Pipeline) program.Pipeline {
	cmds := make([]program.BasicCommand, len(p.Commands))
	for i, c := range p.Commands {
		cmds[i] = a.basicCommand(c)
	}
	return program.Pipeline{Pos: p.Pos, Commands: cmds}
}

func (a *Analyzer) basicCommand(c ast.BasicCommand) program.BasicCommand {
	if a.inAsync > 0 && isAliasOrCdProgram(c.Program) {
		a.error(c.Pos, "'cd' and 'alias' are not supported inside an async command block")
	}

	env := make([]program.EnvAssignment, len(c.Env))
	for i, e := range c.Env {
		env[i] = program.EnvAssignment{Key: e.Key, Value: a.argument(e.Value)}
	}
	args := make([]*program.Argument, len(c.Arguments))
	for i, arg := range c.Arguments {
		args[i] = a.argument(arg)
	}
	redirs := make([]program.Redirection, len(c.Redirections))
	for i, r := range c.Redirections {
		redirs[i] = program.Redirection{
			Pos: r.Pos, Input: r.Input, Append: r.Append, Literal: r.Literal,
			FD: r.FD, Target: a.argument(r.Target),
		}
	}
	return program.BasicCommand{
		Pos: c.Pos, Env: env, Program: a.argument(c.Program),
		Arguments: args, Redirections: redirs, Try: c.Try,
	}
}

// isAliasOrCdProgram reports whether a command's program argument is a
// single unquoted literal spelling "cd" or "alias" — the only shape that
// can statically name a builtin (spec.md §5.1 "Supplemented features").
func isAliasOrCdProgram(arg *ast.Argument) bool {
	if arg == nil || len(arg.Parts) != 1 {
		return false
	}
	part := arg.Parts[0]
	if part.Kind != token.PartUnquoted || part.Unit.Kind != token.UnitLiteral {
		return false
	}
	name := string(part.Unit.Literal)
	return name == "cd" || name == "alias"
}

func (a *Analyzer) argument(arg *ast.Argument) *program.Argument {
	if arg == nil {
		return nil
	}
	out := &program.Argument{Pos: arg.Pos, Parts: make([]program.ArgPart, len(arg.Parts))}
	for i, p := range arg.Parts {
		out.Parts[i] = a.argPart(p)
	}
	return out
}

func (a *Analyzer) argPart(p token.ArgPart) program.ArgPart {
	switch p.Kind {
	case token.PartUnquoted:
		return program.ArgPart{Kind: program.PartUnquoted, Unit: a.unit(p.Unit)}
	case token.PartSingleQuoted:
		return program.ArgPart{Kind: program.PartSingleQuoted, Literal: p.Literal}
	case token.PartDoubleQuoted:
		units := make([]program.Unit, len(p.Units))
		for i, u := range p.Units {
			units[i] = a.unit(u)
		}
		return program.ArgPart{Kind: program.PartDoubleQuoted, Units: units}
	case token.PartHome:
		return program.ArgPart{Kind: program.PartHome}
	case token.PartRange:
		return program.ArgPart{Kind: program.PartRange, RangeFrom: p.RangeFrom, RangeTo: p.RangeTo}
	case token.PartCollection:
		return program.ArgPart{Kind: program.PartCollection, Collection: p.Collection}
	case token.PartGlobStar:
		return program.ArgPart{Kind: program.PartGlobStar}
	case token.PartGlobQuestion:
		return program.ArgPart{Kind: program.PartGlobQuestion}
	case token.PartCharClass:
		return program.ArgPart{Kind: program.PartCharClass, Literal: p.Literal}
	default:
		return program.ArgPart{Kind: program.PartUnquoted}
	}
}

func (a *Analyzer) unit(u token.Unit) program.Unit {
	if u.Kind != token.UnitDollar {
		return program.Unit{Literal: u.Literal}
	}
	slot, ok := a.stack.Resolve(u.Symbol)
	if !ok {
		name, _ := a.interner.Resolve(u.Symbol)
		a.error(cursor.Position{}, "undeclared variable %q referenced in command argument", name)
		return program.Unit{IsDollar: true}
	}
	return program.Unit{IsDollar: true, Slot: slot}
}

func unaryOp(k token.Kind) program.UnaryOp {
	if k == token.KwNot {
		return program.OpNot
	}
	return program.OpNeg
}

func binaryOp(k token.Kind) program.BinaryOp {
	switch k {
	case token.Plus:
		return program.OpAdd
	case token.Minus:
		return program.OpSub
	case token.Star:
		return program.OpMul
	case token.Slash:
		return program.OpDiv
	case token.Percent:
		return program.OpMod
	case token.Concat:
		return program.OpConcat
	case token.EqEq:
		return program.OpEq
	case token.NotEq:
		return program.OpNotEq
	case token.Lt:
		return program.OpLt
	case token.LtEq:
		return program.OpLtEq
	case token.Gt:
		return program.OpGt
	case token.GtEq:
		return program.OpGtEq
	case token.KwAnd:
		return program.OpAnd
	case token.KwOr:
		return program.OpOr
	default:
		return program.OpAdd
	}
}
