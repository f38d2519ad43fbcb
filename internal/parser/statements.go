package parser

import (
	"github.com/informatter/husk/internal/ast"
	"github.com/informatter/husk/internal/token"
)

// declaration is the entry point for anything that can appear inside a
// block: `let` bindings are syntactically distinguished from every other
// statement, matching spec.md §3's "declarations vs statements" split.
func (p *Parser) declaration() ast.Stmt {
	if p.match(token.KwLet) {
		return p.letStmt()
	}
	return p.statement()
}

func (p *Parser) letStmt() ast.Stmt {
	pos := p.previous().Pos
	nameTok, ok := p.consume(token.Identifier, "expected identifier after 'let'")
	if !ok {
		p.syncStatement()
		return &ast.IllFormedStmt{Pos: ast.Pos{Position: pos, IllFormed: true}}
	}
	if _, ok := p.consume(token.Assign, "expected '=' in let binding"); !ok {
		p.syncStatement()
		return &ast.IllFormedStmt{Pos: ast.Pos{Position: pos, IllFormed: true}}
	}
	init := p.expression()
	return &ast.LetStmt{Pos: ast.Pos{Position: pos}, Name: nameTok.Symbol, Init: init}
}

func (p *Parser) statement() ast.Stmt {
	switch p.peek().Kind {
	case token.KwWhile:
		return p.whileStmt()
	case token.KwFor:
		return p.forInStmt()
	case token.KwReturn:
		return p.returnStmt()
	case token.KwBreak:
		return p.breakStmt()
	default:
		return p.exprOrAssignStmt()
	}
}

func (p *Parser) whileStmt() ast.Stmt {
	pos := p.advance().Pos // 'while'
	cond := p.expression()
	if _, ok := p.consume(token.KwDo, "expected 'do' after while condition"); !ok {
		p.syncStatement()
	}
	body := p.block()
	p.expectEnd()
	return &ast.WhileStmt{Pos: ast.Pos{Position: pos}, Condition: cond, Body: body}
}

func (p *Parser) forInStmt() ast.Stmt {
	pos := p.advance().Pos // 'for'
	nameTok, ok := p.consume(token.Identifier, "expected identifier after 'for'")
	if !ok {
		p.syncStatement()
	}
	if _, ok := p.consume(token.KwIn, "expected 'in' in for loop"); !ok {
		p.syncStatement()
	}
	iter := p.expression()
	if _, ok := p.consume(token.KwDo, "expected 'do' after for-in iterable"); !ok {
		p.syncStatement()
	}
	body := p.block()
	p.expectEnd()
	return &ast.ForInStmt{Pos: ast.Pos{Position: pos}, Name: nameTok.Symbol, Iter: iter, Body: body}
}

func (p *Parser) returnStmt() ast.Stmt {
	pos := p.advance().Pos // 'return'
	var value ast.Expr
	if !p.atBlockTerminator() && !p.isAtEnd() {
		value = p.expression()
	}
	return &ast.ReturnStmt{Pos: ast.Pos{Position: pos}, Value: value}
}

func (p *Parser) breakStmt() ast.Stmt {
	pos := p.advance().Pos // 'break'
	return &ast.BreakStmt{Pos: ast.Pos{Position: pos}}
}

// exprOrAssignStmt disambiguates an assignment from a bare expression
// statement by parsing the expression first and checking for a following
// '=': the assignment target's lvalue-shape is validated later by
// internal/analyzer, not here — the parser accepts any expression on the
// left so a malformed target still produces one coherent AssignStmt node
// instead of two unrelated parse errors.
func (p *Parser) exprOrAssignStmt() ast.Stmt {
	expr := p.expression()
	if p.match(token.Assign) {
		value := p.expression()
		return &ast.AssignStmt{Pos: ast.Pos{Position: expr.At()}, Target: expr, Value: value}
	}
	return &ast.ExprStmt{Pos: ast.Pos{Position: expr.At()}, Expr: expr}
}

// block parses statements until a block terminator (spec.md glossary
// "Block"). It never consumes the terminator itself — callers decide
// which one is valid in their context (expectEnd, or 'else'/'elseif' in
// if-expressions).
func (p *Parser) block() *ast.Block {
	b := &ast.Block{}
	for !p.atBlockTerminator() && !p.isAtEnd() {
		b.Statements = append(b.Statements, p.declaration())
	}
	return b
}

// expectEnd implements "block-terminator" recovery (spec.md §4.3): if
// 'end' is missing, report it but don't desynchronize the rest of the
// file — the caller already stopped at a recognized terminator kind.
func (p *Parser) expectEnd() {
	if _, ok := p.consume(token.KwEnd, "expected 'end' to close block"); !ok {
		p.syncStatement()
	}
}
