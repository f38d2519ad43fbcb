package parser

import (
	"github.com/informatter/husk/internal/ast"
	"github.com/informatter/husk/internal/cursor"
	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/token"
)

// primary parses the grammar's terminal productions: literals,
// identifiers, `self`, parenthesized groups, array/dict literals,
// function literals, if-expressions, and command-block openers.
func (p *Parser) primary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.KwNil:
		p.advance()
		return &ast.Literal{Pos: ast.Pos{Position: tok.Pos}, Kind: ast.LitNil}
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ast.Literal{Pos: ast.Pos{Position: tok.Pos}, Kind: ast.LitBool, Bool: tok.Kind == token.KwTrue}
	case token.Int:
		p.advance()
		return &ast.Literal{Pos: ast.Pos{Position: tok.Pos}, Kind: ast.LitInt, Int: tok.Int}
	case token.Float:
		p.advance()
		return &ast.Literal{Pos: ast.Pos{Position: tok.Pos}, Kind: ast.LitFloat, Float: tok.Float}
	case token.Byte:
		p.advance()
		return &ast.Literal{Pos: ast.Pos{Position: tok.Pos}, Kind: ast.LitByte, Byte: tok.Byte}
	case token.String:
		p.advance()
		return &ast.Literal{Pos: ast.Pos{Position: tok.Pos}, Kind: ast.LitString, Str: tok.Str}
	case token.KwSelf:
		p.advance()
		return &ast.SelfExpr{Pos: ast.Pos{Position: tok.Pos}}
	case token.Identifier:
		p.advance()
		return &ast.IdentExpr{Pos: ast.Pos{Position: tok.Pos}, Name: tok.Symbol}
	case token.LParen:
		p.advance()
		expr := p.expression()
		p.consume(token.RParen, "expected ')' after expression")
		return expr
	case token.LBracket:
		return p.arrayOrDictLiteral()
	case token.KwFunction:
		return p.functionLiteral()
	case token.KwIf:
		return p.ifExpr()
	case token.CommandOpenSync, token.CommandOpenAsync, token.CommandOpenCapture:
		return p.commandBlock()
	default:
		p.errorf(tok, "unexpected token %s in expression", tok.Kind)
		p.advance()
		return &ast.IllFormedExpr{Pos: ast.Pos{Position: tok.Pos, IllFormed: true}}
	}
}

// arrayOrDictLiteral parses "[" ... "]": an empty pair is an empty array
// (spec.md's empty-dict spelling "[:]" is the sole special case), and
// otherwise the presence of a ':' after the first element disambiguates a
// dict from an array — both forms share the bracket pair since '{' is
// reserved for command blocks.
func (p *Parser) arrayOrDictLiteral() ast.Expr {
	pos := p.advance().Pos // '['
	if p.match(token.RBracket) {
		return &ast.Literal{Pos: ast.Pos{Position: pos}, Kind: ast.LitArray}
	}
	if p.check(token.Colon) {
		p.advance()
		p.consume(token.RBracket, "expected ']' to close empty dict literal '[:]'")
		return &ast.Literal{Pos: ast.Pos{Position: pos}, Kind: ast.LitDict}
	}

	first := p.expression()
	if p.match(token.Colon) {
		return p.finishDictLiteral(pos, first)
	}
	items := []ast.Expr{first}
	for p.match(token.Comma) {
		if p.check(token.RBracket) {
			break
		}
		items = append(items, p.expression())
	}
	p.consume(token.RBracket, "expected ']' to close array literal")
	return &ast.Literal{Pos: ast.Pos{Position: pos}, Kind: ast.LitArray, Array: items}
}

func (p *Parser) finishDictLiteral(pos cursor.Position, firstKey ast.Expr) ast.Expr {
	firstValue := p.expression()
	entries := []ast.DictEntry{{Key: firstKey, Value: firstValue}}
	for p.match(token.Comma) {
		if p.check(token.RBracket) {
			break
		}
		key := p.expression()
		p.consume(token.Colon, "expected ':' between dict key and value")
		value := p.expression()
		entries = append(entries, ast.DictEntry{Key: key, Value: value})
	}
	p.consume(token.RBracket, "expected ']' to close dict literal")
	return &ast.Literal{Pos: ast.Pos{Position: pos}, Kind: ast.LitDict, Dict: entries}
}

func (p *Parser) functionLiteral() ast.Expr {
	pos := p.advance().Pos // 'function'
	p.consume(token.LParen, "expected '(' after 'function'")
	var params []token.Token
	if !p.check(token.RParen) {
		if t, ok := p.consume(token.Identifier, "expected parameter name"); ok {
			params = append(params, t)
		}
		for p.match(token.Comma) {
			if t, ok := p.consume(token.Identifier, "expected parameter name"); ok {
				params = append(params, t)
			}
		}
	}
	p.consume(token.RParen, "expected ')' after parameter list")
	body := p.block()
	p.expectEnd()

	syms := make([]intern.Symbol, len(params))
	for i, t := range params {
		syms[i] = t.Symbol
	}
	return &ast.Literal{Pos: ast.Pos{Position: pos}, Kind: ast.LitFunction, Params: syms, Body: body}
}

func (p *Parser) ifExpr() ast.Expr {
	pos := p.advance().Pos // 'if'
	cond := p.expression()
	p.consume(token.KwThen, "expected 'then' after if condition")
	then := p.block()

	if p.match(token.KwElseif) {
		elseBlock := &ast.Block{Statements: []ast.Stmt{&ast.ExprStmt{Expr: p.ifExprTail()}}}
		p.expectEnd()
		return &ast.IfExpr{Pos: ast.Pos{Position: pos}, Condition: cond, Then: then, Else: elseBlock}
	}
	var elseBlock *ast.Block
	if p.match(token.KwElse) {
		elseBlock = p.block()
	}
	p.expectEnd()
	return &ast.IfExpr{Pos: ast.Pos{Position: pos}, Condition: cond, Then: then, Else: elseBlock}
}

// ifExprTail parses the body of an already-consumed 'elseif', reusing the
// 'if' grammar without requiring its own 'end' (the outermost if-chain
// owns the single terminating 'end').
func (p *Parser) ifExprTail() ast.Expr {
	pos := p.previous().Pos
	cond := p.expression()
	p.consume(token.KwThen, "expected 'then' after elseif condition")
	then := p.block()
	if p.match(token.KwElseif) {
		elseBlock := &ast.Block{Statements: []ast.Stmt{&ast.ExprStmt{Expr: p.ifExprTail()}}}
		return &ast.IfExpr{Pos: ast.Pos{Position: pos}, Condition: cond, Then: then, Else: elseBlock}
	}
	var elseBlock *ast.Block
	if p.match(token.KwElse) {
		elseBlock = p.block()
	}
	return &ast.IfExpr{Pos: ast.Pos{Position: pos}, Condition: cond, Then: then, Else: elseBlock}
}
