package parser

import (
	"github.com/informatter/husk/internal/ast"
	"github.com/informatter/husk/internal/token"
)

// expression is the top of the precedence chain (spec.md §4.3 "Expression
// grammar"): or -> and -> equality -> comparison -> concat -> term ->
// factor -> unary -> postfix -> primary.
func (p *Parser) expression() ast.Expr {
	return p.or()
}

func (p *Parser) or() ast.Expr {
	left := p.and()
	for p.match(token.KwOr) {
		op := p.previous()
		right := p.and()
		left = &ast.BinaryExpr{Pos: ast.Pos{Position: op.Pos}, Left: left, Op: op.Kind, Right: right}
	}
	return left
}

func (p *Parser) and() ast.Expr {
	left := p.equality()
	for p.match(token.KwAnd) {
		op := p.previous()
		right := p.equality()
		left = &ast.BinaryExpr{Pos: ast.Pos{Position: op.Pos}, Left: left, Op: op.Kind, Right: right}
	}
	return left
}

func (p *Parser) equality() ast.Expr {
	left := p.comparison()
	for p.match(token.EqEq, token.NotEq) {
		op := p.previous()
		right := p.comparison()
		left = &ast.BinaryExpr{Pos: ast.Pos{Position: op.Pos}, Left: left, Op: op.Kind, Right: right}
	}
	return left
}

func (p *Parser) comparison() ast.Expr {
	left := p.concat()
	for p.match(token.Lt, token.LtEq, token.Gt, token.GtEq) {
		op := p.previous()
		right := p.concat()
		left = &ast.BinaryExpr{Pos: ast.Pos{Position: op.Pos}, Left: left, Op: op.Kind, Right: right}
	}
	return left
}

func (p *Parser) concat() ast.Expr {
	left := p.term()
	for p.match(token.Concat) {
		op := p.previous()
		right := p.term()
		left = &ast.BinaryExpr{Pos: ast.Pos{Position: op.Pos}, Left: left, Op: op.Kind, Right: right}
	}
	return left
}

func (p *Parser) term() ast.Expr {
	left := p.factor()
	for p.match(token.Plus, token.Minus) {
		op := p.previous()
		right := p.factor()
		left = &ast.BinaryExpr{Pos: ast.Pos{Position: op.Pos}, Left: left, Op: op.Kind, Right: right}
	}
	return left
}

func (p *Parser) factor() ast.Expr {
	left := p.unary()
	for p.match(token.Star, token.Slash, token.Percent) {
		op := p.previous()
		right := p.unary()
		left = &ast.BinaryExpr{Pos: ast.Pos{Position: op.Pos}, Left: left, Op: op.Kind, Right: right}
	}
	return left
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.Minus, token.KwNot) {
		op := p.previous()
		operand := p.unary()
		return &ast.UnaryExpr{Pos: ast.Pos{Position: op.Pos}, Op: op.Kind, Operand: operand}
	}
	return p.postfix()
}

// postfix handles call, field/index access, and the try operator, all of
// which can chain (`f(x).y?()`).
func (p *Parser) postfix() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			fieldTok, ok := p.consume(token.Identifier, "expected field name after '.'")
			var field ast.Expr
			if ok {
				field = &ast.Literal{Pos: ast.Pos{Position: fieldTok.Pos}, Kind: ast.LitString, Str: []byte(fieldTok.Lexeme)}
			} else {
				field = &ast.IllFormedExpr{Pos: ast.Pos{Position: fieldTok.Pos, IllFormed: true}}
			}
			expr = &ast.AccessExpr{Pos: ast.Pos{Position: expr.At()}, Object: expr, Field: field}
		case p.match(token.LBracket):
			field := p.expression()
			p.consume(token.RBracket, "expected ']' after index expression")
			expr = &ast.AccessExpr{Pos: ast.Pos{Position: expr.At()}, Object: expr, Field: field}
		case p.match(token.Question):
			expr = &ast.PostfixTryExpr{Pos: ast.Pos{Position: expr.At()}, Operand: expr}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RParen) {
		args = append(args, p.expression())
		for p.match(token.Comma) {
			args = append(args, p.expression())
		}
	}
	p.consume(token.RParen, "expected ')' after call arguments")
	return &ast.CallExpr{Pos: ast.Pos{Position: callee.At()}, Function: callee, Args: args}
}
