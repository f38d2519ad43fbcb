// Package parser implements the recursive-descent parser of spec.md §4.3:
// single-token lookahead, a standard expression precedence chain, and
// explicit per-construct error recovery so one malformed statement never
// aborts parsing of the rest of the file.
//
// The lookahead/advance/check/consume vocabulary and the "keep parsing
// after an error, return every error collected" top-level Parse loop
// follow a conventional recursive-descent layout almost mechanically;
// what changes is the grammar itself (command blocks, function literals,
// arrays/dicts, postfix try) and the addition
// of dedicated ill-formed AST nodes instead of silently dropping broken
// statements.
package parser

import (
	"github.com/informatter/husk/internal/ast"
	"github.com/informatter/husk/internal/diag"
	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/token"
)

// Parser walks a flat token slice with one token of lookahead.
type Parser struct {
	tokens   []token.Token
	pos      int
	interner *intern.Interner
	errors   []*diag.StaticError
}

func New(tokens []token.Token, interner *intern.Interner) *Parser {
	return &Parser{tokens: tokens, interner: interner}
}

// Parse parses an entire file's token stream into an ast.File, returning
// every error encountered alongside it; syntax errors never stop
// parsing — they fall back to one of the recovery strategies below.
func Parse(path string, tokens []token.Token, interner *intern.Interner) (*ast.File, []*diag.StaticError) {
	p := New(tokens, interner)
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		stmts = append(stmts, p.declaration())
	}
	return &ast.File{Path: path, Statements: stmts}, p.errors
}

// ---- token stream plumbing ----

func (p *Parser) peek() token.Token     { return p.tokens[p.pos] }
func (p *Parser) previous() token.Token { return p.tokens[p.pos-1] }

func (p *Parser) isAtEnd() bool { return p.peek().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(k token.Kind) bool {
	if p.isAtEnd() {
		return k == token.EOF
	}
	return p.peek().Kind == k
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances past an expected token kind, or records a StaticError
// and performs "keep" recovery (spec.md §4.3): the current token is left
// in place and a synthetic ill-formed position is used, so the caller can
// keep building an ill-formed node around it rather than aborting.
func (p *Parser) consume(k token.Kind, format string, args ...any) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	p.errorf(p.peek(), format, args...)
	return p.peek(), false
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	p.errors = append(p.errors, diag.NewStaticError(diag.StageParser, tok.Pos, format, args...))
}

// syncStatement implements "seek-token" recovery: advance until a token
// that plausibly starts a new statement, so a malformed statement loses
// at most itself rather than cascading errors through the rest of the
// block (spec.md §4.3 "Error recovery strategies").
func (p *Parser) syncStatement() {
	for !p.isAtEnd() {
		switch p.peek().Kind {
		case token.KwLet, token.KwIf, token.KwWhile, token.KwFor, token.KwReturn,
			token.KwBreak, token.KwEnd, token.KwFunction:
			return
		}
		p.advance()
	}
}

var blockTerminators = map[token.Kind]bool{
	token.KwEnd: true, token.KwElse: true, token.KwElseif: true, token.EOF: true,
}

func (p *Parser) atBlockTerminator() bool {
	return blockTerminators[p.peek().Kind]
}
