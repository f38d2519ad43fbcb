package parser

import (
	"bytes"

	"github.com/informatter/husk/internal/ast"
	"github.com/informatter/husk/internal/token"
)

// commandBlock parses a command-block expression after the lexer has
// already switched dialect: a ';'-separated sequence of pipelines,
// closed by CommandClose (spec.md §3 "Block delimiters", §4.3 "Command
// grammar").
func (p *Parser) commandBlock() ast.Expr {
	openTok := p.advance()
	kind := ast.CommandSync
	switch openTok.Kind {
	case token.CommandOpenAsync:
		kind = ast.CommandAsync
	case token.CommandOpenCapture:
		kind = ast.CommandCapture
	}

	var pipelines []ast.Pipeline
	for !p.check(token.CommandClose) && !p.isAtEnd() {
		pipelines = append(pipelines, p.pipeline())
		if !p.match(token.Semicolon) {
			break
		}
	}
	if _, ok := p.consume(token.CommandClose, "expected '}' to close command block"); !ok {
		// "basic-command-terminator" recovery: seek the next plausible
		// command-block boundary instead of bleeding into the rest of the
		// file's token stream (spec.md §4.3).
		for !p.isAtEnd() && !p.check(token.CommandClose) {
			p.advance()
		}
		p.match(token.CommandClose)
	}
	return &ast.CommandBlockExpr{Pos: ast.Pos{Position: openTok.Pos}, Kind: kind, Pipelines: pipelines}
}

func (p *Parser) pipeline() ast.Pipeline {
	pos := p.peek().Pos
	var cmds []ast.BasicCommand
	cmds = append(cmds, p.basicCommand())
	for p.match(token.Pipe) {
		cmds = append(cmds, p.basicCommand())
	}
	return ast.Pipeline{Pos: pos, Commands: cmds}
}

// basicCommand parses one pipeline stage: optional "NAME=value" prefix
// assignments, a program name, then an interleaved run of arguments and
// redirections, and an optional trailing '?' try marker.
func (p *Parser) basicCommand() ast.BasicCommand {
	pos := p.peek().Pos
	var env []ast.EnvAssignment

	for p.check(token.CommandArgument) && isEnvAssignment(p.peek()) {
		tok := p.advance()
		key, valueParts := splitEnvAssignment(tok)
		env = append(env, ast.EnvAssignment{
			Key:   key,
			Value: &ast.Argument{Pos: tok.Pos, Parts: valueParts},
		})
	}

	var program *ast.Argument
	if p.check(token.CommandArgument) {
		tok := p.advance()
		program = &ast.Argument{Pos: tok.Pos, Parts: tok.Argument}
	} else {
		p.errorf(p.peek(), "expected a command name")
	}

	var args []*ast.Argument
	var redirs []ast.Redirection
	for {
		switch {
		case p.check(token.CommandArgument):
			tok := p.advance()
			args = append(args, &ast.Argument{Pos: tok.Pos, Parts: tok.Argument})
		case p.check(token.CommandRedirectOut) || p.check(token.CommandRedirectIn):
			redirs = append(redirs, p.redirection())
		default:
			goto doneArgs
		}
	}
doneArgs:

	try := p.match(token.Question)
	return ast.BasicCommand{Pos: pos, Env: env, Program: program, Arguments: args, Redirections: redirs, Try: try}
}

func (p *Parser) redirection() ast.Redirection {
	tok := p.advance()
	var target *ast.Argument
	if t, ok := p.consume(token.CommandArgument, "expected a redirection target"); ok {
		target = &ast.Argument{Pos: t.Pos, Parts: t.Argument}
	}
	if tok.Kind == token.CommandRedirectIn {
		return ast.Redirection{Pos: tok.Pos, Input: true, Literal: tok.Redirect.Literal, Target: target}
	}
	return ast.Redirection{Pos: tok.Pos, Append: tok.Redirect.Append, FD: tok.Redirect.FD, Target: target}
}

// isEnvAssignment reports whether a CommandArgument token is shaped like
// "NAME=..." — a single unquoted literal part whose text before the
// first '=' is a valid identifier (spec.md §4.3 "Program argument").
func isEnvAssignment(tok token.Token) bool {
	if len(tok.Argument) == 0 {
		return false
	}
	first := tok.Argument[0]
	if first.Kind != token.PartUnquoted || first.Unit.Kind != token.UnitLiteral {
		return false
	}
	lit := first.Unit.Literal
	eq := bytes.IndexByte(lit, '=')
	if eq <= 0 {
		return false
	}
	name := lit[:eq]
	for i, c := range name {
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (i > 0 && c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}

// splitEnvAssignment peels the "NAME=" prefix off the first literal part
// of an env-assignment argument token, returning the name and the
// remaining parts (the "=" value, which may itself contain further
// dollar-reference parts after the first literal chunk).
func splitEnvAssignment(tok token.Token) ([]byte, []token.ArgPart) {
	first := tok.Argument[0]
	eq := bytes.IndexByte(first.Unit.Literal, '=')
	name := append([]byte{}, first.Unit.Literal[:eq]...)
	rest := first.Unit.Literal[eq+1:]

	parts := make([]token.ArgPart, 0, len(tok.Argument))
	if len(rest) > 0 {
		parts = append(parts, token.ArgPart{Kind: token.PartUnquoted, Unit: token.Unit{Kind: token.UnitLiteral, Literal: rest}})
	}
	parts = append(parts, tok.Argument[1:]...)
	return name, parts
}
