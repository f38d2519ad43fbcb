// Package lexer implements the mode-switching lexer automaton of spec.md
// §4.2: a state machine whose transitions consume 0 or 1 input bytes and
// optionally emit one token or one error, partitioned into a code dialect
// and a command dialect.
//
// The overall shape — a struct wrapping a cursor, a running token slice and
// an error slice, with one handleX method per lexical category — is a
// two-dialect automaton (script tokens and command-mode tokens) built
// around "accumulate errors and keep lexing" (spec.md §4.2 "Error
// strategy": the lexer must preserve the token stream so downstream
// analysis sees all subsequent tokens).
package lexer

import (
	"github.com/informatter/husk/internal/cursor"
	"github.com/informatter/husk/internal/diag"
	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/token"
)

// dialect is the lexer's current mode.
type dialect int

const (
	dialectRoot dialect = iota
	dialectCommand
)

// Lexer scans source bytes into a token stream, switching dialect on
// command-block delimiters.
type Lexer struct {
	cur      *cursor.Cursor
	interner *intern.Interner
	mode     dialect

	tokens []token.Token
	errors []*diag.StaticError
}

// New creates a Lexer over src. The interner is the injected service
// spec.md §1 names as an external collaborator; callers share one across
// an entire compilation unit (and, transitively, across import'd files).
func New(src []byte, interner *intern.Interner) *Lexer {
	return &Lexer{
		cur:      cursor.New(src),
		interner: interner,
		mode:     dialectRoot,
	}
}

// Scan lexes the entire input and returns every token (including a
// trailing EOF) alongside every error encountered. Lexing never stops
// early: errors are collected and the cursor always advances, so a syntax
// error early in the file does not hide errors (or valid tokens) later on.
func (l *Lexer) Scan() ([]token.Token, []*diag.StaticError) {
	for !l.cur.AtEnd() {
		switch l.mode {
		case dialectRoot:
			l.scanRoot()
		case dialectCommand:
			l.scanCommand()
		}
	}
	l.emit(token.Token{Kind: token.EOF, Pos: l.cur.Position()})
	return l.tokens, l.errors
}

func (l *Lexer) emit(t token.Token) {
	l.tokens = append(l.tokens, t)
}

func (l *Lexer) errorf(pos cursor.Position, format string, args ...any) {
	l.errors = append(l.errors, diag.NewStaticError(diag.StageLexer, pos, format, args...))
}

func isDigit(b int) bool { return b >= '0' && b <= '9' }

func isIdentStart(b int) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b int) bool { return isIdentStart(b) || isDigit(b) }

func isSpace(b int) bool { return b == ' ' || b == '\t' || b == '\r' || b == '\n' }
