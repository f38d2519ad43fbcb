package lexer

import (
	"testing"

	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func assertKinds(t *testing.T, src string, want []token.Kind) []token.Token {
	t.Helper()
	toks, errs := New([]byte(src), intern.New()).Scan()
	if len(errs) != 0 {
		t.Fatalf("Scan(%q) raised errors: %v", src, errs)
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("Scan(%q) = %v, want %v", src, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("Scan(%q)[%d] = %v, want %v", src, i, got[i], want[i])
		}
	}
	return toks
}

func TestOperators(t *testing.T) {
	assertKinds(t, "== / = * + > - < != <= >=",
		[]token.Kind{token.EqEq, token.Slash, token.Assign, token.Star, token.Plus,
			token.Gt, token.Minus, token.Lt, token.NotEq, token.LtEq, token.GtEq, token.EOF})
}

func TestPunctuation(t *testing.T) {
	assertKinds(t, "(), . : []",
		[]token.Kind{token.LParen, token.RParen, token.Comma, token.Dot, token.Colon,
			token.LBracket, token.RBracket, token.EOF})
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := assertKinds(t, "let x = foo",
		[]token.Kind{token.KwLet, token.Identifier, token.Assign, token.Identifier, token.EOF})
	if toks[1].Lexeme != "x" || toks[3].Lexeme != "foo" {
		t.Fatalf("unexpected lexemes: %+v", toks)
	}
}

func TestNumberLiterals(t *testing.T) {
	toks := assertKinds(t, "42 3.14", []token.Kind{token.Int, token.Float, token.EOF})
	if toks[0].Int != 42 {
		t.Fatalf("Int = %d, want 42", toks[0].Int)
	}
	if toks[1].Float != 3.14 {
		t.Fatalf("Float = %v, want 3.14", toks[1].Float)
	}
}

func TestStringLiteralEscapes(t *testing.T) {
	toks := assertKinds(t, `"hi\nthere"`, []token.Kind{token.String, token.EOF})
	if string(toks[0].Str) != "hi\nthere" {
		t.Fatalf("Str = %q, want %q", toks[0].Str, "hi\nthere")
	}
}

func TestCommandBlockSwitchesDialect(t *testing.T) {
	toks := assertKinds(t, "let x = { echo hi }",
		[]token.Kind{token.KwLet, token.Identifier, token.Assign,
			token.CommandOpenSync, token.CommandArgument, token.CommandArgument,
			token.CommandClose, token.EOF})
	if len(toks[4].Argument) != 1 || toks[4].Argument[0].Kind != token.PartUnquoted {
		t.Fatalf("unexpected argument parts: %+v", toks[4].Argument)
	}
}

func TestAsyncAndCaptureBlockOpeners(t *testing.T) {
	assertKinds(t, "&{ ls }", []token.Kind{token.CommandOpenAsync, token.CommandArgument, token.CommandClose, token.EOF})
	assertKinds(t, "${ ls }", []token.Kind{token.CommandOpenCapture, token.CommandArgument, token.CommandClose, token.EOF})
}

func TestPipelineAndTerminators(t *testing.T) {
	assertKinds(t, "{ ls | grep x; echo done }",
		[]token.Kind{
			token.CommandOpenSync,
			token.CommandArgument, token.Pipe, token.CommandArgument, token.CommandArgument,
			token.Semicolon, token.CommandArgument, token.CommandArgument,
			token.CommandClose, token.EOF,
		})
}

func TestRedirections(t *testing.T) {
	toks := assertKinds(t, "{ cmd 2>> err.log < in.txt }",
		[]token.Kind{
			token.CommandOpenSync, token.CommandArgument,
			token.CommandRedirectOut, token.CommandArgument,
			token.CommandRedirectIn, token.CommandArgument,
			token.CommandClose, token.EOF,
		})
	redirOut := toks[2]
	if redirOut.Redirect.FD != 2 || !redirOut.Redirect.Append {
		t.Fatalf("redirect out = %+v, want fd 2 append", redirOut.Redirect)
	}
}

func TestTryOperatorInCommandDialect(t *testing.T) {
	assertKinds(t, "{ cmd ? }", []token.Kind{
		token.CommandOpenSync, token.CommandArgument, token.Question, token.CommandClose, token.EOF,
	})
}

func TestArgumentQuotingAndDollarReference(t *testing.T) {
	toks := assertKinds(t, `{ echo 'lit' "hi $name" $name }`,
		[]token.Kind{
			token.CommandOpenSync, token.CommandArgument,
			token.CommandArgument, token.CommandArgument, token.CommandArgument,
			token.CommandClose, token.EOF,
		})
	single := toks[2].Argument[0]
	if single.Kind != token.PartSingleQuoted || string(single.Literal) != "lit" {
		t.Fatalf("single-quoted part = %+v", single)
	}
	double := toks[3].Argument[0]
	if double.Kind != token.PartDoubleQuoted || len(double.Units) != 2 {
		t.Fatalf("double-quoted part = %+v", double)
	}
	if double.Units[1].Kind != token.UnitDollar {
		t.Fatalf("expected dollar unit, got %+v", double.Units[1])
	}
	bare := toks[4].Argument[0]
	if bare.Kind != token.PartUnquoted || bare.Unit.Kind != token.UnitDollar {
		t.Fatalf("bare dollar part = %+v", bare)
	}
}

func TestHomeMarkerOnlyAtArgumentStart(t *testing.T) {
	toks := assertKinds(t, "{ ls ~/docs a~b }", []token.Kind{
		token.CommandOpenSync, token.CommandArgument, token.CommandArgument, token.CommandArgument, token.CommandClose, token.EOF,
	})
	home := toks[2].Argument[0]
	if home.Kind != token.PartHome {
		t.Fatalf("expected home marker, got %+v", home)
	}
	mid := toks[3].Argument[0]
	if mid.Kind != token.PartUnquoted {
		t.Fatalf("'~' mid-argument must not expand, got %+v", mid)
	}
}

func TestGlobAndCharClassMarkers(t *testing.T) {
	toks := assertKinds(t, "{ ls *.txt file?.log [abc] }", []token.Kind{
		token.CommandOpenSync,
		token.CommandArgument, token.CommandArgument, token.CommandArgument, token.CommandArgument,
		token.CommandClose, token.EOF,
	})
	star := toks[2].Argument[0]
	if star.Kind != token.PartGlobStar {
		t.Fatalf("expected glob star, got %+v", star)
	}
	question := toks[3].Argument[1]
	if question.Kind != token.PartGlobQuestion {
		t.Fatalf("expected glob question, got %+v", question)
	}
	class := toks[4].Argument[0]
	if class.Kind != token.PartCharClass || string(class.Literal) != "abc" {
		t.Fatalf("expected char class 'abc', got %+v", class)
	}
}

func TestBraceRangeAndCollection(t *testing.T) {
	toks := assertKinds(t, "{ echo {1..3} {a,b,c} }", []token.Kind{
		token.CommandOpenSync, token.CommandArgument, token.CommandArgument, token.CommandArgument, token.CommandClose, token.EOF,
	})
	rng := toks[2].Argument[0]
	if rng.Kind != token.PartRange || rng.RangeFrom != 1 || rng.RangeTo != 3 {
		t.Fatalf("expected range 1..3, got %+v", rng)
	}
	coll := toks[3].Argument[0]
	if coll.Kind != token.PartCollection || len(coll.Collection) != 3 {
		t.Fatalf("expected 3-item collection, got %+v", coll)
	}
}

func TestUnmatchedBraceFallsBackToLiteral(t *testing.T) {
	toks := assertKinds(t, "{ echo {not-closed }", []token.Kind{
		token.CommandOpenSync, token.CommandArgument, token.CommandArgument, token.CommandClose, token.EOF,
	})
	lit := toks[2].Argument[0]
	if lit.Kind != token.PartUnquoted {
		t.Fatalf("expected literal fallback for unmatched brace, got %+v", lit)
	}
}

func TestLexerAccumulatesAllErrors(t *testing.T) {
	_, errs := New([]byte("let x = @ let y = ^"), intern.New()).Scan()
	if len(errs) != 2 {
		t.Fatalf("expected 2 accumulated errors, got %d: %v", len(errs), errs)
	}
}
