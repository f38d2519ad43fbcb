package lexer

import (
	"bytes"
	"strconv"

	"github.com/informatter/husk/internal/cursor"
	"github.com/informatter/husk/internal/token"
)

// argTerminator reports whether b ends a command argument (whitespace or
// one of the command dialect's fixed-punctuation bytes). Unlike a Bourne
// shell, redirection/pipe/terminator characters are never escapable inside
// an unquoted run — a caller wanting a literal '|' must quote it.
func argTerminator(b int) bool {
	switch b {
	case -1, ' ', '\t', '\r', '\n', ';', '|', '}', '<', '>', '#':
		return true
	}
	return false
}

// scanArgument consumes one whole command argument — a sequence of one or
// more adjoining parts (spec.md §3 "Argument parts") — and emits it as a
// single CommandArgument token.
func (l *Lexer) scanArgument(pos cursor.Position) {
	var parts []token.ArgPart
	first := true
	for !l.cur.AtEnd() && !argTerminator(l.cur.Peek()) {
		b := l.cur.Peek()
		switch {
		case b == '\'':
			parts = append(parts, l.scanSingleQuoted())
		case b == '"':
			parts = append(parts, l.scanDoubleQuoted())
		case b == '~' && first && l.cur.PeekAt(1) == '/':
			l.cur.Step()
			parts = append(parts, token.ArgPart{Kind: token.PartHome})
		case b == '{':
			if part, ok := l.tryScanBrace(); ok {
				parts = append(parts, part)
			} else {
				// tryScanBrace rolled back to '{' on mismatch; consume it as
				// a one-byte literal so the loop always makes progress, and
				// let the next iteration re-evaluate whatever follows.
				l.cur.Step()
				parts = append(parts, token.ArgPart{Kind: token.PartUnquoted, Unit: token.Unit{Kind: token.UnitLiteral, Literal: []byte("{")}})
			}
		case b == '*':
			l.cur.Step()
			parts = append(parts, token.ArgPart{Kind: token.PartGlobStar})
		case b == '?':
			l.cur.Step()
			parts = append(parts, token.ArgPart{Kind: token.PartGlobQuestion})
		case b == '[':
			parts = append(parts, l.scanCharClass())
		default:
			parts = append(parts, l.scanUnquotedRun())
		}
		first = false
	}
	l.emit(token.Token{Kind: token.CommandArgument, Pos: pos, Argument: parts})
}

func (l *Lexer) scanSingleQuoted() token.ArgPart {
	l.cur.Step() // opening '\''
	var out []byte
	for {
		if l.cur.AtEnd() {
			l.errorf(l.cur.Position(), "unterminated single-quoted argument")
			break
		}
		b := l.cur.Peek()
		if b == '\'' {
			l.cur.Step()
			break
		}
		if b == '\\' {
			l.cur.Step()
			esc, ok := readEscape(l.cur)
			if !ok {
				l.errorf(l.cur.Position(), "invalid escape sequence in single-quoted argument")
				continue
			}
			out = append(out, esc)
			continue
		}
		out = append(out, byte(b))
		l.cur.Step()
	}
	return token.ArgPart{Kind: token.PartSingleQuoted, Literal: out}
}

func (l *Lexer) scanDoubleQuoted() token.ArgPart {
	pos := l.cur.Position()
	l.cur.Step() // opening '"'
	var units []token.Unit
	var lit []byte
	flush := func() {
		if len(lit) > 0 {
			units = append(units, token.Unit{Kind: token.UnitLiteral, Literal: lit})
			lit = nil
		}
	}
	for {
		if l.cur.AtEnd() {
			l.errorf(pos, "unterminated double-quoted argument")
			break
		}
		b := l.cur.Peek()
		if b == '"' {
			l.cur.Step()
			break
		}
		if b == '\\' {
			l.cur.Step()
			esc, ok := readEscape(l.cur)
			if !ok {
				l.errorf(l.cur.Position(), "invalid escape sequence in double-quoted argument")
				continue
			}
			lit = append(lit, esc)
			continue
		}
		if b == '$' {
			flush()
			units = append(units, l.scanDollarUnit())
			continue
		}
		lit = append(lit, byte(b))
		l.cur.Step()
	}
	flush()
	return token.ArgPart{Kind: token.PartDoubleQuoted, Units: units}
}

// scanUnquotedRun consumes a single PartUnquoted: either one literal byte
// run, or one dollar reference, whichever starts at the cursor. Embedded
// dollar references inside a longer unquoted word therefore surface as
// several adjoining PartUnquoted entries rather than one compound part.
func (l *Lexer) scanUnquotedRun() token.ArgPart {
	if l.cur.Peek() == '$' {
		return token.ArgPart{Kind: token.PartUnquoted, Unit: l.scanDollarUnit()}
	}
	start := l.cur.Offset()
	for !l.cur.AtEnd() {
		b := l.cur.Peek()
		if argTerminator(b) || b == '$' || b == '\'' || b == '"' || b == '*' || b == '?' || b == '[' || b == '{' {
			break
		}
		l.cur.Step()
	}
	lit := l.cur.ByteSlice(start)
	return token.ArgPart{Kind: token.PartUnquoted, Unit: token.Unit{Kind: token.UnitLiteral, Literal: lit}}
}

// scanDollarUnit consumes "$name" or "${name}", both producing the same
// UnitDollar shape (spec.md §3 "Argument parts").
func (l *Lexer) scanDollarUnit() token.Unit {
	pos := l.cur.Position()
	l.cur.Step() // '$'
	braced := false
	if l.cur.Peek() == '{' {
		braced = true
		l.cur.Step()
	}
	start := l.cur.Offset()
	for isIdentPart(l.cur.Peek()) {
		l.cur.Step()
	}
	name := string(l.cur.ByteSlice(start))
	if name == "" {
		l.errorf(pos, "expected identifier after '$'")
	}
	if braced {
		if l.cur.Peek() != '}' {
			l.errorf(pos, "unterminated '${...}' reference")
		} else {
			l.cur.Step()
		}
	}
	return token.Unit{Kind: token.UnitDollar, Symbol: l.interner.Intern(name)}
}

func (l *Lexer) scanCharClass() token.ArgPart {
	l.cur.Step() // '['
	start := l.cur.Offset()
	for !l.cur.AtEnd() && l.cur.Peek() != ']' {
		l.cur.Step()
	}
	lit := l.cur.ByteSlice(start)
	if l.cur.Peek() == ']' {
		l.cur.Step()
	} else {
		l.errorf(l.cur.Position(), "unterminated character class")
	}
	return token.ArgPart{Kind: token.PartCharClass, Literal: lit}
}

// tryScanBrace attempts the speculative "{...}" expansion forms — a range
// "{x..y}" or a collection "{a,b,c}" — rolling back to plain-literal
// scanning on any mismatch. This is the lexer's only use of cursor
// checkpoint/rollback (spec.md §9); the '~' home marker above uses plain
// one-byte lookahead.
func (l *Lexer) tryScanBrace() (token.ArgPart, bool) {
	cp := l.cur.Checkpoint()
	l.cur.Step() // '{'
	start := l.cur.Offset()
	for !l.cur.AtEnd() && l.cur.Peek() != '}' && !argTerminator(l.cur.Peek()) {
		l.cur.Step()
	}
	if l.cur.Peek() != '}' {
		l.cur.Rollback(cp)
		return token.ArgPart{}, false
	}
	inner := l.cur.ByteSlice(start)
	l.cur.Step() // '}'

	if from, to, ok := parseRange(inner); ok {
		return token.ArgPart{Kind: token.PartRange, RangeFrom: from, RangeTo: to}, true
	}
	if items, ok := parseCollection(inner); ok {
		return token.ArgPart{Kind: token.PartCollection, Collection: items}, true
	}
	l.cur.Rollback(cp)
	return token.ArgPart{}, false
}

func parseRange(inner []byte) (from, to int64, ok bool) {
	sep := bytes.Index(inner, []byte(".."))
	if sep < 0 {
		return 0, 0, false
	}
	fromBytes, toBytes := inner[:sep], inner[sep+2:]
	f, err := strconv.ParseInt(string(fromBytes), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	t, err := strconv.ParseInt(string(toBytes), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return f, t, true
}

func parseCollection(inner []byte) ([][]byte, bool) {
	if !bytes.Contains(inner, []byte(",")) {
		return nil, false
	}
	parts := bytes.Split(inner, []byte(","))
	items := make([][]byte, len(parts))
	for i, p := range parts {
		if len(p) == 0 {
			return nil, false
		}
		items[i] = p
	}
	return items, true
}
