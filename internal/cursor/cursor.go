// Package cursor implements the byte-level source cursor described in
// spec.md §4.1: a position tracker over raw source bytes with line/column
// bookkeeping and checkpoint/rollback support for the lexer's speculative
// expansion parsing (spec.md §9, "Speculative expansion parsing").
package cursor

// Position is the (line, column) pair carried on every token, error, AST
// node and runtime panic for diagnostics (spec.md §3). Lines are 1-origin;
// columns are 0-origin and reset to 0 immediately after a newline.
type Position struct {
	Line   int
	Column int
}

// Cursor walks a byte slice one byte at a time, tracking line/column.
type Cursor struct {
	src    []byte
	offset int
	line   int
	column int
}

// New creates a Cursor positioned at the start of src.
func New(src []byte) *Cursor {
	return &Cursor{src: src, line: 1, column: 0}
}

// Peek returns the byte at the current offset without consuming it, or -1
// at end of input.
func (c *Cursor) Peek() int {
	if c.offset >= len(c.src) {
		return -1
	}
	return int(c.src[c.offset])
}

// PeekAt returns the byte `ahead` bytes past the current offset (0 meaning
// Peek()), or -1 past the end of input.
func (c *Cursor) PeekAt(ahead int) int {
	i := c.offset + ahead
	if i < 0 || i >= len(c.src) {
		return -1
	}
	return int(c.src[i])
}

// Step consumes and returns the current byte, advancing line/column
// bookkeeping. Returns -1 (and does nothing) at end of input.
func (c *Cursor) Step() int {
	b := c.Peek()
	if b < 0 {
		return -1
	}
	c.offset++
	if b == '\n' {
		c.line++
		c.column = 0
	} else {
		c.column++
	}
	return b
}

// AtEnd reports whether the cursor has consumed the entire input.
func (c *Cursor) AtEnd() bool {
	return c.offset >= len(c.src)
}

// Offset returns the absolute byte offset of the cursor.
func (c *Cursor) Offset() int {
	return c.offset
}

// Position returns the current (line, column) pair.
func (c *Cursor) Position() Position {
	return Position{Line: c.line, Column: c.column}
}

// Slice returns the entire input, for error-message context extraction.
func (c *Cursor) Slice() []byte {
	return c.src
}

// ByteSlice returns src[from:c.offset], the bytes consumed since `from`.
func (c *Cursor) ByteSlice(from int) []byte {
	return c.src[from:c.offset]
}

// Checkpoint is an opaque, restorable cursor position. Required by
// expansion parsing, which is speculative: the lexer tries to match an
// expansion marker and rolls back to plain word scanning on failure
// (spec.md §9).
type Checkpoint struct {
	offset int
	line   int
	column int
}

// Checkpoint saves the cursor's current position.
func (c *Cursor) Checkpoint() Checkpoint {
	return Checkpoint{offset: c.offset, line: c.line, column: c.column}
}

// Rollback restores the cursor to a previously saved Checkpoint.
func (c *Cursor) Rollback(cp Checkpoint) {
	c.offset = cp.offset
	c.line = cp.line
	c.column = cp.column
}
