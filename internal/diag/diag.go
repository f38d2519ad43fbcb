// Package diag implements the three error tiers of spec.md §7: static
// errors (lexer/parser/analyzer), runtime errors (the `error` value type,
// handled in internal/value), and runtime panics (unwind the evaluator).
//
// The shape is a small struct carrying a source position and a message,
// with an Error() string method, shared by every diagnostic stage.
package diag

import (
	"fmt"

	"github.com/informatter/husk/internal/cursor"
)

// Stage identifies which static-analysis phase produced a StaticError.
type Stage int

const (
	StageLexer Stage = iota
	StageParser
	StageAnalyzer
)

func (s Stage) String() string {
	switch s {
	case StageLexer:
		return "lexer"
	case StageParser:
		return "parser"
	case StageAnalyzer:
		return "semantic"
	default:
		return "unknown"
	}
}

// StaticError is a tier-1 error (spec.md §7): lexer, parser, or semantic
// analyzer diagnostics. A whole program's worth of these are collected and
// reported as a set; the program never runs if any exist.
type StaticError struct {
	Stage   Stage
	Pos     cursor.Position
	Message string
}

func (e *StaticError) Error() string {
	return fmt.Sprintf("%s error at line %d, column %d: %s", e.Stage, e.Pos.Line, e.Pos.Column, e.Message)
}

func NewStaticError(stage Stage, pos cursor.Position, format string, args ...any) *StaticError {
	return &StaticError{Stage: stage, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// PanicKind enumerates every runtime panic kind spec.md §7 lists.
type PanicKind int

const (
	PanicStackOverflow PanicKind = iota
	PanicIntegerOverflow
	PanicDivisionByZero
	PanicIndexOutOfBounds
	PanicEmptyCollection
	PanicInvalidCall
	PanicInvalidArgs
	PanicInvalidCondition
	PanicTypeError
	PanicValueError
	PanicAssignReadonlyField
	PanicInvalidCommandArgs
	PanicIOError
	PanicUnsupportedFD
	PanicInvalidPattern
	PanicAssertionFailed
	PanicImportFailed
	PanicInvalidJoin
)

var panicKindNames = map[PanicKind]string{
	PanicStackOverflow:       "stack overflow",
	PanicIntegerOverflow:     "integer overflow",
	PanicDivisionByZero:      "division by zero",
	PanicIndexOutOfBounds:    "index out of bounds",
	PanicEmptyCollection:     "empty collection",
	PanicInvalidCall:         "invalid call",
	PanicInvalidArgs:         "invalid args",
	PanicInvalidCondition:    "invalid condition",
	PanicTypeError:           "type error",
	PanicValueError:          "value error",
	PanicAssignReadonlyField: "assign to readonly field",
	PanicInvalidCommandArgs:  "invalid command args",
	PanicIOError:             "I/O error",
	PanicUnsupportedFD:       "unsupported file descriptor",
	PanicInvalidPattern:      "invalid pattern",
	PanicAssertionFailed:     "assertion failed",
	PanicImportFailed:        "import failed",
	PanicInvalidJoin:         "invalid join",
}

func (k PanicKind) String() string {
	if s, ok := panicKindNames[k]; ok {
		return s
	}
	return "unknown panic"
}

// Panic is a tier-3 diagnostic (spec.md §7): raised and unwound until
// caught by std.catch or the top level. It is always recovered via Go's
// panic/recover, never constructed and returned as a normal error.
type Panic struct {
	Kind    PanicKind
	Pos     cursor.Position
	Message string
	Cause   error // set for PanicIOError
}

func (p *Panic) Error() string {
	if p.Cause != nil {
		return fmt.Sprintf("%s at line %d, column %d: %s (%s)", p.Kind, p.Pos.Line, p.Pos.Column, p.Message, p.Cause)
	}
	return fmt.Sprintf("%s at line %d, column %d: %s", p.Kind, p.Pos.Line, p.Pos.Column, p.Message)
}

func (p *Panic) Unwrap() error { return p.Cause }

// New constructs a Panic and is the usual argument to Go's panic().
func New(kind PanicKind, pos cursor.Position, format string, args ...any) *Panic {
	return &Panic{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func NewIOError(pos cursor.Position, cause error) *Panic {
	return &Panic{Kind: PanicIOError, Pos: pos, Message: "I/O operation failed", Cause: cause}
}

// Throw panics with a *Panic. Every evaluator/command-runner panic site
// goes through this so recover() sites only ever see *Panic or a Go
// runtime error (which indicates an implementation bug, not a language
// panic).
func Throw(p *Panic) {
	panic(p)
}
