// Package frame implements the evaluator's activation stack (spec.md §5
// "Activation stack"): one Activation per live call, each a fixed-size
// slot array sized by the program.FrameInfo the analyzer computed for that
// function, with slots promoted to heap-boxed cells in place the first
// time a nested closure captures them.
package frame

import (
	"github.com/informatter/husk/internal/cursor"
	"github.com/informatter/husk/internal/diag"
	"github.com/informatter/husk/internal/heap"
	"github.com/informatter/husk/internal/program"
	"github.com/informatter/husk/internal/scope"
	"github.com/informatter/husk/internal/value"
)

// MaxDepth bounds call-stack depth; exceeding it raises PanicStackOverflow
// rather than crashing the host process the way an unbounded Go call stack
// eventually would (spec.md §7 "stack overflow").
const MaxDepth = 4096

// slot is one activation-stack cell: either a plain value, or, once a
// nested closure captures it, a *heap.Cell both the activation and every
// closure sharing it read and write through.
type slot struct {
	cell *heap.Cell // non-nil once boxed.
	val  value.Value
}

// Activation is one function call's slot array.
type Activation struct {
	slots []slot
}

func newActivation(n scope.SlotIx) *Activation {
	return &Activation{slots: make([]slot, n)}
}

// Fetch reads a slot's current value, following the boxed cell if the slot
// has been captured.
func (a *Activation) Fetch(s scope.SlotIx) value.Value {
	sl := &a.slots[s]
	if sl.cell != nil {
		return sl.cell.Get()
	}
	return sl.val
}

// Store writes a slot's value, following the boxed cell if captured.
func (a *Activation) Store(s scope.SlotIx, v value.Value) {
	sl := &a.slots[s]
	if sl.cell != nil {
		sl.cell.Set(v)
		return
	}
	sl.val = v
}

// Capture promotes a slot to a heap cell (if it isn't one already) and
// returns it, so a function-literal evaluation can place it into the
// closure it is creating. Promotion happens at most once per slot: once
// boxed, every future read/write and every future capture of the same
// slot shares the one cell.
func (a *Activation) Capture(s scope.SlotIx) *heap.Cell {
	sl := &a.slots[s]
	if sl.cell == nil {
		sl.cell = heap.NewCell(sl.val)
	}
	return sl.cell
}

// Place installs an already-boxed cell (obtained from the defining
// activation's Capture, or threaded through an intermediate closure's own
// captured-cell list) directly into this activation's slot — the callee
// side of a capture relationship.
func (a *Activation) Place(s scope.SlotIx, cell *heap.Cell) {
	a.slots[s] = slot{cell: cell}
}

// Stack is the evaluator's call stack: a sequence of live Activations plus
// overflow detection.
type Stack struct {
	activations []*Activation
}

func NewStack() *Stack {
	return &Stack{}
}

// Extend pushes a new Activation sized for frameInfo.Slots, returning it.
// Captures named in frameInfo are not placed here — the caller (the
// evaluator's call-expression handling) places each one individually
// after resolving it against the calling activation or the closure's
// stored cells.
func (s *Stack) Extend(pos cursor.Position, info program.FrameInfo) *Activation {
	if len(s.activations) >= MaxDepth {
		diag.Throw(diag.New(diag.PanicStackOverflow, pos, "call stack depth exceeded %d", MaxDepth))
	}
	a := newActivation(info.Slots)
	s.activations = append(s.activations, a)
	return a
}

// Shrink pops the top Activation.
func (s *Stack) Shrink() {
	s.activations = s.activations[:len(s.activations)-1]
}

// Top returns the currently executing Activation.
func (s *Stack) Top() *Activation {
	return s.activations[len(s.activations)-1]
}

// Depth reports the current call-stack depth, for diagnostics.
func (s *Stack) Depth() int { return len(s.activations) }
