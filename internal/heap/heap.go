// Package heap satisfies the garbage-collection contract the original
// implementation's runtime needed an explicit Gc<T>/GcCell<T> wrapper for
// (original_source's runtime/value/mod.rs wraps every shared, mutable
// value in Gc<GcCell<...>>). Go's own garbage collector already reclaims
// cyclic structures (closures capturing cells that capture closures
// included), so Cell here is a bare boxed value with no custom collector:
// this is the resolution to spec.md's open question on memory management,
// recorded in DESIGN.md rather than left for a later "prescribe a
// bytecode/VM" pass spec.md's Non-goals explicitly rule out anyway.
package heap

import "github.com/informatter/husk/internal/value"

// Cell is a boxed, shared value slot: the activation-stack representation
// of a variable that has been captured by at least one closure (spec.md
// §4.4 "Captures", §5 "promoted in place on first capture"). Every Capture
// relationship in program.FrameInfo ultimately reads and writes through a
// Cell rather than a raw stack slot.
type Cell struct {
	Value value.Value
}

func NewCell(v value.Value) *Cell { return &Cell{Value: v} }

func (c *Cell) Get() value.Value { return c.Value }
func (c *Cell) Set(v value.Value) { c.Value = v }
