// Package value implements the tagged-union runtime value model of
// spec.md §5 "Values": nil, bool, int, float, byte, string, array, dict,
// function (user-defined or native), and error, with a single total
// ordering across every kind so arrays and dicts can sort and compare
// mixed-type contents. Arrays and dicts are reference types sharing one
// underlying store across copies, grounded on the original
// runtime/value/mod.rs Array/Dict (Gc<GcCell<...>>) shape — internal/heap
// plays the role Gc/GcCell play there, backed by Go's own garbage
// collector instead of a bespoke one (see internal/heap's doc comment).
package value

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Kind tags a Value's payload.
type Kind int

const (
	Nil Kind = iota
	Bool
	Int
	Float
	Byte
	String
	Array
	Dict
	Function
	Error
)

func (k Kind) String() string {
	switch k {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Byte:
		return "byte"
	case String:
		return "string"
	case Array:
		return "array"
	case Dict:
		return "dict"
	case Function:
		return "function"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Value is the single runtime value representation the evaluator,
// stdlib, and command subsystem all operate on.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	by    byte
	str   string
	array *ArrayValue
	dict  *DictValue
	fn    *FunctionValue
	err   *ErrorValue
}

func (v Value) Kind() Kind { return v.kind }

func Nil_() Value                 { return Value{kind: Nil} }
func FromBool(b bool) Value       { return Value{kind: Bool, b: b} }
func FromInt(i int64) Value       { return Value{kind: Int, i: i} }
func FromFloat(f float64) Value   { return Value{kind: Float, f: f} }
func FromByte(b byte) Value       { return Value{kind: Byte, by: b} }
func FromString(s string) Value   { return Value{kind: String, str: s} }
func FromBytes(b []byte) Value    { return Value{kind: String, str: string(b)} }
func FromArray(a *ArrayValue) Value {
	return Value{kind: Array, array: a}
}
func FromDict(d *DictValue) Value { return Value{kind: Dict, dict: d} }
func FromFunction(f *FunctionValue) Value {
	return Value{kind: Function, fn: f}
}
func FromError(e *ErrorValue) Value { return Value{kind: Error, err: e} }

func (v Value) Bool() bool             { return v.b }
func (v Value) Int() int64             { return v.i }
func (v Value) Float() float64         { return v.f }
func (v Value) Byte() byte             { return v.by }
func (v Value) Str() string            { return v.str }
func (v Value) ArrayValue() *ArrayValue { return v.array }
func (v Value) DictValue() *DictValue   { return v.dict }
func (v Value) Function() *FunctionValue { return v.fn }
func (v Value) ErrorValue() *ErrorValue { return v.err }

// IsTruthy implements spec.md's truthiness rule: every value is truthy
// except nil and the bool false.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case Nil:
		return false
	case Bool:
		return v.b
	default:
		return true
	}
}

// ArrayValue is a shared, mutable, growable sequence (spec.md §5 "Arrays
// and dicts are reference types"). Mutations through one Value copy are
// visible through every other copy sharing the same ArrayValue pointer.
type ArrayValue struct {
	mu    sync.Mutex
	items []Value
}

func NewArray(items []Value) *ArrayValue {
	return &ArrayValue{items: items}
}

func (a *ArrayValue) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

func (a *ArrayValue) Push(v Value) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = append(a.items, v)
}

func (a *ArrayValue) Get(i int64) (Value, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= int64(len(a.items)) {
		return Value{}, false
	}
	return a.items[i], true
}

func (a *ArrayValue) Set(i int64, v Value) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= int64(len(a.items)) {
		return false
	}
	a.items[i] = v
	return true
}

// Pop removes and returns the last item, reporting false on an empty array.
func (a *ArrayValue) Pop() (Value, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.items)
	if n == 0 {
		return Value{}, false
	}
	v := a.items[n-1]
	a.items = a.items[:n-1]
	return v, true
}

// Snapshot returns a copy of the current items for read-only iteration.
// Copying out (rather than holding the lock across iteration) matches the
// evaluator's single-goroutine-at-a-time access pattern while still being
// safe against concurrent async-block mutation.
func (a *ArrayValue) Snapshot() []Value {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Value, len(a.items))
	copy(out, a.items)
	return out
}

// DictValue is a shared, mutable string-keyed-or-any-keyed map. Go maps
// can't key on a struct containing a mutex, so entries are stored as a
// slice of pairs and looked up by a linear scan comparing keys with Equal
// — acceptable since dict key lookup is not on the
// language's hot path the way array indexing is.
type DictValue struct {
	mu      sync.Mutex
	entries []dictEntry
}

type dictEntry struct {
	key   Value
	value Value
}

func NewDict() *DictValue {
	return &DictValue{}
}

func (d *DictValue) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *DictValue) Get(key Value) (Value, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.entries {
		if Equal(e.key, key) {
			return e.value, true
		}
	}
	return Value{}, false
}

func (d *DictValue) Set(key, val Value) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, e := range d.entries {
		if Equal(e.key, key) {
			d.entries[i].value = val
			return
		}
	}
	d.entries = append(d.entries, dictEntry{key: key, value: val})
}

// Snapshot returns a copy of the entries sorted by key using the language
// total order — the order spec.md's dict comparison and iteration rely on,
// ported from the Rust Dict Ord impl's "collect into a BTreeMap first"
// strategy, and just as explicitly an O(n log n) operation.
func (d *DictValue) Snapshot() []struct {
	Key   Value
	Value Value
} {
	d.mu.Lock()
	entries := make([]dictEntry, len(d.entries))
	copy(entries, d.entries)
	d.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return Compare(entries[i].key, entries[j].key) < 0 })
	out := make([]struct {
		Key   Value
		Value Value
	}, len(entries))
	for i, e := range entries {
		out[i] = struct {
			Key   Value
			Value Value
		}{Key: e.key, Value: e.value}
	}
	return out
}

// FunctionValue is either a user-defined closure (holding its compiled
// body and captured cells) or a native Go function exposed to the
// language as a builtin. SourcePos orders functions for total-ordering
// comparisons (spec.md §5 "functions ordered by source position").
type FunctionValue struct {
	Name      string
	SourceLine, SourceColumn int
	Native    func(args []Value) (Value, error)
	UserThunk any // *eval.Closure; typed any here to avoid an import cycle with internal/eval.
}

// ErrorValue is the payload of an `error`-kind Value (spec.md §5 "error"):
// a human-readable description plus an arbitrary attached context value.
type ErrorValue struct {
	Description string
	Context     Value
}

// kindOrder fixes the cross-kind comparison order spec.md §5 requires for
// a *total* order (every pair of values, even of different kinds, compares
// consistently).
func kindOrder(k Kind) int {
	switch k {
	case Nil:
		return 0
	case Bool:
		return 1
	case Int, Float:
		return 2 // numeric kinds compare by value, not by Int-vs-Float.
	case Byte:
		return 3
	case String:
		return 4
	case Array:
		return 5
	case Dict:
		return 6
	case Function:
		return 7
	case Error:
		return 8
	default:
		return 9
	}
}

// numeric reports whether v is Int or Float and returns it as a float64
// alongside that is-numeric flag, for the numeric comparison fast path.
func numeric(v Value) (f float64, isNum bool) {
	switch v.kind {
	case Int:
		return float64(v.i), true
	case Float:
		return v.f, true
	default:
		return 0, false
	}
}

// Compare implements the total order spec.md §5 describes: numeric kinds
// compare by value (NaN sorts after every other float, consistent with
// itself so sorts terminate); byte, string, array, dict, and function
// compare structurally within their kind; every other cross-kind pair
// compares by kindOrder.
func Compare(a, b Value) int {
	if af, aok := numeric(a); aok {
		if bf, bok := numeric(b); bok {
			return compareFloat(af, bf)
		}
	}
	ka, kb := kindOrder(a.kind), kindOrder(b.kind)
	if ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}
	switch a.kind {
	case Nil:
		return 0
	case Bool:
		return compareBool(a.b, b.b)
	case Byte:
		return compareInt(int64(a.by), int64(b.by))
	case String:
		return compareString(a.str, b.str)
	case Array:
		return compareArray(a.array, b.array)
	case Dict:
		return compareDict(a.dict, b.dict)
	case Function:
		return compareFunction(a.fn, b.fn)
	case Error:
		return compareString(a.err.Description, b.err.Description)
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareFloat puts NaN after every other value including +Inf, and two
// NaNs compare equal to each other so the order stays total (and sorts
// terminate) even though IEEE-754 equality would say otherwise.
func compareFloat(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareArray(a, b *ArrayValue) int {
	as, bs := a.Snapshot(), b.Snapshot()
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return compareInt(int64(len(as)), int64(len(bs)))
}

// compareDict is the expensive O(n log n) comparison spec.md documents:
// both dicts are snapshotted into sorted-by-key order, then compared
// pairwise by key then value.
func compareDict(a, b *DictValue) int {
	as, bs := a.Snapshot(), b.Snapshot()
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := Compare(as[i].Key, bs[i].Key); c != 0 {
			return c
		}
		if c := Compare(as[i].Value, bs[i].Value); c != 0 {
			return c
		}
	}
	return compareInt(int64(len(as)), int64(len(bs)))
}

func compareFunction(a, b *FunctionValue) int {
	if a == b {
		return 0
	}
	if c := compareInt(int64(a.SourceLine), int64(b.SourceLine)); c != 0 {
		return c
	}
	return compareInt(int64(a.SourceColumn), int64(b.SourceColumn))
}

// Equal is Compare(a, b) == 0, except it never treats two distinct NaN
// floats as unequal-to-themselves the way IEEE-754 `==` would — the
// language's `==` is defined in terms of the total order, not IEEE
// equality (spec.md §5 "Equality").
func Equal(a, b Value) bool { return Compare(a, b) == 0 }

// TypeName returns the language-facing type name for a value (used by
// type-check panics and std.type).
func (v Value) TypeName() string { return v.kind.String() }

func (v Value) String() string {
	switch v.kind {
	case Nil:
		return "nil"
	case Bool:
		return fmt.Sprintf("%t", v.b)
	case Int:
		return fmt.Sprintf("%d", v.i)
	case Float:
		return fmt.Sprintf("%g", v.f)
	case Byte:
		return fmt.Sprintf("%#02x", v.by)
	case String:
		return v.str
	case Array:
		return "<array>"
	case Dict:
		return "<dict>"
	case Function:
		return "<function>"
	case Error:
		return "error: " + v.err.Description
	default:
		return "<unknown>"
	}
}
