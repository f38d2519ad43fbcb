// Package intern implements the symbol interner that spec.md names as an
// injected, out-of-scope collaborator: a byte-string <-> compact-identifier
// mapping used by the lexer (to tag identifier tokens) and the analyzer (to
// mangle closed-over variable names, see internal/scope).
package intern

import "sync"

// Symbol is a compact handle into an Interner. The zero Symbol is never
// produced by Intern, so it is safe to use as a "no symbol" sentinel.
type Symbol uint32

// Interner maps identifier strings to Symbols and back. It is safe for
// concurrent use: the async command-block worker (spec.md §5) may resolve
// symbols for diagnostics while the main task keeps lexing/analyzing.
type Interner struct {
	mu      sync.RWMutex
	strings []string
	ids     map[string]Symbol
}

// New creates an empty Interner.
func New() *Interner {
	return &Interner{
		ids: make(map[string]Symbol),
		// index 0 is reserved so the zero Symbol stays invalid.
		strings: []string{""},
	}
}

// Intern returns the Symbol for s, allocating a new one if s was never seen.
func (in *Interner) Intern(s string) Symbol {
	in.mu.RLock()
	if id, ok := in.ids[s]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.ids[s]; ok {
		return id
	}
	id := Symbol(len(in.strings))
	in.strings = append(in.strings, s)
	in.ids[s] = id
	return id
}

// Resolve returns the string a Symbol was interned from.
func (in *Interner) Resolve(sym Symbol) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(sym) <= 0 || int(sym) >= len(in.strings) {
		return "", false
	}
	return in.strings[sym], true
}

// MustResolve panics if sym was never interned by this Interner. Used at
// points where the caller already guarantees sym originated here (e.g. the
// scope resolver mangling a name it just resolved).
func (in *Interner) MustResolve(sym Symbol) string {
	s, ok := in.Resolve(sym)
	if !ok {
		panic("intern: symbol not registered with this interner")
	}
	return s
}
