// Package importlib implements std.import (spec.md §6 "Modules"):
// resolving a path relative to the calling file, canonicalizing it, and
// caching by canonical path so a repeated import of the same file returns
// the first import's result without running the file again (spec.md §6
// "resolves paths relative to the calling file"). The cache is safe for
// concurrent use, but two imports of the same file that both start before
// either has finished each run the file.
package importlib

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/informatter/husk/internal/cursor"
	"github.com/informatter/husk/internal/diag"
	"github.com/informatter/husk/internal/value"
)

// Loader compiles and evaluates a husk source file, returning whatever its
// last top-level expression evaluates to. The CLI wires this to the real
// lex/parse/analyze/eval pipeline; importlib stays decoupled from those
// packages to avoid an import cycle (eval -> stdlib -> eval).
type Loader func(path string) (value.Value, error)

// cache memoizes import results by canonical path. A sync.Map, not a
// mutex-guarded map, because import can be triggered from an async
// command-block worker goroutine concurrently with the main evaluation.
type cache struct {
	results sync.Map // canonical path -> value.Value
}

// New returns std.import bound to callerPath (the file currently being
// evaluated) and load (the CLI's compile+run entry point).
func New(callerPath string, load Loader) map[string]value.Value {
	c := &cache{}
	return map[string]value.Value{
		"import": native("import", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 || args[0].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("import(path) expects a string")
			}
			target := args[0].Str()
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(callerPath), target)
			}
			canonical, err := filepath.Abs(target)
			if err != nil {
				diag.Throw(diag.New(diag.PanicImportFailed, cursor.Position{}, "cannot resolve import path %q: %s", target, err))
			}
			if resolved, err := filepath.EvalSymlinks(canonical); err == nil {
				canonical = resolved
			}

			if v, ok := c.results.Load(canonical); ok {
				return v.(value.Value), nil
			}
			v, err := load(canonical)
			if err != nil {
				diag.Throw(diag.New(diag.PanicImportFailed, cursor.Position{}, "import %q failed: %s", canonical, err))
			}
			c.results.Store(canonical, v)
			return v, nil
		}),
	}
}

func native(name string, fn func([]value.Value) (value.Value, error)) value.Value {
	return value.FromFunction(&value.FunctionValue{Name: name, Native: fn})
}
