// Package stdlib assembles the `std` value injected into the root frame
// (spec.md §6), merging one map[string]value.Value per group from its
// subpackages. Groups that need to call back into user code (collections'
// sort, control's catch/bind) close over the *eval.Evaluator that
// created them; groups that are pure functions of their arguments
// (strings, hex, json, regex, numbers) don't.
package stdlib

import (
	"github.com/informatter/husk/internal/eval"
	"github.com/informatter/husk/internal/stdlib/collectionlib"
	"github.com/informatter/husk/internal/stdlib/ctrllib"
	"github.com/informatter/husk/internal/stdlib/fslib"
	"github.com/informatter/husk/internal/stdlib/hexlib"
	"github.com/informatter/husk/internal/stdlib/importlib"
	"github.com/informatter/husk/internal/stdlib/introspectlib"
	"github.com/informatter/husk/internal/stdlib/iolib"
	"github.com/informatter/husk/internal/stdlib/jsonlib"
	"github.com/informatter/husk/internal/stdlib/numlib"
	"github.com/informatter/husk/internal/stdlib/regexlib"
	"github.com/informatter/husk/internal/stdlib/stringlib"
	"github.com/informatter/husk/internal/value"
)

// New builds the root `std` dict. callerPath and load wire std.import;
// load is nil-able for contexts (like a REPL line) that never import.
func New(e *eval.Evaluator, callerPath string, load importlib.Loader) *value.DictValue {
	d := value.NewDict()
	groups := []map[string]value.Value{
		{"io": nestedDict(iolib.New(e))},
		{"introspect": nestedDict(introspectlib.New())},
		{"collection": nestedDict(collectionlib.New(e))},
		{"string": nestedDict(stringlib.New())},
		{"hex": nestedDict(hexlib.New())},
		{"json": nestedDict(jsonlib.New())},
		{"regex": nestedDict(regexlib.New())},
		{"fs": nestedDict(fslib.New())},
		{"num": nestedDict(numlib.New())},
		{"ctrl": nestedDict(ctrllib.New(e))},
	}
	if load != nil {
		groups = append(groups, map[string]value.Value{"module": nestedDict(importlib.New(callerPath, load))})
	}
	for _, g := range groups {
		for k, v := range g {
			d.Set(value.FromString(k), v)
		}
	}
	// Flatten every group's functions at the top level too (spec.md §6
	// names them bare: std.print, std.sort, std.regex, ...).
	for _, g := range groups {
		for _, nested := range g {
			if nested.Kind() == value.Dict {
				for _, entry := range nested.DictValue().Snapshot() {
					d.Set(entry.Key, entry.Value)
				}
			}
		}
	}
	return d
}

func nestedDict(fns map[string]value.Value) value.Value {
	d := value.NewDict()
	for k, v := range fns {
		d.Set(value.FromString(k), v)
	}
	return value.FromDict(d)
}
