// Package introspectlib implements std.type/typecheck/try_typecheck/
// has_error (spec.md §6 "Introspection").
package introspectlib

import (
	"fmt"

	"github.com/informatter/husk/internal/value"
)

func New() map[string]value.Value {
	return map[string]value.Value{
		"type": native("type", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 {
				return value.Nil_(), fmt.Errorf("type(v) expects exactly one argument")
			}
			return value.FromString(args[0].TypeName()), nil
		}),
		"typecheck": native("typecheck", func(args []value.Value) (value.Value, error) {
			if len(args) != 2 || args[1].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("typecheck(v, name) expects a value and a type name string")
			}
			if args[0].TypeName() != args[1].Str() {
				return value.Nil_(), fmt.Errorf("expected a %s, got a %s", args[1].Str(), args[0].TypeName())
			}
			return args[0], nil
		}),
		"try_typecheck": native("try_typecheck", func(args []value.Value) (value.Value, error) {
			if len(args) != 2 || args[1].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("try_typecheck(v, name) expects a value and a type name string")
			}
			if args[0].TypeName() != args[1].Str() {
				return value.FromError(&value.ErrorValue{
					Description: fmt.Sprintf("expected a %s, got a %s", args[1].Str(), args[0].TypeName()),
					Context:     args[0],
				}), nil
			}
			return args[0], nil
		}),
		"has_error": native("has_error", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 {
				return value.Nil_(), fmt.Errorf("has_error(v) expects exactly one argument")
			}
			return value.FromBool(args[0].Kind() == value.Error), nil
		}),
	}
}

func native(name string, fn func([]value.Value) (value.Value, error)) value.Value {
	return value.FromFunction(&value.FunctionValue{Name: name, Native: fn})
}
