// Package stringlib implements std.substr/split/replace/trim/to_string/
// bytes (spec.md §6 "Strings").
package stringlib

import (
	"fmt"
	"strings"

	"github.com/informatter/husk/internal/value"
)

func New() map[string]value.Value {
	return map[string]value.Value{
		"substr": native("substr", func(args []value.Value) (value.Value, error) {
			if len(args) != 3 || args[0].Kind() != value.String || args[1].Kind() != value.Int || args[2].Kind() != value.Int {
				return value.Nil_(), fmt.Errorf("substr(s, start, end) expects a string and two ints")
			}
			s := args[0].Str()
			start, end := args[1].Int(), args[2].Int()
			if start < 0 || end > int64(len(s)) || start > end {
				return value.Nil_(), fmt.Errorf("substr: range [%d:%d] out of bounds for a string of length %d", start, end, len(s))
			}
			return value.FromString(s[start:end]), nil
		}),
		"split": native("split", func(args []value.Value) (value.Value, error) {
			if len(args) != 2 || args[0].Kind() != value.String || args[1].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("split(s, sep) expects two strings")
			}
			parts := strings.Split(args[0].Str(), args[1].Str())
			items := make([]value.Value, len(parts))
			for i, p := range parts {
				items[i] = value.FromString(p)
			}
			return value.FromArray(value.NewArray(items)), nil
		}),
		"replace": native("replace", func(args []value.Value) (value.Value, error) {
			if len(args) != 3 || args[0].Kind() != value.String || args[1].Kind() != value.String || args[2].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("replace(s, old, new) expects three strings")
			}
			return value.FromString(strings.ReplaceAll(args[0].Str(), args[1].Str(), args[2].Str())), nil
		}),
		"trim": native("trim", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 || args[0].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("trim(s) expects a string")
			}
			return value.FromString(strings.TrimSpace(args[0].Str())), nil
		}),
		"to_string": native("to_string", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 {
				return value.Nil_(), fmt.Errorf("to_string(v) expects exactly one argument")
			}
			return value.FromString(args[0].String()), nil
		}),
		"bytes": native("bytes", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 || args[0].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("bytes(s) expects a string")
			}
			s := args[0].Str()
			items := make([]value.Value, len(s))
			for i := 0; i < len(s); i++ {
				items[i] = value.FromByte(s[i])
			}
			return value.FromArray(value.NewArray(items)), nil
		}),
	}
}

func native(name string, fn func([]value.Value) (value.Value, error)) value.Value {
	return value.FromFunction(&value.FunctionValue{Name: name, Native: fn})
}
