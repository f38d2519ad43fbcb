// Package hexlib implements std.hex.encode/decode. No example repo in the
// pack ships an alternative hex codec worth a dependency over
// encoding/hex — see DESIGN.md.
package hexlib

import (
	"encoding/hex"
	"fmt"

	"github.com/informatter/husk/internal/value"
)

func New() map[string]value.Value {
	return map[string]value.Value{
		"encode": native("encode", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 || args[0].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("hex.encode(s) expects a string")
			}
			return value.FromString(hex.EncodeToString([]byte(args[0].Str()))), nil
		}),
		"decode": native("decode", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 || args[0].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("hex.decode(s) expects a string")
			}
			b, err := hex.DecodeString(args[0].Str())
			if err != nil {
				return value.Nil_(), fmt.Errorf("hex.decode: %w", err)
			}
			return value.FromBytes(b), nil
		}),
	}
}

func native(name string, fn func([]value.Value) (value.Value, error)) value.Value {
	return value.FromFunction(&value.FunctionValue{Name: name, Native: fn})
}
