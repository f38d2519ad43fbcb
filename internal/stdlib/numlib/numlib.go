// Package numlib implements std.int/float/rand/randint (spec.md §6
// "Numbers"). math/rand/v2 is stdlib; no pack example repo pulls in an
// alternative PRNG (DESIGN.md).
package numlib

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/informatter/husk/internal/value"
)

func New() map[string]value.Value {
	return map[string]value.Value{
		"int": native("int", func(args []value.Value) (value.Value, error) {
			v, err := one(args)
			if err != nil {
				return value.Nil_(), err
			}
			switch v.Kind() {
			case value.Int:
				return v, nil
			case value.Float:
				return value.FromInt(int64(v.Float())), nil
			case value.Byte:
				return value.FromInt(int64(v.Byte())), nil
			case value.String:
				n, err := strconv.ParseInt(v.Str(), 10, 64)
				if err != nil {
					return value.Nil_(), fmt.Errorf("int: cannot parse %q as an integer", v.Str())
				}
				return value.FromInt(n), nil
			default:
				return value.Nil_(), fmt.Errorf("int: cannot convert a %s", v.TypeName())
			}
		}),
		"float": native("float", func(args []value.Value) (value.Value, error) {
			v, err := one(args)
			if err != nil {
				return value.Nil_(), err
			}
			switch v.Kind() {
			case value.Float:
				return v, nil
			case value.Int:
				return value.FromFloat(float64(v.Int())), nil
			case value.String:
				f, err := strconv.ParseFloat(v.Str(), 64)
				if err != nil {
					return value.Nil_(), fmt.Errorf("float: cannot parse %q as a float", v.Str())
				}
				return value.FromFloat(f), nil
			default:
				return value.Nil_(), fmt.Errorf("float: cannot convert a %s", v.TypeName())
			}
		}),
		"rand": native("rand", func(args []value.Value) (value.Value, error) {
			return value.FromFloat(rand.Float64()), nil
		}),
		"randint": native("randint", func(args []value.Value) (value.Value, error) {
			if len(args) != 2 || args[0].Kind() != value.Int || args[1].Kind() != value.Int {
				return value.Nil_(), fmt.Errorf("randint(lo, hi) expects two ints")
			}
			lo, hi := args[0].Int(), args[1].Int()
			if hi <= lo {
				return value.Nil_(), fmt.Errorf("randint: hi must be greater than lo")
			}
			return value.FromInt(lo + rand.Int64N(hi-lo)), nil
		}),
	}
}

func one(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("expected exactly one argument, got %d", len(args))
	}
	return args[0], nil
}

func native(name string, fn func([]value.Value) (value.Value, error)) value.Value {
	return value.FromFunction(&value.FunctionValue{Name: name, Native: fn})
}
