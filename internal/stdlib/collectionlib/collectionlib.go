// Package collectionlib implements the std.length/iter/push/pop/sort/
// contains/is_empty group over arrays (spec.md §6 "Collections"). `sort`
// calls back into a user-supplied comparator via eval.Evaluator.Call, the
// same entry point ctrllib's catch and bind use. `iter`
// returns a closure implementing spec.md §4.6's iterator protocol: called
// with no arguments, it produces a {value, finished} dict per step, which
// internal/eval's for-in loop drives directly.
package collectionlib

import (
	"fmt"
	"sort"

	"github.com/informatter/husk/internal/cursor"
	"github.com/informatter/husk/internal/eval"
	"github.com/informatter/husk/internal/value"
)

func New(e *eval.Evaluator) map[string]value.Value {
	return map[string]value.Value{
		"length": native("length", func(args []value.Value) (value.Value, error) {
			v, err := one(args)
			if err != nil {
				return value.Nil_(), err
			}
			switch v.Kind() {
			case value.Array:
				return value.FromInt(int64(v.ArrayValue().Len())), nil
			case value.Dict:
				return value.FromInt(int64(v.DictValue().Len())), nil
			case value.String:
				return value.FromInt(int64(len(v.Str()))), nil
			default:
				return value.Nil_(), fmt.Errorf("length expects an array, dict, or string, got %s", v.TypeName())
			}
		}),
		"is_empty": native("is_empty", func(args []value.Value) (value.Value, error) {
			v, err := one(args)
			if err != nil {
				return value.Nil_(), err
			}
			switch v.Kind() {
			case value.Array:
				return value.FromBool(v.ArrayValue().Len() == 0), nil
			case value.Dict:
				return value.FromBool(v.DictValue().Len() == 0), nil
			case value.String:
				return value.FromBool(len(v.Str()) == 0), nil
			default:
				return value.Nil_(), fmt.Errorf("is_empty expects an array, dict, or string, got %s", v.TypeName())
			}
		}),
		"push": native("push", func(args []value.Value) (value.Value, error) {
			if len(args) != 2 || args[0].Kind() != value.Array {
				return value.Nil_(), fmt.Errorf("push(array, value) expects an array and a value")
			}
			args[0].ArrayValue().Push(args[1])
			return args[0], nil
		}),
		"pop": native("pop", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 || args[0].Kind() != value.Array {
				return value.Nil_(), fmt.Errorf("pop(array) expects an array")
			}
			last, ok := args[0].ArrayValue().Pop()
			if !ok {
				return value.Nil_(), fmt.Errorf("pop: empty array")
			}
			return last, nil
		}),
		"contains": native("contains", func(args []value.Value) (value.Value, error) {
			if len(args) != 2 || args[0].Kind() != value.Array {
				return value.Nil_(), fmt.Errorf("contains(array, value) expects an array and a value")
			}
			for _, item := range args[0].ArrayValue().Snapshot() {
				if value.Equal(item, args[1]) {
					return value.FromBool(true), nil
				}
			}
			return value.FromBool(false), nil
		}),
		"sort": native("sort", func(args []value.Value) (value.Value, error) {
			if len(args) < 1 || args[0].Kind() != value.Array {
				return value.Nil_(), fmt.Errorf("sort(array[, less]) expects an array")
			}
			items := args[0].ArrayValue().Snapshot()
			if len(args) >= 2 && args[1].Kind() == value.Function {
				less := args[1]
				sort.SliceStable(items, func(i, j int) bool {
					r := e.Call(cursor.Position{}, less, []value.Value{items[i], items[j]})
					return r.IsTruthy()
				})
			} else {
				sort.SliceStable(items, func(i, j int) bool { return value.Compare(items[i], items[j]) < 0 })
			}
			return value.FromArray(value.NewArray(items)), nil
		}),
		"iter": native("iter", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 {
				return value.Nil_(), fmt.Errorf("iter(collection) expects exactly one argument")
			}
			switch args[0].Kind() {
			case value.Array:
				items := args[0].ArrayValue().Snapshot()
				i := 0
				return iterator(func() (value.Value, bool) {
					if i >= len(items) {
						return value.Nil_(), false
					}
					v := items[i]
					i++
					return v, true
				}), nil
			case value.Dict:
				entries := args[0].DictValue().Snapshot()
				i := 0
				return iterator(func() (value.Value, bool) {
					if i >= len(entries) {
						return value.Nil_(), false
					}
					entry := entries[i]
					i++
					return value.FromArray(value.NewArray([]value.Value{entry.Key, entry.Value})), true
				}), nil
			default:
				return value.Nil_(), fmt.Errorf("iter expects an array or dict, got %s", args[0].TypeName())
			}
		}),
	}
}

// iterator wraps a Go stepping function into the iterator protocol
// spec.md §4.6 describes: a zero-argument function returning a dict with
// `value` and `finished` fields, finished becoming true once next reports
// it has nothing left.
func iterator(next func() (value.Value, bool)) value.Value {
	return value.FromFunction(&value.FunctionValue{
		Name: "iterator",
		Native: func([]value.Value) (value.Value, error) {
			v, ok := next()
			d := value.NewDict()
			d.Set(value.FromString("value"), v)
			d.Set(value.FromString("finished"), value.FromBool(!ok))
			return value.FromDict(d), nil
		},
	})
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
