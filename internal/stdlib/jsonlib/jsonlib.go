// Package jsonlib implements std.json.decode/encode. decode walks a
// gjson.Result tree directly into value.Value without an intermediate
// map[string]any hop (grounded on cwbudde/go-dws's gjson dependency,
// SPEC_FULL.md §3); encode has no gjson counterpart (gjson is read-only),
// so it uses encoding/json — justified in DESIGN.md.
package jsonlib

import (
	"encoding/json"
	"fmt"

	"github.com/informatter/husk/internal/value"
	"github.com/tidwall/gjson"
)

func New() map[string]value.Value {
	return map[string]value.Value{
		"decode": native("decode", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 || args[0].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("json.decode(s) expects a string")
			}
			if !gjson.Valid(args[0].Str()) {
				return value.Nil_(), fmt.Errorf("json.decode: invalid JSON")
			}
			return fromGJSON(gjson.Parse(args[0].Str())), nil
		}),
		"encode": native("encode", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 {
				return value.Nil_(), fmt.Errorf("json.encode(v) expects exactly one argument")
			}
			b, err := json.Marshal(toAny(args[0]))
			if err != nil {
				return value.Nil_(), fmt.Errorf("json.encode: %w", err)
			}
			return value.FromBytes(b), nil
		}),
	}
}

func fromGJSON(r gjson.Result) value.Value {
	switch r.Type {
	case gjson.Null:
		return value.Nil_()
	case gjson.False:
		return value.FromBool(false)
	case gjson.True:
		return value.FromBool(true)
	case gjson.Number:
		if r.Num == float64(int64(r.Num)) {
			return value.FromInt(int64(r.Num))
		}
		return value.FromFloat(r.Num)
	case gjson.String:
		return value.FromString(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			var items []value.Value
			r.ForEach(func(_, v gjson.Result) bool {
				items = append(items, fromGJSON(v))
				return true
			})
			return value.FromArray(value.NewArray(items))
		}
		d := value.NewDict()
		r.ForEach(func(k, v gjson.Result) bool {
			d.Set(value.FromString(k.String()), fromGJSON(v))
			return true
		})
		return value.FromDict(d)
	default:
		return value.Nil_()
	}
}

// toAny converts a value.Value into plain Go data encoding/json can
// marshal, since json.encode has no gjson counterpart to delegate to.
func toAny(v value.Value) any {
	switch v.Kind() {
	case value.Nil:
		return nil
	case value.Bool:
		return v.Bool()
	case value.Int:
		return v.Int()
	case value.Float:
		return v.Float()
	case value.Byte:
		return v.Byte()
	case value.String:
		return v.Str()
	case value.Array:
		items := v.ArrayValue().Snapshot()
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = toAny(it)
		}
		return out
	case value.Dict:
		out := make(map[string]any)
		for _, e := range v.DictValue().Snapshot() {
			out[e.Key.String()] = toAny(e.Value)
		}
		return out
	case value.Function:
		return "<function>"
	case value.Error:
		return v.ErrorValue().Description
	default:
		return nil
	}
}

func native(name string, fn func([]value.Value) (value.Value, error)) value.Value {
	return value.FromFunction(&value.FunctionValue{Name: name, Native: fn})
}
