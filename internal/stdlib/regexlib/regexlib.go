// Package regexlib implements std.regex(pattern): a dict of match/split/
// replace closures captured over one compiled *regexp.Regexp, per
// SPEC_FULL.md §4. No pack example repo ships an alternative regex engine
// (DESIGN.md), so this is stdlib regexp.
package regexlib

import (
	"fmt"
	"regexp"

	"github.com/informatter/husk/internal/cursor"
	"github.com/informatter/husk/internal/diag"
	"github.com/informatter/husk/internal/value"
)

func New() map[string]value.Value {
	return map[string]value.Value{
		"regex": native("regex", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 || args[0].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("regex(pattern) expects a string")
			}
			re, err := regexp.Compile(args[0].Str())
			if err != nil {
				diag.Throw(diag.New(diag.PanicInvalidPattern, cursor.Position{}, "invalid regular expression: %s", err))
			}
			return value.FromDict(regexHandle(re)), nil
		}),
	}
}

func regexHandle(re *regexp.Regexp) *value.DictValue {
	d := value.NewDict()
	d.Set(value.FromString("match"), native("match", func(args []value.Value) (value.Value, error) {
		s, err := oneString(args, "match")
		if err != nil {
			return value.Nil_(), err
		}
		m := re.FindString(s)
		if m == "" && !re.MatchString(s) {
			return value.Nil_(), nil
		}
		return value.FromString(m), nil
	}))
	d.Set(value.FromString("split"), native("split", func(args []value.Value) (value.Value, error) {
		s, err := oneString(args, "split")
		if err != nil {
			return value.Nil_(), err
		}
		parts := re.Split(s, -1)
		items := make([]value.Value, len(parts))
		for i, p := range parts {
			items[i] = value.FromString(p)
		}
		return value.FromArray(value.NewArray(items)), nil
	}))
	d.Set(value.FromString("replace"), native("replace", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 || args[0].Kind() != value.String || args[1].Kind() != value.String {
			return value.Nil_(), fmt.Errorf("replace(s, repl) expects two strings")
		}
		return value.FromString(re.ReplaceAllString(args[0].Str(), args[1].Str())), nil
	}))
	return d
}

func oneString(args []value.Value, name string) (string, error) {
	if len(args) != 1 || args[0].Kind() != value.String {
		return "", fmt.Errorf("%s(s) expects a string", name)
	}
	return args[0].Str(), nil
}

func native(name string, fn func([]value.Value) (value.Value, error)) value.Value {
	return value.FromFunction(&value.FunctionValue{Name: name, Native: fn})
}
