// Package fslib implements std.cwd/cd/env/glob (spec.md §6 "Filesystem").
// `cd` here is the in-expression stdlib form; the command-block `cd`
// builtin in internal/command is a separate entry point sharing the same
// os.Chdir call.
package fslib

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/informatter/husk/internal/value"
)

func New() map[string]value.Value {
	return map[string]value.Value{
		"cwd": native("cwd", func(args []value.Value) (value.Value, error) {
			dir, err := os.Getwd()
			if err != nil {
				return value.Nil_(), err
			}
			return value.FromString(dir), nil
		}),
		"cd": native("cd", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 || args[0].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("cd(path) expects a string")
			}
			return value.Nil_(), os.Chdir(args[0].Str())
		}),
		"env": native("env", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 || args[0].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("env(name) expects a string")
			}
			v, ok := os.LookupEnv(args[0].Str())
			if !ok {
				return value.Nil_(), nil
			}
			return value.FromString(v), nil
		}),
		"glob": native("glob", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 || args[0].Kind() != value.String {
				return value.Nil_(), fmt.Errorf("glob(pattern) expects a string")
			}
			matches, err := filepath.Glob(args[0].Str())
			if err != nil {
				return value.Nil_(), fmt.Errorf("glob: %w", err)
			}
			items := make([]value.Value, len(matches))
			for i, m := range matches {
				items[i] = value.FromString(m)
			}
			return value.FromArray(value.NewArray(items)), nil
		}),
	}
}

func native(name string, fn func([]value.Value) (value.Value, error)) value.Value {
	return value.FromFunction(&value.FunctionValue{Name: name, Native: fn})
}
