// Package ctrllib implements std.assert/catch/bind/exit/panic/sleep
// (spec.md §6 "Control"). `catch` is the only place inside the language
// runtime that recovers a *diag.Panic (the CLI's top-level handler in
// cmd/husk is the other one; internal/eval.Call recovers only the internal
// `?` unwinding signal) — it is the language's
// sole panic-to-value boundary, turning an uncaught runtime panic into an
// ordinary `error` value instead of letting it reach the CLI. `bind` is
// std.bind's partial-application semantics, ported from original_source's
// runtime/lib/bind.rs (SPEC_FULL.md §5.3).
package ctrllib

import (
	"fmt"
	"os"
	"time"

	"github.com/informatter/husk/internal/cursor"
	"github.com/informatter/husk/internal/diag"
	"github.com/informatter/husk/internal/eval"
	"github.com/informatter/husk/internal/value"
)

func New(e *eval.Evaluator) map[string]value.Value {
	return map[string]value.Value{
		"assert": native("assert", func(args []value.Value) (value.Value, error) {
			if len(args) < 1 {
				return value.Nil_(), fmt.Errorf("assert(cond[, message]) expects at least one argument")
			}
			if args[0].IsTruthy() {
				return value.Nil_(), nil
			}
			msg := "assertion failed"
			if len(args) >= 2 {
				msg = args[1].String()
			}
			diag.Throw(diag.New(diag.PanicAssertionFailed, cursor.Position{}, "%s", msg))
			return value.Nil_(), nil
		}),
		"catch": native("catch", func(args []value.Value) (result value.Value, err error) {
			if len(args) < 1 || args[0].Kind() != value.Function {
				return value.Nil_(), fmt.Errorf("catch(fn, ...args) expects a function")
			}
			defer func() {
				if r := recover(); r != nil {
					p, ok := r.(*diag.Panic)
					if !ok {
						panic(r)
					}
					result = value.FromError(&value.ErrorValue{Description: p.Error()})
					err = nil
				}
			}()
			return e.Call(cursor.Position{}, args[0], args[1:]), nil
		}),
		"bind": native("bind", func(args []value.Value) (value.Value, error) {
			if len(args) < 1 || args[0].Kind() != value.Function {
				return value.Nil_(), fmt.Errorf("bind(fn, ...args) expects a function")
			}
			fn := args[0]
			bound := append([]value.Value{}, args[1:]...)
			return value.FromFunction(&value.FunctionValue{
				Name: "bound",
				Native: func(rest []value.Value) (value.Value, error) {
					return e.Call(cursor.Position{}, fn, append(append([]value.Value{}, bound...), rest...)), nil
				},
			}), nil
		}),
		"exit": native("exit", func(args []value.Value) (value.Value, error) {
			code := 0
			if len(args) >= 1 && args[0].Kind() == value.Int {
				code = int(args[0].Int())
			}
			os.Exit(code)
			return value.Nil_(), nil
		}),
		"panic": native("panic", func(args []value.Value) (value.Value, error) {
			msg := "panic"
			if len(args) >= 1 {
				msg = args[0].String()
			}
			diag.Throw(diag.New(diag.PanicValueError, cursor.Position{}, "%s", msg))
			return value.Nil_(), nil
		}),
		"sleep": native("sleep", func(args []value.Value) (value.Value, error) {
			if len(args) != 1 || !isNumeric(args[0]) {
				return value.Nil_(), fmt.Errorf("sleep(seconds) expects a number")
			}
			var secs float64
			if args[0].Kind() == value.Int {
				secs = float64(args[0].Int())
			} else {
				secs = args[0].Float()
			}
			time.Sleep(time.Duration(secs * float64(time.Second)))
			return value.Nil_(), nil
		}),
	}
}

func isNumeric(v value.Value) bool {
	return v.Kind() == value.Int || v.Kind() == value.Float
}

func native(name string, fn func([]value.Value) (value.Value, error)) value.Value {
	return value.FromFunction(&value.FunctionValue{Name: name, Native: fn})
}
