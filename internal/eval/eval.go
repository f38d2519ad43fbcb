// Package eval implements the tree-walking evaluator of spec.md §5: it
// walks internal/program's slot-indexed IR directly (no bytecode
// compilation step — an explicit Non-goal), threading a three-way
// Disposition (Regular/Return/Break) through every statement and block
// instead of using Go panics/exceptions for control flow, the same way
// the original runtime/mod.rs's Flow enum drives its own tree-walking
// evaluator.
//
// The per-node-kind method shape is a conventional tree-walking
// interpreter: one Visit-style method per AST node, a panic/recover
// boundary at the top level, and descriptively named helper predicates
// (isNumeric, and so on).
package eval

import (
	"math"

	"github.com/informatter/husk/internal/cursor"
	"github.com/informatter/husk/internal/diag"
	"github.com/informatter/husk/internal/frame"
	"github.com/informatter/husk/internal/heap"
	"github.com/informatter/husk/internal/intern"
	"github.com/informatter/husk/internal/program"
	"github.com/informatter/husk/internal/scope"
	"github.com/informatter/husk/internal/value"
)

// Disposition tags how a statement or block finished: falling through
// normally, returning a value out of the enclosing function, or breaking
// out of the enclosing loop.
type Disposition int

const (
	Regular Disposition = iota
	Return
	Break
)

// Outcome is the explicit control-flow signal threaded through every
// composite statement/expression evaluation, replacing the host
// exceptions a naive port from an exception-using language would reach
// for (spec.md §5 "Control flow").
type Outcome struct {
	Disposition Disposition
	Value       value.Value
}

func regular(v value.Value) Outcome { return Outcome{Disposition: Regular, Value: v} }

// Closure is a user-defined function's runtime representation: its
// compiled body, frame layout, and the boxed cells it captured at the
// point it was created (spec.md §5 "Closures").
type Closure struct {
	Info  program.FrameInfo
	Body  *program.Block
	Arity int
	Cells []*heap.Cell
	Self  value.Value // the function's own Value, bound into SelfSlot at call time.
}

// Evaluator walks a Program, maintaining the activation stack and the
// command-execution collaborator. Runner is resolved lazily via a small
// interface rather than importing internal/command directly, since the
// command subsystem itself needs to call back into expression evaluation
// for `${...}` capture blocks used inside ordinary expressions.
type Evaluator struct {
	Stack    *frame.Stack
	Interner *intern.Interner
	Runner   CommandRunner
	Stdout   Writer
	Stderr   Writer
}

// Writer is the minimal sink the evaluator needs for std.print output and
// command-block standard streams, satisfied by os.Stdout/os.Stderr or any
// io.Writer the embedding CLI wires in.
type Writer interface {
	Write(p []byte) (int, error)
}

// CommandRunner executes a command-block expression. internal/command
// implements this; it is expressed as an interface here purely to keep
// internal/eval and internal/command's import directions simple (command
// needs to call back into expression evaluation for argument expansion of
// `$(...)`-like nested references already resolved to slots, and for
// capture-block results feeding back into expressions).
type CommandRunner interface {
	Run(e *Evaluator, blk *program.CommandBlockExpr) (value.Value, error)
}

func New(interner *intern.Interner, runner CommandRunner, stdout, stderr Writer) *Evaluator {
	return &Evaluator{
		Stack:    frame.NewStack(),
		Interner: interner,
		Runner:   runner,
		Stdout:   stdout,
		Stderr:   stderr,
	}
}

// Run evaluates an entire program's top-level frame, returning the final
// expression-statement's value if the script ends with one (REPL
// convenience) or Nil otherwise. std is installed into prog.StdSlot before
// any statement runs, so the file's own top-level code already sees it as
// an ordinary (if implicitly declared) variable.
func (e *Evaluator) Run(prog *program.Program, std value.Value) (result value.Value) {
	act := e.Stack.Extend(cursor.Position{}, prog.Frame)
	defer e.Stack.Shrink()
	defer func() {
		if r := recover(); r != nil {
			if ta, ok := r.(tryAbort); ok {
				result = ta.value
				return
			}
			panic(r)
		}
	}()
	act.Store(prog.StdSlot, std)
	out := e.execBlock(prog.Body)
	return out.Value
}

func (e *Evaluator) execBlock(b *program.Block) Outcome {
	var last value.Value
	for _, s := range b.Statements {
		out := e.execStmt(s)
		if out.Disposition != Regular {
			return out
		}
		last = out.Value
	}
	return regular(last)
}

func (e *Evaluator) execStmt(s program.Stmt) Outcome {
	switch n := s.(type) {
	case *program.LetStmt:
		v := e.eval(n.Init)
		e.Stack.Top().Store(n.Slot, v)
		return regular(value.Nil_())
	case *program.AssignStmt:
		v := e.eval(n.Value)
		e.assign(n.Target, v)
		return regular(value.Nil_())
	case *program.ReturnStmt:
		var v value.Value
		if n.Value != nil {
			v = e.eval(n.Value)
		}
		return Outcome{Disposition: Return, Value: v}
	case *program.BreakStmt:
		return Outcome{Disposition: Break}
	case *program.WhileStmt:
		return e.execWhile(n)
	case *program.ForInStmt:
		return e.execForIn(n)
	case *program.ExprStmt:
		return regular(e.eval(n.Expr))
	default:
		return regular(value.Nil_())
	}
}

func (e *Evaluator) assign(target program.Expr, v value.Value) {
	switch t := target.(type) {
	case *program.SlotExpr:
		e.Stack.Top().Store(t.Slot, v)
	case *program.AccessExpr:
		obj := e.eval(t.Object)
		field := e.eval(t.Field)
		e.setIndexed(t.Pos, obj, field, v)
	}
}

func (e *Evaluator) execWhile(n *program.WhileStmt) Outcome {
	for e.eval(n.Condition).IsTruthy() {
		out := e.execBlock(n.Body)
		switch out.Disposition {
		case Break:
			return regular(value.Nil_())
		case Return:
			return out
		}
	}
	return regular(value.Nil_())
}

// execForIn implements spec.md §4.6's iterator protocol: the iterable
// expression is evaluated once to a function value, then that function is
// invoked with no arguments on each iteration, producing a dict with
// `value` and `finished` fields.
func (e *Evaluator) execForIn(n *program.ForInStmt) Outcome {
	iter := e.eval(n.Iter)
	if iter.Kind() != value.Function {
		diag.Throw(diag.New(diag.PanicTypeError, n.Pos, "for-in requires an iterator function, got %s", iter.TypeName()))
	}
	for {
		step := e.Call(n.Pos, iter, nil)
		if step.Kind() != value.Dict {
			diag.Throw(diag.New(diag.PanicTypeError, n.Pos, "iterator must return a dict with value/finished fields, got %s", step.TypeName()))
		}
		finished, _ := step.DictValue().Get(value.FromString("finished"))
		if finished.IsTruthy() {
			return regular(value.Nil_())
		}
		item, _ := step.DictValue().Get(value.FromString("value"))
		e.Stack.Top().Store(n.Slot, item)
		out := e.execBlock(n.Body)
		switch out.Disposition {
		case Break:
			return regular(value.Nil_())
		case Return:
			return out
		}
	}
}

func (e *Evaluator) eval(expr program.Expr) value.Value {
	switch n := expr.(type) {
	case *program.SelfExpr:
		return e.Stack.Top().Fetch(n.Slot)
	case *program.SlotExpr:
		return e.Stack.Top().Fetch(n.Slot)
	case *program.Literal:
		return e.evalLiteral(n)
	case *program.UnaryExpr:
		return e.evalUnary(n)
	case *program.BinaryExpr:
		return e.evalBinary(n)
	case *program.PostfixTryExpr:
		return e.evalTry(n)
	case *program.IfExpr:
		return e.evalIf(n)
	case *program.AccessExpr:
		return e.evalAccess(n)
	case *program.CallExpr:
		return e.evalCall(n)
	case *program.CommandBlockExpr:
		v, err := e.Runner.Run(e, n)
		if err != nil {
			diag.Throw(diag.New(diag.PanicIOError, n.Pos, "%s", err))
		}
		return v
	default:
		return value.Nil_()
	}
}

func (e *Evaluator) evalLiteral(n *program.Literal) value.Value {
	switch n.Kind {
	case program.LitNil:
		return value.Nil_()
	case program.LitBool:
		return value.FromBool(n.Bool)
	case program.LitInt:
		return value.FromInt(n.Int)
	case program.LitFloat:
		return value.FromFloat(n.Float)
	case program.LitByte:
		return value.FromByte(n.Byte)
	case program.LitString:
		return value.FromBytes(n.Str)
	case program.LitArray:
		items := make([]value.Value, len(n.Array))
		for i, item := range n.Array {
			items[i] = e.eval(item)
		}
		return value.FromArray(value.NewArray(items))
	case program.LitDict:
		d := value.NewDict()
		for _, entry := range n.Dict {
			d.Set(e.eval(entry.Key), e.eval(entry.Value))
		}
		return value.FromDict(d)
	case program.LitFunction:
		return e.evalFunctionLiteral(n)
	default:
		return value.Nil_()
	}
}

func (e *Evaluator) evalFunctionLiteral(n *program.Literal) value.Value {
	top := e.Stack.Top()
	cells := make([]*heap.Cell, len(n.Frame.Captures))
	for i, cap := range n.Frame.Captures {
		cells[i] = top.Capture(cap.From)
	}
	closure := &Closure{Info: n.Frame, Body: n.Body, Arity: n.Arity, Cells: cells}
	fn := &value.FunctionValue{
		SourceLine: n.Pos.Line, SourceColumn: n.Pos.Column,
		UserThunk: closure,
	}
	fv := value.FromFunction(fn)
	closure.Self = fv
	return fv
}

func (e *Evaluator) evalUnary(n *program.UnaryExpr) value.Value {
	v := e.eval(n.Operand)
	switch n.Op {
	case program.OpNot:
		return value.FromBool(!v.IsTruthy())
	case program.OpNeg:
		switch v.Kind() {
		case value.Int:
			return value.FromInt(-v.Int())
		case value.Float:
			return value.FromFloat(-v.Float())
		default:
			diag.Throw(diag.New(diag.PanicTypeError, n.Pos, "unary '-' requires a number, got %s", v.TypeName()))
		}
	}
	return value.Nil_()
}

func isNumeric(v value.Value) bool {
	return v.Kind() == value.Int || v.Kind() == value.Float
}

func asFloat(v value.Value) float64 {
	if v.Kind() == value.Int {
		return float64(v.Int())
	}
	return v.Float()
}

func (e *Evaluator) evalBinary(n *program.BinaryExpr) value.Value {
	if n.Op == program.OpAnd {
		l := e.eval(n.Left)
		if !l.IsTruthy() {
			return l
		}
		return e.eval(n.Right)
	}
	if n.Op == program.OpOr {
		l := e.eval(n.Left)
		if l.IsTruthy() {
			return l
		}
		return e.eval(n.Right)
	}

	l := e.eval(n.Left)
	r := e.eval(n.Right)

	switch n.Op {
	case program.OpEq:
		return value.FromBool(value.Equal(l, r))
	case program.OpNotEq:
		return value.FromBool(!value.Equal(l, r))
	case program.OpLt:
		return value.FromBool(value.Compare(l, r) < 0)
	case program.OpLtEq:
		return value.FromBool(value.Compare(l, r) <= 0)
	case program.OpGt:
		return value.FromBool(value.Compare(l, r) > 0)
	case program.OpGtEq:
		return value.FromBool(value.Compare(l, r) >= 0)
	case program.OpConcat:
		return e.evalConcat(n.Pos, l, r)
	}

	if l.Kind() == value.String && r.Kind() == value.String && n.Op == program.OpAdd {
		return value.FromString(l.Str() + r.Str())
	}

	if !isNumeric(l) || !isNumeric(r) {
		diag.Throw(diag.New(diag.PanicTypeError, n.Pos, "arithmetic requires numbers, got %s and %s", l.TypeName(), r.TypeName()))
	}
	if l.Kind() == value.Int && r.Kind() == value.Int {
		return e.evalIntArith(n, l.Int(), r.Int())
	}
	return e.evalFloatArith(n, asFloat(l), asFloat(r))
}

func (e *Evaluator) evalIntArith(n *program.BinaryExpr, l, r int64) value.Value {
	switch n.Op {
	case program.OpAdd:
		return value.FromInt(l + r)
	case program.OpSub:
		return value.FromInt(l - r)
	case program.OpMul:
		return value.FromInt(l * r)
	case program.OpDiv:
		if r == 0 {
			diag.Throw(diag.New(diag.PanicDivisionByZero, n.Pos, "division by zero"))
		}
		return value.FromInt(l / r)
	case program.OpMod:
		if r == 0 {
			diag.Throw(diag.New(diag.PanicDivisionByZero, n.Pos, "modulo by zero"))
		}
		return value.FromInt(l % r)
	default:
		return value.Nil_()
	}
}

func (e *Evaluator) evalFloatArith(n *program.BinaryExpr, l, r float64) value.Value {
	switch n.Op {
	case program.OpAdd:
		return value.FromFloat(l + r)
	case program.OpSub:
		return value.FromFloat(l - r)
	case program.OpMul:
		return value.FromFloat(l * r)
	case program.OpDiv:
		return value.FromFloat(l / r)
	case program.OpMod:
		return value.FromFloat(math.Mod(l, r))
	default:
		return value.Nil_()
	}
}

// evalConcat implements the `++` operator: string concatenation, or array
// concatenation producing a fresh array (spec.md §5 "++ is not +": + never
// mixes strings/arrays, ++ never does arithmetic).
func (e *Evaluator) evalConcat(pos cursor.Position, l, r value.Value) value.Value {
	if l.Kind() == value.String && r.Kind() == value.String {
		return value.FromString(l.Str() + r.Str())
	}
	if l.Kind() == value.Array && r.Kind() == value.Array {
		items := append(append([]value.Value{}, l.ArrayValue().Snapshot()...), r.ArrayValue().Snapshot()...)
		return value.FromArray(value.NewArray(items))
	}
	diag.Throw(diag.New(diag.PanicTypeError, pos, "'++' requires two strings or two arrays, got %s and %s", l.TypeName(), r.TypeName()))
	return value.Nil_()
}

// evalTry implements the postfix `?` operator (spec.md §5 "try"): if the
// operand evaluates to an error value, abort the enclosing function with
// that error as its return value; otherwise pass the value through.
func (e *Evaluator) evalTry(n *program.PostfixTryExpr) value.Value {
	v := e.eval(n.Operand)
	if v.Kind() == value.Error {
		panic(tryAbort{value: v})
	}
	return v
}

// tryAbort unwinds exactly one enclosing function call when postfix `?`
// sees an error value; Call recovers it and returns the error as the call's
// result (Run does the same for a `?` at the top level of the script),
// never letting it escape as an uncaught panic.
type tryAbort struct {
	value value.Value
}

func (e *Evaluator) evalIf(n *program.IfExpr) value.Value {
	if e.eval(n.Condition).IsTruthy() {
		return e.execBlock(n.Then).Value
	}
	if n.Else != nil {
		return e.execBlock(n.Else).Value
	}
	return value.Nil_()
}

func (e *Evaluator) evalAccess(n *program.AccessExpr) value.Value {
	obj := e.eval(n.Object)
	field := e.eval(n.Field)
	return e.getIndexed(n.Pos, obj, field)
}

func (e *Evaluator) getIndexed(pos cursor.Position, obj, field value.Value) value.Value {
	switch obj.Kind() {
	case value.Array:
		if field.Kind() != value.Int {
			diag.Throw(diag.New(diag.PanicTypeError, pos, "array index must be an int, got %s", field.TypeName()))
		}
		v, ok := obj.ArrayValue().Get(field.Int())
		if !ok {
			diag.Throw(diag.New(diag.PanicIndexOutOfBounds, pos, "array index %d out of bounds", field.Int()))
		}
		return v
	case value.Dict:
		v, ok := obj.DictValue().Get(field)
		if !ok {
			return value.Nil_()
		}
		return v
	default:
		diag.Throw(diag.New(diag.PanicTypeError, pos, "cannot index into a %s", obj.TypeName()))
		return value.Nil_()
	}
}

func (e *Evaluator) setIndexed(pos cursor.Position, obj, field, v value.Value) {
	switch obj.Kind() {
	case value.Array:
		if field.Kind() != value.Int {
			diag.Throw(diag.New(diag.PanicTypeError, pos, "array index must be an int, got %s", field.TypeName()))
		}
		if !obj.ArrayValue().Set(field.Int(), v) {
			diag.Throw(diag.New(diag.PanicIndexOutOfBounds, pos, "array index %d out of bounds", field.Int()))
		}
	case value.Dict:
		obj.DictValue().Set(field, v)
	default:
		diag.Throw(diag.New(diag.PanicTypeError, pos, "cannot assign into a %s", obj.TypeName()))
	}
}

func (e *Evaluator) evalCall(n *program.CallExpr) value.Value {
	fnVal := e.eval(n.Function)
	if fnVal.Kind() != value.Function {
		diag.Throw(diag.New(diag.PanicInvalidCall, n.Pos, "cannot call a %s", fnVal.TypeName()))
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.eval(a)
	}
	return e.Call(n.Pos, fnVal, args)
}

// Call invokes a function Value with already-evaluated args, shared by
// evalCall and by native stdlib functions that need to call back into
// user code (e.g. std.sort's comparator, std.catch, std.bind).
func (e *Evaluator) Call(pos cursor.Position, fnVal value.Value, args []value.Value) (result value.Value) {
	fn := fnVal.Function()
	if fn.Native != nil {
		v, err := fn.Native(args)
		if err != nil {
			diag.Throw(diag.New(diag.PanicInvalidArgs, pos, "%s", err))
		}
		return v
	}
	closure := fn.UserThunk.(*Closure)
	act := e.Stack.Extend(pos, closure.Info)
	defer e.Stack.Shrink()

	for i, cell := range closure.Cells {
		act.Place(closure.Info.Captures[i].To, cell)
	}
	if len(args) != closure.Arity {
		diag.Throw(diag.New(diag.PanicInvalidArgs, pos, "expected %d argument(s), got %d", closure.Arity, len(args)))
	}
	for i := 0; i < closure.Arity; i++ {
		act.Store(scope.SlotIx(i), args[i])
	}
	if closure.Info.SelfSlot != nil {
		act.Store(*closure.Info.SelfSlot, closure.Self)
	}

	defer func() {
		if r := recover(); r != nil {
			if ta, ok := r.(tryAbort); ok {
				result = ta.value
				return
			}
			panic(r)
		}
	}()

	out := e.execBlock(closure.Body)
	if out.Disposition == Return {
		return out.Value
	}
	return out.Value
}
