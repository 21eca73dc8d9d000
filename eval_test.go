package main

import (
	"bytes"
	"math"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/nalgeon/be"
	"github.com/pkg/errors"
)

// run evaluates source with in and returns what it printed.
func run(in *Interpreter, source string) (string, error) {
	var out bytes.Buffer
	in.Out = &out
	d := NewDriver()
	EvaluateTopLevel(d, in, &out)
	err := Compile([]byte(source), d)
	return out.String(), err
}

func TestInterpreterValues(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "7\n"},
		{"10 / 4", "2.5\n"},
		{"-(2 - 5)", "3\n"},
		{"1 < 2", "1\n"},
		{"2 <= 1", "0\n"},
		{"(0/0) == (0/0)", "1\n"},
		{"(0/0) < 1", "1\n"},
		{"1 / 0", "+Inf\n"},
		{"def fib(n) if n < 2 then n else fib(n-1) + fib(n-2); fib(15)", "610\n"},
		{"var a[3] in (a[0] = 1 : a[1] = 2 : a[2] = a[0] + a[1] : a[2])", "3\n"},
		{"var s = 0 in (for i = 1, i < 5 in s = s + i) : s", "10\n"},
		{"var n = 3, acc = 1 in (while n > 0 do (acc = acc * n : n = n - 1)) : acc", "6\n"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			out, err := run(NewInterpreter(nil), tt.input)
			be.Err(t, err, nil)
			be.Equal(t, out, tt.expected)
		})
	}
}

func TestBuiltins(t *testing.T) {
	out, err := run(NewInterpreter(nil), "extern printd(x); extern putchard(c); printd(2.5); putchard(65)")
	be.Err(t, err, nil)
	be.Equal(t, out, "2.5\n0\nA0\n")
}

func TestBuiltinArity(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"extern printd(); printd()", `builtin "printd" takes 1 argument(s), declared with 0`},
		{"extern putchard(); putchard()", `builtin "putchard" takes 1 argument(s), declared with 0`},
		{"extern printd(a b); printd(1, 2)", `builtin "printd" takes 1 argument(s), declared with 2`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			out, err := run(NewInterpreter(nil), tt.input)
			be.Err(t, err, ErrRuntime)
			be.Err(t, err, tt.message)
			be.Equal(t, out, "")
		})
	}
}

func TestCustomBuiltin(t *testing.T) {
	in := NewInterpreter(nil)
	in.Builtins["twice"] = func(in *Interpreter, args []float64) (float64, error) {
		return 2 * args[0], nil
	}
	out, err := run(in, "extern twice(x); twice(4) + 1")
	be.Err(t, err, nil)
	be.Equal(t, out, "9\n")
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"unresolved extern", "extern foo(x); foo(1)", `unresolved external function "foo"`},
		{"index past the end", "var a[2] in a[5]", "index 5 out of range [0,2)"},
		{"negative index", "var a[2] in a[-1]", "-1 does not fit an unsigned 32-bit index"},
		{"NaN index", "var a[2] in a[0/0]", "NaN does not fit an unsigned 32-bit index"},
		{"unbounded recursion", "def r(x) r(x); r(1)", "call depth exceeds 1000 in r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(NewInterpreter(nil), tt.input)
			be.Err(t, err, ErrRuntime)
			be.Err(t, err, tt.message)
			be.Equal(t, out, "")
		})
	}
}

func TestStepBudget(t *testing.T) {
	in := NewInterpreter(nil)
	in.MaxSteps = 50
	_, err := run(in, "for i = 0, i < 1000 in 0")
	be.Err(t, err, "step budget of 50 exceeded")

	// The budget applies to each top-level expression separately.
	in = NewInterpreter(nil)
	in.MaxSteps = 50
	out, err := run(in, "1 + 1; 2 + 2; 3 + 3")
	be.Err(t, err, nil)
	be.Equal(t, out, "2\n4\n6\n")
}

func TestMemoryBudget(t *testing.T) {
	in := NewInterpreter(nil)
	in.MaxCells = 4
	_, err := run(in, "var a[8] in 0")
	be.Err(t, err, ErrRuntime)
	be.Err(t, err, "alloca of 8 cells exceeds the memory budget of 4")

	// Cells are released when the frame that allocated them returns.
	in = NewInterpreter(nil)
	in.MaxCells = 4
	out, err := run(in, "def f(x) var a[3] in a[0] = x; f(1) + f(2) + f(3)")
	be.Err(t, err, nil)
	be.Equal(t, out, "6\n")
}

func TestOversizedAlloca(t *testing.T) {
	fn := ir.NewModule().NewFunc("big", types.Double)
	entry := fn.NewBlock("entry")
	entry.NewAlloca(types.NewArray(1<<40, types.NewArray(1<<40, types.Double)))
	entry.NewRet(double(0))

	_, err := NewInterpreter(nil).Call(fn)
	be.Err(t, err, ErrRuntime)
	be.Err(t, err, "exceeds the memory budget")
}

func TestInterpreterCallArguments(t *testing.T) {
	d := NewDriver()
	be.Err(t, Compile([]byte("def add(a b) a + b"), d), nil)
	fn, _ := d.Function("add")

	in := NewInterpreter(nil)
	v, err := in.Call(fn, 1.5, 2.25)
	be.Err(t, err, nil)
	be.Equal(t, v, 3.75)

	_, err = in.Call(fn, 1)
	be.Err(t, err, ErrRuntime)
	be.Err(t, err, "add expects 2 argument(s), got 1")
}

func TestInterpreterDepthLimit(t *testing.T) {
	d := NewDriver()
	be.Err(t, Compile([]byte("def down(n) if n < 1 then 0 else down(n - 1)"), d), nil)
	fn, _ := d.Function("down")

	in := NewInterpreter(nil)
	in.MaxDepth = 10
	v, err := in.Call(fn, 9)
	be.Err(t, err, nil)
	be.Equal(t, v, 0.0)

	_, err = in.Call(fn, 10)
	be.True(t, errors.Is(err, ErrRuntime))
}

func TestFcmp(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		pred     enum.FPred
		a, b     float64
		expected bool
	}{
		{enum.FPredULT, nan, 1, true},
		{enum.FPredUEQ, nan, nan, true},
		{enum.FPredOLT, nan, 1, false},
		{enum.FPredOEQ, nan, nan, false},
		{enum.FPredONE, 1, 2, true},
		{enum.FPredONE, 1, nan, false},
		{enum.FPredUGE, 2, 2, true},
		{enum.FPredUNE, 2, 2, false},
		{enum.FPredORD, 1, 2, true},
		{enum.FPredUNO, 1, nan, true},
	}

	for _, tt := range tests {
		got, err := fcmp(tt.pred, tt.a, tt.b)
		be.Err(t, err, nil)
		be.Equal(t, got, tt.expected)
	}
}
