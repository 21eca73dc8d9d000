package main

import (
	"fmt"
	"io"

	"github.com/llir/llvm/ir"
)

// Compile parses source and lowers it with d. Syntax errors abort before any
// code is generated; lowering errors are reported per unit by d.
func Compile(source []byte, d *Driver) error {
	root, err := Parse(source)
	if err != nil {
		return err
	}
	return d.Codegen(root)
}

// EvaluateTopLevel makes d run every top-level expression through in as
// soon as it is lowered, printing its value to w.
func EvaluateTopLevel(d *Driver, in *Interpreter, w io.Writer) {
	d.OnTopLevel = func(fn *ir.Func) error {
		v, err := in.Call(fn)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%g\n", v)
		return nil
	}
}
