package main

import (
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

const anonPrefix = "__anon_expr"

// lowerTopLevel wraps a program-level expression into a parameterless
// function, lowers it, hands it to OnTopLevel and drops it from the module.
// The expression's own value is not returned to the caller.
func (d *Driver) lowerTopLevel(e Expr) (value.Value, error) {
	e.SetTopLevel(false)

	// Skip numbers whose name the program has taken for its own function.
	var name string
	for {
		d.anonCount++
		name = anonPrefix + strconv.Itoa(d.anonCount)
		if _, taken := d.funcs[name]; !taken {
			break
		}
	}
	def := &FunctionDef{
		Proto: &Prototype{Name: name, Internal: true},
		Body:  e,
	}
	v, err := def.Codegen(d)
	if err != nil {
		return nil, err
	}
	fn := v.(*ir.Func)
	defer d.removeFunction(fn)

	if d.OnTopLevel != nil {
		if err := d.OnTopLevel(fn); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
