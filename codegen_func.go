package main

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
)

// Codegen declares the function. Declaring an existing function again with
// the same number of parameters yields the existing one.
func (p *Prototype) Codegen(d *Driver) (value.Value, error) {
	fn, err := p.declare(d)
	if err != nil {
		return nil, err
	}
	if p.Emit {
		fmt.Fprintln(d.Out, fn.LLString())
	}
	return fn, nil
}

func (p *Prototype) declare(d *Driver) (*ir.Func, error) {
	if err := p.checkParams(); err != nil {
		return nil, err
	}
	if fn, ok := d.funcs[p.Name]; ok {
		if len(fn.Params) != len(p.Params) {
			return nil, errors.Wrapf(ErrDuplicateDefinition,
				"%q already declared with %d parameter(s)", p.Name, len(fn.Params))
		}
		return fn, nil
	}

	params := make([]*ir.Param, len(p.Params))
	for i, name := range p.Params {
		params[i] = ir.NewParam(name, types.Double)
	}
	fn := d.Module.NewFunc(p.Name, types.Double, params...)
	if p.Internal {
		fn.Linkage = enum.LinkageInternal
	}
	d.funcs[p.Name] = fn
	return fn, nil
}

func (p *Prototype) checkParams() error {
	seen := make(map[string]bool, len(p.Params))
	for _, name := range p.Params {
		if seen[name] {
			return errors.Wrapf(ErrDuplicateDefinition, "parameter %q of %q", name, p.Name)
		}
		seen[name] = true
	}
	return nil
}

// Codegen lowers the function body. On failure the module is left as it was
// before the definition: a new function is removed, a completed declaration
// goes back to being a declaration.
func (f *FunctionDef) Codegen(d *Driver) (value.Value, error) {
	if f.Body == nil {
		return f.Proto.Codegen(d)
	}

	existing, declared := d.funcs[f.Proto.Name]
	if declared && len(existing.Blocks) > 0 {
		return nil, errors.Wrapf(ErrDuplicateDefinition, "function %q", f.Proto.Name)
	}
	fn, err := f.Proto.declare(d)
	if err != nil {
		return nil, err
	}

	// A definition completing an extern uses its own parameter names.
	oldNames := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		oldNames[i] = param.Name()
		param.SetName(f.Proto.Params[i])
	}

	if err := f.lower(d, fn); err != nil {
		if declared {
			fn.Blocks = nil
			for i, param := range fn.Params {
				param.SetName(oldNames[i])
			}
		} else {
			d.removeFunction(fn)
		}
		if f.Proto.Internal {
			return nil, err
		}
		return nil, errors.WithMessagef(err, "in function %q", f.Proto.Name)
	}

	fmt.Fprintln(d.Out, fn.LLString())
	return fn, nil
}

func (f *FunctionDef) lower(d *Driver, fn *ir.Func) error {
	saved := d.beginFunction(fn)
	defer d.endFunction(saved)

	for _, param := range fn.Params {
		slot := d.entryAlloca(types.Double, param.Name())
		d.cur.block.NewStore(param, slot)
		d.cur.scope.Bind(param.Name(), slot)
	}

	ret, err := f.Body.Codegen(d)
	if err != nil {
		return err
	}
	d.cur.block.NewRet(ret)

	return Verify(fn)
}
