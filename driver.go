package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
)

// Driver holds the state of one compilation: the IR module being built, the
// insertion point inside the function currently being lowered, and the
// lexical scope of that function.
type Driver struct {
	Module *ir.Module

	// Diag receives one line per failed top-level unit.
	Diag io.Writer
	// Out receives the textual IR of every lowered function and of every
	// extern declaration.
	Out io.Writer
	// Trace, when set, receives the s-expression of each unit before it is
	// lowered.
	Trace io.Writer

	Debug bool // print diagnostics with stack traces
	Color bool // highlight the "error:" prefix

	// OnTopLevel is called with each synthetic wrapper function right after
	// it is lowered, before it is removed from the module.
	OnTopLevel func(fn *ir.Func) error

	// Errors holds every failure reported during Codegen, in order.
	Errors []error

	funcs     map[string]*ir.Func
	anonCount int
	cur       funcState
}

// funcState is the part of the Driver that belongs to the function being
// lowered. It is saved and restored around each definition.
type funcState struct {
	fn        *ir.Func
	entry     *ir.Block
	block     *ir.Block
	allocaEnd int // index in entry.Insts after the last entry alloca
	scope     *Scope
	used      map[string]bool
	next      map[string]int
}

func NewDriver() *Driver {
	return &Driver{
		Module: ir.NewModule(),
		Diag:   io.Discard,
		Out:    io.Discard,
		funcs:  make(map[string]*ir.Func),
		cur:    funcState{scope: NewScope()},
	}
}

// Codegen lowers a whole program. Each top-level unit is lowered on its own:
// a failure is reported and recorded in d.Errors, and lowering continues with
// the next unit. The first failure, if any, is returned.
func (d *Driver) Codegen(root *Sequence) error {
	if root == nil {
		return nil
	}
	if _, err := root.Codegen(d); err != nil {
		return err
	}
	if len(d.Errors) > 0 {
		return d.Errors[0]
	}
	return nil
}

// lowerUnit lowers one top-level unit and reports its failure, if any.
func (d *Driver) lowerUnit(n Node) {
	if n == nil {
		return
	}
	// Expressions at program level are always evaluated through a wrapper.
	if e, ok := n.(Expr); ok && !e.TopLevel() {
		e.SetTopLevel(true)
	}
	if d.Trace != nil {
		fmt.Fprintln(d.Trace, ToSExpr(n))
	}
	if _, err := n.Codegen(d); err != nil {
		d.report(err)
	}
}

func (d *Driver) report(err error) {
	d.Errors = append(d.Errors, err)
	prefix := "error:"
	if d.Color {
		prefix = "\x1b[1;31merror:\x1b[0m"
	}
	if d.Debug {
		fmt.Fprintf(d.Diag, "%s %+v\n", prefix, err)
	} else {
		fmt.Fprintf(d.Diag, "%s %v\n", prefix, err)
	}
}

// Function looks up a declared or defined function by name.
func (d *Driver) Function(name string) (*ir.Func, bool) {
	f, ok := d.funcs[name]
	return f, ok
}

func (d *Driver) removeFunction(fn *ir.Func) {
	delete(d.funcs, fn.Name())
	for i, f := range d.Module.Funcs {
		if f == fn {
			d.Module.Funcs = append(d.Module.Funcs[:i], d.Module.Funcs[i+1:]...)
			return
		}
	}
}

// beginFunction makes fn the current function with a fresh scope and
// returns the state to hand back to endFunction.
func (d *Driver) beginFunction(fn *ir.Func) funcState {
	saved := d.cur
	d.cur = funcState{
		fn:    fn,
		scope: NewScope(),
		used:  make(map[string]bool),
		next:  make(map[string]int),
	}
	for _, p := range fn.Params {
		d.cur.used[p.Name()] = true
	}
	entry := d.newBlock("entry")
	d.appendBlock(entry)
	d.cur.entry = entry
	d.cur.block = entry
	return saved
}

func (d *Driver) endFunction(saved funcState) {
	d.cur = saved
}

// inFunction reports whether there is an insertion point.
func (d *Driver) inFunction() bool {
	return d.cur.block != nil
}

// localName returns base, or base followed by a number if base is already
// taken in the current function.
func (d *Driver) localName(base string) string {
	if !d.cur.used[base] {
		d.cur.used[base] = true
		return base
	}
	for {
		d.cur.next[base]++
		name := base + strconv.Itoa(d.cur.next[base])
		if !d.cur.used[name] {
			d.cur.used[name] = true
			return name
		}
	}
}

// named gives v a function-unique name derived from base.
func named[T interface{ SetName(string) }](d *Driver, v T, base string) T {
	v.SetName(d.localName(base))
	return v
}

// newBlock creates a detached block; appendBlock attaches it to the current
// function. Blocks are appended in the order control reaches them.
func (d *Driver) newBlock(name string) *ir.Block {
	return ir.NewBlock(d.localName(name))
}

func (d *Driver) appendBlock(b *ir.Block) {
	b.Parent = d.cur.fn
	d.cur.fn.Blocks = append(d.cur.fn.Blocks, b)
}

func (d *Driver) setInsertPoint(b *ir.Block) {
	d.cur.block = b
}

// entryAlloca allocates a stack slot at the top of the entry block, so that
// every slot dominates all its uses regardless of where it was requested.
func (d *Driver) entryAlloca(typ types.Type, name string) *ir.InstAlloca {
	inst := named(d, ir.NewAlloca(typ), name)
	entry := d.cur.entry
	entry.Insts = append(entry.Insts, nil)
	copy(entry.Insts[d.cur.allocaEnd+1:], entry.Insts[d.cur.allocaEnd:])
	entry.Insts[d.cur.allocaEnd] = inst
	d.cur.allocaEnd++
	return inst
}

// lookupScalar resolves name to a double slot.
func (d *Driver) lookupScalar(name string) (*ir.InstAlloca, error) {
	slot, ok := d.cur.scope.Lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrUndefinedName, "variable %q", name)
	}
	if _, isArray := slot.ElemType.(*types.ArrayType); isArray {
		return nil, errors.Wrapf(ErrUndefinedName, "%q is an array, not a scalar variable", name)
	}
	return slot, nil
}

// lookupArray resolves name to an array slot.
func (d *Driver) lookupArray(name string) (*ir.InstAlloca, *types.ArrayType, error) {
	slot, ok := d.cur.scope.Lookup(name)
	if !ok {
		return nil, nil, errors.Wrapf(ErrUndefinedName, "array %q", name)
	}
	arr, isArray := slot.ElemType.(*types.ArrayType)
	if !isArray {
		return nil, nil, errors.Wrapf(ErrUndefinedName, "%q is a scalar variable, not an array", name)
	}
	return slot, arr, nil
}

func double(v float64) *constant.Float {
	return constant.NewFloat(types.Double, v)
}

// blockOf returns the block a branch target or phi predecessor refers to.
func blockOf(v value.Value) *ir.Block {
	b, _ := v.(*ir.Block)
	return b
}
