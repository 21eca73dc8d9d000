package main

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
)

// Sequence lowers its first unit, then the rest of the program. A failing
// unit is reported by the driver and does not stop the units after it.
func (s *Sequence) Codegen(d *Driver) (value.Value, error) {
	d.lowerUnit(s.First)
	if s.Continuation == nil {
		return nil, nil
	}
	return s.Continuation.Codegen(d)
}

func (n *NumberLiteral) Codegen(d *Driver) (value.Value, error) {
	if n.TopLevel() {
		return d.lowerTopLevel(n)
	}
	return double(n.Value), nil
}

func (n *VariableRef) Codegen(d *Driver) (value.Value, error) {
	if n.TopLevel() {
		return d.lowerTopLevel(n)
	}
	slot, err := d.lookupScalar(n.Name)
	if err != nil {
		return nil, err
	}
	return named(d, d.cur.block.NewLoad(types.Double, slot), n.Name), nil
}

// CodegenAddress returns the stack slot of the variable.
func (n *VariableRef) CodegenAddress(d *Driver) (value.Value, error) {
	slot, err := d.lookupScalar(n.Name)
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (n *UnaryOp) Codegen(d *Driver) (value.Value, error) {
	if n.TopLevel() {
		return d.lowerTopLevel(n)
	}
	operand, err := n.Operand.Codegen(d)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case OpSub:
		return named(d, d.cur.block.NewFNeg(operand), "negtmp"), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedOperator, "unary %s", n.Op)
}

func (n *BinaryOp) Codegen(d *Driver) (value.Value, error) {
	if n.Op == OpAssign {
		return n.codegenAssign(d)
	}
	if n.TopLevel() {
		return d.lowerTopLevel(n)
	}

	lhs, err := n.LHS.Codegen(d)
	if err != nil {
		return nil, err
	}
	rhs, err := n.RHS.Codegen(d)
	if err != nil {
		return nil, err
	}

	b := d.cur.block
	switch n.Op {
	case OpAdd:
		return named(d, b.NewFAdd(lhs, rhs), "addtmp"), nil
	case OpSub:
		return named(d, b.NewFSub(lhs, rhs), "subtmp"), nil
	case OpMul:
		return named(d, b.NewFMul(lhs, rhs), "multmp"), nil
	case OpDiv:
		return named(d, b.NewFDiv(lhs, rhs), "divtmp"), nil
	case OpCompound:
		return rhs, nil
	}

	if n.Op.isComparison() {
		cmp := named(d, b.NewFCmp(comparePredicates[n.Op], lhs, rhs), "cmptmp")
		return named(d, b.NewUIToFP(cmp, types.Double), "booltmp"), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedOperator, "binary %s", n.Op)
}

// Comparisons are unordered: a NaN operand makes every comparison true.
var comparePredicates = map[Operator]enum.FPred{
	OpLt:       enum.FPredULT,
	OpLe:       enum.FPredULE,
	OpGt:       enum.FPredUGT,
	OpGe:       enum.FPredUGE,
	OpEqual:    enum.FPredUEQ,
	OpNotEqual: enum.FPredUNE,
}

func (n *BinaryOp) codegenAssign(d *Driver) (value.Value, error) {
	if !d.inFunction() {
		return nil, errors.Wrap(ErrInvalidAssignmentTarget, "assignment outside of a function")
	}
	target, ok := n.LHS.(Addressable)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidAssignmentTarget, "cannot assign to %s", ToSExpr(n.LHS))
	}
	val, err := n.RHS.Codegen(d)
	if err != nil {
		return nil, err
	}
	addr, err := target.CodegenAddress(d)
	if err != nil {
		return nil, err
	}
	d.cur.block.NewStore(val, addr)
	return val, nil
}

func (n *Call) Codegen(d *Driver) (value.Value, error) {
	if n.TopLevel() {
		return d.lowerTopLevel(n)
	}
	callee, ok := d.Function(n.Callee)
	if !ok {
		return nil, errors.Wrapf(ErrUndefinedFunction, "%q", n.Callee)
	}
	if len(callee.Params) != len(n.Args) {
		return nil, errors.Wrapf(ErrArityMismatch, "%q takes %d argument(s), called with %d",
			n.Callee, len(callee.Params), len(n.Args))
	}
	args := make([]value.Value, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := a.Codegen(d)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return named(d, d.cur.block.NewCall(callee, args...), "calltmp"), nil
}

// Allocate reserves a zero-filled [Capacity x double] slot and returns it.
func (n *ArrayAlloc) Allocate(d *Driver, name string) (*ir.InstAlloca, error) {
	if n.Capacity < 1 || n.Capacity > MaxArrayCapacity {
		return nil, errors.Errorf("array %q: capacity must be in [1,%d], got %d", name, MaxArrayCapacity, n.Capacity)
	}
	typ := types.NewArray(uint64(n.Capacity), types.Double)
	slot := d.entryAlloca(typ, name)
	d.cur.block.NewStore(constant.NewZeroInitializer(typ), slot)
	return slot, nil
}

func (n *ArrayAlloc) Codegen(d *Driver) (value.Value, error) {
	if !d.inFunction() {
		return nil, errors.Errorf("array %q allocated outside of a function", n.Name)
	}
	slot, err := n.Allocate(d, n.Name)
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (n *ArrayIndex) Codegen(d *Driver) (value.Value, error) {
	if n.TopLevel() {
		return d.lowerTopLevel(n)
	}
	addr, err := n.CodegenAddress(d)
	if err != nil {
		return nil, err
	}
	return named(d, d.cur.block.NewLoad(types.Double, addr), n.Name+"elem"), nil
}

// CodegenAddress computes the address of element Index of the array.
func (n *ArrayIndex) CodegenAddress(d *Driver) (value.Value, error) {
	slot, arr, err := d.lookupArray(n.Name)
	if err != nil {
		return nil, err
	}
	idx, err := n.Index.Codegen(d)
	if err != nil {
		return nil, err
	}
	b := d.cur.block
	i32 := named(d, b.NewFPToUI(idx, types.I32), "idx")
	i64 := named(d, b.NewZExt(i32, types.I64), "idxext")
	gep := b.NewGetElementPtr(arr, slot, constant.NewInt(types.I64, 0), i64)
	gep.InBounds = true
	return named(d, gep, n.Name+"ptr"), nil
}

func (n *ScopedBindings) Codegen(d *Driver) (value.Value, error) {
	if n.TopLevel() {
		return d.lowerTopLevel(n)
	}
	mark := d.cur.scope.Mark()
	defer d.cur.scope.Restore(mark)

	for _, b := range n.Bindings {
		slot, err := d.bindingSlot(b)
		if err != nil {
			return nil, err
		}
		d.cur.scope.Bind(b.Name, slot)
	}
	return n.Body.Codegen(d)
}

// bindingSlot produces the storage for one binding. The initializer is
// lowered before the name is bound, so it sees the outer meaning of the name.
func (d *Driver) bindingSlot(b Binding) (*ir.InstAlloca, error) {
	if alloc, ok := b.Init.(Allocator); ok {
		return alloc.Allocate(d, b.Name)
	}

	var init value.Value = double(0)
	if b.Init != nil {
		v, err := b.Init.Codegen(d)
		if err != nil {
			return nil, err
		}
		init = v
	}
	slot := d.entryAlloca(types.Double, b.Name)
	d.cur.block.NewStore(init, slot)
	return slot, nil
}
