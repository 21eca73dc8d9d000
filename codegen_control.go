package main

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// truth converts a double to an i1 that is true when v != 0.0.
func (d *Driver) truth(v value.Value, name string) value.Value {
	return named(d, d.cur.block.NewFCmp(enum.FPredONE, v, double(0)), name)
}

func (n *Conditional) Codegen(d *Driver) (value.Value, error) {
	if n.TopLevel() {
		return d.lowerTopLevel(n)
	}
	condV, err := n.Cond.Codegen(d)
	if err != nil {
		return nil, err
	}
	cond := d.truth(condV, "ifcond")
	condEnd := d.cur.block

	thenBB := d.newBlock("then")
	var elseBB *ir.Block
	var mergeBB *ir.Block
	if n.Else != nil {
		elseBB = d.newBlock("else")
		mergeBB = d.newBlock("ifcont")
		condEnd.NewCondBr(cond, thenBB, elseBB)
	} else {
		mergeBB = d.newBlock("afterthen")
		condEnd.NewCondBr(cond, thenBB, mergeBB)
	}

	d.appendBlock(thenBB)
	d.setInsertPoint(thenBB)
	thenV, err := n.Then.Codegen(d)
	if err != nil {
		return nil, err
	}
	// Lowering the arm may have moved the insertion point.
	thenEnd := d.cur.block
	thenEnd.NewBr(mergeBB)

	incs := []*ir.Incoming{ir.NewIncoming(thenV, thenEnd)}
	if elseBB != nil {
		d.appendBlock(elseBB)
		d.setInsertPoint(elseBB)
		elseV, err := n.Else.Codegen(d)
		if err != nil {
			return nil, err
		}
		elseEnd := d.cur.block
		elseEnd.NewBr(mergeBB)
		incs = append(incs, ir.NewIncoming(elseV, elseEnd))
	} else {
		// Only the untaken edge from the condition block reaches here with
		// 0.0; it keeps the phi defined on every incoming edge.
		incs = append(incs, ir.NewIncoming(double(0), condEnd))
	}

	d.appendBlock(mergeBB)
	d.setInsertPoint(mergeBB)
	return named(d, mergeBB.NewPhi(incs...), "iftmp"), nil
}

func (n *CountedLoop) Codegen(d *Driver) (value.Value, error) {
	if n.TopLevel() {
		return d.lowerTopLevel(n)
	}
	// The start value is computed before the variable is in scope.
	start, err := n.Start.Codegen(d)
	if err != nil {
		return nil, err
	}
	slot := d.entryAlloca(types.Double, n.Var)
	d.cur.block.NewStore(start, slot)

	loopBB := d.newBlock("loop")
	d.cur.block.NewBr(loopBB)
	d.appendBlock(loopBB)
	d.setInsertPoint(loopBB)

	mark := d.cur.scope.Mark()
	defer d.cur.scope.Restore(mark)
	d.cur.scope.Bind(n.Var, slot)

	if _, err := n.Body.Codegen(d); err != nil {
		return nil, err
	}

	var step value.Value = double(1)
	if n.Step != nil {
		if step, err = n.Step.Codegen(d); err != nil {
			return nil, err
		}
	}

	b := d.cur.block
	cur := named(d, b.NewLoad(types.Double, slot), n.Var)
	next := named(d, b.NewFAdd(cur, step), "nextvar")
	b.NewStore(next, slot)

	// The end condition sees the incremented variable.
	end, err := n.End.Codegen(d)
	if err != nil {
		return nil, err
	}
	cond := d.truth(end, "loopcond")

	afterBB := d.newBlock("afterloop")
	d.cur.block.NewCondBr(cond, loopBB, afterBB)
	d.appendBlock(afterBB)
	d.setInsertPoint(afterBB)
	return double(0), nil
}

func (n *ConditionalLoop) Codegen(d *Driver) (value.Value, error) {
	if n.TopLevel() {
		return d.lowerTopLevel(n)
	}
	loopBB := d.newBlock("whileloop")
	d.cur.block.NewBr(loopBB)
	d.appendBlock(loopBB)
	d.setInsertPoint(loopBB)

	if _, err := n.Body.Codegen(d); err != nil {
		return nil, err
	}
	condV, err := n.Cond.Codegen(d)
	if err != nil {
		return nil, err
	}
	cond := d.truth(condV, "whilecond")

	afterBB := d.newBlock("afterwhileloop")
	d.cur.block.NewCondBr(cond, loopBB, afterBB)
	d.appendBlock(afterBB)
	d.setInsertPoint(afterBB)
	return double(0), nil
}
