package main

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/pkg/errors"
)

// Verify checks the structural consistency of a function definition:
// every block ends in a terminator, branches stay inside the function,
// returns carry a double and each phi has one incoming value per
// predecessor block.
func Verify(fn *ir.Func) error {
	if len(fn.Blocks) == 0 {
		return errors.Wrapf(ErrMalformedIR, "%s: no basic blocks", fn.Name())
	}

	inFunc := make(map[*ir.Block]bool, len(fn.Blocks))
	names := make(map[string]bool, len(fn.Blocks))
	for _, b := range fn.Blocks {
		if names[b.Name()] {
			return errors.Wrapf(ErrMalformedIR, "%s: duplicate block name %q", fn.Name(), b.Name())
		}
		names[b.Name()] = true
		inFunc[b] = true
	}

	preds := make(map[*ir.Block][]*ir.Block)
	for _, b := range fn.Blocks {
		if b.Term == nil {
			return errors.Wrapf(ErrMalformedIR, "%s: block %q has no terminator", fn.Name(), b.Name())
		}
		targets, err := successors(b)
		if err != nil {
			return errors.Wrapf(err, "%s", fn.Name())
		}
		for _, t := range targets {
			if t == nil || !inFunc[t] {
				return errors.Wrapf(ErrMalformedIR, "%s: block %q branches outside the function", fn.Name(), b.Name())
			}
			preds[t] = append(preds[t], b)
		}
	}

	for _, b := range fn.Blocks {
		for _, inst := range b.Insts {
			phi, ok := inst.(*ir.InstPhi)
			if !ok {
				continue
			}
			if err := checkPhi(b, phi, preds[b]); err != nil {
				return errors.Wrapf(err, "%s", fn.Name())
			}
		}
	}
	return nil
}

func successors(b *ir.Block) ([]*ir.Block, error) {
	switch t := b.Term.(type) {
	case *ir.TermRet:
		if t.X == nil || !types.Equal(t.X.Type(), types.Double) {
			return nil, errors.Wrapf(ErrMalformedIR, "block %q: return value is not a double", b.Name())
		}
		return nil, nil
	case *ir.TermBr:
		return []*ir.Block{blockOf(t.Target)}, nil
	case *ir.TermCondBr:
		return []*ir.Block{blockOf(t.TargetTrue), blockOf(t.TargetFalse)}, nil
	default:
		return nil, errors.Wrapf(ErrMalformedIR, "block %q: unexpected terminator %T", b.Name(), t)
	}
}

func checkPhi(b *ir.Block, phi *ir.InstPhi, preds []*ir.Block) error {
	want := make(map[*ir.Block]int, len(preds))
	for _, p := range preds {
		want[p]++
	}
	for _, inc := range phi.Incs {
		p := blockOf(inc.Pred)
		if want[p] == 0 {
			return errors.Wrapf(ErrMalformedIR, "block %q: phi %s has an incoming value from a non-predecessor", b.Name(), phi.Ident())
		}
		want[p]--
	}
	for p, n := range want {
		if n > 0 {
			return errors.Wrapf(ErrMalformedIR, "block %q: phi %s lacks a value from %q", b.Name(), phi.Ident(), p.Name())
		}
	}
	return nil
}
