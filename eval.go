package main

import (
	"fmt"
	"io"
	"math"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
)

const (
	DefaultMaxSteps = 10_000_000
	DefaultMaxDepth = 1_000
	DefaultMaxCells = 1 << 24
)

// Builtin implements a function that is declared but has no body.
type Builtin func(in *Interpreter, args []float64) (float64, error)

// Interpreter executes lowered functions directly on their IR, so that
// top-level expressions can be evaluated as soon as they are compiled.
type Interpreter struct {
	Out      io.Writer
	Builtins map[string]Builtin
	MaxSteps int
	MaxDepth int
	// MaxCells bounds the doubles held by live allocas across the call tree.
	MaxCells int

	steps int
	depth int
	cells int
}

func NewInterpreter(out io.Writer) *Interpreter {
	return &Interpreter{
		Out: out,
		Builtins: map[string]Builtin{
			"printd":   builtinPrintd,
			"putchard": builtinPutchard,
		},
		MaxSteps: DefaultMaxSteps,
		MaxDepth: DefaultMaxDepth,
		MaxCells: DefaultMaxCells,
	}
}

func builtinPrintd(in *Interpreter, args []float64) (float64, error) {
	if err := builtinArity("printd", args, 1); err != nil {
		return 0, err
	}
	fmt.Fprintf(in.Out, "%g\n", args[0])
	return 0, nil
}

func builtinPutchard(in *Interpreter, args []float64) (float64, error) {
	if err := builtinArity("putchard", args, 1); err != nil {
		return 0, err
	}
	in.Out.Write([]byte{byte(args[0])})
	return 0, nil
}

// builtinArity guards builtins against externs declared with the wrong
// number of parameters.
func builtinArity(name string, args []float64, n int) error {
	if len(args) != n {
		return errors.Wrapf(ErrRuntime, "builtin %q takes %d argument(s), declared with %d", name, n, len(args))
	}
	return nil
}

// pointer addresses one double cell of an alloca.
type pointer struct {
	cells []float64
	off   int
}

// Call runs fn with the given arguments and returns its result. The step
// and memory budgets are shared by the whole call tree.
func (in *Interpreter) Call(fn *ir.Func, args ...float64) (float64, error) {
	if in.depth == 0 {
		in.steps = 0
		in.cells = 0
	}
	if len(args) != len(fn.Params) {
		return 0, errors.Wrapf(ErrRuntime, "%s expects %d argument(s), got %d", fn.Name(), len(fn.Params), len(args))
	}
	if len(fn.Blocks) == 0 {
		b, ok := in.Builtins[fn.Name()]
		if !ok {
			return 0, errors.Wrapf(ErrRuntime, "unresolved external function %q", fn.Name())
		}
		return b(in, args)
	}
	if in.depth >= in.MaxDepth {
		return 0, errors.Wrapf(ErrRuntime, "call depth exceeds %d in %s", in.MaxDepth, fn.Name())
	}
	in.depth++
	defer func() { in.depth-- }()

	fr := &frame{in: in, vals: make(map[value.Value]any)}
	defer func() { in.cells -= fr.cells }()
	for i, p := range fn.Params {
		fr.vals[p] = args[i]
	}
	res, err := fr.run(fn)
	if err != nil {
		return 0, errors.WithMessagef(err, "in %s", fn.Name())
	}
	return res, nil
}

type frame struct {
	in    *Interpreter
	vals  map[value.Value]any
	cells int // allocated by this frame
}

func (fr *frame) run(fn *ir.Func) (float64, error) {
	block := fn.Blocks[0]
	var prev *ir.Block
	for {
		if err := fr.enter(block, prev); err != nil {
			return 0, err
		}
		for _, inst := range block.Insts {
			fr.in.steps++
			if fr.in.steps > fr.in.MaxSteps {
				return 0, errors.Wrapf(ErrRuntime, "step budget of %d exceeded", fr.in.MaxSteps)
			}
			if _, isPhi := inst.(*ir.InstPhi); isPhi {
				continue
			}
			if err := fr.exec(inst); err != nil {
				return 0, err
			}
		}

		switch t := block.Term.(type) {
		case *ir.TermRet:
			return fr.float(t.X)
		case *ir.TermBr:
			prev, block = block, blockOf(t.Target)
		case *ir.TermCondBr:
			c, err := fr.get(t.Cond)
			if err != nil {
				return 0, err
			}
			prev = block
			if c.(bool) {
				block = blockOf(t.TargetTrue)
			} else {
				block = blockOf(t.TargetFalse)
			}
		default:
			return 0, errors.Wrapf(ErrRuntime, "unsupported terminator %T", t)
		}
		if block == nil {
			return 0, errors.Wrap(ErrRuntime, "branch to a non-block value")
		}
	}
}

// enter resolves the phis of block for an edge coming from prev. All phis
// read their operands before any of them is written.
func (fr *frame) enter(block, prev *ir.Block) error {
	type pending struct {
		phi *ir.InstPhi
		v   any
	}
	var ps []pending
	for _, inst := range block.Insts {
		phi, ok := inst.(*ir.InstPhi)
		if !ok {
			continue
		}
		found := false
		for _, inc := range phi.Incs {
			if blockOf(inc.Pred) != prev {
				continue
			}
			v, err := fr.get(inc.X)
			if err != nil {
				return err
			}
			ps = append(ps, pending{phi, v})
			found = true
			break
		}
		if !found {
			return errors.Wrapf(ErrRuntime, "phi %s has no value for the incoming edge", phi.Ident())
		}
	}
	for _, p := range ps {
		fr.vals[p.phi] = p.v
	}
	return nil
}

func (fr *frame) get(v value.Value) (any, error) {
	switch c := v.(type) {
	case *constant.Float:
		if c.NaN {
			return math.NaN(), nil
		}
		f, _ := c.X.Float64()
		return f, nil
	case *constant.Int:
		return c.X.Int64(), nil
	}
	x, ok := fr.vals[v]
	if !ok {
		return nil, errors.Wrapf(ErrRuntime, "use of %s before definition", v.Ident())
	}
	return x, nil
}

func (fr *frame) float(v value.Value) (float64, error) {
	x, err := fr.get(v)
	if err != nil {
		return 0, err
	}
	f, ok := x.(float64)
	if !ok {
		return 0, errors.Wrapf(ErrRuntime, "%s is not a double", v.Ident())
	}
	return f, nil
}

func (fr *frame) floats(x, y value.Value) (float64, float64, error) {
	a, err := fr.float(x)
	if err != nil {
		return 0, 0, err
	}
	b, err := fr.float(y)
	return a, b, err
}

func (fr *frame) ptr(v value.Value) (pointer, error) {
	x, err := fr.get(v)
	if err != nil {
		return pointer{}, err
	}
	p, ok := x.(pointer)
	if !ok {
		return pointer{}, errors.Wrapf(ErrRuntime, "%s is not a pointer", v.Ident())
	}
	return p, nil
}

func (p pointer) check(n int) error {
	if p.off < 0 || p.off+n > len(p.cells) {
		return errors.Wrapf(ErrRuntime, "memory access at offset %d out of range [0,%d)", p.off, len(p.cells))
	}
	return nil
}

// cellCount returns the number of doubles a value of type t occupies,
// saturating at math.MaxInt32 so oversized arrays cannot overflow.
func cellCount(t types.Type) int {
	arr, ok := t.(*types.ArrayType)
	if !ok {
		return 1
	}
	elem := uint64(cellCount(arr.ElemType))
	if arr.Len > math.MaxInt32/elem {
		return math.MaxInt32
	}
	return int(arr.Len * elem)
}

func (fr *frame) exec(inst ir.Instruction) error {
	var (
		res any
		err error
	)
	switch inst := inst.(type) {
	case *ir.InstAlloca:
		n := cellCount(inst.ElemType)
		if fr.in.cells+n > fr.in.MaxCells {
			return errors.Wrapf(ErrRuntime, "alloca of %d cells exceeds the memory budget of %d", n, fr.in.MaxCells)
		}
		fr.in.cells += n
		fr.cells += n
		res = pointer{cells: make([]float64, n)}

	case *ir.InstStore:
		dst, err := fr.ptr(inst.Dst)
		if err != nil {
			return err
		}
		if z, ok := inst.Src.(*constant.ZeroInitializer); ok {
			n := cellCount(z.Type())
			if err := dst.check(n); err != nil {
				return err
			}
			clear(dst.cells[dst.off : dst.off+n])
			return nil
		}
		v, err := fr.float(inst.Src)
		if err != nil {
			return err
		}
		if err := dst.check(1); err != nil {
			return err
		}
		dst.cells[dst.off] = v
		return nil

	case *ir.InstLoad:
		var src pointer
		if src, err = fr.ptr(inst.Src); err != nil {
			return err
		}
		if err = src.check(1); err != nil {
			return err
		}
		res = src.cells[src.off]

	case *ir.InstFAdd:
		res, err = fr.arith(inst.X, inst.Y, func(a, b float64) float64 { return a + b })
	case *ir.InstFSub:
		res, err = fr.arith(inst.X, inst.Y, func(a, b float64) float64 { return a - b })
	case *ir.InstFMul:
		res, err = fr.arith(inst.X, inst.Y, func(a, b float64) float64 { return a * b })
	case *ir.InstFDiv:
		res, err = fr.arith(inst.X, inst.Y, func(a, b float64) float64 { return a / b })
	case *ir.InstFNeg:
		var x float64
		x, err = fr.float(inst.X)
		res = -x

	case *ir.InstFCmp:
		var a, b float64
		if a, b, err = fr.floats(inst.X, inst.Y); err == nil {
			res, err = fcmp(inst.Pred, a, b)
		}

	case *ir.InstUIToFP:
		var x any
		if x, err = fr.get(inst.From); err == nil {
			switch x := x.(type) {
			case bool:
				res = 0.0
				if x {
					res = 1.0
				}
			case int64:
				res = float64(uint64(x))
			default:
				err = errors.Wrapf(ErrRuntime, "uitofp of non-integer %s", inst.From.Ident())
			}
		}

	case *ir.InstFPToUI:
		var x float64
		if x, err = fr.float(inst.From); err == nil {
			if math.IsNaN(x) || x < 0 || x >= 1<<32 {
				err = errors.Wrapf(ErrRuntime, "%g does not fit an unsigned 32-bit index", x)
			} else {
				res = int64(uint32(x))
			}
		}

	case *ir.InstZExt:
		res, err = fr.get(inst.From)

	case *ir.InstGetElementPtr:
		res, err = fr.gep(inst)

	case *ir.InstCall:
		res, err = fr.call(inst)

	default:
		return errors.Wrapf(ErrRuntime, "unsupported instruction %T", inst)
	}
	if err != nil {
		return err
	}
	fr.vals[inst.(value.Value)] = res
	return nil
}

func (fr *frame) arith(x, y value.Value, op func(a, b float64) float64) (any, error) {
	a, b, err := fr.floats(x, y)
	if err != nil {
		return nil, err
	}
	return op(a, b), nil
}

func fcmp(pred enum.FPred, a, b float64) (bool, error) {
	uno := math.IsNaN(a) || math.IsNaN(b)
	switch pred {
	case enum.FPredFalse:
		return false, nil
	case enum.FPredTrue:
		return true, nil
	case enum.FPredORD:
		return !uno, nil
	case enum.FPredUNO:
		return uno, nil
	case enum.FPredOEQ:
		return !uno && a == b, nil
	case enum.FPredONE:
		return !uno && a != b, nil
	case enum.FPredOLT:
		return !uno && a < b, nil
	case enum.FPredOLE:
		return !uno && a <= b, nil
	case enum.FPredOGT:
		return !uno && a > b, nil
	case enum.FPredOGE:
		return !uno && a >= b, nil
	case enum.FPredUEQ:
		return uno || a == b, nil
	case enum.FPredUNE:
		return uno || a != b, nil
	case enum.FPredULT:
		return uno || a < b, nil
	case enum.FPredULE:
		return uno || a <= b, nil
	case enum.FPredUGT:
		return uno || a > b, nil
	case enum.FPredUGE:
		return uno || a >= b, nil
	}
	return false, errors.Wrapf(ErrRuntime, "unsupported fcmp predicate %v", pred)
}

func (fr *frame) gep(inst *ir.InstGetElementPtr) (any, error) {
	base, err := fr.ptr(inst.Src)
	if err != nil {
		return nil, err
	}
	off := base.off
	typ := inst.ElemType
	for i, idxV := range inst.Indices {
		x, err := fr.get(idxV)
		if err != nil {
			return nil, err
		}
		idx, ok := x.(int64)
		if !ok {
			return nil, errors.Wrapf(ErrRuntime, "non-integer index %s", idxV.Ident())
		}
		if i > 0 {
			arr, ok := typ.(*types.ArrayType)
			if !ok {
				return nil, errors.Wrapf(ErrRuntime, "cannot index into %s", typ)
			}
			if idx < 0 || uint64(idx) >= arr.Len {
				return nil, errors.Wrapf(ErrRuntime, "index %d out of range [0,%d)", idx, arr.Len)
			}
			typ = arr.ElemType
		}
		off += int(idx) * cellCount(typ)
	}
	return pointer{cells: base.cells, off: off}, nil
}

func (fr *frame) call(inst *ir.InstCall) (any, error) {
	callee, ok := inst.Callee.(*ir.Func)
	if !ok {
		return nil, errors.Wrapf(ErrRuntime, "indirect call through %s", inst.Callee.Ident())
	}
	args := make([]float64, len(inst.Args))
	for i, a := range inst.Args {
		v, err := fr.float(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return fr.in.Call(callee, args...)
}
