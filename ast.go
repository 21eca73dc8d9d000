package main

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// Node is an AST node that can lower itself into IR through a Driver.
type Node interface {
	Codegen(d *Driver) (value.Value, error)
}

// Expr is a Node that can appear where a value is expected. The top-level
// flag marks expressions typed directly at the program level; they are
// wrapped into a synthetic function and evaluated immediately.
type Expr interface {
	Node
	TopLevel() bool
	SetTopLevel(bool)
}

// Addressable is implemented by nodes that denote a storage location.
type Addressable interface {
	CodegenAddress(d *Driver) (value.Value, error)
}

// Allocator is implemented by initializers that allocate their own storage
// instead of producing a value to store.
type Allocator interface {
	Allocate(d *Driver, name string) (*ir.InstAlloca, error)
}

type exprBase struct {
	top bool
}

func (e *exprBase) TopLevel() bool     { return e.top }
func (e *exprBase) SetTopLevel(b bool) { e.top = b }

// Sequence chains top-level units: First, then the rest of the program.
type Sequence struct {
	First        Node
	Continuation *Sequence
}

// NumberLiteral is a double constant.
type NumberLiteral struct {
	exprBase
	Value float64
}

// VariableRef reads a scalar variable.
type VariableRef struct {
	exprBase
	Name string
}

type UnaryOp struct {
	exprBase
	Op      Operator
	Operand Expr
}

type BinaryOp struct {
	exprBase
	Op       Operator
	LHS, RHS Expr
}

type Call struct {
	exprBase
	Callee string
	Args   []Expr
}

// Prototype declares a function of doubles. Emit is set for genuine extern
// declarations, which are printed when lowered. Internal gives the function
// internal linkage (synthetic wrappers only).
type Prototype struct {
	Name     string
	Params   []string
	Emit     bool
	Internal bool
}

// FunctionDef is a prototype plus an optional body.
type FunctionDef struct {
	Proto *Prototype
	Body  Expr
}

// Conditional is if/then/else; Else may be nil.
type Conditional struct {
	exprBase
	Cond, Then, Else Expr
}

// CountedLoop is `for Var = Start, End [, Step] in Body`.
type CountedLoop struct {
	exprBase
	Var        string
	Start, End Expr
	Step       Expr // nil means 1.0
	Body       Expr
}

// ConditionalLoop is `while Cond do Body`; Body runs before the first test.
type ConditionalLoop struct {
	exprBase
	Cond, Body Expr
}

// Binding is one `name [= init]` entry of a var/in expression.
type Binding struct {
	Name string
	Init Node // nil means 0.0
}

type ScopedBindings struct {
	exprBase
	Bindings []Binding
	Body     Expr
}

// MaxArrayCapacity is the largest N accepted in `name[N]`.
const MaxArrayCapacity = 1 << 20

// ArrayAlloc is the `name[N]` binding initializer.
type ArrayAlloc struct {
	Name     string
	Capacity int
}

type ArrayIndex struct {
	exprBase
	Name  string
	Index Expr
}

var (
	_ Expr        = (*NumberLiteral)(nil)
	_ Expr        = (*VariableRef)(nil)
	_ Expr        = (*UnaryOp)(nil)
	_ Expr        = (*BinaryOp)(nil)
	_ Expr        = (*Call)(nil)
	_ Expr        = (*Conditional)(nil)
	_ Expr        = (*CountedLoop)(nil)
	_ Expr        = (*ConditionalLoop)(nil)
	_ Expr        = (*ScopedBindings)(nil)
	_ Expr        = (*ArrayIndex)(nil)
	_ Node        = (*Sequence)(nil)
	_ Node        = (*Prototype)(nil)
	_ Node        = (*FunctionDef)(nil)
	_ Node        = (*ArrayAlloc)(nil)
	_ Addressable = (*VariableRef)(nil)
	_ Addressable = (*ArrayIndex)(nil)
	_ Allocator   = (*ArrayAlloc)(nil)
)
