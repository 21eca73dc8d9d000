package main

import (
	"strconv"
	"strings"
)

// ToSExpr converts an AST node to s-expression string representation
func ToSExpr(node Node) string {
	var b strings.Builder
	writeSExpr(&b, node)
	return b.String()
}

func writeSExpr(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("nil")
	case *Sequence:
		b.WriteString("(seq")
		for s := n; s != nil; s = s.Continuation {
			b.WriteByte(' ')
			writeSExpr(b, s.First)
		}
		b.WriteByte(')')
	case *NumberLiteral:
		b.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *VariableRef:
		b.WriteString("(var " + strconv.Quote(n.Name) + ")")
	case *UnaryOp:
		b.WriteString("(unary " + strconv.Quote(n.Op.String()) + " ")
		writeSExpr(b, n.Operand)
		b.WriteByte(')')
	case *BinaryOp:
		b.WriteString("(binary " + strconv.Quote(n.Op.String()) + " ")
		writeSExpr(b, n.LHS)
		b.WriteByte(' ')
		writeSExpr(b, n.RHS)
		b.WriteByte(')')
	case *Call:
		b.WriteString("(call " + strconv.Quote(n.Callee))
		for _, a := range n.Args {
			b.WriteByte(' ')
			writeSExpr(b, a)
		}
		b.WriteByte(')')
	case *Prototype:
		b.WriteString("(proto " + strconv.Quote(n.Name))
		for _, p := range n.Params {
			b.WriteString(" " + strconv.Quote(p))
		}
		b.WriteByte(')')
	case *FunctionDef:
		if n.Body == nil {
			writeSExpr(b, n.Proto)
			return
		}
		b.WriteString("(def ")
		writeSExpr(b, n.Proto)
		b.WriteByte(' ')
		writeSExpr(b, n.Body)
		b.WriteByte(')')
	case *Conditional:
		b.WriteString("(if ")
		writeSExpr(b, n.Cond)
		b.WriteByte(' ')
		writeSExpr(b, n.Then)
		if n.Else != nil {
			b.WriteByte(' ')
			writeSExpr(b, n.Else)
		}
		b.WriteByte(')')
	case *CountedLoop:
		b.WriteString("(for " + strconv.Quote(n.Var))
		for _, child := range []Expr{n.Start, n.End, n.Step, n.Body} {
			b.WriteByte(' ')
			if child == nil {
				b.WriteString("nil")
				continue
			}
			writeSExpr(b, child)
		}
		b.WriteByte(')')
	case *ConditionalLoop:
		b.WriteString("(while ")
		writeSExpr(b, n.Cond)
		b.WriteByte(' ')
		writeSExpr(b, n.Body)
		b.WriteByte(')')
	case *ScopedBindings:
		b.WriteString("(let (")
		for i, bind := range n.Bindings {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString("(bind " + strconv.Quote(bind.Name) + " ")
			writeSExpr(b, bind.Init)
			b.WriteByte(')')
		}
		b.WriteString(") ")
		writeSExpr(b, n.Body)
		b.WriteByte(')')
	case *ArrayAlloc:
		b.WriteString("(array " + strconv.Itoa(n.Capacity) + ")")
	case *ArrayIndex:
		b.WriteString("(idx " + strconv.Quote(n.Name) + " ")
		writeSExpr(b, n.Index)
		b.WriteByte(')')
	}
}
