package main

import (
	"fmt"

	"github.com/pkg/errors"
)

// Operator is the tag of a unary or binary operator.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpLt
	OpLe
	OpGt
	OpGe
	OpEqual
	OpNotEqual
	OpCompound // ':' evaluates both operands and yields the right one
	OpAssign
)

// operatorTable maps every operator token to exactly one tag and back.
var operatorTable = map[string]Operator{
	"+":  OpAdd,
	"-":  OpSub,
	"*":  OpMul,
	"/":  OpDiv,
	"<":  OpLt,
	"<=": OpLe,
	">":  OpGt,
	">=": OpGe,
	"==": OpEqual,
	"!=": OpNotEqual,
	":":  OpCompound,
	"=":  OpAssign,
}

// LookupOperator returns the operator spelled by tok.
func LookupOperator(tok string) (Operator, error) {
	op, ok := operatorTable[tok]
	if !ok {
		return 0, errors.Wrapf(ErrLookup, "operator token %q", tok)
	}
	return op, nil
}

// Token returns the source spelling of op.
func (op Operator) Token() (string, error) {
	for tok, o := range operatorTable {
		if o == op {
			return tok, nil
		}
	}
	return "", errors.Wrapf(ErrLookup, "operator tag %d", int(op))
}

func (op Operator) String() string {
	tok, err := op.Token()
	if err != nil {
		return fmt.Sprintf("Operator(%d)", int(op))
	}
	return tok
}

// isComparison reports whether op produces a 0.0/1.0 truth value.
func (op Operator) isComparison() bool {
	switch op {
	case OpLt, OpLe, OpGt, OpGe, OpEqual, OpNotEqual:
		return true
	default:
		return false
	}
}
