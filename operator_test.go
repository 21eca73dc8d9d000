package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestOperatorRoundTrip(t *testing.T) {
	for tok, op := range operatorTable {
		got, err := LookupOperator(tok)
		be.Err(t, err, nil)
		be.Equal(t, got, op)

		back, err := op.Token()
		be.Err(t, err, nil)
		be.Equal(t, back, tok)
		be.Equal(t, op.String(), tok)
	}
}

func TestOperatorTableIsBijective(t *testing.T) {
	seen := make(map[Operator]string)
	for tok, op := range operatorTable {
		_, dup := seen[op]
		be.True(t, !dup)
		seen[op] = tok
	}
	be.Equal(t, len(seen), int(OpAssign)+1)
}

func TestLookupUnknownOperator(t *testing.T) {
	for _, tok := range []string{"%", "&&", "", "=>"} {
		_, err := LookupOperator(tok)
		be.Err(t, err, ErrLookup)
	}
}

func TestUnmappedOperatorTag(t *testing.T) {
	op := Operator(99)
	_, err := op.Token()
	be.Err(t, err, ErrLookup)
	be.Equal(t, op.String(), "Operator(99)")
}

func TestIsComparison(t *testing.T) {
	be.True(t, OpLt.isComparison())
	be.True(t, OpNotEqual.isComparison())
	be.True(t, !OpAdd.isComparison())
	be.True(t, !OpCompound.isComparison())
	be.True(t, !OpAssign.isComparison())
}
