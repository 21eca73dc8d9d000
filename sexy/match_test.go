package sexy

import (
	"testing"

	"github.com/nalgeon/be"
)

func mustParse(t *testing.T, s string) *Node {
	t.Helper()
	n, err := Parse(s)
	be.Err(t, err, nil)
	return n
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern, actual string
	}{
		{`(binary "+" 1 2)`, `(binary "+" 1 2)`},
		{`1`, `1.0`},
		{`(binary _ 1 2)`, `(binary "*" 1 2)`},
		{`(call "f" ...)`, `(call "f")`},
		{`(call "f" ...)`, `(call "f" 1 2 3)`},
		{`(seq ... (var "x"))`, `(seq 1 2 (var "x"))`},
		{`(seq (def ...) ... 4)`, `(seq (def (proto "f") 1) 3 4)`},
		{`_`, `(anything at all)`},
	}

	for _, test := range tests {
		err := Match(mustParse(t, test.pattern), mustParse(t, test.actual))
		be.Err(t, err, nil)
	}
}

func TestMatchMismatch(t *testing.T) {
	tests := []struct {
		pattern, actual, err string
	}{
		{`(binary "+" 1 2)`, `(binary "+" 1 3)`, "root[3]: expected 2, got 3"},
		{`(var "x")`, `(var "y")`, `root[1]: expected "x", got "y"`},
		{`(call "f" 1)`, `(call "f")`, "missing item 2"},
		{`(call "f")`, `(call "f" 1)`, `root: expected (call "f"), got (call "f" 1)`},
		{`1`, `"1"`, `expected 1, got "1"`},
		{`(seq ... 5)`, `(seq 1 2)`, "root: expected"},
	}

	for _, test := range tests {
		err := Match(mustParse(t, test.pattern), mustParse(t, test.actual))
		be.Err(t, err, test.err)
	}
}
