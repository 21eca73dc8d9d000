package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func parseExpr(t *testing.T, input string) Expr {
	t.Helper()
	root, err := Parse([]byte(input))
	be.Err(t, err, nil)
	be.True(t, root != nil && root.Continuation == nil)
	e, ok := root.First.(Expr)
	be.True(t, ok)
	return e
}

func TestParseExpressionShapes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", `(binary "+" 1 (binary "*" 2 3))`},
		{"(1 + 2) * 3", `(binary "*" (binary "+" 1 2) 3)`},
		{"1 - 2 - 3", `(binary "-" (binary "-" 1 2) 3)`},
		{"a = b = 3", `(binary "=" (var "a") (binary "=" (var "b") 3))`},
		{"x = 1 : x + 1", `(binary ":" (binary "=" (var "x") 1) (binary "+" (var "x") 1))`},
		{"1 < 2 == 0", `(binary "==" (binary "<" 1 2) 0)`},
		{"-x * 2", `(binary "*" (unary "-" (var "x")) 2)`},
		{"f(1, g(x))", `(call "f" 1 (call "g" (var "x")))`},
		{"f()", `(call "f")`},
		{"a[i + 1]", `(idx "a" (binary "+" (var "i") 1))`},
		{"if x then 1 else 2", `(if (var "x") 1 2)`},
		{"if x then 1", `(if (var "x") 1)`},
		{"for i = 0, i < 3 in i", `(for "i" 0 (binary "<" (var "i") 3) nil (var "i"))`},
		{"for i = 0, 3, 2 in i", `(for "i" 0 3 2 (var "i"))`},
		{"while x do x = x - 1", `(while (var "x") (binary "=" (var "x") (binary "-" (var "x") 1)))`},
		{"var a = 1, b in a + b", `(let ((bind "a" 1) (bind "b" nil)) (binary "+" (var "a") (var "b")))`},
		{"var a[4] in a[0]", `(let ((bind "a" (array 4))) (idx "a" 0))`},
		{"2.5e1", `25`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			be.Equal(t, ToSExpr(parseExpr(t, tt.input)), tt.expected)
		})
	}
}

func TestParseProgramUnits(t *testing.T) {
	root, err := Parse([]byte("extern sin(x); def f(a b) a*b; ;; f(1, 2)"))
	be.Err(t, err, nil)
	be.Equal(t, ToSExpr(root),
		`(seq (proto "sin" "x") (def (proto "f" "a" "b") (binary "*" (var "a") (var "b"))) (call "f" 1 2))`)

	ext := root.First.(*Prototype)
	be.True(t, ext.Emit)
	be.True(t, !ext.Internal)

	def := root.Continuation.First.(*FunctionDef)
	be.True(t, !def.Body.TopLevel())

	call := root.Continuation.Continuation.First.(*Call)
	be.True(t, call.TopLevel())
	be.True(t, root.Continuation.Continuation.Continuation == nil)
}

func TestParseEmptyProgram(t *testing.T) {
	for _, input := range []string{"", "  ", ";;", "# only a comment\n"} {
		root, err := Parse([]byte(input))
		be.Err(t, err, nil)
		be.True(t, root == nil)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 +", "1:4: expected expression, got end of input"},
		{"def (x) x", "1:5: expected function name, got \"(\""},
		{"def f(x) x 2", "1:12: expected ';' after definition, got number \"2\""},
		{"extern g(x) g", "1:13: expected ';' after extern, got ident \"g\""},
		{"if 1 2", "1:6: expected 'then', got number \"2\""},
		{"var a[0] in a", "1:7: array capacity must be a positive integer, got 0"},
		{"var a[1.5] in a", "array capacity must be a positive integer, got 1.5"},
		{"var a[1048577] in a", "1:7: array capacity 1048577 exceeds the limit of 1048576"},
		{"var a[1000000000000000000] in 0", "array capacity 1000000000000000000 exceeds the limit of 1048576"},
		{"var a[n] in a", "expected array capacity, got ident \"n\""},
		{"for 1", "expected loop variable, got number \"1\""},
		{"while 1 1", "expected 'do', got number \"1\""},
		{"f(1", "expected ')' after arguments, got end of input"},
		{"x $ 1", "1:3: unexpected character '$'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root, err := Parse([]byte(tt.input))
			be.Err(t, err, tt.expected)
			be.True(t, root == nil)
		})
	}
}

func TestParseErrorsResync(t *testing.T) {
	_, err := Parse([]byte("1 +;\ndef f(x) x;\nif then;\nf(2)"))
	list, ok := err.(ErrorList)
	be.True(t, ok)
	be.Equal(t, len(list), 2)
	be.Equal(t, list[0].Pos, Pos{Line: 1, Col: 4})
	be.Equal(t, list[1].Pos, Pos{Line: 3, Col: 4})
	be.Equal(t, list.Error(),
		"1:4: expected expression, got \";\"\n3:4: expected expression, got \"then\"")
}

func TestErrorListErr(t *testing.T) {
	var list ErrorList
	be.Err(t, list.Err(), nil)
	list.Add(Pos{Line: 2, Col: 7}, "bad %s", "thing")
	be.Err(t, list.Err(), "2:7: bad thing")
}
