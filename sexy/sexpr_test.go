package sexy

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestParseSymbol(t *testing.T) {
	tests := []string{"hello", "test_var", "func-name", "x", "_", "-", "+Inf", "NaN"}

	for _, input := range tests {
		result, err := Parse(input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeSymbol)
		be.Equal(t, result.Text, input)
		be.Equal(t, result.String(), input)
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		output   string
	}{
		{`"hello"`, "hello", `"hello"`},
		{`"hello world"`, "hello world", `"hello world"`},
		{`""`, "", `""`},
		{`"+"`, "+", `"+"`},
		{`"test\"quote"`, `test"quote`, `"test\"quote"`},
		{`"test\\backslash"`, `test\backslash`, `"test\\backslash"`},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeString)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.output)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"42", 42},
		{"0", 0},
		{"-123", -123},
		{"2.5", 2.5},
		{".5", 0.5},
		{"-0.25", -0.25},
		{"1e+21", 1e21},
		{"6.02e23", 6.02e23},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeNumber)
		be.Equal(t, result.String(), test.input)
		val, err := result.Float()
		be.Err(t, err, nil)
		be.Equal(t, val, test.expected)
	}
}

func TestParseEllipsis(t *testing.T) {
	result, err := Parse("...")
	be.Err(t, err, nil)
	be.Equal(t, result.Type, NodeEllipsis)
	be.Equal(t, result.String(), "...")
}

func TestParseList(t *testing.T) {
	result, err := Parse(`(binary "+" (var "x") 1.5)`)
	be.Err(t, err, nil)

	be.Equal(t, result.Type, NodeList)
	be.Equal(t, len(result.Items), 4)
	be.Equal(t, result.Items[0].Type, NodeSymbol)
	be.Equal(t, result.Items[1].Type, NodeString)
	be.Equal(t, result.Items[2].Type, NodeList)
	be.Equal(t, result.Items[3].Type, NodeNumber)

	empty, err := Parse("()")
	be.Err(t, err, nil)
	be.Equal(t, empty.Type, NodeList)
	be.Equal(t, len(empty.Items), 0)
}

func TestRoundTripParsing(t *testing.T) {
	tests := []string{
		`(def (proto "f" "x") (binary "*" (var "x") 2))`,
		`(let ((bind "a" (array 4)) (bind "x" nil)) (idx "a" 0))`,
		`(for "i" 1 (binary "<" (var "i") 10) nil (call "printd" (var "i")))`,
		`(if (var "c") ... _)`,
	}

	for _, input := range tests {
		result, err := Parse(input)
		be.Err(t, err, nil)
		be.Equal(t, result.String(), input)
	}
}

func TestParseComments(t *testing.T) {
	result, err := Parse(`; leading comment
(seq ; trailing comment
  1 2)`)
	be.Err(t, err, nil)
	be.Equal(t, result.String(), "(seq 1 2)")
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{`"unterminated`, "unterminated string"},
		{`"bad \n escape"`, "invalid escape sequence"},
		{`(a {b})`, "unexpected character '{'"},
		{`1.2.3`, "malformed number"},
	}

	for _, test := range tests {
		_, err := Parse(test.input)
		be.Err(t, err, test.err)
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{"", "unexpected token: EOF"},
		{")", "unexpected token: ')'"},
		{"(a b", "expected ')' but got EOF"},
		{"a b", "expected EOF but got symbol"},
	}

	for _, test := range tests {
		_, err := Parse(test.input)
		be.Err(t, err, test.err)
	}
}

func TestNodeTypeHelpers(t *testing.T) {
	be.True(t, NewSymbol("x").IsAtom())
	be.True(t, NewString("x").IsAtom())
	be.True(t, NewNumber("1").IsAtom())
	be.True(t, NewEllipsis().IsAtom())
	be.True(t, !NewList().IsAtom())

	_, err := NewSymbol("x").Float()
	be.Err(t, err, "is not a number")

	be.Equal(t, NewList(NewSymbol("var"), NewString("x")).String(), `(var "x")`)
}
