package main

import (
	"fmt"
	"io"
	"strconv"
)

// TokenType is the type of token (identifier, operator, literal, etc.).
type TokenType string

// Definition of token types
const (
	// Special tokens
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT  = "IDENT"  // foo, x1, _bar
	NUMBER = "NUMBER" // 1, 2.5, .5, 1e3

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	COLON    = ":"

	LT     = "<"
	GT     = ">"
	EQ     = "=="
	NOT_EQ = "!="
	LE     = "<="
	GE     = ">="

	// Delimiters
	COMMA     = ","
	SEMICOLON = ";"
	LPAREN    = "("
	RPAREN    = ")"
	LBRACKET  = "["
	RBRACKET  = "]"

	// Keywords
	DEF    = "DEF"
	EXTERN = "EXTERN"
	IF     = "IF"
	THEN   = "THEN"
	ELSE   = "ELSE"
	FOR    = "FOR"
	IN     = "IN"
	WHILE  = "WHILE"
	DO     = "DO"
	VAR    = "VAR"
)

var keywords = map[string]TokenType{
	"def":    DEF,
	"extern": EXTERN,
	"if":     IF,
	"then":   THEN,
	"else":   ELSE,
	"for":    FOR,
	"in":     IN,
	"while":  WHILE,
	"do":     DO,
	"var":    VAR,
}

// Pos is a 1-based line and column in the source.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Lexer scans kfe source one token at a time. The current token is held in
// the Curr* fields; call NextToken repeatedly until CurrTokenType == EOF.
type Lexer struct {
	input []byte // always ends with a 0 byte
	pos   int
	line  int
	col   int

	CurrTokenType TokenType
	CurrLiteral   string
	CurrNumValue  float64 // only meaningful when CurrTokenType == NUMBER
	CurrPos       Pos

	// Trace, when set, receives one line per scanned token.
	Trace io.Writer

	Errors ErrorList
}

// NewLexer returns a lexer over in. A trailing 0 byte is appended if missing.
func NewLexer(in []byte) *Lexer {
	if len(in) == 0 || in[len(in)-1] != 0 {
		in = append(append([]byte(nil), in...), 0)
	}
	return &Lexer{input: in, line: 1, col: 1}
}

func (l *Lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) peek(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

// NextToken scans the next token into the Curr* fields.
func (l *Lexer) NextToken() {
	l.skipWhitespaceAndComments()

	c := l.input[l.pos]
	l.CurrPos = Pos{Line: l.line, Col: l.col}
	l.CurrNumValue = 0

	switch {
	case c == 0:
		l.CurrTokenType = EOF
		l.CurrLiteral = ""
	case isLetter(c):
		lit := l.readIdentifier()
		if kw, ok := keywords[lit]; ok {
			l.CurrTokenType = kw
		} else {
			l.CurrTokenType = IDENT
		}
		l.CurrLiteral = lit
	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		l.readNumber()
	default:
		l.readOperator(c)
	}

	if l.Trace != nil {
		fmt.Fprintf(l.Trace, "%s\t%s\t%q\n", l.CurrPos, l.CurrTokenType, l.CurrLiteral)
	}
}

func (l *Lexer) readOperator(c byte) {
	two := string([]byte{c, l.peek(1)})
	switch two {
	case "==", "!=", "<=", ">=":
		l.CurrTokenType = TokenType(two)
		l.CurrLiteral = two
		l.advance()
		l.advance()
		return
	}

	switch c {
	case '=', '+', '-', '*', '/', ':', '<', '>', ',', ';', '(', ')', '[', ']':
		l.CurrTokenType = TokenType(string(c))
		l.CurrLiteral = string(c)
	default:
		l.CurrTokenType = ILLEGAL
		l.CurrLiteral = string(c)
		l.Errors.Add(l.CurrPos, "unexpected character %q", c)
	}
	l.advance()
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		c := l.input[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance()
		case c == '#' || (c == '/' && l.peek(1) == '/'):
			for l.input[l.pos] != '\n' && l.input[l.pos] != 0 {
				l.advance()
			}
		default:
			return
		}
	}
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.input[l.pos]) || isDigit(l.input[l.pos]) {
		l.advance()
	}
	return string(l.input[start:l.pos])
}

func (l *Lexer) readNumber() {
	start := l.pos
	for isDigit(l.input[l.pos]) {
		l.advance()
	}
	if l.input[l.pos] == '.' {
		l.advance()
		for isDigit(l.input[l.pos]) {
			l.advance()
		}
	}
	if c := l.input[l.pos]; c == 'e' || c == 'E' {
		next := l.peek(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peek(2))) {
			l.advance()
			if next == '+' || next == '-' {
				l.advance()
			}
			for isDigit(l.input[l.pos]) {
				l.advance()
			}
		}
	}

	lit := string(l.input[start:l.pos])
	l.CurrTokenType = NUMBER
	l.CurrLiteral = lit
	val, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		l.Errors.Add(l.CurrPos, "malformed number %q", lit)
	}
	l.CurrNumValue = val
}
