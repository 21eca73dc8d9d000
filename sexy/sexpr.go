// Package sexy reads the s-expressions used as expectations in markdown
// test files and matches them against rendered syntax trees.
package sexy

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeNumber
	NodeEllipsis
	NodeList
)

// Node is one datum: an atom or a list.
type Node struct {
	Type  NodeType
	Text  string  // NodeSymbol, NodeString, NodeNumber
	Items []*Node // NodeList
}

func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeNumber:
		return n.Text
	case NodeString:
		escaped := strings.ReplaceAll(n.Text, "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		return "\"" + escaped + "\""
	case NodeEllipsis:
		return "..."
	case NodeList:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
}

func NewSymbol(name string) *Node { return &Node{Type: NodeSymbol, Text: name} }
func NewString(s string) *Node    { return &Node{Type: NodeString, Text: s} }
func NewNumber(text string) *Node { return &Node{Type: NodeNumber, Text: text} }
func NewEllipsis() *Node          { return &Node{Type: NodeEllipsis} }
func NewList(items ...*Node) *Node {
	return &Node{Type: NodeList, Items: items}
}

// IsAtom checks if the node is an atomic value
func (n *Node) IsAtom() bool {
	return n.Type != NodeList
}

// Float returns the value of a number node.
func (n *Node) Float() (float64, error) {
	if n.Type != NodeNumber {
		return 0, fmt.Errorf("%s is not a number", n)
	}
	return strconv.ParseFloat(n.Text, 64)
}

// Parse parses the entire input and returns the top-level datum
func Parse(input string) (*Node, error) {
	p := &parser{lexer: newLexer(input)}
	p.next()

	result, err := p.parseDatum()
	if err == nil && p.tok.typ != tokenEOF {
		err = fmt.Errorf("offset %d: expected EOF but got %s", p.tok.pos, p.tok.typ)
	}
	if len(p.lexer.errors) > 0 {
		// Lexer errors take priority because they might cause confusing parser errors.
		return nil, fmt.Errorf("%s", p.lexer.errors[0])
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

type parser struct {
	lexer *lexer
	tok   token
}

func (p *parser) next() {
	p.tok = p.lexer.nextToken()
}

func (p *parser) parseDatum() (*Node, error) {
	tok := p.tok
	switch tok.typ {
	case tokenSymbol:
		p.next()
		return NewSymbol(tok.text), nil
	case tokenString:
		p.next()
		return NewString(tok.text), nil
	case tokenNumber:
		p.next()
		return NewNumber(tok.text), nil
	case tokenEllipsis:
		p.next()
		return NewEllipsis(), nil
	case tokenLParen:
		p.next()
		list := NewList()
		for p.tok.typ != tokenRParen {
			if p.tok.typ == tokenEOF {
				return nil, fmt.Errorf("offset %d: expected ')' but got EOF", p.tok.pos)
			}
			item, err := p.parseDatum()
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, item)
		}
		p.next()
		return list, nil
	}
	return nil, fmt.Errorf("offset %d: unexpected token: %s", tok.pos, tok.typ)
}

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenSymbol
	tokenString
	tokenNumber
	tokenEllipsis
	tokenLParen
	tokenRParen
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenSymbol:
		return "symbol"
	case tokenString:
		return "string"
	case tokenNumber:
		return "number"
	case tokenEllipsis:
		return "ellipsis"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	default:
		return fmt.Sprintf("unknown token %d", int(t))
	}
}

type token struct {
	typ  tokenType
	text string
	pos  int
}

type lexer struct {
	input  string
	pos    int
	errors []string
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) peek(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *lexer) nextToken() token {
	for {
		for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
			l.pos++
		}
		if l.peek(0) != ';' {
			break
		}
		for l.pos < len(l.input) && l.input[l.pos] != '\n' {
			l.pos++
		}
	}

	start := l.pos
	c := l.peek(0)
	switch {
	case c == 0:
		return token{typ: tokenEOF, pos: start}
	case c == '(':
		l.pos++
		return token{typ: tokenLParen, text: "(", pos: start}
	case c == ')':
		l.pos++
		return token{typ: tokenRParen, text: ")", pos: start}
	case c == '"':
		s, err := l.readString()
		if err != nil {
			l.errors = append(l.errors, err.Error())
			return token{typ: tokenEOF, pos: start}
		}
		return token{typ: tokenString, text: s, pos: start}
	case c == '.' && l.peek(1) == '.' && l.peek(2) == '.':
		l.pos += 3
		return token{typ: tokenEllipsis, text: "...", pos: start}
	case isDigit(c) || ((c == '-' || c == '+' || c == '.') && (isDigit(l.peek(1)) || l.peek(1) == '.')):
		text := l.readAtom()
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			l.errors = append(l.errors, fmt.Sprintf("offset %d: malformed number %q", start, text))
			return token{typ: tokenEOF, pos: start}
		}
		return token{typ: tokenNumber, text: text, pos: start}
	case isSymbolChar(c):
		return token{typ: tokenSymbol, text: l.readAtom(), pos: start}
	}
	l.errors = append(l.errors, fmt.Sprintf("offset %d: unexpected character '%c'", start, c))
	return token{typ: tokenEOF, pos: start}
}

func (l *lexer) readAtom() string {
	start := l.pos
	for l.pos < len(l.input) && isSymbolChar(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

func (l *lexer) readString() (string, error) {
	var b strings.Builder
	l.pos++ // skip opening quote
	for {
		c := l.peek(0)
		switch c {
		case 0:
			return "", fmt.Errorf("unterminated string")
		case '"':
			l.pos++
			return b.String(), nil
		case '\\':
			switch next := l.peek(1); next {
			case '"', '\\':
				b.WriteByte(next)
				l.pos += 2
			default:
				return "", fmt.Errorf("invalid escape sequence: \\%c", next)
			}
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isSymbolChar(c byte) bool {
	return unicode.IsLetter(rune(c)) || isDigit(c) || strings.IndexByte("-_+*/<>=!.?", c) >= 0
}
