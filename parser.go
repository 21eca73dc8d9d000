package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseError is a syntax error at a source position.
type ParseError struct {
	Pos Pos
	Msg string
}

func (e *ParseError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// ErrorList collects parse errors in source order.
type ErrorList []*ParseError

func (l *ErrorList) Add(pos Pos, format string, args ...any) {
	*l = append(*l, &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var b strings.Builder
	for i, e := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

// Err returns l as an error, or nil if l is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Parser builds the AST of a whole program.
type Parser struct {
	lex    *Lexer
	errors ErrorList
}

func NewParser(lex *Lexer) *Parser {
	p := &Parser{lex: lex}
	lex.NextToken()
	return p
}

// Parse parses source into a program tree. The returned Sequence is nil for
// an empty program.
func Parse(source []byte) (*Sequence, error) {
	return NewParser(NewLexer(source)).ParseProgram()
}

func (p *Parser) tok() TokenType { return p.lex.CurrTokenType }

func (p *Parser) next() { p.lex.NextToken() }

// errorf records an error at the current token.
func (p *Parser) errorf(format string, args ...any) {
	p.errors.Add(p.lex.CurrPos, format, args...)
}

type parseAbort struct{}

// expect consumes a token of type t or aborts the current unit.
func (p *Parser) expect(t TokenType, what string) string {
	if p.tok() != t {
		p.fail("expected %s, got %s", what, describe(p.lex))
	}
	lit := p.lex.CurrLiteral
	p.next()
	return lit
}

func (p *Parser) fail(format string, args ...any) {
	p.errorf(format, args...)
	panic(parseAbort{})
}

func describe(l *Lexer) string {
	switch l.CurrTokenType {
	case EOF:
		return "end of input"
	case IDENT, NUMBER:
		return fmt.Sprintf("%s %q", strings.ToLower(string(l.CurrTokenType)), l.CurrLiteral)
	}
	return strconv.Quote(l.CurrLiteral)
}

// ParseProgram parses units separated by ';' until EOF. On a syntax error
// the parser skips to the next ';' and keeps going so that all errors of
// the program are reported together.
func (p *Parser) ParseProgram() (*Sequence, error) {
	var units []Node
	for p.tok() != EOF {
		if p.tok() == SEMICOLON {
			p.next()
			continue
		}
		if n, ok := p.parseUnitRecover(); ok {
			units = append(units, n)
		} else {
			p.synchronize()
			continue
		}
		if p.tok() != SEMICOLON && p.tok() != EOF {
			p.errorf("expected ';' after %s, got %s", unitKind(units[len(units)-1]), describe(p.lex))
			p.synchronize()
		}
	}

	errs := append(append(ErrorList{}, p.lex.Errors...), p.errors...)
	if len(errs) > 0 {
		return nil, errs
	}

	var root *Sequence
	for i := len(units) - 1; i >= 0; i-- {
		root = &Sequence{First: units[i], Continuation: root}
	}
	return root, nil
}

func unitKind(n Node) string {
	switch n.(type) {
	case *FunctionDef:
		return "definition"
	case *Prototype:
		return "extern"
	default:
		return "expression"
	}
}

func (p *Parser) synchronize() {
	for p.tok() != SEMICOLON && p.tok() != EOF {
		p.next()
	}
}

func (p *Parser) parseUnitRecover() (n Node, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isAbort := r.(parseAbort); !isAbort {
				panic(r)
			}
			n, ok = nil, false
		}
	}()
	return p.parseUnit(), true
}

func (p *Parser) parseUnit() Node {
	switch p.tok() {
	case DEF:
		p.next()
		proto := p.parsePrototype()
		body := p.ParseExpression()
		return &FunctionDef{Proto: proto, Body: body}
	case EXTERN:
		p.next()
		proto := p.parsePrototype()
		proto.Emit = true
		return proto
	default:
		e := p.ParseExpression()
		e.SetTopLevel(true)
		return e
	}
}

func (p *Parser) parsePrototype() *Prototype {
	name := p.expect(IDENT, "function name")
	p.expect(LPAREN, "'(' in prototype")
	proto := &Prototype{Name: name}
	for p.tok() != RPAREN {
		param := p.expect(IDENT, "parameter name")
		proto.Params = append(proto.Params, param)
		if p.tok() == COMMA {
			p.next()
		}
	}
	p.next()
	return proto
}

// precedence returns the binding power of a binary operator token, or 0.
func precedence(t TokenType) int {
	switch t {
	case COLON:
		return 1
	case ASSIGN:
		return 2
	case LT, LE, GT, GE, EQ, NOT_EQ:
		return 3
	case PLUS, MINUS:
		return 4
	case ASTERISK, SLASH:
		return 5
	default:
		return 0
	}
}

const unaryPrecedence = 6

// ParseExpression parses a full expression.
func (p *Parser) ParseExpression() Expr {
	return p.parseExpressionWithPrecedence(1)
}

// parseExpressionWithPrecedence implements precedence climbing.
func (p *Parser) parseExpressionWithPrecedence(minPrec int) Expr {
	var left Expr
	if p.tok() == MINUS {
		p.next()
		operand := p.parseExpressionWithPrecedence(unaryPrecedence)
		left = &UnaryOp{Op: OpSub, Operand: operand}
	} else {
		left = p.parsePrimary()
	}

	for {
		prec := precedence(p.tok())
		if prec == 0 || prec < minPrec {
			return left
		}
		lit := p.lex.CurrLiteral
		op, err := LookupOperator(lit)
		if err != nil {
			p.fail("%v", err)
		}
		p.next()

		var right Expr
		if op == OpAssign {
			right = p.parseExpressionWithPrecedence(prec) // right-associative
		} else {
			right = p.parseExpressionWithPrecedence(prec + 1)
		}
		left = &BinaryOp{Op: op, LHS: left, RHS: right}
	}
}

func (p *Parser) parsePrimary() Expr {
	switch p.tok() {
	case NUMBER:
		n := &NumberLiteral{Value: p.lex.CurrNumValue}
		p.next()
		return n

	case IDENT:
		name := p.lex.CurrLiteral
		p.next()
		switch p.tok() {
		case LPAREN:
			p.next()
			call := &Call{Callee: name}
			for p.tok() != RPAREN {
				call.Args = append(call.Args, p.ParseExpression())
				if p.tok() != COMMA {
					break
				}
				p.next()
			}
			p.expect(RPAREN, "')' after arguments")
			return call
		case LBRACKET:
			p.next()
			idx := p.ParseExpression()
			p.expect(RBRACKET, "']'")
			return &ArrayIndex{Name: name, Index: idx}
		}
		return &VariableRef{Name: name}

	case LPAREN:
		p.next()
		e := p.ParseExpression()
		p.expect(RPAREN, "')'")
		return e

	case IF:
		return p.parseIf()
	case FOR:
		return p.parseFor()
	case WHILE:
		p.next()
		cond := p.ParseExpression()
		p.expect(DO, "'do'")
		body := p.ParseExpression()
		return &ConditionalLoop{Cond: cond, Body: body}
	case VAR:
		return p.parseVar()
	}

	p.fail("expected expression, got %s", describe(p.lex))
	return nil
}

func (p *Parser) parseIf() Expr {
	p.next()
	n := &Conditional{Cond: p.ParseExpression()}
	p.expect(THEN, "'then'")
	n.Then = p.ParseExpression()
	if p.tok() == ELSE {
		p.next()
		n.Else = p.ParseExpression()
	}
	return n
}

func (p *Parser) parseFor() Expr {
	p.next()
	n := &CountedLoop{Var: p.expect(IDENT, "loop variable")}
	p.expect(ASSIGN, "'=' after loop variable")
	n.Start = p.ParseExpression()
	p.expect(COMMA, "',' after loop start")
	n.End = p.ParseExpression()
	if p.tok() == COMMA {
		p.next()
		n.Step = p.ParseExpression()
	}
	p.expect(IN, "'in'")
	n.Body = p.ParseExpression()
	return n
}

func (p *Parser) parseVar() Expr {
	p.next()
	n := &ScopedBindings{}
	for {
		name := p.expect(IDENT, "variable name")
		b := Binding{Name: name}
		switch p.tok() {
		case ASSIGN:
			p.next()
			b.Init = p.ParseExpression()
		case LBRACKET:
			p.next()
			if p.tok() != NUMBER {
				p.fail("expected array capacity, got %s", describe(p.lex))
			}
			capacity := p.lex.CurrNumValue
			if capacity < 1 || capacity != math.Trunc(capacity) {
				p.fail("array capacity must be a positive integer, got %s", p.lex.CurrLiteral)
			}
			if capacity > MaxArrayCapacity {
				p.fail("array capacity %s exceeds the limit of %d", p.lex.CurrLiteral, MaxArrayCapacity)
			}
			p.next()
			p.expect(RBRACKET, "']'")
			b.Init = &ArrayAlloc{Name: name, Capacity: int(capacity)}
		}
		n.Bindings = append(n.Bindings, b)
		if p.tok() != COMMA {
			break
		}
		p.next()
	}
	p.expect(IN, "'in'")
	n.Body = p.ParseExpression()
	return n
}
