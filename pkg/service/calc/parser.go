package calc

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	text  string
	value float64
	pos   int
}

// parser is a recursive-descent parser over the grammar
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("-" | "+") unary | power
//	power   = primary [ "^" unary ]
//	primary = number | "(" expr ")"
//
// "^" is right associative and binds tighter than unary minus, so -2^2 is
// -(2^2) and 2^-1 is 0.5.
type parser struct {
	src string
	pos int
	tok token
}

// Parse builds the expression tree for src
func Parse(src string) (Node, error) {
	p := &parser{src: src}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return nil, goerr.Wrap(ErrParse, "empty expression")
	}

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf(ErrParse, "unexpected token")
	}
	return node, nil
}

func (p *parser) errorf(base error, msg string) error {
	return goerr.Wrap(base, msg, goerr.V(PositionKey, p.tok.pos), goerr.V(TokenKey, p.tok.text))
}

const eof rune = -1

func (p *parser) peek() rune {
	if p.pos >= len(p.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *parser) next() rune {
	if p.pos >= len(p.src) {
		return eof
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return r
}

// advance scans the next token into p.tok
func (p *parser) advance() error {
	for unicode.IsSpace(p.peek()) {
		p.next()
	}

	start := p.pos
	r := p.peek()
	switch {
	case r == eof:
		p.tok = token{kind: tokEOF, pos: start}
		return nil

	case isDigit(r) || r == '.':
		return p.scanNumber(start)

	case r == '*':
		p.next()
		if p.peek() == '*' {
			p.next()
			p.tok = token{kind: tokOp, text: string(OpPow), pos: start}
			return nil
		}
		p.tok = token{kind: tokOp, text: string(OpMul), pos: start}
		return nil

	case r == '+' || r == '-' || r == '/' || r == '^':
		p.next()
		p.tok = token{kind: tokOp, text: string(r), pos: start}
		return nil

	case r == '(':
		p.next()
		p.tok = token{kind: tokLParen, text: "(", pos: start}
		return nil

	case r == ')':
		p.next()
		p.tok = token{kind: tokRParen, text: ")", pos: start}
		return nil

	case r == '_' || unicode.IsLetter(r):
		for {
			c := p.peek()
			if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
				break
			}
			p.next()
		}
		p.tok = token{text: p.src[start:p.pos], pos: start}
		return p.errorf(ErrUnsupportedConstruct, "names and function calls are not supported")

	default:
		p.next()
		p.tok = token{text: string(r), pos: start}
		return p.errorf(ErrUnsupportedConstruct, "unsupported character")
	}
}

func (p *parser) scanNumber(start int) error {
	digits := 0
	for isDigit(p.peek()) {
		p.next()
		digits++
	}
	if p.peek() == '.' {
		p.next()
		for isDigit(p.peek()) {
			p.next()
			digits++
		}
	}
	if digits == 0 {
		p.tok = token{text: p.src[start:p.pos], pos: start}
		return p.errorf(ErrParse, "invalid number")
	}

	// exponent part, only when followed by digits
	if c := p.peek(); c == 'e' || c == 'E' {
		mark := p.pos
		p.next()
		if c := p.peek(); c == '+' || c == '-' {
			p.next()
		}
		if !isDigit(p.peek()) {
			p.pos = mark
		} else {
			for isDigit(p.peek()) {
				p.next()
			}
		}
	}

	text := p.src[start:p.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// out of range literals saturate to ±Inf and are rejected after
		// evaluation
		if numErr, ok := err.(*strconv.NumError); !ok || numErr.Err != strconv.ErrRange {
			p.tok = token{text: text, pos: start}
			return p.errorf(ErrParse, "invalid number")
		}
	}
	p.tok = token{kind: tokNumber, text: text, value: v, pos: start}
	return nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (p *parser) isOp(ops ...Operator) (Operator, bool) {
	if p.tok.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if p.tok.text == string(op) {
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp(OpAdd, OpSub)
		if !ok {
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp(OpMul, OpDiv)
		if !ok {
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	if op, ok := p.isOp(OpSub, OpAdd); ok {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == OpAdd {
			return operand, nil
		}
		return &UnaryOp{Op: OpNeg, Operand: operand}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.isOp(OpPow); !ok {
		return base, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	exponent, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &BinaryOp{Op: OpPow, Left: base, Right: exponent}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	switch p.tok.kind {
	case tokNumber:
		node := &Number{Value: p.tok.value}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return node, nil

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf(ErrParse, "missing closing parenthesis")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return node, nil

	case tokEOF:
		return nil, p.errorf(ErrParse, "unexpected end of expression")

	default:
		return nil, p.errorf(ErrParse, "expected number or parenthesis")
	}
}
