package action

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Error is the structured failure value for action evaluation. Pos is the
// byte offset into the source expression where the problem was detected.
type Error struct {
	Pos     int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("action error at offset %d: %s", e.Pos, e.Message)
}

func errAt(pos int, format string, args ...any) *Error {
	return &Error{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// token kinds
const (
	tokIdent = iota
	tokNumber
	tokString
	tokOp // single or compound operator
	tokEOF
)

type token struct {
	kind int
	text string
	pos  int
}

type lexer struct {
	src  string
	pos  int
	toks []token
}

func lex(src string) ([]token, *Error) {
	l := &lexer{src: src}
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '\n' || c == ';':
			l.emit(tokOp, ";", l.pos)
			l.pos++
		case isIdentStart(rune(c)):
			l.lexIdent()
		case c >= '0' && c <= '9':
			if err := l.lexNumber(); err != nil {
				return nil, err
			}
		case c == '\'' || c == '"':
			if err := l.lexString(c); err != nil {
				return nil, err
			}
		default:
			if err := l.lexOp(); err != nil {
				return nil, err
			}
		}
	}
	l.emit(tokEOF, "", l.pos)
	return l.toks, nil
}

func (l *lexer) emit(kind int, text string, pos int) {
	l.toks = append(l.toks, token{kind: kind, text: text, pos: pos})
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (l *lexer) lexIdent() {
	start := l.pos
	for l.pos < len(l.src) && isIdentRune(rune(l.src[l.pos])) {
		l.pos++
	}
	l.emit(tokIdent, l.src[start:l.pos], start)
}

func (l *lexer) lexNumber() *Error {
	start := l.pos
	seenDot := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '.' {
			if seenDot {
				return errAt(l.pos, "malformed number")
			}
			seenDot = true
			l.pos++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		l.pos++
	}
	l.emit(tokNumber, l.src[start:l.pos], start)
	return nil
}

func (l *lexer) lexString(quote byte) *Error {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			sb.WriteByte(l.src[l.pos])
			l.pos++
			continue
		}
		if c == quote {
			l.pos++
			l.emit(tokString, sb.String(), start)
			return nil
		}
		sb.WriteByte(c)
		l.pos++
	}
	return errAt(start, "unterminated string")
}

var compoundOps = []string{"+=", "-=", "*=", "/="}

func (l *lexer) lexOp() *Error {
	start := l.pos
	if l.pos+1 < len(l.src) {
		two := l.src[l.pos : l.pos+2]
		for _, op := range compoundOps {
			if two == op {
				l.emit(tokOp, op, start)
				l.pos += 2
				return nil
			}
		}
	}
	switch c := l.src[l.pos]; c {
	case '=', '+', '-', '*', '/', '(', ')', '.':
		l.emit(tokOp, string(c), start)
		l.pos++
		return nil
	default:
		return errAt(start, "unexpected character %q", string(c))
	}
}

// AST

type node interface {
	eval(env *env) (any, error)
	position() int
}

type litNode struct {
	val any
	pos int
}

type pathNode struct {
	parts []string
	pos   int
}

type binNode struct {
	op    string
	left  node
	right node
	pos   int
}

type negNode struct {
	operand node
	pos     int
}

func (n *litNode) position() int  { return n.pos }
func (n *pathNode) position() int { return n.pos }
func (n *binNode) position() int  { return n.pos }
func (n *negNode) position() int  { return n.pos }

// statement: target op expr
type statement struct {
	target *pathNode
	op     string
	expr   node
}

type parser struct {
	toks []token
	idx  int
}

func (p *parser) peek() token { return p.toks[p.idx] }

func (p *parser) next() token {
	t := p.toks[p.idx]
	if t.kind != tokEOF {
		p.idx++
	}
	return t
}

func (p *parser) acceptOp(op string) bool {
	if t := p.peek(); t.kind == tokOp && t.text == op {
		p.idx++
		return true
	}
	return false
}

// parse turns source text into a statement list.
func parse(src string) ([]statement, *Error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	var stmts []statement

	for {
		for p.acceptOp(";") {
		}
		if p.peek().kind == tokEOF {
			return stmts, nil
		}
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
		if p.peek().kind == tokEOF {
			return stmts, nil
		}
		if !p.acceptOp(";") {
			return nil, errAt(p.peek().pos, "expected ';' or end of action, got %q", p.peek().text)
		}
	}
}

func (p *parser) parseStatement() (statement, *Error) {
	target, err := p.parsePath()
	if err != nil {
		return statement{}, err
	}

	opTok := p.next()
	if opTok.kind != tokOp {
		return statement{}, errAt(opTok.pos, "expected assignment operator, got %q", opTok.text)
	}
	switch opTok.text {
	case "=", "+=", "-=", "*=", "/=":
	default:
		return statement{}, errAt(opTok.pos, "expected assignment operator, got %q", opTok.text)
	}

	expr, perr := p.parseExpr()
	if perr != nil {
		return statement{}, perr
	}

	if target.parts[0] != rootContext {
		return statement{}, errAt(target.pos, "assignment target must start with %q", rootContext)
	}
	if len(target.parts) < 2 {
		return statement{}, errAt(target.pos, "cannot reassign %q itself", rootContext)
	}

	return statement{target: target, op: opTok.text, expr: expr}, nil
}

func (p *parser) parsePath() (*pathNode, *Error) {
	tok := p.next()
	if tok.kind != tokIdent {
		return nil, errAt(tok.pos, "expected identifier, got %q", tok.text)
	}
	parts := []string{tok.text}
	for p.acceptOp(".") {
		seg := p.next()
		if seg.kind != tokIdent {
			return nil, errAt(seg.pos, "expected identifier after '.', got %q", seg.text)
		}
		parts = append(parts, seg.text)
	}
	return &pathNode{parts: parts, pos: tok.pos}, nil
}

func (p *parser) parseExpr() (node, *Error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind == tokOp && (tok.text == "+" || tok.text == "-") {
			p.idx++
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = &binNode{op: tok.text, left: left, right: right, pos: tok.pos}
			continue
		}
		return left, nil
	}
}

func (p *parser) parseTerm() (node, *Error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind == tokOp && (tok.text == "*" || tok.text == "/") {
			p.idx++
			right, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			left = &binNode{op: tok.text, left: left, right: right, pos: tok.pos}
			continue
		}
		return left, nil
	}
}

func (p *parser) parseFactor() (node, *Error) {
	tok := p.peek()
	switch {
	case tok.kind == tokOp && tok.text == "-":
		p.idx++
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &negNode{operand: operand, pos: tok.pos}, nil

	case tok.kind == tokOp && tok.text == "(":
		p.idx++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.acceptOp(")") {
			return nil, errAt(p.peek().pos, "expected ')'")
		}
		return inner, nil

	case tok.kind == tokNumber:
		p.idx++
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, errAt(tok.pos, "malformed number %q", tok.text)
		}
		return &litNode{val: f, pos: tok.pos}, nil

	case tok.kind == tokString:
		p.idx++
		return &litNode{val: tok.text, pos: tok.pos}, nil

	case tok.kind == tokIdent:
		switch tok.text {
		case "true":
			p.idx++
			return &litNode{val: true, pos: tok.pos}, nil
		case "false":
			p.idx++
			return &litNode{val: false, pos: tok.pos}, nil
		case "null":
			p.idx++
			return &litNode{val: nil, pos: tok.pos}, nil
		}
		return p.parsePath()

	default:
		return nil, errAt(tok.pos, "unexpected token %q", tok.text)
	}
}
