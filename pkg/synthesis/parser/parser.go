// Package parser reads the textual specification format consumed by
// the command line tool:
//
//	swap(loc x, loc y)
//	{ x :-> a ** y :-> b }
//	{ x :-> b ** y :-> a }
//
// An assertion is written { pure ; heap } or { heap }; heaplets are
// separated by ** and are either points-to (x :-> e, (x + 1) :-> e) or
// blocks ([x, 2]). Lines starting with # are comments. A file may hold
// several specifications; callers decide which one to synthesize.
package parser

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/heapsynth/heapsynth/pkg/synthesis/spec"
)

type parser struct {
	toks []token
	i    int
}

// Parse reads every function specification in src.
func Parse(src string) ([]spec.FunSpec, error) {
	lx := newLexer(src)
	var toks []token
	for {
		t, err := lx.next()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			break
		}
	}
	p := &parser{toks: toks}
	var out []spec.FunSpec
	for p.peek().kind != tokEOF {
		fs, err := p.funSpec()
		if err != nil {
			return nil, err
		}
		out = append(out, fs)
	}
	if len(out) == 0 {
		return nil, errors.New("no specifications in input")
	}
	return out, nil
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) peekAt(n int) token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) advance() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.advance()
	if t.kind != kind {
		return t, errors.Errorf("%d:%d: expected %s, found %s", t.line, t.col, what, t)
	}
	return t, nil
}

func (p *parser) funSpec() (spec.FunSpec, error) {
	var fs spec.FunSpec
	fs.Ret = spec.TypeVoid
	if p.peek().kind == tokIdent && p.peekAt(1).kind == tokIdent {
		t := p.advance()
		ret, err := typeOf(t)
		if err != nil {
			return fs, err
		}
		fs.Ret = ret
	}
	name, err := p.expect(tokIdent, "function name")
	if err != nil {
		return fs, err
	}
	fs.Name = name.text
	if _, err := p.expect(tokLParen, "("); err != nil {
		return fs, err
	}
	for p.peek().kind != tokRParen {
		if len(fs.Params) > 0 {
			if _, err := p.expect(tokComma, ","); err != nil {
				return fs, err
			}
		}
		tt, err := p.expect(tokIdent, "parameter type")
		if err != nil {
			return fs, err
		}
		pt, err := typeOf(tt)
		if err != nil {
			return fs, err
		}
		pn, err := p.expect(tokIdent, "parameter name")
		if err != nil {
			return fs, err
		}
		fs.Params = append(fs.Params, spec.Param{Name: spec.Var(pn.text), Type: pt})
	}
	p.advance() // )
	if fs.Pre, err = p.assertion(); err != nil {
		return fs, err
	}
	if fs.Post, err = p.assertion(); err != nil {
		return fs, err
	}
	return fs, nil
}

func typeOf(t token) (spec.Type, error) {
	switch t.text {
	case "int":
		return spec.TypeInt, nil
	case "bool":
		return spec.TypeBool, nil
	case "loc":
		return spec.TypeLoc, nil
	case "void":
		return spec.TypeVoid, nil
	}
	return "", errors.Errorf("%d:%d: unknown type %q", t.line, t.col, t.text)
}

func (p *parser) assertion() (spec.Assertion, error) {
	var a spec.Assertion
	if _, err := p.expect(tokLBrace, "{"); err != nil {
		return a, err
	}
	if p.hasPurePart() {
		e, err := p.expr()
		if err != nil {
			return a, err
		}
		a.Pure = conjuncts(e)
		if _, err := p.expect(tokSemi, ";"); err != nil {
			return a, err
		}
	}
	heap, err := p.heap()
	if err != nil {
		return a, err
	}
	a.Heap = heap
	if _, err := p.expect(tokRBrace, "}"); err != nil {
		return a, err
	}
	return a, nil
}

// hasPurePart scans ahead for a top-level semicolon before the closing
// brace of the current assertion.
func (p *parser) hasPurePart() bool {
	depth := 0
	for n := 0; ; n++ {
		switch p.peekAt(n).kind {
		case tokLParen, tokLBracket:
			depth++
		case tokRParen, tokRBracket:
			depth--
		case tokSemi:
			if depth == 0 {
				return true
			}
		case tokRBrace, tokEOF:
			return false
		}
	}
}

// conjuncts flattens top-level conjunctions into a list.
func conjuncts(e spec.Expr) []spec.Expr {
	if b, ok := e.(spec.Binary); ok && b.Op == spec.OpAnd {
		return append(conjuncts(b.Left), conjuncts(b.Right)...)
	}
	if b, ok := e.(spec.BoolLit); ok && bool(b) {
		return nil
	}
	return []spec.Expr{e}
}

func (p *parser) heap() ([]spec.Heaplet, error) {
	if p.peek().kind == tokIdent && p.peek().text == "emp" {
		p.advance()
		return nil, nil
	}
	var heap []spec.Heaplet
	for {
		h, err := p.heaplet()
		if err != nil {
			return nil, err
		}
		heap = append(heap, h)
		if p.peek().kind != tokSep {
			return heap, nil
		}
		p.advance()
	}
}

func (p *parser) heaplet() (spec.Heaplet, error) {
	if p.peek().kind == tokLBracket {
		p.advance()
		base, err := p.expect(tokIdent, "block base")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, ","); err != nil {
			return nil, err
		}
		size, err := p.expect(tokInt, "block size")
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(size.text)
		if err != nil || n <= 0 {
			return nil, errors.Errorf("%d:%d: bad block size %q", size.line, size.col, size.text)
		}
		if _, err := p.expect(tokRBracket, "]"); err != nil {
			return nil, err
		}
		return spec.Block{Loc: spec.Var(base.text), Size: n}, nil
	}
	loc, off, err := p.location()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokPointsTo, ":->"); err != nil {
		return nil, err
	}
	val, err := p.addExpr()
	if err != nil {
		return nil, err
	}
	return spec.PointsTo{Loc: loc, Off: off, Val: val}, nil
}

// location parses the lvalue of a points-to: an identifier, optionally
// offset inside parentheses as (x + 2).
func (p *parser) location() (spec.Expr, int, error) {
	if p.peek().kind == tokLParen {
		p.advance()
		base, err := p.expect(tokIdent, "location")
		if err != nil {
			return nil, 0, err
		}
		if _, err := p.expect(tokPlus, "+"); err != nil {
			return nil, 0, err
		}
		off, err := p.expect(tokInt, "offset")
		if err != nil {
			return nil, 0, err
		}
		n, err := strconv.Atoi(off.text)
		if err != nil {
			return nil, 0, errors.Errorf("%d:%d: bad offset %q", off.line, off.col, off.text)
		}
		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, 0, err
		}
		return spec.Var(base.text), n, nil
	}
	base, err := p.expect(tokIdent, "location")
	if err != nil {
		return nil, 0, err
	}
	return spec.Var(base.text), 0, nil
}

func (p *parser) expr() (spec.Expr, error) {
	return p.orExpr()
}

func (p *parser) orExpr() (spec.Expr, error) {
	l, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.advance()
		r, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		l = spec.Binary{Op: spec.OpOr, Left: l, Right: r}
	}
	return l, nil
}

func (p *parser) andExpr() (spec.Expr, error) {
	l, err := p.relExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.advance()
		r, err := p.relExpr()
		if err != nil {
			return nil, err
		}
		l = spec.Binary{Op: spec.OpAnd, Left: l, Right: r}
	}
	return l, nil
}

var relOps = map[tokenKind]spec.BinOp{
	tokEq: spec.OpEq,
	tokNe: spec.OpNe,
	tokLt: spec.OpLt,
	tokLe: spec.OpLe,
}

func (p *parser) relExpr() (spec.Expr, error) {
	l, err := p.addExpr()
	if err != nil {
		return nil, err
	}
	if op, ok := relOps[p.peek().kind]; ok {
		p.advance()
		r, err := p.addExpr()
		if err != nil {
			return nil, err
		}
		return spec.Binary{Op: op, Left: l, Right: r}, nil
	}
	return l, nil
}

func (p *parser) addExpr() (spec.Expr, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var op spec.BinOp
		switch p.peek().kind {
		case tokPlus:
			op = spec.OpPlus
		case tokMinus:
			op = spec.OpMinus
		default:
			return l, nil
		}
		p.advance()
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		l = spec.Binary{Op: op, Left: l, Right: r}
	}
}

func (p *parser) unary() (spec.Expr, error) {
	if p.peek().kind == tokNot {
		p.advance()
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		return spec.Unary{Op: spec.OpNot, Operand: e}, nil
	}
	return p.primary()
}

func (p *parser) primary() (spec.Expr, error) {
	t := p.advance()
	switch t.kind {
	case tokInt:
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, errors.Errorf("%d:%d: bad integer %q", t.line, t.col, t.text)
		}
		return spec.IntLit(n), nil
	case tokIdent:
		switch t.text {
		case "true":
			return spec.BoolLit(true), nil
		case "false":
			return spec.BoolLit(false), nil
		}
		return spec.Var(t.text), nil
	case tokLParen:
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, errors.Errorf("%d:%d: expected expression, found %s", t.line, t.col, t)
}
